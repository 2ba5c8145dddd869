package api

// ListResponse is the body of GET /api/videos.
// Filenames are both the identifier and the display name of a video.
// Videos is nil when the field is absent or null.
type ListResponse struct {
	Videos *[]string `json:"videos"`
}

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the body of a successful POST /api/ask.
// Answer is empty both when the field is absent and when the service answered "".
type AskResponse struct {
	Answer string `json:"answer"`
}

// UploadAck is the acknowledgement returned by POST /api/upload_video.
// Both fields are optional; an empty ack is still a success.
type UploadAck struct {
	Message string `json:"message,omitempty"`
	VideoID string `json:"videoId,omitempty"`
}

// DeleteAck is the acknowledgement returned by DELETE /api/videos/{identifier}.
type DeleteAck struct {
	Message string `json:"message,omitempty"`
}

// errorBody is the shape the service uses for every non-2xx response.
type errorBody struct {
	Error string `json:"error"`
}
