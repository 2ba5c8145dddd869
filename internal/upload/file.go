package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// acceptedMIMETypes is the client-side pre-filter. The service has the final say.
var acceptedMIMETypes = map[string]bool{
	"video/mp4":       true,
	"video/mov":       true,
	"video/avi":       true,
	"video/x-msvideo": true,
}

// extMIMETypes maps local file extensions to the MIME labels the web client sends.
var extMIMETypes = map[string]string{
	".mp4": "video/mp4",
	".mov": "video/mov",
	".avi": "video/x-msvideo",
	".mkv": "video/x-matroska",
}

// PendingUpload is a selected file that has not been submitted yet.
type PendingUpload struct {
	Filename  string
	MIMEType  string
	SizeBytes int64
	// Open returns the file content. It is called once, at submission.
	Open func() (io.ReadCloser, error)
}

// SizeLabel renders the size the way the selection UI shows it.
func (p PendingUpload) SizeLabel() string {
	return fmt.Sprintf("%.2f MB", float64(p.SizeBytes)/(1024*1024))
}

// Accepts reports whether a file passes the pre-filter: an accepted MIME type,
// or a ".mkv" suffix in any case.
func Accepts(filename, mimeType string) bool {
	if acceptedMIMETypes[strings.ToLower(mimeType)] {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".mkv")
}

// MIMETypeFor guesses the MIME type of a local file from its extension.
func MIMETypeFor(filename string) string {
	if t, ok := extMIMETypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return "application/octet-stream"
}

// FromPath builds a PendingUpload for a file on disk.
func FromPath(path string) (PendingUpload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return PendingUpload{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return PendingUpload{}, fmt.Errorf("%s is a directory", path)
	}

	name := filepath.Base(path)
	return PendingUpload{
		Filename:  name,
		MIMEType:  MIMETypeFor(name),
		SizeBytes: info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}
