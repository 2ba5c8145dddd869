package api

// Package api provides the HTTP client for the Inference & Corpus Service.
// Each method performs exactly one exchange and classifies its outcome as
// success, *NetworkError or *HTTPError. Nothing is retried here; callers
// surface failures to the user.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Client is the HTTP client wrapper for communicating with the service.
type Client struct {
	BaseURL    string       // root URL of the service, e.g. http://127.0.0.1:5000
	HTTPClient *http.Client // underlying http.Client
	Logger     *slog.Logger
}

// NewClient creates a new API client.
// An empty or unparsable timeout leaves requests unbounded; cancellation is
// still available through the context passed to each call.
func NewClient(baseURL string, timeoutStr string, logger *slog.Logger) *Client {
	var timeout time.Duration
	if timeoutStr != "" {
		if d, err := time.ParseDuration(timeoutStr); err == nil && d > 0 {
			timeout = d
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		Logger: logger,
	}
}

// ListVideos returns the identifiers of every video the service knows about.
// A 2xx body without a videos list is an error, never an empty corpus.
func (c *Client) ListVideos(ctx context.Context) ([]string, error) {
	const op = "list videos"
	body, err := c.do(ctx, op, http.MethodGet, "/api/videos", nil, "")
	if err != nil {
		return nil, err
	}

	var listResp ListResponse
	if err := json.Unmarshal(body, &listResp); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrBadResponse, err)
	}
	if listResp.Videos == nil {
		return nil, fmt.Errorf("%s: %w: no videos list", op, ErrBadResponse)
	}
	return *listResp.Videos, nil
}

// UploadVideo streams r to the service as the multipart form field "file".
// The ack is best effort: a 2xx with an unreadable body still counts as success.
func (c *Client) UploadVideo(ctx context.Context, r io.Reader, filename, mimeType string) (*UploadAck, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	// The transport closes pr when the request ends early, which unblocks the writer.
	go func() {
		part, err := mw.CreatePart(filePartHeader(filename, mimeType))
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	body, err := c.do(ctx, "upload video", http.MethodPost, "/api/upload_video", pr, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var ack UploadAck
	_ = json.Unmarshal(body, &ack)
	return &ack, nil
}

// DeleteVideo removes one video by identifier. A 404 comes back as an
// *HTTPError like any other failure.
func (c *Client) DeleteVideo(ctx context.Context, identifier string) (*DeleteAck, error) {
	path := "/api/videos/" + url.PathEscape(identifier)
	body, err := c.do(ctx, "delete video", http.MethodDelete, path, nil, "")
	if err != nil {
		return nil, err
	}

	var ack DeleteAck
	_ = json.Unmarshal(body, &ack)
	return &ack, nil
}

// Ask sends one question to the service and returns its answer.
func (c *Client) Ask(ctx context.Context, question string) (*AskResponse, error) {
	const op = "ask question"
	payload, err := json.Marshal(AskRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ask request: %w", err)
	}

	body, err := c.do(ctx, op, http.MethodPost, "/api/ask", bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, err
	}

	var askResp AskResponse
	if len(bytes.TrimSpace(body)) == 0 {
		return &askResp, nil
	}
	if err := json.Unmarshal(body, &askResp); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrBadResponse, err)
	}
	return &askResp, nil
}

// do performs one request and returns the response body of a 2xx answer.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		if rc, ok := body.(io.Closer); ok {
			rc.Close()
		}
		return nil, &NetworkError{Op: op, Err: err}
	}

	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	log := c.Logger.With("op", op, "request_id", reqID)
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Warn("Request failed", "error", err)
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Warn("Request rejected", "status", resp.StatusCode, "duration", time.Since(start))
		return nil, &HTTPError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("Response body truncated", "error", err)
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	log.Debug("Request done", "status", resp.StatusCode, "duration", time.Since(start))
	return respBody, nil
}

// errorMessage extracts the service's {"error": "..."} text, falling back to the raw body.
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		return eb.Error
	}
	return strings.TrimSpace(string(body))
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func filePartHeader(filename, mimeType string) textproto.MIMEHeader {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", mimeType)
	return h
}
