package upload

// Package upload manages the selection and submission of one video file at a
// time. A successful upload is always followed by a full corpus refresh.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"video-rag-client/internal/api"
	"video-rag-client/internal/report"
)

// ErrUploadInProgress is returned by SelectFile while a submission is in flight.
var ErrUploadInProgress = errors.New("an upload is already in progress")

// Uploader is the part of the transport the coordinator depends on.
type Uploader interface {
	UploadVideo(ctx context.Context, r io.Reader, filename, mimeType string) (*api.UploadAck, error)
}

// Refresher re-pulls the corpus after a write.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// ValidationError is a client-side file type rejection.
type ValidationError struct {
	Filename string
	MIMEType string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("unsupported file %q (type %q)", e.Filename, e.MIMEType)
}

// UserMessage returns the text shown to the user.
func (e *ValidationError) UserMessage() string {
	return "Please select a valid video file (MP4, MOV, AVI, MKV)"
}

// UploadError wraps a failed submission.
type UploadError struct {
	Filename string
	Err      error
}

// Error implements error.
func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Filename, e.Err)
}

// Unwrap returns the underlying error.
func (e *UploadError) Unwrap() error { return e.Err }

// UserMessage returns the text shown to the user.
func (e *UploadError) UserMessage() string {
	return fmt.Sprintf("Failed to upload video %q. %s", e.Filename, report.Hint(e.Err))
}

// State is an immutable snapshot of the coordinator.
type State struct {
	Pending       *PendingUpload
	Uploading     bool
	SelectionOpen bool // the file selection panel is showing
}

// Coordinator owns the PendingUpload -> submitted transition.
type Coordinator struct {
	client   Uploader
	store    Refresher
	reporter report.Reporter
	logger   *slog.Logger

	mu    sync.Mutex
	state State
}

// NewCoordinator creates a Coordinator. Nil reporter and logger get defaults.
func NewCoordinator(client Uploader, store Refresher, reporter report.Reporter, logger *slog.Logger) *Coordinator {
	if reporter == nil {
		reporter = report.Nop
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{client: client, store: store, reporter: reporter, logger: logger}
}

// State returns the current snapshot.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OpenSelection marks the selection panel as open.
func (c *Coordinator) OpenSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{Pending: c.state.Pending, Uploading: c.state.Uploading, SelectionOpen: true}
}

// CloseSelection marks the selection panel as closed. The pending file is kept.
func (c *Coordinator) CloseSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{Pending: c.state.Pending, Uploading: c.state.Uploading}
}

// SelectFile validates p and makes it the pending upload, replacing any
// previous unsent selection. A rejected file clears the selection and yields
// a *ValidationError.
func (c *Coordinator) SelectFile(p PendingUpload) error {
	c.mu.Lock()
	if c.state.Uploading {
		c.mu.Unlock()
		return ErrUploadInProgress
	}

	if !Accepts(p.Filename, p.MIMEType) {
		c.state = State{SelectionOpen: c.state.SelectionOpen}
		c.mu.Unlock()

		err := &ValidationError{Filename: p.Filename, MIMEType: p.MIMEType}
		c.reporter.Report(err)
		return err
	}

	sel := p
	c.state = State{Pending: &sel, SelectionOpen: c.state.SelectionOpen}
	c.mu.Unlock()

	c.logger.Debug("File selected", "filename", p.Filename, "mime_type", p.MIMEType, "size", p.SizeBytes)
	return nil
}

// Submit uploads the pending file. It is a no-op when nothing is pending or
// an upload is already in flight. The pending selection is consumed either
// way; a failed upload is not retried.
//
// The returned error is the upload's own failure. A refresh failure after a
// successful upload goes to the reporter only.
func (c *Coordinator) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Pending == nil || c.state.Uploading {
		c.mu.Unlock()
		return nil
	}
	p := *c.state.Pending
	c.state = State{Uploading: true, SelectionOpen: c.state.SelectionOpen}
	c.mu.Unlock()

	c.logger.Info("Starting upload", "filename", p.Filename, "size", p.SizeBytes)
	start := time.Now()

	if err := c.send(ctx, p); err != nil {
		c.mu.Lock()
		c.state = State{SelectionOpen: c.state.SelectionOpen}
		c.mu.Unlock()

		uerr := &UploadError{Filename: p.Filename, Err: err}
		c.logger.Error("Upload failed", "filename", p.Filename, "error", err)
		c.reporter.Report(uerr)
		return uerr
	}
	c.logger.Info("Upload success", "filename", p.Filename, "duration", time.Since(start))

	// Still flagged as uploading while the follow-up refresh runs.
	if err := c.store.Refresh(ctx); err != nil {
		c.reporter.Report(err)
	}

	c.mu.Lock()
	c.state = State{}
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) send(ctx context.Context, p PendingUpload) error {
	if p.Open == nil {
		return errors.New("no file content to send")
	}
	rc, err := p.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer rc.Close()

	_, err = c.client.UploadVideo(ctx, rc, p.Filename, p.MIMEType)
	return err
}
