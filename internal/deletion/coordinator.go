package deletion

// Package deletion removes videos from the service, always behind an explicit
// user confirmation. The corpus is never patched locally; a successful delete
// triggers a full refresh instead.

import (
	"context"
	"fmt"
	"log/slog"

	"video-rag-client/internal/api"
	"video-rag-client/internal/report"
)

// Deleter is the part of the transport the coordinator depends on.
type Deleter interface {
	DeleteVideo(ctx context.Context, identifier string) (*api.DeleteAck, error)
}

// Refresher re-pulls the corpus after a write.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to a Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// AlwaysConfirm answers yes without asking. Used for non-interactive deletes.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// DeletionError wraps a failed delete of one identifier.
type DeletionError struct {
	Identifier string
	Err        error
}

// Error implements error.
func (e *DeletionError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Identifier, e.Err)
}

// Unwrap returns the underlying error.
func (e *DeletionError) Unwrap() error { return e.Err }

// UserMessage returns the text shown to the user.
func (e *DeletionError) UserMessage() string {
	if api.StatusCode(e.Err) == 404 {
		return fmt.Sprintf("Failed to delete video %q: it was not found on the server. Please try again.", e.Identifier)
	}
	return fmt.Sprintf("Failed to delete video %q. %s", e.Identifier, report.Hint(e.Err))
}

// Prompt is the confirmation text shown for identifier.
func Prompt(identifier string) string {
	return fmt.Sprintf("Are you sure you want to delete %q?", identifier)
}

// Coordinator gates deletion behind confirmation.
// Deletes of different identifiers are not serialized against each other.
type Coordinator struct {
	client    Deleter
	store     Refresher
	confirmer Confirmer
	reporter  report.Reporter
	logger    *slog.Logger
}

// NewCoordinator creates a Coordinator. Nil reporter and logger get defaults.
func NewCoordinator(client Deleter, store Refresher, confirmer Confirmer, reporter report.Reporter, logger *slog.Logger) *Coordinator {
	if reporter == nil {
		reporter = report.Nop
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{client: client, store: store, confirmer: confirmer, reporter: reporter, logger: logger}
}

// RequestDelete asks for confirmation and, if given, deletes identifier and
// refreshes the corpus. A declined confirmation returns nil and does nothing.
//
// The returned error is the delete's own failure (*DeletionError). A refresh
// failure after a successful delete goes to the reporter only.
func (c *Coordinator) RequestDelete(ctx context.Context, identifier string) error {
	ok, err := c.confirmer.Confirm(ctx, Prompt(identifier))
	if err != nil {
		c.logger.Warn("Confirmation aborted, treating as declined", "identifier", identifier, "error", err)
		return nil
	}
	if !ok {
		c.logger.Debug("Delete declined", "identifier", identifier)
		return nil
	}

	if _, err := c.client.DeleteVideo(ctx, identifier); err != nil {
		derr := &DeletionError{Identifier: identifier, Err: err}
		c.logger.Error("Delete failed", "identifier", identifier, "error", err)
		c.reporter.Report(derr)
		return derr
	}
	c.logger.Info("Video deleted", "identifier", identifier)

	if err := c.store.Refresh(ctx); err != nil {
		c.reporter.Report(err)
	}
	return nil
}
