package session

// Package session wires the transport, the corpus store and the three
// coordinators into one client session. All state lives for the lifetime of
// the Session value only.

import (
	"context"
	"log/slog"

	"video-rag-client/internal/api"
	"video-rag-client/internal/config"
	"video-rag-client/internal/deletion"
	"video-rag-client/internal/library"
	"video-rag-client/internal/query"
	"video-rag-client/internal/report"
	"video-rag-client/internal/upload"
)

// Session is the composition root for one user session.
type Session struct {
	Client   *api.Client
	Library  *library.Store
	Uploads  *upload.Coordinator
	Deletes  *deletion.Coordinator
	Queries  *query.Controller
	Reporter report.Reporter
	Logger   *slog.Logger
}

// New builds a session against cfg.Endpoint. Deletes are confirmed through confirmer.
func New(cfg *config.Config, confirmer deletion.Confirmer, reporter report.Reporter, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if reporter == nil {
		reporter = report.Nop
	}
	if confirmer == nil {
		confirmer = deletion.AlwaysConfirm
	}

	client := api.NewClient(cfg.Endpoint, cfg.APITimeout, logger.With("component", "api"))
	store := library.NewStore(client, logger.With("component", "library"))

	return &Session{
		Client:   client,
		Library:  store,
		Uploads:  upload.NewCoordinator(client, store, reporter, logger.With("component", "upload")),
		Deletes:  deletion.NewCoordinator(client, store, confirmer, reporter, logger.With("component", "deletion")),
		Queries:  query.NewController(client, reporter, logger.With("component", "query")),
		Reporter: reporter,
		Logger:   logger,
	}
}

// Open loads the initial video list. A failure is reported and returned, but
// the session stays usable.
func (s *Session) Open(ctx context.Context) error {
	if err := s.Library.Refresh(ctx); err != nil {
		s.Reporter.Report(err)
		return err
	}
	return nil
}

// Refresh re-pulls the video list on user request and reports a failure.
func (s *Session) Refresh(ctx context.Context) error {
	return s.Open(ctx)
}

// SelectPath opens the file selection and makes the file at path the pending
// upload. A file that cannot be read or is rejected closes the selection again.
func (s *Session) SelectPath(path string) (upload.PendingUpload, error) {
	s.Uploads.OpenSelection()
	p, err := upload.FromPath(path)
	if err != nil {
		s.Uploads.CloseSelection()
		s.Reporter.Report(err)
		return upload.PendingUpload{}, err
	}
	if err := s.Uploads.SelectFile(p); err != nil {
		s.Uploads.CloseSelection()
		return upload.PendingUpload{}, err
	}
	return p, nil
}

// SubmitSelection uploads the pending file. The selection is closed whatever
// the outcome.
func (s *Session) SubmitSelection(ctx context.Context) error {
	if err := s.Uploads.Submit(ctx); err != nil {
		s.Uploads.CloseSelection()
		return err
	}
	return nil
}

// UploadPath selects the file at path and submits it.
func (s *Session) UploadPath(ctx context.Context, path string) error {
	if _, err := s.SelectPath(path); err != nil {
		return err
	}
	return s.SubmitSelection(ctx)
}
