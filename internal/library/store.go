package library

// Package library holds the local view of the video corpus.
// The view is only ever replaced wholesale by a successful full listing from
// the service; nothing inserts or removes single assets locally.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"video-rag-client/internal/report"
)

// Lister is the part of the transport the store depends on.
type Lister interface {
	ListVideos(ctx context.Context) ([]string, error)
}

// VideoAsset is one video known to the service.
type VideoAsset struct {
	Identifier  string // server-assigned filename, case-sensitive
	DisplayName string // equal to Identifier; there is no rename
	SizeBytes   *int64 // nil when the service does not report a size
}

// SizeLabel renders the size for display. An unreported size is "unknown", never zero.
func (v VideoAsset) SizeLabel() string {
	if v.SizeBytes == nil {
		return "unknown"
	}
	return fmt.Sprintf("%.2f MB", float64(*v.SizeBytes)/(1024*1024))
}

// Snapshot is an immutable view of the corpus as of one successful refresh.
type Snapshot struct {
	Assets      []VideoAsset
	RefreshedAt time.Time // zero until the first successful refresh
	Generation  uint64    // bumps on every successful refresh
}

// Len returns the number of assets in the snapshot.
func (s Snapshot) Len() int { return len(s.Assets) }

// Contains reports whether identifier is in the snapshot (case-sensitive).
func (s Snapshot) Contains(identifier string) bool {
	for _, a := range s.Assets {
		if a.Identifier == identifier {
			return true
		}
	}
	return false
}

// Identifiers returns the identifiers in listing order.
func (s Snapshot) Identifiers() []string {
	ids := make([]string, len(s.Assets))
	for i, a := range s.Assets {
		ids[i] = a.Identifier
	}
	return ids
}

// RefreshError wraps a failed listing. The store keeps its previous snapshot.
type RefreshError struct {
	Err error
}

// Error implements error.
func (e *RefreshError) Error() string { return fmt.Sprintf("refresh video list: %v", e.Err) }

// Unwrap returns the underlying error.
func (e *RefreshError) Unwrap() error { return e.Err }

// UserMessage returns the text shown to the user.
func (e *RefreshError) UserMessage() string {
	return "Failed to fetch video list from server. " + report.Hint(e.Err)
}

// Store is the single owner of the corpus snapshot.
type Store struct {
	lister Lister
	logger *slog.Logger

	mu   sync.RWMutex
	snap Snapshot
}

// NewStore creates an empty store backed by lister.
func NewStore(lister Lister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{lister: lister, logger: logger}
}

// Snapshot returns the current snapshot. Callers must not modify Assets.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Refresh replaces the whole snapshot with the service's current listing.
// On failure the previous snapshot stays in place and a *RefreshError is returned.
// Concurrent refreshes are not ordered: whichever finishes last wins.
func (s *Store) Refresh(ctx context.Context) error {
	names, err := s.lister.ListVideos(ctx)
	if err != nil {
		s.logger.Warn("Refresh failed, keeping previous snapshot", "error", err)
		return &RefreshError{Err: err}
	}

	assets := make([]VideoAsset, len(names))
	for i, name := range names {
		assets[i] = VideoAsset{Identifier: name, DisplayName: name}
	}

	s.mu.Lock()
	s.snap = Snapshot{
		Assets:      assets,
		RefreshedAt: time.Now(),
		Generation:  s.snap.Generation + 1,
	}
	s.mu.Unlock()

	s.logger.Info("Video list refreshed", "count", len(assets))
	return nil
}
