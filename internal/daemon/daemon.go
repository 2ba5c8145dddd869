package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"video-rag-client/internal/config"
	"video-rag-client/internal/report"
	"video-rag-client/internal/session"
	"video-rag-client/internal/upload"
	"video-rag-client/internal/watcher"

	"github.com/kardianos/service"
)

const queueSize = 64

// Daemon implements service.Interface. It watches Cfg.WatchPath and uploads
// every settled video file the corpus does not already hold.
// Uploads go through one worker, so the session's single-flight upload guard
// never drops a file; they wait their turn instead.
type Daemon struct {
	Logger  *slog.Logger
	Cfg     *config.Config
	Session *session.Session

	WatcherSvc *watcher.Watcher

	queue  chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Start is called when the service is started.
func (d *Daemon) Start(s service.Service) error {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Cfg == nil {
		return fmt.Errorf("daemon started without config")
	}
	if d.Session == nil {
		d.Session = session.New(d.Cfg, nil, report.NewWriter(os.Stderr, d.Logger), d.Logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.ctx, d.cancel = ctx, cancel
	d.queue = make(chan string, queueSize)

	// A failed initial listing is reported; the worker retries it lazily.
	_ = d.Session.Open(ctx)

	if err := os.MkdirAll(d.Cfg.WatchPath, 0755); err != nil {
		cancel()
		return fmt.Errorf("failed to create watch dir: %w", err)
	}

	d.wg.Add(1)
	go d.work(ctx)

	var err error
	d.WatcherSvc, err = watcher.NewWatcher(d.Cfg.WatchPath, d.Cfg.Debounce(), d.enqueue, d.Logger.With("component", "watcher"))
	if err != nil {
		cancel()
		d.wg.Wait()
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	// Catch files dropped while we were not running.
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.scanExistingFiles(ctx)
	}()

	d.Logger.Info("Video watch service started", "watch_path", d.Cfg.WatchPath, "endpoint", d.Cfg.Endpoint)
	return nil
}

// enqueue hands a settled file to the upload worker, skipping non-videos.
func (d *Daemon) enqueue(path string) {
	name := filepath.Base(path)
	if !upload.Accepts(name, upload.MIMETypeFor(name)) {
		d.Logger.Debug("Ignoring non-video file", "path", path)
		return
	}
	select {
	case d.queue <- path:
	case <-d.ctx.Done():
		d.Logger.Debug("Dropping file after stop", "path", path)
	}
}

func (d *Daemon) work(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-d.queue:
			d.process(ctx, path)
		}
	}
}

func (d *Daemon) process(ctx context.Context, path string) {
	snap := d.Session.Library.Snapshot()
	if snap.RefreshedAt.IsZero() {
		if err := d.Session.Open(ctx); err != nil {
			d.Logger.Warn("Corpus unknown, uploading anyway", "path", path)
		}
		snap = d.Session.Library.Snapshot()
	}

	name := filepath.Base(path)
	if snap.Contains(name) {
		d.Logger.Info("Already in corpus, skipping", "path", path)
		return
	}

	if err := d.Session.UploadPath(ctx, path); err != nil {
		d.Logger.Error("Auto-upload failed", "path", path, "error", err)
		return
	}
	d.Logger.Info("Auto-uploaded", "path", path)
}

func (d *Daemon) scanExistingFiles(ctx context.Context) {
	d.Logger.Info("Performing initial scan", "path", d.Cfg.WatchPath)
	err := filepath.WalkDir(d.Cfg.WatchPath, func(path string, e os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !e.IsDir() {
			d.enqueue(path)
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		d.Logger.Error("Initial scan failed", "error", err)
	}
}

// Stop is called when the service is being stopped.
// An upload in flight is cancelled.
func (d *Daemon) Stop(s service.Service) error {
	d.Logger.Info("Stopping video watch service...")
	if d.WatcherSvc != nil {
		d.WatcherSvc.Close()
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
	return nil
}
