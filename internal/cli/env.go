package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"video-rag-client/internal/config"
	"video-rag-client/internal/daemon"
	"video-rag-client/internal/deletion"
	"video-rag-client/internal/logger"
	"video-rag-client/internal/report"
	"video-rag-client/internal/session"

	"github.com/kardianos/service"
)

// errReported marks a failure the user has already been shown.
var errReported = errors.New("operation failed")

// Env carries what every command needs. Cfg and Logger are filled in by the
// root command before any subcommand runs.
type Env struct {
	CfgPath string
	Verbose bool

	Cfg    *config.Config
	Logger *slog.Logger

	// Daemon is the program registered with the service manager.
	Daemon    *daemon.Daemon
	Service   service.Service // nil when the platform has no service manager
	SysLogger service.Logger

	In  io.Reader
	Out io.Writer
	Err io.Writer

	logFile io.Closer
}

// DefaultConfigPath is config.json next to the executable.
func DefaultConfigPath() string {
	ex, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(ex), "config.json")
}

func (e *Env) setup() error {
	cfg, err := config.Load(e.CfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	e.Cfg = cfg

	rot := &logger.Rotator{
		Filename:   cfg.LogPath,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Compress:   true,
	}
	e.logFile = rot

	opts := logger.Options{File: rot}
	if e.Verbose {
		opts.Console = e.Err
		opts.Level = slog.LevelDebug
	}
	if e.SysLogger != nil && !service.Interactive() {
		opts.Service = e.SysLogger
	}
	e.Logger = logger.Setup(opts)

	if e.Daemon != nil {
		e.Daemon.Cfg = cfg
		e.Daemon.Logger = e.Logger
	}
	return nil
}

func (e *Env) teardown() {
	if e.logFile != nil {
		e.logFile.Close()
		e.logFile = nil
	}
}

// newSession builds a session reporting to the terminal.
func (e *Env) newSession(confirmer deletion.Confirmer) *session.Session {
	return session.New(e.Cfg, confirmer, report.NewWriter(e.Err, e.Logger), e.Logger)
}

// Execute runs the CLI and returns the process exit code.
func Execute(env *Env, args []string) int {
	root := NewRootCmd(env)
	root.SetArgs(args)
	err := root.Execute()
	env.teardown()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(env.Err, "Error:", err)
		}
		return 1
	}
	return 0
}
