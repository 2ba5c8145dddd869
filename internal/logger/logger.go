package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/kardianos/service"
	slogmulti "github.com/samber/slog-multi"
)

// Options selects where log records go. Nil destinations are skipped.
type Options struct {
	File    io.Writer      // usually a *Rotator
	Console io.Writer      // e.g. os.Stderr for interactive commands
	Service service.Logger // set when running under the OS service manager
	Level   slog.Leveler   // defaults to Info
}

// Setup builds a logger fanning out to every configured destination and
// installs it as the slog default.
func Setup(opts Options) *slog.Logger {
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	hopts := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	if opts.File != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.File, hopts))
	}
	if opts.Console != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Console, hopts))
	}
	if opts.Service != nil {
		handlers = append(handlers, &ServiceHandler{svc: opts.Service, level: level})
	}

	var logger *slog.Logger
	if len(handlers) == 0 {
		logger = slog.New(slog.NewTextHandler(io.Discard, hopts))
	} else {
		logger = slog.New(slogmulti.Fanout(handlers...))
	}

	slog.SetDefault(logger)
	return logger
}

// ServiceHandler adapts slog.Handler to service.Logger (event log, syslog, launchd).
type ServiceHandler struct {
	svc    service.Logger
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// Enabled reports whether level reaches the service log.
func (h *ServiceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.level == nil {
		return level >= slog.LevelInfo
	}
	return level >= h.level.Level()
}

// Handle formats the record without time and level, which the service logger adds itself.
func (h *ServiceHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.svc == nil {
		return nil
	}

	var buf bytes.Buffer
	var handler slog.Handler = slog.NewTextHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	})
	for _, g := range h.groups {
		handler = handler.WithGroup(g)
	}
	handler = handler.WithAttrs(h.attrs)

	if err := handler.Handle(ctx, r); err != nil {
		return err
	}
	msg := strings.TrimSpace(buf.String())

	switch {
	case r.Level >= slog.LevelError:
		return h.svc.Error(msg)
	case r.Level >= slog.LevelWarn:
		return h.svc.Warning(msg)
	default:
		return h.svc.Info(msg)
	}
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *ServiceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	newAttrs = append(newAttrs, h.attrs...)
	newAttrs = append(newAttrs, attrs...)
	return &ServiceHandler{svc: h.svc, level: h.level, attrs: newAttrs, groups: h.groups}
}

// WithGroup returns a handler that qualifies later attributes with name.
func (h *ServiceHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, 0, len(h.groups)+1)
	newGroups = append(newGroups, h.groups...)
	newGroups = append(newGroups, name)
	return &ServiceHandler{svc: h.svc, level: h.level, attrs: h.attrs, groups: newGroups}
}
