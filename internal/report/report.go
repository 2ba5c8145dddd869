package report

// Package report turns operation failures into the single user-visible message
// each one deserves. Coordinators hand every error they catch to a Reporter;
// front-ends decide how to show it.

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"video-rag-client/internal/api"
)

// Reporter receives every user-facing failure exactly once.
type Reporter interface {
	Report(err error)
}

// Func adapts a plain function to a Reporter.
type Func func(err error)

// Report implements Reporter.
func (f Func) Report(err error) { f(err) }

// Nop discards reports.
var Nop Reporter = Func(func(error) {})

// UserMessager is implemented by errors that know how to describe themselves to a user.
type UserMessager interface {
	UserMessage() string
}

// Message returns the text a user should see for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var um UserMessager
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return Hint(err)
}

// Hint describes the transport-level cause of err for user guidance.
// Network failures and service-side failures get distinct wording.
func Hint(err error) string {
	if errors.Is(err, api.ErrBadResponse) {
		return "The video service sent a response the client could not read."
	}
	var ne *api.NetworkError
	if errors.As(err, &ne) {
		return "Could not reach the video service. Please make sure it is running."
	}
	var he *api.HTTPError
	if errors.As(err, &he) {
		switch {
		case he.ServerSide() && he.Message != "":
			return fmt.Sprintf("The video service failed (HTTP %d): %s", he.StatusCode, he.Message)
		case he.ServerSide():
			return fmt.Sprintf("The video service failed (HTTP %d).", he.StatusCode)
		case he.Message != "":
			return fmt.Sprintf("The video service rejected the request (HTTP %d): %s", he.StatusCode, he.Message)
		default:
			return fmt.Sprintf("The video service rejected the request (HTTP %d).", he.StatusCode)
		}
	}
	return err.Error()
}

// Writer prints each message on its own line. The component that failed has
// already logged the error; Writer only notes the report at debug level.
type Writer struct {
	Out    io.Writer
	Logger *slog.Logger

	mu sync.Mutex
}

// NewWriter creates a Writer. A nil logger means slog.Default().
func NewWriter(out io.Writer, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{Out: out, Logger: logger}
}

// Report implements Reporter.
func (w *Writer) Report(err error) {
	if err == nil {
		return
	}
	w.Logger.Debug("Reported to user", "error", err)

	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.Out, "Error: %s\n", Message(err))
}

// Recorder keeps reported errors in memory.
type Recorder struct {
	mu   sync.Mutex
	errs []error
}

// Report implements Reporter.
func (r *Recorder) Report(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

// Errors returns a copy of everything reported so far.
func (r *Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}

// Last returns the most recent report, or nil.
func (r *Recorder) Last() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs[len(r.errs)-1]
}

// Reset forgets all reports.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.errs = nil
	r.mu.Unlock()
}

// Multi fans a report out to several reporters.
type Multi []Reporter

// Report implements Reporter.
func (m Multi) Report(err error) {
	for _, r := range m {
		if r != nil {
			r.Report(err)
		}
	}
}
