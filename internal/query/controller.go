package query

// Package query runs the single-flight question/answer exchange with the service.

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"video-rag-client/internal/api"
	"video-rag-client/internal/report"
)

// NoAnswer is shown when the service resolves with an empty or missing answer.
const NoAnswer = "No answer received"

// Status is the lifecycle state of the current request.
type Status int

const (
	Idle Status = iota
	Pending
	Resolved
	Failed
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether s is Resolved or Failed.
func (s Status) Terminal() bool { return s == Resolved || s == Failed }

// Request is an immutable snapshot of one exchange.
// Answer is set only when Resolved, ErrorMessage only when Failed.
type Request struct {
	Question     string
	Status       Status
	Answer       string
	ErrorMessage string
}

// Asker is the part of the transport the controller depends on.
type Asker interface {
	Ask(ctx context.Context, question string) (*api.AskResponse, error)
}

// QueryError wraps a failed exchange.
type QueryError struct {
	Question string
	Err      error
}

// Error implements error.
func (e *QueryError) Error() string {
	return fmt.Sprintf("ask %q: %v", e.Question, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error { return e.Err }

// UserMessage returns the text shown to the user.
func (e *QueryError) UserMessage() string {
	return "Failed to get answer. " + report.Hint(e.Err)
}

// Controller owns the Idle -> Pending -> Resolved|Failed state machine.
// At most one request is Pending at any time; submissions made meanwhile are
// dropped, not queued.
type Controller struct {
	client   Asker
	reporter report.Reporter
	logger   *slog.Logger

	mu  sync.Mutex
	cur Request
}

// NewController creates a Controller in the Idle state.
func NewController(client Asker, reporter report.Reporter, logger *slog.Logger) *Controller {
	if reporter == nil {
		reporter = report.Nop
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{client: client, reporter: reporter, logger: logger}
}

// Current returns the current request snapshot.
func (c *Controller) Current() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

// Submit asks text and waits for the outcome. It returns false, changing
// nothing, when a request is already pending or text is blank.
func (c *Controller) Submit(ctx context.Context, text string) (Request, bool) {
	done, ok := c.Start(ctx, text)
	if !ok {
		return c.Current(), false
	}
	return <-done, true
}

// Start moves to Pending before returning and resolves the request in the
// background. The channel yields the terminal snapshot once.
func (c *Controller) Start(ctx context.Context, text string) (<-chan Request, bool) {
	question := strings.TrimSpace(text)

	c.mu.Lock()
	if question == "" || c.cur.Status == Pending {
		c.mu.Unlock()
		return nil, false
	}
	c.cur = Request{Question: question, Status: Pending}
	c.mu.Unlock()

	done := make(chan Request, 1)
	go func() {
		done <- c.resolve(ctx, question)
	}()
	return done, true
}

func (c *Controller) resolve(ctx context.Context, question string) Request {
	start := time.Now()
	resp, err := c.client.Ask(ctx, question)

	var next Request
	var qerr *QueryError
	if err != nil {
		qerr = &QueryError{Question: question, Err: err}
		next = Request{Question: question, Status: Failed, ErrorMessage: qerr.UserMessage()}
		c.logger.Error("Question failed", "error", err, "network", api.IsNetwork(err))
	} else {
		answer := resp.Answer
		if answer == "" {
			answer = NoAnswer
		}
		next = Request{Question: question, Status: Resolved, Answer: answer}
		c.logger.Info("Question answered", "duration", time.Since(start))
	}

	c.mu.Lock()
	c.cur = next
	c.mu.Unlock()

	if qerr != nil {
		c.reporter.Report(qerr)
	}
	return next
}
