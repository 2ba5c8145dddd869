package query

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-rag-client/internal/api"
	"video-rag-client/internal/report"
)

type fakeAsker struct {
	answer  string
	err     error
	calls   atomic.Int32
	release chan struct{}
	last    atomic.Value
}

func (f *fakeAsker) Ask(ctx context.Context, question string) (*api.AskResponse, error) {
	f.calls.Add(1)
	f.last.Store(question)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &api.AskResponse{Answer: f.answer}, nil
}

func TestSubmitResolves(t *testing.T) {
	a := &fakeAsker{answer: "A speaker introduces RAG."}
	c := NewController(a, nil, nil)
	assert.Equal(t, Idle, c.Current().Status)

	got, ok := c.Submit(context.Background(), "  What happens in the intro?  ")
	require.True(t, ok)
	assert.Equal(t, Request{
		Question: "What happens in the intro?",
		Status:   Resolved,
		Answer:   "A speaker introduces RAG.",
	}, got)
	assert.Equal(t, got, c.Current())
	assert.Equal(t, "What happens in the intro?", a.last.Load())
}

func TestEmptyAnswerUsesPlaceholder(t *testing.T) {
	c := NewController(&fakeAsker{answer: ""}, nil, nil)

	got, ok := c.Submit(context.Background(), "What happens in the intro?")
	require.True(t, ok)
	assert.Equal(t, Resolved, got.Status)
	assert.Equal(t, NoAnswer, got.Answer)
	assert.Empty(t, got.ErrorMessage)
}

func TestBlankQuestionIsRejected(t *testing.T) {
	a := &fakeAsker{answer: "x"}
	c := NewController(a, nil, nil)

	for _, q := range []string{"", "   ", "\t\n"} {
		_, ok := c.Submit(context.Background(), q)
		assert.False(t, ok)
		assert.Equal(t, Request{}, c.Current())
	}

	_, ok := c.Submit(context.Background(), "first")
	require.True(t, ok)
	resolved := c.Current()

	_, ok = c.Submit(context.Background(), "   ")
	assert.False(t, ok)
	assert.Equal(t, resolved, c.Current(), "terminal state is kept")
	assert.Equal(t, int32(1), a.calls.Load())
}

func TestSubmitWhilePendingIsNoop(t *testing.T) {
	a := &fakeAsker{answer: "done", release: make(chan struct{})}
	c := NewController(a, nil, nil)

	done, ok := c.Start(context.Background(), "first")
	require.True(t, ok)

	pending := c.Current()
	assert.Equal(t, Request{Question: "first", Status: Pending}, pending)

	_, ok = c.Start(context.Background(), "second")
	assert.False(t, ok)
	assert.Equal(t, pending, c.Current())

	close(a.release)
	final := <-done
	assert.Equal(t, Resolved, final.Status)
	assert.Equal(t, "first", final.Question)
	assert.Equal(t, int32(1), a.calls.Load())
}

func TestFailureDistinguishesNetwork(t *testing.T) {
	rec := &report.Recorder{}
	netErr := &api.NetworkError{Op: "ask question", Err: errors.New("connection refused")}
	c := NewController(&fakeAsker{err: netErr}, rec, nil)

	got, ok := c.Submit(context.Background(), "q")
	require.True(t, ok)
	assert.Equal(t, Failed, got.Status)
	assert.Empty(t, got.Answer)
	assert.Contains(t, got.ErrorMessage, "Could not reach the video service")

	var qe *QueryError
	require.True(t, errors.As(rec.Last(), &qe))
	assert.True(t, api.IsNetwork(qe))

	c2 := NewController(&fakeAsker{err: &api.HTTPError{Op: "ask question", StatusCode: 503, Message: "Ollama server is not running or not reachable."}}, nil, nil)
	got, _ = c2.Submit(context.Background(), "q")
	assert.Equal(t, Failed, got.Status)
	assert.Contains(t, got.ErrorMessage, "HTTP 503")
	assert.NotContains(t, got.ErrorMessage, "Could not reach")
}

func TestNewSubmissionClearsPreviousOutcome(t *testing.T) {
	a := &fakeAsker{err: errors.New("boom")}
	c := NewController(a, nil, nil)

	got, _ := c.Submit(context.Background(), "one")
	require.Equal(t, Failed, got.Status)

	a.err = nil
	a.answer = "two's answer"
	a.release = make(chan struct{})

	done, ok := c.Start(context.Background(), "two")
	require.True(t, ok)
	assert.Equal(t, Request{Question: "two", Status: Pending}, c.Current())

	close(a.release)
	got = <-done
	assert.Equal(t, Request{Question: "two", Status: Resolved, Answer: "two's answer"}, got)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.True(t, Failed.Terminal())
	assert.False(t, Idle.Terminal())
}
