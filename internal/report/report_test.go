package report

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-rag-client/internal/api"
)

type userErr struct{ msg string }

func (e userErr) Error() string       { return "internal: " + e.msg }
func (e userErr) UserMessage() string { return e.msg }

func TestWriterPrintsOnceAndDoesNotLogErrors(t *testing.T) {
	var out, logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	w := NewWriter(&out, logger)

	w.Report(userErr{msg: "Failed to get answer."})
	w.Report(nil)

	assert.Equal(t, "Error: Failed to get answer.\n", out.String())
	assert.NotContains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "level=DEBUG")
}

func TestHintDistinguishesCauses(t *testing.T) {
	network := &api.NetworkError{Op: "ask question", Err: errors.New("connection refused")}
	assert.Contains(t, Hint(network), "Could not reach the video service")

	server := &api.HTTPError{Op: "ask question", StatusCode: http.StatusInternalServerError, Message: "boom"}
	assert.Equal(t, "The video service failed (HTTP 500): boom", Hint(server))

	rejected := &api.HTTPError{Op: "upload video", StatusCode: http.StatusBadRequest}
	assert.Equal(t, "The video service rejected the request (HTTP 400).", Hint(rejected))

	bad := fmt.Errorf("list videos: %w: no videos list", api.ErrBadResponse)
	assert.Contains(t, Hint(bad), "could not read")
}

func TestMessagePrefersUserMessage(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", userErr{msg: "Please select a valid video file"})
	assert.Equal(t, "Please select a valid video file", Message(err))
	assert.Empty(t, Message(nil))
}

func TestRecorderAndMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, nil, b}

	first, second := errors.New("first"), errors.New("second")
	m.Report(first)
	m.Report(second)
	m.Report(nil)

	require.Len(t, a.Errors(), 2)
	assert.Equal(t, second, a.Last())
	assert.Equal(t, a.Errors(), b.Errors())

	a.Reset()
	assert.Nil(t, a.Last())
	assert.Empty(t, a.Errors())
	assert.Len(t, b.Errors(), 2)
}
