package deletion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-rag-client/internal/api"
	"video-rag-client/internal/report"
)

type fakeDeleter struct {
	calls []string
	err   error
}

func (f *fakeDeleter) DeleteVideo(ctx context.Context, identifier string) (*api.DeleteAck, error) {
	f.calls = append(f.calls, identifier)
	if f.err != nil {
		return nil, f.err
	}
	return &api.DeleteAck{Message: "deleted"}, nil
}

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.calls++
	return f.err
}

func answer(yes bool, prompts *[]string) Confirmer {
	return ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		*prompts = append(*prompts, prompt)
		return yes, nil
	})
}

func TestDeclinedConfirmationDoesNothing(t *testing.T) {
	var prompts []string
	del := &fakeDeleter{}
	ref := &fakeRefresher{}
	rec := &report.Recorder{}
	c := NewCoordinator(del, ref, answer(false, &prompts), rec, nil)

	require.NoError(t, c.RequestDelete(context.Background(), "a.mp4"))

	assert.Equal(t, []string{`Are you sure you want to delete "a.mp4"?`}, prompts)
	assert.Empty(t, del.calls)
	assert.Zero(t, ref.calls)
	assert.Empty(t, rec.Errors())
}

func TestConfirmErrorIsDecline(t *testing.T) {
	del := &fakeDeleter{}
	c := NewCoordinator(del, &fakeRefresher{}, ConfirmFunc(func(context.Context, string) (bool, error) {
		return false, context.Canceled
	}), nil, nil)

	require.NoError(t, c.RequestDelete(context.Background(), "a.mp4"))
	assert.Empty(t, del.calls)
}

func TestConfirmedDeleteRefreshes(t *testing.T) {
	var prompts []string
	del := &fakeDeleter{}
	ref := &fakeRefresher{}
	c := NewCoordinator(del, ref, answer(true, &prompts), nil, nil)

	require.NoError(t, c.RequestDelete(context.Background(), "a.mp4"))
	assert.Equal(t, []string{"a.mp4"}, del.calls)
	assert.Equal(t, 1, ref.calls)
}

func TestDeleteNotFoundReportsDeletionError(t *testing.T) {
	del := &fakeDeleter{err: &api.HTTPError{Op: "delete video", StatusCode: 404, Message: "Video file not found."}}
	ref := &fakeRefresher{}
	rec := &report.Recorder{}
	c := NewCoordinator(del, ref, AlwaysConfirm, rec, nil)

	err := c.RequestDelete(context.Background(), "a.mp4")

	var de *DeletionError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "a.mp4", de.Identifier)
	assert.Equal(t, 404, api.StatusCode(err))
	assert.Zero(t, ref.calls, "no refresh after a failed delete")
	assert.Equal(t, []error{err}, rec.Errors())
	assert.Contains(t, report.Message(err), "not found")
}

func TestRefreshFailureAfterDeleteIsNotADeleteFailure(t *testing.T) {
	refreshErr := errors.New("listing unavailable")
	del := &fakeDeleter{}
	ref := &fakeRefresher{err: refreshErr}
	rec := &report.Recorder{}
	c := NewCoordinator(del, ref, AlwaysConfirm, rec, nil)

	err := c.RequestDelete(context.Background(), "a.mp4")

	assert.NoError(t, err)
	assert.Equal(t, []error{refreshErr}, rec.Errors())
	for _, e := range rec.Errors() {
		var de *DeletionError
		assert.False(t, errors.As(e, &de))
	}
}
