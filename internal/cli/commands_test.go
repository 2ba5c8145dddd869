package cli

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-rag-client/internal/config"
	"video-rag-client/internal/daemon"
	"video-rag-client/internal/fakesvc"
)

type run struct {
	code int
	out  string
	err  string
}

// execute runs the CLI against svc with a fresh config in a temp dir.
func execute(t *testing.T, svc *fakesvc.Service, stdin string, args ...string) run {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.Endpoint = svc.URL
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, config.Save(cfgPath, cfg))

	var out, errOut bytes.Buffer
	env := &Env{
		CfgPath: cfgPath,
		Daemon:  &daemon.Daemon{},
		In:      strings.NewReader(stdin),
		Out:     &out,
		Err:     &errOut,
	}
	code := Execute(env, args)
	return run{code: code, out: out.String(), err: errOut.String()}
}

func writeVideo(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVideosCommand(t *testing.T) {
	svc := fakesvc.New("intro.mp4", "talk.mkv")
	defer svc.Close()

	r := execute(t, svc, "", "videos")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "Uploaded Videos (2)")
	assert.Contains(t, r.out, "intro.mp4")
	assert.Contains(t, r.out, "unknown")
}

func TestVideosCommandEmpty(t *testing.T) {
	svc := fakesvc.New()
	defer svc.Close()

	r := execute(t, svc, "", "ls")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "No videos uploaded yet")
}

func TestVideosCommandServiceDown(t *testing.T) {
	svc := fakesvc.New()
	svc.Close()

	r := execute(t, svc, "", "videos")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.err, "Failed to fetch video list from server")
	assert.Equal(t, 1, strings.Count(r.err, "Error:"))
}

func TestUploadCommand(t *testing.T) {
	svc := fakesvc.New()
	defer svc.Close()
	path := writeVideo(t, "clip.mp4", "frames")

	r := execute(t, svc, "", "upload", path)
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "Uploaded "+path)
	assert.Contains(t, r.out, "Uploaded Videos (1)")
	assert.Equal(t, []byte("frames"), svc.Content("clip.mp4"))
}

func TestUploadCommandRejectsNonVideo(t *testing.T) {
	svc := fakesvc.New()
	defer svc.Close()
	path := writeVideo(t, "notes.txt", "hello")

	r := execute(t, svc, "", "upload", path)
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.err, "Please select a valid video file (MP4, MOV, AVI, MKV)")
	assert.Empty(t, svc.Videos())
}

func TestDeleteCommandDeclined(t *testing.T) {
	svc := fakesvc.New("a.mp4")
	defer svc.Close()

	r := execute(t, svc, "n\n", "delete", "a.mp4")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, `Are you sure you want to delete "a.mp4"? [y/N]`)
	assert.Empty(t, svc.Deletes())
	assert.Equal(t, []string{"a.mp4"}, svc.Videos())
}

func TestDeleteCommandConfirmed(t *testing.T) {
	svc := fakesvc.New("a.mp4", "b.mp4")
	defer svc.Close()

	r := execute(t, svc, "yes\n", "delete", "a.mp4")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "Deleted a.mp4")
	assert.Contains(t, r.out, "Uploaded Videos (1)")
	assert.Equal(t, []string{"b.mp4"}, svc.Videos())
}

func TestDeleteCommandRefreshFails(t *testing.T) {
	svc := fakesvc.New("a.mp4")
	defer svc.Close()
	svc.Fail(fakesvc.RouteList, http.StatusInternalServerError)

	r := execute(t, svc, "", "delete", "--yes", "a.mp4")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "Deleted a.mp4")
	assert.Contains(t, r.err, "Failed to fetch video list from server")
	assert.Empty(t, svc.Videos())
}

func TestDeleteCommandNotFound(t *testing.T) {
	svc := fakesvc.New()
	defer svc.Close()

	r := execute(t, svc, "", "delete", "--yes", "ghost.mp4")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.err, "not found")
}

func TestAskCommand(t *testing.T) {
	svc := fakesvc.New()
	defer svc.Close()
	answer := "It explains retrieval."
	svc.SetAnswer(&answer)

	r := execute(t, svc, "", "ask", "What", "is", "this?")
	require.Equal(t, 0, r.code, r.err)
	assert.Equal(t, "It explains retrieval.\n", r.out)
	assert.Equal(t, []string{"What is this?"}, svc.Asked())
}

func TestAskCommandNoAnswer(t *testing.T) {
	svc := fakesvc.New()
	defer svc.Close()

	r := execute(t, svc, "", "ask", "anything")
	require.Equal(t, 0, r.code, r.err)
	assert.Equal(t, "No answer received\n", r.out)
}

func TestAskCommandServiceError(t *testing.T) {
	svc := fakesvc.New()
	defer svc.Close()
	svc.Fail(fakesvc.RouteAsk, http.StatusInternalServerError)

	r := execute(t, svc, "", "ask", "anything")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.err, "Failed to get answer")
	assert.Empty(t, r.out)
}

func TestShell(t *testing.T) {
	svc := fakesvc.New("a.mp4")
	defer svc.Close()
	answer := "Because."
	svc.SetAnswer(&answer)
	path := writeVideo(t, "b.mov", "data")

	input := strings.Join([]string{
		"up " + path,
		"rm a.mp4",
		"y",
		"why?",
		"status",
		"quit",
	}, "\n") + "\n"

	r := execute(t, svc, input, "shell")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "Answer: Because.")
	assert.Contains(t, r.out, `Query: resolved ("why?")`)
	assert.Equal(t, []string{"b.mov"}, svc.Videos())
	assert.Empty(t, r.err)
}

func TestShellReportsErrors(t *testing.T) {
	svc := fakesvc.New()
	defer svc.Close()
	svc.Fail(fakesvc.RouteAsk, http.StatusInternalServerError)

	r := execute(t, svc, "why?\nstatus\nstatus\n", "shell")
	require.Equal(t, 0, r.code)
	assert.Contains(t, r.err, "Failed to get answer")
	assert.Contains(t, r.out, `Query: failed ("why?")`)
	assert.Equal(t, 1, strings.Count(r.out, "Last error: Failed to get answer"))
}

func TestShellUploadShowsSize(t *testing.T) {
	svc := fakesvc.New()
	defer svc.Close()
	path := writeVideo(t, "clip.mp4", "frames")

	r := execute(t, svc, "up "+path+"\n", "shell")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "Uploading clip.mp4 (Size: 0.00 MB)...")
	assert.Contains(t, r.out, "Uploaded clip.mp4")
	assert.Equal(t, []string{"clip.mp4"}, svc.Videos())
}

func TestServiceCommandWithoutManager(t *testing.T) {
	svc := fakesvc.New()
	defer svc.Close()

	r := execute(t, svc, "", "service", "status")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.err, "no service manager")
}

func TestConfigShow(t *testing.T) {
	svc := fakesvc.New()
	defer svc.Close()

	r := execute(t, svc, "", "config", "show")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, `"endpoint": "`+svc.URL+`"`)
}

func TestShare(t *testing.T) {
	svc := fakesvc.New()
	defer svc.Close()

	r := execute(t, svc, "", "share")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "Scan to open "+config.DefaultWebClientURL)
	assert.Greater(t, strings.Count(r.out, "\n"), 10)
}

func TestInfoReportsReachability(t *testing.T) {
	svc := fakesvc.New("a.mp4")
	defer svc.Close()

	r := execute(t, svc, "", "info")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "ok, 1 videos")
}
