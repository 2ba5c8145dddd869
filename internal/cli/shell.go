package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"video-rag-client/internal/query"
	"video-rag-client/internal/report"
	"video-rag-client/internal/session"

	"github.com/spf13/cobra"
)

const shellHelp = `Commands:
  ls            list uploaded videos
  refresh       reload the list from the service
  up <path>     upload a video file
  rm <id>       delete a video (asks first)
  status        show the last question and the last error (dismisses it)
  help          show this help
  quit          leave the shell
Anything else is sent as a question.`

func shellCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session: browse, upload, delete and ask",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(env.In)
			rec := &report.Recorder{}
			confirmer := &confirmTracker{Confirmer: NewPrompter(in, env.Out)}
			sess := session.New(env.Cfg, confirmer,
				report.Multi{report.NewWriter(env.Err, env.Logger), rec}, env.Logger)
			sh := &shell{sess: sess, rec: rec, confirmer: confirmer, in: in, out: env.Out}
			return sh.run(cmd.Context())
		},
	}
}

type shell struct {
	sess      *session.Session
	rec       *report.Recorder
	confirmer *confirmTracker
	in        *bufio.Reader
	out       io.Writer
}

func (sh *shell) run(ctx context.Context) error {
	fmt.Fprintf(sh.out, "Connected to %s. Type 'help' for commands.\n", sh.sess.Client.BaseURL)
	if sh.sess.Open(ctx) == nil {
		printVideos(sh.out, sh.sess.Library.Snapshot())
	}

	for {
		fmt.Fprint(sh.out, "vrag> ")
		line, err := sh.in.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(sh.out)
			return nil
		}
		if !sh.exec(ctx, strings.TrimSpace(line)) {
			return nil
		}
	}
}

// exec runs one shell line and reports whether the loop should continue.
func (sh *shell) exec(ctx context.Context, line string) bool {
	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch verb {
	case "":
	case "quit", "exit":
		return false
	case "help", "?":
		fmt.Fprintln(sh.out, shellHelp)
	case "ls":
		printVideos(sh.out, sh.sess.Library.Snapshot())
	case "refresh":
		if sh.sess.Refresh(ctx) == nil {
			printVideos(sh.out, sh.sess.Library.Snapshot())
		}
	case "up":
		if arg == "" {
			fmt.Fprintln(sh.out, "usage: up <path>")
			break
		}
		p, err := sh.sess.SelectPath(arg)
		if err != nil {
			break
		}
		fmt.Fprintf(sh.out, "Uploading %s (Size: %s)...\n", p.Filename, p.SizeLabel())
		if sh.sess.SubmitSelection(ctx) == nil {
			fmt.Fprintf(sh.out, "Uploaded %s\n", p.Filename)
			printVideos(sh.out, sh.sess.Library.Snapshot())
		}
	case "rm":
		if arg == "" {
			fmt.Fprintln(sh.out, "usage: rm <id>")
			break
		}
		if sh.sess.Deletes.RequestDelete(ctx, arg) == nil && sh.confirmer.confirmed {
			fmt.Fprintf(sh.out, "Deleted %s\n", arg)
			printVideos(sh.out, sh.sess.Library.Snapshot())
		}
	case "status":
		sh.status()
	default:
		sh.ask(ctx, line)
	}
	return true
}

func (sh *shell) ask(ctx context.Context, question string) {
	done, ok := sh.sess.Queries.Start(ctx, question)
	if !ok {
		return
	}
	fmt.Fprintln(sh.out, "Thinking...")
	req := <-done
	if req.Status == query.Resolved {
		fmt.Fprintf(sh.out, "Answer: %s\n", req.Answer)
	}
}

// status shows the current question and its outcome, then the last reported
// error. A shown error is dismissed.
func (sh *shell) status() {
	cur := sh.sess.Queries.Current()
	fmt.Fprintf(sh.out, "Query: %s", cur.Status)
	if cur.Question != "" {
		fmt.Fprintf(sh.out, " (%q)", cur.Question)
	}
	fmt.Fprintln(sh.out)
	if cur.Status.Terminal() {
		if cur.Status == query.Resolved {
			fmt.Fprintf(sh.out, "  Answer: %s\n", cur.Answer)
		} else {
			fmt.Fprintf(sh.out, "  %s\n", cur.ErrorMessage)
		}
	}
	if err := sh.rec.Last(); err != nil {
		fmt.Fprintf(sh.out, "Last error: %s\n", report.Message(err))
		sh.rec.Reset()
	}
}
