package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"video-rag-client/internal/config"
	"video-rag-client/internal/deletion"
	"video-rag-client/internal/library"
	"video-rag-client/internal/query"
	"video-rag-client/internal/sysinfo"

	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command and all subcommands for the CLI.
func NewRootCmd(env *Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vrag",
		Short:         "Video RAG client: manage your video library and ask questions about it",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.setup()
		},
	}
	rootCmd.SetIn(env.In)
	rootCmd.SetOut(env.Out)
	rootCmd.SetErr(env.Err)
	rootCmd.PersistentFlags().StringVar(&env.CfgPath, "config", env.CfgPath, "path to config.json")
	rootCmd.PersistentFlags().BoolVarP(&env.Verbose, "verbose", "v", false, "also log to stderr, at debug level")

	rootCmd.AddCommand(
		videosCmd(env),
		uploadCmd(env),
		deleteCmd(env),
		askCmd(env),
		shellCmd(env),
		watchCmd(env),
		ServiceCmd(env),
		logsCmd(env),
		infoCmd(env),
		shareCmd(env),
		configCmd(env),
	)
	return rootCmd
}

func videosCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "videos",
		Aliases: []string{"ls", "list"},
		Short:   "List the videos known to the service",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := env.newSession(nil)
			if err := sess.Open(cmd.Context()); err != nil {
				return errReported
			}
			printVideos(env.Out, sess.Library.Snapshot())
			return nil
		},
	}
}

func uploadCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload video files (MP4, MOV, AVI, MKV)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := env.newSession(nil)
			failed := false
			for _, path := range args {
				fmt.Fprintf(env.Out, "Uploading %s...\n", path)
				if err := sess.UploadPath(cmd.Context(), path); err != nil {
					failed = true
					continue
				}
				fmt.Fprintf(env.Out, "Uploaded %s\n", path)
			}
			if snap := sess.Library.Snapshot(); !snap.RefreshedAt.IsZero() {
				printVideos(env.Out, snap)
			}
			if failed {
				return errReported
			}
			return nil
		},
	}
}

func deleteCmd(env *Env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <identifier>",
		Aliases: []string{"rm"},
		Short:   "Delete a video from the service",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirmer := &confirmTracker{Confirmer: NewPrompter(bufio.NewReader(env.In), env.Out)}
			if yes {
				confirmer.Confirmer = deletion.AlwaysConfirm
			}
			sess := env.newSession(confirmer)
			if err := sess.Deletes.RequestDelete(cmd.Context(), args[0]); err != nil {
				return errReported
			}
			if confirmer.confirmed {
				fmt.Fprintf(env.Out, "Deleted %s\n", args[0])
				if snap := sess.Library.Snapshot(); !snap.RefreshedAt.IsZero() {
					printVideos(env.Out, snap)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func askCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>...",
		Short: "Ask a question about your uploaded videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := env.newSession(nil)
			req, ok := sess.Queries.Submit(cmd.Context(), strings.Join(args, " "))
			if !ok {
				return fmt.Errorf("question is empty")
			}
			if req.Status != query.Resolved {
				return errReported
			}
			fmt.Fprintln(env.Out, req.Answer)
			return nil
		},
	}
}

func watchCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Upload videos dropped into the watch folder (foreground)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if env.Daemon.Session == nil {
				env.Daemon.Session = env.newSession(nil)
			}
			if err := env.Daemon.Start(env.Service); err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "Watching %s. Press Ctrl+C to stop.\n", env.Cfg.WatchPath)
			<-ctx.Done()
			return env.Daemon.Stop(env.Service)
		},
	}
}

func logsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Show the client log",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			f, err := os.Open(env.Cfg.LogPath)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Fprintln(env.Out, "No logs found.")
					return
				}
				fmt.Fprintf(env.Out, "Error opening log file: %v\n", err)
				return
			}
			defer f.Close()
			if _, err := io.Copy(env.Out, f); err != nil {
				fmt.Fprintf(env.Out, "Error reading logs: %v\n", err)
			}
		},
	}
}

func infoCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show host details and whether the service is reachable",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fields := sysinfo.Collect(env.Cfg.WatchPath)
			fields = append(fields,
				sysinfo.Field{Name: "Config", Value: env.CfgPath},
				sysinfo.Field{Name: "Endpoint", Value: env.Cfg.Endpoint},
			)

			sess := env.newSession(nil)
			if names, err := sess.Client.ListVideos(cmd.Context()); err != nil {
				fields = append(fields, sysinfo.Field{Name: "Service", Value: "unreachable (" + err.Error() + ")"})
			} else {
				fields = append(fields, sysinfo.Field{Name: "Service", Value: fmt.Sprintf("ok, %d videos", len(names))})
			}

			w := sysinfo.Width(fields)
			for _, f := range fields {
				fmt.Fprintf(env.Out, "%-*s  %s\n", w, f.Name, f.Value)
			}
		},
	}
}

func shareCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "share",
		Short: "Print a QR code that opens the web client on a phone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url := env.Cfg.WebClientURL
			if url == "" {
				return fmt.Errorf("web_client_url is not configured")
			}
			fmt.Fprintf(env.Out, "Scan to open %s\n", url)
			qrterminal.GenerateHalfBlock(url, qrterminal.L, env.Out)
			return nil
		},
	}
}

func configCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				enc := json.NewEncoder(env.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(env.Cfg)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the effective configuration to the config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := config.Save(env.CfgPath, env.Cfg); err != nil {
					return err
				}
				fmt.Fprintf(env.Out, "Configuration saved to %s\n", env.CfgPath)
				return nil
			},
		},
	)
	return cmd
}

func printVideos(out io.Writer, snap library.Snapshot) {
	fmt.Fprintf(out, "Uploaded Videos (%d)\n", snap.Len())
	if snap.Len() == 0 {
		fmt.Fprintln(out, "  No videos uploaded yet")
		return
	}
	width := 0
	for _, a := range snap.Assets {
		width = max(width, len(a.DisplayName))
	}
	for _, a := range snap.Assets {
		fmt.Fprintf(out, "  %-*s  %s\n", width, a.DisplayName, a.SizeLabel())
	}
}
