package cli

import (
	"errors"
	"fmt"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

var errNoServiceManager = errors.New("no service manager available on this system; use 'vrag watch' instead")

// ServiceCmd groups the commands that manage the background watch service.
func ServiceCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage the background watch service",
	}

	action := func(use, short, done string, fn func(service.Service) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if env.Service == nil {
					return errNoServiceManager
				}
				if err := fn(env.Service); err != nil {
					return fmt.Errorf("failed to %s service: %w", use, err)
				}
				fmt.Fprintln(env.Out, done)
				return nil
			},
		}
	}

	cmd.AddCommand(
		action("install", "Install the service", "Service installed.", service.Service.Install),
		action("uninstall", "Uninstall the service", "Service uninstalled.", service.Service.Uninstall),
		action("start", "Start the service", "Service started.", service.Service.Start),
		action("stop", "Stop the service", "Service stopped.", service.Service.Stop),
		action("restart", "Restart the service", "Service restarted.", service.Service.Restart),
		&cobra.Command{
			Use:   "status",
			Short: "Show service status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if env.Service == nil {
					return errNoServiceManager
				}
				status, err := env.Service.Status()
				if err != nil {
					return fmt.Errorf("failed to get status: %w", err)
				}
				fmt.Fprintln(env.Out, statusText(status))
				return nil
			},
		},
		&cobra.Command{
			Use:    "run",
			Short:  "Run under the service manager",
			Hidden: true,
			Args:   cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if env.Service == nil {
					return errNoServiceManager
				}
				if env.Daemon.Session == nil {
					env.Daemon.Session = env.newSession(nil)
				}
				return env.Service.Run()
			},
		},
	)
	return cmd
}

func statusText(s service.Status) string {
	switch s {
	case service.StatusRunning:
		return "Running"
	case service.StatusStopped:
		return "Stopped"
	default:
		return "Unknown/Other"
	}
}
