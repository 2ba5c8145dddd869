package main

import (
	"log"
	"os"

	"video-rag-client/internal/cli"
	"video-rag-client/internal/daemon"

	"github.com/kardianos/service"
)

func main() {
	svcConfig := &service.Config{
		Name:        "video-rag-watch",
		DisplayName: "Video RAG Watch",
		Description: "Uploads videos dropped into a folder to the video RAG service.",
		Arguments:   []string{"service", "run"},
		Option: service.KeyValue{
			"UserService": true,
		},
	}

	prg := &daemon.Daemon{}
	env := &cli.Env{
		CfgPath: cli.DefaultConfigPath(),
		Daemon:  prg,
		In:      os.Stdin,
		Out:     os.Stdout,
		Err:     os.Stderr,
	}

	// Without a service manager the CLI still works; only `service ...` is refused.
	s, err := service.New(prg, svcConfig)
	if err == nil {
		env.Service = s

		errs := make(chan error, 5)
		if sysLogger, err := s.Logger(errs); err == nil {
			env.SysLogger = sysLogger
			go func() {
				for err := range errs {
					if err != nil {
						log.Print(err)
					}
				}
			}()
		}
	}

	os.Exit(cli.Execute(env, os.Args[1:]))
}
