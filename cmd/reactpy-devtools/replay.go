package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/reactpy-go/client/internal/config"
	"github.com/reactpy-go/client/internal/devserver"
)

func replayCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "replay <trace.json>",
		Short: "Serve a single recorded layout-update trace over /stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(args[0], port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to bind (default from reactpy-devtools.yaml)")

	return cmd
}

func runReplay(tracePath string, port int) error {
	if _, err := devserver.LoadTrace(tracePath); err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	srv := devserver.New(cfg, nil, logger)

	info("reactpy-devtools replay")
	success("connect pkg/vclient to ws://%s/stream?trace=%s", cfg.Addr(), tracePath)

	return srv.Run(context.Background())
}
