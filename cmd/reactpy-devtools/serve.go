package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/reactpy-go/client/internal/config"
	"github.com/reactpy-go/client/internal/devserver"
)

func serveCmd() *cobra.Command {
	var (
		port            int
		host            string
		accessKeyID     string
		secretAccessKey string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve import-source modules and a simulated layout-update stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, host, accessKeyID, secretAccessKey)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to bind (default from reactpy-devtools.yaml)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind (default from reactpy-devtools.yaml)")
	cmd.Flags().StringVar(&accessKeyID, "aws-access-key-id", "", "AWS access key for the module mirror (default: SDK credential chain)")
	cmd.Flags().StringVar(&secretAccessKey, "aws-secret-access-key", "", "AWS secret key for the module mirror")

	return cmd
}

func runServe(port int, host, accessKeyID, secretAccessKey string) error {
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
	if host != "" {
		cfg.Server.Host = host
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx := context.Background()
	mirror, err := devserver.NewMirror(ctx, cfg, accessKeyID, secretAccessKey)
	if err != nil {
		logger.Warn("module mirror disabled", "error", err)
		mirror = nil
	}

	info("reactpy-devtools serve")
	info("listening on %s", cfg.Addr())
	if mirror != nil {
		info("mirroring modules from s3://%s/%s", cfg.Mirror.Bucket, cfg.Mirror.Prefix)
	}

	srv := devserver.New(cfg, mirror, logger)
	return srv.Run(ctx)
}
