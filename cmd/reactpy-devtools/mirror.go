package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reactpy-go/client/internal/config"
	"github.com/reactpy-go/client/internal/devserver"
)

func mirrorCmd() *cobra.Command {
	var (
		accessKeyID     string
		secretAccessKey string
	)

	cmd := &cobra.Command{
		Use:   "mirror [module names...]",
		Short: "Cache import-source module bundles from S3 into the local modules directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMirror(args, accessKeyID, secretAccessKey)
		},
	}

	cmd.Flags().StringVar(&accessKeyID, "aws-access-key-id", "", "AWS access key (default: SDK credential chain)")
	cmd.Flags().StringVar(&secretAccessKey, "aws-secret-access-key", "", "AWS secret key")

	return cmd
}

func runMirror(names []string, accessKeyID, secretAccessKey string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}
	if cfg.Mirror.Bucket == "" {
		return fmt.Errorf("reactpy-devtools.yaml has no mirror.bucket configured")
	}

	ctx := context.Background()
	m, err := devserver.NewMirror(ctx, cfg, accessKeyID, secretAccessKey)
	if err != nil {
		return err
	}

	for _, name := range names {
		path, err := m.Fetch(ctx, name)
		if err != nil {
			return fmt.Errorf("mirror %q: %w", name, err)
		}
		success("mirrored %s -> %s", name, path)
	}
	return nil
}
