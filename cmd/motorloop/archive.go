package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calvinmclean/motorloop/archive"
)

func newArchiveCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Serve the step response archive API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()

			opts.logger.Info("serving archive", zap.String("addr", addr), zap.String("path", archive.Path))
			return archive.Serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")

	return cmd
}
