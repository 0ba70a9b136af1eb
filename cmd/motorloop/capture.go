package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calvinmclean/motorloop"
	"github.com/calvinmclean/motorloop/archive"
	"github.com/calvinmclean/motorloop/reporter"
)

func newCaptureCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "capture",
		Short: "Capture one step response per motor from the rig",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()

			cfg, err := reporter.NewConfigFromEnv()
			if err != nil {
				return err
			}

			port, err := reporter.OpenPort(cfg)
			if err != nil {
				return err
			}
			defer port.Close()

			return capture(ctx, cfg, port, opts.logger, cmd.OutOrStdout())
		},
	}
}

// capture runs the reporter on an open connection and handles the results
func capture(ctx context.Context, cfg reporter.Config, port io.ReadWriter, logger *zap.Logger, out io.Writer) error {
	r := reporter.New(cfg, reporter.WithLogger(logger), reporter.WithEcho(os.Stderr))

	series, err := r.Capture(ctx, port)
	if err != nil {
		return err
	}
	capturedAt := time.Now()

	files, err := reporter.SavePlots(cfg.PlotDir, series)
	if err != nil {
		return err
	}
	logger.Info("saved plots", zap.Strings("files", files))

	ids := make([]string, len(series))
	if cfg.ArchiveAddr != "" {
		uploaded, err := archive.NewClient(cfg.ArchiveAddr).UploadAll(ctx, series, capturedAt)
		if err != nil {
			return fmt.Errorf("error uploading to archive: %w", err)
		}
		copy(ids, uploaded)
	}

	printSummary(out, series, ids)
	return nil
}

func printSummary(out io.Writer, series []motorloop.Series, ids []string) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Motor", "Samples", "Duration", "Final Position", "Archive ID"})
	for i, s := range series {
		var last motorloop.Point
		if len(s.Points) > 0 {
			last = s.Points[len(s.Points)-1]
		}
		t.AppendRow(table.Row{
			s.Label,
			len(s.Points),
			fmt.Sprintf("%d ms", last.ElapsedMS),
			last.Position,
			ids[i],
		})
	}
	t.Render()
}
