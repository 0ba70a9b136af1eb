package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calvinmclean/motorloop/logging"
)

type rootOptions struct {
	verbose bool
	logger  *zap.Logger
}

// NewRootCommand creates the motorloop command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "motorloop",
		Short: "Capture and inspect closed-loop motor step responses",
		Long: `motorloop talks to the two motor step-response rig over serial.
It starts the rig, collects one window per motor, plots the responses
and optionally uploads them to an archive. The firmware logic can also
run on the host against simulated motors.

Serial settings are read from SERIAL_PORT, BAUD_RATE, LABELS, PLOT_DIR,
ARCHIVE_ADDR and CAPTURE_TIMEOUT.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.NewLogger("motorloop", opts.verbose)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newCaptureCommand(opts),
		newSimCommand(opts),
		newPortsCommand(),
		newArchiveCommand(opts),
		newUICommand(opts),
	)

	return root
}

// signalContext is cancelled on interrupt
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}
