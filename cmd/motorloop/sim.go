package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calvinmclean/motorloop/config"
	"github.com/calvinmclean/motorloop/firmware/commands"
	"github.com/calvinmclean/motorloop/firmware/device"
	"github.com/calvinmclean/motorloop/reporter"
	"github.com/calvinmclean/motorloop/sim"
)

type simOptions struct {
	configPath   string
	capture      bool
	maxSpeed     float64
	timeConstant time.Duration
}

func newSimCommand(opts *rootOptions) *cobra.Command {
	simOpts := &simOptions{}

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run the firmware against simulated motors",
		Long: `sim runs the control tasks, scheduler and console on the host with a
first order model of each motor. The report stream goes to stdout and
console commands are read from stdin. Use --capture to feed the stream
straight into the reporter instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()

			cfg, err := config.Load(simOpts.configPath)
			if err != nil {
				return err
			}

			if simOpts.capture {
				return simCapture(ctx, cfg, simOpts, opts.logger, cmd.OutOrStdout())
			}

			in := commands.NewStreamReader(os.Stdin)
			d, err := newSimDevice(cfg, simOpts, os.Stdout, in, opts.logger)
			if err != nil {
				return err
			}

			err = commands.WaitForStart(ctx, in, os.Stdout)
			if err != nil {
				return err
			}
			return d.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&simOpts.configPath, "config", "c", "", "YAML rig configuration")
	cmd.Flags().BoolVar(&simOpts.capture, "capture", false, "capture the simulated stream with the reporter")
	cmd.Flags().Float64Var(&simOpts.maxSpeed, "max-speed", 16384, "simulated motor speed at full duty in ticks/s")
	cmd.Flags().DurationVar(&simOpts.timeConstant, "time-constant", 150*time.Millisecond, "simulated motor time constant")

	return cmd
}

func newSimDevice(cfg config.Config, simOpts *simOptions, out io.Writer, in commands.ByteReader, logger *zap.Logger) (*device.Device, error) {
	clk := clock.New()

	motors := make([]device.Motor, len(cfg.Motors))
	for i := range motors {
		m := sim.NewMotor(sim.Config{
			MaxSpeed:     simOpts.maxSpeed,
			TimeConstant: simOpts.timeConstant,
		}, sim.WithClock(clk))
		motors[i] = device.Motor{Counter: m, Actuator: m}
	}

	return device.New(cfg, motors, out, device.WithClock(clk), device.WithLogger(logger), device.WithConsole(in))
}

// simRig is the host end of a simulated serial connection
type simRig struct {
	io.Reader
	io.Writer

	done <-chan error
}

// startSimRig runs a simulated device behind a pair of pipes, like the rig behind a serial port
func startSimRig(ctx context.Context, cfg config.Config, simOpts *simOptions, logger *zap.Logger) (*simRig, error) {
	outR, outW := io.Pipe()
	inR, inW := io.Pipe()

	console := commands.NewStreamReader(inR)
	d, err := newSimDevice(cfg, simOpts, outW, console, logger)
	if err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() {
		err := commands.WaitForStart(ctx, console, outW)
		if err == nil {
			err = d.Run(ctx)
		}
		_ = outW.Close()
		done <- err
	}()

	return &simRig{Reader: outR, Writer: inW, done: done}, nil
}

func simCapture(ctx context.Context, cfg config.Config, simOpts *simOptions, logger *zap.Logger, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rig, err := startSimRig(ctx, cfg, simOpts, logger)
	if err != nil {
		return err
	}

	rcfg, err := reporter.NewConfigFromEnv()
	if err != nil {
		return err
	}
	rcfg.Labels = lo.Map(cfg.Motors, func(m config.MotorConfig, _ int) string {
		return m.Label
	})

	captureErr := capture(ctx, rcfg, rig, logger, out)

	// the diagnostics written after the stop still need a reader
	go func() {
		_, _ = io.Copy(io.Discard, rig.Reader)
	}()
	if captureErr != nil {
		cancel()
	}

	err = <-rig.done
	if captureErr != nil {
		return captureErr
	}
	return err
}
