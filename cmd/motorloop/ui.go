package main

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calvinmclean/motorloop/config"
	"github.com/calvinmclean/motorloop/reporter"
	"github.com/calvinmclean/motorloop/ui"
)

func newUICommand(opts *rootOptions) *cobra.Command {
	var simulate bool
	simOpts := &simOptions{maxSpeed: 16384, timeConstant: 150 * time.Millisecond}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the desktop window for the rig",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()

			cfg, err := reporter.NewConfigFromEnv()
			if err != nil {
				return err
			}

			responseUI := ui.NewResponseUI(cfg.Labels)

			connect := func(cfg reporter.Config) (io.Writer, error) {
				port, err := reporter.OpenPort(cfg)
				if err != nil {
					return nil, err
				}

				go func() {
					_, err := io.Copy(io.MultiWriter(os.Stdout, responseUI), port)
					if err != nil {
						opts.logger.Error("error reading serial port", zap.Error(err))
					}
				}()
				go func() {
					_, _ = io.Copy(port, os.Stdin)
				}()

				return port, nil
			}

			if simulate {
				rigCfg, err := config.Load(simOpts.configPath)
				if err != nil {
					return err
				}
				cfg.SerialPort = "sim"

				connect = func(reporter.Config) (io.Writer, error) {
					rig, err := startSimRig(ctx, rigCfg, simOpts, opts.logger)
					if err != nil {
						return nil, err
					}

					go func() {
						_, _ = io.Copy(io.MultiWriter(os.Stdout, responseUI), rig.Reader)
						err := <-rig.done
						if err != nil {
							opts.logger.Error("simulated rig stopped", zap.Error(err))
						}
					}()

					return rig, nil
				}
			}

			responseUI.Run(ctx, &cfg, connect)
			return nil
		},
	}

	cmd.Flags().BoolVar(&simulate, "sim", false, "drive simulated motors instead of a serial port")
	cmd.Flags().StringVarP(&simOpts.configPath, "config", "c", "", "YAML rig configuration for --sim")

	return cmd
}
