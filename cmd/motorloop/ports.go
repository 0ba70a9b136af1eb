package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calvinmclean/motorloop/reporter"
)

func newPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List connected USB serial ports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ports, err := reporter.GetSerialPorts()
			if errors.Is(err, reporter.ErrNoUSBSerial) {
				fmt.Fprintln(cmd.OutOrStdout(), "No USB serial ports found.")
				return nil
			}
			if err != nil {
				return err
			}

			for _, p := range ports {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}
