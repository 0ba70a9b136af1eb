// Package main is the host CLI: it captures step responses from the rig, runs the firmware
// against simulated motors, serves the response archive and runs the desktop UI
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
