//go:build tinygo

package device

import (
	"github.com/calvinmclean/motorloop/config"
	"github.com/calvinmclean/motorloop/sched"
)

// events is silent on the board: Run's error and the diagnostics dump go to the serial port
type events struct{}

func newEvents() events { return events{} }

func (events) schedOptions() []sched.Option { return nil }

func (events) registered(config.MotorConfig) {}
func (events) starting([]string)             {}
func (events) stopped()                      {}
func (events) failed(error)                  {}
func (events) diagnosticsFailed(error)       {}
