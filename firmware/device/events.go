//go:build !tinygo

package device

import (
	"go.uber.org/zap"

	"github.com/calvinmclean/motorloop/config"
	"github.com/calvinmclean/motorloop/sched"
)

// events logs device lifecycle changes
type events struct {
	logger *zap.Logger
}

func newEvents() events {
	return events{logger: zap.NewNop()}
}

// WithLogger sets the logger of the device and its scheduler
func WithLogger(l *zap.Logger) Option {
	return func(d *Device) {
		d.events.logger = l
	}
}

func (e events) schedOptions() []sched.Option {
	return []sched.Option{sched.WithLogger(e.logger)}
}

func (e events) registered(mc config.MotorConfig) {
	e.logger.Debug("registered motor task", zap.Stringer("motor", mc))
}

func (e events) starting(labels []string) {
	e.logger.Info("starting", zap.Strings("motors", labels))
}

func (e events) stopped() {
	e.logger.Info("stopped")
}

func (e events) failed(err error) {
	e.logger.Error("scheduler failed", zap.Error(err))
}

func (e events) diagnosticsFailed(err error) {
	e.logger.Error("error writing diagnostics", zap.Error(err))
}
