package device

import (
	"context"
	"fmt"
	"io"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/calvinmclean/motorloop"
	"github.com/calvinmclean/motorloop/config"
	"github.com/calvinmclean/motorloop/control"
	"github.com/calvinmclean/motorloop/encoder"
	"github.com/calvinmclean/motorloop/firmware/commands"
	"github.com/calvinmclean/motorloop/motor"
	"github.com/calvinmclean/motorloop/sched"
	"github.com/calvinmclean/motorloop/task"
)

// Motor is the hardware of one motor channel
type Motor struct {
	Counter  encoder.Counter
	Actuator motor.Actuator
}

// channel is one motor with its control task
type channel struct {
	cfg     config.MotorConfig
	encoder *encoder.Encoder
	driver  *motor.Driver
	loop    *control.ClosedLoop
	task    *task.Control
}

// Device runs the motor control tasks and the operator console on one scheduler. The report
// stream, command output and diagnostics all go to the same output
type Device struct {
	cfg    config.Config
	clk    clock.Clock
	events events
	out    io.Writer
	in     commands.ByteReader

	scheduler *sched.Scheduler
	channels  []*channel
}

// Option configures a Device
type Option func(*Device)

// WithClock sets the clock used by the scheduler and control loops
func WithClock(c clock.Clock) Option {
	return func(d *Device) {
		d.clk = c
	}
}

// WithConsole reads operator commands from in
func WithConsole(in commands.ByteReader) Option {
	return func(d *Device) {
		d.in = in
	}
}

// New creates the Device and registers a task for every configured motor, in configuration order
func New(cfg config.Config, motors []Motor, out io.Writer, opts ...Option) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if len(motors) != len(cfg.Motors) {
		return nil, errors.Errorf("%d motors configured but %d provided", len(cfg.Motors), len(motors))
	}

	d := &Device{
		cfg:    cfg,
		clk:    clock.New(),
		events: newEvents(),
		out:    out,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.scheduler = sched.New(append(d.events.schedOptions(), sched.WithClock(d.clk))...)

	for i, mc := range cfg.Motors {
		ch, err := d.newChannel(mc, motors[i])
		if err != nil {
			return nil, errors.Wrapf(err, "error creating motor %s", mc.Label)
		}
		d.channels = append(d.channels, ch)

		t := sched.NewTask(mc.Name(), mc.Priority, mc.Period(), ch.task)
		t.Profile = mc.Profile
		t.Trace = mc.Trace
		if err := d.scheduler.Register(t); err != nil {
			return nil, err
		}
		d.events.registered(mc)
	}

	if d.in != nil && cfg.Console.Enabled {
		t := sched.NewTask("Console", cfg.Console.Priority, cfg.Console.Period(), commands.NewConsole(d, d.in))
		if err := d.scheduler.Register(t); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func (d *Device) newChannel(mc config.MotorConfig, m Motor) (*channel, error) {
	if m.Counter == nil || m.Actuator == nil {
		return nil, errors.New("counter and actuator are required")
	}

	cc, err := mc.Control()
	if err != nil {
		return nil, err
	}

	ch := &channel{
		cfg:     mc,
		encoder: encoder.New(m.Counter, mc.EncoderBits),
		driver:  motor.New(m.Actuator, mc.Motor()),
		loop:    control.New(cc, control.WithClock(d.clk)),
	}

	ch.task, err = task.New(mc.Task(), ch.encoder, ch.driver, ch.loop, d.out, task.WithClock(d.clk))
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// Run dispatches the tasks until ctx is done, an operator stop or a task fault. The motors are
// stopped and diagnostics written in every case. A stop returns nil and a fault returns its error
func (d *Device) Run(ctx context.Context) error {
	d.events.starting(d.Labels())
	err := d.scheduler.Run(ctx)

	for _, ch := range d.channels {
		ch.driver.SetDutyCycle(0)
	}

	if errors.Is(err, sched.ErrStopped) {
		d.events.stopped()
		d.Debug()
		return nil
	}

	d.events.failed(err)
	d.Debug()
	return err
}

// Stop requests the scheduler to stop after the running task
func (d *Device) Stop() {
	d.scheduler.Stop()
}

// Debug writes the task table, traces and controller state
func (d *Device) Debug() {
	err := d.scheduler.Dump(d.out)
	if err != nil {
		d.events.diagnosticsFailed(err)
		return
	}

	for _, ch := range d.channels {
		_, err = fmt.Fprintf(d.out, "%s %s state=%s windows=%d duty=%.0f position=%d%s",
			ch.cfg.Label, ch.loop, ch.task.State(), ch.task.Windows(), ch.driver.Duty(), ch.encoder.Read(), motorloop.LineEnding)
		if err != nil {
			d.events.diagnosticsFailed(err)
			return
		}
	}
}

// Verbose enables tracing for every task
func (d *Device) Verbose() {
	for _, t := range d.scheduler.Tasks() {
		t.Trace = true
	}
	_, _ = io.WriteString(d.out, "Set Verbose Mode"+motorloop.LineEnding)
}

// SetGain sets the proportional gain of the n-th configured motor, starting at 1
func (d *Device) SetGain(n int, kp float64) error {
	if n < 1 || n > len(d.channels) {
		return errors.Errorf("no motor %d", n)
	}

	ch := d.channels[n-1]
	g := ch.loop.Gains()
	g.Kp = kp
	ch.loop.SetGains(g)

	_, err := fmt.Fprintf(d.out, "%s Kp=%.2f%s", ch.cfg.Label, kp, motorloop.LineEnding)
	return err
}

// Write writes to the device output
func (d *Device) Write(p []byte) (int, error) {
	return d.out.Write(p)
}

// Labels are the configured motor labels
func (d *Device) Labels() []string {
	return lo.Map(d.channels, func(ch *channel, _ int) string {
		return ch.cfg.Label
	})
}

// Scheduler exposes the scheduler for inspection
func (d *Device) Scheduler() *sched.Scheduler {
	return d.scheduler
}
