// Package config has the rig configuration: one entry per motor control task plus the operator console
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/calvinmclean/motorloop/control"
	"github.com/calvinmclean/motorloop/encoder"
	"github.com/calvinmclean/motorloop/motor"
	"github.com/calvinmclean/motorloop/task"
)

// Config is the complete rig configuration
type Config struct {
	Motors  []MotorConfig `yaml:"motors"`
	Console ConsoleConfig `yaml:"console"`
}

// MotorConfig configures the task, controller and hardware limits of one motor
type MotorConfig struct {
	Label    string `yaml:"label"`
	TaskName string `yaml:"task_name"`
	Priority int    `yaml:"priority"`
	PeriodMS int    `yaml:"period_ms"`
	WindowMS int    `yaml:"window_ms"`

	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`

	MinDuty     float64 `yaml:"min_duty"`
	MaxDuty     float64 `yaml:"max_duty"`
	TicksPerRev int64   `yaml:"ticks_per_rev"`
	Setpoint    string  `yaml:"setpoint"`
	EncoderBits uint    `yaml:"encoder_bits"`

	Profile bool `yaml:"profile"`
	Trace   bool `yaml:"trace"`
}

// ConsoleConfig configures the operator console task
type ConsoleConfig struct {
	Enabled  bool `yaml:"enabled"`
	Priority int  `yaml:"priority"`
	PeriodMS int  `yaml:"period_ms"`
}

// Default is the two motor rig: both tasks at priority 1, M1 every 10 ms and M2 every 35 ms
func Default() Config {
	m1 := DefaultMotor("M1")
	m1.TaskName = "Task_1"

	m2 := DefaultMotor("M2")
	m2.TaskName = "Task_2"
	m2.PeriodMS = 35

	return Config{
		Motors: []MotorConfig{m1, m2},
		Console: ConsoleConfig{
			Enabled:  true,
			Priority: 0,
			PeriodMS: 50,
		},
	}
}

// DefaultMotor is the configuration used for a motor entry before any overrides
func DefaultMotor(label string) MotorConfig {
	return MotorConfig{
		Label:       label,
		Priority:    1,
		PeriodMS:    10,
		WindowMS:    int(task.DefaultWindow / time.Millisecond),
		Kp:          0.35,
		MinDuty:     -motor.DefaultMaxDuty,
		MaxDuty:     motor.DefaultMaxDuty,
		TicksPerRev: 8192,
		Setpoint:    control.SetpointRevolution.String(),
		EncoderBits: encoder.DefaultBits,
		Profile:     true,
	}
}

// Validate reports every problem in the configuration
func (c Config) Validate() error {
	var err error
	if len(c.Motors) == 0 {
		err = multierr.Append(err, errors.New("at least one motor is required"))
	}

	labels := map[string]bool{}
	tasks := map[string]bool{}
	for i, m := range c.Motors {
		err = multierr.Append(err, m.Validate())

		if labels[m.Label] {
			err = multierr.Append(err, errors.Errorf("motors[%d]: duplicate label %q", i, m.Label))
		}
		labels[m.Label] = true

		if tasks[m.Name()] {
			err = multierr.Append(err, errors.Errorf("motors[%d]: duplicate task name %q", i, m.Name()))
		}
		tasks[m.Name()] = true
	}

	if c.Console.Enabled && c.Console.PeriodMS <= 0 {
		err = multierr.Append(err, errors.Errorf("console: period_ms must be positive, got %d", c.Console.PeriodMS))
	}

	return err
}

// Validate reports every problem with a single motor
func (m MotorConfig) Validate() error {
	var err error
	invalid := func(format string, args ...any) {
		err = multierr.Append(err, errors.Errorf("motor %s: "+format, append([]any{m.Label}, args...)...))
	}

	switch {
	case m.Label == "":
		invalid("label is required")
	case strings.ContainsAny(m.Label, ", \t\r\n"):
		invalid("label cannot contain commas or whitespace")
	case strings.HasPrefix(m.Label, "End"):
		invalid("label cannot start with End")
	}

	if m.PeriodMS <= 0 {
		invalid("period_ms must be positive, got %d", m.PeriodMS)
	}
	if m.WindowMS <= 0 {
		invalid("window_ms must be positive, got %d", m.WindowMS)
	}
	if m.MinDuty >= m.MaxDuty {
		invalid("min_duty %v must be less than max_duty %v", m.MinDuty, m.MaxDuty)
	}
	if m.MinDuty < -motor.DefaultMaxDuty || m.MaxDuty > motor.DefaultMaxDuty {
		invalid("duty limits must be within [-%v, %v]", motor.DefaultMaxDuty, motor.DefaultMaxDuty)
	}
	if m.TicksPerRev <= 0 {
		invalid("ticks_per_rev must be positive, got %d", m.TicksPerRev)
	}
	if m.EncoderBits == 0 || m.EncoderBits > 32 {
		invalid("encoder_bits must be between 1 and 32, got %d", m.EncoderBits)
	}
	if _, perr := control.ParseSetpointMode(m.Setpoint); perr != nil {
		invalid("%v", perr)
	}

	return err
}

// Name is the scheduler task name, Task_<label> unless configured
func (m MotorConfig) Name() string {
	if m.TaskName != "" {
		return m.TaskName
	}
	return "Task_" + m.Label
}

// Period is the dispatch period of the task
func (m MotorConfig) Period() time.Duration {
	return time.Duration(m.PeriodMS) * time.Millisecond
}

// Window is the length of one step response
func (m MotorConfig) Window() time.Duration {
	return time.Duration(m.WindowMS) * time.Millisecond
}

// Control is the controller configuration
func (m MotorConfig) Control() (control.Config, error) {
	mode, err := control.ParseSetpointMode(m.Setpoint)
	if err != nil {
		return control.Config{}, err
	}
	return control.Config{
		Gains:       control.Gains{Kp: m.Kp, Ki: m.Ki, Kd: m.Kd},
		Min:         m.MinDuty,
		Max:         m.MaxDuty,
		TicksPerRev: m.TicksPerRev,
		Setpoint:    mode,
	}, nil
}

// Motor is the driver configuration
func (m MotorConfig) Motor() motor.Config {
	return motor.Config{MaxDuty: max(m.MaxDuty, -m.MinDuty)}
}

// Task is the control task configuration
func (m MotorConfig) Task() task.Config {
	return task.Config{Label: m.Label, Window: m.Window()}
}

// Period is the console polling period
func (c ConsoleConfig) Period() time.Duration {
	return time.Duration(c.PeriodMS) * time.Millisecond
}

func (m MotorConfig) String() string {
	return fmt.Sprintf("%s (%s): priority=%d period=%dms window=%dms kp=%.2f ki=%.2f kd=%.2f duty=[%v, %v] setpoint=%s",
		m.Label, m.Name(), m.Priority, m.PeriodMS, m.WindowMS, m.Kp, m.Ki, m.Kd, m.MinDuty, m.MaxDuty, m.Setpoint)
}
