// Package motor drives a DC motor through an H-bridge using a signed duty cycle
package motor

import "math"

// DefaultMaxDuty is the largest PWM magnitude, as a percentage
const DefaultMaxDuty = 100

// Actuator is the H-bridge capability: two mutually exclusive directions with a PWM speed
// percentage. *l293x.PWMDevice from tinygo.org/x/drivers satisfies it
type Actuator interface {
	Forward(speed uint32)
	Backward(speed uint32)
	Stop()
}

// Config bounds the PWM magnitude
type Config struct {
	MaxDuty float64
}

// Driver translates signed duty cycles into direction and PWM magnitude
type Driver struct {
	actuator Actuator
	maxDuty  float64
	duty     float64
}

// New creates a Driver. A MaxDuty outside of (0, 100] uses DefaultMaxDuty
func New(actuator Actuator, cfg Config) *Driver {
	if cfg.MaxDuty <= 0 || cfg.MaxDuty > DefaultMaxDuty {
		cfg.MaxDuty = DefaultMaxDuty
	}
	return &Driver{actuator: actuator, maxDuty: cfg.MaxDuty}
}

// SetDutyCycle applies value as a signed percentage: positive is forward, negative is backward
// and the magnitude is clamped to MaxDuty
func (d *Driver) SetDutyCycle(value float64) {
	if math.IsNaN(value) {
		value = 0
	}

	magnitude := math.Min(math.Abs(value), d.maxDuty)
	speed := uint32(math.Round(magnitude))

	switch {
	case speed == 0:
		d.actuator.Stop()
		d.duty = 0
		return
	case value > 0:
		d.actuator.Forward(speed)
		d.duty = float64(speed)
	default:
		d.actuator.Backward(speed)
		d.duty = -float64(speed)
	}
}

// Duty returns the signed duty cycle that was last applied
func (d *Driver) Duty() float64 {
	return d.duty
}
