// Package control implements the closed-loop position controller used for step responses
package control

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// SetpointMode selects the target position the controller drives towards
type SetpointMode int

const (
	// SetpointRevolution targets one full revolution from the zero point
	SetpointRevolution SetpointMode = iota
	// SetpointZero holds the zero point
	SetpointZero
)

func (m SetpointMode) String() string {
	switch m {
	case SetpointZero:
		return "zero"
	default:
		fallthrough
	case SetpointRevolution:
		return "revolution"
	}
}

// ParseSetpointMode parses "revolution" or "zero". An empty string is SetpointRevolution
func ParseSetpointMode(s string) (SetpointMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "revolution":
		return SetpointRevolution, nil
	case "zero":
		return SetpointZero, nil
	default:
		return SetpointRevolution, errors.Errorf("invalid setpoint mode %q", s)
	}
}

// Gains are the proportional, integral and derivative gains
type Gains struct {
	Kp, Ki, Kd float64
}

// Config has the tuning and limits for a ClosedLoop
type Config struct {
	Gains Gains
	// Min and Max saturate the final output
	Min, Max    float64
	TicksPerRev int64
	Setpoint    SetpointMode
}

// Sample is a logged position with its time since the window started
type Sample struct {
	Elapsed  time.Duration
	Position int64
}

// ClosedLoop computes duty cycles from encoder positions and logs every position it is given.
// It knows nothing about windows: the owner calls ResetIntegral and DrainLog at window boundaries,
// so the integral can wind up past the saturation limits until it is reset
type ClosedLoop struct {
	cfg Config
	clk clock.Clock

	integral     float64
	prevError    float64
	prevTime     time.Time
	resetPending bool

	lastP, lastI, lastD, lastOutput float64

	log []Sample
}

// Option configures a ClosedLoop
type Option func(*ClosedLoop)

// WithClock sets the clock used to timestamp samples
func WithClock(c clock.Clock) Option {
	return func(cl *ClosedLoop) {
		cl.clk = c
	}
}

// New creates a ClosedLoop
func New(cfg Config, opts ...Option) *ClosedLoop {
	cl := &ClosedLoop{
		cfg: cfg,
		clk: clock.New(),
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// Setpoint returns the target position in ticks
func (cl *ClosedLoop) Setpoint() int64 {
	if cl.cfg.Setpoint == SetpointZero {
		return 0
	}
	return cl.cfg.TicksPerRev
}

// Update computes the saturated output for position and logs the sample relative to windowStart
func (cl *ClosedLoop) Update(position int64, windowStart time.Time) float64 {
	now := cl.clk.Now()
	e := float64(cl.Setpoint() - position)

	if cl.resetPending {
		cl.integral = 0
		cl.prevTime = time.Time{}
		cl.resetPending = false
	}

	var derivative float64
	if !cl.prevTime.IsZero() {
		if dt := now.Sub(cl.prevTime).Seconds(); dt > 0 {
			cl.integral += e * dt
			derivative = (e - cl.prevError) / dt
		}
	}
	cl.prevError = e
	cl.prevTime = now

	g := cl.cfg.Gains
	cl.lastP = g.Kp * e
	cl.lastI = g.Ki * cl.integral
	cl.lastD = g.Kd * derivative
	cl.lastOutput = cl.saturate(cl.lastP + cl.lastI + cl.lastD)

	cl.log = append(cl.log, Sample{Elapsed: now.Sub(windowStart), Position: position})

	return cl.lastOutput
}

// ResetIntegral clears the integral accumulator before the next Update computes its output
func (cl *ClosedLoop) ResetIntegral() {
	cl.resetPending = true
}

// DrainLog returns every sample logged since the last drain and clears the log
func (cl *ClosedLoop) DrainLog() []Sample {
	samples := cl.log
	cl.log = nil
	return samples
}

// Logged is the number of samples waiting to be drained
func (cl *ClosedLoop) Logged() int {
	return len(cl.log)
}

// SetGains replaces the gains. The integral accumulator is kept
func (cl *ClosedLoop) SetGains(g Gains) {
	cl.cfg.Gains = g
}

// Gains returns the current gains
func (cl *ClosedLoop) Gains() Gains {
	return cl.cfg.Gains
}

func (cl *ClosedLoop) saturate(out float64) float64 {
	if math.IsNaN(out) {
		out = 0
	}
	return math.Max(cl.cfg.Min, math.Min(cl.cfg.Max, out))
}

func (cl *ClosedLoop) String() string {
	return fmt.Sprintf("SP:%d P:%.2f I:%.2f D:%.2f OUT:%.2f", cl.Setpoint(), cl.lastP, cl.lastI, cl.lastD, cl.lastOutput)
}
