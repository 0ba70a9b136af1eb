package motor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type call struct {
	direction string
	speed     uint32
}

type fakeActuator struct {
	calls []call
}

func (a *fakeActuator) Forward(speed uint32)  { a.calls = append(a.calls, call{"forward", speed}) }
func (a *fakeActuator) Backward(speed uint32) { a.calls = append(a.calls, call{"backward", speed}) }
func (a *fakeActuator) Stop()                 { a.calls = append(a.calls, call{"stop", 0}) }

func TestSetDutyCycle(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		in       float64
		expected call
		duty     float64
	}{
		{"Forward", Config{}, 42, call{"forward", 42}, 42},
		{"Backward", Config{}, -42, call{"backward", 42}, -42},
		{"Rounded", Config{}, 12.6, call{"forward", 13}, 13},
		{"ClampForward", Config{}, 250, call{"forward", 100}, 100},
		{"ClampBackward", Config{}, -250, call{"backward", 100}, -100},
		{"ConfiguredLimit", Config{MaxDuty: 60}, -80, call{"backward", 60}, -60},
		{"Zero", Config{}, 0, call{"stop", 0}, 0},
		{"BelowHalfPercent", Config{}, -0.4, call{"stop", 0}, 0},
		{"NaN", Config{}, math.NaN(), call{"stop", 0}, 0},
		{"InvalidLimitUsesDefault", Config{MaxDuty: 500}, 150, call{"forward", 100}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &fakeActuator{}
			d := New(a, tt.cfg)

			d.SetDutyCycle(tt.in)

			assert.Equal(t, []call{tt.expected}, a.calls)
			assert.Equal(t, tt.duty, d.Duty())
		})
	}
}
