//go:build tinygo

package device

import (
	"errors"
	"machine"

	"tinygo.org/x/drivers/encoders"
	"tinygo.org/x/drivers/l293x"
)

// defaultPWMPeriod is 20 kHz in nanoseconds
const defaultPWMPeriod = 1e9 / 20000

// MotorPins has the board wiring for one motor channel
type MotorPins struct {
	// Direction1 and Direction2 select the H-bridge direction
	Direction1 machine.Pin
	Direction2 machine.Pin
	// Speed is the PWM output driving the bridge enable input
	Speed machine.Pin
	PWM   l293x.PWM
	// PWMPeriod in nanoseconds, 20 kHz if unset
	PWMPeriod uint64

	EncoderA machine.Pin
	EncoderB machine.Pin
	// Precision is the number of counts per quadrature cycle, 4 if unset
	Precision int
}

// NewMotor configures the H-bridge and quadrature encoder of one channel
func NewMotor(pins MotorPins) (Motor, error) {
	if pins.PWMPeriod == 0 {
		pins.PWMPeriod = defaultPWMPeriod
	}
	if pins.Precision == 0 {
		pins.Precision = 4
	}

	err := pins.PWM.Configure(machine.PWMConfig{Period: pins.PWMPeriod})
	if err != nil {
		return Motor{}, errors.New("error configuring PWM: " + err.Error())
	}

	channel, err := pins.PWM.Channel(pins.Speed)
	if err != nil {
		return Motor{}, errors.New("error getting PWM channel: " + err.Error())
	}

	bridge := l293x.NewWithSpeed(pins.Direction1, pins.Direction2, channel, pins.PWM)
	err = bridge.Configure()
	if err != nil {
		return Motor{}, errors.New("error configuring motor driver: " + err.Error())
	}

	enc := encoders.NewQuadratureViaInterrupt(pins.EncoderA, pins.EncoderB)
	err = enc.Configure(encoders.QuadratureConfig{Precision: pins.Precision})
	if err != nil {
		return Motor{}, errors.New("error configuring encoder: " + err.Error())
	}

	return Motor{
		Counter:  quadratureCounter{enc},
		Actuator: &bridge,
	}, nil
}

// quadratureCounter exposes the interrupt driven count like a hardware timer counter
type quadratureCounter struct {
	*encoders.QuadratureDevice
}

func (q quadratureCounter) Count() uint32 {
	return uint32(q.Position())
}
