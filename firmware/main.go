//go:build tinygo

package main

import (
	"context"
	"machine"
	"time"

	"github.com/calvinmclean/motorloop/config"
	"github.com/calvinmclean/motorloop/firmware/commands"
	"github.com/calvinmclean/motorloop/firmware/device"
)

func main() {
	// Nucleo L476RG wiring. The bridge inputs are direction outputs and PWM drives the enable
	// pin, so M2's enable moves from PC1 (no TIM channel) to PA8. Both channels share TIM1.
	m1Pins := device.MotorPins{
		Direction1: machine.PB4,
		Direction2: machine.PB5,
		Speed:      machine.PA10,
		PWM:        machine.TIM1,
		EncoderA:   machine.PC6,
		EncoderB:   machine.PC7,
	}
	m2Pins := device.MotorPins{
		Direction1: machine.PA0,
		Direction2: machine.PA1,
		Speed:      machine.PA8,
		PWM:        machine.TIM1,
		EncoderA:   machine.PB6,
		EncoderB:   machine.PB7,
	}

	m1, err := device.NewMotor(m1Pins)
	if err != nil {
		halt("error creating M1: " + err.Error())
	}
	m2, err := device.NewMotor(m2Pins)
	if err != nil {
		halt("error creating M2: " + err.Error())
	}

	d, err := device.New(config.Default(), []device.Motor{m1, m2}, machine.Serial, device.WithConsole(machine.Serial))
	if err != nil {
		halt("error creating device: " + err.Error())
	}

	ctx := context.Background()
	err = commands.WaitForStart(ctx, machine.Serial, machine.Serial)
	if err != nil {
		halt("error waiting for start: " + err.Error())
	}

	err = d.Run(ctx)
	if err != nil {
		halt("fault: " + err.Error())
	}
	halt("stopped")
}

// halt reports the reason and parks the firmware. Nothing restarts after a stop or fault
func halt(reason string) {
	println(reason)
	for {
		time.Sleep(time.Hour)
	}
}
