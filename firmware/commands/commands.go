package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/calvinmclean/motorloop"
)

type Command struct {
	Flag        byte
	InputSize   uint
	Run         func(Controller, []byte) error
	Description string
}

// Controller is used to control a running rig. Command output is written to it
type Controller interface {
	io.Writer

	Stop()
	Debug()
	Verbose()
	SetGain(motor int, kp float64) error
}

var (
	StopCommand = &Command{
		Flag:      motorloop.StopChar,
		InputSize: 0,
		Run: func(c Controller, _ []byte) error {
			c.Stop()
			return nil
		},
		Description: "Stop the scheduler and print diagnostics (Ctrl-C).",
	}
	DebugCommand = &Command{
		Flag:      'D',
		InputSize: 0,
		Run: func(c Controller, _ []byte) error {
			c.Debug()
			return nil
		},
		Description: "Print task diagnostics and controller state.",
	}
	VerboseCommand = &Command{
		Flag:      'V',
		InputSize: 0,
		Run: func(c Controller, _ []byte) error {
			c.Verbose()
			return nil
		},
		Description: "Enable state tracing for every task.",
	}
	GainCommand = &Command{
		Flag:      'K',
		InputSize: 3,
		Run: func(c Controller, b []byte) error {
			m, ok := digit(b[0])
			if !ok || m == 0 {
				return errors.New("invalid motor: " + string(b[:1]))
			}
			tens, ok1 := digit(b[1])
			ones, ok2 := digit(b[2])
			if !ok1 || !ok2 {
				return errors.New("invalid gain: " + string(b[1:]))
			}

			return c.SetGain(m, float64(tens*10+ones)/100)
		},
		Description: "Set a motor's proportional gain. Input: motor (1-9), then Kp in hundredths (00-99).",
	}
	HelpCommand = &Command{
		Flag:        'H',
		InputSize:   0,
		Description: "Show all available commands and their descriptions.",
		Run: func(c Controller, _ []byte) error {
			_, err := io.WriteString(c, "Available Commands:"+motorloop.LineEnding)
			if err != nil {
				return err
			}
			for _, cmd := range commands {
				_, err = fmt.Fprintf(c, "%s: %s%s", flagString(cmd.Flag), cmd.Description, motorloop.LineEnding)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
)

var commands = []*Command{
	StopCommand,
	DebugCommand,
	VerboseCommand,
	GainCommand,
}

func digit(b byte) (int, bool) {
	if b < '0' || b > '9' {
		return 0, false
	}
	return int(b - '0'), true
}

func flagString(flag byte) string {
	if flag >= 32 && flag <= 126 {
		return string(flag)
	}
	return "0x" + strconv.FormatUint(uint64(flag)|0x100, 16)[1:]
}
