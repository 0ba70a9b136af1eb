package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	bytes.Buffer

	stopped bool
	debug   int
	verbose int
	gains   map[int]float64
}

func (f *fakeController) Stop()    { f.stopped = true }
func (f *fakeController) Debug()   { f.debug++ }
func (f *fakeController) Verbose() { f.verbose++ }

func (f *fakeController) SetGain(m int, kp float64) error {
	if m > 2 {
		return errors.New("no motor 3")
	}
	if f.gains == nil {
		f.gains = map[int]float64{}
	}
	f.gains[m] = kp
	return nil
}

// queue is a ByteReader with input added between steps
type queue struct {
	data []byte
}

func (q *queue) push(s string) { q.data = append(q.data, s...) }

func (q *queue) ReadByte() (byte, error) {
	if len(q.data) == 0 {
		return 0, ErrNoData
	}
	b := q.data[0]
	q.data = q.data[1:]
	return b, nil
}

func TestConsole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		checkFn func(*testing.T, *fakeController)
	}{
		{
			"Stop",
			"\x03",
			func(t *testing.T, c *fakeController) {
				assert.True(t, c.stopped)
			},
		},
		{
			"DebugAndVerbose",
			"DVD",
			func(t *testing.T, c *fakeController) {
				assert.Equal(t, 2, c.debug)
				assert.Equal(t, 1, c.verbose)
			},
		},
		{
			"Gain",
			"K135K250",
			func(t *testing.T, c *fakeController) {
				assert.Equal(t, map[int]float64{1: 0.35, 2: 0.5}, c.gains)
				assert.Empty(t, c.String())
			},
		},
		{
			"UnknownBytesIgnored",
			"\r\nxyzD",
			func(t *testing.T, c *fakeController) {
				assert.Equal(t, 1, c.debug)
				assert.Empty(t, c.String())
			},
		},
		{
			"InvalidGain",
			"K1x5D",
			func(t *testing.T, c *fakeController) {
				assert.Equal(t, "error: invalid gain: x5\n", c.String())
				assert.Equal(t, 1, c.debug)
			},
		},
		{
			"InvalidMotor",
			"K035",
			func(t *testing.T, c *fakeController) {
				assert.Equal(t, "error: invalid motor: 0\n", c.String())
			},
		},
		{
			"ControllerError",
			"K350",
			func(t *testing.T, c *fakeController) {
				assert.Equal(t, "error: no motor 3\n", c.String())
			},
		},
		{
			"Help",
			"HD",
			func(t *testing.T, c *fakeController) {
				out := c.String()
				assert.Contains(t, out, "Available Commands:\r\n")
				assert.Contains(t, out, "0x03: Stop the scheduler")
				assert.Contains(t, out, "K: Set a motor's proportional gain")
				assert.Contains(t, out, "V: ")
				assert.NotContains(t, out, "H: ")
				assert.Equal(t, 1, c.debug)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeController{}
			in := &queue{}
			in.push(tt.input)

			require.NoError(t, NewConsole(c, in).Step())
			tt.checkFn(t, c)
		})
	}
}

func TestConsoleInputAcrossSteps(t *testing.T) {
	c := &fakeController{}
	in := &queue{}
	con := NewConsole(c, in)

	in.push("K1")
	require.NoError(t, con.Step())
	assert.Empty(t, c.gains)
	assert.Equal(t, "INPUT K", con.TraceState())

	in.push("2")
	require.NoError(t, con.Step())
	assert.Empty(t, c.gains)

	in.push("5")
	require.NoError(t, con.Step())
	assert.Equal(t, map[int]float64{1: 0.25}, c.gains)
	assert.Equal(t, "IDLE", con.TraceState())
}

func TestConsoleBoundedStep(t *testing.T) {
	c := &fakeController{}
	in := &queue{}
	in.push(strings.Repeat("D", maxBytesPerStep+10))

	con := NewConsole(c, in)
	require.NoError(t, con.Step())
	assert.Equal(t, maxBytesPerStep, c.debug)

	require.NoError(t, con.Step())
	assert.Equal(t, maxBytesPerStep+10, c.debug)
}

func TestWaitForStart(t *testing.T) {
	t.Run("Enter", func(t *testing.T) {
		in := &queue{}
		in.push("abc\r")

		var out bytes.Buffer
		require.NoError(t, WaitForStart(context.Background(), in, &out))
		assert.Equal(t, "Press enter to begin program\r\n", out.String())
	})

	t.Run("EOF", func(t *testing.T) {
		r := NewStreamReader(strings.NewReader("abc"))
		err := WaitForStart(context.Background(), r, io.Discard)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("ContextDone", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		err := WaitForStart(ctx, &queue{}, io.Discard)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestStreamReader(t *testing.T) {
	pr, pw := io.Pipe()
	r := NewStreamReader(pr)

	_, err := r.ReadByte()
	assert.ErrorIs(t, err, ErrNoData)

	go func() {
		_, _ = pw.Write([]byte("D\n"))
		_ = pw.Close()
	}()

	var got []byte
	require.Eventually(t, func() bool {
		b, err := r.ReadByte()
		switch {
		case err == nil:
			got = append(got, b)
		case errors.Is(err, io.EOF):
			return true
		}
		return false
	}, time.Second, time.Millisecond)

	assert.Equal(t, []byte("D\n"), got)
}
