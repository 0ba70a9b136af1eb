// Package commands has the operator console: single byte commands read from the serial line
// without ever blocking the scheduler
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// maxBytesPerStep bounds the work done in one console step
const maxBytesPerStep = 64

// ErrNoData is returned by a ByteReader when no input is waiting
var ErrNoData = errors.New("no data available")

// ByteReader is a non-blocking source of console input. ReadByte returns an error when nothing
// is waiting, like machine.Serial
type ByteReader interface {
	ReadByte() (byte, error)
}

// Console runs commands as they arrive. A command's input bytes can span several steps
type Console struct {
	c   Controller
	in  ByteReader
	cmd map[byte]*Command

	pending *Command
	input   []byte
}

// NewConsole creates a Console reading from in and running commands against c
func NewConsole(c Controller, in ByteReader) *Console {
	// HelpCommand reads the command list, so it cannot be part of it
	cmdMap := map[byte]*Command{
		HelpCommand.Flag: HelpCommand,
	}
	for _, cmd := range commands {
		cmdMap[cmd.Flag] = cmd
	}

	return &Console{c: c, in: in, cmd: cmdMap}
}

// Step consumes the waiting input. Command failures are printed and never returned, so a typo
// cannot stop the rig
func (con *Console) Step() error {
	for range maxBytesPerStep {
		b, err := con.in.ReadByte()
		if err != nil {
			return nil
		}

		if con.pending == nil {
			cmd, ok := con.cmd[b]
			if !ok {
				continue
			}
			con.pending = cmd
			con.input = con.input[:0]
		} else {
			con.input = append(con.input, b)
		}

		if uint(len(con.input)) < con.pending.InputSize {
			continue
		}

		cmd := con.pending
		con.pending = nil
		if err := cmd.Run(con.c, con.input); err != nil {
			fmt.Fprintln(con.c, "error:", err.Error())
		}
	}
	return nil
}

// TraceState shows a command that is waiting for input
func (con *Console) TraceState() string {
	if con.pending == nil {
		return "IDLE"
	}
	return "INPUT " + flagString(con.pending.Flag)
}

// WaitForStart prompts on out and waits until Enter is read from in
func WaitForStart(ctx context.Context, in ByteReader, out io.Writer) error {
	_, err := io.WriteString(out, "Press enter to begin program\r\n")
	if err != nil {
		return err
	}

	for {
		b, err := in.ReadByte()
		switch {
		case err == nil && (b == '\r' || b == '\n'):
			return nil
		case errors.Is(err, io.EOF):
			return io.ErrUnexpectedEOF
		case err == nil:
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// StreamReader turns a blocking reader, like os.Stdin, into a ByteReader
type StreamReader struct {
	bytes chan byte
}

// NewStreamReader starts reading r in the background
func NewStreamReader(r io.Reader) *StreamReader {
	s := &StreamReader{bytes: make(chan byte, 256)}
	go func() {
		defer close(s.bytes)

		buf := make([]byte, 64)
		for {
			n, err := r.Read(buf)
			for _, b := range buf[:n] {
				s.bytes <- b
			}
			if err != nil {
				return
			}
		}
	}()
	return s
}

// ReadByte returns the next byte, ErrNoData when none is waiting or io.EOF after the stream ends
func (s *StreamReader) ReadByte() (byte, error) {
	select {
	case b, ok := <-s.bytes:
		if !ok {
			return 0, io.EOF
		}
		return b, nil
	default:
		return 0, ErrNoData
	}
}
