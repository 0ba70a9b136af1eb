// Package encoder turns a bounded, wrapping hardware counter into an unbounded position
package encoder

// DefaultBits is the width of a typical timer counter in encoder mode
const DefaultBits = 16

// Counter is the raw hardware counter. Only the low bits configured on the Encoder are used
type Counter interface {
	Count() uint32
}

// Encoder accumulates the signed position of a quadrature encoder. The counter is assumed to
// wrap at most once between calls to Update
type Encoder struct {
	counter  Counter
	mask     uint32
	modulus  int64
	lastRaw  int64
	position int64
}

// New creates an Encoder for a counter that is bits wide. bits outside of 1-32 uses DefaultBits
func New(counter Counter, bits uint) *Encoder {
	if bits == 0 || bits > 32 {
		bits = DefaultBits
	}

	modulus := int64(1) << bits
	e := &Encoder{
		counter: counter,
		mask:    uint32(modulus - 1),
		modulus: modulus,
	}
	e.lastRaw = e.raw()

	return e
}

// Update reads the counter and adds the wrap-corrected change to the position
func (e *Encoder) Update() {
	raw := e.raw()
	delta := raw - e.lastRaw

	half := e.modulus / 2
	if delta > half {
		delta -= e.modulus
	} else if delta < -half {
		delta += e.modulus
	}

	e.position += delta
	e.lastRaw = raw
}

// Zero resets the position and uses the current counter value as the new baseline.
// The hardware counter is not modified
func (e *Encoder) Zero() {
	e.position = 0
	e.lastRaw = e.raw()
}

// Read returns the accumulated position in ticks
func (e *Encoder) Read() int64 {
	return e.position
}

// Modulus is the number of distinct raw counter values
func (e *Encoder) Modulus() int64 {
	return e.modulus
}

func (e *Encoder) raw() int64 {
	return int64(e.counter.Count() & e.mask)
}
