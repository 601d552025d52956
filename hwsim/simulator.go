// Package hwsim models the synchronous fixed-point FIR datapath at clock
// granularity, including its ready/valid streaming handshake, reset, and
// pipeline drain behavior.
package hwsim

import (
	"fmt"

	"github.com/cwbudde/fixedfir/dsp/fixed"
)

// pipelineLatency is the fixed number of cycles between an accepted input
// and its output becoming valid: the MAC result passes through one output
// register.
const pipelineLatency = 1

const defaultResetCycles = 5

// Phase is the simulator's state-machine phase.
type Phase int

const (
	PhaseReset Phase = iota
	PhaseFeeding
	PhaseDraining
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseReset:
		return "reset"
	case PhaseFeeding:
		return "feeding"
	case PhaseDraining:
		return "draining"
	case PhaseDone:
		return "done"
	}

	return fmt.Sprintf("phase(%d)", int(p))
}

// Frame captures the observable bus state after one clock edge.
//
// In/InValid echo what the driver presented during the cycle; InReady
// reports whether the datapath accepted it. Out/OutValid describe the output
// register after the edge; the consumer takes the value on the next edge it
// holds ready high.
type Frame struct {
	Cycle    int
	Phase    Phase
	In       int32
	InValid  bool
	InReady  bool
	Out      int32
	OutValid bool
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithResetCycles sets how many edges the reset phase holds. Default 5.
func WithResetCycles(n int) Option {
	return func(s *Simulator) {
		if n >= 1 {
			s.resetCycles = n
		}
	}
}

// WithDrainCycles sets how many edges the drain phase clocks after input
// ends. The default is numtaps + the pipeline latency, which is always
// enough to flush every in-flight sample; there is no benefit in a larger
// arbitrary constant.
func WithDrainCycles(n int) Option {
	return func(s *Simulator) {
		if n >= 1 {
			s.drainCycles = n
		}
	}
}

// Simulator is a cycle-stepped model of the hardware FIR pipeline. A single
// goroutine owns it for the duration of a run; every run starts from fresh
// internal state.
type Simulator struct {
	taps   []int64
	format fixed.Format

	resetCycles int
	drainCycles int

	cycle     int
	phase     Phase
	resetLeft int
	drainLeft int

	delay []int64

	// one-deep MAC result pipeline feeding the output register
	pending      int32
	pendingValid bool
	out          int32
	outValid     bool
}

// New creates a simulator for the given quantized coefficients.
func New(coeffs []int32, format fixed.Format, opts ...Option) (*Simulator, error) {
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("hwsim: empty coefficients")
	}

	if _, err := fixed.NewFormat(format.FracBits, format.WordBits); err != nil {
		return nil, err
	}

	taps := make([]int64, len(coeffs))
	for i, c := range coeffs {
		if c < format.MinValue() || c > format.MaxValue() {
			return nil, fmt.Errorf("hwsim: coefficient %d outside %s range: %d", i, format, c)
		}

		taps[i] = int64(c)
	}

	s := &Simulator{
		taps:        taps,
		format:      format,
		resetCycles: defaultResetCycles,
		delay:       make([]int64, len(coeffs)),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.drainCycles == 0 {
		s.drainCycles = len(coeffs) + pipelineLatency
	}

	s.Reset()

	return s, nil
}

// Latency returns the fixed pipeline latency in cycles.
func (s *Simulator) Latency() int {
	return pipelineLatency
}

// NumTaps returns the coefficient count (the delay-line depth).
func (s *Simulator) NumTaps() int {
	return len(s.taps)
}

// CurrentPhase returns the state-machine phase after the last edge.
func (s *Simulator) CurrentPhase() Phase {
	return s.phase
}

// Reset returns the simulator to the start of the reset phase and clears
// all datapath state.
func (s *Simulator) Reset() {
	s.cycle = 0
	s.phase = PhaseReset
	s.resetLeft = s.resetCycles
	s.drainLeft = s.drainCycles

	for i := range s.delay {
		s.delay[i] = 0
	}

	s.pending = 0
	s.pendingValid = false
	s.out = 0
	s.outValid = false
}

// Drain moves the state machine into the draining phase: the caller has no
// further inputs and wants the pipeline flushed.
func (s *Simulator) Drain() {
	if s.phase == PhaseFeeding {
		s.phase = PhaseDraining
	}
}

// Step advances one clock edge. The arguments are the values the driver and
// consumer held during the cycle ending at this edge: an input sample with
// its valid flag, and the consumer's ready flag. Data moves only where valid
// and ready coincide; with the consumer stalled the whole pipeline holds.
func (s *Simulator) Step(in int32, inValid, outReady bool) Frame {
	frame := Frame{Cycle: s.cycle, Phase: s.phase, In: in, InValid: inValid}
	s.cycle++

	switch s.phase {
	case PhaseReset:
		s.resetLeft--
		if s.resetLeft <= 0 {
			s.phase = PhaseFeeding
		}

		return frame

	case PhaseDone:
		return frame
	}

	// The consumer stalls the pipeline by deasserting ready while the
	// output register holds valid data.
	stalled := s.outValid && !outReady

	if !stalled {
		s.out = s.pending
		s.outValid = s.pendingValid
		s.pendingValid = false

		frame.InReady = true

		if inValid && s.phase == PhaseFeeding {
			s.shiftIn(int64(in))
			s.pending = s.macResult()
			s.pendingValid = true
		}
	}

	// A stalled consumer pauses the drain countdown so backpressure during
	// the flush cannot discard in-flight samples.
	if s.phase == PhaseDraining && !stalled {
		s.drainLeft--
		if s.drainLeft <= 0 {
			s.phase = PhaseDone
		}
	}

	frame.Out = s.out
	frame.OutValid = s.outValid

	return frame
}

// Simulate runs the full reset, feed, and drain sequence with the consumer's
// ready held asserted, returning one output per input in input order. It
// returns an error if the drain phase ends before every in-flight sample has
// been flushed, which can only happen with an undersized WithDrainCycles.
func (s *Simulator) Simulate(inputs []int32) ([]int32, error) {
	s.Reset()

	outputs := make([]int32, 0, len(inputs))

	collect := func(f Frame) {
		if f.OutValid {
			outputs = append(outputs, f.Out)
		}
	}

	for range s.resetCycles {
		collect(s.Step(0, false, true))
	}

	for _, x := range inputs {
		collect(s.Step(x, true, true))
	}

	s.Drain()

	for s.phase == PhaseDraining {
		collect(s.Step(0, false, true))
	}

	if len(outputs) < len(inputs) {
		return outputs, fmt.Errorf("hwsim: drain incomplete: flushed %d of %d outputs", len(outputs), len(inputs))
	}

	return outputs, nil
}

// shiftIn pushes a sample into the delay line, newest first.
func (s *Simulator) shiftIn(x int64) {
	copy(s.delay[1:], s.delay)
	s.delay[0] = x
}

// macResult multiplies the delay line against the coefficients into a wide
// accumulator and scales back by an arithmetic right shift of FracBits.
//
// The shift truncates toward negative infinity, exactly like the hardware's
// arithmetic shifter; it does not round like the quantizer. The comparator's
// tolerance absorbs the resulting sub-LSB mismatch against the float
// reference.
func (s *Simulator) macResult() int32 {
	var acc int64
	for k, c := range s.taps {
		acc += c * s.delay[k]
	}

	return s.format.Saturate(acc >> s.format.FracBits)
}
