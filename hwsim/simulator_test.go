package hwsim

import (
	"testing"

	"github.com/cwbudde/fixedfir/dsp/fixed"
	"github.com/cwbudde/fixedfir/internal/testutil"
)

// fixedReference computes the expected fixed-point outputs by direct
// convolution with the same wide-accumulator, shift-right semantics.
func fixedReference(taps, in []int32, fracBits int) []int32 {
	out := make([]int32, len(in))

	for n := range in {
		var acc int64

		for k, c := range taps {
			if n-k >= 0 {
				acc += int64(c) * int64(in[n-k])
			}
		}

		out[n] = int32(acc >> fracBits)
	}

	return out
}

func mustFormat(t *testing.T, fracBits, wordBits int) fixed.Format {
	t.Helper()

	f, err := fixed.NewFormat(fracBits, wordBits)
	if err != nil {
		t.Fatal(err)
	}

	return f
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, fixed.Q15); err == nil {
		t.Error("empty coefficients accepted")
	}

	f := mustFormat(t, 3, 8)
	if _, err := New([]int32{500}, f); err == nil {
		t.Error("coefficient outside word range accepted")
	}

	if _, err := New([]int32{1}, fixed.Format{FracBits: 0, WordBits: 16}); err == nil {
		t.Error("invalid format accepted")
	}
}

func TestSimulate_ImpulseResponseEqualsCoefficients(t *testing.T) {
	// The end-to-end example: [0.1 0.2 0.4 0.2 0.1] at fracBits=3 quantizes
	// to [1 2 3 2 1]; a unit impulse (fixed value 8) must reproduce exactly
	// that sequence after the pipeline latency.
	format := mustFormat(t, 3, 16)

	taps, saturated := format.QuantizeBlock([]float64{0.1, 0.2, 0.4, 0.2, 0.1})
	if saturated != 0 {
		t.Fatalf("unexpected saturation: %d", saturated)
	}

	wantTaps := []int32{1, 2, 3, 2, 1}
	testutil.RequireInt32SlicesEqual(t, taps, wantTaps)

	sim, err := New(taps, format)
	if err != nil {
		t.Fatal(err)
	}

	out, err := sim.Simulate([]int32{8, 0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireInt32SlicesEqual(t, out, wantTaps)
}

func TestSimulate_MatchesDirectFixedConvolution(t *testing.T) {
	format := mustFormat(t, 7, 16)
	taps := []int32{-12, 40, 100, 40, -12, 7, -3}

	input := make([]int32, 64)
	for i := range input {
		input[i] = int32((i*37)%201 - 100)
	}

	sim, err := New(taps, format)
	if err != nil {
		t.Fatal(err)
	}

	got, err := sim.Simulate(input)
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireInt32SlicesEqual(t, got, fixedReference(taps, input, format.FracBits))
}

func TestSimulate_DrainCompleteness(t *testing.T) {
	// For any input length the simulator must emit exactly one output per
	// input by the end of the drain phase.
	format := mustFormat(t, 3, 16)
	taps := []int32{1, 2, 3, 2, 1}

	for _, n := range []int{1, 2, 5, 17, 100} {
		input := make([]int32, n)
		for i := range input {
			input[i] = int32(i%16 - 8)
		}

		sim, err := New(taps, format)
		if err != nil {
			t.Fatal(err)
		}

		out, err := sim.Simulate(input)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}

		if len(out) != n {
			t.Errorf("n=%d: output count %d", n, len(out))
		}
	}
}

func TestSimulate_MinimalDrainStillFlushes(t *testing.T) {
	// One drain cycle covers the one-deep output pipeline, so even the
	// smallest configurable drain flushes every sample.
	format := mustFormat(t, 3, 16)

	sim, err := New([]int32{1, 2, 3, 2, 1}, format, WithDrainCycles(1))
	if err != nil {
		t.Fatal(err)
	}

	out, err := sim.Simulate([]int32{8, 0, 0})
	if err != nil {
		t.Fatalf("unexpected drain error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("output count: got %d, want 3", len(out))
	}
}

func TestStep_ResetPhase(t *testing.T) {
	format := mustFormat(t, 3, 16)

	sim, err := New([]int32{1, 2, 3, 2, 1}, format, WithResetCycles(5))
	if err != nil {
		t.Fatal(err)
	}

	for i := range 5 {
		frame := sim.Step(99, true, true)

		if frame.Phase != PhaseReset {
			t.Errorf("cycle %d: phase %v, want reset", i, frame.Phase)
		}
		if frame.OutValid || frame.InReady {
			t.Errorf("cycle %d: handshake asserted during reset", i)
		}
	}

	if sim.CurrentPhase() != PhaseFeeding {
		t.Fatalf("after reset: phase %v, want feeding", sim.CurrentPhase())
	}
}

func TestStep_LatencyIsOneCycle(t *testing.T) {
	format := mustFormat(t, 3, 16)

	sim, err := New([]int32{1, 2, 3, 2, 1}, format, WithResetCycles(1))
	if err != nil {
		t.Fatal(err)
	}

	sim.Step(0, false, true) // reset edge

	frame := sim.Step(8, true, true)
	if frame.OutValid {
		t.Error("output valid on the same edge as the input")
	}

	frame = sim.Step(0, true, true)
	if !frame.OutValid || frame.Out != 1 {
		t.Errorf("one cycle later: valid=%v out=%d, want valid=true out=1", frame.OutValid, frame.Out)
	}

	if sim.Latency() != 1 {
		t.Errorf("Latency: got %d, want 1", sim.Latency())
	}
}

func TestStep_BackpressureHoldsOutput(t *testing.T) {
	format := mustFormat(t, 3, 16)
	taps := []int32{1, 2, 3, 2, 1}

	sim, err := New(taps, format, WithResetCycles(1))
	if err != nil {
		t.Fatal(err)
	}

	input := []int32{8, -8, 16, 4, -4, 12, 0, 0, 0, 0}
	want := fixedReference(taps, input, format.FracBits)

	// Consumer model: reads the post-edge frame, holds ready low on every
	// third cycle, and captures the held value on the edge where ready
	// returns high.
	var got []int32

	prev := sim.Step(0, false, true) // reset edge

	next := 0
	for cycle := 1; len(got) < len(want) && cycle < 200; cycle++ {
		ready := cycle%3 != 0

		if prev.OutValid && ready {
			got = append(got, prev.Out)
		}

		var frame Frame
		if next < len(input) {
			frame = sim.Step(input[next], true, ready)
			if frame.InReady {
				next++
			}

			if next == len(input) {
				sim.Drain()
			}
		} else {
			frame = sim.Step(0, false, ready)
		}

		if prev.OutValid && !ready {
			// Stalled: the output register must hold.
			if !frame.OutValid || frame.Out != prev.Out {
				t.Fatalf("cycle %d: stalled output not held: %+v -> %+v", cycle, prev, frame)
			}
			if frame.InReady {
				t.Fatalf("cycle %d: input accepted while stalled", cycle)
			}
		}

		prev = frame
	}

	testutil.RequireInt32SlicesEqual(t, got, want)
}

func TestMAC_TruncatesTowardNegativeInfinity(t *testing.T) {
	// The final right shift is an arithmetic shift, as in the RTL: -1 >> 3
	// stays -1 rather than rounding to 0.
	format := mustFormat(t, 3, 16)

	sim, err := New([]int32{-1}, format)
	if err != nil {
		t.Fatal(err)
	}

	out, err := sim.Simulate([]int32{1})
	if err != nil {
		t.Fatal(err)
	}

	if out[0] != -1 {
		t.Errorf("got %d, want -1 (arithmetic shift truncates toward -inf)", out[0])
	}
}

func TestSimulate_FreshStatePerRun(t *testing.T) {
	format := mustFormat(t, 3, 16)

	sim, err := New([]int32{1, 2, 3, 2, 1}, format)
	if err != nil {
		t.Fatal(err)
	}

	first, err := sim.Simulate([]int32{8, 0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}

	second, err := sim.Simulate([]int32{8, 0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireInt32SlicesEqual(t, first, second)
}
