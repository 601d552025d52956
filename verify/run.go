package verify

import (
	"fmt"

	"github.com/cwbudde/fixedfir/dsp/fir"
	"github.com/cwbudde/fixedfir/dsp/fixed"
	"github.com/cwbudde/fixedfir/hwsim"
)

// Option configures a verification run.
type Option func(*runConfig)

type runConfig struct {
	epsilon        float64
	maxSatFraction float64
	simOpts        []hwsim.Option
}

// WithEpsilon overrides the comparison tolerance. The default is one output
// LSB (1/scale): the reference is computed from the same dequantized values
// the datapath sees, so the truncating output shift is the only systematic
// divergence and it stays below one LSB.
func WithEpsilon(eps float64) Option {
	return func(c *runConfig) {
		if eps > 0 {
			c.epsilon = eps
		}
	}
}

// WithMaxSaturationFraction sets the fraction of quantized taps allowed to
// saturate before the run is rejected. The default is 0: any clipped tap
// fails the run.
func WithMaxSaturationFraction(f float64) Option {
	return func(c *runConfig) {
		if f >= 0 {
			c.maxSatFraction = f
		}
	}
}

// WithSimulatorOptions forwards options to the underlying hardware model.
func WithSimulatorOptions(opts ...hwsim.Option) Option {
	return func(c *runConfig) {
		c.simOpts = append(c.simOpts, opts...)
	}
}

// RunResult bundles everything one design-and-verify pass produces.
type RunResult struct {
	FloatCoeffs   []float64
	FixedCoeffs   []int32
	SaturatedTaps int
	Outputs       []int32
	Report        *Report
	Recording     Recording
}

// Run executes the full pipeline for one input signal: design the filter,
// quantize it, stream the quantized input through the hardware model, filter
// the same values through the float reference, and compare.
//
// The simulator returns sample-aligned outputs, so the comparison latency is
// zero; the cycle-domain pipeline delay is internal to the model.
func Run(spec fir.Spec, format fixed.Format, input []float64, opts ...Option) (*RunResult, error) {
	cfg := runConfig{epsilon: 1 / format.Scale()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	floatCoeffs, err := fir.DesignBandpass(spec)
	if err != nil {
		return nil, err
	}

	fixedCoeffs, saturated := format.QuantizeBlock(floatCoeffs)
	if frac := float64(saturated) / float64(len(fixedCoeffs)); frac > cfg.maxSatFraction {
		return nil, fmt.Errorf("verify: %d of %d taps saturated (%.1f%%), above the %.1f%% limit",
			saturated, len(fixedCoeffs), 100*frac, 100*cfg.maxSatFraction)
	}

	fixedIn, _ := format.QuantizeBlock(input)

	sim, err := hwsim.New(fixedCoeffs, format, cfg.simOpts...)
	if err != nil {
		return nil, err
	}

	outputs, err := sim.Simulate(fixedIn)
	if err != nil {
		return nil, err
	}

	// Reference path: the float filter runs on the dequantized coefficients
	// and inputs, i.e. the exact values the datapath sees.
	reference := fir.FilterBlock(format.DequantizeBlock(fixedCoeffs), format.DequantizeBlock(fixedIn))

	report, cmpErr := Compare(outputs, reference, format, 0, cfg.epsilon, spec.NumTaps)
	if report == nil {
		return nil, cmpErr
	}

	result := &RunResult{
		FloatCoeffs:   floatCoeffs,
		FixedCoeffs:   fixedCoeffs,
		SaturatedTaps: saturated,
		Outputs:       outputs,
		Report:        report,
		Recording:     buildRecording(spec.SampleRate, format, fixedIn, input, outputs),
	}

	return result, cmpErr
}

func buildRecording(fs float64, format fixed.Format, fixedIn []int32, floatIn []float64, outputs []int32) Recording {
	rec := Recording{
		SampleRate: fs,
		Records:    make([]Record, len(outputs)),
	}

	for i, out := range outputs {
		r := Record{
			Index:    i,
			Time:     float64(i) / fs,
			FixedOut: out,
			FloatOut: format.Dequantize(out),
		}

		if i < len(fixedIn) {
			r.FixedIn = fixedIn[i]
			r.FloatIn = floatIn[i]
		}

		rec.Records[i] = r
	}

	return rec
}
