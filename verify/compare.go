// Package verify compares the fixed-point datapath output against the
// floating-point reference and records verification artifacts.
package verify

import (
	"fmt"
	"math"

	"github.com/cwbudde/fixedfir/dsp/fixed"
)

// ToleranceError reports that the worst-case mismatch between the simulated
// and reference outputs exceeded the allowed epsilon. It marks a failed
// verification, not a fault in the run itself.
type ToleranceError struct {
	Sample    int
	MaxError  float64
	Simulated float64
	Reference float64
	Epsilon   float64
}

func (e *ToleranceError) Error() string {
	return fmt.Sprintf("verify: tolerance exceeded at sample %d: |%g - %g| = %g > %g",
		e.Sample, e.Simulated, e.Reference, e.MaxError, e.Epsilon)
}

// OverlapError reports that the aligned sequences share too few samples to
// give a meaningful comparison. It is fatal to the verification run.
type OverlapError struct {
	Comparable int
	Required   int
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("verify: only %d comparable samples after alignment, need at least %d",
		e.Comparable, e.Required)
}

// Report is the terminal artifact of one comparison. It is immutable after
// creation.
type Report struct {
	Simulated     []float64
	Reference     []float64
	Errors        []float64
	MaxError      float64
	MaxErrorIndex int
	Epsilon       float64
	Passed        bool
}

// Compare aligns the simulated fixed-point outputs with the float reference
// by discarding the first latency reference samples, dequantizes the
// simulated sequence, and checks the worst per-sample absolute error against
// epsilon.
//
// minOverlap is the smallest aligned length that still counts as a valid
// comparison; the filter tap count is the conventional choice. On a
// tolerance failure the report is still returned alongside the
// *ToleranceError.
func Compare(sim []int32, ref []float64, format fixed.Format, latency int, epsilon float64, minOverlap int) (*Report, error) {
	if latency < 0 {
		return nil, fmt.Errorf("verify: latency must be >= 0: %d", latency)
	}

	if epsilon <= 0 {
		return nil, fmt.Errorf("verify: epsilon must be > 0: %g", epsilon)
	}

	if minOverlap < 1 {
		minOverlap = 1
	}

	var aligned []float64
	if latency < len(ref) {
		aligned = ref[latency:]
	}

	n := min(len(sim), len(aligned))
	if n < minOverlap {
		return nil, &OverlapError{Comparable: n, Required: minOverlap}
	}

	report := &Report{
		Simulated: format.DequantizeBlock(sim[:n]),
		Reference: append([]float64(nil), aligned[:n]...),
		Errors:    make([]float64, n),
		Epsilon:   epsilon,
	}

	for i := range n {
		e := math.Abs(report.Simulated[i] - report.Reference[i])
		report.Errors[i] = e

		if e > report.MaxError {
			report.MaxError = e
			report.MaxErrorIndex = i
		}
	}

	report.Passed = report.MaxError <= epsilon
	if !report.Passed {
		i := report.MaxErrorIndex

		return report, &ToleranceError{
			Sample:    i,
			MaxError:  report.MaxError,
			Simulated: report.Simulated[i],
			Reference: report.Reference[i],
			Epsilon:   epsilon,
		}
	}

	return report, nil
}
