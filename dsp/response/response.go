// Package response evaluates FIR frequency responses and checks them
// against per-band magnitude budgets.
package response

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// dbFloor caps how far down a magnitude reading can go, keeping log10 of
// numerically-zero bins finite.
const dbFloor = -300.0

// Point is the complex gain of the filter at one frequency.
type Point struct {
	Frequency float64
	H         complex128
}

// Magnitude returns |H| at the point.
func (p Point) Magnitude() float64 {
	return cmplx.Abs(p.H)
}

// MagnitudeDB returns the magnitude in dB with a safe floor at -300 dB.
func (p Point) MagnitudeDB() float64 {
	m := cmplx.Abs(p.H)
	if m <= 1e-15 {
		return dbFloor
	}

	return 20 * math.Log10(m)
}

// Phase returns the phase of H in radians.
func (p Point) Phase() float64 {
	return cmplx.Phase(p.H)
}

// Evaluate computes the filter transfer function at each requested frequency
// by direct evaluation of the coefficient polynomial on the unit circle
// (the DTFT at that frequency).
func Evaluate(coeffs []float64, fs float64, freqs []float64) ([]Point, error) {
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("response: empty coefficients")
	}

	if fs <= 0 || math.IsNaN(fs) || math.IsInf(fs, 0) {
		return nil, fmt.Errorf("response: sample rate must be > 0: %v", fs)
	}

	points := make([]Point, len(freqs))

	for i, freq := range freqs {
		if freq < 0 || freq > fs/2 || math.IsNaN(freq) {
			return nil, fmt.Errorf("response: frequency must be between 0 and %v: %v", fs/2, freq)
		}

		w := 2 * math.Pi * freq / fs

		var h complex128
		for k, c := range coeffs {
			h += complex(c, 0) * cmplx.Exp(complex(0, -w*float64(k)))
		}

		points[i] = Point{Frequency: freq, H: h}
	}

	return points, nil
}

// Grid evaluates the response on a dense uniform grid via a zero-padded FFT
// of the coefficient vector, returning the non-negative-frequency bins
// [0 .. fs/2]. size is rounded up to the next power of two and to at least
// the coefficient count.
func Grid(coeffs []float64, fs float64, size int) ([]Point, error) {
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("response: empty coefficients")
	}

	if fs <= 0 || math.IsNaN(fs) || math.IsInf(fs, 0) {
		return nil, fmt.Errorf("response: sample rate must be > 0: %v", fs)
	}

	fftSize := nextPowerOf2(max(size, len(coeffs)))

	in := make([]complex128, fftSize)
	for i, c := range coeffs {
		in[i] = complex(c, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("response: fft plan: %w", err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("response: fft: %w", err)
	}

	bins := fftSize/2 + 1
	binHz := fs / float64(fftSize)

	points := make([]Point, bins)
	for k := range points {
		points[k] = Point{Frequency: float64(k) * binHz, H: out[k]}
	}

	return points, nil
}

// Magnitudes extracts |H| for a set of points in one pass.
func Magnitudes(points []Point) []float64 {
	if len(points) == 0 {
		return nil
	}

	re := make([]float64, len(points))
	im := make([]float64, len(points))

	for i, p := range points {
		re[i] = real(p.H)
		im[i] = imag(p.H)
	}

	out := make([]float64, len(points))
	vecmath.Magnitude(out, re, im)

	return out
}

func nextPowerOf2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}

	return size
}
