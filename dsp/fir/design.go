package fir

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// WindowFunc generates symmetric window coefficients of the given length.
type WindowFunc func(length int) []float64

// Option configures the bandpass design.
type Option func(*designConfig)

type designConfig struct {
	window WindowFunc
}

// WithWindow selects the taper applied to the ideal kernel. The default is
// a symmetric Hamming window.
func WithWindow(w WindowFunc) Option {
	return func(c *designConfig) {
		if w != nil {
			c.window = w
		}
	}
}

// DesignBandpass synthesizes linear-phase bandpass FIR coefficients from the
// spec using the windowed-sinc method.
//
// The ideal kernel is the difference of two low-pass sinc kernels at the
// normalized band edges, tapered by the window and scaled so the response at
// the passband center is exactly unity. The result has length spec.NumTaps
// and is symmetric: h[i] == h[N-1-i].
func DesignBandpass(spec Spec, opts ...Option) ([]float64, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	cfg := designConfig{window: Hamming}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	n := spec.NumTaps
	nyq := spec.Nyquist()
	low := spec.LowEdge / nyq
	high := spec.HighEdge / nyq
	center := float64(n-1) / 2

	h := make([]float64, n)
	for i := range h {
		m := float64(i) - center
		h[i] = high*sinc(high*m) - low*sinc(low*m)
	}

	vecmath.MulBlockInPlace(h, cfg.window(n))

	// Normalize so that |H| is exactly 1 at the passband center frequency.
	// H(f) for a symmetric real kernel reduces to sum h[i]*cos(pi*m*f) with
	// f in Nyquist units.
	fc := (low + high) / 2

	var gain float64
	for i := range h {
		m := float64(i) - center
		gain += h[i] * math.Cos(math.Pi*m*fc)
	}

	for i := range h {
		h[i] /= gain
	}

	return h, nil
}

// Hamming returns symmetric Hamming window coefficients.
func Hamming(length int) []float64 {
	w := make([]float64, length)
	if length == 1 {
		w[0] = 1
		return w
	}

	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(length-1))
	}

	return w
}

// sinc is the normalized sinc function sin(pi*x)/(pi*x).
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}

	px := math.Pi * x

	return math.Sin(px) / px
}
