package fir

// Filter is a float64 direct-form FIR filter. It serves as the
// floating-point reference the fixed-point datapath is verified against.
type Filter struct {
	taps  []float64
	delay []float64
	pos   int
}

// NewFilter creates a filter from the given coefficients. The slice is
// copied; the delay line starts cleared.
func NewFilter(taps []float64) *Filter {
	c := make([]float64, len(taps))
	copy(c, taps)

	return &Filter{
		taps:  c,
		delay: make([]float64, len(taps)),
	}
}

// ProcessSample filters one sample: y[n] = sum_k h[k] * x[n-k].
func (f *Filter) ProcessSample(x float64) float64 {
	f.delay[f.pos] = x

	var y float64

	n := len(f.taps)
	p := f.pos

	for k := range n {
		y += f.taps[k] * f.delay[p]

		p--
		if p < 0 {
			p = n - 1
		}
	}

	f.pos++
	if f.pos >= n {
		f.pos = 0
	}

	return y
}

// ProcessBlock filters src into a new slice of the same length, assuming
// zero initial state beyond whatever the delay line already holds.
func (f *Filter) ProcessBlock(src []float64) []float64 {
	out := make([]float64, len(src))
	for i, x := range src {
		out[i] = f.ProcessSample(x)
	}

	return out
}

// Reset clears the delay line.
func (f *Filter) Reset() {
	for i := range f.delay {
		f.delay[i] = 0
	}

	f.pos = 0
}

// Taps returns a copy of the filter coefficients.
func (f *Filter) Taps() []float64 {
	c := make([]float64, len(f.taps))
	copy(c, f.taps)

	return c
}

// FilterBlock is a one-shot convenience: it filters input through a fresh
// filter with the given taps and returns len(input) output samples, matching
// a causal direct convolution with zero initial state.
func FilterBlock(taps, input []float64) []float64 {
	return NewFilter(taps).ProcessBlock(input)
}
