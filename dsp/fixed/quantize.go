package fixed

import "math"

// Quantize converts a float sample to its fixed-point representation:
// multiply by 2^FracBits, round half to even, saturate to the word range.
//
// Round-half-to-even avoids the systematic bias a plain round-half-up
// would introduce across a symmetric coefficient set.
func (f Format) Quantize(x float64) int32 {
	return f.quantizeOne(x, nil)
}

// Dequantize converts a fixed-point sample back to float by exact division
// with the scale factor. It never saturates; the only residual error is the
// rounding incurred during Quantize.
func (f Format) Dequantize(v int32) float64 {
	return float64(v) / f.Scale()
}

// QuantizeBlock quantizes src elementwise into a new slice and reports how
// many samples had to be saturated. Saturation is a metric, not an error:
// a design that clips too many taps should be flagged by the caller.
func (f Format) QuantizeBlock(src []float64) ([]int32, int) {
	out := make([]int32, len(src))
	saturated := 0

	for i, x := range src {
		out[i] = f.quantizeOne(x, &saturated)
	}

	return out, saturated
}

// DequantizeBlock dequantizes src elementwise into a new slice.
func (f Format) DequantizeBlock(src []int32) []float64 {
	out := make([]float64, len(src))
	scale := f.Scale()

	for i, v := range src {
		out[i] = float64(v) / scale
	}

	return out
}

// Saturate clamps an already-scaled integer to the word range.
func (f Format) Saturate(v int64) int32 {
	lo, hi := int64(f.MinValue()), int64(f.MaxValue())
	if v < lo {
		return int32(lo)
	}

	if v > hi {
		return int32(hi)
	}

	return int32(v)
}

func (f Format) quantizeOne(x float64, saturated *int) int32 {
	scaled := math.RoundToEven(x * f.Scale())

	lo, hi := float64(f.MinValue()), float64(f.MaxValue())
	if scaled < lo || scaled > hi {
		if saturated != nil {
			*saturated++
		}

		if scaled < lo {
			return f.MinValue()
		}

		return f.MaxValue()
	}

	return int32(scaled)
}
