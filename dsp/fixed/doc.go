// Package fixed converts between float64 samples and signed two's-complement
// fixed-point words (Q-format).
//
// Quantization rounds half to even and saturates to the word range;
// dequantization is an exact division by the scale factor. For any x within
// the representable range the round trip error is bounded by 1/(2*scale).
package fixed
