package fixed

import (
	"fmt"
	"math"
)

const (
	minWordBits = 2
	maxWordBits = 32
)

// Format describes a signed two's-complement Q-format: one sign bit,
// WordBits-1-FracBits integer bits and FracBits fractional bits.
// Q1.15 is Format{FracBits: 15, WordBits: 16}.
type Format struct {
	FracBits int
	WordBits int
}

// NewFormat validates and returns a Q-format description.
func NewFormat(fracBits, wordBits int) (Format, error) {
	f := Format{FracBits: fracBits, WordBits: wordBits}

	if wordBits < minWordBits || wordBits > maxWordBits {
		return Format{}, fmt.Errorf("fixed: word bits must be in [%d, %d]: %d", minWordBits, maxWordBits, wordBits)
	}

	if fracBits < 1 || fracBits >= wordBits {
		return Format{}, fmt.Errorf("fixed: fractional bits must be in [1, %d]: %d", wordBits-1, fracBits)
	}

	return f, nil
}

// Q15 is the reference configuration of the hardware datapath.
var Q15 = Format{FracBits: 15, WordBits: 16}

// Scale returns the quantization scale factor 2^FracBits.
func (f Format) Scale() float64 {
	return math.Exp2(float64(f.FracBits))
}

// MaxValue returns the largest representable integer, 2^(WordBits-1)-1.
func (f Format) MaxValue() int32 {
	return int32(uint32(1)<<(f.WordBits-1)) - 1
}

// MinValue returns the smallest representable integer, -2^(WordBits-1).
func (f Format) MinValue() int32 {
	return -int32(uint32(1) << (f.WordBits - 1))
}

// String renders the format in Q notation, e.g. "Q1.15".
func (f Format) String() string {
	return fmt.Sprintf("Q%d.%d", f.WordBits-f.FracBits, f.FracBits)
}
