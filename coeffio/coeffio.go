// Package coeffio reads and writes fixed-point coefficient files.
//
// The hex format is one two's-complement word per line in uppercase
// hexadecimal, zero-padded to wordBits/4 digits with no prefix, compatible
// with Verilog $readmemh memory initialization. The decimal format is one
// signed base-10 integer per line. Both keep coefficient index order.
package coeffio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// FormatError reports a malformed line during import. Line numbers are
// 1-based. The import aborts at the first malformed line.
type FormatError struct {
	Line int
	Text string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("coeffio: line %d: malformed value %q: %v", e.Line, e.Text, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func validWordBits(wordBits int) error {
	if wordBits < 4 || wordBits > 32 || wordBits%4 != 0 {
		return fmt.Errorf("coeffio: word bits must be a multiple of 4 in [4, 32]: %d", wordBits)
	}

	return nil
}

// ExportHex writes one coefficient per line as its two's-complement bit
// pattern, most-significant nibble first.
func ExportHex(w io.Writer, coeffs []int32, wordBits int) error {
	if err := validWordBits(wordBits); err != nil {
		return err
	}

	digits := wordBits / 4
	mask := uint64(1)<<wordBits - 1

	bw := bufio.NewWriter(w)
	for i, c := range coeffs {
		if err := checkRange(c, wordBits, i); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(bw, "%0*X\n", digits, uint64(c)&mask); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// ExportDecimal writes one signed decimal integer per line.
func ExportDecimal(w io.Writer, coeffs []int32) error {
	bw := bufio.NewWriter(w)
	for _, c := range coeffs {
		if _, err := fmt.Fprintf(bw, "%d\n", c); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// ImportHex parses one unsigned hex word per line and reinterprets it as a
// two's-complement signed integer of wordBits width.
func ImportHex(r io.Reader, wordBits int) ([]int32, error) {
	if err := validWordBits(wordBits); err != nil {
		return nil, err
	}

	signBit := uint64(1) << (wordBits - 1)
	span := uint64(1) << wordBits

	return scanLines(r, func(line string) (int32, error) {
		v, err := strconv.ParseUint(line, 16, 64)
		if err != nil {
			return 0, err
		}

		if v >= span {
			return 0, fmt.Errorf("exceeds %d-bit range", wordBits)
		}

		if v >= signBit {
			return int32(int64(v) - int64(span)), nil
		}

		return int32(v), nil
	})
}

// ImportDecimal parses one signed decimal integer per line, range-checked
// against the word width.
func ImportDecimal(r io.Reader, wordBits int) ([]int32, error) {
	if err := validWordBits(wordBits); err != nil {
		return nil, err
	}

	lo := -(int64(1) << (wordBits - 1))
	hi := int64(1)<<(wordBits-1) - 1

	return scanLines(r, func(line string) (int32, error) {
		v, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return 0, err
		}

		if v < lo || v > hi {
			return 0, fmt.Errorf("outside %d-bit range [%d, %d]", wordBits, lo, hi)
		}

		return int32(v), nil
	})
}

func scanLines(r io.Reader, parse func(string) (int32, error)) ([]int32, error) {
	var out []int32

	sc := bufio.NewScanner(r)
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := sc.Text()

		v, err := parse(line)
		if err != nil {
			return nil, &FormatError{Line: lineNo, Text: line, Err: err}
		}

		out = append(out, v)
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func checkRange(c int32, wordBits, index int) error {
	lo := -(int64(1) << (wordBits - 1))
	hi := int64(1)<<(wordBits-1) - 1

	if int64(c) < lo || int64(c) > hi {
		return fmt.Errorf("coeffio: coefficient %d outside %d-bit range: %d", index, wordBits, c)
	}

	return nil
}

// WriteHexFile exports coeffs to a hex coefficient file.
func WriteHexFile(path string, coeffs []int32, wordBits int) error {
	return writeFile(path, func(w io.Writer) error {
		return ExportHex(w, coeffs, wordBits)
	})
}

// WriteDecimalFile exports coeffs to a decimal coefficient file.
func WriteDecimalFile(path string, coeffs []int32) error {
	return writeFile(path, func(w io.Writer) error {
		return ExportDecimal(w, coeffs)
	})
}

// ReadHexFile imports a hex coefficient file.
func ReadHexFile(path string, wordBits int) ([]int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ImportHex(f, wordBits)
}

// ReadDecimalFile imports a decimal coefficient file.
func ReadDecimalFile(path string, wordBits int) ([]int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ImportDecimal(f, wordBits)
}

func writeFile(path string, export func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := export(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
