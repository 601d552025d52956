// Package dataset prepares verification input signals: synthetic tone sets
// and captured recordings from int16 text dumps or 16-bit PCM WAV files.
package dataset

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/cwbudde/fixedfir/dsp/fixed"
)

// Signal is one verification input with both domain views. The fixed view
// is derived from the float view (or vice versa) at construction; neither is
// mutated afterwards.
type Signal struct {
	Name       string
	SampleRate float64
	Float      []float64
	Fixed      []int32
}

// FromFloat builds a signal from float samples, quantizing the fixed view.
func FromFloat(name string, fs float64, samples []float64, format fixed.Format) Signal {
	q, _ := format.QuantizeBlock(samples)

	return Signal{
		Name:       name,
		SampleRate: fs,
		Float:      append([]float64(nil), samples...),
		Fixed:      q,
	}
}

// FromFixed builds a signal from fixed samples, dequantizing the float view.
func FromFixed(name string, fs float64, samples []int32, format fixed.Format) Signal {
	return Signal{
		Name:       name,
		SampleRate: fs,
		Float:      format.DequantizeBlock(samples),
		Fixed:      append([]int32(nil), samples...),
	}
}

// Synthetic generates a normalized sum of sines, the stock multi-tone test
// signal: each component has amplitude 1/len(freqs).
func Synthetic(fs, duration float64, freqs []float64, format fixed.Format) (Signal, error) {
	if fs <= 0 {
		return Signal{}, fmt.Errorf("dataset: sample rate must be > 0: %v", fs)
	}

	if duration <= 0 || len(freqs) == 0 {
		return Signal{}, fmt.Errorf("dataset: need a positive duration and at least one frequency")
	}

	n := int(duration * fs)
	out := make([]float64, n)
	amp := 1 / float64(len(freqs))

	for _, f := range freqs {
		step := 2 * math.Pi * f / fs
		for i := range out {
			out[i] += amp * math.Sin(step*float64(i))
		}
	}

	return FromFloat(fmt.Sprintf("synthetic_%dtone", len(freqs)), fs, out, format), nil
}

// SineSet generates one single-tone signal per frequency, named after the
// tone (sine_10Hz and so on).
func SineSet(fs, duration float64, freqs []float64, format fixed.Format) ([]Signal, error) {
	if fs <= 0 || duration <= 0 {
		return nil, fmt.Errorf("dataset: need positive sample rate and duration")
	}

	signals := make([]Signal, 0, len(freqs))

	for _, f := range freqs {
		n := int(duration * fs)
		out := make([]float64, n)
		step := 2 * math.Pi * f / fs

		for i := range out {
			out[i] = math.Sin(step * float64(i))
		}

		signals = append(signals, FromFloat(fmt.Sprintf("sine_%gHz", f), fs, out, format))
	}

	return signals, nil
}

// LoadInt16Text reads a capture stored as one int16 sample per line (or
// whitespace-separated), the format the recording rigs dump.
func LoadInt16Text(path string, fs float64, format fixed.Format) (Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return Signal{}, err
	}
	defer f.Close()

	var samples []int32

	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanWords)

	for sc.Scan() {
		v, err := strconv.ParseInt(sc.Text(), 10, 16)
		if err != nil {
			return Signal{}, fmt.Errorf("dataset: %s: sample %d: %w", path, len(samples), err)
		}

		samples = append(samples, int32(v))
	}

	if err := sc.Err(); err != nil {
		return Signal{}, err
	}

	return FromFixed(path, fs, samples, format), nil
}
