// Command firverify runs the fixed-point FIR datapath model against the
// floating-point reference for one input signal and reports the worst
// per-sample error.
//
// The input is a WAV capture (-wav), an int16 text dump (-txt), or a
// synthetic multi-tone signal built from -tones.
//
// Examples:
//
//	firverify -fs 2000 -low 5 -high 50 -taps 121 -tones 10,100 -dur 1
//	firverify -wav capture.wav -low 5 -high 50 -taps 121 -csv run.csv
//	firverify -txt lfp.txt -fs 2000 -low 5 -high 50 -taps 121 -eps 0.001
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/fixedfir/dataset"
	"github.com/cwbudde/fixedfir/dsp/fir"
	"github.com/cwbudde/fixedfir/dsp/fixed"
	"github.com/cwbudde/fixedfir/verify"
)

func main() {
	fs := flag.Float64("fs", 2000, "sample rate in Hz (synthetic and text inputs)")
	low := flag.Float64("low", 5, "lower passband edge in Hz")
	high := flag.Float64("high", 50, "upper passband edge in Hz")
	taps := flag.Int("taps", 121, "number of filter taps")
	frac := flag.Int("frac", 15, "fractional bits of the fixed-point format")
	word := flag.Int("word", 16, "word width of the fixed-point format")
	wavPath := flag.String("wav", "", "WAV capture to verify against")
	txtPath := flag.String("txt", "", "int16 text dump to verify against")
	tones := flag.String("tones", "10,100", "synthetic tone frequencies in Hz, comma separated")
	dur := flag.Float64("dur", 1, "synthetic signal duration in seconds")
	eps := flag.Float64("eps", 0, "comparison tolerance (default one output LSB)")
	csvPath := flag.String("csv", "", "write the per-sample comparison to this CSV file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: firverify [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Verifies the fixed-point FIR datapath against the float reference.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	format, err := fixed.NewFormat(*frac, *word)
	if err != nil {
		fatal(err)
	}

	sig, err := loadSignal(*wavPath, *txtPath, *tones, *fs, *dur, format)
	if err != nil {
		fatal(err)
	}

	spec := fir.Spec{SampleRate: sig.SampleRate, LowEdge: *low, HighEdge: *high, NumTaps: *taps}

	var opts []verify.Option
	if *eps > 0 {
		opts = append(opts, verify.WithEpsilon(*eps))
	}

	result, err := verify.Run(spec, format, sig.Float, opts...)

	var tolErr *verify.ToleranceError
	if err != nil && !errors.As(err, &tolErr) {
		fatal(err)
	}

	printReport(sig.Name, format, result)

	if *csvPath != "" {
		if werr := result.Recording.WriteCSVFile(*csvPath); werr != nil {
			fatal(werr)
		}

		fmt.Printf("wrote %s\n", *csvPath)
	}

	if !result.Report.Passed {
		os.Exit(1)
	}
}

func loadSignal(wavPath, txtPath, tones string, fs, dur float64, format fixed.Format) (dataset.Signal, error) {
	switch {
	case wavPath != "" && txtPath != "":
		return dataset.Signal{}, fmt.Errorf("use either -wav or -txt, not both")
	case wavPath != "":
		return dataset.LoadWAV(wavPath, format)
	case txtPath != "":
		return dataset.LoadInt16Text(txtPath, fs, format)
	}

	var freqs []float64

	for _, part := range strings.Split(tones, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return dataset.Signal{}, fmt.Errorf("bad tone %q: %w", part, err)
		}

		freqs = append(freqs, f)
	}

	return dataset.Synthetic(fs, dur, freqs, format)
}

func printReport(name string, format fixed.Format, result *verify.RunResult) {
	status := "PASS"
	if !result.Report.Passed {
		status = "FAIL"
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Signal\t%s\n", name)
	fmt.Fprintf(tw, "Format\t%s\n", format)
	fmt.Fprintf(tw, "Samples\t%d\n", len(result.Outputs))
	fmt.Fprintf(tw, "Saturated taps\t%d\n", result.SaturatedTaps)
	fmt.Fprintf(tw, "Max error\t%.8f (sample %d)\n", result.Report.MaxError, result.Report.MaxErrorIndex)
	fmt.Fprintf(tw, "Epsilon\t%.8f\n", result.Report.Epsilon)
	fmt.Fprintf(tw, "Result\t%s\n", status)

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
