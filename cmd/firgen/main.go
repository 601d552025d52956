// Command firgen designs a fixed-point FIR bandpass filter, checks its
// frequency response against a ripple/attenuation budget, and exports the
// quantized coefficients.
//
// Usage:
//
//	firgen [flags]
//
// Examples:
//
//	firgen -fs 2000 -low 5 -high 50 -taps 121
//	firgen -fs 2000 -low 5 -high 50 -taps 121 -hex coeffs.hex -dec coeffs.txt
//	firgen -fs 48000 -low 300 -high 3400 -taps 255 -frac 15 -word 16 -atten 60
package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/fixedfir/coeffio"
	"github.com/cwbudde/fixedfir/dsp/fir"
	"github.com/cwbudde/fixedfir/dsp/fixed"
	"github.com/cwbudde/fixedfir/dsp/response"
)

func main() {
	fs := flag.Float64("fs", 2000, "sample rate in Hz")
	low := flag.Float64("low", 5, "lower passband edge in Hz")
	high := flag.Float64("high", 50, "upper passband edge in Hz")
	taps := flag.Int("taps", 121, "number of filter taps")
	frac := flag.Int("frac", 15, "fractional bits of the fixed-point format")
	word := flag.Int("word", 16, "word width of the fixed-point format")
	grid := flag.Int("grid", 8192, "frequency grid size for the budget check")
	ripple := flag.Float64("ripple", 3, "max ripple in dB over the central half of the passband (0 disables)")
	atten := flag.Float64("atten", 40, "min stopband attenuation in dB (0 disables the check)")
	stopLow := flag.Float64("stoplow", 0, "upper edge of a low stopband in Hz (0 skips the low stopband)")
	stopHigh := flag.Float64("stophigh", 0, "lower edge of the high stopband in Hz (default 2*high)")
	hexPath := flag.String("hex", "", "write coefficients as hex words ($readmemh) to this file")
	decPath := flag.String("dec", "", "write coefficients as signed decimals to this file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: firgen [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Designs a fixed-point FIR bandpass filter and exports the coefficients.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	spec := fir.Spec{SampleRate: *fs, LowEdge: *low, HighEdge: *high, NumTaps: *taps}

	format, err := fixed.NewFormat(*frac, *word)
	if err != nil {
		fatal(err)
	}

	coeffs, err := fir.DesignBandpass(spec)
	if err != nil {
		fatal(err)
	}

	quantized, saturated := format.QuantizeBlock(coeffs)

	points, err := response.Grid(format.DequantizeBlock(quantized), spec.SampleRate, *grid)
	if err != nil {
		fatal(err)
	}

	bands := buildBands(spec, *ripple, *atten, *stopLow, *stopHigh)
	budgetErr := response.CheckBudget(points, bands)

	printSummary(spec, format, quantized, saturated, points)

	if *hexPath != "" {
		if err := coeffio.WriteHexFile(*hexPath, quantized, format.WordBits); err != nil {
			fatal(err)
		}

		fmt.Printf("wrote %s\n", *hexPath)
	}

	if *decPath != "" {
		if err := coeffio.WriteDecimalFile(*decPath, quantized); err != nil {
			fatal(err)
		}

		fmt.Printf("wrote %s\n", *decPath)
	}

	if budgetErr != nil {
		var budget *response.BudgetError
		if errors.As(budgetErr, &budget) {
			fmt.Fprintf(os.Stderr, "budget check failed (%d violations):\n", len(budget.Violations))
			for _, v := range budget.Violations {
				fmt.Fprintf(os.Stderr, "  %.2f Hz: %.2f dB (limit %.2f dB)\n", v.Frequency, v.MagnitudeDB, v.LimitDB)
			}
		} else {
			fmt.Fprintf(os.Stderr, "budget check failed: %v\n", budgetErr)
		}

		os.Exit(1)
	}
}

func buildBands(spec fir.Spec, ripple, atten, stopLow, stopHigh float64) []response.Band {
	var bands []response.Band

	if ripple > 0 {
		// The band edges are the -6 dB points of the design, so ripple is
		// budgeted over the central half of the passband only.
		margin := (spec.HighEdge - spec.LowEdge) / 4
		bands = append(bands, response.Band{
			Low:         spec.LowEdge + margin,
			High:        spec.HighEdge - margin,
			MaxRippleDB: ripple,
		})
	}

	if atten > 0 {
		nyq := spec.Nyquist()

		if stopLow > 0 {
			bands = append(bands, response.Band{Low: 0, High: stopLow, MinAttenDB: atten})
		}

		if stopHigh <= 0 {
			stopHigh = 2 * spec.HighEdge
		}

		if stopHigh < nyq {
			bands = append(bands, response.Band{Low: stopHigh, High: nyq, MinAttenDB: atten})
		}
	}

	return bands
}

func printSummary(spec fir.Spec, format fixed.Format, quantized []int32, saturated int, points []response.Point) {
	minC, maxC := quantized[0], quantized[0]
	for _, c := range quantized {
		if c < minC {
			minC = c
		}

		if c > maxC {
			maxC = c
		}
	}

	maxMag := 0.0
	for _, p := range points {
		maxMag = math.Max(maxMag, p.Magnitude())
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Band\t%.6g - %.6g Hz @ %.6g Hz\n", spec.LowEdge, spec.HighEdge, spec.SampleRate)
	fmt.Fprintf(tw, "Taps\t%d\n", spec.NumTaps)
	fmt.Fprintf(tw, "Format\t%s (scale %.0f)\n", format, format.Scale())
	fmt.Fprintf(tw, "Coeff range\t%d .. %d\n", minC, maxC)
	fmt.Fprintf(tw, "Saturated taps\t%d\n", saturated)
	fmt.Fprintf(tw, "Max |H|\t%.6f\n", maxMag)

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
