package verify

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/cwbudde/fixedfir/dsp/fixed"
)

func TestCompare_PassWithinTolerance(t *testing.T) {
	format := fixed.Q15

	sim := []int32{8192, -4096, 0, 16384}
	ref := []float64{0.25, -0.125, 0.00001, 0.5}

	report, err := Compare(sim, ref, format, 0, 1e-3, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !report.Passed {
		t.Error("report not passed")
	}
	if report.MaxErrorIndex != 2 {
		t.Errorf("max error index: got %d, want 2", report.MaxErrorIndex)
	}
	if math.Abs(report.MaxError-0.00001) > 1e-12 {
		t.Errorf("max error: got %v, want 1e-5", report.MaxError)
	}
}

func TestCompare_ToleranceExceeded(t *testing.T) {
	format := fixed.Q15

	sim := []int32{8192, 0}
	ref := []float64{0.25, 0.25}

	report, err := Compare(sim, ref, format, 0, 0.01, 1)
	if report == nil {
		t.Fatal("report missing on tolerance failure")
	}
	if report.Passed {
		t.Error("report passed despite mismatch")
	}

	var tolErr *ToleranceError
	if !errors.As(err, &tolErr) {
		t.Fatalf("expected *ToleranceError, got %T", err)
	}

	if tolErr.Sample != 1 {
		t.Errorf("worst sample: got %d, want 1", tolErr.Sample)
	}
	if math.Abs(tolErr.MaxError-0.25) > 1e-12 {
		t.Errorf("max error: got %v, want 0.25", tolErr.MaxError)
	}
}

func TestCompare_LatencyAlignment(t *testing.T) {
	format := fixed.Q15

	// The reference leads the simulated stream by two samples.
	ref := []float64{0.9, 0.8, 0.25, -0.5, 0.125}
	sim := []int32{8192, -16384, 4096}

	report, err := Compare(sim, ref, format, 2, 1e-6, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Errors) != 3 {
		t.Fatalf("aligned length: got %d, want 3", len(report.Errors))
	}
	if !report.Passed {
		t.Errorf("max error %v", report.MaxError)
	}
}

func TestCompare_InsufficientOverlap(t *testing.T) {
	format := fixed.Q15

	_, err := Compare([]int32{1, 2, 3}, []float64{0, 0, 0, 0}, format, 2, 1e-3, 5)

	var overlapErr *OverlapError
	if !errors.As(err, &overlapErr) {
		t.Fatalf("expected *OverlapError, got %T (%v)", err, err)
	}

	if overlapErr.Comparable != 2 || overlapErr.Required != 5 {
		t.Errorf("got %d/%d, want 2/5", overlapErr.Comparable, overlapErr.Required)
	}

	// Latency beyond the reference leaves nothing to compare.
	_, err = Compare([]int32{1}, []float64{0}, format, 5, 1e-3, 1)
	if !errors.As(err, &overlapErr) {
		t.Fatalf("expected *OverlapError, got %T", err)
	}
}

func TestCompare_Validation(t *testing.T) {
	if _, err := Compare(nil, nil, fixed.Q15, -1, 1e-3, 1); err == nil {
		t.Error("negative latency accepted")
	}
	if _, err := Compare(nil, nil, fixed.Q15, 0, 0, 1); err == nil {
		t.Error("zero epsilon accepted")
	}
}

func TestRecordingWriteCSV(t *testing.T) {
	rec := Recording{
		SampleRate: 2000,
		Records: []Record{
			{Index: 0, Time: 0, FixedIn: 8, FloatIn: 1, FixedOut: 1, FloatOut: 0.125},
			{Index: 1, Time: 0.0005, FixedIn: 0, FloatIn: 0, FixedOut: 2, FloatOut: 0.25},
		},
	}

	var sb strings.Builder
	if err := rec.WriteCSV(&sb); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines: got %d, want 3", len(lines))
	}

	if lines[0] != "n,t,input_fixed,input_float,output_fixed,output_float" {
		t.Errorf("header: got %q", lines[0])
	}
	if lines[1] != "0,0,8,1,1,0.125" {
		t.Errorf("row 0: got %q", lines[1])
	}
	if lines[2] != "1,0.0005,0,0,2,0.25" {
		t.Errorf("row 1: got %q", lines[2])
	}
}
