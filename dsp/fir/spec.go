package fir

import "fmt"

// Spec describes a bandpass filter design request.
//
// The passband edges are absolute frequencies in Hz and must satisfy
// 0 < LowEdge < HighEdge < SampleRate/2.
type Spec struct {
	SampleRate float64
	LowEdge    float64
	HighEdge   float64
	NumTaps    int
}

// InvalidSpecError reports a malformed Spec. It is fatal to the design run.
type InvalidSpecError struct {
	Field  string
	Reason string
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("fir: invalid spec: %s: %s", e.Field, e.Reason)
}

// Nyquist returns half the sample rate.
func (s Spec) Nyquist() float64 {
	return s.SampleRate / 2
}

// Validate checks the spec invariants and returns an *InvalidSpecError
// describing the first violated field.
func (s Spec) Validate() error {
	if s.SampleRate <= 0 {
		return &InvalidSpecError{Field: "SampleRate", Reason: fmt.Sprintf("must be > 0: %v", s.SampleRate)}
	}

	if s.NumTaps < 1 {
		return &InvalidSpecError{Field: "NumTaps", Reason: fmt.Sprintf("must be >= 1: %d", s.NumTaps)}
	}

	nyq := s.Nyquist()
	if s.LowEdge <= 0 || s.LowEdge >= nyq {
		return &InvalidSpecError{Field: "LowEdge", Reason: fmt.Sprintf("must be in (0, %v): %v", nyq, s.LowEdge)}
	}

	if s.HighEdge <= 0 || s.HighEdge >= nyq {
		return &InvalidSpecError{Field: "HighEdge", Reason: fmt.Sprintf("must be in (0, %v): %v", nyq, s.HighEdge)}
	}

	if s.LowEdge >= s.HighEdge {
		return &InvalidSpecError{Field: "LowEdge", Reason: fmt.Sprintf("must be below HighEdge: %v >= %v", s.LowEdge, s.HighEdge)}
	}

	return nil
}
