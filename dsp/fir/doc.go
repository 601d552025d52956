// Package fir designs linear-phase bandpass FIR filters with the
// windowed-sinc method and provides the floating-point reference filter the
// fixed-point hardware model is compared against.
package fir
