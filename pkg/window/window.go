// Package window provides the taper functions used for spectral analysis and
// overlap-add reconstruction.
package window

import (
	"fmt"
	"strings"

	algowindow "github.com/cwbudde/algo-dsp/dsp/window"
	dspwindow "github.com/mjibson/go-dsp/window"
)

type Type int

const (
	TypeUndefined = Type(iota)
	TypeRectangular
	TypeHann
	TypeHamming
	TypeTriangular
	EndOfType
)

func (t Type) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeRectangular:
		return "rectangular"
	case TypeHann:
		return "hann"
	case TypeHamming:
		return "hamming"
	case TypeTriangular:
		return "triangular"
	default:
		return fmt.Sprintf("unknown_window_%d", int(t))
	}
}

// ParseType parses a window name; "triang" and "hanning" are accepted as
// aliases.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rectangular", "boxcar":
		return TypeRectangular, nil
	case "hann", "hanning":
		return TypeHann, nil
	case "hamming":
		return TypeHamming, nil
	case "triangular", "triang":
		return TypeTriangular, nil
	}
	return TypeUndefined, fmt.Errorf("unknown window type %q", s)
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Set implements pflag.Value.
func (t *Type) Set(s string) error {
	return t.UnmarshalText([]byte(s))
}

// Type implements pflag.Value.
func (t *Type) Type() string {
	return "window"
}

// Generate returns the symmetric window of the given type and size.
func Generate(t Type, size int) ([]float64, error) {
	switch t {
	case TypeRectangular:
		return Rectangular(size), nil
	case TypeHann:
		return Hann(size), nil
	case TypeHamming:
		return Hamming(size), nil
	case TypeTriangular:
		return Triangular(size), nil
	default:
		return nil, fmt.Errorf("unsupported window type %v", t)
	}
}

func Rectangular(size int) []float64 {
	w := make([]float64, max(size, 0))
	for i := range w {
		w[i] = 1
	}
	return w
}

// Hann returns the symmetric Hann window (zero at both ends).
func Hann(size int) []float64 {
	if size <= 1 {
		return Rectangular(size)
	}
	return dspwindow.Hann(size)
}

// Hamming returns the symmetric Hamming window.
func Hamming(size int) []float64 {
	if size <= 1 {
		return Rectangular(size)
	}
	return dspwindow.Hamming(size)
}

// Triangular returns the symmetric triangular window with non-zero end
// points: the zero-ended triangle of size+2 without its end points.
func Triangular(size int) []float64 {
	if size <= 1 {
		return Rectangular(size)
	}
	return algowindow.Generate(algowindow.TypeTriangle, size+2)[1 : size+1]
}

// Kaiser returns the Kaiser window with shape parameter beta. A negative
// beta is treated as zero.
//
// A periodic window is the symmetric window of size+1 with the last point
// dropped, which is what spectral analysis expects.
func Kaiser(size int, beta float64, periodic bool) []float64 {
	if size <= 1 {
		return Rectangular(size)
	}
	var opts []algowindow.Option
	if periodic {
		opts = append(opts, algowindow.WithPeriodic())
	}
	w, err := algowindow.Kaiser(size, max(beta, 0), opts...)
	if err != nil {
		return Rectangular(size)
	}
	return w
}

// SumOfSquares returns the sum of the squared window coefficients.
func SumOfSquares(w []float64) float64 {
	var s float64
	for _, v := range w {
		s += v * v
	}
	return s
}
