// Package calc implements the clinical calculators. All calculators are
// pure functions: no I/O, no randomness, deterministic rounding.
package calc

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput marks out-of-domain calculator arguments. The tool
// boundary converts it into a structured error payload for the model.
var ErrInvalidInput = errors.New("invalid calculator input")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

const (
	SpeciesCanine = "canine"
	SpeciesFeline = "feline"
)

// round2 rounds to 2 decimal places; round1 to 1.
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
