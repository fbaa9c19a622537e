// Package calibration turns the raw scores of a fitted classifier into
// well-calibrated class probabilities. Two calibration maps are provided:
// Platt's parametric sigmoid and a non-parametric isotonic (monotonic
// regression) map. CalibratedEnsemble orchestrates cross-validated
// fitting of base classifier plus map per fold, averaging the fold maps
// at prediction time; CalibrationCurve is the reliability diagnostic.
package calibration

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientData     = errors.New("calibration: insufficient data")
	ErrInvalidConfiguration = errors.New("calibration: invalid configuration")
	ErrShapeMismatch        = errors.New("calibration: shape mismatch")
	ErrNotFitted            = errors.New("calibration: not fitted")
)

// Map is a fitted score-to-probability transform for one binary
// sub-problem. Fit takes raw scores, {0,1} target labels and optional
// per-sample weights (nil for unweighted); Apply maps a score into [0,1].
type Map interface {
	Fit(scores, labels, weights []float64) error
	Apply(score float64) float64
}

type Method string

const (
	MethodSigmoid  Method = "sigmoid"
	MethodIsotonic Method = "isotonic"
)

func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodSigmoid, MethodIsotonic:
		return Method(s), nil
	default:
		return "", fmt.Errorf("%w: unknown method %q", ErrInvalidConfiguration, s)
	}
}

func newMap(method Method) Map {
	if method == MethodIsotonic {
		return &IsotonicMap{}
	}
	return &SigmoidMap{}
}

func checkFitInput(scores, labels, weights []float64) error {
	if len(scores) == 0 {
		return fmt.Errorf("%w: no samples to fit calibration map", ErrInsufficientData)
	}
	if len(scores) != len(labels) {
		return fmt.Errorf("%w: %d scores vs %d labels", ErrShapeMismatch, len(scores), len(labels))
	}
	if weights != nil && len(weights) != len(scores) {
		return fmt.Errorf("%w: %d scores vs %d weights", ErrShapeMismatch, len(scores), len(weights))
	}
	return nil
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
