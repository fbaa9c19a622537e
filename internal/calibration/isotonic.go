package calibration

import (
	"fmt"

	"probcal/internal/regression"
)

// IsotonicMap calibrates scores with monotonic regression: the fitted map
// is the non-decreasing step/piecewise-linear function closest to the
// observed (score, label) pairs in squared error. The solve is delegated
// to the regression package; this wrapper clips the output to [0,1] and
// extends the map flat beyond the fitted score range.
type IsotonicMap struct {
	iso    *regression.Isotonic
	fitted bool
}

func (im *IsotonicMap) Fit(scores, labels, weights []float64) error {
	if err := checkFitInput(scores, labels, weights); err != nil {
		return err
	}

	iso, err := regression.FitIsotonic(scores, labels, weights)
	if err != nil {
		return fmt.Errorf("isotonic calibration: %w", err)
	}

	im.iso = iso
	im.fitted = true
	return nil
}

func (im *IsotonicMap) Apply(score float64) float64 {
	return clamp01(im.iso.Predict(score))
}
