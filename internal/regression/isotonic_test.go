package regression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitIsotonicMonotone(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 0, 1, 0, 1}

	iso, err := FitIsotonic(x, y, nil)
	require.NoError(t, err)

	prev := iso.Predict(x[0])
	for _, xi := range x[1:] {
		cur := iso.Predict(xi)
		assert.GreaterOrEqual(t, cur, prev, "fitted function must be non-decreasing")
		prev = cur
	}
}

func TestFitIsotonicAlreadyMonotone(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{0.1, 0.2, 0.6, 0.9}

	iso, err := FitIsotonic(x, y, nil)
	require.NoError(t, err)

	for i, xi := range x {
		assert.InDelta(t, y[i], iso.Predict(xi), 1e-12, "monotone input must pass through unchanged")
	}
}

func TestFitIsotonicPoolsViolators(t *testing.T) {
	// One violating pair, equal weights: both collapse to the mean.
	iso, err := FitIsotonic([]float64{0, 1}, []float64{1, 0}, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, iso.Predict(0), 1e-12)
	assert.InDelta(t, 0.5, iso.Predict(1), 1e-12)
}

func TestFitIsotonicWeightedPooling(t *testing.T) {
	// Violating pair with 3:1 weights pools to the weighted mean 0.75.
	iso, err := FitIsotonic([]float64{0, 1}, []float64{1, 0}, []float64{3, 1})
	require.NoError(t, err)

	assert.InDelta(t, 0.75, iso.Predict(0), 1e-12)
	assert.InDelta(t, 0.75, iso.Predict(1), 1e-12)
}

func TestFitIsotonicTiesAveraged(t *testing.T) {
	// Duplicate x values merge into their mean before pooling.
	iso, err := FitIsotonic([]float64{1, 1, 2}, []float64{0, 1, 1}, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, iso.Predict(1), 1e-12)
	assert.InDelta(t, 1.0, iso.Predict(2), 1e-12)
}

func TestPredictClampsOutOfRange(t *testing.T) {
	iso, err := FitIsotonic([]float64{0, 1, 2}, []float64{0.2, 0.5, 0.8}, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.2, iso.Predict(-100), 1e-12)
	assert.InDelta(t, 0.8, iso.Predict(100), 1e-12)

	lo, hi := iso.Bounds()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 2.0, hi)
}

func TestPredictInterpolates(t *testing.T) {
	iso, err := FitIsotonic([]float64{0, 2}, []float64{0, 1}, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, iso.Predict(1), 1e-12)
	assert.InDelta(t, 0.25, iso.Predict(0.5), 1e-12)
}

func TestFitIsotonicErrors(t *testing.T) {
	_, err := FitIsotonic(nil, nil, nil)
	assert.Error(t, err)

	_, err = FitIsotonic([]float64{1, 2}, []float64{1}, nil)
	assert.Error(t, err)

	_, err = FitIsotonic([]float64{1, 2}, []float64{1, 0}, []float64{1})
	assert.Error(t, err)
}

func TestFitIsotonicConstant(t *testing.T) {
	iso, err := FitIsotonic([]float64{1, 2, 3}, []float64{1, 1, 1}, nil)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, iso.Predict(0), 1e-12)
	assert.InDelta(t, 1.0, iso.Predict(2.5), 1e-12)
}
