package calibration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigmoidCalibrationKnownSolution(t *testing.T) {
	// Hand-checked optimum for a tiny three-sample problem.
	scores := []float64{5, -4, 1}
	labels := []float64{1, -1, -1}

	a, b, err := SigmoidCalibration(scores, labels, nil)
	require.NoError(t, err)

	assert.InDelta(t, -0.20261354391187855, a, 1e-3)
	assert.InDelta(t, 0.65236314980010512, b, 1e-3)
}

func TestSigmoidCalibrationZeroOneLabels(t *testing.T) {
	// {0,1} and {-1,1} encodings of the same labels fit the same map.
	scores := []float64{5, -4, 1}

	a1, b1, err := SigmoidCalibration(scores, []float64{1, -1, -1}, nil)
	require.NoError(t, err)
	a2, b2, err := SigmoidCalibration(scores, []float64{1, 0, 0}, nil)
	require.NoError(t, err)

	assert.InDelta(t, a1, a2, 1e-9)
	assert.InDelta(t, b1, b2, 1e-9)
}

func TestSigmoidCalibrationLabelFlipMirrors(t *testing.T) {
	scores := []float64{-3, -1.5, -0.5, 0.2, 1, 2, 3.5, 4}
	labels := []float64{0, 0, 0, 1, 0, 1, 1, 1}
	flipped := make([]float64, len(labels))
	for i, y := range labels {
		flipped[i] = 1 - y
	}

	a, b, err := SigmoidCalibration(scores, labels, nil)
	require.NoError(t, err)
	af, bf, err := SigmoidCalibration(scores, flipped, nil)
	require.NoError(t, err)

	assert.InDelta(t, -a, af, 1e-3)
	assert.InDelta(t, -b, bf, 1e-3)
}

func TestSigmoidCalibrationWeightsMatchDuplication(t *testing.T) {
	scores := []float64{-2, -1, 0.5, 1, 2}
	labels := []float64{0, 0, 1, 0, 1}

	duplicatedScores := make([]float64, 0, 2*len(scores))
	duplicatedLabels := make([]float64, 0, 2*len(labels))
	for i := range scores {
		duplicatedScores = append(duplicatedScores, scores[i], scores[i])
		duplicatedLabels = append(duplicatedLabels, labels[i], labels[i])
	}

	weights := []float64{2, 2, 2, 2, 2}
	aw, bw, err := SigmoidCalibration(scores, labels, weights)
	require.NoError(t, err)
	ad, bd, err := SigmoidCalibration(duplicatedScores, duplicatedLabels, nil)
	require.NoError(t, err)

	assert.InDelta(t, ad, aw, 1e-3)
	assert.InDelta(t, bd, bw, 1e-3)
}

func TestSigmoidCalibrationSingleClass(t *testing.T) {
	// An all-positive fold must not error; the regularized targets keep
	// the optimum finite.
	scores := []float64{0.1, 0.5, 0.9}

	a, b, err := SigmoidCalibration(scores, []float64{1, 1, 1}, nil)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(a) || math.IsInf(a, 0))
	assert.False(t, math.IsNaN(b) || math.IsInf(b, 0))

	sm := &SigmoidMap{A: a, B: b, fitted: true}
	for _, s := range []float64{-10, 0, 0.5, 10} {
		p := sm.Apply(s)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestSigmoidCalibrationInputErrors(t *testing.T) {
	_, _, err := SigmoidCalibration(nil, nil, nil)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, _, err = SigmoidCalibration([]float64{1, 2}, []float64{1}, nil)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, _, err = SigmoidCalibration([]float64{1, 2}, []float64{1, 0}, []float64{1})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestSigmoidMapApply(t *testing.T) {
	sm := &SigmoidMap{}
	err := sm.Fit([]float64{5, -4, 1}, []float64{1, -1, -1}, nil)
	require.NoError(t, err)

	for _, s := range []float64{-4, 1, 5} {
		want := 1 / (1 + math.Exp(sm.A*s+sm.B))
		assert.InDelta(t, want, sm.Apply(s), 1e-12)
	}

	// A < 0, so larger scores mean larger probabilities.
	assert.Greater(t, sm.Apply(5.0), sm.Apply(-4.0))
}

func TestStableLogisticExtremes(t *testing.T) {
	assert.InDelta(t, 0, stableLogistic(1000), 1e-12)
	assert.InDelta(t, 1, stableLogistic(-1000), 1e-12)
	assert.InDelta(t, 0.5, stableLogistic(0), 1e-12)
	assert.False(t, math.IsNaN(stableLogistic(750)))
	assert.False(t, math.IsNaN(stableLogistic(-750)))
}
