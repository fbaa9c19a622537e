package calibration

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"probcal/internal/models"
)

// probaOnlyModel reports fixed probabilities and no decision function,
// standing in for a fold model that never saw every ensemble class.
type probaOnlyModel struct {
	models.BaseModel
	proba [][]float64
}

func (m *probaOnlyModel) Fit(X [][]decimal.Decimal, y []int) error { return nil }

func (m *probaOnlyModel) Predict(X [][]decimal.Decimal) []int { return make([]int, len(X)) }

func (m *probaOnlyModel) PredictProba(X [][]decimal.Decimal) [][]float64 {
	return m.proba
}

func (m *probaOnlyModel) Clone() models.Model { return &probaOnlyModel{BaseModel: m.BaseModel} }

func (m *probaOnlyModel) Reset() {}

func TestMarginForTwoClassModel(t *testing.T) {
	row := []float64{1.5}
	modelClasses := []int{0, 2}

	assert.Equal(t, 1.5, marginFor(row, modelClasses, 2), "higher class gets the margin")
	assert.Equal(t, -1.5, marginFor(row, modelClasses, 0), "lower class gets the negated margin")
	assert.Equal(t, 0.0, marginFor(row, modelClasses, 1), "unseen class scores zero")
}

func TestMarginForMulticlassModel(t *testing.T) {
	row := []float64{0.1, 0.2, 0.3}
	modelClasses := []int{0, 1, 2}

	assert.Equal(t, 0.3, marginFor(row, modelClasses, 2))
	assert.Equal(t, 0.1, marginFor(row, modelClasses, 0))
	assert.Equal(t, 0.0, marginFor(row, modelClasses, 9))
}

func TestFoldScoresMissingClassColumnIsZero(t *testing.T) {
	// Ensemble knows classes {0,1,2}; this fold's model only saw {0,2}.
	model := &probaOnlyModel{
		BaseModel: models.BaseModel{Classes: []int{0, 2}},
		proba: [][]float64{
			{0.7, 0.3},
			{0.4, 0.6},
		},
	}
	fc := newFoldCalibrator(model, []int{0, 1, 2})

	X := make([][]decimal.Decimal, 2)
	scores, err := fc.scores(X)
	require.NoError(t, err)

	require.Len(t, scores, 2)
	assert.Equal(t, []float64{0.7, 0, 0.3}, scores[0])
	assert.Equal(t, []float64{0.4, 0, 0.6}, scores[1])
}

func TestFoldScoresUnfittedModel(t *testing.T) {
	fc := newFoldCalibrator(&probaOnlyModel{}, []int{0, 1})
	_, err := fc.scores(make([][]decimal.Decimal, 1))
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestFoldBinaryProbaIsComplement(t *testing.T) {
	model := &probaOnlyModel{
		BaseModel: models.BaseModel{Classes: []int{0, 1}},
		proba: [][]float64{
			{0.9, 0.1},
			{0.2, 0.8},
			{0.5, 0.5},
			{0.3, 0.7},
		},
	}
	fc := newFoldCalibrator(model, []int{0, 1})

	X := make([][]decimal.Decimal, 4)
	y := []int{0, 1, 0, 1}
	require.NoError(t, fc.fitMaps(MethodSigmoid, X, y, nil))

	proba, err := fc.proba(X)
	require.NoError(t, err)
	for i, row := range proba {
		assert.InDelta(t, 1.0, row[0]+row[1], 1e-15, "row %d", i)
	}
}
