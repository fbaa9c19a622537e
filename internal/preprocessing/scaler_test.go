package preprocessing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func featureMatrix(rows [][]float64) [][]decimal.Decimal {
	X := make([][]decimal.Decimal, len(rows))
	for i, row := range rows {
		X[i] = make([]decimal.Decimal, len(row))
		for j, v := range row {
			X[i][j] = decimal.NewFromFloat(v)
		}
	}
	return X
}

func TestScalerMinMax(t *testing.T) {
	X := featureMatrix([][]float64{{0, 10}, {5, 20}, {10, 30}})

	scaler := NewScaler("minmax")
	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	want := [][]float64{{0, 0}, {0.5, 0.5}, {1, 1}}
	for i := range want {
		for j := range want[i] {
			got, _ := scaled[i][j].Float64()
			assert.InDelta(t, want[i][j], got, 1e-9)
		}
	}
}

func TestScalerMinMaxConstantColumn(t *testing.T) {
	X := featureMatrix([][]float64{{7}, {7}, {7}})

	scaler := NewScaler("minmax")
	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	for _, row := range scaled {
		assert.True(t, row[0].IsZero(), "zero-span columns scale to zero")
	}
}

func TestScalerStandard(t *testing.T) {
	X := featureMatrix([][]float64{{1}, {2}, {3}})

	scaler := NewScaler("standard")
	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, row := range scaled {
		sum = sum.Add(row[0])
	}
	meanAfter, _ := sum.Div(decimal.NewFromInt(3)).Float64()
	assert.InDelta(t, 0.0, meanAfter, 1e-9)

	hi, _ := scaled[2][0].Float64()
	lo, _ := scaled[0][0].Float64()
	assert.InDelta(t, -lo, hi, 1e-9, "symmetric inputs scale symmetrically")
}

func TestScalerRawPassthrough(t *testing.T) {
	X := featureMatrix([][]float64{{1.5, -2}, {0, 4}})

	scaler := NewScaler("raw")
	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	for i := range X {
		for j := range X[i] {
			assert.True(t, X[i][j].Equal(scaled[i][j]))
		}
	}
}

func TestScalerErrors(t *testing.T) {
	scaler := NewScaler("minmax")
	_, err := scaler.Transform(featureMatrix([][]float64{{1}}))
	assert.Error(t, err, "transform before fit")

	assert.Error(t, NewScaler("log").Fit(featureMatrix([][]float64{{1}})))
	assert.Error(t, NewScaler("minmax").Fit(nil))
}
