package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Model is the base-classifier contract the calibration pipeline consumes.
// PredictProba columns are ordered by the model's sorted class set.
type Model interface {
	Fit(X [][]decimal.Decimal, y []int) error
	Predict(X [][]decimal.Decimal) []int
	PredictProba(X [][]decimal.Decimal) [][]float64
	GetClasses() []int
	GetName() string
	GetParams() map[string]any
	Clone() Model
	Reset()
}

// DecisionScorer is implemented by models that expose raw margin scores.
// Binary models return one column (the positive-class margin); multiclass
// models return one column per class. Calibration prefers these scores
// over probabilities because they are not saturated near 0 and 1.
type DecisionScorer interface {
	DecisionFunction(X [][]decimal.Decimal) [][]float64
}

// WeightedFitter is implemented by models that accept per-sample weights.
type WeightedFitter interface {
	FitWeighted(X [][]decimal.Decimal, y []int, weights []float64) error
}

type BaseModel struct {
	Name    string
	Params  map[string]any
	Classes []int
}

func (bm *BaseModel) GetName() string {
	return bm.Name
}

func (bm *BaseModel) GetParams() map[string]any {
	return bm.Params
}

func (bm *BaseModel) GetClasses() []int {
	return bm.Classes
}

// ExtractClasses returns the distinct labels in y in ascending order.
// Calibration's relabeling invariance depends on this ordering being
// deterministic.
func ExtractClasses(y []int) []int {
	classMap := make(map[int]bool)
	for _, label := range y {
		classMap[label] = true
	}

	classes := make([]int, 0, len(classMap))
	for class := range classMap {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	return classes
}

// ToFloat converts the decimal feature matrix into float64 rows for
// models whose inner loops run on floats.
func ToFloat(X [][]decimal.Decimal) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			f, _ := v.Float64()
			out[i][j] = f
		}
	}
	return out
}
