package models

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// LinearModel is a logistic-loss linear classifier trained by batch
// gradient descent, one-vs-rest for multiclass. It implements
// DecisionFunction, so the calibration pipeline feeds its raw margins
// (not squashed probabilities) into the calibration maps.
type LinearModel struct {
	BaseModel
	LearningRate float64
	Epochs       int
	L2           float64
	Weights      [][]float64
	Bias         []float64
}

func NewLinearModel(learningRate float64, epochs int, l2 float64) *LinearModel {
	return &LinearModel{
		LearningRate: learningRate,
		Epochs:       epochs,
		L2:           l2,
		BaseModel: BaseModel{
			Name: "LinearModel",
			Params: map[string]any{
				"learning_rate": learningRate,
				"epochs":        epochs,
				"l2":            l2,
			},
		},
	}
}

func (lm *LinearModel) Fit(X [][]decimal.Decimal, y []int) error {
	return lm.FitWeighted(X, y, nil)
}

func (lm *LinearModel) FitWeighted(X [][]decimal.Decimal, y []int, weights []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("cannot fit on empty dataset")
	}
	if len(X) != len(y) {
		return fmt.Errorf("x and y must have the same length")
	}
	if weights != nil && len(weights) != len(y) {
		return fmt.Errorf("weights and y must have the same length")
	}

	lm.Classes = ExtractClasses(y)
	features := ToFloat(X)
	nFeatures := len(features[0])

	// Binary fits a single separator for the higher class; multiclass
	// fits one one-vs-rest separator per class.
	targets := lm.Classes
	if len(lm.Classes) == 2 {
		targets = lm.Classes[1:]
	}

	lm.Weights = make([][]float64, len(targets))
	lm.Bias = make([]float64, len(targets))

	for t, class := range targets {
		indicator := make([]float64, len(y))
		for i, label := range y {
			if label == class {
				indicator[i] = 1
			}
		}
		w, b := lm.trainBinary(features, indicator, weights, nFeatures)
		lm.Weights[t] = w
		lm.Bias[t] = b
	}

	return nil
}

func (lm *LinearModel) trainBinary(features [][]float64, target, weights []float64, nFeatures int) ([]float64, float64) {
	w := make([]float64, nFeatures)
	b := 0.0
	grad := make([]float64, nFeatures)

	totalWeight := 0.0
	for i := range target {
		totalWeight += sampleWeight(weights, i)
	}
	if totalWeight == 0 {
		totalWeight = 1
	}

	for epoch := 0; epoch < lm.Epochs; epoch++ {
		for j := range grad {
			grad[j] = lm.L2 * w[j]
		}
		gradB := 0.0

		for i, row := range features {
			margin := b
			for j, v := range row {
				margin += w[j] * v
			}
			residual := sampleWeight(weights, i) * (stableSigmoid(margin) - target[i])
			for j, v := range row {
				grad[j] += residual * v
			}
			gradB += residual
		}

		step := lm.LearningRate / totalWeight
		for j := range w {
			w[j] -= step * grad[j]
		}
		b -= step * gradB
	}

	return w, b
}

func stableSigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// DecisionFunction returns raw margins: one column for binary problems
// (positive-class margin), one column per class otherwise.
func (lm *LinearModel) DecisionFunction(X [][]decimal.Decimal) [][]float64 {
	features := ToFloat(X)
	scores := make([][]float64, len(features))

	for i, row := range features {
		scores[i] = make([]float64, len(lm.Weights))
		for t, w := range lm.Weights {
			margin := lm.Bias[t]
			for j, v := range row {
				margin += w[j] * v
			}
			scores[i][t] = margin
		}
	}

	return scores
}

func (lm *LinearModel) PredictProba(X [][]decimal.Decimal) [][]float64 {
	scores := lm.DecisionFunction(X)
	proba := make([][]float64, len(scores))

	for i, row := range scores {
		proba[i] = make([]float64, len(lm.Classes))
		if len(lm.Classes) == 2 {
			p := stableSigmoid(row[0])
			proba[i][0] = 1 - p
			proba[i][1] = p
			continue
		}

		sum := 0.0
		for k := range row {
			proba[i][k] = stableSigmoid(row[k])
			sum += proba[i][k]
		}
		if sum == 0 {
			for k := range proba[i] {
				proba[i][k] = 1 / float64(len(proba[i]))
			}
			continue
		}
		for k := range proba[i] {
			proba[i][k] /= sum
		}
	}

	return proba
}

func (lm *LinearModel) Predict(X [][]decimal.Decimal) []int {
	proba := lm.PredictProba(X)
	predictions := make([]int, len(proba))

	for i, row := range proba {
		best := 0
		for k, p := range row {
			if p > row[best] {
				best = k
			}
		}
		predictions[i] = lm.Classes[best]
	}

	return predictions
}

func (lm *LinearModel) Clone() Model {
	return NewLinearModel(lm.LearningRate, lm.Epochs, lm.L2)
}

func (lm *LinearModel) Reset() {
	lm.Weights = nil
	lm.Bias = nil
	lm.Classes = nil
}
