package models

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// GaussianNB is a Gaussian naive Bayes classifier. It only exposes
// probability estimates (no decision function), which exercises the
// predict-proba scoring path of the calibration pipeline.
type GaussianNB struct {
	BaseModel
	ClassLogPriors map[int]float64
	FeatureMeans   map[int][]float64
	FeatureVars    map[int][]float64
	VarSmoothing   float64
}

func NewGaussianNB(varSmoothing float64) *GaussianNB {
	return &GaussianNB{
		VarSmoothing: varSmoothing,
		BaseModel: BaseModel{
			Name: "GaussianNB",
			Params: map[string]any{
				"var_smoothing": varSmoothing,
			},
		},
	}
}

func (nb *GaussianNB) Fit(X [][]decimal.Decimal, y []int) error {
	return nb.FitWeighted(X, y, nil)
}

func (nb *GaussianNB) FitWeighted(X [][]decimal.Decimal, y []int, weights []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("cannot fit on empty dataset")
	}
	if len(X) != len(y) {
		return fmt.Errorf("x and y must have the same length")
	}
	if weights != nil && len(weights) != len(y) {
		return fmt.Errorf("weights and y must have the same length")
	}

	nb.Classes = ExtractClasses(y)
	features := ToFloat(X)
	nFeatures := len(features[0])

	nb.ClassLogPriors = make(map[int]float64)
	nb.FeatureMeans = make(map[int][]float64)
	nb.FeatureVars = make(map[int][]float64)

	totalWeight := 0.0
	for i := range y {
		totalWeight += sampleWeight(weights, i)
	}

	for _, class := range nb.Classes {
		classWeight := 0.0
		for i, label := range y {
			if label == class {
				classWeight += sampleWeight(weights, i)
			}
		}
		if classWeight == 0 {
			return fmt.Errorf("class %d has no weighted samples", class)
		}

		nb.ClassLogPriors[class] = math.Log(classWeight / totalWeight)
		nb.FeatureMeans[class] = make([]float64, nFeatures)
		nb.FeatureVars[class] = make([]float64, nFeatures)

		for j := 0; j < nFeatures; j++ {
			sum := 0.0
			for i, label := range y {
				if label == class {
					sum += sampleWeight(weights, i) * features[i][j]
				}
			}
			mean := sum / classWeight
			nb.FeatureMeans[class][j] = mean

			variance := 0.0
			for i, label := range y {
				if label == class {
					diff := features[i][j] - mean
					variance += sampleWeight(weights, i) * diff * diff
				}
			}
			nb.FeatureVars[class][j] = variance/classWeight + nb.VarSmoothing
		}
	}

	return nil
}

func sampleWeight(weights []float64, i int) float64 {
	if weights == nil {
		return 1
	}
	return weights[i]
}

func (nb *GaussianNB) logGaussianPDF(x, mean, variance float64) float64 {
	if variance <= 0 {
		variance = nb.VarSmoothing
	}
	diff := x - mean
	return -0.5*math.Log(2*math.Pi*variance) - (diff*diff)/(2*variance)
}

func (nb *GaussianNB) jointLogLikelihood(sample []float64) []float64 {
	logProbs := make([]float64, len(nb.Classes))
	for k, class := range nb.Classes {
		logProb := nb.ClassLogPriors[class]
		for j, feature := range sample {
			logProb += nb.logGaussianPDF(feature, nb.FeatureMeans[class][j], nb.FeatureVars[class][j])
		}
		logProbs[k] = logProb
	}
	return logProbs
}

func (nb *GaussianNB) Predict(X [][]decimal.Decimal) []int {
	features := ToFloat(X)
	predictions := make([]int, len(features))

	for i, sample := range features {
		logProbs := nb.jointLogLikelihood(sample)
		best := 0
		for k, lp := range logProbs {
			if lp > logProbs[best] {
				best = k
			}
		}
		predictions[i] = nb.Classes[best]
	}

	return predictions
}

func (nb *GaussianNB) PredictProba(X [][]decimal.Decimal) [][]float64 {
	features := ToFloat(X)
	proba := make([][]float64, len(features))

	for i, sample := range features {
		logProbs := nb.jointLogLikelihood(sample)

		maxLogProb := logProbs[0]
		for _, lp := range logProbs[1:] {
			if lp > maxLogProb {
				maxLogProb = lp
			}
		}

		sumExp := 0.0
		for _, lp := range logProbs {
			sumExp += math.Exp(lp - maxLogProb)
		}

		proba[i] = make([]float64, len(nb.Classes))
		for k, lp := range logProbs {
			proba[i][k] = math.Exp(lp-maxLogProb) / sumExp
		}
	}

	return proba
}

func (nb *GaussianNB) Clone() Model {
	return NewGaussianNB(nb.VarSmoothing)
}

func (nb *GaussianNB) Reset() {
	nb.ClassLogPriors = nil
	nb.FeatureMeans = nil
	nb.FeatureVars = nil
	nb.Classes = nil
}
