package evaluation

import (
	"fmt"
	"math"
)

// BrierScore is the mean squared error between binary outcomes and
// predicted positive-class probabilities. Lower is better.
func BrierScore(yTrue, yProb []float64) (float64, error) {
	if len(yTrue) == 0 {
		return 0, fmt.Errorf("cannot score empty input")
	}
	if len(yTrue) != len(yProb) {
		return 0, fmt.Errorf("labels and probabilities have different lengths: %d vs %d", len(yTrue), len(yProb))
	}

	sum := 0.0
	for i := range yTrue {
		diff := yProb[i] - yTrue[i]
		sum += diff * diff
	}
	return sum / float64(len(yTrue)), nil
}

// LogLoss is the mean negative log-likelihood of the true classes under
// the predicted probability rows. Probabilities are clipped away from 0
// and 1 to keep the loss finite.
func LogLoss(yTrue []int, proba [][]float64, classes []int) (float64, error) {
	if len(yTrue) == 0 {
		return 0, fmt.Errorf("cannot score empty input")
	}
	if len(yTrue) != len(proba) {
		return 0, fmt.Errorf("labels and probabilities have different lengths: %d vs %d", len(yTrue), len(proba))
	}

	classToIdx := make(map[int]int, len(classes))
	for k, class := range classes {
		classToIdx[class] = k
	}

	const eps = 1e-15
	sum := 0.0
	for i, label := range yTrue {
		k, ok := classToIdx[label]
		if !ok {
			return 0, fmt.Errorf("label %d not in class set", label)
		}
		p := proba[i][k]
		if p < eps {
			p = eps
		} else if p > 1-eps {
			p = 1 - eps
		}
		sum -= math.Log(p)
	}
	return sum / float64(len(yTrue)), nil
}

func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0
	}
	correct := 0
	for i, pred := range yPred {
		if pred == yTrue[i] {
			correct++
		}
	}
	return safeDivide(float64(correct), float64(len(yTrue)))
}

// ExpectedCalibrationError summarizes a reliability curve as the mean
// absolute gap between empirical and predicted bin probabilities.
func ExpectedCalibrationError(probTrue, probPred []float64) float64 {
	if len(probTrue) == 0 || len(probTrue) != len(probPred) {
		return 0
	}
	sum := 0.0
	for i := range probTrue {
		sum += math.Abs(probTrue[i] - probPred[i])
	}
	return sum / float64(len(probTrue))
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0
	}
	return result
}
