package data

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type DataValidator struct{}

func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

func (dv *DataValidator) ValidateDataset(X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("dataset is empty")
	}

	if len(X) != len(y) {
		return fmt.Errorf("feature matrix and labels have different lengths: %d vs %d", len(X), len(y))
	}

	nFeatures := len(X[0])
	if nFeatures == 0 {
		return fmt.Errorf("features cannot be empty")
	}

	for i, sample := range X {
		if len(sample) != nFeatures {
			return fmt.Errorf("inconsistent feature count at sample %d: expected %d, got %d", i, nFeatures, len(sample))
		}
	}

	return nil
}

func (dv *DataValidator) ValidateLabels(y []int) error {
	if len(y) == 0 {
		return fmt.Errorf("labels are empty")
	}

	classCount := make(map[int]int)
	for _, label := range y {
		classCount[label]++
	}

	if len(classCount) < 2 {
		return fmt.Errorf("dataset must have at least 2 classes, found %d", len(classCount))
	}

	return nil
}

// ValidateWeights checks that per-sample weights, when present, match the
// sample count and are nonnegative.
func (dv *DataValidator) ValidateWeights(weights []float64, nSamples int) error {
	if weights == nil {
		return nil
	}
	if len(weights) != nSamples {
		return fmt.Errorf("sample weights and samples have different lengths: %d vs %d", len(weights), nSamples)
	}
	for i, w := range weights {
		if w < 0 {
			return fmt.Errorf("negative sample weight at index %d: %f", i, w)
		}
	}
	return nil
}

func (dv *DataValidator) GetDatasetStats(X [][]decimal.Decimal, y []int) map[string]any {
	if len(X) == 0 {
		return map[string]any{}
	}

	stats := make(map[string]any)
	stats["samples"] = len(X)
	stats["features"] = len(X[0])

	classCount := make(map[int]int)
	for _, label := range y {
		classCount[label]++
	}
	stats["classes"] = len(classCount)
	stats["class_distribution"] = classCount

	return stats
}
