package calibration

import (
	"fmt"

	"github.com/shopspring/decimal"

	"probcal/internal/models"
)

// foldCalibrator pairs one trained base classifier with one calibration
// map per one-vs-rest sub-problem. For a binary class set a single map
// for the higher class suffices; the lower class is its exact
// complement. Fold records are immutable once fitted.
type foldCalibrator struct {
	model   models.Model
	classes []int
	maps    []Map
}

func newFoldCalibrator(model models.Model, classes []int) *foldCalibrator {
	return &foldCalibrator{
		model:   model,
		classes: classes,
	}
}

// targetClasses lists the classes that get their own calibration map.
func (fc *foldCalibrator) targetClasses() []int {
	if len(fc.classes) == 2 {
		return fc.classes[1:]
	}
	return fc.classes
}

// scores returns one column of raw scores per target class, preferring
// the model's decision function over its probability estimates. Columns
// for classes the fold model never saw are zero.
func (fc *foldCalibrator) scores(X [][]decimal.Decimal) ([][]float64, error) {
	targets := fc.targetClasses()
	modelClasses := fc.model.GetClasses()
	if len(modelClasses) == 0 {
		return nil, fmt.Errorf("%w: base model has no classes", ErrNotFitted)
	}

	classToCol := make(map[int]int, len(modelClasses))
	for idx, class := range modelClasses {
		classToCol[class] = idx
	}

	if scorer, ok := fc.model.(models.DecisionScorer); ok {
		raw := scorer.DecisionFunction(X)
		out := make([][]float64, len(raw))
		for i := range raw {
			out[i] = make([]float64, len(targets))
			for k, class := range targets {
				out[i][k] = marginFor(raw[i], modelClasses, class)
			}
		}
		return out, nil
	}

	proba := fc.model.PredictProba(X)
	out := make([][]float64, len(proba))
	for i := range proba {
		out[i] = make([]float64, len(targets))
		for k, class := range targets {
			if col, ok := classToCol[class]; ok {
				out[i][k] = proba[i][col]
			}
		}
	}
	return out, nil
}

// marginFor picks the decision-function column for class. A two-class
// model emits a single margin for its higher class; the lower class uses
// the negated margin.
func marginFor(row []float64, modelClasses []int, class int) float64 {
	if len(modelClasses) == 2 {
		switch class {
		case modelClasses[1]:
			return row[0]
		case modelClasses[0]:
			return -row[0]
		default:
			return 0
		}
	}
	for idx, c := range modelClasses {
		if c == class {
			return row[idx]
		}
	}
	return 0
}

// fitMaps fits one calibration map per target class on the fold's
// held-out (score, class-indicator) pairs.
func (fc *foldCalibrator) fitMaps(method Method, X [][]decimal.Decimal, y []int, weights []float64) error {
	scores, err := fc.scores(X)
	if err != nil {
		return err
	}

	targets := fc.targetClasses()
	fc.maps = make([]Map, len(targets))

	col := make([]float64, len(scores))
	indicator := make([]float64, len(y))

	for k, class := range targets {
		for i := range scores {
			col[i] = scores[i][k]
		}
		for i, label := range y {
			if label == class {
				indicator[i] = 1
			} else {
				indicator[i] = 0
			}
		}

		m := newMap(method)
		if err := m.Fit(col, indicator, weights); err != nil {
			return fmt.Errorf("calibrating class %d: %w", class, err)
		}
		fc.maps[k] = m
	}

	return nil
}

// proba returns per-class calibrated probabilities, one row per sample.
// Rows are not normalized across classes; the ensemble handles that after
// averaging over folds. Binary output is an exact complement pair.
func (fc *foldCalibrator) proba(X [][]decimal.Decimal) ([][]float64, error) {
	scores, err := fc.scores(X)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, len(scores))
	for i := range scores {
		out[i] = make([]float64, len(fc.classes))
		if len(fc.classes) == 2 {
			p := fc.maps[0].Apply(scores[i][0])
			out[i][1] = p
			out[i][0] = 1 - p
			continue
		}
		for k := range fc.maps {
			out[i][k] = fc.maps[k].Apply(scores[i][k])
		}
	}
	return out, nil
}
