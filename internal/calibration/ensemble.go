package calibration

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"probcal/internal/evaluation"
	"probcal/internal/models"
)

type ensembleState int

const (
	stateUnfitted ensembleState = iota
	stateFitting
	stateFitted
)

// Config controls how CalibratedEnsemble fits. Folds is ignored when
// Prefit is set; Workers bounds the fold-fitting pool and defaults to 4.
type Config struct {
	Method  Method
	Folds   int
	Prefit  bool
	Workers int
	Seed    int64
}

func (c Config) validate() error {
	if c.Method != MethodSigmoid && c.Method != MethodIsotonic {
		return fmt.Errorf("%w: unknown method %q", ErrInvalidConfiguration, c.Method)
	}
	if !c.Prefit && c.Folds < 2 {
		return fmt.Errorf("%w: cv folds must be >= 2, got %d", ErrInvalidConfiguration, c.Folds)
	}
	return nil
}

// CalibratedEnsemble fits a base classifier and a calibration map per
// cross-validation fold (or calibrates a prefit classifier on the full
// input), then averages the fold maps at prediction time. A second Fit
// call discards all prior fold records and rebuilds from scratch.
type CalibratedEnsemble struct {
	cfg     Config
	base    models.Model
	classes []int
	folds   []*foldCalibrator
	state   ensembleState
}

// NewCalibratedEnsemble validates the configuration up front; no fit work
// happens until Fit.
func NewCalibratedEnsemble(base models.Model, cfg Config) (*CalibratedEnsemble, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: base model is nil", ErrInvalidConfiguration)
	}
	if cfg.Method == "" {
		cfg.Method = MethodSigmoid
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &CalibratedEnsemble{cfg: cfg, base: base}, nil
}

func (ce *CalibratedEnsemble) IsFitted() bool {
	return ce.state == stateFitted
}

// Classes returns the sorted class set seen at fit time.
func (ce *CalibratedEnsemble) Classes() []int {
	out := make([]int, len(ce.classes))
	copy(out, ce.classes)
	return out
}

// Fit trains and calibrates. weights may be nil; when given they are
// forwarded to weight-aware model fitters and to the calibration maps.
// Any fold error aborts the whole fit and leaves the ensemble unfitted.
func (ce *CalibratedEnsemble) Fit(X [][]decimal.Decimal, y []int, weights []float64) error {
	ce.state = stateFitting
	ce.folds = nil
	ce.classes = nil

	if err := ce.checkInput(X, y, weights); err != nil {
		ce.state = stateUnfitted
		return err
	}

	classes := models.ExtractClasses(y)
	if len(classes) < 2 {
		ce.state = stateUnfitted
		return fmt.Errorf("%w: need at least two classes, got %d", ErrInsufficientData, len(classes))
	}

	logrus.WithFields(logrus.Fields{
		"method":  ce.cfg.Method,
		"classes": len(classes),
		"samples": len(X),
		"prefit":  ce.cfg.Prefit,
	}).Debug("fitting calibrated ensemble")

	var folds []*foldCalibrator
	var err error
	if ce.cfg.Prefit {
		folds, err = ce.fitPrefit(classes, X, y, weights)
	} else {
		folds, err = ce.fitCrossValidated(classes, X, y, weights)
	}
	if err != nil {
		ce.state = stateUnfitted
		return err
	}

	ce.classes = classes
	ce.folds = folds
	ce.state = stateFitted
	return nil
}

func (ce *CalibratedEnsemble) checkInput(X [][]decimal.Decimal, y []int, weights []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("%w: empty fit input", ErrInsufficientData)
	}
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d samples vs %d labels", ErrShapeMismatch, len(X), len(y))
	}
	if weights != nil {
		if len(weights) != len(X) {
			return fmt.Errorf("%w: %d samples vs %d weights", ErrShapeMismatch, len(X), len(weights))
		}
		for i, w := range weights {
			if w < 0 {
				return fmt.Errorf("%w: negative sample weight at index %d", ErrInvalidConfiguration, i)
			}
		}
	}
	return nil
}

// fitPrefit treats the base model as already trained: the full input fits
// only the calibration maps.
func (ce *CalibratedEnsemble) fitPrefit(classes []int, X [][]decimal.Decimal, y []int, weights []float64) ([]*foldCalibrator, error) {
	fc := newFoldCalibrator(ce.base, classes)
	if err := fc.fitMaps(ce.cfg.Method, X, y, weights); err != nil {
		return nil, err
	}
	return []*foldCalibrator{fc}, nil
}

// fitCrossValidated clones and trains a fresh base model per fold and
// fits calibration maps on each fold's held-out scores. Folds are
// independent, so they fan out over a fixed worker pool and fan back in
// through per-fold slots.
func (ce *CalibratedEnsemble) fitCrossValidated(classes []int, X [][]decimal.Decimal, y []int, weights []float64) ([]*foldCalibrator, error) {
	if len(X) < ce.cfg.Folds {
		return nil, fmt.Errorf("%w: %d samples for %d folds", ErrInsufficientData, len(X), ce.cfg.Folds)
	}

	splitter := evaluation.NewStratifiedKFoldSplitter(ce.cfg.Folds, true, ce.cfg.Seed)
	splits, err := splitter.Split(y)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsufficientData, err)
	}

	folds := make([]*foldCalibrator, len(splits))
	errs := make([]error, len(splits))

	workers := ce.cfg.Workers
	if workers > len(splits) {
		workers = len(splits)
	}

	jobs := make(chan int, len(splits))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fold := range jobs {
				folds[fold], errs[fold] = ce.fitFold(classes, splits[fold], X, y, weights)
			}
		}()
	}
	for fold := range splits {
		jobs <- fold
	}
	close(jobs)
	wg.Wait()

	for fold, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("fold %d failed: %w", fold, err)
		}
	}
	return folds, nil
}

func (ce *CalibratedEnsemble) fitFold(classes []int, split evaluation.Split, X [][]decimal.Decimal, y []int, weights []float64) (*foldCalibrator, error) {
	trainX, trainY, trainW := gather(X, y, weights, split.Train)
	testX, testY, testW := gather(X, y, weights, split.Test)

	model := ce.base.Clone()
	if err := fitModel(model, trainX, trainY, trainW); err != nil {
		return nil, err
	}

	fc := newFoldCalibrator(model, classes)
	if err := fc.fitMaps(ce.cfg.Method, testX, testY, testW); err != nil {
		return nil, err
	}
	return fc, nil
}

// fitModel forwards weights to models that accept them; others are fit
// unweighted.
func fitModel(model models.Model, X [][]decimal.Decimal, y []int, weights []float64) error {
	if weights != nil {
		if wf, ok := model.(models.WeightedFitter); ok {
			return wf.FitWeighted(X, y, weights)
		}
	}
	return model.Fit(X, y)
}

func gather(X [][]decimal.Decimal, y []int, weights []float64, indices []int) ([][]decimal.Decimal, []int, []float64) {
	subX := make([][]decimal.Decimal, len(indices))
	subY := make([]int, len(indices))
	var subW []float64
	if weights != nil {
		subW = make([]float64, len(indices))
	}
	for i, idx := range indices {
		subX[i] = X[idx]
		subY[i] = y[idx]
		if weights != nil {
			subW[i] = weights[idx]
		}
	}
	return subX, subY, subW
}

// PredictProba averages each fold's per-class calibrated probabilities
// with equal weight, then resolves rows into a distribution: binary rows
// are exact complement pairs already, multiclass rows are L1-normalized
// with a uniform fallback when a row sums to zero.
func (ce *CalibratedEnsemble) PredictProba(X [][]decimal.Decimal) ([][]float64, error) {
	if ce.state != stateFitted {
		return nil, ErrNotFitted
	}

	nClasses := len(ce.classes)
	mean := make([][]float64, len(X))
	for i := range mean {
		mean[i] = make([]float64, nClasses)
	}

	for _, fold := range ce.folds {
		proba, err := fold.proba(X)
		if err != nil {
			return nil, err
		}
		for i := range proba {
			for k, p := range proba[i] {
				mean[i][k] += p
			}
		}
	}

	nFolds := float64(len(ce.folds))
	for i := range mean {
		for k := range mean[i] {
			mean[i][k] /= nFolds
		}
	}

	if nClasses > 2 {
		for i := range mean {
			sum := 0.0
			for _, p := range mean[i] {
				sum += p
			}
			if sum == 0 {
				uniform := 1 / float64(nClasses)
				for k := range mean[i] {
					mean[i][k] = uniform
				}
				continue
			}
			for k := range mean[i] {
				mean[i][k] /= sum
			}
		}
	}

	return mean, nil
}

// Predict returns the class with the highest calibrated probability,
// breaking ties toward the lowest class in sorted order.
func (ce *CalibratedEnsemble) Predict(X [][]decimal.Decimal) ([]int, error) {
	proba, err := ce.PredictProba(X)
	if err != nil {
		return nil, err
	}

	predictions := make([]int, len(proba))
	for i, row := range proba {
		best := 0
		for k, p := range row {
			if p > row[best] {
				best = k
			}
		}
		predictions[i] = ce.classes[best]
	}
	return predictions, nil
}
