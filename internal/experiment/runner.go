package experiment

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"probcal/internal/calibration"
	"probcal/internal/data"
	"probcal/internal/evaluation"
	"probcal/internal/models"
	"probcal/internal/preprocessing"
)

// Runner sweeps model x calibration-method x preprocessing combinations
// over one dataset and reports Brier score and log loss before and after
// calibration on a held-out test split.
type Runner struct {
	Config *Config
}

type Config struct {
	Experiment struct {
		Models        []string `yaml:"models"`
		Methods       []string `yaml:"methods"`
		Preprocessing []string `yaml:"preprocessing"`
		Folds         int      `yaml:"folds"`
		Bins          int      `yaml:"bins"`
		Workers       int      `yaml:"workers"`
		Seed          int64    `yaml:"seed"`
		TestSize      float64  `yaml:"test_size"`
	} `yaml:"experiment"`
}

type Result struct {
	Model             string
	Method            string
	Preprocessing     string
	Accuracy          float64
	BrierUncalibrated float64
	BrierCalibrated   float64
	LogLossUncal      float64
	LogLossCal        float64
	CalibrationError  float64
}

func NewRunner(configFile string) (*Runner, error) {
	raw, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(config)
	return &Runner{Config: config}, nil
}

func applyDefaults(config *Config) {
	exp := &config.Experiment
	if len(exp.Models) == 0 {
		exp.Models = []string{"bayes", "linear"}
	}
	if len(exp.Methods) == 0 {
		exp.Methods = []string{"sigmoid", "isotonic"}
	}
	if len(exp.Preprocessing) == 0 {
		exp.Preprocessing = []string{"raw"}
	}
	if exp.Folds < 2 {
		exp.Folds = 5
	}
	if exp.Bins < 1 {
		exp.Bins = 10
	}
	if exp.TestSize <= 0 || exp.TestSize >= 1 {
		exp.TestSize = 0.2
	}
	if exp.Seed == 0 {
		exp.Seed = 42
	}
}

func (r *Runner) Run(dataFile string) ([]Result, error) {
	X, labels, _, err := data.LoadCSV(dataFile)
	if err != nil {
		return nil, err
	}

	encoder := preprocessing.NewLabelEncoder()
	y, err := encoder.FitTransform(labels)
	if err != nil {
		return nil, err
	}

	validator := data.NewDataValidator()
	if err := validator.ValidateDataset(X, y); err != nil {
		return nil, err
	}
	if err := validator.ValidateLabels(y); err != nil {
		return nil, err
	}

	exp := r.Config.Experiment
	trainIdx, testIdx, err := evaluation.HoldoutSplit(y, exp.TestSize, exp.Seed)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, prep := range exp.Preprocessing {
		XPrep, err := r.preprocess(X, prep)
		if err != nil {
			return nil, err
		}

		trainX, trainY := subset(XPrep, y, trainIdx)
		testX, testY := subset(XPrep, y, testIdx)

		for _, modelName := range exp.Models {
			for _, methodName := range exp.Methods {
				logrus.WithFields(logrus.Fields{
					"model":         modelName,
					"method":        methodName,
					"preprocessing": prep,
				}).Info("running calibration experiment")

				result, err := r.runOne(modelName, methodName, prep, trainX, trainY, testX, testY)
				if err != nil {
					return nil, fmt.Errorf("experiment %s/%s/%s: %w", modelName, methodName, prep, err)
				}
				results = append(results, result)
			}
		}
	}

	return results, nil
}

func (r *Runner) preprocess(X [][]decimal.Decimal, method string) ([][]decimal.Decimal, error) {
	if method == "raw" || method == "none" {
		return X, nil
	}
	scaler := preprocessing.NewScaler(method)
	return scaler.FitTransform(X)
}

func (r *Runner) runOne(modelName, methodName, prep string, trainX [][]decimal.Decimal, trainY []int, testX [][]decimal.Decimal, testY []int) (Result, error) {
	exp := r.Config.Experiment

	base, err := models.CreateModel(models.DefaultConfig(modelName))
	if err != nil {
		return Result{}, err
	}
	if err := base.Fit(trainX, trainY); err != nil {
		return Result{}, err
	}
	classes := base.GetClasses()
	rawProba := base.PredictProba(testX)

	method, err := calibration.ParseMethod(methodName)
	if err != nil {
		return Result{}, err
	}

	ensemble, err := calibration.NewCalibratedEnsemble(base.Clone(), calibration.Config{
		Method:  method,
		Folds:   exp.Folds,
		Workers: exp.Workers,
		Seed:    exp.Seed,
	})
	if err != nil {
		return Result{}, err
	}
	if err := ensemble.Fit(trainX, trainY, nil); err != nil {
		return Result{}, err
	}

	calProba, err := ensemble.PredictProba(testX)
	if err != nil {
		return Result{}, err
	}
	predictions, err := ensemble.Predict(testX)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Model:         modelName,
		Method:        methodName,
		Preprocessing: prep,
		Accuracy:      evaluation.Accuracy(testY, predictions),
	}

	result.BrierUncalibrated = multiclassBrier(testY, rawProba, classes)
	result.BrierCalibrated = multiclassBrier(testY, calProba, classes)

	if loss, err := evaluation.LogLoss(testY, rawProba, classes); err == nil {
		result.LogLossUncal = loss
	}
	if loss, err := evaluation.LogLoss(testY, calProba, classes); err == nil {
		result.LogLossCal = loss
	}

	if len(classes) == 2 {
		yTrue := make([]float64, len(testY))
		yProb := make([]float64, len(testY))
		for i, label := range testY {
			if label == classes[1] {
				yTrue[i] = 1
			}
			yProb[i] = calProba[i][1]
		}
		probTrue, probPred, err := calibration.CalibrationCurve(yTrue, yProb, exp.Bins, false)
		if err == nil {
			result.CalibrationError = evaluation.ExpectedCalibrationError(probTrue, probPred)
		}
	}

	return result, nil
}

// multiclassBrier averages the one-vs-rest Brier score over classes;
// for a binary problem this reduces to the usual positive-class score.
func multiclassBrier(yTrue []int, proba [][]float64, classes []int) float64 {
	if len(classes) == 0 || len(yTrue) == 0 {
		return 0
	}

	targets := classes
	if len(classes) == 2 {
		targets = classes[1:]
	}

	total := 0.0
	counted := 0
	for k, class := range targets {
		col := k
		if len(classes) == 2 {
			col = 1
		}
		indicator := make([]float64, len(yTrue))
		predicted := make([]float64, len(yTrue))
		for i, label := range yTrue {
			if label == class {
				indicator[i] = 1
			}
			predicted[i] = proba[i][col]
		}
		score, err := evaluation.BrierScore(indicator, predicted)
		if err != nil {
			continue
		}
		total += score
		counted++
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

func subset(X [][]decimal.Decimal, y []int, indices []int) ([][]decimal.Decimal, []int) {
	subX := make([][]decimal.Decimal, len(indices))
	subY := make([]int, len(indices))
	for i, idx := range indices {
		subX[i] = X[idx]
		subY[i] = y[idx]
	}
	return subX, subY
}

func (r *Runner) ExportResults(results []Result, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{
		"Model", "Method", "Preprocessing", "Accuracy",
		"BrierUncalibrated", "BrierCalibrated",
		"LogLossUncalibrated", "LogLossCalibrated", "CalibrationError",
	})

	for _, result := range results {
		writer.Write([]string{
			result.Model,
			result.Method,
			result.Preprocessing,
			fmt.Sprintf("%.4f", result.Accuracy),
			fmt.Sprintf("%.4f", result.BrierUncalibrated),
			fmt.Sprintf("%.4f", result.BrierCalibrated),
			fmt.Sprintf("%.4f", result.LogLossUncal),
			fmt.Sprintf("%.4f", result.LogLossCal),
			fmt.Sprintf("%.4f", result.CalibrationError),
		})
	}

	return nil
}
