package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"probcal/internal/calibration"
	"probcal/internal/data"
	"probcal/internal/evaluation"
	"probcal/internal/experiment"
	"probcal/internal/models"
	"probcal/internal/preprocessing"
)

func main() {
	dataFile := flag.String("data", "", "Path to training data CSV file (label in the last column)")
	algorithm := flag.String("model", "bayes", "Base model (bayes|linear)")
	method := flag.String("method", "sigmoid", "Calibration method (sigmoid|isotonic)")
	cvFolds := flag.Int("cv", 5, "Number of cross-validation folds")
	bins := flag.Int("bins", 10, "Number of reliability-curve bins")
	workers := flag.Int("workers", 4, "Fold-fitting worker pool size")
	seed := flag.Int64("seed", 42, "Random seed for splits")
	testSize := flag.Float64("test-size", 0.2, "Held-out test fraction (0.0-1.0)")
	preprocess := flag.String("preprocess", "raw", "Preprocessing method (raw|normalized|standardized)")
	runExp := flag.Bool("experiment", false, "Run full experiment with config")
	configFile := flag.String("config", "config/experiment.yaml", "Path to experiment configuration file")
	outputFile := flag.String("output", "", "CSV file for experiment results")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if *dataFile == "" {
		fmt.Println("Usage:")
		fmt.Println("  Calibrate one model:  calibrate -data data/train.csv -model bayes -method isotonic")
		fmt.Println("  Full experiment:      calibrate -experiment -config config/experiment.yaml -data data/train.csv")
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *runExp {
		runExperiment(*configFile, *dataFile, *outputFile)
		return
	}

	runSingle(*dataFile, *algorithm, *method, *preprocess, *cvFolds, *bins, *workers, *seed, *testSize)
}

func runExperiment(configFile, dataFile, outputFile string) {
	runner, err := experiment.NewRunner(configFile)
	if err != nil {
		log.Fatalf("Failed to load experiment config: %v", err)
	}

	results, err := runner.Run(dataFile)
	if err != nil {
		log.Fatalf("Experiment failed: %v", err)
	}

	printExperimentResults(results)

	if outputFile == "" {
		outputFile = fmt.Sprintf("calibration_results_%s.csv", time.Now().Format("20060102_150405"))
	}
	if err := runner.ExportResults(results, outputFile); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}
	fmt.Printf("\nResults written to %s\n", outputFile)
}

func printExperimentResults(results []experiment.Result) {
	bold := color.New(color.Bold)
	bold.Printf("%-8s %-9s %-13s %9s %12s %12s %10s\n",
		"Model", "Method", "Preprocess", "Accuracy", "Brier(raw)", "Brier(cal)", "ECE")

	for _, r := range results {
		line := fmt.Sprintf("%-8s %-9s %-13s %9.4f %12.4f %12.4f %10.4f",
			r.Model, r.Method, r.Preprocessing, r.Accuracy,
			r.BrierUncalibrated, r.BrierCalibrated, r.CalibrationError)
		if r.BrierCalibrated <= r.BrierUncalibrated {
			color.Green(line)
		} else {
			color.Yellow(line)
		}
	}
}

func runSingle(dataFile, algorithm, methodName, preprocess string, cvFolds, bins, workers int, seed int64, testSize float64) {
	X, labels, headers, err := data.LoadCSV(dataFile)
	if err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}

	encoder := preprocessing.NewLabelEncoder()
	y, err := encoder.FitTransform(labels)
	if err != nil {
		log.Fatalf("Failed to encode labels: %v", err)
	}

	validator := data.NewDataValidator()
	if err := validator.ValidateDataset(X, y); err != nil {
		log.Fatalf("Invalid dataset: %v", err)
	}
	if err := validator.ValidateLabels(y); err != nil {
		log.Fatalf("Invalid labels: %v", err)
	}

	fmt.Printf("Loaded %d samples, %d features, %d classes\n",
		len(X), len(headers)-1, encoder.NumClasses())

	if preprocess != "raw" && preprocess != "none" {
		scaler := preprocessing.NewScaler(preprocess)
		X, err = scaler.FitTransform(X)
		if err != nil {
			log.Fatalf("Preprocessing failed: %v", err)
		}
	}

	method, err := calibration.ParseMethod(methodName)
	if err != nil {
		log.Fatalf("%v", err)
	}

	base, err := models.CreateModel(models.DefaultConfig(algorithm))
	if err != nil {
		log.Fatalf("%v", err)
	}

	trainIdx, testIdx, err := evaluation.HoldoutSplit(y, testSize, seed)
	if err != nil {
		log.Fatalf("Failed to split data: %v", err)
	}
	trainX, trainY := subset(X, y, trainIdx)
	testX, testY := subset(X, y, testIdx)

	start := time.Now()
	if err := base.Fit(trainX, trainY); err != nil {
		log.Fatalf("Base model training failed: %v", err)
	}
	rawProba := base.PredictProba(testX)
	classes := base.GetClasses()

	ensemble, err := calibration.NewCalibratedEnsemble(base.Clone(), calibration.Config{
		Method:  method,
		Folds:   cvFolds,
		Workers: workers,
		Seed:    seed,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := ensemble.Fit(trainX, trainY, nil); err != nil {
		log.Fatalf("Calibration failed: %v", err)
	}
	elapsed := time.Since(start)

	calProba, err := ensemble.PredictProba(testX)
	if err != nil {
		log.Fatalf("Prediction failed: %v", err)
	}
	predictions, err := ensemble.Predict(testX)
	if err != nil {
		log.Fatalf("Prediction failed: %v", err)
	}

	fmt.Printf("Fitted %s + %s calibration (%d folds) in %v\n",
		base.GetName(), method, cvFolds, elapsed.Round(time.Millisecond))
	fmt.Printf("Test accuracy: %.4f\n", evaluation.Accuracy(testY, predictions))

	if len(classes) == 2 {
		reportBinary(testY, rawProba, calProba, classes, bins)
	} else {
		reportMulticlass(testY, rawProba, calProba, classes)
	}
}

func reportBinary(testY []int, rawProba, calProba [][]float64, classes []int, bins int) {
	yTrue := make([]float64, len(testY))
	rawPos := make([]float64, len(testY))
	calPos := make([]float64, len(testY))
	for i, label := range testY {
		if label == classes[1] {
			yTrue[i] = 1
		}
		rawPos[i] = rawProba[i][1]
		calPos[i] = calProba[i][1]
	}

	brierRaw, _ := evaluation.BrierScore(yTrue, rawPos)
	brierCal, _ := evaluation.BrierScore(yTrue, calPos)

	fmt.Printf("Brier score: %.4f (uncalibrated) -> ", brierRaw)
	if brierCal <= brierRaw {
		color.Green("%.4f (calibrated)", brierCal)
	} else {
		color.Yellow("%.4f (calibrated)", brierCal)
	}

	probTrue, probPred, err := calibration.CalibrationCurve(yTrue, calPos, bins, false)
	if err != nil {
		log.Fatalf("Reliability curve failed: %v", err)
	}

	fmt.Printf("\nReliability curve (%d bins, ECE %.4f):\n",
		bins, evaluation.ExpectedCalibrationError(probTrue, probPred))
	fmt.Printf("%12s %12s\n", "predicted", "empirical")
	for i := range probTrue {
		fmt.Printf("%12.4f %12.4f\n", probPred[i], probTrue[i])
	}
}

func reportMulticlass(testY []int, rawProba, calProba [][]float64, classes []int) {
	lossRaw, _ := evaluation.LogLoss(testY, rawProba, classes)
	lossCal, _ := evaluation.LogLoss(testY, calProba, classes)

	fmt.Printf("Log loss: %.4f (uncalibrated) -> ", lossRaw)
	if lossCal <= lossRaw {
		color.Green("%.4f (calibrated)", lossCal)
	} else {
		color.Yellow("%.4f (calibrated)", lossCal)
	}
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
