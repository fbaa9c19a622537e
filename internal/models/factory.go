package models

import (
	"fmt"
)

type ModelConfig struct {
	Algorithm    string
	VarSmoothing float64
	LearningRate float64
	Epochs       int
	L2           float64
}

func CreateModel(config ModelConfig) (Model, error) {
	switch config.Algorithm {
	case "bayes":
		if config.VarSmoothing <= 0 {
			config.VarSmoothing = 1e-9
		}
		return NewGaussianNB(config.VarSmoothing), nil

	case "linear":
		if config.LearningRate <= 0 {
			config.LearningRate = 0.1
		}
		if config.Epochs <= 0 {
			config.Epochs = 200
		}
		if config.L2 < 0 {
			config.L2 = 0
		}
		return NewLinearModel(config.LearningRate, config.Epochs, config.L2), nil

	default:
		return nil, fmt.Errorf("unknown algorithm: %s", config.Algorithm)
	}
}

func DefaultConfig(algorithm string) ModelConfig {
	config := ModelConfig{Algorithm: algorithm}

	switch algorithm {
	case "bayes":
		config.VarSmoothing = 1e-9
	case "linear":
		config.LearningRate = 0.1
		config.Epochs = 200
		config.L2 = 1e-4
	}

	return config
}
