package calibration

import (
	"fmt"
)

// CalibrationCurve computes the reliability diagnostic for binary
// predictions: [0,1] is cut into nBins equal-width bins, each sample is
// assigned by its predicted value, and every non-empty bin reports (mean
// true label, mean predicted value), ordered by bin index. Empty bins are
// dropped, not emitted as zeros.
//
// With normalize set, predictions are min-max rescaled into [0,1] first
// (true labels are never rescaled); without it, out-of-range predictions
// are an error.
func CalibrationCurve(yTrue, yProb []float64, nBins int, normalize bool) (probTrue, probPred []float64, err error) {
	if nBins < 1 {
		return nil, nil, fmt.Errorf("%w: n_bins must be >= 1, got %d", ErrInvalidConfiguration, nBins)
	}
	if len(yTrue) == 0 {
		return nil, nil, fmt.Errorf("%w: empty input", ErrInsufficientData)
	}
	if len(yTrue) != len(yProb) {
		return nil, nil, fmt.Errorf("%w: %d labels vs %d predictions", ErrShapeMismatch, len(yTrue), len(yProb))
	}

	for i, label := range yTrue {
		if label != 0 && label != 1 {
			return nil, nil, fmt.Errorf("%w: true label at index %d is %g, want 0 or 1", ErrInvalidConfiguration, i, label)
		}
	}

	pred := yProb
	if normalize {
		pred = minMaxRescale(yProb)
	} else {
		for i, p := range yProb {
			if p < 0 || p > 1 {
				return nil, nil, fmt.Errorf("%w: prediction at index %d is %g, outside [0,1] (use normalize for raw scores)", ErrInvalidConfiguration, i, p)
			}
		}
	}

	binTrueSum := make([]float64, nBins)
	binPredSum := make([]float64, nBins)
	binCount := make([]int, nBins)

	for i, p := range pred {
		bin := int(p * float64(nBins))
		if bin >= nBins {
			bin = nBins - 1
		}
		if bin < 0 {
			bin = 0
		}
		binTrueSum[bin] += yTrue[i]
		binPredSum[bin] += p
		binCount[bin]++
	}

	for bin := 0; bin < nBins; bin++ {
		if binCount[bin] == 0 {
			continue
		}
		n := float64(binCount[bin])
		probTrue = append(probTrue, binTrueSum[bin]/n)
		probPred = append(probPred, binPredSum[bin]/n)
	}

	return probTrue, probPred, nil
}

func minMaxRescale(values []float64) []float64 {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	out := make([]float64, len(values))
	if hi == lo {
		return out
	}
	span := hi - lo
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}
