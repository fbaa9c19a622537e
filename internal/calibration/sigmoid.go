package calibration

import (
	"math"

	"github.com/sirupsen/logrus"
)

// SigmoidMap is Platt's two-parameter logistic calibration map:
// p(score) = 1 / (1 + exp(A*score + B)).
type SigmoidMap struct {
	A      float64
	B      float64
	fitted bool
}

func (sm *SigmoidMap) Fit(scores, labels, weights []float64) error {
	a, b, err := SigmoidCalibration(scores, labels, weights)
	if err != nil {
		return err
	}
	sm.A = a
	sm.B = b
	sm.fitted = true
	return nil
}

func (sm *SigmoidMap) Apply(score float64) float64 {
	return stableLogistic(sm.A*score + sm.B)
}

// stableLogistic evaluates 1/(1+exp(z)) without overflow for large |z|.
func stableLogistic(z float64) float64 {
	if z >= 0 {
		e := math.Exp(-z)
		return e / (1 + e)
	}
	return 1 / (1 + math.Exp(z))
}

const (
	sigmoidMaxIter = 100
	sigmoidMinStep = 1e-10
	sigmoidSigma   = 1e-12
	sigmoidGradTol = 1e-5
	sigmoidArmijo  = 1e-4
)

// SigmoidCalibration fits Platt's (A, B) by minimizing the cross-entropy
// between regularized targets and the logistic of A*score+B, using
// Newton's method with a backtracking line search. Labels greater than
// zero count as positive, so {0,1} and {-1,1} encodings both work. The
// iteration count is capped; on non-convergence the best parameters found
// so far are returned, never an error.
//
// The regularized targets (n+ +1)/(n+ +2) and 1/(n- +2) keep the fit away
// from the 0/1 boundary and stay finite when one class is absent.
func SigmoidCalibration(scores, labels, weights []float64) (a, b float64, err error) {
	if err := checkFitInput(scores, labels, weights); err != nil {
		return 0, 0, err
	}

	n := len(scores)
	prior0, prior1 := 0.0, 0.0
	for i, label := range labels {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		if label > 0 {
			prior1 += w
		} else {
			prior0 += w
		}
	}

	hiTarget := (prior1 + 1) / (prior1 + 2)
	loTarget := 1 / (prior0 + 2)

	targets := make([]float64, n)
	for i, label := range labels {
		if label > 0 {
			targets[i] = hiTarget
		} else {
			targets[i] = loTarget
		}
	}

	sampleW := func(i int) float64 {
		if weights == nil {
			return 1
		}
		return weights[i]
	}

	// Cross-entropy of the targets against sigma(A*f+B), written so the
	// exp argument is always non-positive.
	objective := func(a, b float64) float64 {
		obj := 0.0
		for i, f := range scores {
			fApB := f*a + b
			if fApB >= 0 {
				obj += sampleW(i) * (targets[i]*fApB + math.Log1p(math.Exp(-fApB)))
			} else {
				obj += sampleW(i) * ((targets[i]-1)*fApB + math.Log1p(math.Exp(fApB)))
			}
		}
		return obj
	}

	a = 0
	b = math.Log((prior0 + 1) / (prior1 + 1))
	fval := objective(a, b)

	iter := 0
	for ; iter < sigmoidMaxIter; iter++ {
		// Gradient and Hessian, ridge-stabilized.
		h11, h22 := sigmoidSigma, sigmoidSigma
		h21, g1, g2 := 0.0, 0.0, 0.0
		for i, f := range scores {
			fApB := f*a + b
			var p, q float64
			if fApB >= 0 {
				p = math.Exp(-fApB) / (1 + math.Exp(-fApB))
				q = 1 / (1 + math.Exp(-fApB))
			} else {
				p = 1 / (1 + math.Exp(fApB))
				q = math.Exp(fApB) / (1 + math.Exp(fApB))
			}
			w := sampleW(i)
			d2 := w * p * q
			h11 += f * f * d2
			h22 += d2
			h21 += f * d2
			d1 := w * (targets[i] - p)
			g1 += f * d1
			g2 += d1
		}

		if math.Abs(g1) < sigmoidGradTol && math.Abs(g2) < sigmoidGradTol {
			break
		}

		// Modified Newton direction.
		det := h11*h22 - h21*h21
		dA := -(h22*g1 - h21*g2) / det
		dB := -(-h21*g1 + h11*g2) / det
		gd := g1*dA + g2*dB

		stepSize := 1.0
		for stepSize >= sigmoidMinStep {
			newA := a + stepSize*dA
			newB := b + stepSize*dB
			newf := objective(newA, newB)
			if newf < fval+sigmoidArmijo*stepSize*gd {
				a, b, fval = newA, newB, newf
				break
			}
			stepSize /= 2
		}
		if stepSize < sigmoidMinStep {
			// Line search failed on a flat surface; keep the best
			// iterate found so far.
			break
		}
	}

	if iter >= sigmoidMaxIter {
		logrus.WithFields(logrus.Fields{
			"samples": n,
			"a":       a,
			"b":       b,
		}).Warn("sigmoid calibration hit the iteration cap, returning best iterate")
	}

	return a, b, nil
}
