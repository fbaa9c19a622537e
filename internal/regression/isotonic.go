package regression

import (
	"fmt"
	"sort"
)

// Isotonic holds the result of a monotonic regression fit: a set of
// increasing knot positions with non-decreasing fitted values. Queries
// between knots are linearly interpolated; queries outside the fitted
// range are clamped to the boundary values.
type Isotonic struct {
	X []float64
	Y []float64
}

type pavPoint struct {
	x      float64
	y      float64
	weight float64
}

// FitIsotonic solves the weighted isotonic regression problem over paired
// (x, y) observations using the pool-adjacent-violators algorithm. Ties in
// x are resolved by weighted averaging of y before pooling. A nil weights
// slice means unit weights.
func FitIsotonic(x, y, weights []float64) (*Isotonic, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("isotonic regression requires at least one observation")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("x and y must have the same length: %d vs %d", len(x), len(y))
	}
	if weights != nil && len(weights) != len(x) {
		return nil, fmt.Errorf("weights must match observations: %d vs %d", len(weights), len(x))
	}

	points := make([]pavPoint, len(x))
	for i := range x {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		points[i] = pavPoint{x: x[i], y: y[i], weight: w}
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].x < points[j].x
	})

	merged := mergeTies(points)
	pooled := poolAdjacentViolators(merged)

	iso := &Isotonic{
		X: make([]float64, len(pooled)),
		Y: make([]float64, len(pooled)),
	}
	for i, p := range pooled {
		iso.X[i] = p.x
		iso.Y[i] = p.y
	}
	return iso, nil
}

// mergeTies collapses points sharing the same x into a single point whose
// y is the weighted mean of the group.
func mergeTies(points []pavPoint) []pavPoint {
	merged := make([]pavPoint, 0, len(points))
	for _, p := range points {
		if n := len(merged); n > 0 && merged[n-1].x == p.x {
			prev := &merged[n-1]
			total := prev.weight + p.weight
			if total > 0 {
				prev.y = (prev.y*prev.weight + p.y*p.weight) / total
			}
			prev.weight = total
			continue
		}
		merged = append(merged, p)
	}
	return merged
}

// poolAdjacentViolators enforces monotonicity: whenever a point's value
// drops below its predecessor's, the two blocks are merged into their
// weighted mean, cascading backwards until no violation remains.
func poolAdjacentViolators(points []pavPoint) []pavPoint {
	type block struct {
		minX, maxX float64
		value      float64
		weight     float64
	}

	blocks := make([]block, 0, len(points))
	for _, p := range points {
		blocks = append(blocks, block{minX: p.x, maxX: p.x, value: p.y, weight: p.weight})
		for len(blocks) > 1 {
			last := blocks[len(blocks)-1]
			prev := blocks[len(blocks)-2]
			if last.value >= prev.value {
				break
			}
			total := last.weight + prev.weight
			pooledValue := prev.value
			if total > 0 {
				pooledValue = (prev.value*prev.weight + last.value*last.weight) / total
			}
			blocks = blocks[:len(blocks)-2]
			blocks = append(blocks, block{
				minX:   prev.minX,
				maxX:   last.maxX,
				value:  pooledValue,
				weight: total,
			})
		}
	}

	out := make([]pavPoint, 0, 2*len(blocks))
	for _, b := range blocks {
		out = append(out, pavPoint{x: b.minX, y: b.value, weight: b.weight})
		if b.maxX != b.minX {
			out = append(out, pavPoint{x: b.maxX, y: b.value, weight: 0})
		}
	}
	return out
}

// Predict evaluates the fitted function at x. Out-of-range queries are
// clamped to the nearest boundary value.
func (iso *Isotonic) Predict(x float64) float64 {
	n := len(iso.X)
	if n == 0 {
		return 0
	}
	if x <= iso.X[0] {
		return iso.Y[0]
	}
	if x >= iso.X[n-1] {
		return iso.Y[n-1]
	}

	idx := sort.SearchFloat64s(iso.X, x)
	if idx < n && iso.X[idx] == x {
		return iso.Y[idx]
	}

	x0, x1 := iso.X[idx-1], iso.X[idx]
	y0, y1 := iso.Y[idx-1], iso.Y[idx]
	if x1 == x0 {
		return y1
	}
	frac := (x - x0) / (x1 - x0)
	return y0 + frac*(y1-y0)
}

// Bounds returns the range of x values the regression was fitted on.
func (iso *Isotonic) Bounds() (lo, hi float64) {
	if len(iso.X) == 0 {
		return 0, 0
	}
	return iso.X[0], iso.X[len(iso.X)-1]
}
