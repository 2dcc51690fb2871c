package calculator

import "math"

// GeometricMean returns exp(mean(ln p)) over the positive, finite prices.
// ok is false when no usable price remains.
func GeometricMean(prices []float64) (gma float64, ok bool) {
	sum := 0.0
	n := 0
	for _, p := range prices {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		sum += math.Log(p)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return math.Exp(sum / float64(n)), true
}
