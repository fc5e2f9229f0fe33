package core

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Estimator reduces a return sequence to a single statistic.
// Every estimator is defined for empty input so subsample averages never fail.
type Estimator func(returns []float64) float64

// RealizedVariance is the sum of squared returns, 0 for an empty sequence
func RealizedVariance(returns []float64) float64 {
	return floats.Dot(returns, returns)
}

// BipowerVariation is π/2 times the sum of absolute products of adjacent returns.
// fewer than two returns leaves the sum empty so the result is 0
func BipowerVariation(returns []float64) float64 {
	var sum float64
	for i := 1; i < len(returns); i++ {
		sum += math.Abs(returns[i] * returns[i-1])
	}
	return math.Pi / 2 * sum
}

// Jump is the part of realized variance not explained by bipower variation, floored at zero
func Jump(rv, bv float64) float64 {
	return math.Max(rv-bv, 0)
}
