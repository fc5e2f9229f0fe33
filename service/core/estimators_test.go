package core

import (
	"math"
	"math/rand/v2"
	"testing"

	ex "rvcalc/data/extensions"
)

const tolerance = 1e-12

func TestRealizedVariance(t *testing.T) {
	ex.AssertInDelta(t, "rv", 0.14, RealizedVariance([]float64{0.1, -0.2, 0.3}), tolerance)
	ex.AssertAreEqual(t, "rv of empty", 0.0, RealizedVariance(nil))
}

func TestBipowerVariation(t *testing.T) {
	ex.AssertInDelta(t, "bv", math.Pi/2*0.08, BipowerVariation([]float64{0.1, -0.2, 0.3}), tolerance)
	ex.AssertAreEqual(t, "bv of empty", 0.0, BipowerVariation(nil))
	ex.AssertAreEqual(t, "bv of one return", 0.0, BipowerVariation([]float64{0.5}))
}

func TestJumpIsFlooredAtZero(t *testing.T) {
	ex.AssertAreEqual(t, "rv below bv", 0.0, Jump(0.1, 0.2))
	ex.AssertAreEqual(t, "rv equal to bv", 0.0, Jump(0.2, 0.2))
	ex.AssertInDelta(t, "rv above bv", 0.2, Jump(0.3, 0.1), tolerance)
}

func TestEstimatorsAreNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for range 200 {
		returns := make([]float64, rng.IntN(50))
		for i := range returns {
			returns[i] = rng.NormFloat64() * 0.01
		}

		rv := RealizedVariance(returns)
		bv := BipowerVariation(returns)
		if rv < 0 || bv < 0 || Jump(rv, bv) < 0 {
			t.Fatalf("negative estimate for %v: rv %v, bv %v", returns, rv, bv)
		}
	}
}
