package core

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	m "rvcalc/data/models"
)

// Sampler applies an estimator to a day's returns at the given interval
type Sampler func(returns []float64, interval int, estimator Estimator) float64

// Decimate takes every interval-th return starting at offset: offset, offset+interval, offset+2*interval, ...
// positions are relative to the start of the day, an offset past the end gives an empty series
func Decimate(returns []float64, interval, offset int) []float64 {
	if interval < 1 || offset < 0 || offset >= len(returns) {
		return nil
	}

	res := make([]float64, 0, (len(returns)-offset+interval-1)/interval)
	for i := offset; i < len(returns); i += interval {
		res = append(res, returns[i])
	}
	return res
}

// NaiveApply runs the estimator once on the series decimated from the first return
func NaiveApply(returns []float64, interval int, estimator Estimator) float64 {
	return estimator(Decimate(returns, interval, 0))
}

// SubsampleApply averages the estimator over all interval offset-aligned sub-series.
// sub-series past the end of a short day contribute the estimator's empty value (0)
func SubsampleApply(returns []float64, interval int, estimator Estimator) float64 {
	if interval < 1 {
		return 0
	}

	values := make([]float64, interval)
	for k := range interval {
		values[k] = estimator(Decimate(returns, interval, k))
	}

	return stat.Mean(values, nil)
}

func SamplerFor(method m.Method) (Sampler, error) {
	switch method {
	case m.Naive:
		return NaiveApply, nil
	case m.Subsampling:
		return SubsampleApply, nil
	default:
		return nil, fmt.Errorf("%q is not a recognized sampling method", method)
	}
}

// ComputeVarianceRow estimates rv and bv for one group and derives the jump from them
func ComputeVarianceRow(group *m.DailyContractGroup, interval int, method m.Method, sample Sampler) *m.VarianceRow {
	rv := sample(group.Returns, interval, RealizedVariance)
	bv := sample(group.Returns, interval, BipowerVariation)

	return &m.VarianceRow{
		Date:         group.Date,
		ContractName: group.ContractName,
		Interval:     interval,
		Method:       method,
		RV:           rv,
		BV:           bv,
		SSJ:          Jump(rv, bv),
	}
}
