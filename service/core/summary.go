package core

import (
	"gonum.org/v1/gonum/stat"

	ex "rvcalc/data/extensions"
	m "rvcalc/data/models"
)

// SummarizeVarianceTable aggregates rows per (method, interval) block, blocks come back in the order first seen
func SummarizeVarianceTable(rows []*m.VarianceRow) []m.BlockSummary {
	type values struct {
		rv, bv, ssj []float64
	}

	order := make([]Block, 0)
	lookup := make(map[Block]*values)
	for _, row := range rows {
		b := Block{Method: row.Method, Interval: row.Interval}
		v, ok := lookup[b]
		if !ok {
			v = &values{}
			lookup[b] = v
			order = append(order, b)
		}

		v.rv = append(v.rv, row.RV)
		v.bv = append(v.bv, row.BV)
		v.ssj = append(v.ssj, row.SSJ)
	}

	res := make([]m.BlockSummary, len(order))
	for i, b := range order {
		v := lookup[b]
		jumps := ex.CountWhere(v.ssj, func(ssj float64) bool { return ssj > 0 })
		res[i] = m.BlockSummary{
			Method:    b.Method,
			Interval:  b.Interval,
			Rows:      len(v.rv),
			MeanRV:    stat.Mean(v.rv, nil),
			MeanBV:    stat.Mean(v.bv, nil),
			MeanSSJ:   stat.Mean(v.ssj, nil),
			JumpShare: float64(jumps) / float64(len(v.rv)),
		}
	}

	return res
}
