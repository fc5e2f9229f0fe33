package models

import "time"

type Method string

const (
	Naive       Method = "naive"
	Subsampling Method = "subsampling"
)

// Methods is the order the method blocks appear in a variance table
var Methods = []Method{Naive, Subsampling}

type VarianceRow struct {
	Date         time.Time `db:"date"`
	ContractName string    `db:"contract_name"`
	Interval     int       `db:"sample_interval"`
	Method       Method    `db:"method"`
	RV           float64   `db:"rv"`
	BV           float64   `db:"bv"`
	SSJ          float64   `db:"ssj"`
	RollDate     bool      `db:"roll_date"`
}

type VarianceTable struct {
	Year int
	Rows []*VarianceRow
}

// VarianceFilter narrows a stored variance table, zero values mean no filter
type VarianceFilter struct {
	Year         int
	Method       Method
	Interval     int
	ContractName string
}

// BlockSummary aggregates one (method, interval) block of a variance table
type BlockSummary struct {
	Method    Method
	Interval  int
	Rows      int
	MeanRV    float64
	MeanBV    float64
	MeanSSJ   float64
	JumpShare float64 // share of rows with ssj > 0
}
