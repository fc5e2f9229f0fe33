package core

import (
	"context"

	m "rvcalc/data/models"
)

// TickSource loads the raw records of one year
type TickSource interface {
	Load(ctx context.Context, year int) ([]*m.TickRecord, error)
}

// VarianceSink persists a year's variance table, replacing whatever was stored for that year
type VarianceSink interface {
	WriteVarianceTable(ctx context.Context, table *m.VarianceTable) error
}

// VarianceStore serves stored variance tables to the results api
type VarianceStore interface {
	GetVariances(ctx context.Context, filter m.VarianceFilter) ([]*m.VarianceRow, error)
}

type RunHistory interface {
	InsertCalculationRun(ctx context.Context, year int, intervals []int) (int32, error)
	UpdateCalculationRunAsFailure(ctx context.Context, runId int32, errorMessage string) error
	UpdateCalculationRunAsSuccess(ctx context.Context, runId int32, rowCount int) error
}

type Settings struct {
	Years       []int
	Intervals   []int
	Workers     int // block workers per year
	YearWorkers int // years computed at the same time
}

// ServiceContext holds everything a run needs. Store and RunHistory are optional.
type ServiceContext struct {
	Context    context.Context
	Settings   Settings
	Source     TickSource
	Sinks      []VarianceSink
	Store      VarianceStore
	RunHistory RunHistory
	Cleaner    *Cleaner
}
