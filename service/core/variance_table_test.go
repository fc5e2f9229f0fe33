package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ex "rvcalc/data/extensions"
	m "rvcalc/data/models"
)

func TestJobsAndWorkersLogicIsCorrect(t *testing.T) {
	jobs, nWorkers := GetNumberOfJobsAndWorkers(10_000, 1_000, 4)
	ex.AssertAreEqual(t, "jobs", 10, len(jobs))
	ex.AssertAreEqual(t, "workers", 4, nWorkers)
	for i := 1; i < len(jobs); i++ {
		ex.AssertAreEqual(t, "contiguous jobs", jobs[i-1].end, jobs[i].start)
	}

	// last job is truncated to 500 rows
	jobs, nWorkers = GetNumberOfJobsAndWorkers(3_500, 1_000, 4)
	ex.AssertAreEqual(t, "jobs", 4, len(jobs))
	ex.AssertAreEqual(t, "workers", 4, nWorkers)
	ex.AssertAreEqual(t, "last job start", 3_000, jobs[3].start)
	ex.AssertAreEqual(t, "last job end", 3_500, jobs[3].end)

	jobs, nWorkers = GetNumberOfJobsAndWorkers(10, 1_000, 4)
	ex.AssertAreEqual(t, "jobs", 1, len(jobs))
	ex.AssertAreEqual(t, "workers", 1, nWorkers)
	ex.AssertAreEqual(t, "first job start", 0, jobs[0].start)
	ex.AssertAreEqual(t, "first job end", 10, jobs[0].end)

	jobs, nWorkers = GetNumberOfJobsAndWorkers(0, 1_000, 4)
	ex.AssertAreEqual(t, "no jobs", 0, len(jobs))
	ex.AssertAreEqual(t, "no workers", 0, nWorkers)
}

func TestValidateIntervals(t *testing.T) {
	assert.NoError(t, ValidateIntervals([]int{1, 2, 5, 90}))

	for _, intervals := range [][]int{nil, {0}, {-1, 2}, {2, 1}, {1, 1}} {
		err := ValidateIntervals(intervals)
		assert.True(t, errors.Is(err, ErrInvalidInterval), "intervals %v", intervals)
	}
}

func TestBlocksAreNaiveThenSubsampling(t *testing.T) {
	blocks := Blocks([]int{1, 5})
	assert.Equal(t, []Block{
		{Method: m.Naive, Interval: 1},
		{Method: m.Naive, Interval: 5},
		{Method: m.Subsampling, Interval: 1},
		{Method: m.Subsampling, Interval: 5},
	}, blocks)
}

func TestGroupByDateContract(t *testing.T) {
	records := concat(
		ticks(day2, "B", 1, 0.05),
		ticks(day1, "Z", 1, 0.01, 0.02),
		ticks(day1, "A", 1, 0.03),
		[]*m.TickRecord{withoutReturn(tick(day1, 9, "A", 1, 0))},
		[]*m.TickRecord{tick(day1, 10, "Z", 1, 0.04)},
	)

	groups := GroupByDateContract(records)

	require.Len(t, groups, 3)
	assert.Equal(t, "Z", groups[0].ContractName)
	assert.Equal(t, []float64{0.01, 0.02, 0.04}, groups[0].Returns)
	assert.Equal(t, "A", groups[1].ContractName)
	assert.Equal(t, []float64{0.03}, groups[1].Returns)
	assert.Equal(t, day2, groups[2].Date)
}

// two days after cleaning: A on day1, B on day2 (A is dropped on the roll date)
func endToEndRecords() []*m.TickRecord {
	return concat(
		[]*m.TickRecord{withoutReturn(tick(day1, 0, "A", 10, 0))},
		ticksFrom(day1, 1, "A", 10, 0.01, -0.02, 0.03, 0.01),
		[]*m.TickRecord{withoutReturn(tick(day2, 0, "A", 1, 0))},
		ticksFrom(day2, 1, "A", 1, 0.05, 0.05),
		[]*m.TickRecord{withoutReturn(tick(day2, 0, "B", 10, 0))},
		ticksFrom(day2, 1, "B", 10, 0.02, 0.01, -0.01),
		[]*m.TickRecord{withoutContract(tick(day2, 5, "B", 10, 0.5))},
	)
}

func ticksFrom(date time.Time, start int, contract string, trades int64, returns ...float64) []*m.TickRecord {
	res := make([]*m.TickRecord, len(returns))
	for i, r := range returns {
		res[i] = tick(date, start+i, contract, trades, r)
	}
	return res
}

func TestBuildVarianceTableEndToEnd(t *testing.T) {
	cleaned, _, err := NewCleaner(nil).Clean(endToEndRecords())
	require.NoError(t, err)

	table, err := BuildVarianceTable(context.Background(), 2018, GroupByDateContract(cleaned), []int{1, 2}, 4)
	require.NoError(t, err)
	require.Len(t, table.Rows, 8)

	h := math.Pi / 2
	expected := []struct {
		date     int
		contract string
		interval int
		method   m.Method
		rv, bv   float64
		rollDate bool
	}{
		{1, "A", 1, m.Naive, 15e-4, h * 11e-4, true},
		{2, "B", 1, m.Naive, 6e-4, h * 3e-4, false},
		{1, "A", 2, m.Naive, 10e-4, h * 3e-4, true},
		{2, "B", 2, m.Naive, 5e-4, h * 2e-4, false},
		{1, "A", 1, m.Subsampling, 15e-4, h * 11e-4, true},
		{2, "B", 1, m.Subsampling, 6e-4, h * 3e-4, false},
		{1, "A", 2, m.Subsampling, 7.5e-4, h * 2.5e-4, true},
		{2, "B", 2, m.Subsampling, 3e-4, h * 1e-4, false},
	}

	for i, e := range expected {
		row := table.Rows[i]
		name := fmt.Sprintf("row %d", i)

		date := day1
		if e.date == 2 {
			date = day2
		}
		ex.AssertAreEqual(t, name+" date", date, row.Date)
		ex.AssertAreEqual(t, name+" contract", e.contract, row.ContractName)
		ex.AssertAreEqual(t, name+" interval", e.interval, row.Interval)
		ex.AssertAreEqual(t, name+" method", e.method, row.Method)
		ex.AssertInDelta(t, name+" rv", e.rv, row.RV, 1e-9)
		ex.AssertInDelta(t, name+" bv", e.bv, row.BV, 1e-9)
		ex.AssertInDelta(t, name+" ssj", math.Max(e.rv-e.bv, 0), row.SSJ, 1e-9)
		ex.AssertAreEqual(t, name+" roll date", e.rollDate, row.RollDate)
	}
}

func TestBuildVarianceTableIsDeterministic(t *testing.T) {
	groups := randomGroups(3_000)
	intervals := []int{1, 2, 5, 10}

	// 12_000 rows span several jobs
	first, err := BuildVarianceTable(context.Background(), 2007, groups, intervals, 8)
	require.NoError(t, err)
	second, err := BuildVarianceTable(context.Background(), 2007, groups, intervals, 8)
	require.NoError(t, err)
	single, err := BuildVarianceTable(context.Background(), 2007, groups, intervals, 1)
	require.NoError(t, err)

	require.Len(t, first.Rows, len(groups)*len(intervals)*len(m.Methods))
	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, first.Rows, single.Rows)
}

func TestBuildVarianceTableRejectsBadIntervals(t *testing.T) {
	_, err := BuildVarianceTable(context.Background(), 2007, randomGroups(2), []int{5, 1}, 1)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestBuildVarianceTableStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildVarianceTable(ctx, 2007, randomGroups(10), []int{1}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildVarianceTableWithoutGroups(t *testing.T) {
	table, err := BuildVarianceTable(context.Background(), 2007, nil, []int{1}, 2)
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
	assert.Equal(t, 2007, table.Year)
}

func randomGroups(n int) []*m.DailyContractGroup {
	rng := rand.New(rand.NewPCG(1, 2))
	contracts := []string{"FESX H7", "FESX M7"}

	groups := make([]*m.DailyContractGroup, n)
	for i := range n {
		returns := make([]float64, 10+rng.IntN(40))
		for j := range returns {
			returns[j] = rng.NormFloat64() * 0.001
		}
		groups[i] = &m.DailyContractGroup{
			Date:         day1.AddDate(0, 0, i),
			ContractName: contracts[(i/20)%2],
			Returns:      returns,
		}
	}
	return groups
}
