package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	ex "rvcalc/data/extensions"
	m "rvcalc/data/models"
)

const (
	DefaultWorkers = 8
	BatchSize      = 5_000
)

var ErrInvalidInterval = errors.New("invalid sampling interval")

// Block is one (method, interval) section of a variance table
type Block struct {
	Method   m.Method
	Interval int
}

// Blocks lists the table sections in output order, every naive interval first, then every subsampling interval
func Blocks(intervals []int) []Block {
	res := make([]Block, 0, len(m.Methods)*len(intervals))
	for _, method := range m.Methods {
		for _, interval := range intervals {
			res = append(res, Block{Method: method, Interval: interval})
		}
	}
	return res
}

// ValidateIntervals requires at least one interval, all positive, unique and in ascending order
func ValidateIntervals(intervals []int) error {
	if len(intervals) == 0 {
		return fmt.Errorf("no intervals configured: %w", ErrInvalidInterval)
	}

	for i, interval := range intervals {
		if interval < 1 {
			return fmt.Errorf("interval %d must be positive: %w", interval, ErrInvalidInterval)
		}
		if i > 0 && interval <= intervals[i-1] {
			return fmt.Errorf("intervals must be unique and ascending, %d follows %d: %w", interval, intervals[i-1], ErrInvalidInterval)
		}
	}

	return nil
}

// GroupByDateContract collects the cleaned returns of every (date, contract) pair once.
// groups are ordered by date, contracts of the same date keep the order they were first seen in,
// returns keep file order
func GroupByDateContract(records []*m.TickRecord) []*m.DailyContractGroup {
	lookup := make(map[dateContractKey]*m.DailyContractGroup)
	res := make([]*m.DailyContractGroup, 0)

	for _, rec := range records {
		if !rec.LogReturn.Valid {
			continue
		}

		key := keyOf(rec)
		group, ok := lookup[key]
		if !ok {
			group = &m.DailyContractGroup{Date: rec.Date, ContractName: key.contract}
			lookup[key] = group
			res = append(res, group)
		}
		group.Returns = append(group.Returns, rec.LogReturn.Float64)
	}

	slices.SortStableFunc(res, func(a, b *m.DailyContractGroup) int {
		return a.Date.Compare(b.Date)
	})

	return res
}

type job struct {
	start int
	end   int
}

// GetNumberOfJobsAndWorkers splits rows into batches of batchSize, the last batch is truncated to rows.
// end is exclusive. never more workers than jobs
func GetNumberOfJobsAndWorkers(rows int, batchSize int, workers int) ([]job, int) {
	if rows <= 0 || batchSize <= 0 {
		return []job{}, 0
	}

	nJobs := int(math.Ceil(float64(rows) / float64(batchSize)))
	nWorkers := ex.Min(nJobs, max(workers, 1))

	jobs := make([]job, nJobs)
	for i := range nJobs {
		jobs[i] = job{
			start: i * batchSize,
			end:   ex.Min((i+1)*batchSize, rows),
		}
	}

	return jobs, nWorkers
}

// BuildVarianceTable computes every block for every group. Rows are laid out block by block in Blocks order
// and each row is written to its own slot, so the result does not depend on how work is scheduled.
func BuildVarianceTable(ctx context.Context, year int, groups []*m.DailyContractGroup, intervals []int, workers int) (*m.VarianceTable, error) {
	if err := ValidateIntervals(intervals); err != nil {
		return nil, err
	}

	blocks := Blocks(intervals)
	samplers := make([]Sampler, len(blocks))
	for i, b := range blocks {
		sampler, err := SamplerFor(b.Method)
		if err != nil {
			return nil, err
		}
		samplers[i] = sampler
	}

	nGroups := len(groups)
	rows := make([]*m.VarianceRow, len(blocks)*nGroups)
	table := &m.VarianceTable{Year: year, Rows: rows}
	if len(rows) == 0 {
		return table, nil
	}

	jobs, nWorkers := GetNumberOfJobsAndWorkers(len(rows), BatchSize, workers)
	log.Printf("building variance table for %d: %d groups, %d blocks, %d jobs on %d workers", year, nGroups, len(blocks), len(jobs), nWorkers)

	jobsChannel := make(chan job, len(jobs))
	for _, j := range jobs {
		jobsChannel <- j
	}
	close(jobsChannel)

	g, gctx := errgroup.WithContext(ctx)
	for range nWorkers {
		g.Go(func() error {
			for j := range jobsChannel {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				for i := j.start; i < j.end; i++ {
					b := i / nGroups
					rows[i] = ComputeVarianceRow(groups[i%nGroups], blocks[b].Interval, blocks[b].Method, samplers[b])
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	markRollDates(rows, nGroups)
	return table, nil
}

// markRollDates flags a row when the next row of its block belongs to another contract.
// the last row of a block has no successor and is never flagged
func markRollDates(rows []*m.VarianceRow, blockSize int) {
	for i, row := range rows {
		last := (i+1)%blockSize == 0
		row.RollDate = !last && rows[i+1].ContractName != row.ContractName
	}
}
