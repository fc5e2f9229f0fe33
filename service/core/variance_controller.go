package core

import (
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	m "rvcalc/data/models"
)

type YearResult struct {
	Year     int
	Quality  QualityReport
	Cleaning CleaningReport
	Rows     int
	Summary  []m.BlockSummary
	Elapsed  time.Duration
	Err      error
}

// RunYears runs every year independently, a failed year does not stop the others.
// results follow the order of years, failures are joined into the returned error
func (sc *ServiceContext) RunYears(years []int) ([]*YearResult, error) {
	results := make([]*YearResult, len(years))

	var g errgroup.Group
	g.SetLimit(max(sc.Settings.YearWorkers, 1))

	for i, year := range years {
		g.Go(func() error {
			res, err := sc.RunYear(year)
			if err != nil {
				res.Err = err
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("year %d: %w", res.Year, res.Err))
		}
	}

	return results, errors.Join(errs...)
}

// RunYear loads, inspects, cleans and groups one year, builds its variance table and writes it to every sink.
// the returned result is never nil, it carries whatever stages completed
func (sc *ServiceContext) RunYear(year int) (*YearResult, error) {
	start := time.Now()
	res := &YearResult{Year: year}

	runId, hasRun := sc.startCalculationRun(year)

	err := sc.runYear(year, res, start)
	res.Elapsed = time.Since(start)

	if err != nil {
		log.Printf("Error calculating variances for %d: %v", year, err)
		if hasRun {
			if histErr := sc.RunHistory.UpdateCalculationRunAsFailure(sc.Context, runId, err.Error()); histErr != nil {
				log.Printf("Error marking calculation run %d as failure: %v", runId, histErr)
			}
		}
		return res, err
	}

	if hasRun {
		if err := sc.RunHistory.UpdateCalculationRunAsSuccess(sc.Context, runId, res.Rows); err != nil {
			log.Printf("Error marking calculation run %d as success: %v", runId, err)
		}
	}

	log.Printf("Year %d completed, %d rows (time: %v)", year, res.Rows, res.Elapsed)
	return res, nil
}

func (sc *ServiceContext) runYear(year int, res *YearResult, start time.Time) error {
	if sc.Source == nil {
		return errors.New("no tick source configured")
	}

	log.Printf("Loading tick records for %d (time: %v)", year, time.Since(start))
	records, err := sc.Source.Load(sc.Context, year)
	if err != nil {
		return fmt.Errorf("error loading tick records: %w", err)
	}

	res.Quality = InspectRecords(records)
	logQualityReport(year, res.Quality)

	log.Printf("Cleaning %d records for %d (time: %v)", len(records), year, time.Since(start))
	cleaner := sc.Cleaner
	if cleaner == nil {
		cleaner = NewCleaner(nil)
	}
	cleaned, report, err := cleaner.Clean(records)
	res.Cleaning = report
	if err != nil {
		return err
	}
	logCleaningReport(year, report)

	log.Printf("Grouping returns for %d (time: %v)", year, time.Since(start))
	groups := GroupByDateContract(cleaned)

	log.Printf("Building variance table for %d (time: %v)", year, time.Since(start))
	workers := sc.Settings.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	table, err := BuildVarianceTable(sc.Context, year, groups, sc.Settings.Intervals, workers)
	if err != nil {
		return fmt.Errorf("error building variance table: %w", err)
	}
	res.Rows = len(table.Rows)
	res.Summary = SummarizeVarianceTable(table.Rows)

	for i, sink := range sc.Sinks {
		log.Printf("Writing variance table for %d to sink %d (time: %v)", year, i, time.Since(start))
		if err := sink.WriteVarianceTable(sc.Context, table); err != nil {
			return fmt.Errorf("error writing variance table: %w", err)
		}
	}

	for _, s := range res.Summary {
		log.Printf("\t %s/%d: rows %d, mean rv %.6g, mean bv %.6g, mean ssj %.6g, jump share %.3f",
			s.Method, s.Interval, s.Rows, s.MeanRV, s.MeanBV, s.MeanSSJ, s.JumpShare)
	}

	return nil
}

func (sc *ServiceContext) startCalculationRun(year int) (int32, bool) {
	if sc.RunHistory == nil {
		return 0, false
	}

	runId, err := sc.RunHistory.InsertCalculationRun(sc.Context, year, sc.Settings.Intervals)
	if err != nil {
		// history is bookkeeping, the year still runs
		log.Printf("Error inserting calculation run for %d: %v", year, err)
		return 0, false
	}
	return runId, true
}

func logQualityReport(year int, q QualityReport) {
	log.Printf("Data quality for %d:", year)
	log.Printf("\t Records: %v", q.Records)
	log.Printf("\t Missing contract names: %v", q.MissingContractNames)
	log.Printf("\t Missing log returns: %v", q.MissingLogReturns)
	log.Printf("\t Empty time zones: %v", q.EmptyTimeZones)
	log.Printf("\t Gaps over %v: %v (largest %v)", ExpectedBarSpacing, q.GapsOverSpacing, q.LargestGap)
	log.Printf("\t Gaps under %v: %v", ExpectedBarSpacing, q.GapsUnderSpacing)
}

func logCleaningReport(year int, r CleaningReport) {
	log.Printf("Cleaned %d: %d in, %d out, %d missing contract, %d missing return, %d on roll dates, %d time zones filled",
		year, r.Input, r.Output, r.MissingContractName, r.MissingLogReturn, r.RollDropped, r.FilledTimeZones)
	for _, d := range r.RollDrops {
		log.Printf("\t roll %s: dropped %s (%d trades), kept %v", d.Date.Format(time.DateOnly), d.ContractName, d.TotalTrades, d.KeptContracts)
	}
}
