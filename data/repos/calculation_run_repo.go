package repos

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	m "rvcalc/data/models"
	q "rvcalc/data/queries"
)

func (pg *Postgres) InsertCalculationRun(ctx context.Context, year int, intervals []int) (int32, error) {
	stored := make([]int32, len(intervals))
	for i, v := range intervals {
		stored[i] = int32(v)
	}

	args := pgx.NamedArgs{
		"year":      year,
		"intervals": stored,
	}

	var runId int32
	if err := pg.db.QueryRow(ctx, q.Get(q.QueryHelper.Insert.CalculationRun), args).Scan(&runId); err != nil {
		return 0, fmt.Errorf("error inserting calculation run: %w", err)
	}

	return runId, nil
}

func (pg *Postgres) UpdateCalculationRunAsFailure(ctx context.Context, runId int32, errorMessage string) error {
	cleanErrorMessage := strings.TrimSpace(errorMessage)
	if cleanErrorMessage == "" {
		return fmt.Errorf("error message is required if calculation run is failing, occurred in %d", runId)
	}

	return pg.updateCalculationRun(ctx, pgx.NamedArgs{
		"id":            runId,
		"row_count":     nil,
		"error_message": cleanErrorMessage,
	})
}

func (pg *Postgres) UpdateCalculationRunAsSuccess(ctx context.Context, runId int32, rowCount int) error {
	return pg.updateCalculationRun(ctx, pgx.NamedArgs{
		"id":            runId,
		"row_count":     rowCount,
		"error_message": nil,
	})
}

func (pg *Postgres) GetCalculationRuns(ctx context.Context, year int) ([]*m.CalculationRun, error) {
	res, err := Query[m.CalculationRun](ctx, pg, q.Get(q.QueryHelper.Select.CalculationRunsByYear), pgx.NamedArgs{"year": year})
	if err != nil {
		return nil, fmt.Errorf("unable to query calculation runs for %d: %w", year, err)
	}
	return res, nil
}

func (pg *Postgres) updateCalculationRun(ctx context.Context, args pgx.NamedArgs) error {
	if _, err := pg.db.Exec(ctx, q.Get(q.QueryHelper.Update.CalculationRun), args); err != nil {
		return fmt.Errorf("error updating calculation run: %w", err)
	}
	return nil
}
