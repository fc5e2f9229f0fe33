package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	m "rvcalc/data/models"
	q "rvcalc/data/queries"
)

var varianceColumns = []string{
	"year", "row_order", "date", "contract_name", "sample_interval",
	"method", "rv", "bv", "ssj", "roll_date",
}

// WriteVarianceTable replaces everything stored for the table's year in one transaction,
// so rerunning a year never leaves duplicates behind
func (pg *Postgres) WriteVarianceTable(ctx context.Context, table *m.VarianceTable) error {
	tx, err := pg.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) // this will kick off if we return before committing

	sql := q.Get(q.QueryHelper.Delete.VarianceCalculationByYear)
	if _, err := tx.Exec(ctx, sql, pgx.NamedArgs{"year": table.Year}); err != nil {
		return fmt.Errorf("error deleting variance rows for %d: %w", table.Year, err)
	}

	entries := make([][]any, len(table.Rows))
	for i, row := range table.Rows {
		entries[i] = []any{
			table.Year, i, row.Date, row.ContractName, row.Interval,
			string(row.Method), row.RV, row.BV, row.SSJ, row.RollDate,
		}
	}

	ct, err := tx.CopyFrom(ctx, pgx.Identifier{"variance_calculation"}, varianceColumns, pgx.CopyFromRows(entries))
	if err != nil {
		return fmt.Errorf("error copying variance rows for %d: %w", table.Year, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing variance rows for %d: %w", table.Year, err)
	}

	if ct != int64(len(table.Rows)) {
		return fmt.Errorf("expected to copy %d variance rows for %d, copied %d", len(table.Rows), table.Year, ct)
	}

	return nil
}

func (pg *Postgres) GetVariances(ctx context.Context, filter m.VarianceFilter) ([]*m.VarianceRow, error) {
	args := pgx.NamedArgs{
		"year":          filter.Year,
		"method":        string(filter.Method),
		"interval":      filter.Interval,
		"contract_name": filter.ContractName,
	}

	res, err := Query[m.VarianceRow](ctx, pg, q.Get(q.QueryHelper.Select.VarianceCalculation), args)
	if err != nil {
		return nil, fmt.Errorf("unable to query variances for %d: %w", filter.Year, err)
	}
	return res, nil
}
