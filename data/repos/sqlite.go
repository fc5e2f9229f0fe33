package repos

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	m "rvcalc/data/models"
)

// SQLite batch constants
const (
	sqliteMaxVars   = 32000
	paramsPerRow    = 10
	sqliteBatchSize = sqliteMaxVars / paramsPerRow
)

// SQLite keeps variance tables in a local file, same replace-the-year semantics as Postgres
type SQLite struct {
	DB *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database %s: %w", path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging sqlite database %s: %w", path, err)
	}

	// PRAGMA optimizations
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		log.Printf("failed to set WAL mode: %v", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL;"); err != nil {
		log.Printf("failed to set synchronous mode: %v", err)
	}

	s := &SQLite{DB: db}
	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLite) Close() error {
	return s.DB.Close()
}

func (s *SQLite) createTables(ctx context.Context) error {
	// SQLite types: INTEGER for int and bool, REAL for float64, TEXT for string and dates
	query := `
		CREATE TABLE IF NOT EXISTS variance_calculation (
			year          INTEGER NOT NULL,
			row_order     INTEGER NOT NULL,
			date          TEXT    NOT NULL,
			contract_name TEXT    NOT NULL,
			sample_interval INTEGER NOT NULL,
			method        TEXT    NOT NULL,
			rv            REAL    NOT NULL,
			bv            REAL    NOT NULL,
			ssj           REAL    NOT NULL,
			roll_date     INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (year, row_order)
		)`

	if _, err := s.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create variance_calculation: %w", err)
	}

	index := `CREATE INDEX IF NOT EXISTS ix_variance_calculation_block ON variance_calculation (year, method, sample_interval)`
	if _, err := s.DB.ExecContext(ctx, index); err != nil {
		return fmt.Errorf("failed to create variance_calculation index: %w", err)
	}
	return nil
}

func (s *SQLite) WriteVarianceTable(ctx context.Context, table *m.VarianceTable) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM variance_calculation WHERE year = ?", table.Year); err != nil {
		return fmt.Errorf("error deleting variance rows for %d: %w", table.Year, err)
	}

	for start := 0; start < len(table.Rows); start += sqliteBatchSize {
		end := min(start+sqliteBatchSize, len(table.Rows))
		if err := insertVarianceBatch(ctx, tx, table.Year, start, table.Rows[start:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing variance rows for %d: %w", table.Year, err)
	}
	return nil
}

func insertVarianceBatch(ctx context.Context, tx *sql.Tx, year, offset int, rows []*m.VarianceRow) error {
	var sb strings.Builder
	sb.WriteString("INSERT INTO variance_calculation (year, row_order, date, contract_name, sample_interval, method, rv, bv, ssj, roll_date) VALUES ")

	args := make([]any, 0, len(rows)*paramsPerRow)
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?,?,?,?,?,?,?,?,?,?)")
		args = append(args,
			year, offset+i, row.Date.Format(time.DateOnly), row.ContractName, row.Interval,
			string(row.Method), row.RV, row.BV, row.SSJ, row.RollDate)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("error inserting variance batch at %d for %d: %w", offset, year, err)
	}
	return nil
}

func (s *SQLite) GetVariances(ctx context.Context, filter m.VarianceFilter) ([]*m.VarianceRow, error) {
	query := `
		SELECT date, contract_name, sample_interval, method, rv, bv, ssj, roll_date
		FROM variance_calculation
		WHERE year = ?
			AND (? = '' OR method = ?)
			AND (? = 0 OR sample_interval = ?)
			AND (? = '' OR contract_name = ?)
		ORDER BY row_order`

	method := string(filter.Method)
	rows, err := s.DB.QueryContext(ctx, query,
		filter.Year,
		method, method,
		filter.Interval, filter.Interval,
		filter.ContractName, filter.ContractName)
	if err != nil {
		return nil, fmt.Errorf("unable to query variances for %d: %w", filter.Year, err)
	}
	defer rows.Close()

	var res []*m.VarianceRow
	for rows.Next() {
		var (
			row          m.VarianceRow
			date         string
			storedMethod string
		)
		if err := rows.Scan(&date, &row.ContractName, &row.Interval, &storedMethod, &row.RV, &row.BV, &row.SSJ, &row.RollDate); err != nil {
			return nil, fmt.Errorf("error scanning variance row: %w", err)
		}

		row.Date, err = time.Parse(time.DateOnly, date)
		if err != nil {
			return nil, fmt.Errorf("error parsing stored date %q: %w", date, err)
		}
		row.Method = m.Method(storedMethod)
		res = append(res, &row)
	}

	return res, rows.Err()
}
