package models

import (
	"time"

	"github.com/guregu/null/v6"
)

type CalculationRun struct {
	Id           int32       `db:"id"`
	Year         int         `db:"year"`
	Intervals    []int32     `db:"intervals"`
	RowCount     null.Int    `db:"row_count"`
	ErrorMessage null.String `db:"error_message"`
	StartedAt    time.Time   `db:"started_at"`
	CompletedAt  null.Time   `db:"completed_at"`
}
