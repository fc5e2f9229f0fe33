package queries

import (
	"embed"
	"fmt"
)

//go:embed create/*.sql delete/*.sql insert/*.sql select/*.sql update/*.sql
var Files embed.FS

// ^^^ the go:embed directive is used to embed the files in the queries package
// meaning on compile time it will convert the files to binary data and embed it in the queries package

type CreateQueries struct {
	VarianceSchema string
}

type DeleteQueries struct {
	VarianceCalculationByYear string
}

type InsertQueries struct {
	CalculationRun string
}

type SelectQueries struct {
	CalculationRunsByYear string
	VarianceCalculation   string
}

type UpdateQueries struct {
	CalculationRun string
}

type QueryHelperStruct struct {
	Create CreateQueries
	Delete DeleteQueries
	Insert InsertQueries
	Select SelectQueries
	Update UpdateQueries
}

var QueryHelper = QueryHelperStruct{
	Create: CreateQueries{
		VarianceSchema: "create/variance_schema.sql",
	},
	Delete: DeleteQueries{
		VarianceCalculationByYear: "delete/variance_calculation_by_year.sql",
	},
	Insert: InsertQueries{
		CalculationRun: "insert/calculation_run.sql",
	},
	Select: SelectQueries{
		CalculationRunsByYear: "select/calculation_runs_by_year.sql",
		VarianceCalculation:   "select/variance_calculation.sql",
	},
	Update: UpdateQueries{
		CalculationRun: "update/calculation_run.sql",
	},
}

func Get(path string) string {
	content, err := Files.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("error reading query file: %w", err))
	}

	return string(content)
}
