package files

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/xuri/excelize/v2"

	ex "rvcalc/data/extensions"
	m "rvcalc/data/models"
)

const (
	// the terminal export wraps dates and strings in single quotes
	TimestampLayout = "'02-Jan-2006 15:04:05'"
	ColumnCount     = 12

	quote = "'"
)

// column positions of the yearly tick files
const (
	colDate = iota
	colTimeZone
	colContractName
	colOpen
	colClose
	colHigh
	colLow
	colLastTradedPrice
	colLagLastTradedPrice
	colVolume
	colNbTrade
	colLogReturn
)

var Columns = []string{
	"Date",
	"TimeZone",
	"ContractName",
	"Open",
	"Close",
	"High",
	"Low",
	"LastTradedPrice",
	"LagSameContractLastTradedPrice",
	"Volume",
	"NbTrade",
	"LogReturn",
}

var ErrSchema = errors.New("tick file does not match the expected schema")

// TickFileLoader reads <Dir>/<year>.xlsx, falling back to <Dir>/<year>.csv
type TickFileLoader struct {
	Dir string
}

func NewTickFileLoader(dir string) *TickFileLoader {
	return &TickFileLoader{Dir: dir}
}

func (l *TickFileLoader) Load(ctx context.Context, year int) ([]*m.TickRecord, error) {
	path, err := l.resolvePath(year)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readExcelRows(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Printf("read %d rows from %s", len(rows), path)
	return ParseRows(rows)
}

func (l *TickFileLoader) resolvePath(year int) (string, error) {
	for _, ext := range []string{".xlsx", ".csv"} {
		path := filepath.Join(l.Dir, fmt.Sprintf("%d%s", year, ext))
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no tick file for year %d in %s", year, l.Dir)
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets: %w", path, ErrSchema)
	}

	// raw values, a number format on a cell would otherwise round what gets parsed
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV reads every row, the csv reader enforces the column count
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = ColumnCount

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading csv: %v: %w", err, ErrSchema)
	}
	return rows, nil
}

// ParseRows converts raw rows into tick records. The first row is the header and is skipped.
// Excel drops trailing empty cells so short rows are padded, anything over twelve columns is rejected.
func ParseRows(rows [][]string) ([]*m.TickRecord, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	if len(rows[0]) != ColumnCount {
		return nil, fmt.Errorf("header has %d columns, expected %d: %w", len(rows[0]), ColumnCount, ErrSchema)
	}

	records := make([]*m.TickRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2 // 1 based, after the header

		if len(row) > ColumnCount {
			return nil, fmt.Errorf("row %d has %d columns, expected %d: %w", line, len(row), ColumnCount, ErrSchema)
		}
		if isBlank(row) {
			continue
		}

		padded := make([]string, ColumnCount)
		copy(padded, row)

		record, err := parseRecord(padded)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func parseRecord(row []string) (*m.TickRecord, error) {
	timestamp, err := time.Parse(TimestampLayout, strings.TrimSpace(row[colDate]))
	if err != nil {
		return nil, fmt.Errorf("error parsing date %q: %v: %w", row[colDate], err, ErrSchema)
	}

	rec := &m.TickRecord{
		Date:         ex.DateOf(timestamp),
		Timestamp:    timestamp,
		TimeZone:     parseQuotedString(row[colTimeZone]),
		ContractName: parseQuotedString(row[colContractName]),
	}

	floats := []struct {
		column int
		target *null.Float
	}{
		{colOpen, &rec.Open},
		{colClose, &rec.Close},
		{colHigh, &rec.High},
		{colLow, &rec.Low},
		{colLastTradedPrice, &rec.LastTradedPrice},
		{colLagLastTradedPrice, &rec.LagLastTradedPrice},
		{colVolume, &rec.Volume},
		{colLogReturn, &rec.LogReturn},
	}

	for _, f := range floats {
		v, err := parseFloat(row[f.column])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", Columns[f.column], err)
		}
		*f.target = v
	}

	nbTrade, err := parseInt(row[colNbTrade])
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", Columns[colNbTrade], err)
	}
	rec.NbTrade = nbTrade

	return rec, nil
}

// parseQuotedString strips the export quotes, an empty value stays valid so the cleaner can tell it apart from a missing one
func parseQuotedString(val string) null.String {
	if val == "" {
		return null.NewString("", false)
	}
	return null.StringFrom(strings.ReplaceAll(val, quote, ""))
}

func parseFloat(val string) (null.Float, error) {
	val = strings.TrimSpace(val)
	if val == "" || strings.EqualFold(val, "nan") {
		return null.NewFloat(0, false), nil
	}

	conv, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return null.Float{}, fmt.Errorf("error parsing %q as float: %w", val, ErrSchema)
	}
	return null.FloatFrom(conv), nil
}

func parseInt(val string) (null.Int, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return null.NewInt(0, false), nil
	}

	if conv, err := strconv.ParseInt(val, 10, 64); err == nil {
		return null.IntFrom(conv), nil
	}

	// spreadsheets store counts as floats, accept whole numbers only
	conv, err := strconv.ParseFloat(val, 64)
	if err != nil || conv != float64(int64(conv)) {
		return null.Int{}, fmt.Errorf("error parsing %q as integer: %w", val, ErrSchema)
	}
	return null.IntFrom(int64(conv)), nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
