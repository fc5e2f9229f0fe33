package core

import (
	"time"

	m "rvcalc/data/models"
)

// ExpectedBarSpacing is the spacing of the one minute bars in the tick files
const ExpectedBarSpacing = time.Minute

// QualityReport describes a raw year of records, it never changes what gets cleaned
type QualityReport struct {
	Records              int
	MissingContractNames int
	MissingLogReturns    int
	EmptyTimeZones       int
	GapsOverSpacing      int // consecutive bars further apart than ExpectedBarSpacing
	GapsUnderSpacing     int // consecutive bars closer than ExpectedBarSpacing, duplicates and out of order included
	LargestGap           time.Duration
}

// InspectRecords scans records in file order. gaps are only measured between bars on the same date,
// the overnight break is not a gap
func InspectRecords(records []*m.TickRecord) QualityReport {
	report := QualityReport{Records: len(records)}

	for i, rec := range records {
		if !hasContractName(rec) {
			report.MissingContractNames++
		}
		if !rec.LogReturn.Valid {
			report.MissingLogReturns++
		}
		if !rec.TimeZone.Valid || rec.TimeZone.String == "" {
			report.EmptyTimeZones++
		}

		if i == 0 || !records[i-1].Date.Equal(rec.Date) {
			continue
		}

		gap := rec.Timestamp.Sub(records[i-1].Timestamp)
		switch {
		case gap > ExpectedBarSpacing:
			report.GapsOverSpacing++
			if gap > report.LargestGap {
				report.LargestGap = gap
			}
		case gap < ExpectedBarSpacing:
			report.GapsUnderSpacing++
		}
	}

	return report
}
