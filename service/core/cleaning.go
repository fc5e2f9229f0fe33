package core

import (
	"errors"
	"strings"

	"github.com/guregu/null/v6"

	ex "rvcalc/data/extensions"
	m "rvcalc/data/models"
)

var ErrNoRecords = errors.New("no tick records loaded")

type CleaningReport struct {
	Input               int
	MissingContractName int
	MissingLogReturn    int
	RollDrops           []RollDrop
	RollDropped         int
	FilledTimeZones     int
	Output              int
}

// Cleaner filters a year's tick records. The stages are pure filters and run in order:
// contract name, log return, roll dates. Time zones are filled afterwards without dropping anything.
type Cleaner struct {
	Resolver *RollDateResolver
}

func NewCleaner(selector RollSelector) *Cleaner {
	return &Cleaner{Resolver: NewRollDateResolver(selector)}
}

func (c *Cleaner) Clean(records []*m.TickRecord) ([]*m.TickRecord, CleaningReport, error) {
	report := CleaningReport{Input: len(records)}
	if len(records) == 0 {
		return nil, report, ErrNoRecords
	}

	named := ex.FilterMultiplePtr(records, hasContractName)
	report.MissingContractName = len(records) - len(named)

	withReturns := ex.FilterMultiplePtr(named, func(rec *m.TickRecord) bool { return rec.LogReturn.Valid })
	report.MissingLogReturn = len(named) - len(withReturns)

	resolved, drops := c.Resolver.Resolve(withReturns)
	report.RollDrops = drops
	report.RollDropped = len(withReturns) - len(resolved)

	cleaned, filled := FillMissingTimeZones(resolved)
	report.FilledTimeZones = filled
	report.Output = len(cleaned)

	return cleaned, report, nil
}

func hasContractName(rec *m.TickRecord) bool {
	return rec.ContractName.Valid && strings.TrimSpace(rec.ContractName.String) != ""
}

// FillMissingTimeZones gives records with an empty time zone the first zone seen in the slice.
// filled records are copies, the input records are left as they were
func FillMissingTimeZones(records []*m.TickRecord) ([]*m.TickRecord, int) {
	var zone string
	for _, rec := range records {
		if rec.TimeZone.Valid && rec.TimeZone.String != "" {
			zone = rec.TimeZone.String
			break
		}
	}
	if zone == "" {
		return records, 0
	}

	filled := 0
	res := make([]*m.TickRecord, len(records))
	for i, rec := range records {
		if rec.TimeZone.Valid && rec.TimeZone.String != "" {
			res[i] = rec
			continue
		}

		cp := *rec
		cp.TimeZone = null.StringFrom(zone)
		res[i] = &cp
		filled++
	}

	return res, filled
}
