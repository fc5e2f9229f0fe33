package core

import (
	"time"

	"github.com/guregu/null/v6"

	ex "rvcalc/data/extensions"
	m "rvcalc/data/models"
)

var (
	day1 = time.Date(2018, 3, 15, 0, 0, 0, 0, time.UTC)
	day2 = time.Date(2018, 3, 16, 0, 0, 0, 0, time.UTC)
	day3 = time.Date(2018, 3, 19, 0, 0, 0, 0, time.UTC)
)

// tick builds a one minute bar, minute counts from 09:00 on the given date
func tick(date time.Time, minute int, contract string, trades int64, logReturn float64) *m.TickRecord {
	ts := date.Add(9*time.Hour + time.Duration(minute)*time.Minute)
	return &m.TickRecord{
		Date:         ex.DateOf(ts),
		Timestamp:    ts,
		TimeZone:     null.StringFrom("CET"),
		ContractName: null.StringFrom(contract),
		Volume:       null.FloatFrom(float64(trades) * 10),
		NbTrade:      null.IntFrom(trades),
		LogReturn:    null.FloatFrom(logReturn),
	}
}

// ticks builds consecutive bars with the same trade count
func ticks(date time.Time, contract string, trades int64, returns ...float64) []*m.TickRecord {
	res := make([]*m.TickRecord, len(returns))
	for i, r := range returns {
		res[i] = tick(date, i, contract, trades, r)
	}
	return res
}

func withoutReturn(rec *m.TickRecord) *m.TickRecord {
	rec.LogReturn = null.NewFloat(0, false)
	return rec
}

func withoutContract(rec *m.TickRecord) *m.TickRecord {
	rec.ContractName = null.NewString("", false)
	return rec
}

func contractsOn(records []*m.TickRecord, date time.Time) []string {
	seen := make(map[string]bool)
	res := make([]string, 0)
	for _, rec := range records {
		if rec.Date.Equal(date) && !seen[rec.ContractName.String] {
			seen[rec.ContractName.String] = true
			res = append(res, rec.ContractName.String)
		}
	}
	return res
}
