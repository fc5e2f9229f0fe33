package core

import (
	"fmt"
	"slices"
	"strings"
	"time"

	ex "rvcalc/data/extensions"
	m "rvcalc/data/models"
)

const (
	TradeCountSelector = "trades"
	VolumeSelector     = "volume"
)

// RollSelector picks the contract to drop on a roll date. Candidates share a date and
// come ordered by contract name, the returned index must be valid for the slice.
type RollSelector interface {
	SelectLoser(candidates []m.RollCandidate) int
}

// LowestTradeCountSelector drops the contract with the fewest trades.
// this is the same as a stable sort by trade count taking the first row, so ties drop the first contract by name
type LowestTradeCountSelector struct{}

func (LowestTradeCountSelector) SelectLoser(candidates []m.RollCandidate) int {
	return firstMinimum(candidates, func(c m.RollCandidate) float64 { return float64(c.TotalTrades) })
}

// LowestVolumeSelector drops the contract with the smallest traded volume, same tie rule
type LowestVolumeSelector struct{}

func (LowestVolumeSelector) SelectLoser(candidates []m.RollCandidate) int {
	return firstMinimum(candidates, func(c m.RollCandidate) float64 { return c.TotalVolume })
}

func firstMinimum(candidates []m.RollCandidate, value func(m.RollCandidate) float64) int {
	idx := 0
	for i := 1; i < len(candidates); i++ {
		if value(candidates[i]) < value(candidates[idx]) {
			idx = i
		}
	}
	return idx
}

func RollSelectorByName(name string) (RollSelector, error) {
	switch strings.ToLower(name) {
	case "", TradeCountSelector:
		return LowestTradeCountSelector{}, nil
	case VolumeSelector:
		return LowestVolumeSelector{}, nil
	default:
		return nil, fmt.Errorf("%q is not a recognized roll selector", name)
	}
}

// RollDrop is a (date, contract) pair removed on a roll date
type RollDrop struct {
	m.RollCandidate
	KeptContracts []string
}

type RollDateResolver struct {
	Selector RollSelector
}

func NewRollDateResolver(selector RollSelector) *RollDateResolver {
	if selector == nil {
		selector = LowestTradeCountSelector{}
	}
	return &RollDateResolver{Selector: selector}
}

type dateContractKey struct {
	date     string
	contract string
}

func keyOf(rec *m.TickRecord) dateContractKey {
	return dateContractKey{date: ex.FmtShort(rec.Date), contract: rec.ContractName.String}
}

// RollCandidates returns, for every date traded by more than one contract, the per contract
// aggregates ordered by contract name. Dates come back in ascending order.
func RollCandidates(records []*m.TickRecord) [][]m.RollCandidate {
	aggregates := make(map[dateContractKey]*m.RollCandidate)
	contractsByDate := make(map[string][]string)
	dates := make(map[string]time.Time)

	for _, rec := range records {
		key := keyOf(rec)
		agg, ok := aggregates[key]
		if !ok {
			agg = &m.RollCandidate{Date: rec.Date, ContractName: key.contract}
			aggregates[key] = agg
			contractsByDate[key.date] = append(contractsByDate[key.date], key.contract)
			dates[key.date] = rec.Date
		}
		agg.TotalTrades += rec.NbTrade.ValueOrZero()
		agg.TotalVolume += rec.Volume.ValueOrZero()
	}

	rollDates := make([]string, 0)
	for date, contracts := range contractsByDate {
		if len(contracts) > 1 {
			rollDates = append(rollDates, date)
		}
	}
	slices.SortFunc(rollDates, func(a, b string) int {
		return dates[a].Compare(dates[b])
	})

	res := make([][]m.RollCandidate, 0, len(rollDates))
	for _, date := range rollDates {
		contracts := slices.Clone(contractsByDate[date])
		slices.Sort(contracts)

		candidates := make([]m.RollCandidate, len(contracts))
		for i, contract := range contracts {
			candidates[i] = *aggregates[dateContractKey{date: date, contract: contract}]
		}
		res = append(res, candidates)
	}

	return res
}

// Resolve drops every record of the losing (date, contract) pair on each roll date.
// exactly one pair is dropped per roll date, the same contract on other dates is untouched
func (r *RollDateResolver) Resolve(records []*m.TickRecord) ([]*m.TickRecord, []RollDrop) {
	rolls := RollCandidates(records)
	if len(rolls) == 0 {
		return records, nil
	}

	drops := make([]RollDrop, 0, len(rolls))
	toDrop := make(map[dateContractKey]bool, len(rolls))
	for _, candidates := range rolls {
		loser := r.Selector.SelectLoser(candidates)
		if loser < 0 || loser >= len(candidates) {
			loser = 0
		}

		kept := make([]string, 0, len(candidates)-1)
		for i, c := range candidates {
			if i != loser {
				kept = append(kept, c.ContractName)
			}
		}

		drop := RollDrop{RollCandidate: candidates[loser], KeptContracts: kept}
		drops = append(drops, drop)
		toDrop[dateContractKey{date: ex.FmtShort(drop.Date), contract: drop.ContractName}] = true
	}

	kept := ex.FilterMultiplePtr(records, func(rec *m.TickRecord) bool {
		return !toDrop[keyOf(rec)]
	})

	return kept, drops
}
