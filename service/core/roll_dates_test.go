package core

import (
	"slices"
	"testing"

	ex "rvcalc/data/extensions"
	m "rvcalc/data/models"
)

func concat(parts ...[]*m.TickRecord) []*m.TickRecord {
	return slices.Concat(parts...)
}

func TestResolveDropsTheContractWithFewerTrades(t *testing.T) {
	// A trades 100 on day2, B trades 30, B is dropped on day2 only
	records := concat(
		ticks(day1, "A", 25, 0.01, 0.02),
		ticks(day2, "A", 50, 0.01, 0.02),
		ticks(day2, "B", 15, 0.03, 0.04),
		ticks(day3, "B", 15, 0.05, 0.06),
	)

	kept, drops := NewRollDateResolver(nil).Resolve(records)

	ex.AssertAreEqual(t, "records kept", 6, len(kept))
	ex.AssertAreEqual(t, "drops", 1, len(drops))
	ex.AssertAreEqual(t, "dropped contract", "B", drops[0].ContractName)
	ex.AssertAreEqual(t, "dropped date", day2, drops[0].Date)
	ex.AssertAreEqual(t, "dropped trades", int64(30), drops[0].TotalTrades)
	ex.AssertAreEqual(t, "kept on roll date", "A", drops[0].KeptContracts[0])

	if got := contractsOn(kept, day2); !slices.Equal(got, []string{"A"}) {
		t.Errorf("expected only A on the roll date, got %v", got)
	}
	if got := contractsOn(kept, day3); !slices.Equal(got, []string{"B"}) {
		t.Errorf("expected B to survive on the following date, got %v", got)
	}
}

func TestResolveTiesDropTheFirstContractByName(t *testing.T) {
	// file order puts B first, the tie still drops A
	records := concat(
		ticks(day1, "B", 10, 0.01),
		ticks(day1, "A", 10, 0.02),
	)

	kept, drops := NewRollDateResolver(LowestTradeCountSelector{}).Resolve(records)

	ex.AssertAreEqual(t, "dropped contract", "A", drops[0].ContractName)
	ex.AssertAreEqual(t, "records kept", 1, len(kept))
	ex.AssertAreEqual(t, "kept contract", "B", kept[0].ContractName.String)
}

func TestResolveWithVolumeSelector(t *testing.T) {
	a := ticks(day1, "A", 100, 0.01)
	a[0].Volume.Float64 = 5
	b := ticks(day1, "B", 30, 0.02)
	b[0].Volume.Float64 = 50

	_, drops := NewRollDateResolver(LowestVolumeSelector{}).Resolve(concat(a, b))
	ex.AssertAreEqual(t, "dropped contract", "A", drops[0].ContractName)
}

func TestResolveDropsExactlyOnePairPerRollDate(t *testing.T) {
	records := concat(
		ticks(day1, "C", 5, 0.01),
		ticks(day1, "A", 20, 0.02),
		ticks(day1, "B", 10, 0.03),
	)

	kept, drops := NewRollDateResolver(nil).Resolve(records)

	ex.AssertAreEqual(t, "drops", 1, len(drops))
	ex.AssertAreEqual(t, "dropped contract", "C", drops[0].ContractName)
	if !slices.Equal(drops[0].KeptContracts, []string{"A", "B"}) {
		t.Errorf("expected A and B to be kept, got %v", drops[0].KeptContracts)
	}
	ex.AssertAreEqual(t, "records kept", 2, len(kept))
}

func TestResolveWithoutRollDatesKeepsEverything(t *testing.T) {
	records := concat(ticks(day1, "A", 1, 0.01, 0.02), ticks(day2, "B", 1, 0.03))

	kept, drops := NewRollDateResolver(nil).Resolve(records)

	ex.AssertAreEqual(t, "records kept", len(records), len(kept))
	ex.AssertAreEqual(t, "drops", 0, len(drops))
}

func TestRollCandidatesAreOrderedByDateThenName(t *testing.T) {
	records := concat(
		ticks(day2, "Z", 1, 0.01),
		ticks(day2, "Y", 2, 0.01, 0.02),
		ticks(day1, "B", 3, 0.01),
		ticks(day1, "A", 4, 0.01),
	)

	rolls := RollCandidates(records)

	ex.AssertAreEqual(t, "roll dates", 2, len(rolls))
	ex.AssertAreEqual(t, "first date", day1, rolls[0][0].Date)
	ex.AssertAreEqual(t, "first contract", "A", rolls[0][0].ContractName)
	ex.AssertAreEqual(t, "second date", day2, rolls[1][0].Date)
	ex.AssertAreEqual(t, "second date first contract", "Y", rolls[1][0].ContractName)
	ex.AssertAreEqual(t, "summed trades", int64(4), rolls[1][0].TotalTrades)
}

func TestRollSelectorByName(t *testing.T) {
	for name, expected := range map[string]RollSelector{
		"":                 LowestTradeCountSelector{},
		TradeCountSelector: LowestTradeCountSelector{},
		"VOLUME":           LowestVolumeSelector{},
	} {
		selector, err := RollSelectorByName(name)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", name, err)
		}
		ex.AssertAreEqual(t, name, expected, selector)
	}

	if _, err := RollSelectorByName("open interest"); err == nil {
		t.Error("expected an error for an unknown selector")
	}
}
