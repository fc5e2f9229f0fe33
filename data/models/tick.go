package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// TickRecord is one row of a yearly futures file, timestamps are the bar open
type TickRecord struct {
	Date               time.Time // calendar date of Timestamp
	Timestamp          time.Time
	TimeZone           null.String
	ContractName       null.String
	Open               null.Float
	Close              null.Float
	High               null.Float
	Low                null.Float
	LastTradedPrice    null.Float
	LagLastTradedPrice null.Float
	Volume             null.Float
	NbTrade            null.Int
	LogReturn          null.Float
}

// DailyContractGroup holds the returns of one contract on one date, in file order.
// sampling is positional so the order of Returns matters
type DailyContractGroup struct {
	Date         time.Time
	ContractName string
	Returns      []float64
}

// RollCandidate is the per contract aggregate used to decide which contract to drop on a roll date
type RollCandidate struct {
	Date         time.Time
	ContractName string
	TotalTrades  int64
	TotalVolume  float64
}
