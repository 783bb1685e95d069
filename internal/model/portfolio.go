package model

import "github.com/shopspring/decimal"

// Snapshot is recomputed on every request and never stored.
type Snapshot struct {
	TotalUnits      decimal.Decimal
	TotalInvested   decimal.Decimal
	CurrentPrice    decimal.Decimal
	CurrentValue    decimal.Decimal
	Profit          decimal.Decimal
	ProfitPercent   decimal.Decimal
	Goal            decimal.Decimal
	ProgressPercent decimal.Decimal
}

type Moonshot struct {
	TotalUnits        decimal.Decimal
	CurrentPrice      decimal.Decimal
	TargetPrice       decimal.Decimal
	HypotheticalValue decimal.Decimal
	ProfitVsNow       decimal.Decimal
}
