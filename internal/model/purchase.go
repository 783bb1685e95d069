package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase is an immutable ledger record. Total is always Amount * Price.
type Purchase struct {
	ID       uuid.UUID
	Amount   decimal.Decimal
	Price    decimal.Decimal
	Total    decimal.Decimal
	DtCreate time.Time
}

type Aggregate struct {
	TotalUnits    decimal.Decimal
	TotalInvested decimal.Decimal
}
