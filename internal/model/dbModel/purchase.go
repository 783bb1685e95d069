package dbModel

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Purchase struct {
	ID       uuid.UUID       `db:"id"`
	Amount   decimal.Decimal `db:"amount"`
	Price    decimal.Decimal `db:"price"`
	Total    decimal.Decimal `db:"total"`
	DtCreate time.Time       `db:"dt_create"`
}
