package coingeckoModel

import "github.com/shopspring/decimal"

// SimplePrice is the /simple/price response: asset id -> fiat currency -> price.
type SimplePrice map[string]map[string]decimal.Decimal
