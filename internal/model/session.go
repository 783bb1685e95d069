package model

import "github.com/shopspring/decimal"

type Flow int

const (
	FlowNone Flow = iota
	FlowAddPurchase
	FlowMoonshot
)

type State int

const (
	StateIdle State = iota
	StateAwaitAmount
	StateAwaitPrice
	StateAwaitTargetPrice
)

// ключи PartialInput
const (
	InputAmount = "amount"
)

type Session struct {
	Flow         Flow                       `json:"flow"`
	State        State                      `json:"state"`
	PartialInput map[string]decimal.Decimal `json:"partial_input,omitempty"`
}

func (s Session) Active() bool {
	return s.Flow != FlowNone
}
