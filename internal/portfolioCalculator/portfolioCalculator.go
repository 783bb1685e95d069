// Package portfolioCalculator holds the pure valuation math of the bot.
//
// Nothing here rounds: callers get full-precision decimals and formatting is
// left to the presentation layer.
package portfolioCalculator

import (
	"github.com/KotFed0t/btc_moonshot_bot/internal/model"
	"github.com/shopspring/decimal"
)

// Goal is the fixed target portfolio value in fiat units.
var Goal = decimal.NewFromInt(100_000)

var hundred = decimal.NewFromInt(100)

// Aggregate sums units and invested fiat across purchases. Empty input yields zeros.
func Aggregate(purchases []model.Purchase) model.Aggregate {
	agg := model.Aggregate{TotalUnits: decimal.Zero, TotalInvested: decimal.Zero}
	for _, p := range purchases {
		agg.TotalUnits = agg.TotalUnits.Add(p.Amount)
		agg.TotalInvested = agg.TotalInvested.Add(p.Total)
	}
	return agg
}

func Snapshot(agg model.Aggregate, currentPrice, goal decimal.Decimal) model.Snapshot {
	s := model.Snapshot{
		TotalUnits:      agg.TotalUnits,
		TotalInvested:   agg.TotalInvested,
		CurrentPrice:    currentPrice,
		Goal:            goal,
		ProfitPercent:   decimal.Zero,
		ProgressPercent: decimal.Zero,
	}

	s.CurrentValue = agg.TotalUnits.Mul(currentPrice)
	s.Profit = s.CurrentValue.Sub(agg.TotalInvested)

	if agg.TotalInvested.IsPositive() {
		s.ProfitPercent = s.Profit.Div(agg.TotalInvested).Mul(hundred)
	}

	if goal.IsPositive() {
		s.ProgressPercent = s.CurrentValue.Div(goal).Mul(hundred)
	}

	return s
}

// RemainingToGoal is clamped at zero once the goal is reached.
func RemainingToGoal(s model.Snapshot) decimal.Decimal {
	return decimal.Max(s.Goal.Sub(s.CurrentValue), decimal.Zero)
}

func Moonshot(totalUnits, currentPrice, targetPrice decimal.Decimal) model.Moonshot {
	hypothetical := totalUnits.Mul(targetPrice)
	return model.Moonshot{
		TotalUnits:        totalUnits,
		CurrentPrice:      currentPrice,
		TargetPrice:       targetPrice,
		HypotheticalValue: hypothetical,
		ProfitVsNow:       hypothetical.Sub(currentPrice.Mul(totalUnits)),
	}
}
