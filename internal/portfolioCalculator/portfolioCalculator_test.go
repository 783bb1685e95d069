package portfolioCalculator

import (
	"testing"

	"github.com/KotFed0t/btc_moonshot_bot/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func purchase(amount, price string) model.Purchase {
	a, p := dec(amount), dec(price)
	return model.Purchase{Amount: a, Price: p, Total: a.Mul(p)}
}

func assertDecEqual(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func TestAggregate_Empty(t *testing.T) {
	agg := Aggregate(nil)

	assertDecEqual(t, "0", agg.TotalUnits)
	assertDecEqual(t, "0", agg.TotalInvested)
}

func TestAggregate_SumsExactly(t *testing.T) {
	purchases := []model.Purchase{
		purchase("0.1", "30000"),
		purchase("0.2", "45000.5"),
		purchase("0.00012345", "61234.56"),
	}

	agg := Aggregate(purchases)

	assertDecEqual(t, "0.30012345", agg.TotalUnits)
	// 3000 + 9000.1 + 7.559406432
	assertDecEqual(t, "12007.659406432", agg.TotalInvested)
}

func TestSnapshot_EmptyLedger(t *testing.T) {
	s := Snapshot(Aggregate(nil), dec("80000"), Goal)

	assertDecEqual(t, "0", s.TotalUnits)
	assertDecEqual(t, "0", s.TotalInvested)
	assertDecEqual(t, "0", s.CurrentValue)
	assertDecEqual(t, "0", s.Profit)
	assertDecEqual(t, "0", s.ProfitPercent)
	assertDecEqual(t, "0", s.ProgressPercent)
	assertDecEqual(t, "100000", RemainingToGoal(s))
}

func TestSnapshot_ProfitPercentZeroWithoutInvestment(t *testing.T) {
	for _, price := range []string{"0", "1", "123456.789"} {
		agg := model.Aggregate{TotalUnits: dec("2"), TotalInvested: decimal.Zero}

		s := Snapshot(agg, dec(price), Goal)

		assertDecEqual(t, "0", s.ProfitPercent)
	}
}

func TestSnapshot_Scenario(t *testing.T) {
	agg := Aggregate([]model.Purchase{purchase("0.5", "60000")})
	assertDecEqual(t, "0.5", agg.TotalUnits)
	assertDecEqual(t, "30000", agg.TotalInvested)

	s := Snapshot(agg, dec("80000"), Goal)

	assertDecEqual(t, "40000", s.CurrentValue)
	assertDecEqual(t, "10000", s.Profit)
	assert.InDelta(t, 33.33, s.ProfitPercent.InexactFloat64(), 0.01)
	assertDecEqual(t, "40", s.ProgressPercent)
	assertDecEqual(t, "60000", RemainingToGoal(s))
}

func TestSnapshot_ZeroGoal(t *testing.T) {
	agg := Aggregate([]model.Purchase{purchase("1", "10")})

	s := Snapshot(agg, dec("20"), decimal.Zero)

	assertDecEqual(t, "0", s.ProgressPercent)
}

func TestRemainingToGoal_NeverNegative(t *testing.T) {
	agg := Aggregate([]model.Purchase{purchase("2", "50000")})

	s := Snapshot(agg, dec("90000"), Goal)

	assertDecEqual(t, "180000", s.CurrentValue)
	assertDecEqual(t, "180", s.ProgressPercent)
	assertDecEqual(t, "0", RemainingToGoal(s))
}

func TestSnapshot_Loss(t *testing.T) {
	agg := Aggregate([]model.Purchase{purchase("1", "100000")})

	s := Snapshot(agg, dec("75000"), Goal)

	assertDecEqual(t, "-25000", s.Profit)
	assertDecEqual(t, "-25", s.ProfitPercent)
}

func TestMoonshot_Scenario(t *testing.T) {
	m := Moonshot(dec("1.0"), dec("90000"), dec("150000"))

	assertDecEqual(t, "150000", m.HypotheticalValue)
	assertDecEqual(t, "60000", m.ProfitVsNow)
}

func TestMoonshot_EmptyPortfolio(t *testing.T) {
	m := Moonshot(decimal.Zero, dec("90000"), dec("150000"))

	assertDecEqual(t, "0", m.HypotheticalValue)
	assertDecEqual(t, "0", m.ProfitVsNow)
}
