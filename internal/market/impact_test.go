package market

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimatePriceImpact_IlliquidPool(t *testing.T) {
	tests := []struct {
		name        string
		runeReserve int64
		btcReserve  int64
	}{
		{"zero rune reserve", 0, 140_000_000},
		{"zero btc reserve", 2_000_000, 0},
		{"negative rune reserve", -5, 140_000_000},
		{"negative btc reserve", 2_000_000, -1},
		{"both empty", 0, 0},
	}

	amounts := []float64{0, 1, 10_000, 1e12}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, amount := range amounts {
				assert.Equal(t, BaselinePriceSats*1.1, EstimatePriceImpact(tt.runeReserve, tt.btcReserve, amount, true))
				assert.Equal(t, BaselinePriceSats*0.9, EstimatePriceImpact(tt.runeReserve, tt.btcReserve, amount, false))
			}
		})
	}
}

func TestEstimatePriceImpact_ZeroAmountIsBasePrice(t *testing.T) {
	pools := [][2]int64{
		{2_000_000, 140_000_000},
		{1, 1},
		{3, 1_000_000_007},
	}
	for _, p := range pools {
		base := float64(p[1]) / float64(p[0])
		assert.Equal(t, base, EstimatePriceImpact(p[0], p[1], 0, true))
		assert.Equal(t, base, EstimatePriceImpact(p[0], p[1], 0, false))
	}
}

func TestEstimatePriceImpact_Example(t *testing.T) {
	price := EstimatePriceImpact(2_000_000, 140_000_000, 10_000, true)

	expectedImpact := math.Sqrt(10_000.0/2_000_000.0) * 0.1
	assert.InDelta(t, 0.00707, expectedImpact, 1e-5)
	assert.InDelta(t, 70.495, price, 1e-3)
	assert.InDelta(t, 70*(1+expectedImpact), price, 1e-9)

	sell := EstimatePriceImpact(2_000_000, 140_000_000, 10_000, false)
	assert.InDelta(t, 70*(1-expectedImpact), sell, 1e-9)
	t.Logf("buy: %.6f sell: %.6f", price, sell)
}

func TestImpactFraction_MonotonicAndCapped(t *testing.T) {
	const reserve int64 = 2_000_000

	prev := 0.0
	for amount := 0.0; amount <= 10*float64(reserve); amount += 25_000 {
		impact := ImpactFraction(reserve, amount)
		assert.GreaterOrEqual(t, impact, prev, "impact decreased at amount %.0f", amount)
		assert.LessOrEqual(t, impact, MaxImpact)
		prev = impact
	}

	// sqrt(amount/R)*0.1 reaches the cap at amount == R
	assert.Equal(t, MaxImpact, ImpactFraction(reserve, float64(reserve)))
	assert.Equal(t, MaxImpact, ImpactFraction(reserve, 1e18))
}

func TestEstimatePriceImpact_FailureFallback(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
	}{
		{"negative amount", -10},
		{"NaN amount", math.NaN()},
		{"infinite amount", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, FallbackBuyPrice, EstimatePriceImpact(2_000_000, 140_000_000, tt.amount, true))
			assert.Equal(t, FallbackSellPrice, EstimatePriceImpact(2_000_000, 140_000_000, tt.amount, false))
		})
	}
}

func TestEstimatePriceImpact_SellNeverBelowNinetyPercentOfBase(t *testing.T) {
	base := 70.0
	for _, amount := range []float64{1, 1_000, 1e6, 1e9} {
		sell := EstimatePriceImpact(2_000_000, 140_000_000, amount, false)
		assert.GreaterOrEqual(t, sell, base*0.9-1e-9)
		assert.LessOrEqual(t, sell, base)
	}
}

func TestSatsToBTC(t *testing.T) {
	assert.Equal(t, 1.4, SatsToBTC(140_000_000))
	assert.Equal(t, 0.0, SatsToBTC(0))
}

func TestParseSide(t *testing.T) {
	side, ok := ParseSide("buy")
	assert.True(t, ok)
	assert.True(t, side.IsBuy())

	side, ok = ParseSide("sell")
	assert.True(t, ok)
	assert.False(t, side.IsBuy())

	_, ok = ParseSide("hold")
	assert.False(t, ok)
}
