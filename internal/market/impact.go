// =============================
// File: internal/market/impact.go
// =============================
package market

import (
	"math"

	"github.com/btcsuite/btcd/btcutil"
)

const (
	// BaselinePriceSats номинальная цена, используемая для неликвидного пула
	BaselinePriceSats = 700.0

	// MaxImpact верхняя граница доли влияния на цену (10%)
	MaxImpact = 0.1

	// FallbackBuyPrice и FallbackSellPrice возвращаются при сбое вычисления
	FallbackBuyPrice  = 750.0
	FallbackSellPrice = 650.0

	impactScale = 0.1
)

// IlliquidPrice returns the maximal-impact price used when a reserve is empty.
func IlliquidPrice(isBuy bool) float64 {
	if isBuy {
		return BaselinePriceSats * (1 + MaxImpact)
	}
	return BaselinePriceSats * (1 - MaxImpact)
}

// FallbackPrice returns the fixed price reported when the estimate cannot be computed.
func FallbackPrice(isBuy bool) float64 {
	if isBuy {
		return FallbackBuyPrice
	}
	return FallbackSellPrice
}

// ImpactFraction вычисляет долю влияния сделки на цену.
//
// Формула: I = min(sqrt(amount / R_t) * 0.1, 0.1), где R_t - резерв руны.
// Кривая растёт как квадратный корень от размера сделки и ограничена 10%.
func ImpactFraction(runeReserve int64, amount float64) float64 {
	if runeReserve <= 0 {
		return MaxImpact
	}
	return math.Min(math.Sqrt(amount/float64(runeReserve))*impactScale, MaxImpact)
}

// EstimatePriceImpact оценивает цену исполнения сделки размера amount против пула.
//
// Неположительный резерв с любой стороны считается неликвидным пулом и даёт
// фиксированную цену ±10% от номинала. Любой сбой арифметики (отрицательный
// или NaN объём, бесконечный результат) заменяется фиксированной ценой
// 750 / 650 в зависимости от направления. Функция никогда не паникует.
func EstimatePriceImpact(runeReserve, btcReserveSats int64, amount float64, isBuy bool) (price float64) {
	defer func() {
		if r := recover(); r != nil {
			price = FallbackPrice(isBuy)
		}
	}()

	if runeReserve <= 0 || btcReserveSats <= 0 {
		return IlliquidPrice(isBuy)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return FallbackPrice(isBuy)
	}

	base := float64(btcReserveSats) / float64(runeReserve)
	impact := ImpactFraction(runeReserve, amount)

	if isBuy {
		price = base * (1 + impact)
	} else {
		price = base * (1 - impact)
	}

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return FallbackPrice(isBuy)
	}
	return price
}

// SatsToBTC converts base units to a BTC float for display.
func SatsToBTC(sats int64) float64 {
	return btcutil.Amount(sats).ToBTC()
}
