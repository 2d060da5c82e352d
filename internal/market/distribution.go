package market

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DistributionStats aggregate snapshot of how much supply left the treasury.
type DistributionStats struct {
	TotalSupply        int64               `json:"total_supply"`
	Distributed        int64               `json:"distributed"`
	TreasuryHeld       int64               `json:"treasury_held"`
	PercentDistributed float64             `json:"percent_distributed"`
	Events             []DistributionEvent `json:"events"`
}

// SupplyMismatchError is returned by Check when distributed and treasury amounts
// do not add up to the total supply.
type SupplyMismatchError struct {
	TotalSupply  int64
	Distributed  int64
	TreasuryHeld int64
}

func (e *SupplyMismatchError) Error() string {
	return fmt.Sprintf("supply mismatch: distributed %d + treasury %d != total %d",
		e.Distributed, e.TreasuryHeld, e.TotalSupply)
}

// Check verifies distributed + treasuryHeld == totalSupply.
func (s *DistributionStats) Check() error {
	if s.Distributed+s.TreasuryHeld != s.TotalSupply {
		return &SupplyMismatchError{
			TotalSupply:  s.TotalSupply,
			Distributed:  s.Distributed,
			TreasuryHeld: s.TreasuryHeld,
		}
	}
	return nil
}

// PercentOf returns part/total*100 rounded to two decimals. Zero total yields 0.
func PercentOf(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	pct := decimal.NewFromInt(part).
		Div(decimal.NewFromInt(total)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	f, _ := pct.Float64()
	return f
}
