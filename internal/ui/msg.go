package ui

import (
	"time"

	"github.com/otori-vision/ovt-trader/internal/market"
)

// Tea message types for the trade screen

// SnapshotMsg carries one full refresh from the provider
type SnapshotMsg struct {
	Info        *market.RuneInfo
	LP          *market.LPInfo
	History     []market.Transaction
	Connected   bool
	Err         error
	RefreshedAt time.Time
}

// EstimateMsg is the price estimate for a given amount and side
type EstimateMsg struct {
	Amount float64
	Side   market.Side
	Price  float64
}

// WalletMsg reports the wallet state after connect/disconnect
type WalletMsg struct {
	Address   string
	Connected bool
	Err       error
}

// TickMsg triggers the periodic refresh
type TickMsg struct {
	Time time.Time
}
