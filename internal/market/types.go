// internal/market/types.go
package market

import "time"

// Side определяет направление сделки
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// IsBuy reports whether the side is a buy.
func (s Side) IsBuy() bool { return s == SideBuy }

// ParseSide converts user input into a Side.
func ParseSide(raw string) (Side, bool) {
	switch Side(raw) {
	case SideBuy:
		return SideBuy, true
	case SideSell:
		return SideSell, true
	default:
		return "", false
	}
}

// TxStatus статус транзакции в истории
type TxStatus string

const (
	TxConfirmed TxStatus = "confirmed"
	TxPending   TxStatus = "pending"
	TxFailed    TxStatus = "failed"
)

// RuneInfo описывает токен OVT как Bitcoin Rune
type RuneInfo struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	CirculatingSupply int64  `json:"circulating_supply"`
	MaxSupply         int64  `json:"max_supply"`
	MintedSupply      int64  `json:"minted_supply"`
	Divisibility      uint8  `json:"divisibility"`
	// Etching человекочитаемая ссылка на транзакцию этчинга
	Etching string `json:"etching"`
}

// RuneBalance баланс одного адреса
type RuneBalance struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
	// IsDistributed true, если токены покинули казначейство
	IsDistributed bool `json:"is_distributed"`
}

// DistributionEvent одна выдача токенов из казначейства
type DistributionEvent struct {
	Amount    int64     `json:"amount"`
	Recipient string    `json:"recipient"`
	Timestamp time.Time `json:"timestamp"`
	TxID      string    `json:"txid"`
}

// LPProvider доля одного поставщика ликвидности
type LPProvider struct {
	Address       string  `json:"address"`
	RuneAmount    int64   `json:"rune_amount"`
	BTCAmountSats int64   `json:"btc_amount_sats"`
	SharePercent  float64 `json:"share_percent"`
}

// LPInfo снимок состояния пула ликвидности OVT/BTC.
// Резервы хранятся в базовых единицах (единицы руны и сатоши).
type LPInfo struct {
	RuneReserve      int64        `json:"rune_reserve"`
	BTCReserveSats   int64        `json:"btc_reserve_sats"`
	ImpactMultiplier float64      `json:"impact_multiplier"`
	LiquidityScore   float64      `json:"liquidity_score"`
	CurrentPriceSats float64      `json:"current_price_sats"`
	LastTradeTime    time.Time    `json:"last_trade_time"`
	Volume24h        int64        `json:"volume_24h"`
	Volume7d         int64        `json:"volume_7d"`
	Providers        []LPProvider `json:"providers"`
}

// BasePrice returns the reserve ratio in sats per rune unit, or 0 for an illiquid pool.
func (lp *LPInfo) BasePrice() float64 {
	if lp.RuneReserve <= 0 || lp.BTCReserveSats <= 0 {
		return 0
	}
	return float64(lp.BTCReserveSats) / float64(lp.RuneReserve)
}

// Transaction запись в истории сделок
type Transaction struct {
	ID        string    `json:"id"`
	Side      Side      `json:"type"`
	Amount    int64     `json:"amount"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
	Status    TxStatus  `json:"status"`
}
