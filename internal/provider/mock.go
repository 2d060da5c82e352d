// =============================
// File: internal/provider/mock.go
// =============================
package provider

import (
	"context"
	"time"

	"github.com/otori-vision/ovt-trader/internal/market"
)

// Значения синтезируемой записи для неизвестного id транзакции
const (
	placeholderTxAmount = 1000
	placeholderTxPrice  = market.BaselinePriceSats
)

func fixtureTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Фикстуры создаются один раз и не изменяются; наружу отдаются только копии.
var (
	mockRuneInfo = market.RuneInfo{
		ID:                "840000:3",
		Name:              "OTORI•VISION•TOKEN",
		Symbol:            "OVT",
		CirculatingSupply: 100_000,
		MaxSupply:         2_100_000,
		MintedSupply:      2_100_000,
		Divisibility:      0,
		Etching:           "OTORI•VISION•TOKEN etched in block 840000",
	}

	mockBalances = []market.RuneBalance{
		{Address: "bc1p5d7rjq7g6rdk2yhzks9smlaqtedr4dekq08ge8ztwac72sfr9rusxg3297", Amount: 2_000_000, IsDistributed: false},
		{Address: "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh", Amount: 60_000, IsDistributed: true},
		{Address: "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", Amount: 40_000, IsDistributed: true},
	}

	mockDistribution = market.DistributionStats{
		TotalSupply:        2_100_000,
		Distributed:        100_000,
		TreasuryHeld:       2_000_000,
		PercentDistributed: market.PercentOf(100_000, 2_100_000),
		Events: []market.DistributionEvent{
			{
				Amount:    60_000,
				Recipient: "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh",
				Timestamp: fixtureTime("2025-03-01T12:00:00Z"),
				TxID:      "9f2c4a1e6b3d8f7a5c0e1b2d3f4a5b6c7d8e9f0a1b2c3d4e5f6a7b8c9d0e1f2a",
			},
			{
				Amount:    40_000,
				Recipient: "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq",
				Timestamp: fixtureTime("2025-03-05T09:30:00Z"),
				TxID:      "1a2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f809",
			},
		},
	}

	mockLPInfo = market.LPInfo{
		RuneReserve:      2_000_000,
		BTCReserveSats:   140_000_000,
		ImpactMultiplier: 0.1,
		LiquidityScore:   85,
		CurrentPriceSats: 70,
		LastTradeTime:    fixtureTime("2025-03-10T16:45:00Z"),
		Volume24h:        250_000,
		Volume7d:         1_750_000,
		Providers: []market.LPProvider{
			{
				Address:       "bc1p5d7rjq7g6rdk2yhzks9smlaqtedr4dekq08ge8ztwac72sfr9rusxg3297",
				RuneAmount:    1_200_000,
				BTCAmountSats: 84_000_000,
				SharePercent:  60,
			},
			{
				Address:       "bc1qm34lsc65zpw79lxes69zkqmk6ee3ewf0j77s3h",
				RuneAmount:    800_000,
				BTCAmountSats: 56_000_000,
				SharePercent:  40,
			},
		},
	}

	mockTransactions = []market.Transaction{
		{ID: "tx1", Side: market.SideBuy, Amount: 1_000, Price: 70.2, Timestamp: fixtureTime("2025-03-08T10:00:00Z"), Status: market.TxConfirmed},
		{ID: "tx2", Side: market.SideSell, Amount: 500, Price: 69.8, Timestamp: fixtureTime("2025-03-09T14:20:00Z"), Status: market.TxConfirmed},
		{ID: "tx3", Side: market.SideBuy, Amount: 2_500, Price: 70.6, Timestamp: fixtureTime("2025-03-10T16:45:00Z"), Status: market.TxConfirmed},
	}
)

// MockProvider отдаёт фикстурные данные вместо сетевого бэкенда.
// Безопасен для конкурентного использования: фикстуры только читаются.
type MockProvider struct {
	now func() time.Time
}

// NewMockProvider creates the fixture-backed provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{now: time.Now}
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) GetRuneInfo(_ context.Context) (*market.RuneInfo, error) {
	info := mockRuneInfo
	return &info, nil
}

func (m *MockProvider) GetRuneBalances(_ context.Context) ([]market.RuneBalance, error) {
	return append([]market.RuneBalance(nil), mockBalances...), nil
}

func (m *MockProvider) GetDistributionStats(_ context.Context) (*market.DistributionStats, error) {
	stats := mockDistribution
	stats.Events = append([]market.DistributionEvent(nil), mockDistribution.Events...)
	return &stats, nil
}

func (m *MockProvider) GetLPInfo(_ context.Context) (*market.LPInfo, error) {
	lp := mockLPInfo
	lp.Providers = append([]market.LPProvider(nil), mockLPInfo.Providers...)
	return &lp, nil
}

func (m *MockProvider) GetTransactionHistory(_ context.Context) ([]market.Transaction, error) {
	return append([]market.Transaction(nil), mockTransactions...), nil
}

// GetTransactionInfo ищет транзакцию линейным поиском; при промахе
// синтезирует покупку с запрошенным id и текущим временем.
func (m *MockProvider) GetTransactionInfo(_ context.Context, id string) (*market.Transaction, error) {
	for _, tx := range mockTransactions {
		if tx.ID == id {
			found := tx
			return &found, nil
		}
	}
	return &market.Transaction{
		ID:        id,
		Side:      market.SideBuy,
		Amount:    placeholderTxAmount,
		Price:     placeholderTxPrice,
		Timestamp: m.now(),
		Status:    market.TxConfirmed,
	}, nil
}

func (m *MockProvider) CheckConnectivity(_ context.Context) bool {
	return true
}

func (m *MockProvider) EstimatePriceImpact(ctx context.Context, amount float64, isBuy bool) float64 {
	lp, err := m.GetLPInfo(ctx)
	if err != nil {
		return market.FallbackPrice(isBuy)
	}
	return market.EstimatePriceImpact(lp.RuneReserve, lp.BTCReserveSats, amount, isBuy)
}
