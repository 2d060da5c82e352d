package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/otori-vision/ovt-trader/internal/market"
	"github.com/otori-vision/ovt-trader/internal/order"
	"github.com/otori-vision/ovt-trader/internal/provider"
	"github.com/otori-vision/ovt-trader/internal/wallet"
)

const testAddress = "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"

func newTestModel(t *testing.T) TradeModel {
	t.Helper()
	w, err := wallet.NewStaticConnector("mainnet", testAddress)
	require.NoError(t, err)
	return NewTradeModel(provider.NewMockProvider(), w, "unisat", zap.NewNop())
}

// apply feeds msg to the model and runs a returned plain command once.
func apply(t *testing.T, m TradeModel, msg tea.Msg) (TradeModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	tm, ok := next.(TradeModel)
	require.True(t, ok)
	return tm, cmd
}

func typeText(t *testing.T, m TradeModel, s string) (TradeModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, r := range s {
		m, cmd = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m, cmd
}

func loaded(t *testing.T) TradeModel {
	t.Helper()
	m := newTestModel(t)
	msg := m.loadCmd()()
	snap, ok := msg.(SnapshotMsg)
	require.True(t, ok)
	require.NoError(t, snap.Err)
	m, _ = apply(t, m, snap)
	return m
}

func TestSnapshotLoads(t *testing.T) {
	m := loaded(t)

	require.NotNil(t, m.lp)
	assert.Equal(t, "OVT", m.info.Symbol)
	assert.True(t, m.connected)
	assert.Len(t, m.table.Rows(), 3)
	assert.Equal(t, "tx1", m.table.Rows()[0][0])

	view := m.View()
	assert.Contains(t, view, "OTORI•VISION•TOKEN")
	assert.Contains(t, view, "online")
	assert.Contains(t, view, "1.40000000 BTC")
}

func TestEstimateFlow(t *testing.T) {
	m := loaded(t)

	m, _ = typeText(t, m, "10000")
	assert.Equal(t, "10000", m.amount.Value())
	assert.False(t, m.hasEstimate)

	est := m.estimateCmd(10_000, m.side)().(EstimateMsg)
	m, _ = apply(t, m, est)
	require.True(t, m.hasEstimate)
	assert.InDelta(t, 70.495, m.estimate, 0.001)
	assert.Contains(t, m.View(), "BUY")

	m, cmd := apply(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, market.SideSell, m.side)
	assert.False(t, m.hasEstimate)
	require.NotNil(t, cmd)

	m, _ = apply(t, m, cmd().(EstimateMsg))
	assert.InDelta(t, 69.505, m.estimate, 0.001)
	assert.Contains(t, m.View(), "SELL")
}

func TestStaleEstimateDropped(t *testing.T) {
	m := loaded(t)
	m, _ = typeText(t, m, "50")

	stale := EstimateMsg{Amount: 5, Side: market.SideBuy, Price: 1}
	m, _ = apply(t, m, stale)
	assert.False(t, m.hasEstimate)
}

func TestWalletToggle(t *testing.T) {
	m := loaded(t)

	m, cmd := apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	require.NotNil(t, cmd)
	m, _ = apply(t, m, cmd())
	assert.Equal(t, testAddress, m.address)
	assert.Contains(t, m.View(), testAddress)

	m, cmd = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	m, _ = apply(t, m, cmd())
	assert.Empty(t, m.address)
	assert.Contains(t, m.View(), "not connected")
}

func TestPlaceAndCancelOrder(t *testing.T) {
	m := loaded(t)

	m, _ = typeText(t, m, "1000")
	m, _ = apply(t, m, m.estimateCmd(1000, market.SideBuy)())

	// wallet required
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.ErrorIs(t, m.err, wallet.ErrNotConnected)
	assert.Empty(t, m.Orders())

	m, cmd := apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	m, _ = apply(t, m, cmd())

	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NoError(t, m.err)
	require.Len(t, m.Orders(), 1)
	placed := m.Orders()[0]
	assert.Equal(t, order.StatusPending, placed.Status)
	assert.Equal(t, int64(1000), placed.Amount)
	assert.Equal(t, market.SideBuy, placed.Side)

	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Equal(t, order.StatusCancelled, placed.Status)
	assert.Contains(t, m.View(), "cancelled")

	// nothing left to cancel
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.NoError(t, m.err)
}

func TestFractionalOrderRejected(t *testing.T) {
	m := loaded(t)
	m, cmd := apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	m, _ = apply(t, m, cmd())

	m, _ = typeText(t, m, "1.5")
	m, _ = apply(t, m, m.estimateCmd(1.5, market.SideBuy)())
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Error(t, m.err)
	assert.Empty(t, m.Orders())
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestOrderAmountFollowsDivisibility(t *testing.T) {
	m := loaded(t)
	require.Zero(t, m.info.Divisibility)
	m, cmd := apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	m, _ = apply(t, m, cmd())

	info := *m.info
	info.Divisibility = 2
	m.info = &info

	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1.5", 150, false},
		{"3", 300, false},
		{"1.505", 0, true},
		{"0", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m.amount.SetValue(tt.input)
			got, err := m.baseUnits()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	m.amount.SetValue("")
	m, _ = typeText(t, m, "1.5")
	m, _ = apply(t, m, m.estimateCmd(1.5, market.SideBuy)())
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NoError(t, m.err)
	require.Len(t, m.Orders(), 1)
	assert.Equal(t, int64(150), m.Orders()[0].Amount)
}
