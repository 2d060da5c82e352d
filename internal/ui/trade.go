package ui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/otori-vision/ovt-trader/internal/market"
	"github.com/otori-vision/ovt-trader/internal/order"
	"github.com/otori-vision/ovt-trader/internal/provider"
	"github.com/otori-vision/ovt-trader/internal/ui/style"
	"github.com/otori-vision/ovt-trader/internal/wallet"
)

const (
	requestTimeout  = 10 * time.Second
	refreshInterval = 30 * time.Second
	maxOrdersShown  = 5
)

// TradeModel: экран торговли OVT: состояние пула, оценка цены
// для введённого объёма и история сделок.
type TradeModel struct {
	provider   provider.Provider
	wallet     wallet.Connector
	walletKind string
	logger     *zap.Logger

	keys   KeyMap
	help   help.Model
	styles style.Styles
	amount textinput.Model
	table  table.Model

	side        market.Side
	info        *market.RuneInfo
	lp          *market.LPInfo
	connected   bool
	estimate    float64
	hasEstimate bool
	address     string
	orders      []*order.Order
	err         error
	lastRefresh time.Time
	width       int
}

// NewTradeModel creates the trade screen.
func NewTradeModel(p provider.Provider, w wallet.Connector, walletKind string, logger *zap.Logger) TradeModel {
	ti := textinput.New()
	ti.Placeholder = "amount of OVT"
	ti.Prompt = "› "
	ti.CharLimit = 18
	ti.Width = 20
	ti.Focus()

	styles := style.DefaultStyles()

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 8},
			{Title: "Type", Width: 5},
			{Title: "Amount", Width: 10},
			{Title: "Price", Width: 8},
			{Title: "Time", Width: 17},
			{Title: "Status", Width: 10},
		}),
		table.WithHeight(6),
		table.WithFocused(false),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(style.Base01).
		BorderBottom(true).
		Bold(true)
	t.SetStyles(ts)

	return TradeModel{
		provider:   p,
		wallet:     w,
		walletKind: walletKind,
		logger:     logger.Named("ui"),
		keys:       DefaultKeyMap(),
		help:       help.New(),
		styles:     styles,
		amount:     ti,
		table:      t,
		side:       market.SideBuy,
	}
}

// Init loads the first snapshot and starts the refresh ticker.
func (m TradeModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadCmd(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// loadCmd fetches everything the screen shows in one go.
func (m TradeModel) loadCmd() tea.Cmd {
	p := m.provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		msg := SnapshotMsg{RefreshedAt: time.Now()}
		if msg.Info, msg.Err = p.GetRuneInfo(ctx); msg.Err != nil {
			return msg
		}
		if msg.LP, msg.Err = p.GetLPInfo(ctx); msg.Err != nil {
			return msg
		}
		if msg.History, msg.Err = p.GetTransactionHistory(ctx); msg.Err != nil {
			return msg
		}
		msg.Connected = p.CheckConnectivity(ctx)
		return msg
	}
}

func (m TradeModel) estimateCmd(amount float64, side market.Side) tea.Cmd {
	p := m.provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return EstimateMsg{
			Amount: amount,
			Side:   side,
			Price:  p.EstimatePriceImpact(ctx, amount, side.IsBuy()),
		}
	}
}

func (m TradeModel) walletCmd() tea.Cmd {
	w, kind := m.wallet, m.walletKind
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if _, ok := w.Address(); ok {
			if err := w.Disconnect(ctx); err != nil {
				return WalletMsg{Err: err}
			}
			return WalletMsg{}
		}
		if err := w.Connect(ctx, kind); err != nil {
			return WalletMsg{Err: err}
		}
		addr, ok := w.Address()
		return WalletMsg{Address: addr, Connected: ok}
	}
}

func (m TradeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SnapshotMsg:
		m.lastRefresh = msg.RefreshedAt
		if msg.Err != nil {
			m.err = msg.Err
			m.logger.Warn("Snapshot refresh failed", zap.Error(msg.Err))
			return m, nil
		}
		m.err = nil
		m.info = msg.Info
		m.lp = msg.LP
		m.connected = msg.Connected
		m.table.SetRows(historyRows(msg.History))
		if amount, ok := m.parsedAmount(); ok {
			return m, m.estimateCmd(amount, m.side)
		}
		return m, nil

	case EstimateMsg:
		// drop stale estimates for an amount or side that changed meanwhile
		if amount, ok := m.parsedAmount(); ok && amount == msg.Amount && msg.Side == m.side {
			m.estimate = msg.Price
			m.hasEstimate = true
		}
		return m, nil

	case WalletMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.address = msg.Address
		return m, nil

	case TickMsg:
		return m, tea.Batch(m.loadCmd(), tickCmd())
	}

	var cmd tea.Cmd
	m.amount, cmd = m.amount.Update(msg)
	return m, cmd
}

func (m TradeModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.ToggleSide):
		if m.side == market.SideBuy {
			m.side = market.SideSell
		} else {
			m.side = market.SideBuy
		}
		m.hasEstimate = false
		if amount, ok := m.parsedAmount(); ok {
			return m, m.estimateCmd(amount, m.side)
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadCmd()

	case key.Matches(msg, m.keys.Wallet):
		return m, m.walletCmd()

	case key.Matches(msg, m.keys.Submit):
		m.placeOrder()
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		m.cancelLastOrder()
		return m, nil
	}

	prev := m.amount.Value()
	var cmd tea.Cmd
	m.amount, cmd = m.amount.Update(msg)
	if m.amount.Value() == prev {
		return m, cmd
	}

	m.hasEstimate = false
	amount, ok := m.parsedAmount()
	if !ok {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.estimateCmd(amount, m.side))
}

// parsedAmount returns the input as a non-negative number.
func (m TradeModel) parsedAmount() (float64, bool) {
	raw := strings.TrimSpace(m.amount.Value())
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func (m *TradeModel) placeOrder() {
	if _, ok := m.wallet.Address(); !ok {
		m.err = wallet.ErrNotConnected
		return
	}
	amount, err := m.baseUnits()
	if err != nil {
		m.err = err
		return
	}
	if !m.hasEstimate {
		m.err = errors.New("price estimate not ready")
		return
	}
	o, err := order.New(m.side, amount, m.estimate)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.orders = append(m.orders, o)
	m.logger.Info("Order placed",
		zap.String("order_id", o.ID),
		zap.String("side", string(o.Side)),
		zap.Int64("amount", o.Amount),
		zap.Float64("price", o.Price))
}

// baseUnits converts the input into rune base units using the token's
// divisibility. More decimal places than the rune allows is an error.
func (m TradeModel) baseUnits() (int64, error) {
	var divisibility uint8
	if m.info != nil {
		divisibility = m.info.Divisibility
	}
	d, err := decimal.NewFromString(strings.TrimSpace(m.amount.Value()))
	if err != nil || !d.IsPositive() {
		return 0, errors.New("order amount must be a positive number")
	}
	units := d.Shift(int32(divisibility))
	if !units.IsInteger() {
		return 0, fmt.Errorf("order amount allows at most %d decimal places", divisibility)
	}
	if !units.LessThanOrEqual(decimal.NewFromInt(math.MaxInt64)) {
		return 0, errors.New("order amount is too large")
	}
	return units.IntPart(), nil
}

// cancelLastOrder cancels the newest order that is still pending.
func (m *TradeModel) cancelLastOrder() {
	for i := len(m.orders) - 1; i >= 0; i-- {
		o := m.orders[i]
		if o.Status != order.StatusPending {
			continue
		}
		if err := o.Transition(order.StatusCancelled); err != nil {
			m.err = err
			return
		}
		m.logger.Info("Order cancelled", zap.String("order_id", o.ID))
		return
	}
}

func historyRows(txs []market.Transaction) []table.Row {
	rows := make([]table.Row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, table.Row{
			tx.ID,
			string(tx.Side),
			strconv.FormatInt(tx.Amount, 10),
			fmt.Sprintf("%.2f", tx.Price),
			tx.Timestamp.Local().Format("2006-01-02 15:04"),
			string(tx.Status),
		})
	}
	return rows
}

func (m TradeModel) View() string {
	s := m.styles
	var b strings.Builder

	title := "OVT / BTC"
	if m.info != nil {
		title = fmt.Sprintf("%s (%s) / BTC", m.info.Name, m.info.Symbol)
	}
	b.WriteString(s.Title.Render(title))
	b.WriteString("\n\n")

	b.WriteString(s.Panel.Render(m.poolView()))
	b.WriteString("\n")
	b.WriteString(s.Panel.Render(m.tradeView()))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	if len(m.orders) > 0 {
		b.WriteString(m.ordersView())
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(s.Error.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m TradeModel) row(label, value string) string {
	return m.styles.Label.Render(label) + m.styles.Value.Render(value) + "\n"
}

func (m TradeModel) poolView() string {
	s := m.styles
	var b strings.Builder

	status := s.Offline.Render("offline")
	if m.connected {
		status = s.Online.Render("online")
	}
	b.WriteString(s.Label.Render("Provider") + s.Value.Render(m.provider.Name()) + " " + status + "\n")

	if m.lp == nil {
		b.WriteString(s.Muted.Render("loading pool state..."))
		return b.String()
	}
	b.WriteString(m.row("Rune reserve", strconv.FormatInt(m.lp.RuneReserve, 10)))
	b.WriteString(m.row("BTC reserve", fmt.Sprintf("%.8f BTC", market.SatsToBTC(m.lp.BTCReserveSats))))
	b.WriteString(m.row("Base price", fmt.Sprintf("%.4f sats", m.lp.BasePrice())))
	if !m.lastRefresh.IsZero() {
		b.WriteString(s.Muted.Render("updated " + m.lastRefresh.Format("15:04:05")))
	}
	return b.String()
}

func (m TradeModel) tradeView() string {
	s := m.styles
	var b strings.Builder

	side := s.Buy.Render("BUY")
	if m.side == market.SideSell {
		side = s.Sell.Render("SELL")
	}
	b.WriteString(s.Label.Render("Side") + side + "\n")
	b.WriteString(s.Label.Render("Amount") + m.amount.View() + "\n")

	price := s.Muted.Render("-")
	if m.hasEstimate {
		price = s.Price.Render(fmt.Sprintf("%.4f sats", m.estimate))
		if amount, ok := m.parsedAmount(); ok && m.lp != nil {
			price += s.Muted.Render(fmt.Sprintf("  impact %.2f%%", market.ImpactFraction(m.lp.RuneReserve, amount)*100))
		}
	}
	b.WriteString(s.Label.Render("Est. price") + price + "\n")

	addr := s.Muted.Render("not connected")
	if m.address != "" {
		addr = s.Value.Render(m.address)
	}
	b.WriteString(s.Label.Render("Wallet") + addr + s.Muted.Render(" ("+m.wallet.Network()+")"))
	return b.String()
}

func (m TradeModel) ordersView() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.Muted.Render("Orders") + "\n")

	start := 0
	if len(m.orders) > maxOrdersShown {
		start = len(m.orders) - maxOrdersShown
	}
	for _, o := range m.orders[start:] {
		sideStyle := s.Buy
		if o.Side == market.SideSell {
			sideStyle = s.Sell
		}
		b.WriteString(fmt.Sprintf("%s %s %d @ %.4f  %s\n",
			s.Muted.Render(o.ID[:8]),
			sideStyle.Render(string(o.Side)),
			o.Amount, o.Price,
			string(o.Status)))
	}
	return b.String()
}

// Orders returns the orders placed during this session.
func (m TradeModel) Orders() []*order.Order {
	return m.orders
}
