package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/otori-vision/ovt-trader/internal/export"
	"github.com/otori-vision/ovt-trader/internal/logger"
	"github.com/otori-vision/ovt-trader/internal/market"
	"github.com/otori-vision/ovt-trader/internal/nav"
	"github.com/otori-vision/ovt-trader/internal/provider"
)

type Handler struct {
	provider provider.Provider
	nav      *nav.Store
	exporter *export.TransactionExporter
	logger   *zap.Logger
}

func NewHandler(p provider.Provider, store *nav.Store, logger *zap.Logger) *Handler {
	return &Handler{
		provider: p,
		nav:      store,
		exporter: export.NewTransactionExporter(logger),
		logger:   logger.Named("api"),
	}
}

// ImpactResponse ответ /v1/impact
type ImpactResponse struct {
	Side      market.Side `json:"side"`
	Amount    float64     `json:"amount"`
	Price     float64     `json:"price"`
	BasePrice float64     `json:"base_price"`
	Impact    float64     `json:"impact"`
}

type navRequest struct {
	NAVSats uint64 `json:"nav_sats"`
}

type buybackRequest struct {
	PaymentSats uint64 `json:"payment_sats"`
}

// BuybackResponse ответ /v1/buyback
type BuybackResponse struct {
	Burned uint64    `json:"burned"`
	State  nav.State `json:"state"`
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

func (h *Handler) GetRuneInfo(c *gin.Context) {
	info, err := h.provider.GetRuneInfo(c.Request.Context())
	if err != nil {
		h.providerError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) GetRuneBalances(c *gin.Context) {
	balances, err := h.provider.GetRuneBalances(c.Request.Context())
	if err != nil {
		h.providerError(c, err)
		return
	}
	c.JSON(http.StatusOK, balances)
}

func (h *Handler) GetDistributionStats(c *gin.Context) {
	stats, err := h.provider.GetDistributionStats(c.Request.Context())
	if err != nil {
		h.providerError(c, err)
		return
	}
	if err := stats.Check(); err != nil {
		h.logger.Warn("Distribution stats inconsistent", zap.Error(err))
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetLPInfo(c *gin.Context) {
	lp, err := h.provider.GetLPInfo(c.Request.Context())
	if err != nil {
		h.providerError(c, err)
		return
	}
	c.JSON(http.StatusOK, lp)
}

func (h *Handler) GetTransactionHistory(c *gin.Context) {
	txs, err := h.provider.GetTransactionHistory(c.Request.Context())
	if err != nil {
		h.providerError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (h *Handler) GetTransactionInfo(c *gin.Context) {
	tx, err := h.provider.GetTransactionInfo(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.providerError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// ExportTransactions: GET /v1/export/transactions?format=csv|json&side=&status=&since=&until=
func (h *Handler) ExportTransactions(c *gin.Context) {
	opts, err := exportOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txs, err := h.provider.GetTransactionHistory(c.Request.Context())
	if err != nil {
		h.providerError(c, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if opts.Format == export.FormatJSON {
		contentType = "application/json; charset=utf-8"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=transactions_%s.%s",
		time.Now().UTC().Format("20060102_150405"), opts.Format))
	c.Status(http.StatusOK)

	log := logger.WithOperation(h.logger, "export_transactions")
	n, err := h.exporter.Write(c.Writer, txs, opts)
	if err != nil {
		log.Error("Transaction export failed", zap.Error(err))
		return
	}
	log.Debug("Transaction export served",
		zap.Int("count", n),
		zap.String("client_ip", c.ClientIP()))
}

func exportOptions(c *gin.Context) (export.Options, error) {
	var opts export.Options

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return opts, err
	}
	opts.Format = format

	if raw := c.Query("side"); raw != "" {
		side, ok := market.ParseSide(raw)
		if !ok {
			return opts, errors.New("side must be buy or sell")
		}
		opts.Side = side
	}
	if raw := c.Query("status"); raw != "" {
		switch status := market.TxStatus(raw); status {
		case market.TxConfirmed, market.TxPending, market.TxFailed:
			opts.Status = status
		default:
			return opts, fmt.Errorf("unknown status %q", raw)
		}
	}
	for key, dst := range map[string]*time.Time{"since": &opts.Since, "until": &opts.Until} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return opts, fmt.Errorf("%s must be an RFC3339 timestamp", key)
		}
		*dst = t
	}
	return opts, nil
}

func (h *Handler) CheckConnectivity(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"provider":  h.provider.Name(),
		"connected": h.provider.CheckConnectivity(c.Request.Context()),
	})
}

// EstimatePriceImpact: GET /v1/impact?amount=<float>&side=buy|sell
func (h *Handler) EstimatePriceImpact(c *gin.Context) {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil || amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a non-negative number"})
		return
	}
	side, ok := market.ParseSide(c.DefaultQuery("side", string(market.SideBuy)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be buy or sell"})
		return
	}

	ctx := c.Request.Context()
	resp := ImpactResponse{
		Side:   side,
		Amount: amount,
		Price:  h.provider.EstimatePriceImpact(ctx, amount, side.IsBuy()),
	}
	if lp, err := h.provider.GetLPInfo(ctx); err == nil {
		resp.BasePrice = lp.BasePrice()
		resp.Impact = market.ImpactFraction(lp.RuneReserve, amount)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetNAV(c *gin.Context) {
	c.JSON(http.StatusOK, h.nav.Snapshot())
}

func (h *Handler) UpdateNAV(c *gin.Context) {
	var req navRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := h.nav.UpdateNAV(req.NAVSats)
	if err != nil {
		treasuryError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) BuybackBurn(c *gin.Context) {
	var req buybackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	burned, state, err := h.nav.BuybackBurn(req.PaymentSats)
	if err != nil {
		treasuryError(c, err)
		return
	}
	c.JSON(http.StatusOK, BuybackResponse{Burned: burned, State: state})
}

func (h *Handler) providerError(c *gin.Context, err error) {
	h.logger.Error("Provider request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

// treasuryError maps rule violations to 422, anything else to 500.
func treasuryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, nav.ErrInvalidNAVUpdate),
		errors.Is(err, nav.ErrOperationTimeout),
		errors.Is(err, nav.ErrInvalidBitcoinTransaction),
		errors.Is(err, nav.ErrInsufficientFunds),
		errors.Is(err, nav.ErrInvalidSupplyChange),
		errors.Is(err, nav.ErrInvalidProgramState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
