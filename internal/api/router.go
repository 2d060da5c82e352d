package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Config struct {
	Handler *Handler
	Logger  *zap.Logger

	// RateLimit запросов в секунду на клиента, 0 - без ограничения
	RateLimit float64
	Burst     int

	// TrustedProxies: чьим X-Forwarded-For верить при определении IP клиента.
	// nil - только адрес соединения.
	TrustedProxies []string
	// AdminToken для POST /v1/nav и /v1/buyback
	AdminToken string
}

func NewRouter(cfg *Config) *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		cfg.Logger.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(requestLogger(cfg.Logger), recovery(cfg.Logger))

	router.GET("/healthz", cfg.Handler.Healthz)

	api := router.Group("/v1/")
	if cfg.RateLimit > 0 {
		api.Use(rateLimit(newClientLimiter(cfg.RateLimit, cfg.Burst)))
	}
	registerMarketRoutes(api, cfg.Handler)
	registerTreasuryRoutes(api, cfg.Handler, requireAdmin(cfg.AdminToken, cfg.Logger))

	return router
}

func registerMarketRoutes(router *gin.RouterGroup, h *Handler) {
	router.GET("/rune", h.GetRuneInfo)
	router.GET("/balances", h.GetRuneBalances)
	router.GET("/distribution", h.GetDistributionStats)
	router.GET("/lp", h.GetLPInfo)
	router.GET("/impact", h.EstimatePriceImpact)
	router.GET("/connectivity", h.CheckConnectivity)

	txs := router.Group("/transactions")
	{
		txs.GET("", h.GetTransactionHistory)
		txs.GET("/:id", h.GetTransactionInfo)
	}
	router.GET("/export/transactions", h.ExportTransactions)
}

func registerTreasuryRoutes(router *gin.RouterGroup, h *Handler, admin gin.HandlerFunc) {
	router.GET("/nav", h.GetNAV)
	router.POST("/nav", admin, h.UpdateNAV)
	router.POST("/buyback", admin, h.BuybackBurn)
}
