package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tuncanbit/ses/internal/application/balance"
	"github.com/tuncanbit/ses/internal/application/settlement"
	"github.com/tuncanbit/ses/pkg/config"
)

type Handlers struct {
	SettlementSvc settlement.ISettlementService
	BalanceSvc    balance.IBalanceService
	Logger        zerolog.Logger
	Config        *config.Config
}

func New(settlementSvc settlement.ISettlementService, balanceSvc balance.IBalanceService, logger zerolog.Logger, config *config.Config) *Handlers {
	return &Handlers{
		SettlementSvc: settlementSvc,
		BalanceSvc:    balanceSvc,
		Logger:        logger,
		Config:        config,
	}
}

func (h *Handlers) SetupHandlers(router *gin.Engine) {
	settlementHandler := NewSettlementHandler(h.SettlementSvc, h.Logger)
	balanceHandler := NewBalanceHandler(h.BalanceSvc, h.Logger)
	healthHandler := NewHealthHandler()

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/v1")
	{
		withdrawals := v1.Group("/withdrawals")
		{
			withdrawals.POST("/", settlementHandler.Intake)
			withdrawals.POST("/settle", settlementHandler.Settle)
		}

		participants := v1.Group("/participants")
		{
			participants.GET("/:participant_id/balance", balanceHandler.GetBalance)
		}
	}
}
