package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tuncanbit/ses/internal/application/balance"
)

type BalanceHandler struct {
	balanceService balance.IBalanceService
	logger         zerolog.Logger
}

func NewBalanceHandler(balanceService balance.IBalanceService, logger zerolog.Logger) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
		logger:         logger,
	}
}

func (h *BalanceHandler) GetBalance(c *gin.Context) {
	participantID := c.Param("participant_id")
	if participantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Participant ID is required",
		})
		return
	}

	breakdown, err := h.balanceService.Breakdown(c.Request.Context(), participantID)
	if err != nil {
		h.logger.Error().Err(err).Str("participant_id", participantID).Msg("Failed to compute balance")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to load balance",
		})
		return
	}

	c.JSON(http.StatusOK, breakdown)
}
