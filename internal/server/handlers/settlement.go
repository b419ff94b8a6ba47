package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tuncanbit/ses/internal/application/settlement"
	"github.com/tuncanbit/ses/internal/domain"
)

type SettlementHandler struct {
	settlementService settlement.ISettlementService
	logger            zerolog.Logger
}

func NewSettlementHandler(settlementService settlement.ISettlementService, logger zerolog.Logger) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
		logger:            logger,
	}
}

func (h *SettlementHandler) Settle(c *gin.Context) {
	var req domain.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": err.Error(),
		})
		return
	}

	result, err := h.settlementService.Settle(c.Request.Context(), req)
	if err != nil {
		h.writeSettleError(c, req, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transaction_id": result.TransactionID,
		"amount_settled": result.AmountSettled,
	})
}

func (h *SettlementHandler) Intake(c *gin.Context) {
	var req domain.IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": err.Error(),
		})
		return
	}

	request, err := h.settlementService.Intake(c.Request.Context(), req)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			c.JSON(rejectionStatus(verr.Reason), gin.H{"reason": verr.Reason, "message": verr.Error()})
			return
		}
		h.logger.Error().Err(err).Msg("Withdrawal intake failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusCreated, request)
}

func (h *SettlementHandler) writeSettleError(c *gin.Context, req domain.SettleRequest, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.JSON(rejectionStatus(verr.Reason), gin.H{"reason": verr.Reason, "message": verr.Error()})
		return
	}

	var berr *domain.InsufficientBalanceError
	if errors.As(err, &berr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"reason":    "insufficient_balance",
			"available": berr.Available,
			"requested": berr.Requested,
		})
		return
	}

	var perr *domain.PaymentError
	if errors.As(err, &perr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"reason":    "payment_failed",
			"error":     perr.Code,
			"message":   perr.Detail,
			"retryable": perr.Retryable(),
		})
		return
	}

	var rerr *domain.ReconciliationError
	if errors.As(err, &rerr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"reason":         "reconciliation_required",
			"transaction_id": rerr.TransactionID,
		})
		return
	}

	h.logger.Error().Err(err).Str("request_id", req.RequestID).Msg("Settlement failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
}

func rejectionStatus(reason domain.RejectionReason) int {
	switch reason {
	case domain.RejectNotFound:
		return http.StatusNotFound
	case domain.RejectForbidden:
		return http.StatusForbidden
	case domain.RejectAlreadyProcessed, domain.RejectDuplicateRequest:
		return http.StatusConflict
	case domain.RejectRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadRequest
	}
}
