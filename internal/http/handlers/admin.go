package handlers

import (
	"fmt"
	"net/http"

	"nft_gifts_webapp/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListUsers returns every registered user, newest first.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Admin.ListUsers(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, userJSON(u))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "users": out})
}

type addBalanceRequest struct {
	TelegramID domain.TelegramID `json:"telegram_id"`
	Amount     decimal.Decimal   `json:"amount"`
	Currency   string            `json:"currency"`
}

// AddBalance additively credits a user's balance in the given currency.
func (h *Handler) AddBalance(c *gin.Context) {
	var req addBalanceRequest
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.Accounts.AddBalance(c.Request.Context(), req.TelegramID.String(), req.Amount, req.Currency)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("balance credited with %s %s", req.Amount.String(), req.Currency),
	})
}

type updateDealsRequest struct {
	TelegramID domain.TelegramID `json:"telegram_id"`
	DealsCount *int64            `json:"deals_count"`
}

// UpdateDeals overwrites a user's successful deals counter.
func (h *Handler) UpdateDeals(c *gin.Context) {
	var req updateDealsRequest
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.DealsCount == nil {
		fail(c, http.StatusBadRequest, "deals_count is required")
		return
	}

	err := h.Accounts.SetDealsCount(c.Request.Context(), req.TelegramID.String(), *req.DealsCount)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("deals count set to %d", *req.DealsCount),
	})
}

type resetBalanceRequest struct {
	TelegramID domain.TelegramID `json:"telegram_id"`
}

// ResetBalance zeroes both balances and the deals counter.
func (h *Handler) ResetBalance(c *gin.Context) {
	var req resetBalanceRequest
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Accounts.Reset(c.Request.Context(), req.TelegramID.String()); err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "balances and deals counter reset"})
}

// Stats returns the platform aggregates.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.Admin.GetStats(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}
