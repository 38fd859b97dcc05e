package handlers

import (
	"net/http"

	"nft_gifts_webapp/internal/domain"
	"nft_gifts_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type telegramUserPayload struct {
	ID        domain.TelegramID `json:"id"`
	Username  string            `json:"username"`
	FirstName string            `json:"first_name"`
}

type createDealRequest struct {
	TelegramUser *telegramUserPayload `json:"telegram_user"`
	NftLink      string               `json:"nft_link"`
	NftUsername  string               `json:"nft_username"`
	Amount       decimal.Decimal      `json:"amount"`
	Currency     string               `json:"currency"`
	Description  string               `json:"description"`
}

// CreateDeal registers a trade intent and returns the shareable deal link.
func (h *Handler) CreateDeal(c *gin.Context) {
	var req createDealRequest
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.TelegramUser == nil || req.TelegramUser.ID == "" {
		fail(c, http.StatusBadRequest, "telegram user data is required")
		return
	}

	deal, err := h.Deals.Create(c.Request.Context(), service.CreateDealInput{
		SellerID:    req.TelegramUser.ID.String(),
		Username:    req.TelegramUser.Username,
		FirstName:   req.TelegramUser.FirstName,
		NftLink:     req.NftLink,
		NftUsername: req.NftUsername,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"deal_id":  deal.ID,
		"deal_url": h.dealURL(c, deal.ID),
	})
}

// dealURL builds the shareable view link from the configured base URL,
// falling back to the request host.
func (h *Handler) dealURL(c *gin.Context, dealID string) string {
	base := h.BaseURL
	if base == "" {
		scheme := "https"
		if c.Request.TLS == nil && c.GetHeader("X-Forwarded-Proto") == "" {
			scheme = "http"
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + "/deal/" + dealID
}

// GetDeal returns a deal by its shareable id.
func (h *Handler) GetDeal(c *gin.Context) {
	deal, err := h.Deals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deal": dealJSON(deal)})
}

// MyDeals lists the user's deals in both roles, newest first.
func (h *Handler) MyDeals(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		fail(c, http.StatusBadRequest, "user_id is required")
		return
	}

	seller, buyer, err := h.Deals.ListFor(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"seller_deals": dealListJSON(seller),
		"buyer_deals":  dealListJSON(buyer),
	})
}
