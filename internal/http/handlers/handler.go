package handlers

import (
	"errors"
	"net/http"

	"nft_gifts_webapp/internal/domain"
	"nft_gifts_webapp/internal/logger"
	"nft_gifts_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB       *pgxpool.Pool
	BaseURL  string
	Deals    *service.DealService
	Accounts *service.AccountService
	Admin    *service.AdminService
}

func NewHandler(db *pgxpool.Pool, baseURL string) *Handler {
	return &Handler{
		DB:       db,
		BaseURL:  baseURL,
		Deals:    service.NewDealService(db),
		Accounts: service.NewAccountService(db),
		Admin:    service.NewAdminService(db),
	}
}

// fail writes the flat {success:false, message} error shape every
// endpoint shares.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// serviceError maps typed service errors to transport responses:
// validation errors reject the request with no mutation, not-found reads
// answer 404, anything else is an unexpected failure.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingTelegramID),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrFractionalStars),
		errors.Is(err, service.ErrInvalidCurrency),
		errors.Is(err, service.ErrInvalidCount):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDealNotFound),
		errors.Is(err, service.ErrUserNotFound):
		fail(c, http.StatusNotFound, err.Error())
	default:
		logger.Error("unexpected handler failure", "path", c.FullPath(), "error", err)
		fail(c, http.StatusInternalServerError, err.Error())
	}
}

func userJSON(u *domain.User) gin.H {
	return gin.H{
		"telegram_id":      u.TelegramID,
		"username":         u.Username,
		"first_name":       u.FirstName,
		"balance_stars":    u.BalanceStars,
		"balance_rub":      u.BalanceRub.InexactFloat64(),
		"successful_deals": u.SuccessfulDeals,
		"created_at":       u.CreatedAt,
	}
}

func dealJSON(d *domain.Deal) gin.H {
	return gin.H{
		"id":           d.ID,
		"seller_id":    d.SellerID,
		"buyer_id":     d.BuyerID,
		"nft_link":     d.NftLink,
		"nft_username": d.NftUsername,
		"amount":       d.Amount.InexactFloat64(),
		"currency":     d.Currency,
		"status":       d.Status,
		"created_at":   d.CreatedAt,
		"description":  d.Description,
	}
}

func dealListJSON(deals []*domain.Deal) []gin.H {
	out := make([]gin.H, 0, len(deals))
	for _, d := range deals {
		out = append(out, dealJSON(d))
	}
	return out
}
