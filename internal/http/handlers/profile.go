package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserProfile creates the user row on first sight and returns it.
func (h *Handler) UserProfile(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		fail(c, http.StatusBadRequest, "user_id is required")
		return
	}

	user, err := h.Accounts.Profile(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": userJSON(user)})
}
