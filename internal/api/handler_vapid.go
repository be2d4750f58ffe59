package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mango-sync-backend/internal/respond"
)

var errPushDisabled = errors.New("push notifications are not configured")

// GetVAPIDPublicKey returns the VAPID public key to the client.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, respond.Envelope{
			Status:  "error",
			Code:    "PUSH_DISABLED",
			Message: errPushDisabled.Error(),
		})
		return
	}

	respond.Success(c, http.StatusOK, "", gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
