package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mango-sync-backend/internal/model"
	"mango-sync-backend/internal/mw"
	"mango-sync-backend/internal/respond"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription registers or replaces the farmer's push subscription for an endpoint.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	sub := model.PushSubscription{
		Endpoint: req.Endpoint,
		FarmerID: mw.Farmer(c).ID,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.UpsertSubscription(c.Request.Context(), &sub); err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusCreated, "Subscription saved", nil)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the farmer's push subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	if err := h.store.DeleteSubscription(c.Request.Context(), mw.Farmer(c).ID, req.Endpoint); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// rawQueryParam reads key from the raw query without URL decoding, since push
// endpoints are stored exactly as the browser reported them.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription reports whether the endpoint is subscribed for the farmer.
func (h *Handler) GetSubscription(c *gin.Context) {
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		respond.Invalid(c, "endpoint", "is required")
		return
	}

	sub, err := h.store.SubscriptionByEndpoint(c.Request.Context(), mw.Farmer(c).ID, raw)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "", gin.H{
		"endpoint":   sub.Endpoint,
		"created_at": sub.CreatedAt,
	})
}
