package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mango-sync-backend/internal/mw"
	"mango-sync-backend/internal/respond"
)

const dataRetentionDays = 90

// InitialPackage returns everything a freshly installed app needs to work
// offline: the farmer, their farms, and the full season calendar.
func (h *Handler) InitialPackage(c *gin.Context) {
	ctx := c.Request.Context()
	farmer := mw.Farmer(c)
	now := h.clock.Now()

	farms, err := h.store.ListFarms(ctx, farmer.ID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	out := make([]farmResponse, 0, len(farms))
	for i := range farms {
		if _, err := h.refreshSeason(ctx, &farms[i]); err != nil {
			respond.Error(c, err)
			return
		}
		resp, err := toFarmResponse(&farms[i], now)
		if err != nil {
			respond.Error(c, err)
			return
		}
		out = append(out, resp)
	}

	cal, err := h.catalog.Calendar(ctx)
	if err != nil {
		respond.Error(c, err)
		return
	}
	profile, err := toFarmerResponse(farmer)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.Success(c, http.StatusOK, "", gin.H{
		"farmer":  profile,
		"farms":   out,
		"seasons": cal.All(),
		"app_settings": gin.H{
			"notification_frequency": "monthly",
			"data_retention_days":    dataRetentionDays,
			"version":                h.server.AppVersion,
		},
		"sync_timestamp": now,
	})
}
