package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mango-sync-backend/internal/mw"
	"mango-sync-backend/internal/respond"
	"mango-sync-backend/internal/store"
)

// GetProfile returns the calling farmer with farm totals.
func (h *Handler) GetProfile(c *gin.Context) {
	farmer := mw.Farmer(c)
	totals, err := h.store.FarmerTotals(c.Request.Context(), farmer.ID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	resp, err := toFarmerResponse(farmer)
	if err != nil {
		respond.Error(c, err)
		return
	}
	resp.TotalFarms = &totals.TotalFarms
	resp.TotalSize = &totals.TotalSize

	respond.Success(c, http.StatusOK, "", gin.H{"farmer": resp})
}

type updateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=255"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	District *string `json:"district" binding:"omitempty,max=255"`
	Village  *string `json:"village" binding:"omitempty,max=255"`
}

// UpdateProfile edits the calling farmer's profile. Absent fields keep their value.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	farmer := mw.Farmer(c)

	fields := store.FarmerFields{
		Name:     pick(req.Name, farmer.Name),
		Phone:    pick(req.Phone, farmer.Phone),
		Email:    pick(req.Email, farmer.Email),
		District: pick(req.District, farmer.District),
		Village:  pick(req.Village, farmer.Village),
	}
	updated, err := h.store.UpdateFarmer(c.Request.Context(), farmer.ID, fields)
	if err != nil {
		respond.Error(c, err)
		return
	}
	resp, err := toFarmerResponse(updated)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "Profile updated successfully", gin.H{"farmer": resp})
}

func pick(v *string, current string) string {
	if v == nil {
		return current
	}
	return strings.TrimSpace(*v)
}
