package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mango-sync-backend/internal/respond"
	"mango-sync-backend/internal/season"
)

// ListSeasons returns the full advisory for all twelve months.
func (h *Handler) ListSeasons(c *gin.Context) {
	cal, err := h.catalog.Calendar(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "", gin.H{"seasons": cal.All()})
}

// SeasonSummary returns the title and short description of every month.
func (h *Handler) SeasonSummary(c *gin.Context) {
	cal, err := h.catalog.Calendar(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "", gin.H{"seasons": cal.Summary()})
}

// GetSeason returns one month's advisory with links to its neighbours in the cycle.
func (h *Handler) GetSeason(c *gin.Context) {
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		respond.Invalid(c, "month", "must be a number between 1 and 12")
		return
	}
	cal, err := h.catalog.Calendar(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	current, err := cal.DetailsFor(month)
	if err != nil {
		respond.Error(c, err)
		return
	}

	next, err := season.NextMonth(month)
	if err != nil {
		respond.Error(c, err)
		return
	}
	prev, err := season.PreviousMonth(month)
	if err != nil {
		respond.Error(c, err)
		return
	}
	nextSeason, _ := cal.DetailsFor(next)
	prevSeason, _ := cal.DetailsFor(prev)

	respond.Success(c, http.StatusOK, "", gin.H{
		"season":         current,
		"next_month":     seasonLink{Month: next, Title: nextSeason.Title},
		"previous_month": seasonLink{Month: prev, Title: prevSeason.Title},
	})
}
