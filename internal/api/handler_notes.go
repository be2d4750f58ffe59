package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mango-sync-backend/internal/apperr"
	"mango-sync-backend/internal/mw"
	"mango-sync-backend/internal/notesync"
	"mango-sync-backend/internal/parse"
	"mango-sync-backend/internal/respond"
	"mango-sync-backend/internal/store"
)

type syncNotesRequest struct {
	Notes []notesync.Upload `json:"notes" binding:"required,min=1"`
}

// SyncNotes reconciles a batch of offline notes and returns the per-item report.
func (h *Handler) SyncNotes(c *gin.Context) {
	var req syncNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	farmer := mw.Farmer(c)

	report, err := h.reconciler.Sync(c.Request.Context(), farmer.ID, req.Notes, h.clock.Now())
	if err != nil {
		var appErr *apperr.Error
		if !errors.As(err, &appErr) {
			err = apperr.Wrap(err, apperr.ErrStorage, "SYNC_FAILED", "Sync failed. Please try again.")
		}
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "Notes synced successfully", gin.H{"sync_results": report})
}

// ListNotes pages through the farmer's notes across all farms.
func (h *Handler) ListNotes(c *gin.Context) {
	farmer := mw.Farmer(c)
	q := store.NoteQuery{
		FarmerID:       farmer.ID,
		Search:         c.Query("search"),
		Sort:           parse.SortParam(c.Query("sort_by"), c.Query("sort_order"), "created_at", "created_at", "updated_at", "title"),
		Page:           parse.PositiveInt(c.Query("page"), 1, 0),
		PerPage:        parse.PositiveInt(c.Query("per_page"), store.DefaultPerPage, 100),
		IncludeDeleted: c.Query("include_deleted") == "true" || c.Query("include_deleted") == "1",
	}
	if raw := c.Query("farm_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respond.Invalid(c, "farm_id", "must be a positive integer")
			return
		}
		q.FarmID = id
	}
	h.writeNotePage(c, q, nil)
}

func (h *Handler) writeNotePage(c *gin.Context, q store.NoteQuery, extra gin.H) {
	page, err := h.store.ListNotes(c.Request.Context(), q)
	if err != nil {
		respond.Error(c, err)
		return
	}
	notes, err := toNoteResponses(page.Notes)
	if err != nil {
		respond.Error(c, err)
		return
	}

	data := gin.H{
		"notes":      notes,
		"pagination": paginate(page.Page, page.PerPage, len(notes), page.Total, page.LastPage()),
	}
	for k, v := range extra {
		data[k] = v
	}
	respond.Success(c, http.StatusOK, "", data)
}

type farmNoteCount struct {
	FarmID    int64  `json:"farm_id"`
	FarmName  string `json:"farm_name"`
	NoteCount int64  `json:"note_count"`
}

// Statistics summarizes the farmer's note activity.
func (h *Handler) Statistics(c *gin.Context) {
	farmer := mw.Farmer(c)
	now := h.clock.Now()
	monthStart, weekStart := periodStarts(now)

	stats, err := h.store.NoteStats(c.Request.Context(), farmer.ID, monthStart, weekStart)
	if err != nil {
		respond.Error(c, err)
		return
	}
	byFarm := make([]farmNoteCount, 0, len(stats.ByFarm))
	for _, f := range stats.ByFarm {
		byFarm = append(byFarm, farmNoteCount{FarmID: f.FarmID, FarmName: f.FarmName, NoteCount: f.Count})
	}
	recent, err := toNoteResponses(stats.Recent)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.Success(c, http.StatusOK, "", gin.H{
		"total_notes":      stats.Total,
		"notes_this_month": stats.ThisMonth,
		"notes_this_week":  stats.ThisWeek,
		"notes_by_farm":    byFarm,
		"recent_activity":  recent,
	})
}

// periodStarts returns midnight UTC on the first of now's month and on the
// Monday of now's week.
func periodStarts(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	offset := (int(now.Weekday()) + 6) % 7
	weekStart := time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, time.UTC)
	return monthStart, weekStart
}
