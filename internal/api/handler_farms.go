package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mango-sync-backend/internal/apperr"
	"mango-sync-backend/internal/identity"
	"mango-sync-backend/internal/model"
	"mango-sync-backend/internal/mw"
	"mango-sync-backend/internal/notification"
	"mango-sync-backend/internal/parse"
	"mango-sync-backend/internal/respond"
	"mango-sync-backend/internal/season"
	"mango-sync-backend/internal/store"
)

const (
	farmListNotes   = 3
	farmDetailNotes = 10
)

type createFarmRequest struct {
	FarmerName   string   `json:"farmer_name" binding:"omitempty,max=255"`
	FarmerPhone  string   `json:"farmer_phone" binding:"omitempty,max=20"`
	FarmName     string   `json:"farm_name" binding:"required,max=255"`
	FarmSize     *float64 `json:"farm_size" binding:"required,min=0,max=999999.99"`
	FarmDistrict string   `json:"farm_district" binding:"required,max=255"`
	FarmVillage  string   `json:"farm_village" binding:"required,max=255"`
	PlantingDate string   `json:"planting_date" binding:"required"`
}

// CreateFarm registers a farm. Without an X-User-ID header it also creates
// the farmer and returns the UUID the device must send from then on.
func (h *Handler) CreateFarm(c *gin.Context) {
	var req createFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	ctx := c.Request.Context()

	var farmer *model.Farmer
	if header := c.GetHeader(identity.Header); header != "" {
		existing, err := h.resolver.Resolve(ctx, header)
		if err != nil {
			respond.Error(c, err)
			return
		}
		farmer = existing
	} else if strings.TrimSpace(req.FarmerName) == "" {
		respond.Invalid(c, "farmer_name", "is required")
		return
	}

	plantingDate, err := parse.Date(req.PlantingDate)
	if err != nil {
		respond.Invalid(c, "planting_date", "must be a date in the format YYYY-MM-DD")
		return
	}
	now := h.clock.Now()
	month, err := season.MonthFor(plantingDate, now)
	if err != nil {
		respond.Error(c, err)
		return
	}
	cal, err := h.catalog.Calendar(ctx)
	if err != nil {
		respond.Error(c, err)
		return
	}

	farm := model.Farm{
		Name:               strings.TrimSpace(req.FarmName),
		Size:               *req.FarmSize,
		District:           strings.TrimSpace(req.FarmDistrict),
		Village:            strings.TrimSpace(req.FarmVillage),
		PlantingDate:       plantingDate,
		CurrentSeasonMonth: month,
	}
	err = h.store.WithTx(ctx, func(tx store.Store) error {
		if farmer == nil {
			created := model.NewFarmer(strings.TrimSpace(req.FarmerName))
			created.Phone = req.FarmerPhone
			created.District = farm.District
			created.Village = farm.Village
			if err := tx.CreateFarmer(ctx, &created); err != nil {
				return err
			}
			farmer = &created
		}
		farm.FarmerID = farmer.ID
		return tx.CreateFarm(ctx, &farm)
	})
	if err != nil {
		respond.Error(c, err)
		return
	}

	resp, err := toFarmResponse(&farm, now)
	if err != nil {
		respond.Error(c, err)
		return
	}
	current, err := cal.DetailsFor(month)
	if err != nil {
		respond.Error(c, err)
		return
	}

	h.logger.Info("farm created", zap.Int64("farmer_id", farmer.ID), zap.Int64("farm_id", farm.ID))
	respond.Success(c, http.StatusCreated, "Farm registered successfully", gin.H{
		"farm":                resp,
		"farmer_uuid":         farmer.UUID,
		"current_season":      current,
		"all_seasons_summary": cal.Summary(),
	})
}

// ListFarms returns the farmer's farms with their latest notes.
func (h *Handler) ListFarms(c *gin.Context) {
	ctx := c.Request.Context()
	farmer := mw.Farmer(c)

	farms, err := h.store.ListFarms(ctx, farmer.ID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	now := h.clock.Now()
	out := make([]farmResponse, 0, len(farms))
	var totalSize float64
	for i := range farms {
		resp, err := h.farmWithNotes(ctx, &farms[i], farmListNotes, now)
		if err != nil {
			respond.Error(c, err)
			return
		}
		totalSize += farms[i].Size
		out = append(out, resp)
	}

	respond.Success(c, http.StatusOK, "", gin.H{
		"farms":       out,
		"total_farms": len(farms),
		"total_size":  totalSize,
	})
}

// GetFarm returns one farm with its recent notes and current season.
func (h *Handler) GetFarm(c *gin.Context) {
	farm, ok := h.ownedFarm(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.refreshSeason(ctx, farm); err != nil {
		respond.Error(c, err)
		return
	}
	resp, err := h.farmWithNotes(ctx, farm, farmDetailNotes, h.clock.Now())
	if err != nil {
		respond.Error(c, err)
		return
	}
	counts, err := h.store.CountNotesByFarm(ctx, []int64{farm.ID})
	if err != nil {
		respond.Error(c, err)
		return
	}
	total := counts[farm.ID]
	resp.NotesCount = &total

	cal, err := h.catalog.Calendar(ctx)
	if err != nil {
		respond.Error(c, err)
		return
	}
	current, err := cal.DetailsFor(farm.CurrentSeasonMonth)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.Success(c, http.StatusOK, "", gin.H{"farm": resp, "current_season": current})
}

type updateFarmRequest struct {
	FarmName     *string  `json:"farm_name" binding:"omitempty,min=1,max=255"`
	FarmSize     *float64 `json:"farm_size" binding:"omitempty,min=0,max=999999.99"`
	FarmDistrict *string  `json:"farm_district" binding:"omitempty,min=1,max=255"`
	FarmVillage  *string  `json:"farm_village" binding:"omitempty,min=1,max=255"`
	PlantingDate *string  `json:"planting_date"`
}

// UpdateFarm applies a partial update. A new planting date recomputes the season month.
func (h *Handler) UpdateFarm(c *gin.Context) {
	var req updateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	farm, ok := h.ownedFarm(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	now := h.clock.Now()

	fields := map[string]any{}
	if req.FarmName != nil {
		fields["name"] = strings.TrimSpace(*req.FarmName)
	}
	if req.FarmSize != nil {
		fields["size"] = *req.FarmSize
	}
	if req.FarmDistrict != nil {
		fields["district"] = strings.TrimSpace(*req.FarmDistrict)
	}
	if req.FarmVillage != nil {
		fields["village"] = strings.TrimSpace(*req.FarmVillage)
	}
	if req.PlantingDate != nil {
		plantingDate, err := parse.Date(*req.PlantingDate)
		if err != nil {
			respond.Invalid(c, "planting_date", "must be a date in the format YYYY-MM-DD")
			return
		}
		month, err := season.MonthFor(plantingDate, now)
		if err != nil {
			respond.Error(c, err)
			return
		}
		fields["planting_date"] = plantingDate
		fields["current_season_month"] = month
	}

	updated, err := h.store.UpdateFarm(ctx, farm.ID, fields)
	if err != nil {
		respond.Error(c, err)
		return
	}
	resp, err := toFarmResponse(updated, now)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "Farm updated successfully", gin.H{"farm": resp})
}

// DeleteFarm removes a farm and its notes.
func (h *Handler) DeleteFarm(c *gin.Context) {
	farm, ok := h.ownedFarm(c)
	if !ok {
		return
	}
	if err := h.store.DeleteFarm(c.Request.Context(), farm.ID); err != nil {
		respond.Error(c, err)
		return
	}
	h.logger.Info("farm deleted", zap.Int64("farm_id", farm.ID), zap.Int64("farmer_id", farm.FarmerID))
	respond.Success(c, http.StatusOK, "Farm deleted successfully", nil)
}

// CurrentSeason brings the farm's season month up to date and returns its advice.
func (h *Handler) CurrentSeason(c *gin.Context) {
	farm, ok := h.ownedFarm(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	changed, err := h.refreshSeason(ctx, farm)
	if err != nil {
		respond.Error(c, err)
		return
	}
	cal, err := h.catalog.Calendar(ctx)
	if err != nil {
		respond.Error(c, err)
		return
	}
	current, err := cal.DetailsFor(farm.CurrentSeasonMonth)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.Success(c, http.StatusOK, "", gin.H{
		"farm_id":       farm.ID,
		"farm_name":     farm.Name,
		"current_month": farm.CurrentSeasonMonth,
		"season":        current,
		"updated":       changed,
	})
}

// FarmNotes pages through one farm's notes.
func (h *Handler) FarmNotes(c *gin.Context) {
	farm, ok := h.ownedFarm(c)
	if !ok {
		return
	}
	q := store.NoteQuery{
		FarmerID: farm.FarmerID,
		FarmID:   farm.ID,
		Search:   c.Query("search"),
		Sort:     parse.Sort{Field: "created_at", Desc: true},
		Page:     parse.PositiveInt(c.Query("page"), 1, 0),
		PerPage:  parse.PositiveInt(c.Query("per_page"), 20, 50),
	}
	h.writeNotePage(c, q, gin.H{"farm": farmSummary{ID: farm.ID, Name: farm.Name, District: farm.District, Village: farm.Village}})
}

// ownedFarm loads the :id farm for the calling farmer, writing the error
// response itself when it cannot.
func (h *Handler) ownedFarm(c *gin.Context) (*model.Farm, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, apperr.New(apperr.ErrNotFound, "FARM_NOT_FOUND", "farm not found"))
		return nil, false
	}
	farm, err := identity.OwnedFarm(c.Request.Context(), h.store, mw.Farmer(c), id)
	if err != nil {
		respond.Error(c, err)
		return nil, false
	}
	return farm, true
}

func (h *Handler) farmWithNotes(ctx context.Context, farm *model.Farm, limit int, now time.Time) (farmResponse, error) {
	resp, err := toFarmResponse(farm, now)
	if err != nil {
		return farmResponse{}, err
	}
	notes, err := h.store.RecentNotes(ctx, farm.ID, limit)
	if err != nil {
		return farmResponse{}, err
	}
	resp.RecentNotes, err = toNoteResponses(notes)
	if err != nil {
		return farmResponse{}, err
	}
	return resp, nil
}

// refreshSeason recomputes the farm's season month and, on a change, queues
// a push notification for the farmer.
func (h *Handler) refreshSeason(ctx context.Context, farm *model.Farm) (bool, error) {
	changed, err := season.NewTracker(farm, h.store).Refresh(ctx, h.clock.Now())
	if err != nil {
		return false, err
	}
	if h.refreshes != nil {
		h.refreshes.RecordSeasonRefresh(changed)
	}
	if !changed {
		return false, nil
	}

	h.logger.Info("farm entered a new season month",
		zap.Int64("farm_id", farm.ID),
		zap.Int("month", farm.CurrentSeasonMonth))
	if h.notifier == nil {
		return true, nil
	}
	cal, err := h.catalog.Calendar(ctx)
	if err != nil {
		return true, err
	}
	current, err := cal.DetailsFor(farm.CurrentSeasonMonth)
	if err != nil {
		return true, err
	}
	h.notifier.Dispatch(notification.SeasonChange{
		FarmerID:    farm.FarmerID,
		FarmName:    farm.Name,
		Month:       farm.CurrentSeasonMonth,
		SeasonTitle: current.Title,
	})
	return true, nil
}
