package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mango-sync-backend/internal/apperr"
	"mango-sync-backend/internal/model"
	"mango-sync-backend/internal/parse"
)

// Store defines the interface for all database operations.
type Store interface {
	// WithTx runs fn in a transaction. Calling WithTx on a Store handed to fn
	// opens a savepoint, so a failing inner fn rolls back only its own writes.
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error

	CreateFarmer(ctx context.Context, farmer *model.Farmer) error
	FarmerByUUID(ctx context.Context, uuid string) (*model.Farmer, error)
	UpdateFarmer(ctx context.Context, farmerID int64, fields FarmerFields) (*model.Farmer, error)
	FarmerTotals(ctx context.Context, farmerID int64) (FarmerTotals, error)

	CreateFarm(ctx context.Context, farm *model.Farm) error
	FarmByID(ctx context.Context, id int64) (*model.Farm, error)
	ListFarms(ctx context.Context, farmerID int64) ([]model.Farm, error)
	UpdateFarm(ctx context.Context, farmID int64, fields map[string]any) (*model.Farm, error)
	UpdateSeasonMonth(ctx context.Context, farmID int64, month int) error
	MarkFarmsSynced(ctx context.Context, farmIDs []int64, at time.Time) error
	DeleteFarm(ctx context.Context, farmID int64) error

	NoteByClientID(ctx context.Context, farmerID int64, clientID string) (*model.Note, error)
	CreateNote(ctx context.Context, note *model.Note) error
	UpdateNote(ctx context.Context, note *model.Note) error
	ListNotes(ctx context.Context, q NoteQuery) (NotePage, error)
	RecentNotes(ctx context.Context, farmID int64, limit int) ([]model.Note, error)
	CountNotesByFarm(ctx context.Context, farmIDs []int64) (map[int64]int64, error)
	NoteStats(ctx context.Context, farmerID int64, monthStart, weekStart time.Time) (NoteStats, error)

	ListSeasons(ctx context.Context) ([]model.Season, error)
	UpsertSeasons(ctx context.Context, seasons []model.Season) error

	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	SubscriptionByEndpoint(ctx context.Context, farmerID int64, endpoint string) (*model.PushSubscription, error)
	SubscriptionsForFarmer(ctx context.Context, farmerID int64) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, farmerID int64, endpoint string) error
	DeleteExpiredSubscription(ctx context.Context, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperr.Storage("failed to get sql.DB", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperr.Storage("database unreachable", err)
	}
	return nil
}

// lookupErr classifies a single-row lookup failure.
func lookupErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(err, apperr.ErrNotFound, "NOT_FOUND", what+" not found")
	}
	return apperr.Storage("failed to load "+what, err)
}

// --- Farmers ---

func (s *gormStore) CreateFarmer(ctx context.Context, farmer *model.Farmer) error {
	if farmer.UUID == "" {
		return fmt.Errorf("farmer has no uuid; build it with model.NewFarmer")
	}
	if err := s.db.WithContext(ctx).Create(farmer).Error; err != nil {
		return apperr.Storage("failed to create farmer", err)
	}
	return nil
}

func (s *gormStore) FarmerByUUID(ctx context.Context, uuid string) (*model.Farmer, error) {
	var farmer model.Farmer
	if err := s.db.WithContext(ctx).Where("uuid = ?", uuid).First(&farmer).Error; err != nil {
		return nil, lookupErr(err, "farmer")
	}
	return &farmer, nil
}

func (s *gormStore) UpdateFarmer(ctx context.Context, farmerID int64, fields FarmerFields) (*model.Farmer, error) {
	updates := map[string]any{
		"name":     fields.Name,
		"phone":    fields.Phone,
		"email":    fields.Email,
		"district": fields.District,
		"village":  fields.Village,
	}
	res := s.db.WithContext(ctx).Model(&model.Farmer{}).Where("id = ?", farmerID).Updates(updates)
	if res.Error != nil {
		return nil, apperr.Storage("failed to update farmer", res.Error)
	}
	var farmer model.Farmer
	if err := s.db.WithContext(ctx).First(&farmer, farmerID).Error; err != nil {
		return nil, lookupErr(err, "farmer")
	}
	return &farmer, nil
}

func (s *gormStore) FarmerTotals(ctx context.Context, farmerID int64) (FarmerTotals, error) {
	var totals FarmerTotals
	err := s.db.WithContext(ctx).
		Model(&model.Farm{}).
		Select("COUNT(*) AS total_farms, COALESCE(SUM(size), 0) AS total_size").
		Where("farmer_id = ?", farmerID).
		Scan(&totals).Error
	if err != nil {
		return FarmerTotals{}, apperr.Storage("failed to aggregate farms", err)
	}
	return totals, nil
}

// --- Farms ---

func (s *gormStore) CreateFarm(ctx context.Context, farm *model.Farm) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(farm).Error; err != nil {
		return apperr.Storage("failed to create farm", err)
	}
	return nil
}

func (s *gormStore) FarmByID(ctx context.Context, id int64) (*model.Farm, error) {
	var farm model.Farm
	if err := s.db.WithContext(ctx).First(&farm, id).Error; err != nil {
		return nil, lookupErr(err, "farm")
	}
	return &farm, nil
}

func (s *gormStore) ListFarms(ctx context.Context, farmerID int64) ([]model.Farm, error) {
	var farms []model.Farm
	if err := s.db.WithContext(ctx).Where("farmer_id = ?", farmerID).Order("id").Find(&farms).Error; err != nil {
		return nil, apperr.Storage("failed to list farms", err)
	}
	return farms, nil
}

func (s *gormStore) UpdateFarm(ctx context.Context, farmID int64, fields map[string]any) (*model.Farm, error) {
	if len(fields) > 0 {
		res := s.db.WithContext(ctx).Model(&model.Farm{}).Where("id = ?", farmID).Updates(fields)
		if res.Error != nil {
			return nil, apperr.Storage("failed to update farm", res.Error)
		}
	}
	return s.FarmByID(ctx, farmID)
}

func (s *gormStore) UpdateSeasonMonth(ctx context.Context, farmID int64, month int) error {
	res := s.db.WithContext(ctx).Model(&model.Farm{}).Where("id = ?", farmID).Update("current_season_month", month)
	if res.Error != nil {
		return apperr.Storage("failed to update season month", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "FARM_NOT_FOUND", "farm not found")
	}
	return nil
}

func (s *gormStore) MarkFarmsSynced(ctx context.Context, farmIDs []int64, at time.Time) error {
	if len(farmIDs) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&model.Farm{}).Where("id IN ?", farmIDs).
		UpdateColumn("last_synced_at", at.UTC()).Error
	if err != nil {
		return apperr.Storage("failed to mark farms synced", err)
	}
	return nil
}

// DeleteFarm removes a farm and its notes.
func (s *gormStore) DeleteFarm(ctx context.Context, farmID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("farm_id = ?", farmID).Delete(&model.Note{}).Error; err != nil {
			return apperr.Storage("failed to delete farm notes", err)
		}
		res := tx.Delete(&model.Farm{}, farmID)
		if res.Error != nil {
			return apperr.Storage("failed to delete farm", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.ErrNotFound, "FARM_NOT_FOUND", "farm not found")
		}
		return nil
	})
}

// --- Notes ---

func (s *gormStore) NoteByClientID(ctx context.Context, farmerID int64, clientID string) (*model.Note, error) {
	var note model.Note
	err := s.db.WithContext(ctx).
		Where("farmer_id = ? AND client_id = ?", farmerID, clientID).
		First(&note).Error
	if err != nil {
		return nil, lookupErr(err, "note")
	}
	return &note, nil
}

func (s *gormStore) CreateNote(ctx context.Context, note *model.Note) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(note).Error; err != nil {
		return apperr.Storage("failed to create note", err)
	}
	return nil
}

// UpdateNote overwrites the client-authored fields of an existing note in one statement.
func (s *gormStore) UpdateNote(ctx context.Context, note *model.Note) error {
	res := s.db.WithContext(ctx).Model(&model.Note{}).Where("id = ?", note.ID).Updates(map[string]any{
		"title":      note.Title,
		"content":    note.Content,
		"is_deleted": note.IsDeleted,
		"updated_at": note.UpdatedAt.UTC(),
		"synced_at":  note.SyncedAt.UTC(),
	})
	if res.Error != nil {
		return apperr.Storage("failed to update note", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "NOTE_NOT_FOUND", "note not found")
	}
	return nil
}

func (s *gormStore) ListNotes(ctx context.Context, q NoteQuery) (NotePage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	if q.Sort.Field == "" {
		q.Sort = parse.Sort{Field: "created_at", Desc: true}
	}
	filtered := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&model.Note{}).Where("farmer_id = ?", q.FarmerID)
		if q.FarmID != 0 {
			query = query.Where("farm_id = ?", q.FarmID)
		}
		if !q.IncludeDeleted {
			query = query.Where("is_deleted = ?", false)
		}
		if pattern, ok := parse.SearchTerm(q.Search); ok {
			query = query.Where("(title LIKE ? ESCAPE '"+parse.LikeEscape+"' OR content LIKE ? ESCAPE '"+parse.LikeEscape+"')", pattern, pattern)
		}
		return query
	}

	page := NotePage{Page: q.Page, PerPage: q.PerPage}
	if err := filtered().Count(&page.Total).Error; err != nil {
		return NotePage{}, apperr.Storage("failed to count notes", err)
	}

	err := filtered().
		Preload("Farm", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "district", "village")
		}).
		Order(q.Sort.String()).
		Order("id DESC").
		Offset((q.Page - 1) * q.PerPage).
		Limit(q.PerPage).
		Find(&page.Notes).Error
	if err != nil {
		return NotePage{}, apperr.Storage("failed to list notes", err)
	}
	return page, nil
}

func (s *gormStore) RecentNotes(ctx context.Context, farmID int64, limit int) ([]model.Note, error) {
	var notes []model.Note
	err := s.db.WithContext(ctx).
		Where("farm_id = ? AND is_deleted = ?", farmID, false).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&notes).Error
	if err != nil {
		return nil, apperr.Storage("failed to load recent notes", err)
	}
	return notes, nil
}

func (s *gormStore) CountNotesByFarm(ctx context.Context, farmIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(farmIDs))
	if len(farmIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		FarmID int64
		Total  int64
	}
	err := s.db.WithContext(ctx).
		Model(&model.Note{}).
		Select("farm_id, COUNT(*) AS total").
		Where("farm_id IN ? AND is_deleted = ?", farmIDs, false).
		Group("farm_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Storage("failed to count notes", err)
	}
	for _, r := range rows {
		counts[r.FarmID] = r.Total
	}
	return counts, nil
}

func (s *gormStore) NoteStats(ctx context.Context, farmerID int64, monthStart, weekStart time.Time) (NoteStats, error) {
	var stats NoteStats
	live := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&model.Note{}).Where("farmer_id = ? AND is_deleted = ?", farmerID, false)
	}

	if err := live().Count(&stats.Total).Error; err != nil {
		return NoteStats{}, apperr.Storage("failed to count notes", err)
	}
	if err := live().Where("created_at >= ?", monthStart.UTC()).Count(&stats.ThisMonth).Error; err != nil {
		return NoteStats{}, apperr.Storage("failed to count notes", err)
	}
	if err := live().Where("created_at >= ?", weekStart.UTC()).Count(&stats.ThisWeek).Error; err != nil {
		return NoteStats{}, apperr.Storage("failed to count notes", err)
	}

	farms, err := s.ListFarms(ctx, farmerID)
	if err != nil {
		return NoteStats{}, err
	}
	ids := make([]int64, len(farms))
	for i, f := range farms {
		ids[i] = f.ID
	}
	counts, err := s.CountNotesByFarm(ctx, ids)
	if err != nil {
		return NoteStats{}, err
	}
	for _, f := range farms {
		stats.ByFarm = append(stats.ByFarm, FarmNoteCount{FarmID: f.ID, FarmName: f.Name, Count: counts[f.ID]})
	}

	err = live().
		Preload("Farm", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Order("created_at DESC").Order("id DESC").
		Limit(5).
		Find(&stats.Recent).Error
	if err != nil {
		return NoteStats{}, apperr.Storage("failed to load recent notes", err)
	}
	return stats, nil
}

// --- Seasons ---

func (s *gormStore) ListSeasons(ctx context.Context) ([]model.Season, error) {
	var seasons []model.Season
	if err := s.db.WithContext(ctx).Order("month").Find(&seasons).Error; err != nil {
		return nil, apperr.Storage("failed to list seasons", err)
	}
	return seasons, nil
}

// UpsertSeasons writes the advisory table keyed by month.
func (s *gormStore) UpsertSeasons(ctx context.Context, seasons []model.Season) error {
	if len(seasons) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "short_description", "full_instructions", "activities", "updated_at"}),
	}).Create(&seasons).Error
	if err != nil {
		return apperr.Storage("failed to upsert seasons", err)
	}
	return nil
}

// --- Push subscriptions ---

func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"farmer_id", "p256dh", "auth"}),
	}).Create(sub).Error
	if err != nil {
		return apperr.Storage("failed to save subscription", err)
	}
	return nil
}

func (s *gormStore) SubscriptionByEndpoint(ctx context.Context, farmerID int64, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Where("endpoint = ? AND farmer_id = ?", endpoint, farmerID).First(&sub).Error
	if err != nil {
		return nil, lookupErr(err, "subscription")
	}
	return &sub, nil
}

func (s *gormStore) SubscriptionsForFarmer(ctx context.Context, farmerID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("farmer_id = ?", farmerID).Find(&subs).Error; err != nil {
		return nil, apperr.Storage("failed to list subscriptions", err)
	}
	return subs, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, farmerID int64, endpoint string) error {
	err := s.db.WithContext(ctx).Where("endpoint = ? AND farmer_id = ?", endpoint, farmerID).
		Delete(&model.PushSubscription{}).Error
	if err != nil {
		return apperr.Storage("failed to delete subscription", err)
	}
	return nil
}

func (s *gormStore) DeleteExpiredSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return apperr.Storage("failed to delete expired subscription", err)
	}
	return nil
}
