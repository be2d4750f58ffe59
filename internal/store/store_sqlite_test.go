package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mango-sync-backend/config"
	"mango-sync-backend/internal/apperr"
	"mango-sync-backend/internal/db"
	"mango-sync-backend/internal/model"
	"mango-sync-backend/internal/parse"
)

var fixedNow = time.Date(2025, 6, 18, 9, 30, 0, 0, time.UTC)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	gdb, err := db.Open(&config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, nil))
	return NewGormStore(gdb)
}

func seedFarmer(t *testing.T, s Store, name string) (*model.Farmer, *model.Farm) {
	t.Helper()
	ctx := context.Background()
	farmer := model.NewFarmer(name)
	require.NoError(t, s.CreateFarmer(ctx, &farmer))
	farm := model.Farm{
		FarmerID:           farmer.ID,
		Name:               name + " Orchard",
		Size:               2.5,
		District:           "Multan",
		Village:            "Shujabad",
		PlantingDate:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		CurrentSeasonMonth: 1,
	}
	require.NoError(t, s.CreateFarm(ctx, &farm))
	return &farmer, &farm
}

func addNote(t *testing.T, s Store, farmerID, farmID int64, title, content string, created time.Time) *model.Note {
	t.Helper()
	note := model.NewNote(farmerID, model.NoteFields{
		ClientID:  fmt.Sprintf("%s-%d", title, created.Unix()),
		FarmID:    farmID,
		Title:     title,
		Content:   content,
		CreatedAt: created,
		UpdatedAt: created,
	}, fixedNow)
	require.NoError(t, s.CreateNote(context.Background(), &note))
	return &note
}

func TestSQLite_NoteKeyIsScopedToFarmer(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	alice, aliceFarm := seedFarmer(t, s, "Alice")
	bob, bobFarm := seedFarmer(t, s, "Bob")

	fields := model.NoteFields{ClientID: "c-1", FarmID: aliceFarm.ID, Title: "t", Content: "c", CreatedAt: fixedNow, UpdatedAt: fixedNow}
	first := model.NewNote(alice.ID, fields, fixedNow)
	require.NoError(t, s.CreateNote(ctx, &first))

	dup := model.NewNote(alice.ID, fields, fixedNow)
	assert.ErrorIs(t, s.CreateNote(ctx, &dup), apperr.ErrStorage)

	fields.FarmID = bobFarm.ID
	other := model.NewNote(bob.ID, fields, fixedNow)
	require.NoError(t, s.CreateNote(ctx, &other))

	found, err := s.NoteByClientID(ctx, alice.ID, "c-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.True(t, found.UpdatedAt.Equal(fixedNow))

	_, err = s.NoteByClientID(ctx, alice.ID, "c-2")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSQLite_UpdateNoteOverwritesClientFields(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	farmer, farm := seedFarmer(t, s, "Alice")
	note := addNote(t, s, farmer.ID, farm.ID, "Spray", "first", fixedNow.Add(-time.Hour))

	note.Content = "second"
	note.IsDeleted = true
	note.UpdatedAt = fixedNow
	require.NoError(t, s.UpdateNote(ctx, note))

	got, err := s.NoteByClientID(ctx, farmer.ID, note.ClientID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Content)
	assert.True(t, got.IsDeleted)
	assert.True(t, got.UpdatedAt.Equal(fixedNow))
	assert.True(t, got.CreatedAt.Equal(fixedNow.Add(-time.Hour)), "created_at is never rewritten")
}

func TestSQLite_ListNotes(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	farmer, farm := seedFarmer(t, s, "Alice")
	_, otherFarm := seedFarmer(t, s, "Bob")

	addNote(t, s, farmer.ID, farm.ID, "Bravo", "flowering looks 50% done", fixedNow.Add(-3*time.Hour))
	addNote(t, s, farmer.ID, farm.ID, "Alpha", "irrigated", fixedNow.Add(-2*time.Hour))
	deleted := addNote(t, s, farmer.ID, farm.ID, "Charlie", "removed", fixedNow.Add(-time.Hour))
	deleted.IsDeleted = true
	require.NoError(t, s.UpdateNote(ctx, deleted))
	addNote(t, s, otherFarm.FarmerID, otherFarm.ID, "Foreign", "not mine", fixedNow)

	page, err := s.ListNotes(ctx, NoteQuery{
		FarmerID: farmer.ID,
		Sort:     parse.Sort{Field: "created_at", Desc: true},
		Page:     1,
		PerPage:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Notes, 2)
	assert.Equal(t, "Alpha", page.Notes[0].Title)
	assert.Equal(t, "Alice Orchard", page.Notes[0].Farm.Name)

	page, err = s.ListNotes(ctx, NoteQuery{
		FarmerID:       farmer.ID,
		IncludeDeleted: true,
		Sort:           parse.Sort{Field: "title"},
		Page:           2,
		PerPage:        2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.LastPage())
	require.Len(t, page.Notes, 1)
	assert.Equal(t, "Charlie", page.Notes[0].Title)

	// % is matched literally, not as a wildcard
	page, err = s.ListNotes(ctx, NoteQuery{FarmerID: farmer.ID, Search: "50%", Sort: parse.Sort{Field: "created_at"}, Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, page.Notes, 1)
	assert.Equal(t, "Bravo", page.Notes[0].Title)

	page, err = s.ListNotes(ctx, NoteQuery{FarmerID: farmer.ID, Search: "0%d", Sort: parse.Sort{Field: "created_at"}, Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Notes)
}

func TestSQLite_NoteStats(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	farmer, farm := seedFarmer(t, s, "Alice")
	second := model.Farm{FarmerID: farmer.ID, Name: "South", Size: 1, District: "Multan", Village: "Basti", PlantingDate: fixedNow}
	require.NoError(t, s.CreateFarm(ctx, &second))

	monthStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	weekStart := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	addNote(t, s, farmer.ID, farm.ID, "old", "x", time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC))
	addNote(t, s, farmer.ID, farm.ID, "month", "x", time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC))
	addNote(t, s, farmer.ID, second.ID, "week", "x", time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC))

	stats, err := s.NoteStats(ctx, farmer.ID, monthStart, weekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.ThisMonth)
	assert.Equal(t, int64(1), stats.ThisWeek)
	require.Len(t, stats.ByFarm, 2)
	assert.Equal(t, int64(2), stats.ByFarm[0].Count)
	assert.Equal(t, int64(1), stats.ByFarm[1].Count)
	require.Len(t, stats.Recent, 3)
	assert.Equal(t, "week", stats.Recent[0].Title)
	assert.Equal(t, "South", stats.Recent[0].Farm.Name)
}

func TestSQLite_FarmLifecycle(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	farmer, farm := seedFarmer(t, s, "Alice")
	addNote(t, s, farmer.ID, farm.ID, "a", "x", fixedNow)

	totals, err := s.FarmerTotals(ctx, farmer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.TotalFarms)
	assert.InDelta(t, 2.5, totals.TotalSize, 0.001)

	updated, err := s.UpdateFarm(ctx, farm.ID, map[string]any{"name": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	require.NoError(t, s.MarkFarmsSynced(ctx, []int64{farm.ID}, fixedNow))
	got, err := s.FarmByID(ctx, farm.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastSyncedAt)
	assert.True(t, got.LastSyncedAt.Equal(fixedNow))

	counts, err := s.CountNotesByFarm(ctx, []int64{farm.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[farm.ID])

	require.NoError(t, s.DeleteFarm(ctx, farm.ID))
	_, err = s.FarmByID(ctx, farm.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	counts, err = s.CountNotesByFarm(ctx, []int64{farm.ID})
	require.NoError(t, err)
	assert.Zero(t, counts[farm.ID])

	assert.ErrorIs(t, s.DeleteFarm(ctx, farm.ID), apperr.ErrNotFound)
}

func TestSQLite_UpdateFarmer(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	farmer, _ := seedFarmer(t, s, "Alice")

	got, err := s.UpdateFarmer(ctx, farmer.ID, FarmerFields{Name: "Alice K", Phone: "0300", District: "Multan"})
	require.NoError(t, err)
	assert.Equal(t, "Alice K", got.Name)
	assert.Equal(t, farmer.UUID, got.UUID)

	byUUID, err := s.FarmerByUUID(ctx, farmer.UUID)
	require.NoError(t, err)
	assert.Equal(t, "0300", byUUID.Phone)
}

func TestSQLite_UpsertSeasonsIsIdempotent(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	seasons := []model.Season{
		{Month: 1, Title: "Planting", Activities: []string{"dig"}},
		{Month: 2, Title: "Watering", Activities: []string{"water"}},
	}
	require.NoError(t, s.UpsertSeasons(ctx, seasons))

	again := []model.Season{{Month: 1, Title: "Planting (revised)", Activities: []string{"dig", "mulch"}}}
	require.NoError(t, s.UpsertSeasons(ctx, again))

	got, err := s.ListSeasons(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Planting (revised)", got[0].Title)
	assert.Equal(t, []string{"dig", "mulch"}, got[0].Activities)
	assert.Equal(t, "Watering", got[1].Title)
}

func TestSQLite_Subscriptions(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	farmer, _ := seedFarmer(t, s, "Alice")

	sub := &model.PushSubscription{Endpoint: "https://push.example/1", FarmerID: farmer.ID, P256DH: "k", Auth: "a"}
	require.NoError(t, s.UpsertSubscription(ctx, sub))
	sub.Auth = "b"
	require.NoError(t, s.UpsertSubscription(ctx, sub))

	subs, err := s.SubscriptionsForFarmer(ctx, farmer.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "b", subs[0].Auth)

	_, err = s.SubscriptionByEndpoint(ctx, farmer.ID+1, sub.Endpoint)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, s.DeleteExpiredSubscription(ctx, sub.Endpoint))
	subs, err = s.SubscriptionsForFarmer(ctx, farmer.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestSQLite_SavepointIsolatesInnerFailure(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	farmer, farm := seedFarmer(t, s, "Alice")

	err := s.WithTx(ctx, func(tx Store) error {
		require.NoError(t, tx.WithTx(ctx, func(inner Store) error {
			addNote(t, inner, farmer.ID, farm.ID, "kept", "x", fixedNow)
			return nil
		}))
		failed := tx.WithTx(ctx, func(inner Store) error {
			addNote(t, inner, farmer.ID, farm.ID, "dropped", "x", fixedNow)
			return fmt.Errorf("item failed")
		})
		assert.Error(t, failed)
		return nil
	})
	require.NoError(t, err)

	page, err := s.ListNotes(ctx, NoteQuery{FarmerID: farmer.ID, Sort: parse.Sort{Field: "title"}, Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, page.Notes, 1)
	assert.Equal(t, "kept", page.Notes[0].Title)
}
