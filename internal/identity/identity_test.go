package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mango-sync-backend/internal/apperr"
	"mango-sync-backend/internal/model"
)

type fakeDirectory struct {
	farmers map[string]*model.Farmer
	farms   map[int64]*model.Farm
	err     error
}

func (f *fakeDirectory) FarmerByUUID(_ context.Context, id string) (*model.Farmer, error) {
	if f.err != nil {
		return nil, f.err
	}
	if farmer, ok := f.farmers[id]; ok {
		return farmer, nil
	}
	return nil, apperr.New(apperr.ErrNotFound, "NOT_FOUND", "farmer not found")
}

func (f *fakeDirectory) FarmByID(_ context.Context, id int64) (*model.Farm, error) {
	if farm, ok := f.farms[id]; ok {
		return farm, nil
	}
	return nil, apperr.New(apperr.ErrNotFound, "NOT_FOUND", "farm not found")
}

func TestResolve(t *testing.T) {
	known := &model.Farmer{ID: 1, UUID: uuid.NewString(), Name: "Amina"}
	dir := &fakeDirectory{farmers: map[string]*model.Farmer{known.UUID: known}}
	r := NewResolver(dir)
	ctx := context.Background()

	testCases := []struct {
		name       string
		credential string
		wantKind   error
		wantCode   string
	}{
		{name: "missing header", credential: "", wantKind: apperr.ErrUnauthenticated, wantCode: "UNAUTHENTICATED"},
		{name: "not a uuid", credential: "farmer-1", wantKind: apperr.ErrUnauthenticated, wantCode: "INVALID_USER_ID"},
		{name: "unknown farmer", credential: uuid.NewString(), wantKind: apperr.ErrNotFound, wantCode: "FARMER_NOT_FOUND"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Resolve(ctx, tc.credential)
			assert.ErrorIs(t, err, tc.wantKind)
			assert.Equal(t, tc.wantCode, apperr.Code(err))
		})
	}

	farmer, err := r.Resolve(ctx, "  "+known.UUID+" ")
	require.NoError(t, err)
	assert.Equal(t, known, farmer)
}

func TestResolvePropagatesStorageFailure(t *testing.T) {
	dir := &fakeDirectory{err: apperr.Storage("lookup", errors.New("db down"))}
	_, err := NewResolver(dir).Resolve(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrStorage)
}

func TestOwnedFarm(t *testing.T) {
	owner := &model.Farmer{ID: 1}
	stranger := &model.Farmer{ID: 2}
	dir := &fakeDirectory{farms: map[int64]*model.Farm{10: {ID: 10, FarmerID: 1}}}
	ctx := context.Background()

	farm, err := OwnedFarm(ctx, dir, owner, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), farm.ID)

	_, err = OwnedFarm(ctx, dir, stranger, 10)
	assert.ErrorIs(t, err, apperr.ErrOwnership)
	assert.Equal(t, "UNAUTHORIZED", apperr.Code(err))

	_, err = OwnedFarm(ctx, dir, owner, 11)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "FARM_NOT_FOUND", apperr.Code(err))

	assert.True(t, Owns(owner, farm))
	assert.False(t, Owns(stranger, farm))
	assert.False(t, Owns(nil, farm))
}
