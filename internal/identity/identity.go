// Package identity resolves the acting farmer from a request credential and
// checks farm ownership.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"mango-sync-backend/internal/apperr"
	"mango-sync-backend/internal/model"
)

// Header carries the farmer UUID on every authenticated request.
const Header = "X-User-ID"

// Resolver turns a credential into a Farmer.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (*model.Farmer, error)
}

// FarmerFinder is the lookup a store-backed resolver needs.
type FarmerFinder interface {
	FarmerByUUID(ctx context.Context, uuid string) (*model.Farmer, error)
}

// FarmFinder loads a farm by id.
type FarmFinder interface {
	FarmByID(ctx context.Context, id int64) (*model.Farm, error)
}

type uuidResolver struct {
	farmers FarmerFinder
}

// NewResolver returns a Resolver that treats the credential as a farmer UUID.
func NewResolver(farmers FarmerFinder) Resolver {
	return &uuidResolver{farmers: farmers}
}

func (r *uuidResolver) Resolve(ctx context.Context, credential string) (*model.Farmer, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, apperr.New(apperr.ErrUnauthenticated, "UNAUTHENTICATED", Header+" header is required")
	}
	if _, err := uuid.Parse(credential); err != nil {
		return nil, apperr.New(apperr.ErrUnauthenticated, "INVALID_USER_ID", "invalid user id format")
	}

	farmer, err := r.farmers.FarmerByUUID(ctx, credential)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Wrap(err, apperr.ErrNotFound, "FARMER_NOT_FOUND", "farmer not found")
		}
		return nil, err
	}
	return farmer, nil
}

// Owns reports whether farm belongs to farmer.
func Owns(farmer *model.Farmer, farm *model.Farm) bool {
	return farmer != nil && farm != nil && farm.OwnedBy(farmer.ID)
}

// OwnedFarm loads a farm and fails with an ownership violation when it
// belongs to someone else.
func OwnedFarm(ctx context.Context, farms FarmFinder, farmer *model.Farmer, farmID int64) (*model.Farm, error) {
	farm, err := farms.FarmByID(ctx, farmID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Wrap(err, apperr.ErrNotFound, "FARM_NOT_FOUND", "farm not found")
		}
		return nil, err
	}
	if !Owns(farmer, farm) {
		return nil, apperr.New(apperr.ErrOwnership, "UNAUTHORIZED", "unauthorized access to farm")
	}
	return farm, nil
}
