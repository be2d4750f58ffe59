package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mango-sync-backend/internal/apperr"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormStore_UpdateSeasonMonth(t *testing.T) {
	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		expectedKind     error
	}{
		{
			name: "Farm exists, month is written",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "farms" SET "current_season_month"=$1,"updated_at"=$2 WHERE id = $3`)).
					WithArgs(4, Any{}, 7).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "Farm missing, not found",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "farms"`)).
					WithArgs(4, Any{}, 7).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit()
			},
			expectedKind: apperr.ErrNotFound,
		},
		{
			name: "Database failure is a storage error",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "farms"`)).
					WillReturnError(errors.New("connection reset"))
				mock.ExpectRollback()
			},
			expectedKind: apperr.ErrStorage,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			s := NewGormStore(gormDB)
			tc.mockExpectations(mock)

			err := s.UpdateSeasonMonth(context.Background(), 7, 4)
			if tc.expectedKind != nil {
				assert.ErrorIs(t, err, tc.expectedKind)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_FarmByID(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "farms" WHERE "farms"."id" = $1 ORDER BY "farms"."id" LIMIT $2`)).
		WithArgs(9, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "farmer_id", "name"}).AddRow(9, 3, "North Orchard"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "farms"`)).
		WithArgs(10, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	farm, err := s.FarmByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(3), farm.FarmerID)
	assert.Equal(t, "North Orchard", farm.Name)

	_, err = s.FarmByID(context.Background(), 10)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_DeleteFarmRemovesNotesFirst(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "notes" WHERE farm_id = $1`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "farms" WHERE "farms"."id" = $1`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.DeleteFarm(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_WithTxRollsBackOnError(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := s.WithTx(context.Background(), func(Store) error {
		return errors.New("abort")
	})
	assert.EqualError(t, err, "abort")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_NestedWithTxUsesSavepoint(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`^SAVEPOINT sp`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`^ROLLBACK TO SAVEPOINT sp`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.WithTx(context.Background(), func(tx Store) error {
		inner := tx.WithTx(context.Background(), func(Store) error {
			return errors.New("item failed")
		})
		assert.EqualError(t, inner, "item failed")
		return nil
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_MarkFarmsSyncedNoFarms(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	require.NoError(t, s.MarkFarmsSynced(context.Background(), nil, fixedNow))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
