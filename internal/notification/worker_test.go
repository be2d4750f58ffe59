package notification

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mango-sync-backend/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func response(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewBufferString(""))}
}

var change = SeasonChange{FarmerID: 7, FarmName: "North Orchard", Month: 9, SeasonTitle: "Harvest Timing & Technique"}

func TestWorkerPool_Dispatch(t *testing.T) {
	gormDB, _ := newTestDB(t)
	wp := NewWorkerPool(1, 1, store.NewGormStore(gormDB), &webpush.Options{}, nil)

	assert.True(t, wp.Dispatch(change))
	// queue of one is now full
	assert.False(t, wp.Dispatch(change))

	select {
	case job := <-wp.jobs:
		assert.Equal(t, change, job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, 4, store.NewGormStore(gormDB), &webpush.Options{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	wp.Start(ctx)
	defer func() {
		cancel()
		wp.Wait()
	}()

	t.Run("sends notification for each subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(2)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "North Orchard: Harvest Timing & Technique", string(payload))
				wg.Done()
				return response(http.StatusCreated), nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions" WHERE farmer_id = \$1`).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "farmer_id", "p256dh", "auth", "created_at"}).
				AddRow("https://example.com/push/1", 7, "k1", "a1", time.Now()).
				AddRow("https://example.com/push/2", 7, "k2", "a2", time.Now()))

		wp.Dispatch(change)
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		deleted := make(chan struct{})

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return response(http.StatusGone), nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions" WHERE farmer_id = \$1`).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "farmer_id", "p256dh", "auth", "created_at"}).
				AddRow("https://example.com/expired", 7, "k", "a", time.Now()))
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
			WithArgs("https://example.com/expired").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		go func() {
			assert.Eventually(t, func() bool { return mock.ExpectationsWereMet() == nil }, time.Second, 10*time.Millisecond)
			close(deleted)
		}()

		wp.Dispatch(change)
		<-deleted
	})

	t.Run("no subscriptions sends nothing", func(t *testing.T) {
		done := make(chan struct{})
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				t.Error("unexpected send")
				return response(http.StatusCreated), nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions" WHERE farmer_id = \$1`).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint"}))

		go func() {
			assert.Eventually(t, func() bool { return mock.ExpectationsWereMet() == nil }, time.Second, 10*time.Millisecond)
			close(done)
		}()

		wp.Dispatch(change)
		<-done
	})
}

func TestWorkerPool_StopsOnCancel(t *testing.T) {
	gormDB, _ := newTestDB(t)
	wp := NewWorkerPool(3, 3, store.NewGormStore(gormDB), &webpush.Options{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	wp.Start(ctx)
	cancel()

	stopped := make(chan struct{})
	go func() {
		wp.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("workers did not stop")
	}
}
