package notification

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"mango-sync-backend/internal/logging"
	"mango-sync-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore is the part of the store the workers need.
type SubscriptionStore interface {
	SubscriptionsForFarmer(ctx context.Context, farmerID int64) ([]model.PushSubscription, error)
	DeleteExpiredSubscription(ctx context.Context, endpoint string) error
}

// SeasonChange announces that a farm entered a new season month.
type SeasonChange struct {
	FarmerID    int64
	FarmName    string
	Month       int
	SeasonTitle string
}

// Message is the push payload text.
func (c SeasonChange) Message() string {
	return fmt.Sprintf("%s: %s", c.FarmName, c.SeasonTitle)
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan SeasonChange
	store   SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size, queueSize int, s SubscriptionStore, webpushOptions *webpush.Options, logger *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if queueSize < size {
		queueSize = size
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan SeasonChange, queueSize),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
		logger:  logging.OrNop(logger).Named("notification"),
	}
}

// Start launches the worker goroutines. They exit when ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Wait blocks until every worker has exited.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	wp.logger.Debug("worker started", zap.Int("worker", id))
	for {
		select {
		case job := <-wp.jobs:
			wp.sendSeasonChange(ctx, job)
		case <-ctx.Done():
			wp.logger.Debug("worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues a job without blocking. It reports false when the queue is
// full and the notification was dropped.
func (wp *WorkerPool) Dispatch(change SeasonChange) bool {
	select {
	case wp.jobs <- change:
		return true
	default:
		wp.logger.Warn("notification queue full; dropping season change",
			zap.Int64("farmer_id", change.FarmerID),
			zap.Int("month", change.Month))
		return false
	}
}

// sendSeasonChange fetches the farmer's subscriptions and notifies each one.
func (wp *WorkerPool) sendSeasonChange(ctx context.Context, change SeasonChange) {
	subscriptions, err := wp.store.SubscriptionsForFarmer(ctx, change.FarmerID)
	if err != nil {
		wp.logger.Error("failed to load subscriptions", zap.Int64("farmer_id", change.FarmerID), zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	wp.logger.Info("sending season notifications",
		zap.Int64("farmer_id", change.FarmerID),
		zap.Int("month", change.Month),
		zap.Int("subscriptions", len(subscriptions)))

	payload := []byte(change.Message())
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.logger.Warn("failed to send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		wp.logger.Info("subscription expired; deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.store.DeleteExpiredSubscription(ctx, sub.Endpoint); err != nil {
			wp.logger.Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
