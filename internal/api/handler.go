package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"mango-sync-backend/config"
	"mango-sync-backend/internal/clock"
	"mango-sync-backend/internal/identity"
	"mango-sync-backend/internal/logging"
	"mango-sync-backend/internal/notesync"
	"mango-sync-backend/internal/notification"
	"mango-sync-backend/internal/season"
	"mango-sync-backend/internal/store"
)

// Notifier queues a season change for push delivery.
type Notifier interface {
	Dispatch(change notification.SeasonChange) bool
}

// RefreshRecorder counts season refreshes.
type RefreshRecorder interface {
	RecordSeasonRefresh(changed bool)
}

// Deps are the collaborators a Handler needs. Notifier and Refreshes may be nil.
type Deps struct {
	Store      store.Store
	Catalog    *season.Catalog
	Reconciler *notesync.Reconciler
	Resolver   identity.Resolver
	Clock      clock.Clock
	Notifier   Notifier
	Refreshes  RefreshRecorder
	WebPush    *webpush.Options
	Server     config.ServerConfig
	Logger     *zap.Logger
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store      store.Store
	catalog    *season.Catalog
	reconciler *notesync.Reconciler
	resolver   identity.Resolver
	clock      clock.Clock
	notifier   Notifier
	refreshes  RefreshRecorder
	webpush    *webpush.Options
	server     config.ServerConfig
	logger     *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	if d.Resolver == nil {
		d.Resolver = identity.NewResolver(d.Store)
	}
	return &Handler{
		store:      d.Store,
		catalog:    d.Catalog,
		reconciler: d.Reconciler,
		resolver:   d.Resolver,
		clock:      d.Clock,
		notifier:   d.Notifier,
		refreshes:  d.Refreshes,
		webpush:    d.WebPush,
		server:     d.Server,
		logger:     logging.OrNop(d.Logger).Named("api"),
	}
}
