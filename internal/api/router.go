package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"mango-sync-backend/internal/logging"
	"mango-sync-backend/internal/metrics"
	"mango-sync-backend/internal/mw"
	"mango-sync-backend/internal/respond"
)

// NewRouter creates and configures a new Gin router. m may be nil, in which
// case /metrics is not served.
func NewRouter(h *Handler, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	logger = logging.OrNop(logger).Named("http")
	respond.UseJSONFieldNames()

	r := gin.New()
	if h.server.RequestIPHeader != "" {
		r.TrustedPlatform = h.server.RequestIPHeader
	}

	var observer mw.RequestObserver
	if m != nil {
		observer = m.HTTP
	}
	r.Use(mw.Debug(h.server.Debug), mw.Logger(logger, observer), mw.Recovery(logger))

	r.GET("/healthz", h.Health)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	rateLimiter := mw.RateLimiter(rate.Limit(h.server.RateLimitPerSec), h.server.RateLimitBurst)

	ttl := time.Duration(h.server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	api := r.Group("/api/v1")
	api.Use(rateLimiter)
	{
		api.POST("/farms", h.CreateFarm)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		seasons := api.Group("/seasons", caching)
		seasons.GET("", h.ListSeasons)
		seasons.GET("/summary", h.SeasonSummary)
		seasons.GET("/:month", h.GetSeason)
	}

	authed := api.Group("", mw.RequireFarmer(h.resolver))
	{
		authed.GET("/farmers/profile", h.GetProfile)
		authed.PUT("/farmers/profile", h.UpdateProfile)

		authed.GET("/farms", h.ListFarms)
		authed.GET("/farms/:id", h.GetFarm)
		authed.PUT("/farms/:id", h.UpdateFarm)
		authed.DELETE("/farms/:id", h.DeleteFarm)
		authed.GET("/farms/:id/current-season", h.CurrentSeason)
		authed.GET("/farms/:id/notes", h.FarmNotes)

		authed.POST("/notes/sync", h.SyncNotes)
		authed.GET("/notes", h.ListNotes)
		authed.GET("/notes/statistics", h.Statistics)

		authed.GET("/sync/initial-package", h.InitialPackage)

		authed.GET("/subscriptions", h.GetSubscription)
		authed.PUT("/subscriptions", h.PutSubscription)
		authed.DELETE("/subscriptions", h.DeleteSubscription)
	}

	return r
}
