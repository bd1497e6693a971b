package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"smart-inventory-backend/config"
	"smart-inventory-backend/internal/metrics"
	"smart-inventory-backend/internal/mw"
	"smart-inventory-backend/internal/realtime"
	"smart-inventory-backend/internal/store"
)

// NewRouter creates and configures a new Gin router. m may be nil, in which
// case /metrics is not served.
func NewRouter(cfg *config.Config, s store.Store, hub *realtime.Hub, m *metrics.Metrics) *gin.Engine {
	r := gin.Default()
	r.Use(mw.CORS(cfg.Server.WebOrigin))

	var publisher Publisher
	if hub != nil {
		publisher = hub
		r.GET("/ws", gin.WrapH(realtime.Handler(hub, cfg.Server.WebOrigin)))
	}
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	handler := NewHandler(s, publisher, cfg.Server.BackendTimeout)

	// API group
	api := r.Group("/api")
	if cfg.Server.RateLimitPerSec > 0 {
		api.Use(mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst))
	}
	if cfg.Server.CacheTTL > 0 {
		// Expired entries are cleaned up every minute.
		api.Use(mw.Cache(cache.New(cfg.Server.CacheTTL, time.Minute), cfg.Server.CacheTTL))
	}
	{
		api.GET("/hello", handler.Hello)
		api.POST("/login", handler.Login)

		api.POST("/add", handler.AddStock)
		api.POST("/out", handler.IssueStock)
		api.GET("/stock", handler.ListStock)

		api.POST("/hardware/logs", mw.DeviceKey(cfg.Server.DeviceKey), handler.CreateHardwareLog)
		api.GET("/hardware/logs", handler.ListHardwareLogs)
	}

	return r
}
