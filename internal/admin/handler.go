// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/permitdesk/internal/core"
	"github.com/carterperez-dev/permitdesk/internal/dashboard"
	"github.com/carterperez-dev/permitdesk/internal/profile"
)

// KPISource aggregates permit and invoice figures. An empty userID means
// every user.
type KPISource interface {
	BuildStats(ctx context.Context, userID string) dashboard.Stats
}

type UserCensus interface {
	Census(ctx context.Context) (profile.Census, error)
}

type Handler struct {
	kpis       KPISource
	users      UserCensus
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	redisPing  func(ctx context.Context) error
	dbPing     func(ctx context.Context) error
	storePing  func(ctx context.Context) error
	logger     *slog.Logger
}

type HandlerConfig struct {
	KPIs       KPISource
	Users      UserCensus
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error
	DBPing     func(ctx context.Context) error
	StorePing  func(ctx context.Context) error
	Logger     *slog.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		kpis:       cfg.KPIs,
		users:      cfg.Users,
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		redisPing:  cfg.RedisPing,
		dbPing:     cfg.DBPing,
		storePing:  cfg.StorePing,
		logger:     logger,
	}
}

// RegisterRoutes mounts the overview for all staff and the raw pool and
// runtime stats for admins only.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, staffOnly, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)

		r.With(staffOnly).Get("/overview", h.GetOverview)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)

			r.Get("/stats", h.GetSystemStats)
			r.Get("/stats/db", h.GetDatabaseStats)
			r.Get("/stats/redis", h.GetRedisStats)
			r.Get("/stats/runtime", h.GetRuntimeStats)
		})
	})
}

func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := OverviewResponse{
		Services: h.serviceHealth(ctx),
	}

	if h.kpis != nil {
		response.Permits = h.kpis.BuildStats(ctx, "")
	}

	if h.users != nil {
		census, err := h.users.Census(ctx)
		if err != nil {
			h.logger.WarnContext(ctx, "user census failed", "error", err)
			response.Permits.Unavailable = append(response.Permits.Unavailable, "users")
		} else {
			response.Users = &census
		}
	}

	core.OK(w, response)
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	health := h.serviceHealth(r.Context())

	response := SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: health.Database,
			Stats:   h.getDBStats(),
		},
		Redis: RedisStatus{
			Healthy: health.Redis,
			Stats:   h.getRedisStats(),
		},
		Storage: health.Storage,
		Runtime: readRuntimeStats(),
	}

	core.OK(w, response)
}

func (h *Handler) serviceHealth(ctx context.Context) ServiceHealth {
	return ServiceHealth{
		Database: pingOK(ctx, h.dbPing),
		Redis:    pingOK(ctx, h.redisPing),
		Storage:  pingOK(ctx, h.storePing),
	}
}

// pingOK treats an unconfigured ping as healthy.
func pingOK(ctx context.Context, ping func(context.Context) error) bool {
	if ping == nil {
		return true
	}
	return ping(ctx) == nil
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getDBStats())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getRedisStats())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, readRuntimeStats())
}

func readRuntimeStats() RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

type OverviewResponse struct {
	Permits  dashboard.Stats `json:"permits"`
	Users    *profile.Census `json:"users,omitempty"`
	Services ServiceHealth   `json:"services"`
}

type ServiceHealth struct {
	Database bool `json:"database"`
	Redis    bool `json:"redis"`
	Storage  bool `json:"storage"`
}

type SystemStatsResponse struct {
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Storage  bool           `json:"storage_healthy"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
	MaxIdleClosed      int64  `json:"max_idle_closed"`
	MaxIdleTimeClosed  int64  `json:"max_idle_time_closed"`
	MaxLifetimeClosed  int64  `json:"max_lifetime_closed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
