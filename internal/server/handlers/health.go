package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"milty-server/internal/shared/database"
	"milty-server/internal/shared/redis"
	"milty-server/internal/shared/response"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
	Cache     string `json:"cache"`
	Tiles     int    `json:"tiles"`
}

type HealthHandler struct {
	db    *database.DB
	cache *redis.Client
	tiles int
}

// NewHealthHandler accepts a nil db or cache and reports them as disabled
func NewHealthHandler(db *database.DB, cache *redis.Client, tiles int) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, tiles: tiles}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "health")

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "disabled"
	if h.db != nil {
		dbStatus = "connected"
		if err := h.db.PingContext(ctx); err != nil {
			dbStatus = "disconnected"
			logger.Warn("Database ping failed", "error", err)
		}
	}

	cacheStatus := "disabled"
	if h.cache != nil {
		cacheStatus = "connected"
		if err := h.cache.Ping(ctx); err != nil {
			cacheStatus = "disconnected"
			logger.Warn("Redis ping failed", "error", err)
		}
	}

	status := "healthy"
	if dbStatus == "disconnected" {
		status = "degraded"
	}

	resp := HealthResponse{
		Status:    status,
		Timestamp: time.Now().Format(time.RFC3339),
		Database:  dbStatus,
		Cache:     cacheStatus,
		Tiles:     h.tiles,
	}

	response.Success(w, http.StatusOK, resp)
}
