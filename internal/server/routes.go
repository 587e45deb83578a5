package server

import (
	"log/slog"
	"net/http"

	authHandlers "milty-server/internal/auth/handlers"
	"milty-server/internal/middleware"
	"milty-server/internal/milty"
	miltyHandlers "milty-server/internal/milty/handlers"
	serverHandlers "milty-server/internal/server/handlers"
	"milty-server/internal/shared/database"
	"milty-server/internal/shared/redis"
	"milty-server/internal/tile"
	tileHandlers "milty-server/internal/tile/handlers"
)

type Routes struct {
	db            *database.DB
	cache         *redis.Client
	tileService   *tile.Service
	miltyService  *milty.Service
	authenticator *middleware.Authenticator
	rateLimiter   *middleware.RateLimiter
	session       *authHandlers.SessionHandler
	logger        *slog.Logger
}

func NewRoutes(
	db *database.DB,
	cache *redis.Client,
	tileService *tile.Service,
	miltyService *milty.Service,
	authenticator *middleware.Authenticator,
	rateLimiter *middleware.RateLimiter,
	session *authHandlers.SessionHandler,
	logger *slog.Logger,
) *Routes {
	return &Routes{
		db:            db,
		cache:         cache,
		tileService:   tileService,
		miltyService:  miltyService,
		authenticator: authenticator,
		rateLimiter:   rateLimiter,
		session:       session,
		logger:        logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := r.logger.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db, r.cache, r.tileService.Catalog().Len())
	tileHandler := tileHandlers.NewTileHandler(r.tileService)
	miltyHandler := miltyHandlers.NewMiltyHandler(r.miltyService)

	// Public endpoints
	mux.Handle("/api/server/health", healthHandler)
	mux.HandleFunc("/api/tiles", tileHandler.List)
	mux.HandleFunc("/api/tiles/{id}", tileHandler.Get)
	mux.HandleFunc("/api/milty/presets", miltyHandler.Presets)
	mux.HandleFunc("/api/milty/defaults", miltyHandler.Defaults)
	mux.HandleFunc("/api/milty/drafts", miltyHandler.ListDrafts)
	mux.HandleFunc("GET /api/milty/drafts/{id}", miltyHandler.GetDraft)
	mux.Handle("/api/admin/session", r.session)

	// Rate limited: every call runs the generator
	mux.Handle("/api/milty/generate", r.rateLimiter.Middleware(http.HandlerFunc(miltyHandler.Generate)))

	// Admin-only endpoints
	mux.Handle("DELETE /api/milty/drafts/{id}", r.authenticator.RequireAdmin(http.HandlerFunc(miltyHandler.DeleteDraft)))

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/server/health", "/api/tiles", "/api/milty/presets", "/api/milty/defaults", "/api/milty/drafts", "/api/admin/session"},
		"rate_limited_endpoints", []string{"/api/milty/generate"},
		"admin_endpoints", []string{"DELETE /api/milty/drafts/{id}"},
	)

	return mux
}
