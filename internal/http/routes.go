package http

import (
	"path/filepath"
	"time"

	"nft_gifts_webapp/internal/config"
	"nft_gifts_webapp/internal/http/handlers"
	"nft_gifts_webapp/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires the API, the health probes and the mini-app page
// shells onto the router.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config) {
	h := handlers.NewHandler(db, cfg.BaseURL)
	healthHandler := handlers.NewHealthHandler(db, cfg.Version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(cfg.APIRateLimit, time.Duration(cfg.APIRateWindow)*time.Second))

	// Deals
	api.POST("/create_deal", h.CreateDeal)
	api.GET("/deal/:id", h.GetDeal)
	api.GET("/my_deals", h.MyDeals)

	// Profile
	api.GET("/user_profile", h.UserProfile)

	// Admin panel. Deliberately open: the mini-app ships without an
	// authentication model and the panel is reachable only by the
	// operator's deployment.
	admin := api.Group("/admin")
	admin.GET("/users", h.ListUsers)
	admin.POST("/add_balance", h.AddBalance)
	admin.POST("/update_deals", h.UpdateDeals)
	admin.POST("/reset_balance", h.ResetBalance)
	admin.GET("/stats", h.Stats)

	registerPages(r, cfg.WebDir)
}

// registerPages serves the static mini-app shell for every page route.
// Unmatched paths get the home shell with a 200, so stale deal links
// opened inside Telegram never show a browser error page.
func registerPages(r *gin.Engine, webDir string) {
	index := filepath.Join(webDir, "index.html")

	shell := func(c *gin.Context) {
		c.File(index)
	}

	r.GET("/", shell)
	r.GET("/create", shell)
	r.GET("/deals", shell)
	r.GET("/profile", shell)
	r.GET("/deal/:id", shell)
	r.GET("/admin", shell)

	r.StaticFS("/assets", gin.Dir(filepath.Join(webDir, "assets"), false))
	r.NoRoute(shell)
}
