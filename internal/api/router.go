package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/greenloop/progress-engine/internal/api/handler"
	"github.com/greenloop/progress-engine/internal/api/middleware"
	"github.com/greenloop/progress-engine/internal/core/domain"
	"github.com/greenloop/progress-engine/internal/core/service"
	mongodb "github.com/greenloop/progress-engine/internal/infrastructure/db/mongo"
	redisinfra "github.com/greenloop/progress-engine/internal/infrastructure/db/redis"
	"github.com/greenloop/progress-engine/internal/infrastructure/queue"
)

// Services bundles the wired use-case layer so main can start background
// workers (the scan dispatcher) and tests can reach individual services.
type Services struct {
	Ledger     *service.LedgerService
	Goals      *service.GoalService
	Cart       *service.CartService
	Favorites  *service.FavoriteService
	Auth       *service.AuthService
	Dispatcher *queue.Dispatcher
	Watcher    *mongodb.ChangeWatcher
}

// NewRouter builds the Echo instance with every route registered and returns
// it together with the service bundle.
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, scanWorkers int, log zerolog.Logger) (*echo.Echo, *Services) {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("greenloop"))

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Repositories ---
	ledgerRepo := mongodb.NewLedgerRepository(db)
	goalRepo := mongodb.NewGoalRepository(db)
	cartRepo := mongodb.NewCartRepository(db)
	favoriteRepo := mongodb.NewFavoriteRepository(db)
	authRepo := mongodb.NewAuthRepository(db)

	// --- Services ---
	guard := redisinfra.NewAwardGuard(rdb)
	dedup := redisinfra.NewScanDedup(rdb)

	ledgerService := service.NewLedgerService(ledgerRepo, goalRepo, guard, log)
	goalService := service.NewGoalService(goalRepo, ledgerService, log)
	cartService := service.NewCartService(cartRepo, ledgerService, log)
	favoriteService := service.NewFavoriteService(favoriteRepo, ledgerService, log)
	authService := service.NewAuthService(authRepo, jwtSecret, 24*time.Hour)
	scanService := service.NewScanService(ledgerRepo, ledgerService, dedup, log)

	dispatcher := queue.NewDispatcher(scanWorkers, scanService, log)
	watcher := mongodb.NewChangeWatcher(db, ledgerRepo, goalRepo, cartRepo, favoriteRepo, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	goalHandler := handler.NewGoalHandler(goalService)
	cartHandler := handler.NewCartHandler(cartService)
	favoriteHandler := handler.NewFavoriteHandler(favoriteService)
	scanHandler := handler.NewScanHandler(dispatcher)
	syncHandler := handler.NewSyncHandler(watcher, log)
	adminHandler := handler.NewAdminHandler(ledgerService, log)

	authMiddleware := middleware.Auth(jwtSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Authenticated API ---
	v1 := e.Group("/v1", authMiddleware)

	v1.GET("/me/ledger", ledgerHandler.Get)
	v1.GET("/me/achievements", ledgerHandler.Achievements)
	v1.GET("/rewards", ledgerHandler.Rewards)
	v1.POST("/me/rewards/:reward_id/redeem", ledgerHandler.Redeem)

	v1.GET("/goals", goalHandler.List)
	v1.POST("/goals", goalHandler.Create)
	v1.PATCH("/goals/:id/progress", goalHandler.UpdateProgress)
	v1.DELETE("/goals/:id", goalHandler.Delete)

	v1.GET("/cart", cartHandler.Get)
	v1.DELETE("/cart", cartHandler.Clear)
	v1.POST("/cart/items", cartHandler.AddItem)
	v1.PUT("/cart/items/:product_id", cartHandler.SetQuantity)
	v1.DELETE("/cart/items/:product_id", cartHandler.RemoveItem)

	v1.GET("/favorites", favoriteHandler.List)
	v1.PUT("/favorites/:product_id", favoriteHandler.Put)
	v1.DELETE("/favorites/:product_id", favoriteHandler.Delete)

	v1.POST("/scans", scanHandler.Receive)
	v1.POST("/scans/batch", scanHandler.ReceiveBatch)

	v1.GET("/sync", syncHandler.Stream)

	// --- Admin ---
	admin := v1.Group("/admin", middleware.RBAC(domain.RoleAdmin))
	admin.POST("/users/:user_id/ledger/reset", adminHandler.ResetLedger)

	return e, &Services{
		Ledger:     ledgerService,
		Goals:      goalService,
		Cart:       cartService,
		Favorites:  favoriteService,
		Auth:       authService,
		Dispatcher: dispatcher,
		Watcher:    watcher,
	}
}
