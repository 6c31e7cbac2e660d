package router

import (
	"context"
	"database/sql"

	"gameclub_backend/internal/events"
	"gameclub_backend/internal/handlers"
	"gameclub_backend/internal/middleware"
	"gameclub_backend/internal/repositories"
	"gameclub_backend/internal/services"
	"gameclub_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Deps carries the shared infrastructure the routes are built on.
type Deps struct {
	DB       *sql.DB
	JWT      *utils.JWTManager
	Hub      *events.Hub
	Notifier events.Notifier // where services publish; defaults to Hub
	// RedisPing is nil when Redis is not configured.
	RedisPing func(ctx context.Context) error
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, deps Deps) {
	if deps.Hub == nil {
		deps.Hub = events.NewHub()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = deps.Hub
	}

	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(deps.DB)
	consumableRepo := repositories.NewConsumableRepository(deps.DB)
	saleRepo := repositories.NewSaleRepository(deps.DB)
	stockMoveRepo := repositories.NewStockMoveRepository(deps.DB)

	// Initialize Services
	authService := services.NewAuthService(authRepo, deps.DB, deps.JWT)
	ledgerService := services.NewLedgerService(consumableRepo, saleRepo, stockMoveRepo, notifier, deps.DB)
	reportService := services.NewReportService(saleRepo, stockMoveRepo)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	consumableHandler := handlers.NewConsumableHandler(ledgerService)
	reportHandler := handlers.NewReportHandler(reportService)
	eventHandler := handlers.NewEventHandler(deps.Hub)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.RedisPing)

	engine.GET("/ping", healthHandler.Ping)
	engine.GET("/health", healthHandler.Health)

	apiV1 := engine.Group("/api/v1")
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(deps.JWT))
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupConsumableRoutes(authenticated, consumableHandler, reportHandler)
		SetupEventRoutes(authenticated, eventHandler)
	}
}
