package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gameclub_backend/internal/config"
	"gameclub_backend/internal/database"
	"gameclub_backend/internal/events"
	"gameclub_backend/internal/middleware"
	"gameclub_backend/internal/router"
	"gameclub_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitLogger(cfg.LogLevel, cfg.LogPretty)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DSN(), database.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		utils.LogError(err, "Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		if err := database.ApplySchema(ctx, db, cfg.DBSchemaPath); err != nil {
			utils.LogError(err, "Failed to apply database schema")
			os.Exit(1)
		}
	}

	hub := events.NewHub()
	deps := router.Deps{DB: db, JWT: utils.NewJWTManager(
		cfg.JWTSecret,
		time.Duration(cfg.JWTExpirationMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshHours)*time.Hour,
	), Hub: hub}

	if cfg.RedisURL != "" {
		rdb, err := events.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			utils.LogError(err, "Failed to connect to redis")
			os.Exit(1)
		}
		defer rdb.Close()
		deps.Notifier = events.NewRedisNotifier(rdb, cfg.RedisEventsChannel)
		deps.RedisPing = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		go events.RelayFromRedis(ctx, rdb, cfg.RedisEventsChannel, hub)
	} else {
		utils.LogInfo("REDIS_URL not set, consumables-updated events stay in-process")
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	router.Setup(engine, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError(err, "Failed to start server")
			stop()
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Server forced to shutdown")
	}
}
