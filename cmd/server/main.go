package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/labstack/echo/v4"

	"parcelbook/internal/cache"
	"parcelbook/internal/config"
	"parcelbook/internal/db"
	"parcelbook/internal/events"
	"parcelbook/internal/handler"
	"parcelbook/internal/logging"
	"parcelbook/internal/obs"
	"parcelbook/internal/repository"
	"parcelbook/internal/router"
	"parcelbook/internal/service"
)

// @title Parcel Booking API
// @version 1.0
// @description Parcel delivery booking backend: account registry, parcel ledger and admin reporting.
// @host localhost:5000
// @BasePath /
// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("tracer init", "error", err)
		os.Exit(1)
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN, db.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		slog.Error("database init", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	if cfg.ResetDB {
		slog.Warn("RESET_DB=true detected, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		slog.Error("auto-migrate", "error", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(ctx); err != nil {
		slog.Warn("redis unavailable, statistics will not be cached", "addr", cfg.RedisAddr, "error", err)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			slog.Warn("rabbitmq unavailable, lifecycle events disabled", "error", err)
		} else {
			publisher = amqpPublisher
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	parcelRepo := repository.NewParcelRepository(gormDB)
	historyRepo := repository.NewParcelStatusEventRepository(gormDB)

	// Initialize services
	userService := service.NewUserService(userRepo, cacheClient, publisher)
	parcelService := service.NewParcelService(parcelRepo, historyRepo, userService, cacheClient, publisher, service.ParcelOptions{
		RequireKnownOwner: cfg.RequireKnownOwner,
	})
	statsService := service.NewStatsService(parcelService, userService, cacheClient, cfg.StatsCacheTTL)

	e := echo.New()
	e.HideBanner = true
	router.Register(
		e,
		cfg,
		handler.NewHealthHandler(gormDB, cacheClient),
		handler.NewUserHandler(userService),
		handler.NewParcelHandler(parcelService),
		handler.NewAdminHandler(statsService),
	)

	slog.Info("swagger documentation available", "url", swaggerURL(cfg))

	go func() {
		addr := ":" + cfg.ServerPort
		slog.Info("server starting", "addr", addr, "driver", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}
	parcelService.Close()
	if err := publisher.Close(); err != nil {
		slog.Warn("close publisher", "error", err)
	}
	if err := cacheClient.Close(); err != nil {
		slog.Warn("close redis", "error", err)
	}
	if err := db.Close(gormDB); err != nil {
		slog.Warn("close database", "error", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		slog.Warn("tracer shutdown", "error", err)
	}
	slog.Info("stopped")
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
