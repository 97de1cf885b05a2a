package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"enrollwall/docs"
	"enrollwall/internal/auth"
	"enrollwall/internal/cache"
	"enrollwall/internal/config"
	"enrollwall/internal/db"
	"enrollwall/internal/handler"
	"enrollwall/internal/logger"
	"enrollwall/internal/queue"
	"enrollwall/internal/repository"
	"enrollwall/internal/router"
	"enrollwall/internal/service"
)

// @title Enrollwall API
// @version 1.0
// @description Course enrollment backend: users, courses and the enrollment lifecycle.
// @host localhost:8080
// @BasePath /v1
// @schemes http
func main() {
	cfg := config.Load()
	logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg)
	stop()
	if err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the listener fails. Resources are
// released before it returns.
func run(ctx context.Context, cfg *config.Config) error {
	gormDB, err := db.Open(cfg.DBDriver, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	if cfg.ResetDB {
		slog.Warn("reset requested, dropping all tables")
		if err := db.DropAll(gormDB); err != nil {
			slog.Warn("drop tables failed", "error", err)
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	publisher := queue.NewPublisher(cfg.AMQPURL)
	defer publisher.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	courseRepo := repository.NewCourseRepository(gormDB)
	enrollmentRepo := repository.NewEnrollmentRepository(gormDB)

	// Initialize services
	guard := service.NewRoleGuard(userRepo)
	userService := service.NewUserService(userRepo, courseRepo, auth.NewBcryptHasher(cfg.BcryptCost), cacheClient)
	courseService := service.NewCourseService(courseRepo, guard, cacheClient)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, userRepo, courseRepo, guard, publisher, service.EnrollmentOptions{
		StrictTerminalStatus: cfg.StrictTerminalStatus,
	})

	e := echo.New()
	e.HideBanner = true
	router.Register(
		e,
		handler.NewUserHandler(userService),
		handler.NewCourseHandler(courseService),
		handler.NewEnrollmentHandler(enrollmentService),
	)

	swaggerURL := "http://localhost:" + cfg.ServerPort + "/swagger/index.html"
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
		swaggerURL = cfg.SwaggerHost + "/swagger/index.html"
		if !strings.HasPrefix(cfg.SwaggerHost, "http://") && !strings.HasPrefix(cfg.SwaggerHost, "https://") {
			swaggerURL = "http://" + swaggerURL
		}
	}
	slog.Info("starting server",
		"port", cfg.ServerPort,
		"db_driver", cfg.DBDriver,
		"cache", cfg.RedisAddr != "",
		"events", cfg.AMQPURL != "",
		"strict_terminal_status", cfg.StrictTerminalStatus,
		"swagger", swaggerURL,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server start: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
	slog.Info("server stopped")
	return nil
}
