package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"enrollwall/internal/auth"
	"enrollwall/internal/config"
	"enrollwall/internal/db"
	"enrollwall/internal/logger"
	"enrollwall/internal/queue"
	"enrollwall/internal/repository"
	"enrollwall/internal/seed"
	"enrollwall/internal/service"
)

func main() {
	file := flag.String("file", "fixtures.yaml", "YAML fixture to load")
	flag.Parse()

	cfg := config.Load()
	logger.New(cfg.LogLevel)

	if err := run(context.Background(), cfg, *file); err != nil {
		slog.Error("seed failed", "file", *file, "error", err)
		os.Exit(1)
	}
	slog.Info("seed completed", "file", *file)
}

func run(ctx context.Context, cfg *config.Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open fixture: %w", err)
	}
	fixture, err := seed.Decode(f)
	f.Close()
	if err != nil {
		return err
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	publisher := queue.NewPublisher(cfg.AMQPURL)
	defer publisher.Close()

	userRepo := repository.NewUserRepository(gormDB)
	courseRepo := repository.NewCourseRepository(gormDB)
	enrollmentRepo := repository.NewEnrollmentRepository(gormDB)
	guard := service.NewRoleGuard(userRepo)

	seeder := &seed.Seeder{
		Users:          service.NewUserService(userRepo, courseRepo, auth.NewBcryptHasher(cfg.BcryptCost), nil),
		Courses:        service.NewCourseService(courseRepo, guard, nil),
		Enrollments:    service.NewEnrollmentService(enrollmentRepo, userRepo, courseRepo, guard, publisher, service.EnrollmentOptions{StrictTerminalStatus: cfg.StrictTerminalStatus}),
		UserRepo:       userRepo,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
	}

	_, err = seeder.Apply(ctx, fixture)
	return err
}
