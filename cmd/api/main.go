package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"taskboard/config"
	"taskboard/internal/handler"
	"taskboard/internal/httpserver"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service/auth"
	"taskboard/internal/service/cleanup"
	"taskboard/internal/service/project"
	"taskboard/internal/service/task"
	"taskboard/pkg/db"
	"taskboard/pkg/logger"
	"taskboard/pkg/mq"
	"taskboard/pkg/ratelimit"
	"taskboard/pkg/redisclient"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting taskboard API...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("port", cfg.Server.Port),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	if err := repository.Migrate(context.Background(), dbConn, log); err != nil {
		log.Fatal("DB migration failed", zap.Error(err))
	}

	// RabbitMQ Publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Repositories
	userRepo := repository.NewUserRepository(dbConn)
	taskRepo := repository.NewTaskRepository(dbConn, log)
	projectRepo := repository.NewProjectRepository(dbConn, log)
	tokenRepo := repository.NewTokenRepository(dbConn, log)

	// Services
	authService := auth.NewService(userRepo, tokenRepo, publisher, cfg.JWT.Secret, log)
	if cfg.Reset.MaxAttempts > 0 {
		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		limiter := ratelimit.NewCounter(rdb, model.ResetTokenTTL)
		authService = authService.WithAttemptLimit(limiter, cfg.Reset.MaxAttempts)
		log.Info("Reset attempt limiter enabled", zap.Int("max_attempts", cfg.Reset.MaxAttempts))
	}
	taskService := task.NewService(taskRepo, projectRepo, log)
	projectService := project.NewService(projectRepo, log)

	// Expired reset tokens are already rejected on use; the sweeper just
	// keeps the table from accumulating.
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	sweeper := cleanup.NewSweeper(tokenRepo, 24*time.Hour, log)
	go sweeper.Run(sweepCtx)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	taskHandler := handler.NewTaskHandler(taskService, log)
	projectHandler := handler.NewProjectHandler(projectService, log)

	// Router
	router := httpserver.NewRouter(authHandler, taskHandler, projectHandler, cfg.JWT.Secret, log, dbConn)

	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("server start failed", zap.Error(err))
	}
}
