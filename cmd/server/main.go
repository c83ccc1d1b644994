package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"neighborly/internal/config"
	"neighborly/internal/handler"
	"neighborly/internal/httpserver"
	"neighborly/internal/intake"
	"neighborly/internal/mailbox"
	"neighborly/internal/repository"
	"neighborly/internal/service"
	"neighborly/pkg/db"
	"neighborly/pkg/logger"
	"neighborly/pkg/mq"
	"neighborly/pkg/outbox"
	"neighborly/pkg/redis"
	"neighborly/pkg/util"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting neighborly server...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("port", cfg.Server.Port),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis
	rdb := redis.NewClient(cfg.Redis)
	defer rdb.Close()

	// MQ Publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Repositories
	userRepo := repository.NewUserRepository(dbConn)
	groupRepo := repository.NewGroupRepository(dbConn)
	typeRepo := repository.NewServiceTypeRepository(dbConn)
	requestRepo := repository.NewRequestRepository(dbConn)
	recRepo := repository.NewRecommendationRepository(dbConn)
	followRepo := repository.NewFollowRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	processedRepo := repository.NewProcessedMessageRepository(dbConn)

	// Services
	authService := service.NewAuthService(userRepo, publisher, cfg.JWT.Secret, log)
	requestService := service.NewRequestService(requestRepo, groupRepo, userRepo, typeRepo, log)
	recService := service.NewRecommendationService(recRepo, requestRepo, groupRepo, typeRepo, log)

	// Inbound mailbox（没配置就不挂载手动轮询）
	var poller *intake.Poller
	if cfg.Mailbox.CredentialsFile != "" {
		source, err := mailbox.NewGmailSource(context.Background(), cfg.Mailbox)
		if err != nil {
			log.Warn("Mailbox unavailable, manual intake disabled", zap.Error(err))
		} else {
			deduper := util.NewDeduperWithLogger(rdb, 24*time.Hour, log)
			ledger := intake.NewLedger(deduper, processedRepo)
			writer := intake.NewFanoutWriter(groupRepo, requestRepo)
			poller = intake.NewPoller(source, typeRepo, userRepo, writer, ledger,
				cfg.Mailbox.ServiceAddress, int64(cfg.Intake.BatchSize), log)
		}
	}

	// Outbox replay（管理端）
	outboxRepo := outbox.NewRepository(dbConn)
	replayService := outbox.NewReplayService(outboxRepo, publisher)

	handlers := httpserver.Handlers{
		Auth:           handler.NewAuthHandler(authService, log),
		Group:          handler.NewGroupHandler(groupRepo, log),
		Request:        handler.NewRequestHandler(requestService, log),
		Recommendation: handler.NewRecommendationHandler(recService, log),
		Social:         handler.NewSocialHandler(followRepo, notificationRepo, recService, log),
		Intake:         handler.NewIntakeHandler(poller, log),
		Admin:          handler.NewAdminHandler(replayService, log),
	}

	router := httpserver.NewRouter(handlers, userRepo, cfg.JWT.Secret, dbConn, publisher)
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	publisher.Close()
	dbConn.Close()

	log.Info("Server shutdown complete")
}
