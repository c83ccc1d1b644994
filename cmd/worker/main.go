package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"neighborly/internal/config"
	"neighborly/internal/mqhandler"
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

	log.Info("Starting neighborly worker...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("mq_url", cfg.MQ.URL),
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

	// MQ Publisher（outbox dispatcher 使用）
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Outbox Dispatcher
	outboxRepo := outbox.NewRepository(dbConn)
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
	dispatcherCtx, dispatcherCancel := context.WithCancel(context.Background())
	defer dispatcherCancel()
	go dispatcher.Start(dispatcherCtx)

	// Repositories & services
	userRepo := repository.NewUserRepository(dbConn)
	groupRepo := repository.NewGroupRepository(dbConn)
	requestRepo := repository.NewRequestRepository(dbConn)
	followRepo := repository.NewFollowRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	sender := service.NewNotificationSender(dbConn, notificationRepo, log)
	deduper := util.NewDeduperWithLogger(rdb, 10*time.Minute, log)
	retryCounter := util.NewRetryCounter(rdb, 1*time.Hour)

	// Consumers
	requestHandler := mqhandler.NewRequestCreatedHandler(groupRepo, userRepo, sender, deduper, retryCounter, log)
	requestConsumer, err := mq.NewConsumer(cfg.MQ.URL, "notify.request_created", "request.created", log)
	if err != nil {
		log.Fatal("Failed to init request.created consumer", zap.Error(err))
	}
	defer requestConsumer.Close()
	requestConsumer.SetHandler(requestHandler.Handle)

	recHandler := mqhandler.NewRecommendationCreatedHandler(requestRepo, followRepo, userRepo, sender, deduper, retryCounter, log)
	recConsumer, err := mq.NewConsumer(cfg.MQ.URL, "notify.recommendation_created", "recommendation.created", log)
	if err != nil {
		log.Fatal("Failed to init recommendation.created consumer", zap.Error(err))
	}
	defer recConsumer.Close()
	recConsumer.SetHandler(recHandler.Handle)

	go func() {
		if err := requestConsumer.StartConsuming(); err != nil {
			log.Fatal("request.created consumer failed", zap.Error(err))
		}
	}()
	go func() {
		if err := recConsumer.StartConsuming(); err != nil {
			log.Fatal("recommendation.created consumer failed", zap.Error(err))
		}
	}()

	// HTTP Server (for health checks and metrics)
	engine := gin.Default()
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	engine.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()
		if err := dbConn.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		if !publisher.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: engine,
	}
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("Worker is fully initialized and running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down worker gracefully...")
	dispatcherCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	requestConsumer.Close()
	recConsumer.Close()
	publisher.Close()
	dbConn.Close()

	log.Info("Worker shutdown complete")
}
