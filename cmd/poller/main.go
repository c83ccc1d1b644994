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
	"neighborly/internal/intake"
	"neighborly/internal/mailbox"
	"neighborly/internal/repository"
	"neighborly/pkg/db"
	"neighborly/pkg/logger"
	"neighborly/pkg/redis"
	"neighborly/pkg/util"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting neighborly poller...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("service_address", cfg.Mailbox.ServiceAddress),
		zap.Int("batch_size", cfg.Intake.BatchSize),
		zap.Int("interval_seconds", cfg.Intake.IntervalSeconds),
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

	// Mailbox
	source, err := mailbox.NewGmailSource(context.Background(), cfg.Mailbox)
	if err != nil {
		log.Fatal("Failed to init mailbox source", zap.Error(err))
	}

	// Pipeline
	userRepo := repository.NewUserRepository(dbConn)
	groupRepo := repository.NewGroupRepository(dbConn)
	typeRepo := repository.NewServiceTypeRepository(dbConn)
	requestRepo := repository.NewRequestRepository(dbConn)
	processedRepo := repository.NewProcessedMessageRepository(dbConn)

	deduper := util.NewDeduperWithLogger(rdb, 24*time.Hour, log)
	ledger := intake.NewLedger(deduper, processedRepo)
	writer := intake.NewFanoutWriter(groupRepo, requestRepo)
	poller := intake.NewPoller(source, typeRepo, userRepo, writer, ledger,
		cfg.Mailbox.ServiceAddress, int64(cfg.Intake.BatchSize), log)

	// Poll loop
	pollCtx, pollCancel := context.WithCancel(context.Background())
	defer pollCancel()

	go func() {
		interval := time.Duration(cfg.Intake.IntervalSeconds) * time.Second
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Run immediately on startup
		if _, err := poller.Run(pollCtx); err != nil {
			log.Error("Initial poll cycle failed", zap.Error(err))
		}

		for {
			select {
			case <-pollCtx.Done():
				log.Info("Poll loop stopped")
				return
			case <-ticker.C:
				if _, err := poller.Run(pollCtx); err != nil {
					log.Error("Poll cycle failed", zap.Error(err))
				}
			}
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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down poller gracefully...")
	pollCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	dbConn.Close()
	log.Info("Poller shutdown complete")
}
