package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	auction "auction-house/internal/auctionService"
	"auction-house/internal/config"
	escrow "auction-house/internal/escrowService"
	"auction-house/internal/jobs"
	"auction-house/internal/notify"
	"auction-house/internal/postgres"
	"auction-house/internal/realtime"
	"auction-house/internal/server"
	"auction-house/utils"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}
	utils.SetLevel(cfg.AppLogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	pool, err := postgres.Connect(ctx, cfg.DatabaseDSN())
	if err != nil {
		utils.Fatal("failed to connect to database", map[string]any{"error": err.Error()})
	}
	defer pool.Close()
	store := postgres.NewStore(pool)

	// Redis fan-out
	rdb := realtime.NewClient(cfg.RedisAddr)
	defer rdb.Close()
	events := realtime.NewRedisPublisher(rdb)

	// Kafka notifications
	producer := notify.NewProducer(cfg.KafkaBrokers, notify.TopicNotifications, cfg.KafkaInboxBuffer)
	producer.Start(ctx)
	notifier := notify.NewKafkaNotifier(producer)

	// Services
	auctionSvc := auction.NewAuctionService(store, notifier, events, auction.Config{
		ExtendWindow: cfg.ExtendWindow,
		HoldPeriod:   cfg.HoldPeriod(),
	})
	escrowSvc := escrow.NewEscrowService(store, notifier, cfg.HoldPeriod())

	// Background sweeps
	scheduler, err := jobs.NewScheduler(auctionSvc, escrowSvc, jobs.Specs{
		EndExpiredAuctions: cfg.AuctionSweepSpec,
		ActivateAuctions:   cfg.ActivateSweepSpec,
		ReleaseEscrows:     cfg.EscrowSweepSpec,
	})
	if err != nil {
		utils.Fatal("failed to build scheduler", map[string]any{"error": err.Error()})
	}
	scheduler.Start()

	// HTTP server
	router := server.SetupRouter(auctionSvc, escrowSvc)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	go func() {
		utils.Info("starting auction server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Fatal("server failed", map[string]any{"error": err.Error()})
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	utils.Info("shutting down", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	scheduler.Stop()
	producer.Close() // signal the flush loop to drain what is buffered
	cancel()
	producer.WaitClosed()
}
