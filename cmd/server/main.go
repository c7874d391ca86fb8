package main

import (
	"context"
	"database/sql"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/hospital-e/supply-node/internal/adapter/channel"
	"github.com/hospital-e/supply-node/internal/adapter/handler"
	"github.com/hospital-e/supply-node/internal/adapter/storage"
	"github.com/hospital-e/supply-node/internal/config"
	"github.com/hospital-e/supply-node/internal/core/service"
	"github.com/hospital-e/supply-node/internal/logging"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Info("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 20,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	log.Info("connected to redis")

	// Initialize the sync channel connection
	conn, err := grpc.NewClient(cfg.SyncAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to create sync channel client: %v", err)
	}
	log.WithField("addr", cfg.SyncAddr).Info("sync channel client created")

	// Adapters
	store := storage.NewMySQLAdapter(db, cfg.HospitalID, cfg.ProductCode)
	syncChannel := channel.NewGRPCSyncChannel(conn, cfg.SyncTimeout)
	publisher := channel.NewRedisEventPublisher(rdb, cfg.InventoryStream)
	source := channel.NewRedisCommandSource(rdb, cfg.OrderCommandStream, cfg.ConsumerGroup, cfg.ConsumerName, cfg.ConsumerBlock)

	if err := source.Init(ctx); err != nil {
		log.Fatalf("failed to set up command source: %v", err)
	}

	// Core services
	sim := service.NewSimulator(cfg.ConsumptionVariation, cfg.SpikeProbability, cfg.SpikeMultiplier, rand.NewSource(time.Now().UnixNano()))
	notifier := service.NewNotifier(syncChannel, publisher, store, log, cfg.SyncRetryCount, cfg.SyncRetryDelay)
	monitor := service.NewMonitor(store, sim, notifier, log, cfg.HospitalID, cfg.ProductCode, cfg.DailyConsumptionAvg, cfg.InitialStock, cfg.ReorderThresholdDays)
	ingestor := service.NewIngestor(store, log, cfg.HospitalID)

	// Start the monitor and ingestion loops
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		monitor.Run(ctx, cfg.CheckInterval)
	}()
	go func() {
		defer wg.Done()
		ingestor.Run(ctx, source)
	}()

	// Operator HTTP surface
	mux := http.NewServeMux()
	handler.NewHTTPHandler(monitor, store, log).Register(mux)

	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: mux,
	}
	go func() {
		log.WithField("port", cfg.HTTPPort).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info("HTTP server stopped")

	wg.Wait()
	log.Info("loops stopped")

	conn.Close()
	rdb.Close()
	db.Close()
	log.Info("connections closed")
}
