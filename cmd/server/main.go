package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venue-backend/internal/config"
	"venue-backend/internal/database"
	"venue-backend/internal/deduction"
	"venue-backend/internal/lock"
	"venue-backend/internal/logger"
	"venue-backend/internal/metrics"
	"venue-backend/internal/order"
	"venue-backend/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.UsesDefaultDSN() {
		zlog.Warn("DATABASE_DSN tanımlı değil, varsayılan yerel bağlantı kullanılıyor")
	}

	db, err := database.Init(cfg, zlog)
	if err != nil {
		zlog.Fatal("veritabanı başlatılamadı", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine := deduction.NewEngine(db,
		deduction.WithMode(deduction.Mode(cfg.DeductionMode)),
		deduction.WithLogger(zlog),
		deduction.WithMetrics(metrics.NewDeduction(registry)),
	)

	var locker lock.Locker = lock.NewMemory()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			zlog.Fatal("redis bağlantısı kurulamadı", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		locker = lock.NewRedis(rdb, cfg.LockNamespace)
		zlog.Info("sipariş kilidi redis üzerinde", zap.String("addr", cfg.RedisAddr), zap.String("namespace", cfg.LockNamespace))
	}

	orders := order.NewService(db, engine, locker, cfg.OrderLockTTL, zlog)

	app := server.NewApp(server.Deps{
		Config:   cfg,
		Engine:   engine,
		Orders:   orders,
		Log:      zlog,
		Gatherer: registry,
	})

	go func() {
		zlog.Info("server çalışıyor",
			zap.String("port", cfg.HTTPPort),
			zap.String("deduction_mode", string(engine.Mode())),
		)
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			zlog.Fatal("server durdu", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("server kapatılıyor")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("server kapatılamadı", zap.Error(err))
	}
}
