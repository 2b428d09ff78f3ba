package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guestcart/config"
	"guestcart/handlers"
	"guestcart/repository"
	"guestcart/services"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, cncl := context.WithTimeout(context.Background(), 5*time.Second)
	defer cncl()

	storage, err := repository.NewCartStorage(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("cart storage is not working")
	}

	guest := services.NewGuestCartService(storage, services.SymbolFormatter{Symbol: cfg.CurrencySymbol}, cfg.CartStorageKey)
	hp := handlers.HandlerParams{GuestCart: guest}

	if cfg.DatabaseURL != "" {
		db := initDB(cfg)
		defer db.Close()
		pR, err := repository.NewProductRepository(ctx, db)
		if err != nil {
			logrus.WithError(err).Fatal("db is not working")
		}
		hp.Catalog = services.NewProductService(pR)
		logrus.Info("db connected")
	} else {
		logrus.Warn("DATABASE_URL is not set, adding products is disabled")
	}

	if cfg.RedisAddr != "" {
		rdb := initRedis(ctx, cfg)
		defer rdb.Close()
		sR, err := repository.NewSessionRepository(ctx, rdb)
		if err != nil {
			logrus.WithError(err).Fatal("redis is not working")
		}
		cartR, err := repository.NewServerCartRepository(ctx, rdb, 7*24*time.Hour)
		if err != nil {
			logrus.WithError(err).Fatal("redis is not working")
		}
		hp.Merger = services.NewMergeService(sR, cartR, guest)
		logrus.Info("redis connected")
	} else {
		logrus.Warn("REDIS_ADDR is not set, cart merge is disabled")
	}

	ha := handlers.NewHandler(hp)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           ha.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.ListenAddr).Info("starting server...")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	waitForShutdown(srv)
}

func initDB(cfg config.Config) *sql.DB {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open db")
	}
	return db
}

func initRedis(ctx context.Context, cfg config.Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if status := rdb.Ping(ctx); status.Err() != nil {
		logrus.WithError(status.Err()).Fatal("redis is not working")
	}
	return rdb
}

func waitForShutdown(srv *http.Server) {
	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	s := <-signalC
	logrus.WithField("signal", s.String()).Info("Shutting down...")

	ctx, cncl := context.WithTimeout(context.Background(), 10*time.Second)
	defer cncl()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}
