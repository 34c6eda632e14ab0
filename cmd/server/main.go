package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/database"
	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/logger"
	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/queue"
	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/router"
)

func main() {
	log := logger.NewFromEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Critical("config load failed", "err", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Critical("database open failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unreachable, response cache disabled")
	} else {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher := queue.NewPublisher(cfg.Queue.URL, cfg.Queue.AuditQueue, log)
	if cfg.Queue.ConsumerEnabled {
		consumer := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.AuditQueue, cfg.Queue.AuditLogPath, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit consumer stopped", "err", err)
			}
		}()
	}

	h := handler.NewAdminHandler(handler.Stores{
		Events:       repository.NewEventRepo(db),
		Bars:         repository.NewBarRepo(db),
		BarItems:     repository.NewBarItemRepo(db),
		Arrangements: repository.NewArrangementRepo(db),
		Assignments:  repository.NewAssignmentRepo(db, log),
	}, publisher, log)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, db)
	router.RegisterAdmin(e, h, router.AdminOptions{
		JWTSecret:   cfg.JWTSecret,
		Cache:       middleware.NewRedisCache(cfg.Cache, rdb),
		Invalidator: middleware.NewCacheInvalidator(rdb, cfg.Cache.Prefix, log),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Critical("http server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	log.Info("server stopped")
}
