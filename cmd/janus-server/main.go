package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hzouari/janus/internal/config"
	"github.com/hzouari/janus/internal/db"
	"github.com/hzouari/janus/internal/httpapi"
	"github.com/hzouari/janus/internal/janus/service"
	"github.com/hzouari/janus/internal/janus/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	logger := log.New()
	logger.SetFormatter(&log.JSONFormatter{})
	if cfg.Env == "dev" {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		logger.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	database, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.WithError(err).Fatal("cannot open database")
	}
	defer database.Close()

	writer := db.NewWorker(database)
	defer writer.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, database); err != nil {
			logger.WithError(err).Fatal("dev seed failed")
		}
	}

	identities := sqlite.NewIdentityStore(database)
	attendance := sqlite.NewAttendanceStore(database, writer)

	// Services
	engine := service.NewDecisionEngine(identities)
	recorder := service.NewAttendanceLogger(attendance, 0, logger)

	pruner := service.NewLogPruner(attendance, service.PrunerConfig{
		RetentionDays: cfg.RetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	// HTTP
	srv := httpapi.NewServer(httpapi.ServerConfig{Addr: cfg.HTTPAddr}, engine, recorder, logger)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
