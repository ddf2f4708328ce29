package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"payroll-portal/payroll-portal-backend/internal/config"
	"payroll-portal/payroll-portal-backend/internal/documents"
)

// CleanupWorker reaps PENDING documents whose upload never reached the
// object store. A crashed upload leaves a row with an empty original path;
// nothing references it and a retried upload creates a fresh document.
type CleanupWorker struct {
	repo   documents.Repository
	logger *zap.Logger
	maxAge time.Duration
}

// NewCleanupWorker creates a new cleanup worker
func NewCleanupWorker(repo documents.Repository, logger *zap.Logger, maxAge time.Duration) *CleanupWorker {
	return &CleanupWorker{
		repo:   repo,
		logger: logger,
		maxAge: maxAge,
	}
}

// Run executes one cleanup pass.
func (w *CleanupWorker) Run(ctx context.Context) {
	cutoff := time.Now().Add(-w.maxAge)
	removed, err := w.repo.DeleteOrphanedPending(ctx, cutoff)
	if err != nil {
		w.logger.Error("Orphan cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		w.logger.Info("Removed orphaned pending documents",
			zap.Int64("count", removed),
			zap.Time("cutoff", cutoff))
	}
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	worker := NewCleanupWorker(documents.NewRepository(db), logger, cfg.Worker.OrphanMaxAge)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Worker.CleanupSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		worker.Run(ctx)
	})
	if err != nil {
		logger.Fatal("Invalid cleanup schedule", zap.Error(err))
	}

	scheduler.Start()
	logger.Info("Cleanup worker started",
		zap.String("schedule", cfg.Worker.CleanupSchedule),
		zap.Duration("orphan_max_age", cfg.Worker.OrphanMaxAge))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx := scheduler.Stop()
	<-ctx.Done()
	logger.Info("Cleanup worker exiting")
}
