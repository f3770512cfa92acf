package services

import (
	"context"
	"time"

	"replate-api/internal/adapters/persistence/repositories"
	"replate-api/internal/adapters/storage"
	"replate-api/internal/pkg/logger"
	"replate-api/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultJanitorSchedule runs the sweep daily at 03:15
	DefaultJanitorSchedule = "15 3 * * *"
	// OrphanGracePeriod keeps fresh uploads whose row may not be written yet
	OrphanGracePeriod = 24 * time.Hour
)

// UploadJanitor removes uploaded files that no store or product references
type UploadJanitor struct {
	storeRepo repositories.StoreRepository
	files     storage.FileStore
	metrics   *metrics.Metrics
	cron      *cron.Cron
	now       func() time.Time
}

// NewUploadJanitor creates a new janitor
func NewUploadJanitor(storeRepo repositories.StoreRepository, files storage.FileStore, m *metrics.Metrics) *UploadJanitor {
	return &UploadJanitor{
		storeRepo: storeRepo,
		files:     files,
		metrics:   m,
		cron:      cron.New(),
		now:       time.Now,
	}
}

// Start schedules Sweep on schedule (standard five-field cron syntax)
func (j *UploadJanitor) Start(schedule string) error {
	if _, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := j.Sweep(ctx); err != nil {
			logger.Error("upload sweep failed", "error", err)
		}
	}); err != nil {
		return err
	}
	j.cron.Start()
	logger.Info("upload janitor started", "schedule", schedule)
	return nil
}

// Stop waits for a running sweep to finish
func (j *UploadJanitor) Stop() {
	<-j.cron.Stop().Done()
	logger.Info("upload janitor stopped")
}

// Sweep deletes unreferenced files older than the grace period and returns
// how many were removed.
func (j *UploadJanitor) Sweep(ctx context.Context) (int, error) {
	refs, err := j.storeRepo.ReferencedURLs(ctx)
	if err != nil {
		return 0, err
	}
	objects, err := j.files.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := j.now().Add(-OrphanGracePeriod)
	removed := 0
	for _, obj := range objects {
		if _, ok := refs[obj.URL]; ok {
			continue
		}
		if obj.ModTime.After(cutoff) {
			continue
		}
		if err := j.files.Delete(ctx, obj.URL); err != nil {
			logger.Warn("orphan delete failed", "url", obj.URL, "error", err)
			continue
		}
		removed++
	}

	j.metrics.UploadsSwept(removed)
	logger.Info("upload sweep finished", "scanned", len(objects), "removed", removed)
	return removed, nil
}
