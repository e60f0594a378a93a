package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/juanjparedez/mundobl/internal/catalog"
)

const TaskMigrateImages = "images:migrate"

// migrateImagesID keeps at most one sweep queued at a time.
const migrateImagesID = "images:migrate:sweep"

type ImageMigrator interface {
	MigrateImages(ctx context.Context) (catalog.MigrationReport, error)
}

// Enqueuer is the slice of Queue that producers need.
type Enqueuer interface {
	EnqueueUnique(ctx context.Context, taskType string, payload interface{}, uniqueID string, opts ...asynq.Option) (string, error)
}

// EnqueueImageMigration schedules the image sweep unless one is already pending.
func EnqueueImageMigration(ctx context.Context, q Enqueuer) (string, error) {
	return q.EnqueueUnique(ctx, TaskMigrateImages, struct{}{}, migrateImagesID, asynq.Queue("low"), asynq.MaxRetry(1))
}

func NewMigrateImagesHandler(m ImageMigrator, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		report, err := m.MigrateImages(ctx)
		if err != nil {
			return fmt.Errorf("migrate images: %w", err)
		}
		logger.Info("image migration finished",
			"scanned", report.Scanned, "hosted", report.Hosted,
			"skipped", report.Skipped, "failed", report.Failed)
		return nil
	}
}

// RegisterHandlers wires every task type to its handler.
func RegisterHandlers(q *Queue, m ImageMigrator) {
	q.RegisterHandler(TaskMigrateImages, NewMigrateImagesHandler(m, q.logger))
}
