package usecase

import (
	"context"

	"QuantSift/internal/domain/models"
	"QuantSift/internal/domain/repository"
	"QuantSift/pkg/logger"
)

// RunRecorder persists finished scan artifacts and pushes the reconciled
// records downstream. Dry runs skip both sinks.
type RunRecorder struct {
	store     repository.ArtifactStore
	publisher repository.RecordPublisher
	log       *logger.Logger
}

func NewRunRecorder(store repository.ArtifactStore, publisher repository.RecordPublisher, log *logger.Logger) *RunRecorder {
	return &RunRecorder{store: store, publisher: publisher, log: log}
}

func (r *RunRecorder) Record(ctx context.Context, artifact *models.ScanArtifact) error {
	if artifact.DryRun {
		r.log.Info("dry run, skipping persistence", logger.String("run_id", artifact.RunID))
		return nil
	}

	if r.store != nil {
		if err := r.store.SaveRun(ctx, artifact); err != nil {
			return err
		}
	}

	if r.publisher != nil && len(artifact.Records) > 0 {
		if err := r.publisher.PublishRecords(ctx, artifact.RunID, artifact.Records); err != nil {
			// Persistence already succeeded; a publish failure should not
			// invalidate the run.
			r.log.Warn("record publish failed",
				logger.String("run_id", artifact.RunID), logger.Error(err))
		}
	}

	r.log.Info("run recorded",
		logger.String("run_id", artifact.RunID),
		logger.Int("records", len(artifact.Records)),
	)
	return nil
}
