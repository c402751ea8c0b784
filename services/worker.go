package services

import (
	"context"

	"catalog-service/models"

	"go.uber.org/zap"
)

type jobStore interface {
	Get(ctx context.Context, id string) (*models.ImportJob, error)
	Save(ctx context.Context, job *models.ImportJob) error
}

type uploadImporter interface {
	ImportUpload(ctx context.Context, key string) (*models.BulkImportResult, error)
}

// ImportHook runs after a queued import completes successfully.
type ImportHook func(ctx context.Context, result *models.BulkImportResult)

// StartBulkImportWorker consumes queued import jobs until ctx is cancelled.
// onDone may be nil.
func StartBulkImportWorker(ctx context.Context, queue *ImportJobQueue, svc *ProductService, onDone ImportHook) {
	if queue == nil || svc == nil {
		zap.L().Warn("bulk import worker not started: missing dependencies")
		return
	}

	go func() {
		zap.L().Info("bulk import worker started")
		err := queue.Consume(ctx, func(ctx context.Context, jobID string) {
			processImportJob(ctx, queue, svc, jobID, onDone)
		})
		zap.L().Info("bulk import worker stopping", zap.Error(err))
	}()
}

// processImportJob runs one queued import and records its outcome on the job.
func processImportJob(ctx context.Context, jobs jobStore, importer uploadImporter, jobID string, onDone ImportHook) {
	log := zap.L().With(zap.String("job", jobID))

	job, err := jobs.Get(ctx, jobID)
	if err != nil {
		log.Error("failed to read import job", zap.Error(err))
		return
	}

	job.Status = models.JobProcessing
	if err := jobs.Save(ctx, job); err != nil {
		log.Warn("failed to mark job processing", zap.Error(err))
	}

	result, err := importer.ImportUpload(ctx, job.UploadKey)
	if err != nil {
		job.Status = models.JobFailed
		job.Error = err.Error()
		log.Error("bulk import failed", zap.Error(err))
	} else {
		job.Status = models.JobDone
		job.Result = result
		log.Info("bulk import finished",
			zap.Int("inserted", result.InsertedCount),
			zap.Int("errors", result.ErrorCount))
	}

	if err := jobs.Save(ctx, job); err != nil {
		log.Error("failed to save import job result", zap.Error(err))
	}
	if job.Status == models.JobDone && onDone != nil {
		onDone(ctx, result)
	}
}
