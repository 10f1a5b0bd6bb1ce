package services

import (
	"context"
	"errors"
	"time"

	"chamado-service/repository"

	"go.uber.org/zap"
)

const workerPollTimeout = 5 * time.Second

// StartBatchWorker consumes queued batch ids until ctx is cancelled.
func StartBatchWorker(ctx context.Context, jobs repository.JobStore, svc ChamadoService) {
	if jobs == nil || svc == nil {
		zap.L().Warn("batch worker not started: missing dependencies")
		return
	}

	go func() {
		zap.L().Info("batch worker started")
		for {
			select {
			case <-ctx.Done():
				zap.L().Info("batch worker stopping")
				return
			default:
			}

			id, err := jobs.Next(ctx, workerPollTimeout)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				zap.L().Error("batch queue read failed", zap.Error(err))
				time.Sleep(500 * time.Millisecond)
				continue
			}
			if id == "" {
				continue
			}

			start := time.Now()
			if err := svc.ProcessJob(ctx, id); err != nil {
				zap.L().Error("batch job failed", zap.String("job_id", id), zap.Error(err))
				continue
			}
			zap.L().Info("batch job finished", zap.String("job_id", id), zap.Duration("elapsed", time.Since(start)))
		}
	}()
}
