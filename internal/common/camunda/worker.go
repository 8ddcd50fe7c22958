// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"appointment-workers/internal/common/config"
	"appointment-workers/internal/common/errors"
	"appointment-workers/internal/common/logger"
	"appointment-workers/internal/common/metrics"
)

// Worker is one opened job worker subscription.
type Worker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// StartWorker opens a job worker for taskType. The handler is instrumented and
// a panic inside it fails the job instead of the process.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler worker.JobHandler, log logger.Logger) *Worker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, log)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return &Worker{worker: jobWorker, logger: log, taskType: taskType}
}

func (w *Worker) TaskType() string {
	return w.taskType
}

func (w *Worker) Stop() {
	w.logger.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
	w.worker.AwaitClose()
}

func Instrument(taskType string, handler worker.JobHandler, log logger.Logger) worker.JobHandler {
	errHandler := errors.NewErrorHandler(log)
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		defer func() {
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
			if r := recover(); r != nil {
				metrics.WorkerJobsFailed.WithLabelValues(taskType, string(errors.ErrCodeInternal)).Inc()
				errHandler.HandleJobError(context.Background(), client, job,
					errors.NewInternalError(fmt.Errorf("handler panic: %v", r)))
			}
		}()
		handler(client, job)
	}
}
