package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"adverse-media-agent/internal/common/config"
)

// JobHandler is implemented by every screening worker.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// WorkerGroup tracks the job workers opened by the manager so they can be
// closed together on shutdown.
type WorkerGroup struct {
	client  zbc.Client
	logger  *zap.Logger
	workers map[string]worker.JobWorker
}

func NewWorkerGroup(client zbc.Client, logger *zap.Logger) *WorkerGroup {
	return &WorkerGroup{
		client:  client,
		logger:  logger,
		workers: map[string]worker.JobWorker{},
	}
}

// Start opens a job worker for taskType unless it is disabled. When
// fetchVariables is set only those process variables are activated.
func (g *WorkerGroup) Start(taskType string, wcfg config.WorkerConfig, handler JobHandler, fetchVariables ...string) bool {
	if !wcfg.Enabled {
		g.logger.Info("worker disabled", zap.String("taskType", taskType))
		return false
	}

	builder := g.client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Name(taskType)
	if len(fetchVariables) > 0 {
		builder = builder.FetchVariables(fetchVariables...)
	}
	g.workers[taskType] = builder.Open()

	g.logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return true
}

// TaskTypes lists the running workers.
func (g *WorkerGroup) TaskTypes() []string {
	out := make([]string, 0, len(g.workers))
	for taskType := range g.workers {
		out = append(out, taskType)
	}
	return out
}

// Close stops every worker and waits for in-flight jobs.
func (g *WorkerGroup) Close() {
	for taskType, w := range g.workers {
		g.logger.Info("stopping worker", zap.String("taskType", taskType))
		w.Close()
		w.AwaitClose()
	}
}
