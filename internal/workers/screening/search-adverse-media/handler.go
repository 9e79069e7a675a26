package searchadversemedia

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"adverse-media-agent/internal/common/errors"
	"adverse-media-agent/internal/common/logger"
	"adverse-media-agent/internal/common/metrics"
	"adverse-media-agent/internal/common/observability"
	"adverse-media-agent/internal/common/validation"
	"adverse-media-agent/internal/models"
)

const TaskType = "adverse-media-search"

// Searcher is the part of the screening agent this worker needs.
type Searcher interface {
	Search(ctx context.Context, entityName string) models.SearchBundle
}

type Handler struct {
	config        *Config
	agent         Searcher
	logger        logger.Logger
	errorHandler  *errors.ErrorHandler
	observability *observability.Observability
}

type HandlerOptions struct {
	Config        *Config
	Agent         Searcher
	Logger        logger.Logger
	Observability *observability.Observability
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Agent == nil {
		return nil, fmt.Errorf("%s requires a screening agent", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:        cfg,
		agent:         opts.Agent,
		logger:        log,
		errorHandler:  errors.NewErrorHandler(log),
		observability: opts.Observability,
	}, nil
}

// Handle completes every job with a well-formed entity name, even when the
// search itself failed. Only malformed input is reported to the engine.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	if h.observability != nil {
		var span trace.Span
		ctx, span = h.observability.StartSpan(ctx, TaskType)
		defer span.End()
	}

	log := h.logger.WithFields(map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"requestId":          uuid.NewString(),
	})
	log.Info("Processing adverse media search job", nil)

	input, err := h.parseInput(job)
	if err != nil {
		bpmnErr := h.errorHandler.HandleJobError(context.Background(), client, job, err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
		h.record(ctx, "failed", startTime)
		return
	}

	output := h.Execute(ctx, input)
	h.completeJob(client, job, output, log)
	h.record(ctx, "success", startTime)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("failed to parse job variables: %v", err))
	}

	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, errors.NewInvalidInputError(result.String())
	}

	name := strings.TrimSpace(variables["entityName"].(string))
	if name == "" {
		return nil, errors.NewInvalidInputError("entityName: must not be blank")
	}
	return &Input{EntityName: name}, nil
}

// Execute runs the search. It never fails.
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	bundle := h.agent.Search(ctx, input.EntityName)

	h.logger.Info("Adverse media search finished", map[string]interface{}{
		"entityName": input.EntityName,
		"results":    len(bundle.Results),
		"images":     len(bundle.Images),
	})
	return &Output{SearchData: bundle}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output, log logger.Logger) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		log.Error("Failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		log.Error("Failed to complete job", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) record(ctx context.Context, status string, start time.Time) {
	duration := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(duration.Seconds())
	if h.observability != nil {
		h.observability.RecordJobProcessed(ctx, TaskType, status)
		h.observability.RecordJobDuration(ctx, TaskType, duration, status)
	}
}
