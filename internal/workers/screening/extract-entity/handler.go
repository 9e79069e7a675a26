package extractentity

import (
	"context"
	"encoding/json"
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

const TaskType = "adverse-media-extract-entity"

// Extractor is the part of the screening agent this worker needs.
type Extractor interface {
	Extract(ctx context.Context, documentText string) (models.ExtractedEntity, error)
	ReadDocument(path string) (string, error)
}

type Handler struct {
	config        *Config
	agent         Extractor
	logger        logger.Logger
	errorHandler  *errors.ErrorHandler
	observability *observability.Observability
}

type HandlerOptions struct {
	Config        *Config
	Agent         Extractor
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
	log.Info("Processing extract entity job", nil)

	input, err := h.parseInput(job)
	if err == nil {
		var output *Output
		output, err = h.Execute(ctx, input)
		if err == nil {
			h.completeJob(client, job, output, log)
			h.record(ctx, "success", startTime)
			metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
			return
		}
	}

	bpmnErr := h.errorHandler.HandleJobError(context.Background(), client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
	h.record(ctx, "failed", startTime)
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

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("failed to decode job variables: %v", err))
	}
	return &input, nil
}

// Execute extracts the entity from the inline text, or from the document at
// DocumentPath when no text was given.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	text := input.DocumentText
	if strings.TrimSpace(text) == "" && strings.TrimSpace(input.DocumentPath) != "" {
		read, err := h.agent.ReadDocument(strings.TrimSpace(input.DocumentPath))
		if err != nil {
			return nil, err
		}
		text = read
	}

	entity, err := h.agent.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	h.logger.Info("Entity extracted", map[string]interface{}{
		"subjectName": entity.SubjectName,
		"hasEmployer": entity.Employer != "",
	})
	return &Output{Extracted: entity}, nil
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
		return
	}
	log.Info("Extract entity job completed", nil)
}

func (h *Handler) record(ctx context.Context, status string, start time.Time) {
	duration := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(duration.Seconds())
	if h.observability != nil {
		h.observability.RecordJobProcessed(ctx, TaskType, status)
		h.observability.RecordJobDuration(ctx, TaskType, duration, status)
	}
}
