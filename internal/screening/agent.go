// Package screening implements the adverse-media screening pipeline: entity
// extraction from a KYC document, a negative-news web search, and an AML
// risk report comparing the two.
package screening

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"adverse-media-agent/internal/common/config"
	"adverse-media-agent/internal/common/document"
	apperrors "adverse-media-agent/internal/common/errors"
	"adverse-media-agent/internal/common/llm"
	"adverse-media-agent/internal/common/logger"
	"adverse-media-agent/internal/common/metrics"
	"adverse-media-agent/internal/common/search"
	"adverse-media-agent/internal/models"
)

const tracerName = "adverse-media-agent/screening"

// AgentConfig selects the text-generation and search backends.
type AgentConfig struct {
	Backend       string
	OllamaBaseURL string
	OllamaModel   string
	GroqBaseURL   string
	GroqAPIKey    string
	GroqModel     string
	Temperature   float64
	LLMTimeout    time.Duration

	TavilyBaseURL string
	TavilyAPIKey  string
	SearchTimeout time.Duration
}

// AgentConfigFromConfig maps the application config onto an AgentConfig.
func AgentConfigFromConfig(cfg *config.Config) AgentConfig {
	return AgentConfig{
		Backend:       cfg.LLM.Backend,
		OllamaBaseURL: cfg.LLM.Ollama.BaseURL,
		OllamaModel:   cfg.LLM.Ollama.Model,
		GroqBaseURL:   cfg.LLM.Groq.BaseURL,
		GroqAPIKey:    cfg.LLM.Groq.APIKey,
		GroqModel:     cfg.LLM.Groq.Model,
		Temperature:   cfg.LLM.Temperature,
		LLMTimeout:    cfg.LLMTimeout(),
		TavilyBaseURL: cfg.Search.Tavily.BaseURL,
		TavilyAPIKey:  cfg.Search.Tavily.APIKey,
		SearchTimeout: cfg.SearchTimeout(),
	}
}

// Option customizes an Agent. Injected backends skip the matching
// credential check.
type Option func(*Agent)

func WithGenerator(g llm.Generator) Option {
	return func(a *Agent) { a.generator = g }
}

func WithSearchBackend(b search.Backend) Option {
	return func(a *Agent) { a.searchBackend = b }
}

func WithLogger(l logger.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// Agent is the single entry point used by the CLI and the workers.
type Agent struct {
	backend       string
	generator     llm.Generator
	searchBackend search.Backend
	logger        logger.Logger
	tracer        trace.Tracer

	extractor *Extractor
	search    *SearchClient
	analyzer  *Analyzer
}

// NewAgent validates credentials and builds the pipeline. It fails with a
// ConfigurationError when the selected backends cannot be used.
func NewAgent(cfg AgentConfig, opts ...Option) (*Agent, error) {
	a := &Agent{
		backend: strings.ToLower(strings.TrimSpace(cfg.Backend)),
		logger:  logger.NewNoOpLogger(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.generator == nil {
		generator, err := newGenerator(a.backend, cfg)
		if err != nil {
			return nil, err
		}
		a.generator = generator
	}

	if a.searchBackend == nil {
		key := strings.TrimSpace(cfg.TavilyAPIKey)
		if key == "" {
			return nil, apperrors.NewConfigurationError("TAVILY_API_KEY is required")
		}
		a.searchBackend = search.NewTavily(search.Config{
			BaseURL: cfg.TavilyBaseURL,
			APIKey:  key,
			Timeout: cfg.SearchTimeout,
		})
	}

	if a.backend == "" {
		a.backend = "custom"
	}
	a.extractor = NewExtractor(a.generator, a.backend, a.logger)
	a.search = NewSearchClient(a.searchBackend, a.logger)
	a.analyzer = NewAnalyzer(a.generator, a.backend, a.logger)

	a.logger.Info("Screening agent ready", map[string]interface{}{
		"backend": a.backend,
	})
	return a, nil
}

func newGenerator(backend string, cfg AgentConfig) (llm.Generator, error) {
	switch backend {
	case config.BackendOllama:
		if strings.TrimSpace(cfg.OllamaBaseURL) == "" || strings.TrimSpace(cfg.OllamaModel) == "" {
			return nil, apperrors.NewConfigurationError("ollama backend requires a base URL and a model")
		}
		return llm.NewGenerator(llm.Config{
			Backend:     llm.BackendOllama,
			BaseURL:     cfg.OllamaBaseURL,
			Model:       cfg.OllamaModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.LLMTimeout,
		})
	case config.BackendGroq:
		key := strings.TrimSpace(cfg.GroqAPIKey)
		if key == "" {
			return nil, apperrors.NewConfigurationError("groq backend requires GROQ_API_KEY")
		}
		return llm.NewGenerator(llm.Config{
			Backend:     llm.BackendGroq,
			BaseURL:     cfg.GroqBaseURL,
			APIKey:      key,
			Model:       cfg.GroqModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.LLMTimeout,
		})
	default:
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("unknown backend %q, expected ollama or groq", backend))
	}
}

// Backend names the configured text-generation backend.
func (a *Agent) Backend() string {
	return a.backend
}

// Extract pulls the subject and financial context out of documentText.
func (a *Agent) Extract(ctx context.Context, documentText string) (entity models.ExtractedEntity, err error) {
	ctx, done := a.begin(ctx, "extract")
	defer func() { done(err) }()

	return a.extractor.Extract(ctx, documentText)
}

// ExtractFile reads a PDF or text document and extracts from its text.
func (a *Agent) ExtractFile(ctx context.Context, path string) (models.ExtractedEntity, error) {
	text, err := a.ReadDocument(path)
	if err != nil {
		return models.ExtractedEntity{}, err
	}
	return a.Extract(ctx, text)
}

// ReadDocument returns the text of the document at path. A missing or
// unreadable file is an InvalidInputError; a file without text is an
// EmptyDocumentError.
func (a *Agent) ReadDocument(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", apperrors.NewInvalidInputError(fmt.Sprintf("document not found: %s", path))
	}
	text, err := document.ReadText(path)
	if err != nil {
		return "", apperrors.NewInvalidInputError(fmt.Sprintf("could not read document %s: %v", path, err))
	}
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewEmptyDocumentError()
	}
	return text, nil
}

// Search runs the adverse-media search for entityName. It never fails; a
// blank name yields an empty bundle without calling the backend.
func (a *Agent) Search(ctx context.Context, entityName string) models.SearchBundle {
	ctx, done := a.begin(ctx, "search")
	defer done(nil)

	entityName = strings.TrimSpace(entityName)
	if entityName == "" {
		a.logger.Warn("Skipping adverse media search for blank entity name", nil)
		return models.EmptySearchBundle()
	}
	return a.search.Search(ctx, entityName)
}

// Analyze writes the risk report for entityName.
func (a *Agent) Analyze(ctx context.Context, entityName, documentContext string, results []models.SearchResultRecord) (report string, err error) {
	ctx, done := a.begin(ctx, "analyze")
	defer func() { done(err) }()

	return a.analyzer.Analyze(ctx, entityName, documentContext, results)
}

// Usage reports the search account's consumption. Any failure yields an
// unknown status.
func (a *Agent) Usage(ctx context.Context) models.UsageStatus {
	ctx, done := a.begin(ctx, "usage")
	defer done(nil)

	body, err := a.searchBackend.Usage(ctx)
	if err != nil {
		a.logger.Debug("Search usage inquiry failed", map[string]interface{}{"error": err.Error()})
		return models.UnknownUsage()
	}
	return ParseUsage(body)
}

// ParseUsage reads usage counters from the key object of a usage document,
// falling back to the root object.
func ParseUsage(body []byte) models.UsageStatus {
	if !gjson.ValidBytes(body) {
		return models.UnknownUsage()
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return models.UnknownUsage()
	}
	info := root.Get("key")
	if !info.IsObject() {
		info = root
	}
	return models.UsageStatus{
		Status:      models.UsageStatusOK,
		Usage:       intField(info, "usage"),
		Limit:       intField(info, "limit"),
		SearchUsage: intField(info, "search_usage"),
	}
}

func intField(r gjson.Result, key string) *int64 {
	v := r.Get(key)
	if v.Type != gjson.Number {
		return nil
	}
	n := v.Int()
	return &n
}

// begin opens a span and returns a closer that records the outcome.
func (a *Agent) begin(ctx context.Context, operation string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "screening."+operation,
		trace.WithAttributes(attribute.String("screening.backend", a.backend)))

	return ctx, func(err error) {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		metrics.ScreeningOperations.WithLabelValues(operation, status).Inc()
		metrics.ScreeningOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
