package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"adverse-media-agent/internal/common/config"
	"adverse-media-agent/internal/common/database"
	"adverse-media-agent/internal/common/errors"
	"adverse-media-agent/internal/common/logger"
	"adverse-media-agent/internal/common/quota"
	"adverse-media-agent/internal/models"
	"adverse-media-agent/internal/screening"
)

// screener is the agent surface the commands use.
type screener interface {
	Extract(ctx context.Context, documentText string) (models.ExtractedEntity, error)
	ReadDocument(path string) (string, error)
	Search(ctx context.Context, entityName string) models.SearchBundle
	Analyze(ctx context.Context, entityName, documentContext string, results []models.SearchResultRecord) (string, error)
	Usage(ctx context.Context) models.UsageStatus
}

type app struct {
	configPath string
	backend    string

	cfg *config.Config
	log logger.Logger

	stdin io.Reader
	out   io.Writer

	newAgent func(cfg *config.Config, log logger.Logger) (screener, error)
	newGuard func(ctx context.Context, cfg *config.Config) (*quota.Guard, func(), error)
}

func newApp(stdin io.Reader, out io.Writer) *app {
	return &app{
		stdin:    stdin,
		out:      out,
		newAgent: defaultAgent,
		newGuard: defaultGuard,
	}
}

// load reads configuration once and applies the --backend override.
func (a *app) load() error {
	if a.cfg != nil {
		return nil
	}

	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFromFile(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return errors.NewConfigurationError(err.Error())
	}
	if a.backend != "" {
		cfg.LLM.Backend = a.backend
	}

	a.cfg = cfg
	if a.log == nil {
		a.log = logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	}
	return nil
}

func (a *app) agent() (screener, error) {
	if err := a.load(); err != nil {
		return nil, err
	}
	return a.newAgent(a.cfg, a.log)
}

// consume checks the shared request quota and records one request. It is a
// no-op when the quota is disabled.
func (a *app) consume(ctx context.Context) error {
	if err := a.load(); err != nil {
		return err
	}
	guard, closeGuard, err := a.newGuard(ctx, a.cfg)
	if err != nil {
		return err
	}
	if guard == nil {
		return nil
	}
	defer closeGuard()

	if err := guard.Check(ctx); err != nil {
		return err
	}
	count, err := guard.Consume(ctx)
	if err != nil {
		return err
	}
	a.log.Debug("Request quota consumed", map[string]interface{}{
		"count": count,
		"limit": guard.Max(),
	})
	return nil
}

func defaultAgent(cfg *config.Config, log logger.Logger) (screener, error) {
	return screening.NewAgent(screening.AgentConfigFromConfig(cfg), screening.WithLogger(log))
}

func defaultGuard(ctx context.Context, cfg *config.Config) (*quota.Guard, func(), error) {
	if !cfg.Quota.Enabled {
		return nil, func() {}, nil
	}

	switch cfg.Quota.Backend {
	case config.QuotaBackendRedis:
		client, err := database.NewRedis(ctx, cfg.Quota.Redis)
		if err != nil {
			return nil, nil, errors.NewConfigurationError(fmt.Sprintf("quota redis: %v", err))
		}
		counter := quota.NewRedisCounter(client.GetClient(), cfg.Quota.Key)
		return quota.NewGuard(counter, cfg.Quota.MaxRequests), func() { _ = client.Close() }, nil
	default:
		counter := quota.NewFileCounter(cfg.Quota.Path)
		return quota.NewGuard(counter, cfg.Quota.MaxRequests), func() {}, nil
	}
}

// describeError prefixes err with the failure class so users can tell a
// setup problem from a backend outage or a bad model response.
func describeError(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrConfiguration):
		return "configuration error: " + err.Error()
	case stderrors.Is(err, errors.ErrQuotaExhausted):
		return "request limit reached: " + err.Error()
	case stderrors.Is(err, errors.ErrEmptyDocument):
		return "empty document: " + err.Error()
	case stderrors.Is(err, errors.ErrExtractionParse):
		return "could not parse extraction: " + err.Error()
	case stderrors.Is(err, errors.ErrBackend):
		return "backend error: " + err.Error()
	default:
		return "error: " + err.Error()
	}
}
