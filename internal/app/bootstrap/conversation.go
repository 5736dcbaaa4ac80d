package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/wolfman30/survey-assistant/internal/booking"
	appconfig "github.com/wolfman30/survey-assistant/internal/config"
	"github.com/wolfman30/survey-assistant/internal/conversation"
	"github.com/wolfman30/survey-assistant/internal/http/handlers"
	"github.com/wolfman30/survey-assistant/internal/observability/metrics"
	"github.com/wolfman30/survey-assistant/internal/oracle"
	"github.com/wolfman30/survey-assistant/internal/survey"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

// Runtime is everything a transport needs to serve conversations.
type Runtime struct {
	Engine   *conversation.Engine
	Registry *prometheus.Registry
	Metrics  *metrics.SurveyMetrics
	Archive  *Archive
	Redis    *redis.Client
	Health   map[string]handlers.HealthCheck

	closers []func()
}

// Close releases connections in reverse order of creation.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// Overrides replace individual collaborators; zero values mean "build from
// config". The CLI uses them to force name-asking mode and a local session.
type Overrides struct {
	LLM            oracle.LLMClient
	AskPatientName *bool
	SessionBackend string
}

// BuildRuntime wires the conversation engine and its collaborators from config.
func BuildRuntime(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger, ov Overrides) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rt := &Runtime{Health: map[string]handlers.HealthCheck{}}
	fail := func(err error) (*Runtime, error) {
		rt.Close()
		return nil, err
	}

	catalog, err := LoadCatalog(cfg, logger)
	if err != nil {
		return fail(err)
	}

	rt.Registry = prometheus.NewRegistry()
	rt.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rt.Metrics = metrics.NewSurveyMetrics(rt.Registry)

	llm := ov.LLM
	if llm == nil {
		var closeLLM func()
		llm, closeLLM, err = BuildLLMClient(ctx, cfg, awsCfg, logger)
		if err != nil {
			return fail(err)
		}
		rt.closers = append(rt.closers, closeLLM)
	}

	interpreter := oracle.NewInterpreter(llm, oracle.InterpreterConfig{
		Timeout:  cfg.OracleTimeout,
		Observer: rt.Metrics,
	}, logger)
	var renderer oracle.Renderer = oracle.PlainRenderer{}
	if cfg.RenderWithLLM {
		renderer = oracle.NewLLMRenderer(llm, "", cfg.OracleTimeout, logger)
	}

	backendCfg := *cfg
	if ov.SessionBackend != "" {
		backendCfg.SessionBackend = ov.SessionBackend
	}
	if backendCfg.SessionBackend == "redis" {
		rt.Redis = BuildRedisClient(ctx, &backendCfg, logger, true)
		if rt.Redis != nil {
			client := rt.Redis
			rt.closers = append(rt.closers, func() { _ = client.Close() })
			rt.Health["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		}
	}
	var redisClient redis.UniversalClient
	if rt.Redis != nil {
		redisClient = rt.Redis
	}
	store, locker, err := BuildSessionStore(&backendCfg, redisClient, logger)
	if err != nil {
		return fail(err)
	}

	rt.Archive, err = BuildArchive(ctx, cfg, awsCfg, logger)
	if err != nil {
		return fail(err)
	}
	rt.closers = append(rt.closers, rt.Archive.Close)
	if pool := rt.Archive.Pool; pool != nil {
		rt.Health["postgres"] = func(ctx context.Context) error { return pool.Ping(ctx) }
	}

	askName := cfg.AsksPatientName()
	if ov.AskPatientName != nil {
		askName = *ov.AskPatientName
	}

	rt.Engine, err = conversation.NewEngine(conversation.Options{
		Catalog:            catalog,
		Interpreter:        interpreter,
		Renderer:           renderer,
		Store:              store,
		Locker:             locker,
		Scheduler:          BuildScheduler(cfg, logger),
		Notifier:           BuildNotifier(cfg, awsCfg, logger),
		Providers:          booking.DefaultProviders,
		Recorder:           rt.Archive.Recorder,
		Forwarder:          BuildForwarder(cfg, logger),
		Metrics:            rt.Metrics,
		AskPatientName:     askName,
		DefaultPatientName: cfg.DefaultPatientName,
		OffTopicCheck:      cfg.OffTopicCheck,
		Duration:           time.Duration(cfg.AppointmentDurationMins) * time.Minute,
		Tracer:             otel.Tracer("survey-assistant/conversation"),
		Logger:             logger,
	})
	if err != nil {
		return fail(err)
	}

	logger.Info("conversation engine ready",
		"catalog", catalog.Title(),
		"questions", catalog.Len(),
		"session_backend", backendCfg.SessionBackend,
		"ask_patient_name", askName,
	)
	return rt, nil
}

// LoadCatalog returns the built-in catalog unless CATALOG_PATH names a JSON file.
func LoadCatalog(cfg *appconfig.Config, logger *logging.Logger) (*survey.Catalog, error) {
	path := strings.TrimSpace(cfg.CatalogPath)
	if path == "" {
		return survey.DefaultCatalog(), nil
	}
	catalog, err := survey.LoadCatalogFile(path)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load catalog %s: %w", path, err)
	}
	logger.Info("loaded survey catalog", "path", path)
	return catalog, nil
}
