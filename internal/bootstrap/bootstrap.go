package bootstrap

import (
	"fmt"
	"time"

	"github.com/incois/floatchat/internal/config"
	"github.com/incois/floatchat/internal/core/ports"
	"github.com/incois/floatchat/internal/core/usecase"
	"github.com/incois/floatchat/internal/infrastructure/ratelimit"
	"github.com/incois/floatchat/internal/infrastructure/resilience"
	"github.com/incois/floatchat/internal/infrastructure/search/google"
	"github.com/incois/floatchat/internal/observability/metrics"
)

type App struct {
	Config config.Config

	ChatUC   ports.ChatService
	SearchUC ports.SearchService
	Catalog  ports.IntentCatalog
	Budget   ports.BudgetReader
	Metrics  *metrics.HTTPServerMetrics
}

func New(cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	limiter := ratelimit.NewLimiter(cfg.RateLimits())

	guardCfg := resilience.DefaultConfig()
	guardCfg.Enabled = cfg.BreakerEnabled
	guard := resilience.NewGuard(guardCfg)

	searcher := google.New(cfg.SearchBaseURL, cfg.SearchAPIKey, cfg.SearchEngineID, google.Options{
		Timeout: time.Duration(cfg.SearchTimeoutMS) * time.Millisecond,
		Guard:   guard,
	})

	classifier := usecase.NewClassifier()
	if cfg.IntentRulesPath != "" {
		fileClassifier, err := usecase.NewClassifierFromFile(cfg.IntentRulesPath)
		if err != nil {
			return nil, fmt.Errorf("load intent rules: %w", err)
		}
		classifier = fileClassifier
	}

	planner := usecase.NewPlanner(cfg.DefaultTopK)
	executor := usecase.NewSearchExecutor(searcher, limiter, time.Duration(cfg.SearchTimeoutMS)*time.Millisecond)

	return &App{
		Config:   cfg,
		ChatUC:   usecase.NewChatUseCase(classifier, planner, executor, limiter),
		SearchUC: usecase.NewSearchUseCase(executor, cfg.DefaultTopK),
		Catalog:  classifier,
		Budget:   limiter,
		Metrics:  metrics.NewHTTPServerMetrics("floatchat"),
	}, nil
}
