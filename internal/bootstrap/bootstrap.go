package bootstrap

import (
	"fmt"

	"github.com/vocabhub/wordlist-api/internal/config"
	"github.com/vocabhub/wordlist-api/internal/core/ports"
	"github.com/vocabhub/wordlist-api/internal/core/usecase"
	"github.com/vocabhub/wordlist-api/internal/infrastructure/storage/jsonfile"
	"github.com/vocabhub/wordlist-api/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Store     ports.DocumentStore
	Wordlists *usecase.WordlistUseCase
	Metrics   *metrics.APIMetrics
}

func New(cfg config.Config) (*App, error) {
	apiMetrics := metrics.NewAPIMetrics("api")

	store, err := jsonfile.New(cfg.DataDir, cfg.DocumentPattern, apiMetrics)
	if err != nil {
		return nil, fmt.Errorf("init document store: %w", err)
	}

	return &App{
		Config:    cfg,
		Store:     store,
		Wordlists: usecase.NewWordlistUseCase(store),
		Metrics:   apiMetrics,
	}, nil
}
