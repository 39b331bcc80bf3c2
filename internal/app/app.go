package app

import (
	"context"
	"fmt"

	"github.com/tomaldridge12/loanbot/external/fotmob"
	"github.com/tomaldridge12/loanbot/internal/config"
	"github.com/tomaldridge12/loanbot/internal/infrastructure/notify/telegram"
	"github.com/tomaldridge12/loanbot/internal/infrastructure/roster"
	"github.com/tomaldridge12/loanbot/internal/platform/logging"
	"github.com/tomaldridge12/loanbot/internal/platform/resilience"
	"github.com/tomaldridge12/loanbot/internal/usecase"
)

// App wires the roster, provider client, posting sink, and workers.
type App struct {
	Logger  *logging.Logger
	Tracker *usecase.Tracker
	Runner  *usecase.Runner
}

func New(cfg config.Config) (*App, error) {
	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)

	players, err := roster.Load(cfg.RosterPath)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	logger.Info("roster loaded", "path", cfg.RosterPath, "players", len(players))

	provider := fotmob.NewClient(fotmob.ClientConfig{
		BaseURL:    cfg.FotmobBaseURL,
		Timeout:    cfg.FotmobTimeout,
		MaxRetries: cfg.FotmobMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FotmobCircuitEnabled,
			FailureThreshold: cfg.FotmobCircuitFailureCount,
			OpenTimeout:      cfg.FotmobCircuitOpenTimeout,
		},
	})

	var poster usecase.Poster
	if cfg.TelegramEnabled {
		poster, err = telegram.New(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
		if err != nil {
			return nil, fmt.Errorf("build telegram poster: %w", err)
		}
		logger.Info("telegram posting enabled", "chat_id", cfg.TelegramChatID)
	} else {
		poster = telegram.NewLogPoster(logger)
		logger.Info("telegram disabled, posting to log only")
	}

	tracker, err := usecase.NewTracker(
		players,
		provider,
		poster,
		nil,
		usecase.NewComposer(cfg.Hashtags),
		usecase.TrackerConfig{
			TrackingLead:        cfg.TrackingLead,
			ReportMaxRetries:    cfg.ReportMaxRetries,
			ReportRetryInterval: cfg.ReportRetryInterval,
			ReportWorkers:       cfg.ReportWorkers,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("build tracker: %w", err)
	}

	runner := usecase.NewRunner(tracker, usecase.RunnerConfig{
		ScanInterval: cfg.ScanInterval,
		PollInterval: cfg.PollInterval,
	}, logger)

	return &App{
		Logger:  logger,
		Tracker: tracker,
		Runner:  runner,
	}, nil
}

// Run blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	a.Runner.Run(ctx)
}

func (a *App) Close() {
	a.Tracker.Close()
	_ = a.Logger.Sync()
}
