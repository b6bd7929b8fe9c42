package app

import (
	"context"
	"fmt"
	"log/slog"

	"CompetitorBot/internal/competitors"
	"CompetitorBot/internal/config"
	"CompetitorBot/internal/infrastructure/assistant"
	"CompetitorBot/internal/infrastructure/discord"
	"CompetitorBot/internal/infrastructure/fetch"
	"CompetitorBot/internal/infrastructure/search"
	"CompetitorBot/internal/threads"
	"CompetitorBot/internal/usecase"
)

// Application wires configuration into the bot and its pipeline.
type Application struct {
	cfg config.Config
	bot *discord.Bot
}

// New assembles the full dependency graph.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	catalog := competitors.FromConfig(cfg.Competitors)

	searcher := search.NewBingNews(cfg.News)
	if !searcher.Configured() {
		baseLogger.Info("news search disabled: no key configured")
	}

	gatherer := usecase.NewResearchGatherer(usecase.GathererDeps{
		Catalog:    catalog,
		Searcher:   searcher,
		Fetcher:    fetch.NewPage(nil, cfg.Research.MaxDocumentChars),
		MaxSources: cfg.Research.MaxSources,
		Logger:     baseLogger.With("component", "gatherer"),
	})

	api := assistant.NewClient(cfg.Assistant)

	orchestrator := usecase.NewRunOrchestrator(usecase.OrchestratorDeps{
		API:          api,
		Assembler:    usecase.NewAssembler(cfg.Research.ExcerptChars),
		Instructions: cfg.Assistant.Instructions,
		RunTimeout:   cfg.Assistant.RunTimeout(),
		PollInterval: cfg.Assistant.PollInterval(),
		Logger:       baseLogger.With("component", "orchestrator"),
	})

	bot, err := discord.New(discord.BotDeps{
		Config:          cfg.Discord,
		Gatherer:        gatherer,
		Orchestrator:    orchestrator,
		Threads:         threads.NewRegistry(api),
		ResearchEnabled: cfg.Research.ResearchEnabled(),
		Logger:          baseLogger.With("component", "discord"),
	})
	if err != nil {
		return nil, fmt.Errorf("build bot: %w", err)
	}

	return &Application{cfg: cfg, bot: bot}, nil
}

// Run opens the chat session and blocks until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.bot.Start(ctx); err != nil {
		return fmt.Errorf("start bot: %w", err)
	}

	<-ctx.Done()
	a.bot.Stop()
	return nil
}
