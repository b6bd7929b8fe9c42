package ports

import (
	"context"

	"CompetitorBot/internal/domain"
)

// NewsResult is one hit from the news-search boundary.
type NewsResult struct {
	Title  string
	URL    string
	Source string
}

// NewsSearcher queries an external news API. Implementations report errors;
// the soft-fail policy (treat as zero results) belongs to the caller.
type NewsSearcher interface {
	Configured() bool
	Search(ctx context.Context, query string) ([]NewsResult, error)
}

// PageFetcher downloads a URL and returns cleaned, bounded plain text.
type PageFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// AssistantAPI is the remote run-to-completion boundary: conversation
// threads, messages, and runs with a polled lifecycle.
type AssistantAPI interface {
	CreateThread(ctx context.Context) (string, error)
	CreateMessage(ctx context.Context, threadID, content string) error
	CreateRun(ctx context.Context, threadID, instructions string) (string, error)
	RetrieveRunStatus(ctx context.Context, threadID, runID string) (string, error)
	LatestAssistantText(ctx context.Context, threadID string) (string, error)
	CancelRun(ctx context.Context, threadID, runID string) error
}

// Gatherer produces research documents for a question. It never fails:
// partial and total source failures yield a shorter or empty list.
type Gatherer interface {
	Gather(ctx context.Context, question string) []domain.ResearchDocument
}

// Orchestrator drives one assistant run to a terminal state and returns the
// reply text.
type Orchestrator interface {
	Answer(ctx context.Context, threadID, question string, docs []domain.ResearchDocument) (string, error)
}

// ThreadRegistry maps chat channels to remote conversation threads.
type ThreadRegistry interface {
	GetOrCreate(ctx context.Context, channelID string) (string, error)
	Reset(channelID string) bool
}
