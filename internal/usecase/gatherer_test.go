package usecase

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"CompetitorBot/internal/competitors"
	"CompetitorBot/internal/config"
	"CompetitorBot/internal/logging"
	"CompetitorBot/internal/ports"
)

type searcherFunc func(ctx context.Context, query string) ([]ports.NewsResult, error)

func (f searcherFunc) Search(ctx context.Context, query string) ([]ports.NewsResult, error) {
	return f(ctx, query)
}

func (f searcherFunc) Configured() bool { return true }

type fetcherFunc func(ctx context.Context, url string) (string, error)

func (f fetcherFunc) FetchText(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

func singleCompetitorCatalog() *competitors.Catalog {
	return competitors.FromConfig([]config.CompetitorConfig{
		{Key: "vmware", Domains: []string{"vmware.com"}},
	})
}

func TestGatherDedupFirstSeenWins(t *testing.T) {
	t.Parallel()

	searcher := searcherFunc(func(ctx context.Context, query string) ([]ports.NewsResult, error) {
		if strings.HasPrefix(query, "vmware") {
			return []ports.NewsResult{
				{Title: "first", URL: "https://dup.example", Source: "WireA"},
			}, nil
		}
		return []ports.NewsResult{
			{Title: "second", URL: "https://dup.example", Source: "WireB"},
			{Title: "other", URL: "https://other.example", Source: "WireB"},
		}, nil
	})
	fetcher := fetcherFunc(func(ctx context.Context, url string) (string, error) {
		return "body of " + url, nil
	})

	g := NewResearchGatherer(GathererDeps{
		Catalog:  singleCompetitorCatalog(),
		Searcher: searcher,
		Fetcher:  fetcher,
		Logger:   logging.Discard(),
	})

	docs := g.Gather(context.Background(), "vmware pricing")

	wantURLs := []string{"https://dup.example", "https://other.example", "https://vmware.com"}
	if len(docs) != len(wantURLs) {
		t.Fatalf("expected %d documents, got %d: %+v", len(wantURLs), len(docs), docs)
	}
	for i, want := range wantURLs {
		if docs[i].URL != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, docs[i].URL)
		}
	}
	if docs[0].Title != "first" {
		t.Fatalf("dedup should keep the first occurrence, got title %q", docs[0].Title)
	}
}

func TestGatherSearchErrorsAreSoftFail(t *testing.T) {
	t.Parallel()

	searcher := searcherFunc(func(ctx context.Context, query string) ([]ports.NewsResult, error) {
		return nil, errors.New("search backend down")
	})
	fetcher := fetcherFunc(func(ctx context.Context, url string) (string, error) {
		return "homepage text", nil
	})

	g := NewResearchGatherer(GathererDeps{
		Catalog:  singleCompetitorCatalog(),
		Searcher: searcher,
		Fetcher:  fetcher,
		Logger:   logging.Discard(),
	})

	docs := g.Gather(context.Background(), "vmware roadmap")
	if len(docs) != 1 || docs[0].URL != "https://vmware.com" {
		t.Fatalf("homepage document should survive search failures, got %+v", docs)
	}
}

func TestGatherAllFetchesFailReturnsEmpty(t *testing.T) {
	t.Parallel()

	searcher := searcherFunc(func(ctx context.Context, query string) ([]ports.NewsResult, error) {
		return nil, nil
	})
	fetcher := fetcherFunc(func(ctx context.Context, url string) (string, error) {
		return "", errors.New("unreachable")
	})

	g := NewResearchGatherer(GathererDeps{
		Catalog:  singleCompetitorCatalog(),
		Searcher: searcher,
		Fetcher:  fetcher,
		Logger:   logging.Discard(),
	})

	if docs := g.Gather(context.Background(), "vmware"); len(docs) != 0 {
		t.Fatalf("expected no documents, got %+v", docs)
	}
}

func TestGatherCapsFetchedSources(t *testing.T) {
	t.Parallel()

	searcher := searcherFunc(func(ctx context.Context, query string) ([]ports.NewsResult, error) {
		if !strings.HasPrefix(query, "vmware") {
			return nil, nil
		}
		results := make([]ports.NewsResult, 10)
		for i := range results {
			results[i] = ports.NewsResult{
				Title: "hit",
				URL:   "https://news.example/" + string(rune('a'+i)),
			}
		}
		return results, nil
	})

	var fetches atomic.Int64
	fetcher := fetcherFunc(func(ctx context.Context, url string) (string, error) {
		fetches.Add(1)
		return "text", nil
	})

	g := NewResearchGatherer(GathererDeps{
		Catalog:    singleCompetitorCatalog(),
		Searcher:   searcher,
		Fetcher:    fetcher,
		MaxSources: 3,
		Logger:     logging.Discard(),
	})

	docs := g.Gather(context.Background(), "vmware")
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	if got := fetches.Load(); got != 3 {
		t.Fatalf("expected 3 fetches, got %d", got)
	}
}

func TestGatherDropsEmptyBodies(t *testing.T) {
	t.Parallel()

	searcher := searcherFunc(func(ctx context.Context, query string) ([]ports.NewsResult, error) {
		return nil, nil
	})
	fetcher := fetcherFunc(func(ctx context.Context, url string) (string, error) {
		return "", nil
	})

	g := NewResearchGatherer(GathererDeps{
		Catalog:  singleCompetitorCatalog(),
		Searcher: searcher,
		Fetcher:  fetcher,
		Logger:   logging.Discard(),
	})

	if docs := g.Gather(context.Background(), "vmware"); len(docs) != 0 {
		t.Fatalf("empty-body documents must be dropped, got %+v", docs)
	}
}
