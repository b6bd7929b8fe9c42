package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"CompetitorBot/internal/competitors"
	"CompetitorBot/internal/domain"
	"CompetitorBot/internal/ports"
)

const (
	defaultMaxSources = 15
	searchConcurrency = 4

	// queryTemplate is the fixed news query issued per inferred competitor.
	queryTemplate = "%s virtualization Kubernetes OpenShift competitor news"
	questionQueryPrefix = "Red Hat OpenShift Virtualization"
)

// GathererDeps wires the research stage's collaborators.
type GathererDeps struct {
	Catalog    *competitors.Catalog
	Searcher   ports.NewsSearcher
	Fetcher    ports.PageFetcher
	MaxSources int
	Logger     *slog.Logger
}

// ResearchGatherer collects news hits and competitor homepages for a
// question, dedups them by URL, and fetches the top sources. It never fails:
// every sub-call error shrinks the result instead of aborting it.
type ResearchGatherer struct {
	catalog    *competitors.Catalog
	searcher   ports.NewsSearcher
	fetcher    ports.PageFetcher
	maxSources int
	logger     *slog.Logger
}

var _ ports.Gatherer = (*ResearchGatherer)(nil)

// NewResearchGatherer constructs the gathering stage.
func NewResearchGatherer(deps GathererDeps) *ResearchGatherer {
	maxSources := deps.MaxSources
	if maxSources <= 0 {
		maxSources = defaultMaxSources
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ResearchGatherer{
		catalog:    deps.Catalog,
		searcher:   deps.Searcher,
		fetcher:    deps.Fetcher,
		maxSources: maxSources,
		logger:     logger,
	}
}

// fetchOutcome records the fate of one candidate source: either a usable
// document or the reason it was skipped.
type fetchOutcome struct {
	doc  domain.ResearchDocument
	skip string
}

// Gather runs the full research stage for one question.
func (g *ResearchGatherer) Gather(ctx context.Context, question string) []domain.ResearchDocument {
	keys := g.catalog.Infer(question)

	candidates := g.searchNews(ctx, keys, question)
	candidates = append(candidates, g.homepageDocuments(keys)...)

	deduped := dedupeByURL(candidates)
	if len(deduped) > g.maxSources {
		deduped = deduped[:g.maxSources]
	}

	final := make([]domain.ResearchDocument, 0, len(deduped))
	for _, outcome := range g.fetchAll(ctx, deduped) {
		if outcome.skip != "" {
			g.logger.Debug("source skipped", "url", outcome.doc.URL, "reason", outcome.skip)
			continue
		}
		final = append(final, outcome.doc)
	}

	g.logger.Info("research gathered",
		"competitors", len(keys), "candidates", len(candidates), "documents", len(final))
	return final
}

// searchNews issues every news query concurrently but keeps the aggregate in
// query order, so the URL dedup downstream stays deterministic.
func (g *ResearchGatherer) searchNews(ctx context.Context, keys []string, question string) []domain.ResearchDocument {
	queries := make([]string, 0, len(keys)+1)
	for _, key := range keys {
		queries = append(queries, fmt.Sprintf(queryTemplate, key))
	}
	queries = append(queries, strings.TrimSpace(questionQueryPrefix+" "+question))

	slots := make([][]ports.NewsResult, len(queries))
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(searchConcurrency)
	for i, query := range queries {
		grp.Go(func() error {
			hits, err := g.searcher.Search(grpCtx, query)
			if err != nil {
				// soft fail: a broken query contributes zero results
				g.logger.Warn("news query failed", "query", query, "error", err)
				return nil
			}
			slots[i] = hits
			return nil
		})
	}
	_ = grp.Wait()

	var docs []domain.ResearchDocument
	for _, hits := range slots {
		for _, hit := range hits {
			docs = append(docs, domain.ResearchDocument{
				Title:  hit.Title,
				URL:    hit.URL,
				Source: hit.Source,
			})
		}
	}
	return docs
}

// homepageDocuments appends one pending document per (competitor, domain)
// pair so official vendor messaging flows through even without a search key.
func (g *ResearchGatherer) homepageDocuments(keys []string) []domain.ResearchDocument {
	var docs []domain.ResearchDocument
	for _, comp := range g.catalog.Select(keys) {
		for _, site := range comp.Domains {
			pageURL := site
			if !strings.HasPrefix(pageURL, "http") {
				pageURL = "https://" + pageURL
			}
			docs = append(docs, domain.ResearchDocument{
				Title:  fmt.Sprintf("%s site: %s", comp.Key, site),
				URL:    pageURL,
				Source: site,
			})
		}
	}
	return docs
}

func (g *ResearchGatherer) fetchAll(ctx context.Context, docs []domain.ResearchDocument) []fetchOutcome {
	outcomes := make([]fetchOutcome, 0, len(docs))
	for _, doc := range docs {
		text, err := g.fetcher.FetchText(ctx, doc.URL)
		switch {
		case err != nil:
			outcomes = append(outcomes, fetchOutcome{doc: doc, skip: err.Error()})
		case text == "":
			outcomes = append(outcomes, fetchOutcome{doc: doc, skip: "empty body"})
		default:
			doc.Text = text
			outcomes = append(outcomes, fetchOutcome{doc: doc})
		}
	}
	return outcomes
}

// dedupeByURL keeps the first occurrence of every URL, preserving relative
// order; entries without a URL are dropped.
func dedupeByURL(docs []domain.ResearchDocument) []domain.ResearchDocument {
	seen := make(map[string]struct{}, len(docs))
	deduped := make([]domain.ResearchDocument, 0, len(docs))
	for _, doc := range docs {
		if doc.URL == "" {
			continue
		}
		if _, ok := seen[doc.URL]; ok {
			continue
		}
		seen[doc.URL] = struct{}{}
		deduped = append(deduped, doc)
	}
	return deduped
}
