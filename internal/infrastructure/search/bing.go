package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"CompetitorBot/internal/config"
	"CompetitorBot/internal/ports"
)

// BingNews queries the Bing News Search v7 API. A missing key renders the
// client unconfigured: Search then returns no results and no error.
type BingNews struct {
	endpoint   string
	apiKey     string
	count      int
	freshness  string
	market     string
	httpClient *http.Client
}

var _ ports.NewsSearcher = (*BingNews)(nil)

// NewBingNews builds a client from configuration.
func NewBingNews(cfg config.NewsConfig) *BingNews {
	count := cfg.Count
	if count <= 0 {
		count = 8
	}
	return &BingNews{
		endpoint:  cfg.Endpoint,
		apiKey:    cfg.APIKey,
		count:     count,
		freshness: cfg.Freshness,
		market:    cfg.Market,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Configured reports whether a search key is present.
func (b *BingNews) Configured() bool {
	return b.apiKey != ""
}

type newsResponse struct {
	Value []newsItem `json:"value"`
}

type newsItem struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Provider []struct {
		Name string `json:"name"`
	} `json:"provider"`
}

// Search runs one news query and maps the response items.
func (b *BingNews) Search(ctx context.Context, query string) ([]ports.NewsResult, error) {
	if !b.Configured() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(b.count))
	params.Set("freshness", b.freshness)
	params.Set("mkt", b.market)
	params.Set("textDecorations", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("news search %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}

	results := make([]ports.NewsResult, 0, len(parsed.Value))
	for _, item := range parsed.Value {
		source := ""
		if len(item.Provider) > 0 {
			source = item.Provider[0].Name
		}
		results = append(results, ports.NewsResult{
			Title:  item.Name,
			URL:    item.URL,
			Source: source,
		})
	}

	return results, nil
}
