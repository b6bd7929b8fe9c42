package fetch

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"CompetitorBot/internal/ports"
)

var spaceExpr = regexp.MustCompile(`\s+`)

// Page downloads URLs and reduces them to bounded plain text: markup,
// scripts and styles removed, whitespace collapsed, length capped.
type Page struct {
	client   *http.Client
	maxChars int
}

var _ ports.PageFetcher = (*Page)(nil)

// NewPage wires an HTTP client; maxChars defaults to 20000.
func NewPage(client *http.Client, maxChars int) *Page {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if maxChars <= 0 {
		maxChars = 20000
	}
	return &Page{client: client, maxChars: maxChars}
}

// FetchText downloads the page and extracts its text. A non-200 status is an
// error; the gatherer drops such sources.
func (p *Page) FetchText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "CompetitorBot/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: unexpected status %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	text := spaceExpr.ReplaceAllString(doc.Text(), " ")
	text = strings.TrimSpace(text)

	// cap in runes, not bytes, to avoid splitting a multi-byte character
	runes := []rune(text)
	if len(runes) > p.maxChars {
		text = string(runes[:p.maxChars])
	}

	return text, nil
}
