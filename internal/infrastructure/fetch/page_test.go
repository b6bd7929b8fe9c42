package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchTextStripsMarkup(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head>
			<style>body { color: red; }</style>
			<script>alert("hi")</script>
		</head><body>
			<h1>Product   News</h1>
			<p>First paragraph.</p>
		</body></html>`))
	}))
	defer server.Close()

	page := NewPage(server.Client(), 0)
	text, err := page.FetchText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchText error: %v", err)
	}

	if strings.Contains(text, "alert") || strings.Contains(text, "color: red") {
		t.Fatalf("script/style content leaked into text: %q", text)
	}
	if !strings.Contains(text, "Product News") {
		t.Fatalf("whitespace not collapsed: %q", text)
	}
	if !strings.Contains(text, "First paragraph.") {
		t.Fatalf("body text missing: %q", text)
	}
}

func TestFetchTextCapsLength(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<body>" + strings.Repeat("word ", 20000) + "</body>"))
	}))
	defer server.Close()

	const maxChars = 500
	page := NewPage(server.Client(), maxChars)
	text, err := page.FetchText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchText error: %v", err)
	}
	if got := len([]rune(text)); got > maxChars {
		t.Fatalf("text length %d exceeds cap %d", got, maxChars)
	}
}

func TestFetchTextNonOKStatusIsError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	page := NewPage(server.Client(), 0)
	if _, err := page.FetchText(context.Background(), server.URL); err == nil {
		t.Fatal("expected an error on 404")
	}
}
