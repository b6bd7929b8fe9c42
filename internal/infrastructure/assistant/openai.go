package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"CompetitorBot/internal/config"
	"CompetitorBot/internal/ports"
)

// Client talks to the OpenAI Assistants v2 HTTP API: threads, messages,
// runs, and run cancellation.
type Client struct {
	endpoint    string
	apiKey      string
	assistantID string
	httpClient  *http.Client
}

var _ ports.AssistantAPI = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.AssistantConfig) *Client {
	return &Client{
		endpoint:    strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:      cfg.APIKey,
		assistantID: cfg.AssistantID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type idResponse struct {
	ID string `json:"id"`
}

// CreateThread opens a fresh remote conversation and returns its id.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var parsed idResponse
	if err := c.do(ctx, http.MethodPost, "/threads", map[string]any{}, &parsed); err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return parsed.ID, nil
}

// CreateMessage appends a user message to the thread.
func (c *Client) CreateMessage(ctx context.Context, threadID, content string) error {
	payload := map[string]any{
		"role":    "user",
		"content": content,
	}
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/messages", payload, nil); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// CreateRun starts a run on the thread with per-run instructions and returns
// the run id.
func (c *Client) CreateRun(ctx context.Context, threadID, instructions string) (string, error) {
	payload := map[string]any{
		"assistant_id": c.assistantID,
		"instructions": instructions,
	}
	var parsed idResponse
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs", payload, &parsed); err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return parsed.ID, nil
}

// RetrieveRunStatus reports the run's current lifecycle state.
func (c *Client) RetrieveRunStatus(ctx context.Context, threadID, runID string) (string, error) {
	var parsed struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &parsed); err != nil {
		return "", fmt.Errorf("retrieve run: %w", err)
	}
	return parsed.Status, nil
}

// CancelRun asks the remote side to abandon an in-flight run.
func (c *Client) CancelRun(ctx context.Context, threadID, runID string) error {
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs/"+runID+"/cancel", map[string]any{}, nil); err != nil {
		return fmt.Errorf("cancel run: %w", err)
	}
	return nil
}

type messageList struct {
	Data []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

// LatestAssistantText returns the newest assistant-authored text message in
// the thread, or empty when none exists.
func (c *Client) LatestAssistantText(ctx context.Context, threadID string) (string, error) {
	var parsed messageList
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/messages?order=desc", nil, &parsed); err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}

	for _, msg := range parsed.Data {
		if msg.Role != "assistant" {
			continue
		}
		for _, part := range msg.Content {
			if part.Type == "text" {
				return part.Text.Value, nil
			}
		}
	}

	return "", nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, v any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("assistant api %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
