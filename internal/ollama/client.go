// Package ollama is a minimal client for the Ollama HTTP API: chat
// completions and embeddings. Requests are synchronous and
// non-streaming.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dorm2mcp/internal/model"
)

type Client struct {
	BaseURL    string
	ChatModel  string
	EmbedModel string

	httpClient *http.Client
}

func NewClient(baseURL, chatModel, embedModel string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		ChatModel:  chatModel,
		EmbedModel: embedModel,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type chatRequest struct {
	Model    string              `json:"model"`
	Messages []model.ChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

type chatResponse struct {
	Message model.ChatMessage `json:"message"`
}

// Chat posts the full message list to /api/chat and returns the
// assistant reply text.
func (c *Client) Chat(ctx context.Context, messages []model.ChatMessage) (string, error) {
	var out chatResponse
	if err := c.post(ctx, "/api/chat", chatRequest{
		Model:    c.ChatModel,
		Messages: messages,
		Stream:   false,
	}, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Message.Content) == "" {
		return "I couldn't generate a response.", nil
	}
	return out.Message.Content, nil
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns the embedding vector for one text via /api/embeddings.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var out embedResponse
	if err := c.post(ctx, "/api/embeddings", embedRequest{
		Model:  c.EmbedModel,
		Prompt: text,
	}, &out); err != nil {
		return nil, err
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding from %s", c.EmbedModel)
	}
	return out.Embedding, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text := strings.TrimSpace(string(raw))
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s returned http %d: %s", path, resp.StatusCode, text)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
