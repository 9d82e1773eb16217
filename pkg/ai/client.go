package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cv-builder/pkg/ai/formatters"
)

const DefaultServiceURL = "http://ai-service:8000"

// Client talks to the ai-service chat endpoint. Requests are sent once;
// callers decide what to do with a failure.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultServiceURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{BaseURL: strings.TrimSuffix(baseURL, "/"), HTTP: &http.Client{Timeout: timeout}}
}

// Formatter turns a request payload into a structured model reply.
type Formatter interface {
	Format(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error)
}

func (c *Client) NewDraftFormatter() Formatter { return formatters.NewDraftFormatter(c) }
func (c *Client) NewATSFormatter() Formatter   { return formatters.NewATSFormatter(c) }

type chatRequest struct {
	Agent string `json:"agent"`
	Input string `json:"input"`
}

type chatResponse struct {
	Agent  string `json:"agent"`
	Output string `json:"output"`
}

// Chat posts one prompt to /v1/chat and returns the raw model output.
func (c *Client) Chat(ctx context.Context, input string) (string, error) {
	body, err := json.Marshal(chatRequest{Agent: "auto", Input: input})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai-service returned non-200 status: %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(rb, &out); err != nil {
		return "", fmt.Errorf("decode ai-service reply: %w", err)
	}
	return out.Output, nil
}
