// Package llm talks to an OpenAI-compatible chat endpoint. The model is the
// second line of extraction: it reads a markdown rendition of the page and
// answers in whatever shape it likes, which the recovery chain then parses.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/histia/harvest/internal/retry"
)

// Config configures the chat client. APIKey empty disables the client; the
// pipeline then runs selector-only.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

// Client is a thin chat-completions wrapper. Safe for concurrent use.
type Client struct {
	http  *resty.Client
	model string
	temp  float64
	retry retry.Config
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature,omitempty"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient returns a configured client, or nil when no API key is set.
func NewClient(cfg Config) *Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		log.Debug().Msg("no LLM API key configured, model extraction disabled")
		return nil
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	retryCfg := retry.DefaultConfig()
	if cfg.MaxRetries > 0 {
		retryCfg.MaxAttempts = cfg.MaxRetries
	}

	return &Client{
		http:  httpClient,
		model: model,
		temp:  cfg.Temperature,
		retry: retryCfg,
	}
}

// Chat sends one system+user exchange and returns the assistant's text.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	payload := chatRequest{
		Model:       c.model,
		Temperature: c.temp,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	var content string
	err := retry.WithRetry(ctx, c.retry, func() error {
		start := time.Now()
		var decoded chatResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(payload).
			SetResult(&decoded).
			SetError(&decoded).
			Post("/chat/completions")
		if err != nil {
			return fmt.Errorf("chat request failed: %w", err)
		}
		if resp.IsError() {
			message := resp.Status()
			if decoded.Error != nil && decoded.Error.Message != "" {
				message = decoded.Error.Message
			}
			return retry.NewHTTPError(resp.StatusCode(), resp.Status(), message)
		}
		if len(decoded.Choices) == 0 {
			return fmt.Errorf("chat response carried no choices")
		}
		content = strings.TrimSpace(decoded.Choices[0].Message.Content)
		if content == "" {
			return fmt.Errorf("chat response carried empty content")
		}
		log.Debug().
			Str("model", c.model).
			Dur("elapsed", time.Since(start)).
			Int("chars", len(content)).
			Msg("chat completion received")
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

const extractionSystemPrompt = "You extract structured listings from web page content. " +
	"Return ONLY valid JSON shaped as {\"source_url\":\"...\",\"records\":[{\"name\":\"...\"}]} " +
	"where each record carries the fields you can find: name, url, website, description, " +
	"sector, location, stage, tags, rank, votes, price. name is mandatory; omit fields " +
	"you cannot find. Do not invent data. Do not include explanations."

// Extract asks the model to pull listing records out of a page's markdown.
// The raw reply is returned untouched; the recovery chain owns parsing.
func (c *Client) Extract(ctx context.Context, goal, markdown string) (string, error) {
	user := "Goal:\n" + strings.TrimSpace(goal) + "\n\nPage content (markdown):\n" + markdown
	return c.Chat(ctx, extractionSystemPrompt, user)
}
