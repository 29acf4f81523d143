// Package llm generates fuzz driver candidates by sampling a chat completion
// model. One generation round issues NSample independent completions for the
// same prompt; transient API failures are retried per completion, and the
// fenced code block of each reply is unwrapped into plain driver source.
package llm

import (
	"context"
	goerrors "errors"
	"net/http"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"fdg/internal/config"
	"fdg/internal/errors"
	"fdg/internal/logging"
	"fdg/internal/prompt"
)

// Generator produces driver source candidates for a prompt.
type Generator interface {
	Generate(ctx context.Context, p *prompt.Prompt, n int) ([]string, error)
}

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	api     *openai.Client
	model   string
	temp    float32
	maxTok  int
	retries int
	logger  *logging.Logger
}

// NewClient creates a Client from the LLM configuration. The API key is read
// from the OPENAI_API_KEY environment variable; APIBase, when set, points the
// client at a compatible proxy.
func NewClient(cfg config.LLMConfig, logger *logging.Logger) (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New(errors.LLMUnavailable,
			"OPENAI_API_KEY environment variable not set", nil)
	}

	oc := openai.DefaultConfig(apiKey)
	if cfg.APIBase != "" {
		oc.BaseURL = cfg.APIBase
	}

	retries := cfg.Retries
	if retries < 1 {
		retries = 1
	}

	return &Client{
		api:     openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		temp:    cfg.Temperature,
		maxTok:  cfg.MaxTokens,
		retries: retries,
		logger:  logger,
	}, nil
}

// Generate samples n completions for the prompt concurrently and returns the
// unwrapped driver sources. All n requests share the prompt; each retries
// independently.
func (c *Client) Generate(ctx context.Context, p *prompt.Prompt, n int) ([]string, error) {
	if n < 1 {
		n = 1
	}

	sources := make([]string, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			content, err := c.complete(gctx, p)
			if err != nil {
				return err
			}
			sources[i] = StripCodeFence(content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

// complete issues one chat completion, retrying transient failures.
func (c *Client) complete(ctx context.Context, p *prompt.Prompt) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temp,
		MaxTokens:   c.maxTok,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
	}

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				lastErr = errors.New(errors.LLMUnavailable,
					"completion returned no choices", nil)
				continue
			}
			return resp.Choices[0].Message.Content, nil
		}

		if !Retryable(err) {
			return "", errors.New(errors.LLMUnavailable, "completion failed", err)
		}
		lastErr = err
		c.logger.Debug("completion attempt failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", errors.New(errors.RetryExhausted,
		"completion failed after retries", lastErr)
}

// Retryable reports whether an API error is transient. Authentication and
// malformed-request failures never succeed on retry; rate limits, server
// errors and transport failures may.
func Retryable(err error) bool {
	var apiErr *openai.APIError
	if goerrors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden,
			http.StatusBadRequest, http.StatusNotFound:
			return false
		}
		return true
	}
	// Transport-level failures are transient.
	return true
}
