// Package llm talks to an OpenAI-compatible chat completions endpoint and
// turns its replies into verdicts.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/tomaslau/focusonly/internal/model"
	"github.com/tomaslau/focusonly/internal/worker"
)

const (
	evaluateMaxTokens = 150
	maxResponseBytes  = 1 << 20
)

// retrySleepFunc waits between 429 retries; tests replace it
var retrySleepFunc = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Client evaluates pages against a profile
type Client struct {
	httpClient   *http.Client
	timeout      time.Duration
	probeTimeout time.Duration
	maxAttempts  int
	limiter      *worker.Limiter
	log          zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the transport (proxies, test servers)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each evaluation request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithProbeTimeout bounds TestConnection
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.probeTimeout = d
		}
	}
}

// WithMaxAttempts caps attempts on HTTP 429
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithLimiter paces requests per API host
func WithLimiter(l *worker.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithLogger attaches a logger
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client with the default 15s timeout and 3 attempts
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{},
		timeout:      model.APITimeout,
		probeTimeout: model.ProbeTimeout,
		maxAttempts:  model.MaxAttempts,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest keeps temperature without omitempty so 0 is always sent
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// Evaluate asks the model for a verdict on page.
//
// A reply that fails to parse is retried once with a stricter instruction.
// HTTP 429 is retried with 2s, 4s, 8s backoff up to the attempt cap. Every
// other failure returns immediately.
func (c *Client) Evaluate(ctx context.Context, cfg model.APIConfig, profile model.Profile, page model.PageData) (model.Verdict, error) {
	user, err := buildUserMessage(profile, page)
	if err != nil {
		return model.Verdict{}, err
	}

	endpoint := completionsURL(cfg.BaseURL)
	log := c.log.With().Str("url", page.URL).Str("model", cfg.Model).Logger()

	system := systemPrompt
	strict := false
	rateLimited := 0

	for {
		content, err := c.complete(ctx, endpoint, cfg, system, user)

		switch {
		case errors.Is(err, ErrRateLimited):
			rateLimited++
			if rateLimited >= c.maxAttempts {
				log.Warn().Int("attempts", rateLimited).Msg("rate limit retries exhausted")
				return model.Verdict{}, err
			}
			delay := backoff(rateLimited)
			log.Debug().Int("attempt", rateLimited).Dur("backoff", delay).Msg("rate limited, backing off")
			if err := retrySleepFunc(ctx, delay); err != nil {
				return model.Verdict{}, contextErr(err)
			}
			continue

		case err != nil && !errors.Is(err, ErrUnparseable):
			return model.Verdict{}, err
		}

		if err == nil {
			var verdict model.Verdict
			verdict, err = parseVerdict(content)
			if err == nil {
				return verdict, nil
			}
		}

		if strict {
			log.Warn().Err(err).Msg("reply unparseable after strict retry")
			return model.Verdict{}, fmt.Errorf("%w: %w", ErrUnparseable, err)
		}
		log.Debug().Err(err).Msg("reply unparseable, retrying with strict prompt")
		strict = true
		system = strictSystemPrompt
	}
}

// complete performs one chat completion and returns the first choice's text
func (c *Client) complete(ctx context.Context, endpoint string, cfg model.APIConfig, system, user string) (string, error) {
	if err := c.limiter.Wait(ctx, endpoint); err != nil {
		return "", contextErr(err)
	}

	body, err := json.Marshal(chatRequest{
		Model: cfg.Model,
		Messages: []chatMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
		MaxTokens:   evaluateMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", contextErr(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusErr(resp); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", contextErr(err)
	}

	var completion openai.ChatCompletionResponse
	if err := json.Unmarshal(data, &completion); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrUnparseable, err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty response from API", ErrUnparseable)
	}

	return completion.Choices[0].Message.Content, nil
}

// completionsURL joins the base URL, minus trailing slashes, with /chat/completions
func completionsURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/chat/completions"
}

func backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

func statusErr(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrInvalidAPIKey
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &APIError{StatusCode: resp.StatusCode, StatusText: statusText(resp)}
	}
}

// statusText prefers the server's reason phrase
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func contextErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
}
