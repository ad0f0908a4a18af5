package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/tomaslau/focusonly/internal/model"
)

// ConnectionResult is the outcome of TestConnection
type ConnectionResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// TestConnection sends one tiny completion to check the key and endpoint.
// It never retries and never touches cache or stats.
func (c *Client) TestConnection(ctx context.Context, cfg model.APIConfig) ConnectionResult {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	oc.HTTPClient = c.httpClient
	client := openai.NewClientWithConfig(oc)

	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	_, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: `Say "ok"`},
		},
		MaxTokens: 5,
	})
	if err != nil {
		c.log.Debug().Err(err).Str("base_url", oc.BaseURL).Msg("connection test failed")
		return ConnectionResult{Error: probeMessage(err)}
	}
	return ConnectionResult{OK: true}
}

func probeMessage(err error) string {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusUnauthorized:
		return "Invalid API key"
	case status != 0:
		return fmt.Sprintf("Error: %d %s", status, http.StatusText(status))
	case errors.Is(err, context.DeadlineExceeded):
		return "Connection timed out"
	default:
		return err.Error()
	}
}
