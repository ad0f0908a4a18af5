package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tomaslau/focusonly/internal/model"
	"github.com/tomaslau/focusonly/internal/util"
)

// ErrDisallowed is returned when robots.txt forbids fetching the page
var ErrDisallowed = errors.New("disallowed by robots.txt")

const maxRedirects = 5

// fetcher downloads page bodies
type fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

func newFetcher(cfg model.FetchConfig) *fetcher {
	return &fetcher{
		httpClient: util.NewHTTPClient(cfg.Timeout, cfg.HTTPProxy, cfg.HTTPSProxy, maxRedirects),
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBodyBytes,
	}
}

type fetched struct {
	body        []byte
	contentType string
	finalURL    string
}

func (f *fetcher) fetch(ctx context.Context, rawURL string) (*fetched, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	limit := f.maxBytes
	if limit <= 0 {
		limit = 4_000_000
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &fetched{
		body:        body,
		contentType: strings.ToLower(resp.Header.Get("Content-Type")),
		finalURL:    resp.Request.URL.String(),
	}, nil
}
