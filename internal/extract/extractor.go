// Package extract fetches pages over HTTP and reduces them to a readable excerpt.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/rs/zerolog"
	"github.com/tomaslau/focusonly/internal/model"
	"github.com/tomaslau/focusonly/internal/util"
)

// URLResolver gives the current URL of a tab
type URLResolver interface {
	URL(ctx context.Context, tabID int) (string, error)
}

// HTTPExtractor is the extraction collaborator for tabs without a live DOM:
// it downloads the tab's URL and extracts the article text.
type HTTPExtractor struct {
	tabs    URLResolver
	fetcher *fetcher
	robots  *util.RobotsChecker // nil when robots.txt is ignored
	log     zerolog.Logger
}

// NewHTTPExtractor creates an extractor for the tabs known to resolver
func NewHTTPExtractor(resolver URLResolver, cfg model.FetchConfig, log zerolog.Logger) *HTTPExtractor {
	f := newFetcher(cfg)

	e := &HTTPExtractor{
		tabs:    resolver,
		fetcher: f,
		log:     log,
	}
	if cfg.RespectRobots {
		e.robots = util.NewRobotsChecker(f.httpClient, cfg.UserAgent)
	}
	return e
}

// Extract returns the page data for tabID
func (e *HTTPExtractor) Extract(ctx context.Context, tabID int) (*model.PageData, error) {
	rawURL, err := e.tabs.URL(ctx, tabID)
	if err != nil {
		return nil, fmt.Errorf("resolve tab %d: %w", tabID, err)
	}
	return e.ExtractURL(ctx, rawURL)
}

// Inject resets per-origin state so the next Extract starts clean
func (e *HTTPExtractor) Inject(ctx context.Context, tabID int) error {
	if e.robots != nil {
		e.robots.Clear()
	}
	return nil
}

// ExtractURL fetches rawURL and returns its title and excerpt.
// Documents that are neither HTML nor text yield a nil page.
func (e *HTTPExtractor) ExtractURL(ctx context.Context, rawURL string) (*model.PageData, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	if e.robots != nil {
		allowed, err := e.robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
		}
	}

	page, err := e.fetcher.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	var title, text string
	switch {
	case isHTML(page.contentType, page.body):
		title, text, err = extractHTML(page.body, parsed)
		if err != nil {
			return nil, err
		}
	case isText(page.contentType, page.body):
		text = string(page.body)
	default:
		// Images, PDFs and archives have no excerpt
		e.log.Debug().Str("url", rawURL).Str("content_type", page.contentType).Msg("not a text document")
		return nil, nil
	}

	excerpt := capRunes(collapseWhitespace(strings.ToValidUTF8(text, "")), model.ContentCharLimit)

	e.log.Debug().
		Str("url", rawURL).
		Str("final_url", page.finalURL).
		Int("excerpt_chars", utf8.RuneCountInString(excerpt)).
		Msg("extracted page")

	return &model.PageData{
		URL:     rawURL,
		Domain:  parsed.Hostname(),
		Title:   collapseWhitespace(title),
		Excerpt: excerpt,
	}, nil
}

// extractHTML runs Readability and falls back to the body text when it finds nothing
func extractHTML(body []byte, pageURL *url.URL) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("parse HTML: %w", err)
	}
	title = doc.Find("title").First().Text()

	parser := readability.NewParser()
	article, rerr := parser.Parse(bytes.NewReader(body), pageURL)
	if rerr == nil {
		if title == "" {
			title = article.Title
		}
		if content, cerr := goquery.NewDocumentFromReader(strings.NewReader(article.Content)); cerr == nil {
			text = strings.TrimSpace(content.Text())
		}
	}

	if text == "" {
		text = bodyText(doc)
	}
	if text == "" && rerr != nil {
		return title, "", errors.Join(errors.New("no readable content"), rerr)
	}
	return title, text, nil
}

// bodyText approximates innerText: scripts, styles and hidden templates dropped
func bodyText(doc *goquery.Document) string {
	body := doc.Find("body")
	body.Find("script, style, noscript, template, svg").Remove()
	return strings.TrimSpace(body.Text())
}

func isHTML(contentType string, body []byte) bool {
	if strings.Contains(contentType, "html") {
		return true
	}
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		head := strings.ToLower(string(body[:min(len(body), 512)]))
		return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
	}
	return false
}

// isText accepts text/* bodies, sniffing when the server sent no useful type
func isText(contentType string, body []byte) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "" || strings.HasPrefix(ct, "application/octet-stream") {
		ct = http.DetectContentType(body)
	}
	return strings.HasPrefix(ct, "text/")
}
