package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/tomaslau/focusonly/internal/model"
)

type fakeTabs map[int]string

func (f fakeTabs) URL(ctx context.Context, tabID int) (string, error) {
	u, ok := f[tabID]
	if !ok {
		return "", fmt.Errorf("no tab %d", tabID)
	}
	return u, nil
}

const articleHTML = `<!doctype html>
<html>
<head><title>Finding Product-Market Fit</title></head>
<body>
  <nav><a href="/">Home</a> <a href="/about">About</a></nav>
  <script>var tracking = "should not appear";</script>
  <article>
    <h1>Finding Product-Market Fit</h1>
    <p>Product-market fit means being in a good market with a product that can satisfy that market.
    Founders who talk to users every week find it sooner than those who do not.</p>
    <p>Start with a narrow audience, measure retention, and iterate on the onboarding flow until
    a meaningful share of users would be very disappointed if the product went away.</p>
    <p>Distribution matters as much as product. Pick one channel, learn it deeply, and only then
    expand to the next one. Most bootstrapped companies grow through a single channel for years.</p>
  </article>
  <footer>Copyright 2026</footer>
</body>
</html>`

func testFetchConfig() model.FetchConfig {
	cfg := model.DefaultConfig().Fetch
	cfg.Timeout = 5 * time.Second
	return cfg
}

func newSite(t *testing.T, robots string, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			if robots == "" {
				http.NotFound(w, r)
				return
			}
			_, _ = fmt.Fprint(w, robots)
			return
		}
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(r.URL.Path, ".txt") {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		}
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExtract_Article(t *testing.T) {
	server := newSite(t, "", map[string]string{"/pmf": articleHTML})
	pageURL := server.URL + "/pmf"

	e := NewHTTPExtractor(fakeTabs{7: pageURL}, testFetchConfig(), zerolog.Nop())
	page, err := e.Extract(context.Background(), 7)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if page.URL != pageURL {
		t.Errorf("expected URL %s, got %s", pageURL, page.URL)
	}
	if page.Domain != "127.0.0.1" {
		t.Errorf("expected domain 127.0.0.1, got %s", page.Domain)
	}
	if page.Title != "Finding Product-Market Fit" {
		t.Errorf("unexpected title: %q", page.Title)
	}
	if !strings.Contains(page.Excerpt, "talk to users every week") {
		t.Errorf("expected article text in excerpt, got %q", page.Excerpt)
	}
	if strings.Contains(page.Excerpt, "should not appear") {
		t.Error("expected scripts to be excluded")
	}
	if strings.Contains(page.Excerpt, "  ") || strings.Contains(page.Excerpt, "\n") {
		t.Error("expected whitespace to be collapsed")
	}
}

func TestExtract_CapsExcerpt(t *testing.T) {
	long := strings.Repeat("žluťoučký kůň ", 2000)
	server := newSite(t, "", map[string]string{"/long.txt": long})

	e := NewHTTPExtractor(fakeTabs{}, testFetchConfig(), zerolog.Nop())
	page, err := e.ExtractURL(context.Background(), server.URL+"/long.txt")
	if err != nil {
		t.Fatalf("ExtractURL failed: %v", err)
	}
	if n := utf8.RuneCountInString(page.Excerpt); n != model.ContentCharLimit {
		t.Errorf("expected excerpt capped at %d characters, got %d", model.ContentCharLimit, n)
	}
	if !utf8.ValidString(page.Excerpt) {
		t.Error("expected cap to respect rune boundaries")
	}
}

func TestExtract_RobotsDisallowed(t *testing.T) {
	server := newSite(t, "User-agent: *\nDisallow: /private\n", map[string]string{"/private/a": articleHTML, "/public": articleHTML})
	e := NewHTTPExtractor(fakeTabs{}, testFetchConfig(), zerolog.Nop())

	_, err := e.ExtractURL(context.Background(), server.URL+"/private/a")
	if !errors.Is(err, ErrDisallowed) {
		t.Errorf("expected ErrDisallowed, got %v", err)
	}

	if _, err := e.ExtractURL(context.Background(), server.URL+"/public"); err != nil {
		t.Errorf("expected public page to be allowed, got %v", err)
	}
}

func TestExtract_RobotsIgnoredWhenDisabled(t *testing.T) {
	server := newSite(t, "User-agent: *\nDisallow: /\n", map[string]string{"/a": articleHTML})

	cfg := testFetchConfig()
	cfg.RespectRobots = false
	e := NewHTTPExtractor(fakeTabs{}, cfg, zerolog.Nop())

	if _, err := e.ExtractURL(context.Background(), server.URL+"/a"); err != nil {
		t.Errorf("expected robots.txt to be ignored, got %v", err)
	}
}

func TestExtract_Errors(t *testing.T) {
	server := newSite(t, "", map[string]string{})
	e := NewHTTPExtractor(fakeTabs{1: server.URL + "/missing"}, testFetchConfig(), zerolog.Nop())

	if _, err := e.Extract(context.Background(), 1); err == nil {
		t.Error("expected error for 404 page")
	}
	if _, err := e.Extract(context.Background(), 2); err == nil {
		t.Error("expected error for unknown tab")
	}
	if err := e.Inject(context.Background(), 1); err != nil {
		t.Errorf("Inject failed: %v", err)
	}
}

var pngBody = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), []byte(strings.Repeat("\xff\xfe\x00\x01", 80))...)

func TestExtract_BinaryBodies(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
	}{
		{"png", "image/png"},
		{"pdf", "application/pdf"},
		{"untyped", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/robots.txt" {
					http.NotFound(w, r)
					return
				}
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = w.Write(pngBody)
			}))
			defer server.Close()

			e := NewHTTPExtractor(fakeTabs{1: server.URL + "/image"}, testFetchConfig(), zerolog.Nop())
			page, err := e.Extract(context.Background(), 1)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if page != nil {
				t.Errorf("expected no page for %s, got excerpt %q", tt.contentType, page.Excerpt)
			}
		})
	}
}

func TestExtract_PlainTextInvalidUTF8(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("notes \xff\xfe on pricing"))
	}))
	defer server.Close()

	e := NewHTTPExtractor(fakeTabs{1: server.URL + "/notes"}, testFetchConfig(), zerolog.Nop())
	page, err := e.Extract(context.Background(), 1)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if page == nil || !utf8.ValidString(page.Excerpt) || page.Excerpt != "notes on pricing" {
		t.Errorf("expected cleaned excerpt, got %+v", page)
	}
}

func TestIsText(t *testing.T) {
	tests := []struct {
		contentType string
		body        string
		want        bool
	}{
		{"text/plain; charset=utf-8", "", true},
		{"text/markdown", "# title", true},
		{"image/png", "", false},
		{"application/json", "{}", false},
		{"", "plain words here", true},
		{"application/octet-stream", "\x89PNG\r\n\x1a\n", false},
	}
	for _, tt := range tests {
		if got := isText(tt.contentType, []byte(tt.body)); got != tt.want {
			t.Errorf("isText(%q, %q) = %v, want %v", tt.contentType, tt.body, got, tt.want)
		}
	}
}

func TestBodyTextFallback(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><div>Visible  text</div><script>hidden()</script><style>.x{}</style><noscript>nojs</noscript></body></html>`))
	if err != nil {
		t.Fatal(err)
	}
	if got := collapseWhitespace(bodyText(doc)); got != "Visible text" {
		t.Errorf("expected %q, got %q", "Visible text", got)
	}
}

func TestCapRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "hé"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := capRunes(tt.in, tt.n); got != tt.want {
			t.Errorf("capRunes(%q, %d): expected %q, got %q", tt.in, tt.n, tt.want, got)
		}
	}
}

func TestIsHTML(t *testing.T) {
	if !isHTML("text/html; charset=utf-8", nil) {
		t.Error("expected text/html to be HTML")
	}
	if isHTML("text/plain", []byte("<html>")) {
		t.Error("expected text/plain to be trusted")
	}
	if !isHTML("", []byte("<!DOCTYPE html><html></html>")) {
		t.Error("expected sniffing to detect HTML")
	}
}
