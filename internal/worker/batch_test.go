package worker

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomaslau/focusonly/internal/model"
)

// mockTriager scores a URL by its length and fails URLs containing "fail"
type mockTriager struct {
	mu     sync.Mutex
	forced []bool
}

func (m *mockTriager) Triage(ctx context.Context, url string, force bool) (model.VerdictStatus, error) {
	m.mu.Lock()
	m.forced = append(m.forced, force)
	m.mu.Unlock()

	time.Sleep(5 * time.Millisecond)
	if strings.Contains(url, "fail") {
		return model.VerdictStatus{}, errors.New("triage error")
	}
	score := len(url) % 101
	return model.Success(model.Verdict{Verdict: model.LabelForScore(score), Score: score, Reasons: []string{}}), nil
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "urls")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}

func TestBatchProcessor_ProcessURLs(t *testing.T) {
	processor := NewBatchProcessor(&mockTriager{}, 2, false)

	urls := []string{"https://example.com", "https://go.dev/blog", "https://news.ycombinator.com"}
	results := processor.ProcessURLs(context.Background(), urls)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.URL != urls[i] {
			t.Errorf("result %d: expected URL %s, got %s", i, urls[i], res.URL)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.URL, res.Error)
		}
		if res.Status.Type != model.StatusSuccess || res.Status.Verdict == nil {
			t.Errorf("expected success for %s, got %+v", res.URL, res.Status)
		}
	}
}

func TestBatchProcessor_ProcessURLs_Error(t *testing.T) {
	processor := NewBatchProcessor(&mockTriager{}, 2, false)

	results := processor.ProcessURLs(context.Background(), []string{"https://fail.example.com"})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
}

func TestBatchProcessor_ForcePassedThrough(t *testing.T) {
	triager := &mockTriager{}
	processor := NewBatchProcessor(triager, 1, true)

	processor.ProcessURLs(context.Background(), []string{"https://a.example.com", "https://b.example.com"})

	for _, f := range triager.forced {
		if !f {
			t.Error("expected force=true for every triage")
		}
	}
}

func TestBatchProcessor_ProcessURLs_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockTriager{}, 2, false)

	if results := processor.ProcessURLs(context.Background(), []string{}); len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadURLsFromFile(t *testing.T) {
	path := writeTempFile(t, "http://example.com\n# comment\nhttps://google.com\n   \nhttp://bing.com   \nhttp://example.com\n")

	urls, err := ReadURLsFromFile(path)
	if err != nil {
		t.Fatalf("ReadURLsFromFile failed: %v", err)
	}

	expected := []string{"http://example.com", "https://google.com", "http://bing.com"}
	if len(urls) != len(expected) {
		t.Fatalf("expected %d URLs, got %d", len(expected), len(urls))
	}
	for i, url := range urls {
		if url != expected[i] {
			t.Errorf("expected URL %s at index %d, got %s", expected[i], i, url)
		}
	}
}

func TestReadURLsFromFile_NonExistent(t *testing.T) {
	if _, err := ReadURLsFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeTempFile(t, "http://example.com\nhttps://google.com\n# comment\n\nhttp://bing.com\n")
	processor := NewBatchProcessor(&mockTriager{}, 2, false)

	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&mockTriager{}, 2, false)

	if _, err := processor.ProcessFile(context.Background(), "no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
