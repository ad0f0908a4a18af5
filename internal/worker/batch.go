package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tomaslau/focusonly/internal/model"
)

// Triager produces a verdict status for one URL
type Triager interface {
	Triage(ctx context.Context, url string, force bool) (model.VerdictStatus, error)
}

// TriageResult is the outcome for one URL of a batch
type TriageResult struct {
	URL    string
	Status model.VerdictStatus
	Error  error
}

// BatchProcessor triages many URLs concurrently
type BatchProcessor struct {
	triager     Triager
	concurrency int
	force       bool
}

// NewBatchProcessor creates a batch processor. force skips cache lookups.
func NewBatchProcessor(triager Triager, concurrency int, force bool) *BatchProcessor {
	return &BatchProcessor{
		triager:     triager,
		concurrency: concurrency,
		force:       force,
	}
}

// ProcessURLs triages urls and returns one result per URL in input order
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []TriageResult {
	if len(urls) == 0 {
		return []TriageResult{}
	}

	pool := NewPool[TriageResult](ctx, b.concurrency)
	pool.Start()

	for _, u := range urls {
		pool.Submit(func(ctx context.Context) TriageResult {
			status, err := b.triager.Triage(ctx, u, b.force)
			return TriageResult{URL: u, Status: status, Error: err}
		})
	}

	results := pool.Wait()
	for i := range results {
		if results[i].URL == "" {
			results[i] = TriageResult{URL: urls[i], Error: context.Cause(ctx)}
		}
	}
	return results
}

// ProcessFile reads URLs from a file and triages them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]TriageResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}

	return b.ProcessURLs(ctx, urls), nil
}

// ReadURLsFromFile reads URLs one per line, skipping blanks, # comments and duplicates
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
