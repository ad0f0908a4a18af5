package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomaslau/focusonly/internal/model"
	"github.com/tomaslau/focusonly/internal/worker"
)

var (
	concurrency  int
	batchForce   bool
	batchJSON    bool
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Classify many URLs from a file in parallel",
	Long: `Batch triages a list of URLs (one per line, # for comments) with a
pool of workers. Each URL is analyzed as its own tab, so skip rules,
cache and stats behave as in the browser.

Example:
  focusonly batch reading-list.txt
  focusonly batch reading-list.txt --concurrency 8 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().BoolVar(&batchForce, "force", false, "ignore the cache and re-analyze")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "print results as JSON lines")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for the batch")
}

type batchLine struct {
	URL    string              `json:"url"`
	Status model.VerdictStatus `json:"status"`
	Error  string              `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireKey(ctx); err != nil {
		return err
	}

	if !batchJSON {
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
		fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
		fmt.Fprintf(os.Stderr, "\n")
	}

	started := time.Now()
	results, err := worker.NewBatchProcessor(a.session(), concurrency, batchForce).ProcessFile(ctx, file)
	if err != nil {
		return err
	}

	counts := map[string]int{}
	enc := json.NewEncoder(os.Stdout)
	for _, r := range results {
		key := string(r.Status.Type)
		if r.Status.Type == model.StatusSuccess {
			key = string(r.Status.Verdict.Verdict)
		}
		if r.Error != nil {
			key = "failed"
		}
		counts[key]++

		if batchJSON {
			line := batchLine{URL: r.URL, Status: r.Status}
			if r.Error != nil {
				line.Error = r.Error.Error()
			}
			if err := enc.Encode(line); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
			continue
		}
		if r.Error != nil {
			fmt.Printf("✗  %s: %v\n", r.URL, r.Error)
			continue
		}
		printStatus(os.Stdout, r.URL, r.Status)
	}

	if !batchJSON {
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "  Total:     %d URLs in %s\n", len(results), time.Since(started).Round(time.Millisecond))
		fmt.Fprintf(os.Stderr, "  Read:      %d\n", counts[string(model.LabelRead)])
		fmt.Fprintf(os.Stderr, "  Save:      %d\n", counts[string(model.LabelSave)])
		fmt.Fprintf(os.Stderr, "  Leave:     %d\n", counts[string(model.LabelLeave)])
		fmt.Fprintf(os.Stderr, "  Skipped:   %d\n", counts[string(model.StatusSkipped)])
		fmt.Fprintf(os.Stderr, "  Errors:    %d\n", counts[string(model.StatusError)]+counts["failed"])
		fmt.Fprintf(os.Stderr, "\n")
	}
	return nil
}
