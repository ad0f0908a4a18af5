package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomaslau/focusonly/internal/model"
)

var (
	checkForce   bool
	checkJSON    bool
	checkTimeout time.Duration
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <url>",
	Short: "Classify a single URL against your profile",
	Long: `Check fetches a page, extracts its readable text and asks the model
whether it is worth reading right now for your current profile.

The same rules as the browser extension apply: internal pages and skipped
domains are not analyzed, and cached verdicts are reused for seven days.

Example:
  focusonly check https://paulgraham.com/startupideas.html
  focusonly check https://example.com --force --json`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkForce, "force", false, "ignore the cache and re-analyze")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the status as JSON")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall timeout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	url := args[0]
	a.log.Debug().Str("url", url).Bool("force", checkForce).Msg("checking")

	status, err := a.session().Triage(ctx, url, checkForce)
	if err != nil {
		return fmt.Errorf("check %s: %w", url, err)
	}

	if checkJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}
	printStatus(os.Stdout, url, status)
	if status.Type == model.StatusError {
		return fmt.Errorf("analysis failed: %s", status.Message)
	}
	return nil
}

// printStatus renders a status for humans
func printStatus(w io.Writer, url string, status model.VerdictStatus) {
	switch status.Type {
	case model.StatusSuccess:
		v := status.Verdict
		fmt.Fprintf(w, "%s  %s (%d/100)\n", verdictMark(v.Verdict), v.Verdict, v.Score)
		fmt.Fprintf(w, "   %s\n", url)
		for _, reason := range v.Reasons {
			fmt.Fprintf(w, "   - %s\n", reason)
		}
	case model.StatusSkipped:
		fmt.Fprintf(w, "-  Skipped: %s\n   %s\n", status.Reason, url)
	case model.StatusDisabled:
		fmt.Fprintf(w, "-  Analysis is disabled (focusonly settings enable)\n")
	case model.StatusError:
		fmt.Fprintf(w, "✗  %s\n   %s\n", status.Message, url)
		if status.SettingsHint {
			fmt.Fprintf(w, "   Fix it with: focusonly settings set-key\n")
		}
	default:
		fmt.Fprintf(w, "-  %s\n   %s\n", strings.ToUpper(string(status.Type)), url)
	}
}

func verdictMark(l model.Label) string {
	switch l {
	case model.LabelRead:
		return "✓"
	case model.LabelSave:
		return "★"
	default:
		return "✗"
	}
}
