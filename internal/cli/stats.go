package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomaslau/focusonly/internal/model"
)

var (
	statsReset bool
	statsJSON  bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show usage counters",
	Long: `Stats prints how many pages were analyzed, how many model calls were made
and a rough token estimate. Cache hits are not counted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newStores(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if statsReset {
			if err := a.stats.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("✓ Stats reset")
			return nil
		}

		st, err := a.stats.Get(cmd.Context())
		if err != nil {
			return err
		}
		if statsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		}
		printStats(os.Stdout, st)
		return nil
	},
}

func printStats(w io.Writer, st model.Stats) {
	fmt.Fprintf(w, "Pages analyzed:    %d\n", st.PagesAnalyzed)
	fmt.Fprintf(w, "API calls:         %d\n", st.APICalls)
	fmt.Fprintf(w, "Tokens (estimate): %d\n", st.TokensEstimated)
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&statsReset, "reset", false, "zero all counters")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print as JSON")
}
