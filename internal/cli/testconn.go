package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Check the API key and endpoint with one tiny request",
	Long: `Test-connection sends a single short completion to the configured endpoint.
It never retries and does not touch the cache or usage stats.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newStores(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.requireKey(ctx); err != nil {
			return err
		}
		s, err := a.settings.Get(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Testing %s at %s ...\n", s.APIConfig.Model, s.APIConfig.BaseURL)
		res := a.llm.TestConnection(ctx, s.APIConfig)
		if !res.OK {
			fmt.Printf("✗ %s\n", res.Error)
			return errors.New("connection test failed")
		}
		fmt.Println("✓ Connection OK")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(testConnectionCmd)
}
