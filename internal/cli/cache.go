package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached verdicts",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached verdict",
	Long:  `Clear deletes all cached verdicts. Settings and usage stats are kept.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newStores(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.cache.ClearAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("✓ Removed %d cached verdict(s)\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
