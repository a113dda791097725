// Command commissionctl runs commission reconciliation offline and issues
// gateway tokens.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "commissionctl",
	Short:         "Seller commission reconciliation tools",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(newMatchCmd(), newTokenCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
