package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the market crawler.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "market-crawler",
		Short: "Rate-limited crawler for the Steam Community Market",
		Long: `market-crawler enumerates the Steam Community Market catalog and records
item listings and price snapshots, staying inside a conservative request
budget with exponential backoff and identity rotation.

Configuration comes from defaults, an optional YAML file (--config) and
MARKET_-prefixed environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Configuration file path")
	cmd.PersistentFlags().Bool("pretty", false, "Human-readable console log output")
	cmd.PersistentFlags().String("metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9100)")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewPriceCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
