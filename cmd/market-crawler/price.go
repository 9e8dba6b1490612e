package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewPriceCmd creates the price command.
func NewPriceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price <market-hash-name>",
		Short: "Look up the current price snapshot for one item",
		Long: `Price fetches the price overview for a single item by its market hash
name, going through the configured Redis cache when one is enabled.

Examples:
  market-crawler price "AK-47 | Redline (Field-Tested)"
  market-crawler price --currency 3 "AWP | Asiimov (Field-Tested)"`,
		Args: cobra.ExactArgs(1),
		RunE: runPriceCmd,
	}

	cmd.Flags().Int("currency", 0, "Steam currency code (overrides configuration)")

	return cmd
}

func runPriceCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	startMetrics(cmd)

	if currency, _ := cmd.Flags().GetInt("currency"); currency > 0 {
		cfg.Market.Currency = currency
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	searchClient, err := newMarketClient(ctx, cfg)
	if err != nil {
		return err
	}

	po, err := searchClient.PriceOverview(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", args[0])
	if po.LowestPrice != "" {
		fmt.Printf("  lowest: %s\n", po.LowestPrice)
	}
	if po.MedianPrice != "" {
		fmt.Printf("  median: %s\n", po.MedianPrice)
	}
	if po.Volume != "" {
		fmt.Printf("  volume: %s\n", po.Volume)
	}

	return nil
}
