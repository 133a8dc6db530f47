package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sitecheck/internal/config"
	"sitecheck/internal/crawler"
	"sitecheck/pkg/logger"
)

// crawlCommand constructs the 'crawl' subcommand that runs a single crawl
// against the given base URL and prints the report as JSON. It needs no
// database; results are not stored.
func crawlCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawls a single site and prints the broken page report",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

			c := crawler.New(crawler.NewHTTPClient(), crawler.LogObserver{}, crawler.NewConfig(cfg))

			report, err := c.Crawl(ctx, args[0])
			if err != nil {
				logger.Fatal(ctx, "could not crawl site", zap.Error(err))
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				logger.Fatal(ctx, "could not marshal crawl report", zap.Error(err))
			}

			fmt.Println(string(out)) //nolint: forbidigo
		},
	}

	return cmd
}
