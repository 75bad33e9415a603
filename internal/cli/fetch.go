package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"metrowatch/internal/config"
	"metrowatch/internal/fetch"
	"metrowatch/internal/logger"
	"metrowatch/internal/recency"
	"metrowatch/internal/serpapi"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [keywords...]",
	Short: "Fetch today's articles and print them, no interaction",
	Long: "Runs one fetch cycle against the configured (or given) keywords and\n" +
		"prints the recent articles grouped by keyword. Useful for a quick look\n" +
		"before opening the interactive session.",
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	logger.Init()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	account, err := pickAccount(cfg)
	if err != nil {
		return err
	}

	keywords := args
	if len(keywords) == 0 {
		keywords = cfg.KeywordList()
	}
	if len(keywords) == 0 {
		return fmt.Errorf("no keywords given and none configured")
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("resolving timezone: %w", err)
	}

	client := serpapi.NewClient(cfg.Accounts[account], cfg.Timeout())
	policy := recency.NewPolicy(loc, recency.Mode(cfg.Recency.Mode))
	opts := serpapi.SearchOptions{
		Language: cfg.Search.Language,
		Country:  cfg.Search.Country,
		Num:      cfg.Search.Num,
		Window:   cfg.Search.Window,
	}
	orch := fetch.New(client, policy, opts, cfg.Search.Pages)

	ctx, cancel := context.WithTimeout(cmd.Context(), 90*time.Second)
	defer cancel()

	logger.Info("fetching", "account", account, "keywords", keywords)
	buckets, errs := orch.Fetch(ctx, keywords)

	for _, e := range errs {
		logger.Error("keyword failed", "keyword", e.Keyword, "error", e.Err)
	}

	for _, kw := range buckets.Keywords {
		items := buckets.Get(kw)
		fmt.Printf("%s (%d)\n", kw, len(items))
		for _, a := range items {
			fmt.Printf("  %s\n    %s · %s\n    %s\n", a.Title, a.Source, a.Marker, a.URL)
		}
		fmt.Println()
	}

	fmt.Printf("%d recent articles\n", buckets.Len())
	return nil
}
