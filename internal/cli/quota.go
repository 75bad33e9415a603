package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"metrowatch/internal/config"
	"metrowatch/internal/serpapi"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show remaining SerpApi quota for every configured account",
	RunE:  runQuota,
}

func runQuota(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	for _, name := range cfg.AccountNames() {
		client := serpapi.NewClient(cfg.Accounts[name], cfg.Timeout())
		info, err := client.Account(ctx)
		if err != nil {
			fmt.Printf("%s: quota unavailable: %v\n", name, err)
			continue
		}
		fmt.Printf("%s: %d/%d searches used, %d left\n",
			name, info.Used(), info.SearchesPerMonth, info.PlanSearchesLeft)
	}
	return nil
}
