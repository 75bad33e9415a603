// Package cli wires the commands: the default TUI plus headless helpers
// for scripting and checks.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"metrowatch/internal/cache"
	"metrowatch/internal/config"
	"metrowatch/internal/logger"
	"metrowatch/internal/notify"
	"metrowatch/internal/recommend"
	"metrowatch/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig  string
	flagAccount string
)

var rootCmd = &cobra.Command{
	Use:   "metrowatch",
	Short: "Daily news curation for the metro beat",
	Long: "metrowatch fetches the day's news per keyword, lets the operator tick off\n" +
		"the relevant articles with optional AI pre-selection, and composes the\n" +
		"morning report with shortened links.",
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagAccount, "account", "", "SerpApi account name to use")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(quotaCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("metrowatch %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func runTUI(cmd *cobra.Command, args []string) error {
	logger.Init()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	store := cache.New()

	var generator recommend.Generator
	if cfg.AIEnabled() {
		gemini, err := recommend.NewGemini(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			logger.Warn("gemini client unavailable, AI picks disabled", "error", err)
		} else {
			defer gemini.Close()
			generator = gemini
		}
	}

	var notifier tui.Notifier
	if cfg.Telegram != nil {
		if tg := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Timeout()); tg != nil {
			notifier = tg
		}
	}

	return tui.Run(tui.RunOpts{
		Cfg:       cfg,
		Store:     store,
		Generator: generator,
		Notifier:  notifier,
	})
}

// pickAccount resolves the account to use for headless commands: the
// --account flag when given, otherwise the first configured one.
func pickAccount(cfg *config.Config) (string, error) {
	names := cfg.AccountNames()
	if flagAccount != "" {
		for _, n := range names {
			if n == flagAccount {
				return n, nil
			}
		}
		return "", fmt.Errorf("unknown account %q, configured: %v", flagAccount, names)
	}
	return names[0], nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
