// Package config loads the application configuration: embedded defaults,
// optionally overridden by a YAML file at the xdg config path, with API
// keys also accepted from the environment.
package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type SearchConfig struct {
	Language string `yaml:"language"` // hl
	Country  string `yaml:"country"`  // gl
	Num      int    `yaml:"num"`
	Window   string `yaml:"window"` // tbs recency hint
	Pages    int    `yaml:"pages"`
}

type RecencyConfig struct {
	Mode     string `yaml:"mode"` // strict | grace
	Timezone string `yaml:"timezone"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID string `yaml:"chat_id"`
}

type Config struct {
	// SerpApi accounts, name -> API key. The operator picks one at
	// session start.
	Accounts map[string]string `yaml:"accounts"`

	Keywords   string   `yaml:"keywords"`   // comma separated defaults
	Categories []string `yaml:"categories"` // declared report order; last is the fallback
	Prompt     string   `yaml:"prompt"`

	Search  SearchConfig  `yaml:"search"`
	Recency RecencyConfig `yaml:"recency"`

	GeminiAPIKey string          `yaml:"gemini_api_key"`
	Telegram     *TelegramConfig `yaml:"telegram,omitempty"`

	RequestTimeout string `yaml:"request_timeout"`
}

// Timeout parses the per-request timeout, falling back to 10s.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "metrowatch", "config.yaml")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path (the default path when empty), writing
// the embedded defaults there on first run. Environment variables
// SERPAPI_KEY, GEMINI_API_KEY, TELEGRAM_TOKEN and TELEGRAM_CHAT_ID
// override their file counterparts.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: materialize the defaults so the operator has a
		// file to edit. Non-fatal if the directory is not writable.
		_ = writeDefaults(path)
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	return cfg, cfg.Validate()
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func applyEnv(cfg *Config) {
	if key := os.Getenv("SERPAPI_KEY"); key != "" {
		if cfg.Accounts == nil {
			cfg.Accounts = make(map[string]string)
		}
		cfg.Accounts["env"] = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.GeminiAPIKey = key
	}
	if tok := os.Getenv("TELEGRAM_TOKEN"); tok != "" {
		if cfg.Telegram == nil {
			cfg.Telegram = &TelegramConfig{}
		}
		cfg.Telegram.Token = tok
	}
	if chat := os.Getenv("TELEGRAM_CHAT_ID"); chat != "" {
		if cfg.Telegram == nil {
			cfg.Telegram = &TelegramConfig{}
		}
		cfg.Telegram.ChatID = chat
	}
}

// Validate is the hard stop before any operation: no search key, no app.
// A missing Gemini key only disables recommendations and is not an error.
func (c *Config) Validate() error {
	if len(c.AccountNames()) == 0 {
		return fmt.Errorf("no SerpApi key configured: add one under accounts in %s or set SERPAPI_KEY", DefaultConfigPath())
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	switch c.Recency.Mode {
	case "", "strict", "grace":
	default:
		return fmt.Errorf("recency.mode must be strict or grace, got %q", c.Recency.Mode)
	}
	if c.Search.Pages < 0 {
		return fmt.Errorf("search.pages must be >= 0")
	}
	return nil
}

// AccountNames lists configured account names with non-empty keys, sorted
// for a stable picker order.
func (c *Config) AccountNames() []string {
	var names []string
	for name, key := range c.Accounts {
		if strings.TrimSpace(key) != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// KeywordList splits the configured keyword string on commas, trimming
// blanks and preserving order.
func (c *Config) KeywordList() []string {
	return SplitKeywords(c.Keywords)
}

// SplitKeywords parses a comma-separated keyword string the way the
// operator types it.
func SplitKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// AIEnabled reports whether recommendation calls are possible.
func (c *Config) AIEnabled() bool {
	return c.GeminiAPIKey != ""
}

// Location resolves the recency timezone, defaulting to Asia/Taipei.
func (c *Config) Location() (*time.Location, error) {
	tz := c.Recency.Timezone
	if tz == "" {
		tz = "Asia/Taipei"
	}
	return time.LoadLocation(tz)
}
