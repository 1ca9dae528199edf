// Package file loads the briefing configuration from a TOML file,
// expanding ${ENV_VAR} references so secrets stay out of the file.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pelletier/go-toml/v2"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Config is the full briefing configuration.
type Config struct {
	// PerSourceTimeoutSeconds bounds each connector fetch. Default 60.
	PerSourceTimeoutSeconds int `toml:"per_source_timeout_seconds"`

	// DataDir holds the snapshot database. Empty means ~/.briefing/data.
	DataDir string `toml:"data_dir"`

	Arxiv      ArxivConfig      `toml:"arxiv"`
	ADS        ADSConfig        `toml:"ads"`
	Classifier ClassifierConfig `toml:"classifier"`
	Google     GoogleConfig     `toml:"google"`
	Mail       MailConfig       `toml:"mail"`
	Calendar   CalendarConfig   `toml:"calendar"`
	GitHub     GitHubConfig     `toml:"github"`
	Markets    MarketsConfig    `toml:"markets"`
	Weather    WeatherConfig    `toml:"weather"`
	News       NewsConfig       `toml:"news"`
	Meditation MeditationConfig `toml:"meditation"`

	// Weights overrides individual scorer weights by factor name.
	Weights map[string]int `toml:"weights"`
}

// ArxivConfig configures the paper feed.
type ArxivConfig struct {
	Categories   []string `toml:"categories"`
	LookbackDays int      `toml:"lookback_days"`
	MaxResults   int      `toml:"max_results"`
}

// ADSConfig configures the citation database client.
type ADSConfig struct {
	APIToken   string `toml:"api_token"`
	Author     string `toml:"author"`
	WindowDays int    `toml:"window_days"`
}

// ClassifierConfig holds the tier keyword sets.
type ClassifierConfig struct {
	Tier2Keywords []string `toml:"tier2_keywords"`
	Tier3Keywords []string `toml:"tier3_keywords"`
}

// GoogleConfig holds OAuth material shared by the gmail and calendar
// connectors.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RefreshToken string `toml:"refresh_token"`
}

// MailConfig configures the mail connector.
type MailConfig struct {
	VIPSenders []string `toml:"vip_senders"`
	MaxUnread  int      `toml:"max_unread"`
}

// CalendarConfig configures the calendar connector.
type CalendarConfig struct {
	CalendarIDs   []string `toml:"calendar_ids"`
	LookaheadDays int      `toml:"lookahead_days"`
}

// GitHubConfig configures the code-hosting connector.
type GitHubConfig struct {
	Token string `toml:"token"`
}

// MarketsConfig configures the markets metric source.
type MarketsConfig struct {
	Crypto []string `toml:"crypto"`
	Stocks []string `toml:"stocks"`
	Funds  []string `toml:"funds"`
}

// WeatherConfig configures the weather connector.
type WeatherConfig struct {
	APIKey    string   `toml:"api_key"`
	Locations []string `toml:"locations"`
}

// NewsConfig maps category names to RSS feed URLs.
type NewsConfig struct {
	Feeds          map[string][]string `toml:"feeds"`
	MaxPerCategory int                 `toml:"max_per_category"`
}

// MeditationConfig configures the daily meditation feed.
type MeditationConfig struct {
	FeedURL string `toml:"feed_url"`
}

// Load reads and parses the config file, expanding environment
// variable references. If path is empty, defaults to
// ~/.briefing/config.toml.
func Load(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".briefing", "config.toml")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	expanded := expandEnvVars(string(raw))

	var cfg Config
	if err := toml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// expandEnvVars replaces ${VAR} with the environment value. Unset
// variables are left as-is so connectors can detect unconfigured
// secrets and report themselves unavailable.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

func (c *Config) applyDefaults() {
	if c.PerSourceTimeoutSeconds <= 0 {
		c.PerSourceTimeoutSeconds = 60
	}
	if c.Arxiv.LookbackDays <= 0 {
		c.Arxiv.LookbackDays = 1
	}
	if c.Arxiv.MaxResults <= 0 {
		c.Arxiv.MaxResults = 200
	}
	if len(c.Arxiv.Categories) == 0 {
		c.Arxiv.Categories = []string{"astro-ph.GA"}
	}
	if c.ADS.WindowDays <= 0 {
		c.ADS.WindowDays = 7
	}
	if c.Mail.MaxUnread <= 0 {
		c.Mail.MaxUnread = 100
	}
	if c.Calendar.LookaheadDays <= 0 {
		c.Calendar.LookaheadDays = 3
	}
	if c.News.MaxPerCategory <= 0 {
		c.News.MaxPerCategory = 5
	}
}

// Unconfigured reports whether a secret value is missing or still an
// unexpanded ${VAR} placeholder.
func Unconfigured(value string) bool {
	return value == "" || envVarPattern.MatchString(value)
}
