package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_ADS_TOKEN", "secret-token")

	path := writeConfig(t, `
[ads]
api_token = "${TEST_ADS_TOKEN}"
author = "Doe, J."

[github]
token = "${TEST_UNSET_TOKEN_XYZ}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.ADS.APIToken)
	// Unset variables stay as placeholders so connectors detect them.
	assert.Equal(t, "${TEST_UNSET_TOKEN_XYZ}", cfg.GitHub.Token)
	assert.False(t, Unconfigured(cfg.ADS.APIToken))
	assert.True(t, Unconfigured(cfg.GitHub.Token))
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.PerSourceTimeoutSeconds)
	assert.Equal(t, []string{"astro-ph.GA"}, cfg.Arxiv.Categories)
	assert.Equal(t, 1, cfg.Arxiv.LookbackDays)
	assert.Equal(t, 200, cfg.Arxiv.MaxResults)
	assert.Equal(t, 7, cfg.ADS.WindowDays)
	assert.Equal(t, 100, cfg.Mail.MaxUnread)
	assert.Equal(t, 3, cfg.Calendar.LookaheadDays)
	assert.Equal(t, 5, cfg.News.MaxPerCategory)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
per_source_timeout_seconds = 30
data_dir = "/tmp/briefing-test"

[arxiv]
categories = ["astro-ph.GA", "astro-ph.SR"]
lookback_days = 2

[classifier]
tier2_keywords = ["star formation"]
tier3_keywords = ["galaxy"]

[mail]
vip_senders = ["advisor@uni.edu"]

[markets]
crypto = ["bitcoin"]
stocks = ["AAPL", "^GSPC"]
funds = ["VWCE.DE"]

[news]
max_per_category = 3
[news.feeds]
science = ["https://feeds.example/science.rss"]

[weights]
notification = 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.PerSourceTimeoutSeconds)
	assert.Equal(t, []string{"astro-ph.GA", "astro-ph.SR"}, cfg.Arxiv.Categories)
	assert.Equal(t, []string{"star formation"}, cfg.Classifier.Tier2Keywords)
	assert.Equal(t, []string{"advisor@uni.edu"}, cfg.Mail.VIPSenders)
	assert.Equal(t, []string{"AAPL", "^GSPC"}, cfg.Markets.Stocks)
	assert.Equal(t, []string{"VWCE.DE"}, cfg.Markets.Funds)
	assert.Equal(t, []string{"https://feeds.example/science.rss"}, cfg.News.Feeds["science"])
	assert.Equal(t, 3, cfg.News.MaxPerCategory)
	assert.Equal(t, 2, cfg.Weights["notification"])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestUnconfigured(t *testing.T) {
	assert.True(t, Unconfigured(""))
	assert.True(t, Unconfigured("${NEVER_SET}"))
	assert.False(t, Unconfigured("actual-value"))
}
