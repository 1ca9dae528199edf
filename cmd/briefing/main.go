// Command briefing synthesizes a morning briefing from the configured
// sources.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/custodia-labs/briefing-cli/internal/adapters/driven/citations/ads"
	configfile "github.com/custodia-labs/briefing-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/briefing-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/briefing-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/briefing-cli/internal/connectors/adsmetrics"
	"github.com/custodia-labs/briefing-cli/internal/connectors/arxiv"
	"github.com/custodia-labs/briefing-cli/internal/connectors/gcal"
	githubconn "github.com/custodia-labs/briefing-cli/internal/connectors/github"
	"github.com/custodia-labs/briefing-cli/internal/connectors/gmail"
	"github.com/custodia-labs/briefing-cli/internal/connectors/markets"
	"github.com/custodia-labs/briefing-cli/internal/connectors/meditation"
	"github.com/custodia-labs/briefing-cli/internal/connectors/news"
	"github.com/custodia-labs/briefing-cli/internal/connectors/weather"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
	"github.com/custodia-labs/briefing-cli/internal/core/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.OnInit(wire)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// wire builds the service graph from the config file. Called after
// flag parsing so --config is honoured.
func wire(configPath string) error {
	cfg, err := configfile.Load(configPath)
	if err != nil {
		return err
	}

	store, err := sqlite.NewSnapshotStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}

	var citations driven.CitationIndex
	var adsClient *ads.Client
	if !configfile.Unconfigured(cfg.ADS.APIToken) && cfg.ADS.Author != "" {
		adsClient = ads.NewClient(cfg.ADS.APIToken, cfg.ADS.Author)
		citations = adsClient
	}

	googleTS := googleTokenSource(cfg.Google)

	connectors := []driven.Connector{
		arxiv.New(arxiv.Config{
			Categories:   cfg.Arxiv.Categories,
			LookbackDays: cfg.Arxiv.LookbackDays,
			MaxResults:   cfg.Arxiv.MaxResults,
		}),
		gmail.New(gmail.Config{
			VIPSenders: cfg.Mail.VIPSenders,
			MaxUnread:  cfg.Mail.MaxUnread,
		}, googleTS),
		gcal.New(gcal.Config{
			CalendarIDs:   cfg.Calendar.CalendarIDs,
			LookaheadDays: cfg.Calendar.LookaheadDays,
		}, googleTS),
		githubconn.New(githubconn.Config{Token: tokenOrEmpty(cfg.GitHub.Token)}),
		adsmetrics.New(adsClient),
		markets.New(markets.Config{
			Crypto: cfg.Markets.Crypto,
			Stocks: cfg.Markets.Stocks,
			Funds:  cfg.Markets.Funds,
		}),
		weather.New(weather.Config{
			APIKey:    tokenOrEmpty(cfg.Weather.APIKey),
			Locations: cfg.Weather.Locations,
		}),
		news.New(news.Config{
			Feeds:          cfg.News.Feeds,
			MaxPerCategory: cfg.News.MaxPerCategory,
		}),
		meditation.New(meditation.Config{FeedURL: cfg.Meditation.FeedURL}),
	}

	weights := services.MergeWeights(cfg.Weights)

	synthesis := services.NewSynthesis(
		connectors,
		services.NewGatherer(time.Duration(cfg.PerSourceTimeoutSeconds)*time.Second),
		services.NewCanonicalizer(),
		services.NewClassifier(cfg.Classifier.Tier2Keywords, cfg.Classifier.Tier3Keywords, cfg.ADS.WindowDays),
		services.NewDeltaTracker(store),
		services.NewScorer(weights),
		citations,
	)

	cli.SetSynthesizer(synthesis)
	cli.SetSnapshotStore(store)
	cli.SetConnectors(connectors)
	return nil
}

// googleTokenSource builds an OAuth token source from the stored
// refresh token, or nil when the Google credentials are not configured
// so the gmail and calendar connectors report themselves unavailable.
func googleTokenSource(cfg configfile.GoogleConfig) oauth2.TokenSource {
	if configfile.Unconfigured(cfg.ClientID) ||
		configfile.Unconfigured(cfg.ClientSecret) ||
		configfile.Unconfigured(cfg.RefreshToken) {
		return nil
	}
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
	}
	return oauthCfg.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.RefreshToken})
}

// tokenOrEmpty blanks out secrets whose ${VAR} placeholder was never
// expanded.
func tokenOrEmpty(value string) string {
	if configfile.Unconfigured(value) {
		return ""
	}
	return value
}
