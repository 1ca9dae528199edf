// Package markets fetches market data for the tracked assets: spot
// prices and 24h changes for crypto via the CoinGecko simple-price
// API, and last price plus day change for stock, index, and fund
// tickers via the Yahoo Finance chart API. Everything lands in the
// metrics map, so the delta tracker compares values across days.
package markets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
	"github.com/custodia-labs/briefing-cli/internal/logger"
)

const (
	defaultBaseURL       = "https://api.coingecko.com/api/v3"
	defaultStocksBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Config configures the markets connector.
type Config struct {
	// Crypto lists CoinGecko asset IDs ("bitcoin", "ethereum").
	Crypto []string

	// Stocks lists stock and index tickers ("AAPL", "^GSPC").
	Stocks []string

	// Funds lists fund and ETF tickers, fetched like stocks.
	Funds []string
}

// Connector fetches crypto and stock prices.
type Connector struct {
	config        Config
	baseURL       string
	stocksBaseURL string
	http          *http.Client

	mu     sync.Mutex
	closed bool
}

// New creates a markets connector.
func New(cfg Config) *Connector {
	return &Connector{
		config:        cfg,
		baseURL:       defaultBaseURL,
		stocksBaseURL: defaultStocksBaseURL,
		http:          &http.Client{Timeout: 15 * time.Second},
	}
}

// SetBaseURL overrides the CoinGecko endpoint. Used in tests.
func (c *Connector) SetBaseURL(u string) {
	c.baseURL = u
}

// SetStocksBaseURL overrides the quote chart endpoint. Used in tests.
func (c *Connector) SetStocksBaseURL(u string) {
	c.stocksBaseURL = u
}

// Name returns the source identifier.
func (c *Connector) Name() string {
	return "markets"
}

// Available reports whether any assets are configured.
func (c *Connector) Available() bool {
	return len(c.config.Crypto) > 0 || len(c.tickers()) > 0
}

// Close marks the connector closed.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// tickers returns stock and fund symbols as one list; both halves go
// through the same quote endpoint.
func (c *Connector) tickers() []string {
	return append(append([]string{}, c.config.Stocks...), c.config.Funds...)
}

// Fetch queries current prices for all configured assets. The crypto
// batch and each ticker fail independently; a half that cannot be read
// is logged and skipped, and only everything failing is a transient
// source error.
func (c *Connector) Fetch(ctx context.Context) (domain.SourceResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.SourceResult{}, domain.ErrConnectorClosed
	}
	c.mu.Unlock()

	metrics := make(map[string]float64)
	var attempted, failed int

	if len(c.config.Crypto) > 0 {
		attempted++
		if err := c.fetchCrypto(ctx, metrics); err != nil {
			logger.Warn("crypto prices: %v", err)
			failed++
		}
	}

	for _, ticker := range c.tickers() {
		attempted++
		price, changePct, err := c.fetchQuote(ctx, ticker)
		if err != nil {
			logger.Warn("quote for %s: %v", ticker, err)
			failed++
			continue
		}
		metrics["stock."+ticker+".price"] = price
		metrics["stock."+ticker+".change_pct"] = changePct
	}

	if attempted > 0 && failed == attempted {
		return domain.SourceResult{}, fmt.Errorf("%w: no market data readable", domain.ErrConnectorTransient)
	}

	return domain.SourceResult{
		SourceID: c.Name(),
		Status:   domain.StatusOK,
		Metrics:  metrics,
	}, nil
}

// fetchCrypto reads all crypto assets in one batched call.
func (c *Connector) fetchCrypto(ctx context.Context, metrics map[string]float64) error {
	params := url.Values{}
	params.Set("ids", strings.Join(c.config.Crypto, ","))
	params.Set("vs_currencies", "usd")
	params.Set("include_24hr_change", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/simple/price?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConnectorTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: coingecko returned %d", domain.ErrConnectorTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("coingecko returned %d", resp.StatusCode)
	}

	var prices map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		return fmt.Errorf("decode prices: %w", err)
	}

	for asset, values := range prices {
		if usd, ok := values["usd"]; ok {
			metrics["price."+asset+".usd"] = usd
		}
		if change, ok := values["usd_24h_change"]; ok {
			metrics["price."+asset+".change_24h"] = change
		}
	}
	return nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// fetchQuote reads the last price and previous close for one ticker
// and derives the day change in percent.
func (c *Connector) fetchQuote(ctx context.Context, ticker string) (price, changePct float64, err error) {
	params := url.Values{}
	params.Set("range", "1d")
	params.Set("interval", "1d")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.stocksBaseURL+"/"+url.PathEscape(ticker)+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return 0, 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", domain.ErrConnectorTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return 0, 0, fmt.Errorf("%w: quote service returned %d", domain.ErrConnectorTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("quote service returned %d", resp.StatusCode)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return 0, 0, fmt.Errorf("decode chart: %w", err)
	}
	if len(chart.Chart.Result) == 0 {
		return 0, 0, fmt.Errorf("no data for %s", ticker)
	}

	meta := chart.Chart.Result[0].Meta
	if meta.RegularMarketPrice == 0 {
		return 0, 0, fmt.Errorf("no data for %s", ticker)
	}
	if meta.PreviousClose != 0 {
		changePct = (meta.RegularMarketPrice - meta.PreviousClose) / meta.PreviousClose * 100
	}
	return meta.RegularMarketPrice, changePct, nil
}
