// Package weather fetches current conditions for the configured
// locations from the OpenWeatherMap API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
	"github.com/custodia-labs/briefing-cli/internal/logger"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Config configures the weather connector.
type Config struct {
	// APIKey authenticates against OpenWeatherMap.
	APIKey string

	// Locations are city names ("Heidelberg,DE").
	Locations []string
}

// Connector fetches current weather.
type Connector struct {
	config  Config
	baseURL string
	http    *http.Client

	mu     sync.Mutex
	closed bool
}

// New creates a weather connector.
func New(cfg Config) *Connector {
	return &Connector{
		config:  cfg,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (c *Connector) SetBaseURL(u string) {
	c.baseURL = u
}

// Name returns the source identifier.
func (c *Connector) Name() string {
	return "weather"
}

// Available reports whether an API key and locations are configured.
func (c *Connector) Available() bool {
	return c.config.APIKey != "" && len(c.config.Locations) > 0
}

// Close marks the connector closed.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

type owmResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Fetch reads current conditions for every location. A location that
// cannot be read is logged and skipped; all locations failing is a
// transient source error.
func (c *Connector) Fetch(ctx context.Context) (domain.SourceResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.SourceResult{}, domain.ErrConnectorClosed
	}
	c.mu.Unlock()

	now := time.Now()
	items := make([]domain.RawItem, 0, len(c.config.Locations))
	var failed int
	for _, loc := range c.config.Locations {
		cond, err := c.current(ctx, loc)
		if err != nil {
			logger.Warn("weather for %s: %v", loc, err)
			failed++
			continue
		}

		var desc string
		if len(cond.Weather) > 0 {
			desc = cond.Weather[0].Description
		}
		items = append(items, domain.RawItem{
			SourceID:    "weather",
			IdentityKey: loc,
			Kind:        domain.KindWeather,
			Title:       fmt.Sprintf("%s: %.0f°C, %s", cond.Name, cond.Main.Temp, desc),
			Timestamp:   now,
			Location:    cond.Name,
			Note: fmt.Sprintf("feels like %.0f°C, humidity %.0f%%, wind %.1f m/s",
				cond.Main.FeelsLike, cond.Main.Humidity, cond.Wind.Speed),
		})
	}
	if failed == len(c.config.Locations) {
		return domain.SourceResult{}, fmt.Errorf("%w: no location readable", domain.ErrConnectorTransient)
	}

	return domain.SourceResult{
		SourceID: c.Name(),
		Status:   domain.StatusOK,
		Items:    items,
	}, nil
}

func (c *Connector) current(ctx context.Context, location string) (*owmResponse, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("units", "metric")
	params.Set("appid", c.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/weather?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnectorTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: openweathermap returned %d", domain.ErrConnectorTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openweathermap returned %d", resp.StatusCode)
	}

	var cond owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&cond); err != nil {
		return nil, fmt.Errorf("decode conditions: %w", err)
	}
	return &cond, nil
}
