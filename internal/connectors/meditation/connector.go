// Package meditation fetches the daily reflection from a single feed.
package meditation

import (
	"context"
	"sync"

	"github.com/custodia-labs/briefing-cli/internal/connectors/feed"
	"github.com/custodia-labs/briefing-cli/internal/core/domain"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Config configures the meditation connector.
type Config struct {
	// FeedURL points at the daily-reflection feed.
	FeedURL string
}

// Connector fetches the latest entry of a reflection feed.
type Connector struct {
	config Config

	mu     sync.Mutex
	closed bool
}

// New creates a meditation connector.
func New(cfg Config) *Connector {
	return &Connector{config: cfg}
}

// Name returns the source identifier.
func (c *Connector) Name() string {
	return "meditation"
}

// Available reports whether a feed is configured.
func (c *Connector) Available() bool {
	return c.config.FeedURL != ""
}

// Close marks the connector closed.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Fetch returns the newest feed entry as a single quote item.
func (c *Connector) Fetch(ctx context.Context) (domain.SourceResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.SourceResult{}, domain.ErrConnectorClosed
	}
	c.mu.Unlock()

	parsed, err := feed.Parse(ctx, c.config.FeedURL)
	if err != nil {
		return domain.SourceResult{}, err
	}

	result := domain.SourceResult{
		SourceID: c.Name(),
		Status:   domain.StatusOK,
	}
	if len(parsed.Items) > 0 {
		entry := parsed.Items[0]
		result.Items = []domain.RawItem{{
			SourceID:    c.Name(),
			IdentityKey: entry.Link,
			Kind:        domain.KindQuote,
			Title:       entry.Title,
			Timestamp:   feed.ItemTimestamp(entry),
			Note:        feed.StripHTML(entry.Description),
			URL:         entry.Link,
		}}
	}
	return result, nil
}
