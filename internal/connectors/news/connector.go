// Package news fetches headlines from configured RSS/Atom feeds,
// capped per category.
package news

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/briefing-cli/internal/connectors/feed"
	"github.com/custodia-labs/briefing-cli/internal/core/domain"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
	"github.com/custodia-labs/briefing-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Config configures the news connector.
type Config struct {
	// Feeds maps a category name to its feed URLs.
	Feeds map[string][]string

	// MaxPerCategory caps headlines kept per category.
	MaxPerCategory int
}

// Connector fetches news headlines.
type Connector struct {
	config Config

	mu     sync.Mutex
	closed bool
}

// New creates a news connector.
func New(cfg Config) *Connector {
	return &Connector{config: cfg}
}

// Name returns the source identifier.
func (c *Connector) Name() string {
	return "news"
}

// Available reports whether any feeds are configured.
func (c *Connector) Available() bool {
	return len(c.config.Feeds) > 0
}

// Close marks the connector closed.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Fetch reads every configured feed, categories in sorted order so the
// output is stable. A feed that cannot be read is logged and skipped;
// all feeds failing is a transient source error.
func (c *Connector) Fetch(ctx context.Context) (domain.SourceResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.SourceResult{}, domain.ErrConnectorClosed
	}
	c.mu.Unlock()

	categories := make([]string, 0, len(c.config.Feeds))
	total := 0
	for category, urls := range c.config.Feeds {
		categories = append(categories, category)
		total += len(urls)
	}
	sort.Strings(categories)

	var items []domain.RawItem
	var failed int
	for _, category := range categories {
		kept := 0
		for _, feedURL := range c.config.Feeds[category] {
			if kept == c.config.MaxPerCategory {
				break
			}
			parsed, err := feed.Parse(ctx, feedURL)
			if err != nil {
				logger.Warn("news feed %s (%s): %v", category, feedURL, err)
				failed++
				continue
			}
			for _, entry := range parsed.Items {
				if kept == c.config.MaxPerCategory {
					break
				}
				items = append(items, domain.RawItem{
					SourceID:        "news",
					IdentityKey:     category + "/" + entry.Link,
					Kind:            domain.KindArticle,
					Title:           entry.Title,
					Timestamp:       feed.ItemTimestamp(entry),
					Abstract:        feed.StripHTML(entry.Description),
					PrimaryCategory: category,
					URL:             entry.Link,
				})
				kept++
			}
		}
	}
	if total > 0 && failed == total {
		return domain.SourceResult{}, fmt.Errorf("%w: no feed readable", domain.ErrConnectorTransient)
	}

	return domain.SourceResult{
		SourceID: c.Name(),
		Status:   domain.StatusOK,
		Items:    items,
		Metrics:  map[string]float64{"news.headlines": float64(len(items))},
	}, nil
}
