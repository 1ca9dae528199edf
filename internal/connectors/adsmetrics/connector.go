// Package adsmetrics exposes the tracked author's ADS metrics as a
// metrics-only source, feeding the day-over-day delta tracker.
package adsmetrics

import (
	"context"
	"sync"

	"github.com/custodia-labs/briefing-cli/internal/adapters/driven/citations/ads"
	"github.com/custodia-labs/briefing-cli/internal/core/domain"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector fetches author metrics from ADS. It produces no items,
// only metrics.
type Connector struct {
	client *ads.Client

	mu     sync.Mutex
	closed bool
}

// New creates an ADS metrics connector. A nil client makes the
// connector report itself unavailable.
func New(client *ads.Client) *Connector {
	return &Connector{client: client}
}

// Name returns the source identifier.
func (c *Connector) Name() string {
	return "ads"
}

// Available reports whether an ADS client is configured.
func (c *Connector) Available() bool {
	return c.client != nil
}

// Close marks the connector closed.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Fetch returns the author's current metric values.
func (c *Connector) Fetch(ctx context.Context) (domain.SourceResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.SourceResult{}, domain.ErrConnectorClosed
	}
	c.mu.Unlock()

	metrics, err := c.client.AuthorMetrics(ctx)
	if err != nil {
		return domain.SourceResult{}, err
	}

	return domain.SourceResult{
		SourceID: c.Name(),
		Status:   domain.StatusOK,
		Metrics:  metrics,
	}, nil
}
