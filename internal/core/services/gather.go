package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
	"github.com/custodia-labs/briefing-cli/internal/logger"
)

// Gatherer runs all configured connectors concurrently, enforcing a
// per-source timeout and isolating per-source failure. No single
// source can prevent another from completing; total wall-clock time is
// bounded by the per-source timeout plus one retry, not by the sum of
// all sources.
type Gatherer struct {
	timeout time.Duration
}

// NewGatherer creates a gatherer with the given per-source timeout.
func NewGatherer(perSourceTimeout time.Duration) *Gatherer {
	return &Gatherer{timeout: perSourceTimeout}
}

// Run fetches from every connector in parallel and returns exactly one
// SourceResult per connector, keyed by source ID. A source that is
// unavailable is marked skipped; one that exceeds the timeout is
// marked timeout with an empty payload; one that fails transiently is
// retried exactly once before being marked errored.
func (g *Gatherer) Run(ctx context.Context, connectors []driven.Connector) map[string]domain.SourceResult {
	results := make(map[string]domain.SourceResult, len(connectors))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, c := range connectors {
		wg.Add(1)
		go func(c driven.Connector) {
			defer wg.Done()
			res := g.fetchOne(ctx, c)
			mu.Lock()
			results[c.Name()] = res
			mu.Unlock()
		}(c)
	}

	wg.Wait()
	return results
}

// fetchOne runs a single connector with timeout and one-shot retry.
// It always returns a valid result; connector panics are not recovered
// because connectors must not panic for expected conditions.
func (g *Gatherer) fetchOne(ctx context.Context, c driven.Connector) domain.SourceResult {
	name := c.Name()

	if !c.Available() {
		logger.Debug("Source %s skipped: not available", name)
		return domain.SourceResult{
			SourceID:  name,
			Status:    domain.StatusSkipped,
			Detail:    name + " connector is not available",
			FetchedAt: time.Now(),
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	res, err := c.Fetch(fetchCtx)
	if err != nil && errors.Is(err, domain.ErrConnectorTransient) && fetchCtx.Err() == nil {
		// Retry exactly once, immediately, within the same deadline.
		logger.Warn("Source %s transient failure, retrying: %v", name, err)
		res, err = c.Fetch(fetchCtx)
	}

	now := time.Now()
	switch {
	case err == nil:
		res.SourceID = name
		if res.Status == "" {
			res.Status = domain.StatusOK
		}
		if res.FetchedAt.IsZero() {
			res.FetchedAt = now
		}
		logger.Debug("Source %s: %s, %d items", name, res.Status, len(res.Items))
		return res

	case errors.Is(fetchCtx.Err(), context.DeadlineExceeded):
		logger.Warn("Source %s timed out after %s", name, g.timeout)
		return domain.SourceResult{
			SourceID:  name,
			Status:    domain.StatusTimeout,
			Detail:    "fetch exceeded " + g.timeout.String(),
			FetchedAt: now,
		}

	default:
		logger.Warn("Source %s failed: %v", name, err)
		return domain.SourceResult{
			SourceID:  name,
			Status:    domain.StatusError,
			Detail:    err.Error(),
			FetchedAt: now,
		}
	}
}
