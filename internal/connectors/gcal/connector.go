// Package gcal fetches upcoming events from the Google Calendar API.
// The same occurrence appearing on two calendars is left for the
// canonicalizer to merge on (title, start time).
package gcal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
	"github.com/custodia-labs/briefing-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// imminentWindow is how close a meeting must be to count as needing
// preparation now.
const imminentWindow = 4 * time.Hour

// Config configures the calendar connector.
type Config struct {
	// CalendarIDs to query; "primary" when empty.
	CalendarIDs []string

	// LookaheadDays bounds the event window.
	LookaheadDays int
}

// Connector fetches upcoming calendar events.
type Connector struct {
	config      Config
	tokenSource oauth2.TokenSource

	mu     sync.Mutex
	closed bool
}

// New creates a calendar connector.
func New(cfg Config, ts oauth2.TokenSource) *Connector {
	if len(cfg.CalendarIDs) == 0 {
		cfg.CalendarIDs = []string{"primary"}
	}
	return &Connector{config: cfg, tokenSource: ts}
}

// Name returns the source identifier.
func (c *Connector) Name() string {
	return "calendar"
}

// Available reports whether OAuth credentials are configured.
func (c *Connector) Available() bool {
	return c.tokenSource != nil
}

// Close marks the connector closed.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Fetch lists events from now until the lookahead horizon on every
// configured calendar. A calendar that cannot be read is logged and
// skipped; the remaining calendars still contribute.
func (c *Connector) Fetch(ctx context.Context) (domain.SourceResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.SourceResult{}, domain.ErrConnectorClosed
	}
	c.mu.Unlock()

	svc, err := calendarapi.NewService(ctx, option.WithTokenSource(c.tokenSource))
	if err != nil {
		return domain.SourceResult{}, fmt.Errorf("create calendar service: %w", err)
	}

	now := time.Now()
	horizon := now.AddDate(0, 0, c.config.LookaheadDays)

	var items []domain.RawItem
	var failed int
	for _, calID := range c.config.CalendarIDs {
		events, err := svc.Events.List(calID).
			TimeMin(now.Format(time.RFC3339)).
			TimeMax(horizon.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx).Do()
		if err != nil {
			logger.Warn("calendar %s unreadable: %v", calID, err)
			failed++
			continue
		}
		for _, evt := range events.Items {
			if item, ok := EventToItem(evt, now); ok {
				items = append(items, item)
			}
		}
	}
	if failed == len(c.config.CalendarIDs) {
		return domain.SourceResult{}, fmt.Errorf("%w: no calendar readable", domain.ErrConnectorTransient)
	}

	return domain.SourceResult{
		SourceID: c.Name(),
		Status:   domain.StatusOK,
		Items:    items,
		Metrics:  map[string]float64{"calendar.upcoming": float64(len(items))},
	}, nil
}

// EventToItem converts a calendar event to a raw item with its
// urgency signals. Cancelled and undated events are dropped.
func EventToItem(evt *calendarapi.Event, now time.Time) (domain.RawItem, bool) {
	if evt.Status == "cancelled" {
		return domain.RawItem{}, false
	}

	start, ok := eventStart(evt)
	if !ok {
		return domain.RawItem{}, false
	}

	var signals []string
	if sameDay(start, now) {
		signals = append(signals, domain.FactorSameDayEvent)
	}
	if start.After(now) && start.Sub(now) <= imminentWindow && len(evt.Attendees) > 0 {
		signals = append(signals, domain.FactorMeetingImminent)
	}

	return domain.RawItem{
		SourceID:    "calendar",
		IdentityKey: evt.Id,
		Kind:        domain.KindEvent,
		Title:       evt.Summary,
		Timestamp:   start,
		Location:    evt.Location,
		Note:        evt.Description,
		URL:         evt.HtmlLink,
		Signals:     signals,
	}, true
}

func eventStart(evt *calendarapi.Event) (time.Time, bool) {
	if evt.Start == nil {
		return time.Time{}, false
	}
	if evt.Start.DateTime != "" {
		t, err := time.Parse(time.RFC3339, evt.Start.DateTime)
		return t, err == nil
	}
	if evt.Start.Date != "" {
		t, err := time.Parse(domain.DateFormat, evt.Start.Date)
		return t, err == nil
	}
	return time.Time{}, false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
