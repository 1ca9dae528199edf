// Package feed provides RSS/Atom parsing shared by the feed-backed
// connectors (news, meditation).
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
)

// Parse fetches and parses one feed URL.
func Parse(ctx context.Context, url string) (*gofeed.Feed, error) {
	parsed, err := gofeed.NewParser().ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: parse feed %s: %v", domain.ErrConnectorTransient, url, err)
	}
	return parsed, nil
}

// StripHTML removes markup from a feed summary and collapses
// whitespace. Malformed fragments degrade to the raw text.
func StripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapse(s)
	}
	return collapse(doc.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ItemTimestamp picks the best available time for a feed entry.
func ItemTimestamp(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}
