// Package arxiv fetches newly submitted papers from the arXiv Atom
// API across the configured categories.
package arxiv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
)

const apiURL = "https://export.arxiv.org/api/query"

// maxAuthors caps the authors carried per paper; the full count is
// kept separately.
const maxAuthors = 5

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Config configures the arXiv connector.
type Config struct {
	// Categories to search (e.g. "astro-ph.GA").
	Categories []string

	// LookbackDays bounds the submission-date window.
	LookbackDays int

	// MaxResults caps one query.
	MaxResults int
}

// Connector fetches new papers from arXiv.
type Connector struct {
	config  Config
	http    *http.Client
	limiter *rate.Limiter

	mu     sync.Mutex
	closed bool
}

// New creates an arXiv connector.
func New(cfg Config) *Connector {
	return &Connector{
		config: cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		// arXiv asks for no more than one request per three seconds.
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
	}
}

// Name returns the source identifier.
func (c *Connector) Name() string {
	return "arxiv"
}

// Available always reports true: the arXiv API needs no credentials.
func (c *Connector) Available() bool {
	return true
}

// Close marks the connector closed.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Fetch queries recent submissions in the configured categories and
// returns them as paper items, deduplicated by canonical arXiv ID
// (cross-listed papers appear once per category in the feed).
func (c *Connector) Fetch(ctx context.Context) (domain.SourceResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.SourceResult{}, domain.ErrConnectorClosed
	}
	c.mu.Unlock()

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.SourceResult{}, err
	}

	to := time.Now()
	from := to.AddDate(0, 0, -c.config.LookbackDays)

	cats := make([]string, 0, len(c.config.Categories))
	for _, cat := range c.config.Categories {
		cats = append(cats, "cat:"+cat)
	}
	query := fmt.Sprintf("(%s) AND submittedDate:[%s0000 TO %s2359]",
		strings.Join(cats, " OR "),
		from.Format("20060102"), to.Format("20060102"))

	params := url.Values{}
	params.Set("search_query", query)
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")
	params.Set("max_results", fmt.Sprintf("%d", c.config.MaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return domain.SourceResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "briefing-cli/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.SourceResult{}, fmt.Errorf("%w: %v", domain.ErrConnectorTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return domain.SourceResult{}, fmt.Errorf("%w: arxiv returned %d", domain.ErrConnectorTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.SourceResult{}, fmt.Errorf("arxiv returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.SourceResult{}, fmt.Errorf("%w: read response: %v", domain.ErrConnectorTransient, err)
	}

	items, err := ParseAtom(body)
	if err != nil {
		return domain.SourceResult{}, err
	}

	return domain.SourceResult{
		SourceID: c.Name(),
		Status:   domain.StatusOK,
		Items:    items,
		Metrics:  map[string]float64{"arxiv.new_papers": float64(len(items))},
	}, nil
}
