// Package ads talks to the NASA ADS API. It implements the citation
// index used for Tier1 classification and fetches the author metrics
// that feed the delta tracker.
package ads

import (
	"bytes"
	"context"
	"encoding/json"
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
	"github.com/custodia-labs/briefing-cli/internal/logger"
)

const defaultBaseURL = "https://api.adsabs.harvard.edu/v1"

// userAgent identifies the client to the ADS API.
const userAgent = "briefing-cli/1.0"

// Ensure Client implements the citation index port.
var _ driven.CitationIndex = (*Client)(nil)

// Client is an authenticated NASA ADS API client. Safe for concurrent
// use; the recent-citers set is fetched once per run and cached.
type Client struct {
	baseURL string
	token   string
	author  string
	http    *http.Client
	limiter *rate.Limiter

	mu        sync.Mutex
	citers    map[string]struct{}
	citersErr error
	fetched   bool
}

// NewClient creates an ADS client for the given author. The token
// authenticates every request.
func NewClient(token, author string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		token:   token,
		author:  author,
		http:    &http.Client{Timeout: 30 * time.Second},
		// ADS allows 5000 requests/day; stay conservative.
		limiter: rate.NewLimiter(rate.Limit(2), 5),
	}
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// Lookup reports which recently published works citing the tracked
// author match the given identifier. The citer set covers a trailing
// window of windowDays days, fetched once and cached for the run.
// An unreachable service yields domain.ErrCitationUnavailable.
func (c *Client) Lookup(ctx context.Context, identifier string, windowDays int) ([]string, error) {
	citers, err := c.recentCiters(ctx, windowDays)
	if err != nil {
		return nil, err
	}

	id := strings.ToLower(strings.TrimSpace(identifier))
	if _, ok := citers[id]; ok {
		return []string{id}, nil
	}
	return nil, nil
}

// recentCiters fetches the set of identifiers (bibcodes and arXiv IDs)
// of works from the trailing window that cite the tracked author. The
// window absorbs citation-indexing lag: new papers reach the index
// days after publication.
func (c *Client) recentCiters(ctx context.Context, windowDays int) (map[string]struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fetched {
		return c.citers, c.citersErr
	}
	c.fetched = true

	cutoff := time.Now().AddDate(0, 0, -windowDays).Format("2006-01")
	query := fmt.Sprintf(`citations(author:"%s") AND pubdate:[%s TO *]`, c.author, cutoff)

	params := url.Values{}
	params.Set("q", query)
	params.Set("fl", "bibcode,identifier")
	params.Set("rows", "200")

	var resp struct {
		Response struct {
			Docs []struct {
				Bibcode    string   `json:"bibcode"`
				Identifier []string `json:"identifier"`
			} `json:"docs"`
		} `json:"response"`
	}
	if err := c.getJSON(ctx, "/search/query?"+params.Encode(), &resp); err != nil {
		c.citersErr = fmt.Errorf("%w: %v", domain.ErrCitationUnavailable, err)
		return nil, c.citersErr
	}

	citers := make(map[string]struct{})
	for _, doc := range resp.Response.Docs {
		citers[strings.ToLower(doc.Bibcode)] = struct{}{}
		for _, ident := range doc.Identifier {
			// ADS identifiers include entries like "arXiv:2602.12345".
			if strings.HasPrefix(ident, "arXiv:") {
				citers[strings.ToLower(strings.TrimPrefix(ident, "arXiv:"))] = struct{}{}
			}
		}
	}

	logger.Debug("ADS: %d recent citing works in %d-day window", len(citers), windowDays)
	c.citers = citers
	return citers, nil
}

// AuthorMetrics fetches the author's aggregate metrics: citation
// counts, reads and indicator values, flattened for the delta tracker.
func (c *Client) AuthorMetrics(ctx context.Context) (map[string]float64, error) {
	bibcodes, err := c.authorBibcodes(ctx)
	if err != nil {
		return nil, err
	}
	if len(bibcodes) == 0 {
		return nil, fmt.Errorf("no papers found for author %q", c.author)
	}

	body, err := json.Marshal(map[string]any{
		"bibcodes": bibcodes,
		"types":    []string{"basic", "citations", "indicators"},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding metrics request: %w", err)
	}

	var raw struct {
		Indicators    map[string]float64 `json:"indicators"`
		CitationStats map[string]float64 `json:"citation stats"`
		BasicStats    map[string]float64 `json:"basic stats"`
	}
	if err := c.postJSON(ctx, "/metrics", body, &raw); err != nil {
		return nil, err
	}

	metrics := make(map[string]float64)
	for _, key := range []string{"h", "g", "m", "i10", "i100", "tori", "riq", "read10"} {
		if v, ok := raw.Indicators[key]; ok {
			metrics["indicators."+key] = v
		}
	}
	if v, ok := raw.CitationStats["total number of citations"]; ok {
		metrics["citations"] = v
	}
	if v, ok := raw.CitationStats["number of citing papers"]; ok {
		metrics["citing_papers"] = v
	}
	if v, ok := raw.BasicStats["number of papers"]; ok {
		metrics["papers"] = v
	}
	if v, ok := raw.BasicStats["total number of reads"]; ok {
		metrics["reads"] = v
	}
	return metrics, nil
}

// authorBibcodes lists all bibcodes for the tracked author.
func (c *Client) authorBibcodes(ctx context.Context) ([]string, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf(`author:"%s"`, c.author))
	params.Set("fl", "bibcode")
	params.Set("fq", "database:astronomy")
	params.Set("rows", "2000")

	var resp struct {
		Response struct {
			Docs []struct {
				Bibcode string `json:"bibcode"`
			} `json:"docs"`
		} `json:"response"`
	}
	if err := c.getJSON(ctx, "/search/query?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	bibcodes := make([]string, 0, len(resp.Response.Docs))
	for _, doc := range resp.Response.Docs {
		bibcodes = append(bibcodes, doc.Bibcode)
	}
	return bibcodes, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body []byte, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConnectorTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: ADS returned %d", domain.ErrConnectorTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ADS returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
