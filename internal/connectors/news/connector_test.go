package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
)

func rssFeed(items int) string {
	body := `<?xml version="1.0"?><rss version="2.0"><channel><title>Test</title>`
	for i := 0; i < items; i++ {
		body += fmt.Sprintf(`<item>
			<title>Headline %d</title>
			<link>https://news.example/%d</link>
			<description>&lt;p&gt;Summary &lt;b&gt;%d&lt;/b&gt;&lt;/p&gt;</description>
			<pubDate>Fri, 28 Aug 2026 06:0%d:00 GMT</pubDate>
		</item>`, i, i, i, i)
	}
	return body + `</channel></rss>`
}

func TestFetchCapsPerCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFeed(5)))
	}))
	defer server.Close()

	c := New(Config{
		Feeds:          map[string][]string{"science": {server.URL}},
		MaxPerCategory: 2,
	})

	result, err := c.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOK, result.Status)
	require.Len(t, result.Items, 2)
	item := result.Items[0]
	assert.Equal(t, domain.KindArticle, item.Kind)
	assert.Equal(t, "Headline 0", item.Title)
	assert.Equal(t, "science", item.PrimaryCategory)
	assert.Equal(t, "Summary 0", item.Abstract)
	assert.Equal(t, "science/https://news.example/0", item.IdentityKey)
	assert.Equal(t, float64(2), result.Metrics["news.headlines"])
}

func TestFetchPartialFeedFailure(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(rssFeed(1)))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	c := New(Config{
		Feeds:          map[string][]string{"science": {bad.URL, good.URL}},
		MaxPerCategory: 5,
	})

	result, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
}

func TestFetchAllFeedsFailing(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	c := New(Config{
		Feeds:          map[string][]string{"science": {bad.URL}},
		MaxPerCategory: 5,
	})

	_, err := c.Fetch(context.Background())
	assert.ErrorIs(t, err, domain.ErrConnectorTransient)
}

func TestAvailability(t *testing.T) {
	assert.False(t, New(Config{}).Available())
	assert.True(t, New(Config{Feeds: map[string][]string{"a": {"u"}}}).Available())
}
