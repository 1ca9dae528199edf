package arxiv

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
)

// Atom payload shapes for the arXiv API. Only the fields the briefing
// uses are mapped.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	PrimaryCategory struct {
		Term string `xml:"term,attr"`
	} `xml:"primary_category"`
}

// ParseAtom parses an arXiv Atom response into paper items. Entries
// repeated across categories collapse to one item by canonical ID;
// the canonicalizer would merge them anyway, but dropping them here
// keeps payload sizes honest.
func ParseAtom(data []byte) ([]domain.RawItem, error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("parse arxiv atom: %w", err)
	}

	seen := make(map[string]struct{}, len(feed.Entries))
	items := make([]domain.RawItem, 0, len(feed.Entries))

	for _, entry := range feed.Entries {
		id := canonicalID(entry.ID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		authors := make([]string, 0, maxAuthors)
		for i, a := range entry.Authors {
			if i == maxAuthors {
				break
			}
			authors = append(authors, a.Name)
		}

		published, _ := time.Parse(time.RFC3339, entry.Published)

		items = append(items, domain.RawItem{
			SourceID:        "arxiv",
			IdentityKey:     id,
			Kind:            domain.KindPaper,
			Title:           collapseWhitespace(entry.Title),
			Timestamp:       published,
			Abstract:        strings.TrimSpace(entry.Summary),
			Authors:         authors,
			AuthorCount:     len(entry.Authors),
			PrimaryCategory: entry.PrimaryCategory.Term,
			URL:             "https://arxiv.org/abs/" + id,
		})
	}
	return items, nil
}

// canonicalID extracts the arXiv ID from the entry URL and strips the
// version suffix, so cross-listed and revised entries share one ID.
func canonicalID(entryID string) string {
	idx := strings.LastIndex(entryID, "/abs/")
	if idx < 0 {
		return ""
	}
	id := entryID[idx+len("/abs/"):]
	if v := strings.LastIndex(id, "v"); v > 0 {
		if version := id[v+1:]; version != "" && isDigits(version) {
			id = id[:v]
		}
	}
	return id
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
