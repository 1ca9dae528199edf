// Package github fetches the actionable GitHub workload: unread
// notifications, pull requests waiting on a review, and assigned
// issues.
package github

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
	"github.com/custodia-labs/briefing-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Labels that mark an issue as high priority.
var priorityLabels = []string{"p0", "p1", "priority", "urgent", "critical"}

// Config configures the github connector.
type Config struct {
	// Token is a personal access token.
	Token string
}

// Connector fetches notifications, review requests and assigned
// issues from GitHub.
type Connector struct {
	client *gh.Client

	mu     sync.Mutex
	closed bool
}

// New creates a github connector. An empty token makes the connector
// report itself unavailable.
func New(cfg Config) *Connector {
	c := &Connector{}
	if cfg.Token != "" {
		c.client = gh.NewClient(nil).WithAuthToken(cfg.Token)
	}
	return c
}

// Name returns the source identifier.
func (c *Connector) Name() string {
	return "github"
}

// Available reports whether a token is configured.
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

// Fetch gathers the three work queues. Each queue failing alone is
// logged and skipped; all three failing is a transient source error.
func (c *Connector) Fetch(ctx context.Context) (domain.SourceResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.SourceResult{}, domain.ErrConnectorClosed
	}
	c.mu.Unlock()

	var items []domain.RawItem
	var failed int
	metrics := map[string]float64{}

	notifications, err := c.notifications(ctx)
	if err != nil {
		logger.Warn("github notifications: %v", err)
		failed++
	} else {
		items = append(items, notifications...)
		metrics["github.notifications"] = float64(len(notifications))
	}

	reviews, err := c.reviewRequests(ctx)
	if err != nil {
		logger.Warn("github review requests: %v", err)
		failed++
	} else {
		items = append(items, reviews...)
		metrics["github.review_requests"] = float64(len(reviews))
	}

	assigned, err := c.assignedIssues(ctx)
	if err != nil {
		logger.Warn("github assigned issues: %v", err)
		failed++
	} else {
		items = append(items, assigned...)
		metrics["github.assigned_issues"] = float64(len(assigned))
	}

	if failed == 3 {
		return domain.SourceResult{}, fmt.Errorf("%w: all github queues failed", domain.ErrConnectorTransient)
	}

	return domain.SourceResult{
		SourceID: c.Name(),
		Status:   domain.StatusOK,
		Items:    items,
		Metrics:  metrics,
	}, nil
}

func (c *Connector) notifications(ctx context.Context) ([]domain.RawItem, error) {
	list, _, err := c.client.Activity.ListNotifications(ctx, &gh.NotificationListOptions{
		ListOptions: gh.ListOptions{PerPage: 50},
	})
	if err != nil {
		return nil, err
	}

	items := make([]domain.RawItem, 0, len(list))
	for _, n := range list {
		var updated time.Time
		if n.UpdatedAt != nil {
			updated = n.UpdatedAt.Time
		}
		signals := []string{domain.FactorNotification}
		if n.GetReason() == "mention" {
			signals = append(signals, domain.FactorDirectMention)
		}
		items = append(items, domain.RawItem{
			SourceID:    "github",
			IdentityKey: "notification/" + n.GetID(),
			Kind:        domain.KindNotification,
			Title:       n.GetSubject().GetTitle(),
			Timestamp:   updated,
			Note:        fmt.Sprintf("%s in %s", n.GetReason(), n.GetRepository().GetFullName()),
			Signals:     signals,
		})
	}
	return items, nil
}

func (c *Connector) reviewRequests(ctx context.Context) ([]domain.RawItem, error) {
	result, _, err := c.client.Search.Issues(ctx, "is:open is:pr review-requested:@me", &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: 50},
	})
	if err != nil {
		return nil, err
	}

	items := make([]domain.RawItem, 0, len(result.Issues))
	for _, issue := range result.Issues {
		items = append(items, domain.RawItem{
			SourceID:    "github",
			IdentityKey: fmt.Sprintf("pull/%d", issue.GetID()),
			Kind:        domain.KindPullRequest,
			Title:       issue.GetTitle(),
			Timestamp:   issue.GetUpdatedAt().Time,
			URL:         issue.GetHTMLURL(),
			Signals:     []string{domain.FactorBlockingReview},
		})
	}
	return items, nil
}

func (c *Connector) assignedIssues(ctx context.Context) ([]domain.RawItem, error) {
	result, _, err := c.client.Search.Issues(ctx, "is:open is:issue assignee:@me", &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: 50},
	})
	if err != nil {
		return nil, err
	}

	items := make([]domain.RawItem, 0, len(result.Issues))
	for _, issue := range result.Issues {
		signal := domain.FactorInCurrentCycle
		if hasPriorityLabel(issue.Labels) {
			signal = domain.FactorHighPriorityTicket
		}
		items = append(items, domain.RawItem{
			SourceID:    "github",
			IdentityKey: fmt.Sprintf("issue/%d", issue.GetID()),
			Kind:        domain.KindIssue,
			Title:       issue.GetTitle(),
			Timestamp:   issue.GetUpdatedAt().Time,
			URL:         issue.GetHTMLURL(),
			Signals:     []string{signal},
		})
	}
	return items, nil
}

func hasPriorityLabel(labels []*gh.Label) bool {
	for _, label := range labels {
		name := strings.ToLower(label.GetName())
		for _, p := range priorityLabels {
			if strings.Contains(name, p) {
				return true
			}
		}
	}
	return false
}
