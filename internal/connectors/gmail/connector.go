// Package gmail fetches unread inbox messages via the Gmail API and
// annotates them with response-triage signals.
package gmail

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
	"github.com/custodia-labs/briefing-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// overdueAfter marks unread mail older than this as overdue for a
// reply.
const overdueAfter = 7 * 24 * time.Hour

// Config configures the gmail connector.
type Config struct {
	// VIPSenders are lowercase substrings matched against the sender.
	VIPSenders []string

	// MaxUnread caps how many unread messages are fetched.
	MaxUnread int
}

// Connector fetches unread mail from Gmail.
type Connector struct {
	config      Config
	tokenSource oauth2.TokenSource

	mu     sync.Mutex
	closed bool
}

// New creates a gmail connector. A nil token source makes the
// connector report itself unavailable rather than fail.
func New(cfg Config, ts oauth2.TokenSource) *Connector {
	lowered := make([]string, 0, len(cfg.VIPSenders))
	for _, s := range cfg.VIPSenders {
		lowered = append(lowered, strings.ToLower(s))
	}
	cfg.VIPSenders = lowered
	return &Connector{config: cfg, tokenSource: ts}
}

// Name returns the source identifier.
func (c *Connector) Name() string {
	return "gmail"
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

// Fetch lists unread inbox messages and reads their headers. An empty
// inbox is an ok result with an empty payload.
func (c *Connector) Fetch(ctx context.Context) (domain.SourceResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.SourceResult{}, domain.ErrConnectorClosed
	}
	c.mu.Unlock()

	svc, err := gmailapi.NewService(ctx, option.WithTokenSource(c.tokenSource))
	if err != nil {
		return domain.SourceResult{}, fmt.Errorf("create gmail service: %w", err)
	}

	list, err := svc.Users.Messages.List("me").
		Q("is:unread in:inbox").
		MaxResults(int64(c.config.MaxUnread)).
		Context(ctx).Do()
	if err != nil {
		return domain.SourceResult{}, fmt.Errorf("%w: list messages: %v", domain.ErrConnectorTransient, err)
	}

	now := time.Now()
	items := make([]domain.RawItem, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := svc.Users.Messages.Get("me", ref.Id).
			Format("metadata").
			MetadataHeaders("From", "Subject", "Date").
			Context(ctx).Do()
		if err != nil {
			// One unreadable message never sinks the inbox.
			logger.Debug("gmail: skipping message %s: %v", ref.Id, err)
			continue
		}
		items = append(items, c.toItem(msg, now))
	}

	return domain.SourceResult{
		SourceID: c.Name(),
		Status:   domain.StatusOK,
		Items:    items,
		Metrics:  map[string]float64{"mail.unread": float64(len(items))},
	}, nil
}

func (c *Connector) toItem(msg *gmailapi.Message, now time.Time) domain.RawItem {
	var sender, subject string
	var received time.Time
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "From":
				sender = h.Value
			case "Subject":
				subject = h.Value
			case "Date":
				if t, err := mail.ParseDate(h.Value); err == nil {
					received = t
				}
			}
		}
	}
	if received.IsZero() && msg.InternalDate > 0 {
		received = time.UnixMilli(msg.InternalDate)
	}

	return domain.RawItem{
		SourceID:    "gmail",
		IdentityKey: msg.Id,
		Kind:        domain.KindMail,
		Title:       subject,
		Timestamp:   received,
		Sender:      sender,
		Note:        msg.Snippet,
		Signals:     c.signals(sender, subject, msg.Snippet, received, now),
	}
}

// signals derives the scoring factors for a message.
func (c *Connector) signals(sender, subject, snippet string, received, now time.Time) []string {
	var signals []string
	if NeedsResponse(subject, snippet) {
		signals = append(signals, domain.FactorNeedsResponse)
	}
	if c.isVIP(sender) {
		signals = append(signals, domain.FactorVIPSender)
	}
	if !received.IsZero() && now.Sub(received) > overdueAfter {
		signals = append(signals, domain.FactorOverdue)
	}
	return signals
}

func (c *Connector) isVIP(sender string) bool {
	s := strings.ToLower(sender)
	for _, vip := range c.config.VIPSenders {
		if vip != "" && strings.Contains(s, vip) {
			return true
		}
	}
	return false
}

// Action words that suggest a response is needed.
var actionIndicators = []string{
	"?", "please", "could you", "can you", "would you", "when will",
	"need", "urgent", "asap", "deadline", "action required", "respond",
	"review", "approve", "confirm", "sign off", "feedback",
}

// NeedsResponse reports whether a message likely needs a reply, by
// action-word heuristic over subject and snippet.
func NeedsResponse(subject, snippet string) bool {
	text := strings.ToLower(subject + " " + snippet)
	for _, indicator := range actionIndicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	return false
}
