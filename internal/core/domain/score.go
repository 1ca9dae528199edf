package domain

// Bucket is the priority class an actionable item sorts into.
type Bucket string

const (
	// BucketUrgent holds items scoring 5 or more.
	BucketUrgent Bucket = "urgent"

	// BucketToday holds items scoring 3 or 4.
	BucketToday Bucket = "today"

	// BucketThisWeek holds items scoring 1 or 2.
	BucketThisWeek Bucket = "this_week"
)

// Buckets lists the priority classes in display order.
var Buckets = []Bucket{BucketUrgent, BucketToday, BucketThisWeek}

// BucketFor maps a total score to its bucket. Items scoring zero are
// excluded from all buckets and get the empty bucket.
func BucketFor(score int) Bucket {
	switch {
	case score >= 5:
		return BucketUrgent
	case score >= 3:
		return BucketToday
	case score >= 1:
		return BucketThisWeek
	default:
		return ""
	}
}

// Scoring factor names. Connectors declare these as signals on raw
// items; the scorer resolves them against a weight table.
const (
	FactorMeetingImminent    = "meeting_imminent"
	FactorOverdue            = "overdue"
	FactorDirectMention      = "direct_mention"
	FactorBlockingReview     = "blocking_review"
	FactorHighPriorityTicket = "high_priority_ticket"
	FactorSameDayEvent       = "same_day_event"
	FactorNeedsResponse      = "needs_response"
	FactorInCurrentCycle     = "in_current_cycle"
	FactorNotification       = "notification"
	FactorVIPSender          = "vip_sender"
)

// WeightTable maps factor names to the points they contribute. Factors
// are additive, not exclusive.
type WeightTable map[string]int

// DefaultWeights is the fixed source-declared weight table.
func DefaultWeights() WeightTable {
	return WeightTable{
		FactorMeetingImminent:    5,
		FactorOverdue:            5,
		FactorDirectMention:      4,
		FactorBlockingReview:     4,
		FactorVIPSender:          4,
		FactorHighPriorityTicket: 3,
		FactorSameDayEvent:       3,
		FactorNeedsResponse:      2,
		FactorInCurrentCycle:     2,
		FactorNotification:       1,
	}
}

// Factor class ranks used for in-bucket tie-breaking: calendar urgency
// outranks ticket factors, which outrank messaging, which outrank
// plain notifications. Lower rank wins ties.
const (
	classCalendar     = 0
	classTicket       = 1
	classMessaging    = 2
	classNotification = 3
)

var factorClasses = map[string]int{
	FactorMeetingImminent:    classCalendar,
	FactorSameDayEvent:       classCalendar,
	FactorOverdue:            classTicket,
	FactorBlockingReview:     classTicket,
	FactorHighPriorityTicket: classTicket,
	FactorInCurrentCycle:     classTicket,
	FactorDirectMention:      classMessaging,
	FactorNeedsResponse:      classMessaging,
	FactorVIPSender:          classMessaging,
	FactorNotification:       classNotification,
}

// FactorClass returns the tie-break rank for a factor name. Unknown
// factors rank last.
func FactorClass(name string) int {
	if c, ok := factorClasses[name]; ok {
		return c
	}
	return classNotification + 1
}

// Factor is one applied scoring factor with its contributed points.
type Factor struct {
	Name   string
	Points int
}

// ScoredItem is a canonical item with its accrued factors, total score
// and priority bucket.
type ScoredItem struct {
	Item    CanonicalItem
	Factors []Factor
	Total   int
	Bucket  Bucket
}

// BestFactorClass returns the lowest (strongest) factor class rank
// among the item's applied factors.
func (s *ScoredItem) BestFactorClass() int {
	best := classNotification + 2
	for _, f := range s.Factors {
		if c := FactorClass(f.Name); c < best {
			best = c
		}
	}
	return best
}
