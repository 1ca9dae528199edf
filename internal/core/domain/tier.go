package domain

import "fmt"

// Tier is the discrete relevance rank assigned to a classified item.
// Tier1 is the highest relevance. The zero value is not a valid tier;
// items matching no signal are absent from classification output
// rather than carrying a fourth tier.
type Tier int

const (
	// Tier1 marks items cross-referenced against tracked prior work.
	Tier1 Tier = 1

	// Tier2 marks items matching the primary research keyword set.
	Tier2 Tier = 2

	// Tier3 marks items matching the secondary, broader keyword set.
	Tier3 Tier = 3
)

// Valid reports whether t is one of the three defined tiers.
func (t Tier) Valid() bool {
	return t >= Tier1 && t <= Tier3
}

// String returns the fixed serialization form ("tier1".."tier3").
func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return fmt.Sprintf("tier%d", int(t))
}

// MarshalText implements encoding.TextMarshaler with the fixed mapping.
// Tiers always serialize as strings so numeric and string keys can
// never diverge across a round trip.
func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: tier %d", ErrInvalidInput, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(text []byte) error {
	switch string(text) {
	case "tier1":
		*t = Tier1
	case "tier2":
		*t = Tier2
	case "tier3":
		*t = Tier3
	default:
		return fmt.Errorf("%w: unknown tier %q", ErrInvalidInput, string(text))
	}
	return nil
}

// TierResult is the classification outcome for one canonical item.
type TierResult struct {
	// Tier is the numerically lowest qualifying tier.
	Tier Tier

	// Rationale lists the matched signals: citing identifiers for
	// Tier1, matched keywords for Tier2/Tier3.
	Rationale []string
}
