package domain

import "strings"

// Tier is a user's subscription level. It is set by billing and consumed read-only here.
type Tier string

const (
	TierFree      Tier = "free"
	TierEssential Tier = "essential"
	TierPremium   Tier = "premium"
)

// AllTiers lists every tier, most restrictive first.
var AllTiers = []Tier{TierFree, TierEssential, TierPremium}

// ParseTier returns the tier named by s (case and surrounding space ignored).
func ParseTier(s string) (Tier, bool) {
	switch t := Tier(strings.ToLower(strings.TrimSpace(s))); t {
	case TierFree, TierEssential, TierPremium:
		return t, true
	default:
		return "", false
	}
}

// NormalizeTier resolves s to a known tier. Unknown values fail closed to the free tier.
func NormalizeTier(s string) Tier {
	if t, ok := ParseTier(s); ok {
		return t
	}
	return TierFree
}

// Assistant identifies one of the two chat personas.
type Assistant string

const (
	// AssistantColy is the personal-life assistant.
	AssistantColy Assistant = "coly"
	// AssistantMax is the business assistant.
	AssistantMax Assistant = "max"
)

// AllAssistants lists every assistant.
var AllAssistants = []Assistant{AssistantColy, AssistantMax}

// ParseAssistant returns the assistant named by s (case and surrounding space ignored).
func ParseAssistant(s string) (Assistant, bool) {
	switch a := Assistant(strings.ToLower(strings.TrimSpace(s))); a {
	case AssistantColy, AssistantMax:
		return a, true
	default:
		return "", false
	}
}

// DisplayName is the user-facing name of the assistant.
func (a Assistant) DisplayName() string {
	switch a {
	case AssistantMax:
		return "Max"
	default:
		return "Coly"
	}
}

// Subscription is a row of the user_subscriptions table.
type Subscription struct {
	UserID    string `json:"user_id"`
	Tier      Tier   `json:"tier"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Subscription row statuses.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusReplaced = "replaced"
)
