package quota

import (
	"fmt"

	"lifex-server/internal/domain"
)

// PolicyVersion identifies the built-in quota table.
const PolicyVersion = "2025-01"

// HourlyQuota is an assistant's per-clock-hour ceiling. 0 means no access.
type HourlyQuota struct {
	Hourly int `json:"hourly"`
}

// TotalQuota is a lifetime ceiling.
type TotalQuota struct {
	Total int `json:"total"`
}

// MonthlyQuota is a per-calendar-month ceiling.
type MonthlyQuota struct {
	Monthly int `json:"monthly"`
}

// TierPolicy holds every entitlement of one subscription tier.
type TierPolicy struct {
	Coly             HourlyQuota  `json:"coly"`
	Max              HourlyQuota  `json:"max"`
	Products         TotalQuota   `json:"products"`
	Trending         MonthlyQuota `json:"trending"`
	BusinessFeatures bool         `json:"business_features"`
}

// HourlyLimit returns the hourly limit of assistant a. Unknown assistants get 0.
func (p TierPolicy) HourlyLimit(a domain.Assistant) int {
	switch a {
	case domain.AssistantColy:
		return p.Coly.Hourly
	case domain.AssistantMax:
		return p.Max.Hourly
	default:
		return 0
	}
}

// Policy is the static quota table keyed by tier. It is loaded once and never mutated.
type Policy struct {
	Version string                     `json:"version"`
	Tiers   map[domain.Tier]TierPolicy `json:"tiers"`
}

// DefaultPolicy returns a fresh copy of the built-in table.
func DefaultPolicy() Policy {
	return Policy{
		Version: PolicyVersion,
		Tiers: map[domain.Tier]TierPolicy{
			domain.TierFree: {
				Coly:             HourlyQuota{Hourly: 0},
				Max:              HourlyQuota{Hourly: 0},
				Products:         TotalQuota{Total: 0},
				Trending:         MonthlyQuota{Monthly: 10},
				BusinessFeatures: false,
			},
			domain.TierEssential: {
				Coly:             HourlyQuota{Hourly: 50},
				Max:              HourlyQuota{Hourly: 0},
				Products:         TotalQuota{Total: 10},
				Trending:         MonthlyQuota{Monthly: 50},
				BusinessFeatures: false,
			},
			domain.TierPremium: {
				Coly:             HourlyQuota{Hourly: 50},
				Max:              HourlyQuota{Hourly: 50},
				Products:         TotalQuota{Total: 100},
				Trending:         MonthlyQuota{Monthly: 200},
				BusinessFeatures: true,
			},
		},
	}
}

// For returns the row of tier. Unknown tiers get the free row, and a table
// without a free row yields the zero policy, which denies everything.
func (p Policy) For(tier domain.Tier) TierPolicy {
	if tp, ok := p.Tiers[tier]; ok {
		return tp
	}
	return p.Tiers[domain.TierFree]
}

// HourlyLimit resolves the hourly ceiling of a tier/assistant pair.
func (p Policy) HourlyLimit(tier domain.Tier, a domain.Assistant) int {
	limit := p.For(tier).HourlyLimit(a)
	if limit < 0 {
		return 0
	}
	return limit
}

// CanAccess reports whether tier may use assistant a at all, regardless of usage.
func (p Policy) CanAccess(tier domain.Tier, a domain.Assistant) bool {
	return p.HourlyLimit(tier, a) > 0
}

// BusinessFeatures reports whether tier unlocks the business tools.
func (p Policy) BusinessFeatures(tier domain.Tier) bool {
	return p.For(tier).BusinessFeatures
}

// Validate checks that every tier has a row and that no limit is negative.
func (p Policy) Validate() error {
	for _, tier := range domain.AllTiers {
		tp, ok := p.Tiers[tier]
		if !ok {
			return fmt.Errorf("quota policy %s: missing tier %q", p.Version, tier)
		}
		for _, a := range domain.AllAssistants {
			if tp.HourlyLimit(a) < 0 {
				return fmt.Errorf("quota policy %s: negative %s limit for tier %q", p.Version, a, tier)
			}
		}
		if tp.Products.Total < 0 || tp.Trending.Monthly < 0 {
			return fmt.Errorf("quota policy %s: negative allowance for tier %q", p.Version, tier)
		}
	}
	return nil
}
