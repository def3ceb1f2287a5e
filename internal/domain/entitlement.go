package domain

// Situation classifies why a decision carries a user-facing message.
type Situation string

const (
	SituationNone             Situation = ""
	SituationTierNotEntitled  Situation = "tier_not_entitled"
	SituationLimitReached     Situation = "limit_reached"
	SituationApproachingLimit Situation = "approaching_limit"
)

// Decision is the outcome of an assistant quota check. It is computed per request and never stored.
type Decision struct {
	Assistant    Assistant `json:"assistant"`
	Tier         Tier      `json:"tier"`
	CanUse       bool      `json:"can_use"`
	CurrentUsage int       `json:"current_usage"`
	Limit        int       `json:"limit"`
	Remaining    int       `json:"remaining"`
	ResetTime    string    `json:"reset_time,omitempty"`
	Message      string    `json:"message,omitempty"`
	Situation    Situation `json:"situation,omitempty"`
	Language     string    `json:"language"`
	// FailOpen is set when the check could not be computed and access was granted anyway.
	FailOpen bool `json:"fail_open,omitempty"`
}

// AllowanceKind names a non-chat entitlement carried in the quota policy.
type AllowanceKind string

const (
	AllowanceProducts AllowanceKind = "products"
	AllowanceTrending AllowanceKind = "trending"
)

// Allowance is the state of a non-chat entitlement for a tier.
type Allowance struct {
	Kind      AllowanceKind `json:"kind"`
	CanUse    bool          `json:"can_use"`
	Used      int           `json:"used"`
	Limit     int           `json:"limit"`
	Remaining int           `json:"remaining"`
	ResetTime string        `json:"reset_time,omitempty"`
}

// QuotaStatus summarises every entitlement of a user.
type QuotaStatus struct {
	UserID           string                  `json:"user_id"`
	Tier             Tier                    `json:"tier"`
	Assistants       map[Assistant]*Decision `json:"assistants"`
	Allowances       []Allowance             `json:"allowances"`
	BusinessFeatures bool                    `json:"business_features"`
}
