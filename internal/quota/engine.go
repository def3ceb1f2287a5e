package quota

import (
	"errors"
	"fmt"
	"math"
	"time"

	"lifex-server/internal/domain"
)

const (
	// DefaultWarningRatio is the share of the hourly limit at which an approaching-limit
	// advisory is attached. The threshold is floor(limit * ratio).
	DefaultWarningRatio = 0.8
	// DefaultFailOpenLimit is the limit reported when a check cannot be computed.
	DefaultFailOpenLimit = 50
)

// ErrNegativeUsage is reported by Evaluate for a malformed usage count.
var ErrNegativeUsage = errors.New("quota: current usage cannot be negative")

// Engine evaluates assistant entitlements against an immutable Policy.
type Engine struct {
	policy          Policy
	now             func() time.Time
	warningRatio    float64
	failOpenLimit   int
	defaultLanguage Language
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy replaces the built-in quota table.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithClock sets the time source used by Check.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithWarningRatio sets the approaching-limit ratio. Values outside (0, 1] are ignored.
func WithWarningRatio(ratio float64) Option {
	return func(e *Engine) {
		if ratio > 0 && ratio <= 1 {
			e.warningRatio = ratio
		}
	}
}

// WithFailOpenLimit sets the limit reported by fail-open decisions. Non-positive values are ignored.
func WithFailOpenLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.failOpenLimit = limit
		}
	}
}

// WithDefaultLanguage sets the language used when a hint is not recognised.
func WithDefaultLanguage(lang Language) Option {
	return func(e *Engine) {
		if lang.supported() {
			e.defaultLanguage = lang
		}
	}
}

// NewEngine builds an Engine over DefaultPolicy unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		policy:          DefaultPolicy(),
		now:             time.Now,
		warningRatio:    DefaultWarningRatio,
		failOpenLimit:   DefaultFailOpenLimit,
		defaultLanguage: DefaultLanguage,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the table the engine evaluates against.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Now returns the engine's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Check is the fail-open entry point: it always returns a well-formed decision.
// Any fault while evaluating, including a panic, yields canUse=true with the
// fail-open limit so an internal error never locks a user out.
func (e *Engine) Check(tier domain.Tier, a domain.Assistant, languageHint string, currentUsage int) (d domain.Decision) {
	defer func() {
		if r := recover(); r != nil {
			d = e.FailOpen(tier, a, languageHint)
		}
	}()
	return e.CheckAt(e.now(), tier, a, languageHint, currentUsage)
}

// CheckAt is Check at a caller-supplied instant, so the counter bucket and the
// reset time of one request agree.
func (e *Engine) CheckAt(now time.Time, tier domain.Tier, a domain.Assistant, languageHint string, currentUsage int) (d domain.Decision) {
	defer func() {
		if r := recover(); r != nil {
			d = e.FailOpen(tier, a, languageHint)
		}
	}()

	d, err := e.Evaluate(now, tier, a, languageHint, currentUsage)
	if err != nil {
		return e.FailOpen(tier, a, languageHint)
	}
	return d
}

// Evaluate computes the decision at now and reports malformed input as an error.
func (e *Engine) Evaluate(now time.Time, tier domain.Tier, a domain.Assistant, languageHint string, currentUsage int) (domain.Decision, error) {
	if currentUsage < 0 {
		return domain.Decision{}, fmt.Errorf("%w: %d", ErrNegativeUsage, currentUsage)
	}

	tier = domain.NormalizeTier(string(tier))
	if parsed, ok := domain.ParseAssistant(string(a)); ok {
		a = parsed
	}
	lang := DetectLanguage(languageHint, e.defaultLanguage)

	d := domain.Decision{
		Assistant:    a,
		Tier:         tier,
		CurrentUsage: currentUsage,
		Language:     string(lang),
	}

	// Zero limit means the tier is not entitled, which is a different outcome from an exhausted quota.
	limit := e.policy.HourlyLimit(tier, a)
	if !e.policy.CanAccess(tier, a) || limit <= 0 {
		d.Situation = domain.SituationTierNotEntitled
		d.Message = Message(a, d.Situation, lang, Usage{Used: currentUsage})
		return d, nil
	}

	reset := NextReset(now)
	d.Limit = limit
	d.Remaining = remaining(limit, currentUsage)
	usage := Usage{
		Used:           currentUsage,
		Limit:          limit,
		Remaining:      d.Remaining,
		MinutesToReset: minutesUntil(now, reset),
	}

	switch {
	case currentUsage >= limit:
		d.Situation = domain.SituationLimitReached
	case currentUsage >= e.warningThreshold(limit):
		d.CanUse = true
		d.Situation = domain.SituationApproachingLimit
	default:
		d.CanUse = true
		return d, nil
	}

	d.ResetTime = reset.Format(time.RFC3339)
	d.Message = Message(a, d.Situation, lang, usage)
	return d, nil
}

// FailOpen is the decision substituted for a failed check. It keeps the
// language of the hint so replies stay in the user's language.
func (e *Engine) FailOpen(tier domain.Tier, a domain.Assistant, languageHint string) domain.Decision {
	return domain.Decision{
		Assistant: a,
		Tier:      domain.NormalizeTier(string(tier)),
		CanUse:    true,
		Limit:     e.failOpenLimit,
		Remaining: e.failOpenLimit,
		Language:  string(e.failOpenLanguage(languageHint)),
		FailOpen:  true,
	}
}

func (e *Engine) failOpenLanguage(hint string) (lang Language) {
	defer func() {
		if r := recover(); r != nil {
			lang = e.defaultLanguage
		}
	}()
	return DetectLanguage(hint, e.defaultLanguage)
}

// CheckAllowance evaluates a non-chat entitlement. Products are a lifetime total,
// trending views reset at the start of each calendar month.
func (e *Engine) CheckAllowance(kind domain.AllowanceKind, tier domain.Tier, used int) domain.Allowance {
	if used < 0 {
		used = 0
	}
	tp := e.policy.For(domain.NormalizeTier(string(tier)))

	al := domain.Allowance{Kind: kind, Used: used}
	switch kind {
	case domain.AllowanceProducts:
		al.Limit = tp.Products.Total
	case domain.AllowanceTrending:
		al.Limit = tp.Trending.Monthly
		al.ResetTime = NextMonthlyReset(e.now()).Format(time.RFC3339)
	}
	if al.Limit < 0 {
		al.Limit = 0
	}
	al.Remaining = remaining(al.Limit, used)
	al.CanUse = al.Limit > 0 && used < al.Limit
	return al
}

func (e *Engine) warningThreshold(limit int) int {
	return int(math.Floor(float64(limit) * e.warningRatio))
}

func remaining(limit, used int) int {
	if r := limit - used; r > 0 {
		return r
	}
	return 0
}

var defaultEngine = NewEngine()

// CheckAssistantLimit evaluates the built-in policy at now. Tier and assistant are
// raw strings; unknown tiers are treated as free and unknown assistants have no access.
func CheckAssistantLimit(tier, assistant, languageHint string, currentUsage int, now time.Time) domain.Decision {
	e := &Engine{
		policy:          defaultEngine.policy,
		now:             func() time.Time { return now },
		warningRatio:    defaultEngine.warningRatio,
		failOpenLimit:   defaultEngine.failOpenLimit,
		defaultLanguage: defaultEngine.defaultLanguage,
	}
	return e.Check(domain.Tier(tier), domain.Assistant(assistant), languageHint, currentUsage)
}
