package billing

import (
	"fmt"
	"time"

	"github.com/vetevidence/vetagent/pkg/kv"
)

type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

type tierLimits struct {
	RequestsPerHour int64
	RequestsPerDay  int64
	TokensPerDay    int64
}

var tierTable = map[Tier]tierLimits{
	TierFree:       {RequestsPerHour: 20, RequestsPerDay: 100, TokensPerDay: 100_000},
	TierPro:        {RequestsPerHour: 100, RequestsPerDay: 1_000, TokensPerDay: 1_000_000},
	TierEnterprise: {RequestsPerHour: 500, RequestsPerDay: 10_000, TokensPerDay: 10_000_000},
}

// Result of one limit check. Remaining is the tighter of the hourly and
// daily headroom after this request.
type Result struct {
	Allowed   bool
	Remaining int64
	ResetAt   time.Time
	Reason    string
}

// Limiter enforces per-user request and token quotas on best-effort
// in-process counters. State is lost on restart; acceptable staleness.
type Limiter struct {
	store kv.Store
}

func NewLimiter(store kv.Store) *Limiter {
	return &Limiter{store: store}
}

// Check consumes one request slot for the user and reports whether the
// request may proceed. Unknown tiers are treated as free.
func (l *Limiter) Check(userID, action string, tier Tier) Result {
	limits, ok := tierTable[tier]
	if !ok {
		limits = tierTable[TierFree]
	}

	hourKey := fmt.Sprintf("%s:%s:hour", userID, action)
	dayKey := fmt.Sprintf("%s:%s:day", userID, action)

	hourCount, hourReset := l.store.IncrWindow(hourKey, time.Hour)
	if hourCount > limits.RequestsPerHour {
		return Result{
			ResetAt: hourReset,
			Reason:  fmt.Sprintf("hourly request limit of %d reached", limits.RequestsPerHour),
		}
	}

	dayCount, dayReset := l.store.IncrWindow(dayKey, 24*time.Hour)
	if dayCount > limits.RequestsPerDay {
		return Result{
			ResetAt: dayReset,
			Reason:  fmt.Sprintf("daily request limit of %d reached", limits.RequestsPerDay),
		}
	}

	remaining := limits.RequestsPerHour - hourCount
	resetAt := hourReset
	if dayRemaining := limits.RequestsPerDay - dayCount; dayRemaining < remaining {
		remaining = dayRemaining
		resetAt = dayReset
	}
	return Result{Allowed: true, Remaining: remaining, ResetAt: resetAt}
}

// RecordTokens accumulates the user's daily token spend and reports
// whether the tier's token quota is now exhausted.
func (l *Limiter) RecordTokens(userID string, tier Tier, tokens int) (exceeded bool) {
	limits, ok := tierTable[tier]
	if !ok {
		limits = tierTable[TierFree]
	}
	key := fmt.Sprintf("%s:tokens:day", userID)
	total, _ := l.store.AddWindow(key, int64(tokens), 24*time.Hour)
	return total > limits.TokensPerDay
}

// TokensExhausted reports whether the user's daily token quota is spent
// without consuming anything.
func (l *Limiter) TokensExhausted(userID string, tier Tier) bool {
	limits, ok := tierTable[tier]
	if !ok {
		limits = tierTable[TierFree]
	}
	return l.store.Get(fmt.Sprintf("%s:tokens:day", userID)) > limits.TokensPerDay
}
