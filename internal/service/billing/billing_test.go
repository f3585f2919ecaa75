package billing

import (
	"testing"
	"time"

	"github.com/vetevidence/vetagent/pkg/kv"
)

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		name   string
		model  string
		input  int
		output int
		want   float64
	}{
		{"sonnet round numbers", "claude-sonnet-4-5-20250929", 1_000_000, 1_000_000, 18.0},
		{"sonnet typical call", "claude-sonnet-4-5-20250929", 2000, 800, 0.018},
		{"haiku cheaper", "claude-haiku-4-5-20251001", 1_000_000, 0, 1.0},
		{"unknown model uses default", "gpt-99", 1_000_000, 0, 3.0},
		{"zero tokens", "claude-sonnet-4-5-20250929", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateCost(tt.model, tt.input, tt.output); got != tt.want {
				t.Errorf("CalculateCost() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLimiterHourlyCap(t *testing.T) {
	now := time.Unix(10_000, 0)
	l := NewLimiter(kv.NewMemStoreWithClock(func() time.Time { return now }))

	for i := 0; i < 20; i++ {
		res := l.Check("u1", "chat", TierFree)
		if !res.Allowed {
			t.Fatalf("request %d denied early: %s", i+1, res.Reason)
		}
	}

	res := l.Check("u1", "chat", TierFree)
	if res.Allowed {
		t.Fatal("21st request within the hour must be denied")
	}
	if res.Reason == "" || res.ResetAt.IsZero() {
		t.Errorf("denial missing reason/reset: %+v", res)
	}

	// A different user is unaffected.
	if res := l.Check("u2", "chat", TierFree); !res.Allowed {
		t.Errorf("independent user denied: %s", res.Reason)
	}

	// After the hour window the user is admitted again.
	now = now.Add(time.Hour + time.Minute)
	if res := l.Check("u1", "chat", TierFree); !res.Allowed {
		t.Errorf("post-window request denied: %s", res.Reason)
	}
}

func TestLimiterRemainingIsTighterWindow(t *testing.T) {
	l := NewLimiter(kv.NewMemStore())

	res := l.Check("u1", "chat", TierFree)
	// 19 left this hour, 99 left today.
	if res.Remaining != 19 {
		t.Errorf("remaining = %d, want 19", res.Remaining)
	}
}

func TestLimiterUnknownTierFallsBackToFree(t *testing.T) {
	l := NewLimiter(kv.NewMemStore())
	res := l.Check("u1", "chat", Tier("platinum"))
	if !res.Allowed || res.Remaining != 19 {
		t.Errorf("unknown tier result = %+v", res)
	}
}

func TestLimiterTokenQuota(t *testing.T) {
	l := NewLimiter(kv.NewMemStore())

	if l.RecordTokens("u1", TierFree, 60_000) {
		t.Fatal("quota not yet exceeded")
	}
	if l.TokensExhausted("u1", TierFree) {
		t.Fatal("quota not yet exceeded")
	}
	if !l.RecordTokens("u1", TierFree, 50_000) {
		t.Fatal("110k tokens must exceed the free 100k quota")
	}
	if !l.TokensExhausted("u1", TierFree) {
		t.Fatal("exhaustion must persist for subsequent checks")
	}
	// The same spend fits a pro quota.
	if l.TokensExhausted("u1", TierPro) {
		t.Fatal("pro quota should not be exhausted")
	}
}
