package breaker

import (
	"testing"
	"time"
)

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	now := time.Unix(1000, 0)
	b := New(&Config{
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
		Now:              func() time.Time { return now },
	})

	for i := 0; i < 3; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("call %d unexpectedly rejected: %v", i, err)
		}
		b.Failure()
	}

	// 4th call within the cooldown window is rejected without any attempt.
	if err := b.Allow(); err != ErrOpen {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
}

func TestBreaker_HalfOpenSingleProbe(t *testing.T) {
	now := time.Unix(1000, 0)
	b := New(&Config{
		FailureThreshold: 1,
		Cooldown:         30 * time.Second,
		Now:              func() time.Time { return now },
	})

	b.Failure()
	if err := b.Allow(); err != ErrOpen {
		t.Fatal("expected open breaker")
	}

	// Cooldown elapses: exactly one probe is allowed regardless of how
	// many callers are queued.
	now = now.Add(31 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("probe rejected: %v", err)
	}
	if err := b.Allow(); err != ErrOpen {
		t.Fatal("second concurrent caller should be rejected during probe")
	}

	// Probe success closes the breaker.
	b.Success()
	if err := b.Allow(); err != nil {
		t.Fatalf("closed breaker rejected call: %v", err)
	}
}

func TestBreaker_ProbeFailureReopens(t *testing.T) {
	now := time.Unix(1000, 0)
	b := New(&Config{
		FailureThreshold: 1,
		Cooldown:         30 * time.Second,
		Now:              func() time.Time { return now },
	})

	b.Failure()
	now = now.Add(31 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("probe rejected: %v", err)
	}
	b.Failure()

	// Failed probe restarts the cooldown.
	now = now.Add(10 * time.Second)
	if err := b.Allow(); err != ErrOpen {
		t.Fatal("breaker should have reopened after failed probe")
	}

	now = now.Add(21 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("probe after second cooldown rejected: %v", err)
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New(nil)
	b.Failure()
	b.Failure()
	b.Success()
	if st := b.State(); st.Failures != 0 || st.IsOpen {
		t.Fatalf("expected reset state, got %+v", st)
	}
}
