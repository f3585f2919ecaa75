package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type UsageRepo struct {
	db *sql.DB
}

func NewUsageRepo(db *sql.DB) *UsageRepo {
	return &UsageRepo{db: db}
}

// UsageRecord is one request's accounting entry. Records are insert
// only; daily views are computed by aggregation.
type UsageRecord struct {
	ID           string
	UserID       string
	Action       string
	InputTokens  int
	OutputTokens int
	ToolCalls    int
	LatencyMs    int
	Model        string
	CostUSD      float64
	CreatedAt    time.Time
}

// DailyUsage is the per-user accumulated usage for one UTC day.
type DailyUsage struct {
	Requests     int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

func usageDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Record inserts one usage entry. A missing ID or CreatedAt is filled
// in; CreatedAt is stored in UTC so daily aggregation is stable.
func (r *UsageRepo) Record(ctx context.Context, rec UsageRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO usage_records
			(id, user_id, action, input_tokens, output_tokens, tool_calls, latency_ms, model, cost_usd, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.UserID, rec.Action, rec.InputTokens, rec.OutputTokens,
		rec.ToolCalls, rec.LatencyMs, rec.Model, rec.CostUSD,
		rec.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

// ForDay aggregates the user's usage for the given UTC day; zero usage
// if no records exist yet.
func (r *UsageRepo) ForDay(ctx context.Context, userID string, at time.Time) (DailyUsage, error) {
	var u DailyUsage
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0),
			COALESCE(SUM(cost_usd), 0)
		FROM usage_records
		WHERE user_id = ? AND date(created_at) = ?
	`, userID, usageDay(at)).Scan(&u.Requests, &u.InputTokens, &u.OutputTokens, &u.CostUSD)
	if err == sql.ErrNoRows {
		return DailyUsage{}, nil
	}
	if err != nil {
		return DailyUsage{}, fmt.Errorf("failed to query usage: %w", err)
	}
	return u, nil
}
