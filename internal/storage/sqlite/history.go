package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/pkg/log"
)

type History struct {
	db *sql.DB
}

func NewHistory(db *sql.DB) *History {
	return &History{db: db}
}

// EnsureConversation creates the conversation row if it does not exist.
func (h *History) EnsureConversation(ctx context.Context, conversationID, userID string) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		conversationID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure conversation: %w", err)
	}
	return nil
}

func (h *History) AddTurn(ctx context.Context, conversationID string, turn core.Turn) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO turns (conversation_id, role, content) VALUES (?, ?, ?)`,
		conversationID, turn.Role, turn.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}

func (h *History) GetTurns(ctx context.Context, conversationID string, limit int) ([]core.Turn, error) {
	// Fetch the LAST 'limit' turns by ordering DESC.
	query := `SELECT role, content FROM turns WHERE conversation_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := h.db.QueryContext(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []core.Turn
	for rows.Next() {
		var t core.Turn
		var content sql.NullString
		if err := rows.Scan(&t.Role, &content); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Content = content.String
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse back to chronological order for the model.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(turns)).Msg("loaded history turns")
	return turns, nil
}
