package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Soypete/star-interview-bot/session"
	"github.com/Soypete/star-interview-bot/types"
)

var _ session.Store = (*Postgres)(nil)

// Get loads the user's session document.
func (p *Postgres) Get(ctx context.Context, userID string) (*types.Session, error) {
	var document []byte
	query := "SELECT document FROM practice_sessions WHERE user_id = $1"
	err := p.connections.GetContext(ctx, &document, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting practice session: %w", err)
	}

	var s types.Session
	if err := json.Unmarshal(document, &s); err != nil {
		return nil, fmt.Errorf("error decoding practice session: %w", err)
	}
	return &s, nil
}

// Save upserts the user's session. A new session for the same user replaces the old row.
func (p *Postgres) Save(ctx context.Context, s *types.Session) error {
	document, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("error encoding practice session: %w", err)
	}

	query := `INSERT INTO practice_sessions (user_id, session_id, state, current_index, document, started_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (user_id) DO UPDATE SET
	session_id = EXCLUDED.session_id,
	state = EXCLUDED.state,
	current_index = EXCLUDED.current_index,
	document = EXCLUDED.document,
	started_at = EXCLUDED.started_at,
	updated_at = EXCLUDED.updated_at`
	_, err = p.connections.ExecContext(ctx, query,
		s.UserID, s.ID, string(s.State), s.CurrentIndex, document, s.StartedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error saving practice session: %w", err)
	}
	return nil
}
