// Package session holds the per-user practice session storage.
package session

import (
	"context"
	"errors"

	"github.com/Soypete/star-interview-bot/types"
)

// ErrNotFound is returned by Get when the user has no session.
var ErrNotFound = errors.New("session not found")

// Store persists one session per user. Save replaces any existing session for
// the same user. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, userID string) (*types.Session, error)
	Save(ctx context.Context, s *types.Session) error
}
