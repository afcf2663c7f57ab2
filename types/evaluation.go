package types

import (
	"time"

	"github.com/google/uuid"
)

// Evaluation is a graded answer, kept for review outside of the chat.
type Evaluation struct {
	SessionID  uuid.UUID `db:"session_id"`
	UserID     string    `db:"user_id"`
	Skill      string    `db:"skill"`
	Question   string    `db:"question"`
	Answer     string    `db:"answer"`
	Evaluation string    `db:"evaluation"`
	CreatedAt  time.Time `db:"created_at"`
}
