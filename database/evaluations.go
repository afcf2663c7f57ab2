package database

import (
	"context"
	"fmt"

	"github.com/Soypete/star-interview-bot/types"
)

// EvaluationWriter records graded answers for later review.
type EvaluationWriter interface {
	InsertEvaluation(ctx context.Context, eval types.Evaluation) error
}

// EvaluationReader lists the graded answers recorded for a session.
type EvaluationReader interface {
	GetEvaluations(ctx context.Context, sessionID string) ([]types.Evaluation, error)
}

// InsertEvaluation stores one graded answer.
func (p *Postgres) InsertEvaluation(ctx context.Context, eval types.Evaluation) error {
	query := "INSERT INTO answer_evaluations (session_id, user_id, skill, question, answer, evaluation) VALUES (:session_id, :user_id, :skill, :question, :answer, :evaluation)"
	_, err := p.connections.NamedExecContext(ctx, query, eval)
	if err != nil {
		return fmt.Errorf("error inserting answer evaluation: %w", err)
	}
	return nil
}

// GetEvaluations returns the graded answers of one session, oldest first.
func (p *Postgres) GetEvaluations(ctx context.Context, sessionID string) ([]types.Evaluation, error) {
	var evals []types.Evaluation
	query := "SELECT session_id, user_id, skill, question, answer, evaluation, created_at FROM answer_evaluations WHERE session_id = $1 ORDER BY created_at ASC"
	rows, err := p.connections.QueryxContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error getting answer evaluations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eval types.Evaluation
		if err := rows.StructScan(&eval); err != nil {
			return nil, fmt.Errorf("error scanning answer evaluation: %w", err)
		}
		evals = append(evals, eval)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error scanning answer evaluations: %w", err)
	}
	return evals, nil
}
