package types

import (
	"time"

	"github.com/google/uuid"
)

// SessionState tracks where a user is in the practice loop.
type SessionState string

const (
	// StateAwaitingQuestion means the user needs to call next to get a question.
	StateAwaitingQuestion SessionState = "awaiting_question"
	// StateAwaitingAnswer means a question was asked and free text is treated as the answer.
	StateAwaitingAnswer SessionState = "awaiting_answer"
	// StateComplete means every sampled skill has been used.
	StateComplete SessionState = "complete"
)

// Session is a single user's practice run.
type Session struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	UserID          string       `json:"user_id" db:"user_id"`
	Skills          []Skill      `json:"skills"`
	CurrentIndex    int          `json:"current_index"`
	CurrentQuestion string       `json:"current_question,omitempty"`
	CurrentSkill    *Skill       `json:"current_skill,omitempty"`
	HintUsed        bool         `json:"hint_used"`
	Results         []string     `json:"results"`
	State           SessionState `json:"state"`
	StartedAt       time.Time    `json:"started_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// NewSession creates a fresh session for userID over the drawn skills.
func NewSession(userID string, skills []Skill, now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Skills:    skills,
		Results:   []string{},
		State:     StateAwaitingQuestion,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// HasQuestion reports whether a question has been generated in this session.
func (s *Session) HasQuestion() bool {
	return s.CurrentSkill != nil
}

// Exhausted reports whether CurrentIndex ran past the sampled skills.
func (s *Session) Exhausted() bool {
	return s.CurrentIndex >= len(s.Skills)
}

// NextSkill returns the skill at CurrentIndex, or false once the session is exhausted.
func (s *Session) NextSkill() (Skill, bool) {
	if s.Exhausted() {
		return Skill{}, false
	}
	return s.Skills[s.CurrentIndex], true
}

// SetCurrentQuestion records a newly generated question and clears the hint flag.
func (s *Session) SetCurrentQuestion(skill Skill, question string) {
	s.CurrentSkill = &skill
	s.CurrentQuestion = question
	s.HintUsed = false
	s.State = StateAwaitingAnswer
}

// Advance moves to the next skill.
func (s *Session) Advance() {
	s.CurrentIndex++
}

// AppendResult stores an evaluation and leaves the session waiting for next.
func (s *Session) AppendResult(evaluation string) {
	s.Results = append(s.Results, evaluation)
	s.State = StateAwaitingQuestion
}

// MarkHintUsed flags the current question as having shown its hint.
func (s *Session) MarkHintUsed() {
	s.HintUsed = true
}

// Complete moves the session into its terminal state.
func (s *Session) Complete() {
	s.State = StateComplete
}

// Clone returns a deep copy so callers can mutate without touching stored state.
func (s *Session) Clone() *Session {
	c := *s
	c.Skills = append([]Skill(nil), s.Skills...)
	c.Results = append([]string{}, s.Results...)
	if s.CurrentSkill != nil {
		skill := *s.CurrentSkill
		c.CurrentSkill = &skill
	}
	return &c
}
