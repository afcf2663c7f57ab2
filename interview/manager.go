// Package interview holds the practice session state machine. It knows nothing about the chat
// transport: every command takes a user id and returns the Reply to send back.
package interview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Soypete/star-interview-bot/ai"
	"github.com/Soypete/star-interview-bot/database"
	"github.com/Soypete/star-interview-bot/logging"
	"github.com/Soypete/star-interview-bot/metrics"
	"github.com/Soypete/star-interview-bot/session"
	"github.com/Soypete/star-interview-bot/skills"
	"github.com/Soypete/star-interview-bot/types"
)

// DefaultSessionSize is how many skills are drawn for one session.
const DefaultSessionSize = 10

// Manager runs the practice commands against a session store and a generator.
type Manager struct {
	store       session.Store
	gen         ai.Generator
	table       *skills.Table
	prompts     ai.Prompter
	evaluations database.EvaluationWriter
	reviews     database.EvaluationReader
	sessionSize int
	now         func() time.Time
	logger      *logging.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithPrompter replaces the default prompt templates.
func WithPrompter(p ai.Prompter) Option {
	return func(m *Manager) { m.prompts = p }
}

// WithEvaluationWriter records every graded answer.
func WithEvaluationWriter(w database.EvaluationWriter) Option {
	return func(m *Manager) { m.evaluations = w }
}

// WithEvaluationReader makes /progress report how many graded answers were stored.
func WithEvaluationReader(r database.EvaluationReader) Option {
	return func(m *Manager) { m.reviews = r }
}

// WithSessionSize overrides the number of skills drawn per session.
func WithSessionSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.sessionSize = n
		}
	}
}

// WithClock sets the time source used for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager builds a Manager. The store, generator and table are required.
func NewManager(store session.Store, gen ai.Generator, table *skills.Table, logger *logging.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	m := &Manager{
		store:       store,
		gen:         gen,
		table:       table,
		prompts:     ai.DefaultPrompter,
		sessionSize: DefaultSessionSize,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// load returns a copy of the user's session, or nil when there is none.
func (m *Manager) load(ctx context.Context, userID string) (*types.Session, error) {
	s, err := m.store.Get(ctx, userID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session for %s: %w", userID, err)
	}
	return s.Clone(), nil
}

func (m *Manager) save(ctx context.Context, s *types.Session) error {
	s.UpdatedAt = m.now()
	if err := m.store.Save(ctx, s); err != nil {
		return fmt.Errorf("failed to save session for %s: %w", s.UserID, err)
	}
	return nil
}

// failed logs err and turns it into the reply the user sees. The session is left as it was.
func (m *Manager) failed(command, userID string, err error) Reply {
	metrics.InterviewCommandErrors.WithLabelValues(command).Inc()
	m.logger.WithUser(userID).WithCommand(command).Error("command failed", "error", err.Error(), "upstream", ai.IsServiceError(err))
	return Text(MsgServiceUnavailable)
}

// Start draws a fresh set of skills and replaces any session the user had.
func (m *Manager) Start(ctx context.Context, userID string) Reply {
	defer metrics.ObserveCommand("start")()

	drawn, err := m.table.Draw(m.sessionSize)
	if err != nil {
		return m.failed("start", userID, err)
	}

	s := types.NewSession(userID, drawn, m.now())
	if err := m.save(ctx, s); err != nil {
		return m.failed("start", userID, err)
	}

	metrics.InterviewSessions.WithLabelValues("started").Inc()
	m.logger.WithUser(userID).Info("session started", "sessionID", s.ID.String(), "skills", len(drawn))
	return Text(MsgSessionStarted)
}

// Next asks a question for the skill at the current index.
func (m *Manager) Next(ctx context.Context, userID string) Reply {
	defer metrics.ObserveCommand("next")()

	s, err := m.load(ctx, userID)
	if err != nil {
		return m.failed("next", userID, err)
	}
	if s == nil {
		return Text(MsgSessionMissing)
	}
	return m.ask(ctx, "next", s)
}

// Skip moves past the current skill and asks about the following one.
func (m *Manager) Skip(ctx context.Context, userID string) Reply {
	defer metrics.ObserveCommand("skip")()

	s, err := m.load(ctx, userID)
	if err != nil {
		return m.failed("skip", userID, err)
	}
	if s == nil {
		return Text(MsgSessionMissing)
	}
	if s.State != types.StateComplete {
		s.Advance()
	}
	return m.ask(ctx, "skip", s)
}

// ask generates the question for s.CurrentIndex and saves s. Nothing is saved when generation fails.
func (m *Manager) ask(ctx context.Context, command string, s *types.Session) Reply {
	skill, ok := s.NextSkill()
	if !ok {
		return m.complete(ctx, command, s)
	}

	question, err := m.gen.Generate(ctx, ai.TaskQuestion, m.prompts.Question(skill))
	if err != nil {
		return m.failed(command, s.UserID, err)
	}

	s.SetCurrentQuestion(skill, question)
	if err := m.save(ctx, s); err != nil {
		return m.failed(command, s.UserID, err)
	}

	m.logger.WithUser(s.UserID).WithCommand(command).Debug("question asked", "sessionID", s.ID.String(), "index", s.CurrentIndex, "skill", skill.Name)
	return generated(HeaderQuestion, question)
}

func (m *Manager) complete(ctx context.Context, command string, s *types.Session) Reply {
	if s.State != types.StateComplete {
		s.Complete()
		if err := m.save(ctx, s); err != nil {
			return m.failed(command, s.UserID, err)
		}
		metrics.InterviewSessions.WithLabelValues("completed").Inc()
		m.logger.WithUser(s.UserID).Info("session complete", "sessionID", s.ID.String(), "answered", len(s.Results))
	}
	return Text(completionMessage(s))
}

func completionMessage(s *types.Session) string {
	return fmt.Sprintf("🏁 Session complete! You answered %d of %d questions. Type /start to practice a new set of skills.", len(s.Results), len(s.Skills))
}

// Hint gives one short tip for the current question.
func (m *Manager) Hint(ctx context.Context, userID string) Reply {
	defer metrics.ObserveCommand("hint")()

	s, err := m.load(ctx, userID)
	if err != nil {
		return m.failed("hint", userID, err)
	}
	if s == nil || !s.HasQuestion() {
		return Text(MsgQuestionMissing)
	}
	if s.HintUsed {
		return Text(MsgHintAlreadyShown)
	}

	hint, err := m.gen.Generate(ctx, ai.TaskHint, m.prompts.Hint(*s.CurrentSkill))
	if err != nil {
		return m.failed("hint", userID, err)
	}

	s.MarkHintUsed()
	if err := m.save(ctx, s); err != nil {
		return m.failed("hint", userID, err)
	}
	return generated(HeaderHint, hint)
}

// SampleAnswer writes an example STAR answer for the current skill.
func (m *Manager) SampleAnswer(ctx context.Context, userID string) Reply {
	defer metrics.ObserveCommand("answer")()
	return m.aboutCurrentSkill(ctx, "answer", userID, ai.TaskSampleAnswer, HeaderSampleAnswer, m.prompts.SampleAnswer)
}

// Resources recommends learning material for the current skill.
func (m *Manager) Resources(ctx context.Context, userID string) Reply {
	defer metrics.ObserveCommand("info")()
	return m.aboutCurrentSkill(ctx, "info", userID, ai.TaskResources, HeaderResources, m.prompts.Resources)
}

func (m *Manager) aboutCurrentSkill(ctx context.Context, command, userID string, task ai.Task, header string, prompt func(types.Skill) string) Reply {
	s, err := m.load(ctx, userID)
	if err != nil {
		return m.failed(command, userID, err)
	}
	if s == nil || !s.HasQuestion() {
		return Text(MsgQuestionMissing)
	}

	text, err := m.gen.Generate(ctx, task, prompt(*s.CurrentSkill))
	if err != nil {
		return m.failed(command, userID, err)
	}
	return generated(header, text)
}

// SubmitAnswer evaluates free text sent while a question is open. Anything else gets an empty Reply.
func (m *Manager) SubmitAnswer(ctx context.Context, userID, text string) Reply {
	s, err := m.load(ctx, userID)
	if err != nil {
		return m.failed("submit", userID, err)
	}
	if s == nil || s.State != types.StateAwaitingAnswer || !s.HasQuestion() {
		return Reply{}
	}

	defer metrics.ObserveCommand("submit")()

	skill := *s.CurrentSkill
	evaluation, err := m.gen.Generate(ctx, ai.TaskEvaluation, m.prompts.Evaluation(skill, text))
	if err != nil {
		return m.failed("submit", userID, err)
	}

	s.AppendResult(evaluation)
	s.Advance()
	if err := m.save(ctx, s); err != nil {
		return m.failed("submit", userID, err)
	}

	if m.evaluations != nil {
		record := types.Evaluation{
			SessionID:  s.ID,
			UserID:     userID,
			Skill:      skill.Name,
			Question:   s.CurrentQuestion,
			Answer:     text,
			Evaluation: evaluation,
			CreatedAt:  m.now(),
		}
		if err := m.evaluations.InsertEvaluation(ctx, record); err != nil {
			m.logger.WithUser(userID).Warn("failed to record evaluation", "sessionID", s.ID.String(), "error", err.Error())
		}
	}

	return generated(HeaderFeedback, evaluation)
}

// Summary reports how far the user is through their session.
func (m *Manager) Summary(ctx context.Context, userID string) Reply {
	defer metrics.ObserveCommand("progress")()

	s, err := m.load(ctx, userID)
	if err != nil {
		return m.failed("progress", userID, err)
	}
	if s == nil {
		return Text(MsgSessionMissing)
	}
	msg := progressMessage(s)
	if m.reviews != nil {
		evals, err := m.reviews.GetEvaluations(ctx, s.ID.String())
		if err != nil {
			m.logger.WithUser(userID).Warn("failed to read stored evaluations", "sessionID", s.ID.String(), "error", err.Error())
		} else {
			msg += savedMessage(len(evals))
		}
	}
	return Text(msg)
}

func savedMessage(n int) string {
	if n == 1 {
		return "\n1 graded answer saved for review."
	}
	return fmt.Sprintf("\n%d graded answers saved for review.", n)
}

func progressMessage(s *types.Session) string {
	var status string
	switch s.State {
	case types.StateAwaitingAnswer:
		status = fmt.Sprintf("waiting for your answer on **%s**", s.CurrentSkill.Name)
	case types.StateComplete:
		status = "complete"
	default:
		status = "ready for /next"
	}

	position := s.CurrentIndex + 1
	if position > len(s.Skills) {
		position = len(s.Skills)
	}
	return fmt.Sprintf("📈 **Progress:**\nQuestion %d of %d, %d answered. Session is %s.", position, len(s.Skills), len(s.Results), status)
}
