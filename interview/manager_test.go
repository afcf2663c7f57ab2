package interview

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/Soypete/star-interview-bot/ai"
	"github.com/Soypete/star-interview-bot/logging"
	"github.com/Soypete/star-interview-bot/session"
	"github.com/Soypete/star-interview-bot/skills"
	"github.com/Soypete/star-interview-bot/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, task ai.Task, prompt string) (string, error) {
	args := m.Called(ctx, task, prompt)
	return args.String(0), args.Error(1)
}

type MockEvaluationWriter struct {
	mock.Mock
}

func (m *MockEvaluationWriter) InsertEvaluation(ctx context.Context, eval types.Evaluation) error {
	args := m.Called(ctx, eval)
	return args.Error(0)
}

type MockEvaluationReader struct {
	mock.Mock
}

func (m *MockEvaluationReader) GetEvaluations(ctx context.Context, sessionID string) ([]types.Evaluation, error) {
	args := m.Called(ctx, sessionID)
	evals, _ := args.Get(0).([]types.Evaluation)
	return evals, args.Error(1)
}

func testSkills(n int) []types.Skill {
	out := make([]types.Skill, n)
	for i := range out {
		out[i] = types.Skill{
			Name:          fmt.Sprintf("Skill %d", i),
			Description:   fmt.Sprintf("Description %d", i),
			LevelBasic:    "basic",
			LevelStrong:   "strong",
			LevelAdvanced: "advanced",
		}
	}
	return out
}

func newTestManager(t *testing.T, gen ai.Generator, opts ...Option) (*Manager, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	table := skills.NewTable(testSkills(12), rand.New(rand.NewPCG(1, 2)))
	clock := func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC) }
	opts = append([]Option{WithClock(clock)}, opts...)
	return NewManager(store, gen, table, logging.Discard(), opts...), store
}

func getSession(t *testing.T, store session.Store, userID string) *types.Session {
	t.Helper()
	s, err := store.Get(context.Background(), userID)
	require.NoError(t, err)
	return s
}

func TestStart(t *testing.T) {
	gen := new(MockGenerator)
	m, store := newTestManager(t, gen)
	ctx := context.Background()

	reply := m.Start(ctx, "user-1")
	assert.Equal(t, Text(MsgSessionStarted), reply)

	s := getSession(t, store, "user-1")
	assert.Len(t, s.Skills, DefaultSessionSize)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Empty(t, s.Results)
	assert.Equal(t, types.StateAwaitingQuestion, s.State)

	seen := map[string]bool{}
	for _, skill := range s.Skills {
		assert.False(t, seen[skill.Name], "skill %s drawn twice", skill.Name)
		seen[skill.Name] = true
	}
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartResetsSession(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, ai.TaskQuestion, mock.Anything).Return("question?", nil)
	gen.On("Generate", mock.Anything, ai.TaskEvaluation, mock.Anything).Return("good", nil)
	m, store := newTestManager(t, gen)
	ctx := context.Background()

	m.Start(ctx, "user-1")
	first := getSession(t, store, "user-1")
	m.Next(ctx, "user-1")
	m.SubmitAnswer(ctx, "user-1", "my answer")

	m.Start(ctx, "user-1")
	s := getSession(t, store, "user-1")
	assert.NotEqual(t, first.ID, s.ID)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Empty(t, s.Results)
	assert.Nil(t, s.CurrentSkill)
	assert.Equal(t, types.StateAwaitingQuestion, s.State)
}

func TestStartNextAnswer(t *testing.T) {
	gen := new(MockGenerator)
	m, store := newTestManager(t, gen)
	ctx := context.Background()

	m.Start(ctx, "user-1")
	s := getSession(t, store, "user-1")
	first := s.Skills[0]

	gen.On("Generate", mock.Anything, ai.TaskQuestion, ai.QuestionPrompt(first)).Return("Tell me about a time...", nil).Once()
	reply := m.Next(ctx, "user-1")
	assert.Equal(t, Reply{Messages: []Message{{Header: HeaderQuestion, Body: "Tell me about a time..."}}}, reply)

	s = getSession(t, store, "user-1")
	require.NotNil(t, s.CurrentSkill)
	assert.Equal(t, first, *s.CurrentSkill)
	assert.Equal(t, "Tell me about a time...", s.CurrentQuestion)
	assert.Equal(t, types.StateAwaitingAnswer, s.State)

	gen.On("Generate", mock.Anything, ai.TaskEvaluation, ai.EvaluationPrompt(first, "I led the team")).Return("Result: pass", nil).Once()
	reply = m.SubmitAnswer(ctx, "user-1", "I led the team")
	assert.Equal(t, Reply{Messages: []Message{{Header: HeaderFeedback, Body: "Result: pass"}}}, reply)

	s = getSession(t, store, "user-1")
	assert.Equal(t, 1, s.CurrentIndex)
	assert.Equal(t, []string{"Result: pass"}, s.Results)
	assert.Equal(t, types.StateAwaitingQuestion, s.State)

	// free text before the next /next is ignored
	reply = m.SubmitAnswer(ctx, "user-1", "one more thing")
	assert.True(t, reply.Empty())
	s = getSession(t, store, "user-1")
	assert.Equal(t, 1, s.CurrentIndex)
	assert.Equal(t, []string{"Result: pass"}, s.Results)
	gen.AssertNumberOfCalls(t, "Generate", 2)
	gen.AssertExpectations(t)
}

func TestSessionMissing(t *testing.T) {
	gen := new(MockGenerator)
	m, _ := newTestManager(t, gen)
	ctx := context.Background()

	assert.Equal(t, Text(MsgSessionMissing), m.Next(ctx, "nobody"))
	assert.Equal(t, Text(MsgSessionMissing), m.Skip(ctx, "nobody"))
	assert.Equal(t, Text(MsgSessionMissing), m.Summary(ctx, "nobody"))
	assert.Equal(t, Text(MsgQuestionMissing), m.Hint(ctx, "nobody"))
	assert.Equal(t, Text(MsgQuestionMissing), m.SampleAnswer(ctx, "nobody"))
	assert.Equal(t, Text(MsgQuestionMissing), m.Resources(ctx, "nobody"))
	assert.True(t, m.SubmitAnswer(ctx, "nobody", "hello").Empty())
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestQuestionMissingMakesNoUpstreamCall(t *testing.T) {
	gen := new(MockGenerator)
	m, _ := newTestManager(t, gen)
	ctx := context.Background()

	m.Start(ctx, "user-1")
	assert.Equal(t, Text(MsgQuestionMissing), m.Hint(ctx, "user-1"))
	assert.Equal(t, Text(MsgQuestionMissing), m.SampleAnswer(ctx, "user-1"))
	assert.Equal(t, Text(MsgQuestionMissing), m.Resources(ctx, "user-1"))
	assert.True(t, m.SubmitAnswer(ctx, "user-1", "an early answer").Empty())
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestHintOncePerQuestion(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, ai.TaskQuestion, mock.Anything).Return("question?", nil)
	gen.On("Generate", mock.Anything, ai.TaskHint, mock.Anything).Return("think about stakeholders", nil).Twice()
	m, store := newTestManager(t, gen)
	ctx := context.Background()

	m.Start(ctx, "user-1")
	m.Next(ctx, "user-1")

	assert.Equal(t, Reply{Messages: []Message{{Header: HeaderHint, Body: "think about stakeholders"}}}, m.Hint(ctx, "user-1"))
	assert.Equal(t, Text(MsgHintAlreadyShown), m.Hint(ctx, "user-1"))
	assert.True(t, getSession(t, store, "user-1").HintUsed)

	// a new question resets the hint
	m.Next(ctx, "user-1")
	assert.False(t, getSession(t, store, "user-1").HintUsed)
	assert.Equal(t, Reply{Messages: []Message{{Header: HeaderHint, Body: "think about stakeholders"}}}, m.Hint(ctx, "user-1"))

	gen.AssertNumberOfCalls(t, "Generate", 4)
}

func TestSkip(t *testing.T) {
	gen := new(MockGenerator)
	m, store := newTestManager(t, gen)
	ctx := context.Background()

	m.Start(ctx, "user-1")
	s := getSession(t, store, "user-1")

	gen.On("Generate", mock.Anything, ai.TaskQuestion, ai.QuestionPrompt(s.Skills[1])).Return("second question", nil).Once()
	reply := m.Skip(ctx, "user-1")
	assert.Equal(t, Reply{Messages: []Message{{Header: HeaderQuestion, Body: "second question"}}}, reply)

	s = getSession(t, store, "user-1")
	assert.Equal(t, 1, s.CurrentIndex)
	assert.Equal(t, s.Skills[1], *s.CurrentSkill)
	gen.AssertExpectations(t)
}

func TestAnswerAndInfoKeepState(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, ai.TaskQuestion, mock.Anything).Return("question?", nil)
	gen.On("Generate", mock.Anything, ai.TaskSampleAnswer, mock.Anything).Return("sample", nil)
	gen.On("Generate", mock.Anything, ai.TaskResources, mock.Anything).Return("books", nil)
	m, store := newTestManager(t, gen)
	ctx := context.Background()

	m.Start(ctx, "user-1")
	m.Next(ctx, "user-1")
	before := getSession(t, store, "user-1")

	assert.Equal(t, Reply{Messages: []Message{{Header: HeaderSampleAnswer, Body: "sample"}}}, m.SampleAnswer(ctx, "user-1"))
	assert.Equal(t, Reply{Messages: []Message{{Header: HeaderResources, Body: "books"}}}, m.Resources(ctx, "user-1"))

	after := getSession(t, store, "user-1")
	assert.Equal(t, before, after)
}

func TestUpstreamFailureLeavesSessionUnchanged(t *testing.T) {
	gen := new(MockGenerator)
	upstream := &ai.ServiceError{Task: ai.TaskQuestion, Err: errors.New("timeout")}
	gen.On("Generate", mock.Anything, ai.TaskQuestion, mock.Anything).Return("", upstream).Once()
	m, store := newTestManager(t, gen)
	ctx := context.Background()

	m.Start(ctx, "user-1")
	before := getSession(t, store, "user-1")

	assert.Equal(t, Text(MsgServiceUnavailable), m.Skip(ctx, "user-1"))
	assert.Equal(t, before, getSession(t, store, "user-1"))
	gen.AssertExpectations(t)
}

func TestEvaluationFailureKeepsQuestionOpen(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, ai.TaskQuestion, mock.Anything).Return("question?", nil)
	gen.On("Generate", mock.Anything, ai.TaskEvaluation, mock.Anything).Return("", &ai.ServiceError{Task: ai.TaskEvaluation, Err: ai.ErrEmptyResponse}).Once()
	m, store := newTestManager(t, gen)
	ctx := context.Background()

	m.Start(ctx, "user-1")
	m.Next(ctx, "user-1")

	assert.Equal(t, Text(MsgServiceUnavailable), m.SubmitAnswer(ctx, "user-1", "answer"))
	s := getSession(t, store, "user-1")
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Empty(t, s.Results)
	assert.Equal(t, types.StateAwaitingAnswer, s.State)
}

func TestSessionCompletes(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, ai.TaskQuestion, mock.Anything).Return("question?", nil)
	gen.On("Generate", mock.Anything, ai.TaskEvaluation, mock.Anything).Return("feedback", nil)
	m, store := newTestManager(t, gen, WithSessionSize(3))
	ctx := context.Background()

	m.Start(ctx, "user-1")
	for i := 0; i < 3; i++ {
		m.Next(ctx, "user-1")
		m.SubmitAnswer(ctx, "user-1", "answer")
	}

	reply := m.Next(ctx, "user-1")
	require.Len(t, reply.Messages, 1)
	assert.True(t, strings.Contains(reply.Messages[0].Body, "You answered 3 of 3 questions"))

	s := getSession(t, store, "user-1")
	assert.Equal(t, types.StateComplete, s.State)
	assert.Equal(t, 3, s.CurrentIndex)

	// the completion message repeats and the index does not move
	assert.Equal(t, reply, m.Skip(ctx, "user-1"))
	assert.Equal(t, 3, getSession(t, store, "user-1").CurrentIndex)
	gen.AssertNumberOfCalls(t, "Generate", 6)
}

func TestSubmitAnswerRecordsEvaluation(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, ai.TaskQuestion, mock.Anything).Return("question?", nil)
	gen.On("Generate", mock.Anything, ai.TaskEvaluation, mock.Anything).Return("feedback", nil)

	writer := new(MockEvaluationWriter)
	writer.On("InsertEvaluation", mock.Anything, mock.MatchedBy(func(e types.Evaluation) bool {
		return e.UserID == "user-1" && e.Question == "question?" && e.Answer == "answer" && e.Evaluation == "feedback"
	})).Return(errors.New("db down")).Once()

	m, store := newTestManager(t, gen, WithEvaluationWriter(writer))
	ctx := context.Background()

	m.Start(ctx, "user-1")
	m.Next(ctx, "user-1")

	// a failed insert is only logged
	assert.Equal(t, Reply{Messages: []Message{{Header: HeaderFeedback, Body: "feedback"}}}, m.SubmitAnswer(ctx, "user-1", "answer"))
	assert.Equal(t, 1, getSession(t, store, "user-1").CurrentIndex)
	writer.AssertExpectations(t)
}

func TestSummary(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, ai.TaskQuestion, mock.Anything).Return("question?", nil)
	m, store := newTestManager(t, gen)
	ctx := context.Background()

	m.Start(ctx, "user-1")
	m.Next(ctx, "user-1")
	s := getSession(t, store, "user-1")

	reply := m.Summary(ctx, "user-1")
	require.Len(t, reply.Messages, 1)
	assert.Equal(t, fmt.Sprintf("📈 **Progress:**\nQuestion 1 of 10, 0 answered. Session is waiting for your answer on **%s**.", s.CurrentSkill.Name), reply.Messages[0].Body)
}

func TestSummaryCountsStoredEvaluations(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, ai.TaskQuestion, mock.Anything).Return("question?", nil)
	gen.On("Generate", mock.Anything, ai.TaskEvaluation, mock.Anything).Return("feedback", nil)
	reader := new(MockEvaluationReader)
	m, store := newTestManager(t, gen, WithEvaluationReader(reader))
	ctx := context.Background()

	m.Start(ctx, "user-1")
	m.Next(ctx, "user-1")
	m.SubmitAnswer(ctx, "user-1", "answer")
	s := getSession(t, store, "user-1")

	reader.On("GetEvaluations", mock.Anything, s.ID.String()).Return([]types.Evaluation{{SessionID: s.ID, Evaluation: "feedback"}}, nil).Once()
	reply := m.Summary(ctx, "user-1")
	require.Len(t, reply.Messages, 1)
	assert.Equal(t, "📈 **Progress:**\nQuestion 2 of 10, 1 answered. Session is ready for /next.\n1 graded answer saved for review.", reply.Messages[0].Body)

	// a failed lookup leaves the plain progress line
	reader.On("GetEvaluations", mock.Anything, s.ID.String()).Return(nil, errors.New("db down")).Once()
	reply = m.Summary(ctx, "user-1")
	require.Len(t, reply.Messages, 1)
	assert.Equal(t, "📈 **Progress:**\nQuestion 2 of 10, 1 answered. Session is ready for /next.", reply.Messages[0].Body)
	reader.AssertExpectations(t)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (*types.Session, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Save(context.Context, *types.Session) error {
	return errors.New("connection refused")
}

func TestStoreFailure(t *testing.T) {
	gen := new(MockGenerator)
	table := skills.NewTable(testSkills(12), rand.New(rand.NewPCG(1, 2)))
	m := NewManager(failingStore{}, gen, table, logging.Discard())
	ctx := context.Background()

	assert.Equal(t, Text(MsgServiceUnavailable), m.Start(ctx, "user-1"))
	assert.Equal(t, Text(MsgServiceUnavailable), m.Next(ctx, "user-1"))
	assert.Equal(t, Text(MsgServiceUnavailable), m.SubmitAnswer(ctx, "user-1", "text"))
}
