package interviewchat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Soypete/star-interview-bot/ai"
	"github.com/Soypete/star-interview-bot/llms/claude"
	"github.com/Soypete/star-interview-bot/llms/gemini"
	"github.com/Soypete/star-interview-bot/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// MockLLM is a mock implementation of the llms.Model interface
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	args := m.Called(ctx, messages, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llms.ContentResponse), args.Error(1)
}

func (m *MockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	args := m.Called(ctx, prompt, options)
	return args.String(0), args.Error(1)
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name           string
		mockResponse   *llms.ContentResponse
		mockError      error
		expectedResult string
		expectedErr    error
	}{
		{
			name: "successful generation",
			mockResponse: &llms.ContentResponse{
				Choices: []*llms.ContentChoice{
					{Content: "Situation: your release is at risk.\nWhat would you do?"},
					{Content: "ignored second choice"},
				},
			},
			expectedResult: "Situation: your release is at risk.\nWhat would you do?",
		},
		{
			name: "empty response is a service error",
			mockResponse: &llms.ContentResponse{
				Choices: []*llms.ContentChoice{{Content: "  <|im_end|>"}},
			},
			expectedErr: ai.ErrEmptyResponse,
		},
		{
			name:         "no choices",
			mockResponse: &llms.ContentResponse{},
			expectedErr:  ai.ErrEmptyResponse,
		},
		{
			name:        "upstream failure",
			mockError:   errors.New("connection refused"),
			expectedErr: errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockLLM := new(MockLLM)
			bot := New(mockLLM, Options{Model: "gpt-4o", Timeout: time.Second}, logging.Discard())

			mockLLM.On("GenerateContent", mock.Anything, mock.MatchedBy(func(msgs []llms.MessageContent) bool {
				return len(msgs) == 1 && msgs[0].Role == llms.ChatMessageTypeHuman
			}), mock.Anything).Return(tt.mockResponse, tt.mockError).Once()

			result, err := bot.Generate(context.Background(), ai.TaskQuestion, "prompt")

			if tt.expectedErr != nil {
				assert.Error(t, err)
				assert.True(t, ai.IsServiceError(err))
				if errors.Is(tt.expectedErr, ai.ErrEmptyResponse) {
					assert.ErrorIs(t, err, ai.ErrEmptyResponse)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedResult, result)
			}
			mockLLM.AssertNumberOfCalls(t, "GenerateContent", 1)
		})
	}
}

func TestGenerateUsesTemperature(t *testing.T) {
	mockLLM := new(MockLLM)
	bot := New(mockLLM, Options{}, logging.Discard())

	mockLLM.On("GenerateContent", mock.Anything, mock.Anything, mock.MatchedBy(func(opts []llms.CallOption) bool {
		callOpts := llms.CallOptions{}
		for _, o := range opts {
			o(&callOpts)
		}
		return callOpts.Temperature == ai.DefaultTemperature && callOpts.CandidateCount == 1
	})).Return(&llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "tip"}}}, nil)

	got, err := bot.Generate(context.Background(), ai.TaskHint, "prompt")
	assert.NoError(t, err)
	assert.Equal(t, "tip", got)
	mockLLM.AssertExpectations(t)
}

func TestSetupUnknownProvider(t *testing.T) {
	_, err := Setup(context.Background(), Options{Provider: "watson"}, logging.Discard())
	assert.Error(t, err)
}

func TestSetupDefaultsModelPerProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{provider: ProviderOpenAI, want: DefaultOpenAIModel},
		{provider: "", want: DefaultOpenAIModel},
		{provider: ProviderAnthropic, want: claude.DefaultModel},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			bot, err := Setup(context.Background(), Options{Provider: tt.provider, APIKey: "test-key"}, logging.Discard())
			require.NoError(t, err)
			assert.Equal(t, tt.want, bot.ModelName())
		})
	}

	bot, err := Setup(context.Background(), Options{Provider: ProviderAnthropic, APIKey: "test-key", Model: "claude-sonnet-4-5"}, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5", bot.ModelName())

	assert.Equal(t, gemini.DefaultModel, DefaultModel(ProviderGemini))
}
