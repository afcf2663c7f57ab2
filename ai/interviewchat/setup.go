// package interviewchat is the langchaingo implementation of the ai.Generator interface.
package interviewchat

import (
	"context"
	"fmt"
	"time"

	"github.com/Soypete/star-interview-bot/ai"
	"github.com/Soypete/star-interview-bot/llms/claude"
	"github.com/Soypete/star-interview-bot/llms/gemini"
	"github.com/Soypete/star-interview-bot/logging"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Supported providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// DefaultOpenAIModel is used by the openai provider when no model is configured.
const DefaultOpenAIModel = "gpt-4o"

// DefaultModel returns the model a provider uses when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return claude.DefaultModel
	case ProviderGemini:
		return gemini.DefaultModel
	default:
		return DefaultOpenAIModel
	}
}

// Options selects and configures the model behind the Bot.
type Options struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
}

// Bot sends interview prompts to a language model.
type Bot struct {
	llm         llms.Model
	modelName   string
	temperature float64
	timeout     time.Duration
	logger      *logging.Logger
}

var _ ai.Generator = (*Bot)(nil)

// Setup creates the provider's model and wraps it in a Bot.
func Setup(ctx context.Context, opts Options, logger *logging.Logger) (*Bot, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if opts.Model == "" {
		opts.Model = DefaultModel(opts.Provider)
	}

	logger.Info("setting up interview LLM", "provider", opts.Provider, "model", opts.Model, "baseURL", opts.BaseURL)

	var (
		llm llms.Model
		err error
	)
	switch opts.Provider {
	case ProviderOpenAI, "":
		token := opts.APIKey
		if token == "" && opts.BaseURL != "" {
			// llama.cpp ignores the key but the client refuses to start without one
			token = "none"
		}
		oaOpts := []openai.Option{
			openai.WithToken(token),
			openai.WithModel(opts.Model),
		}
		//  base url lets us point at llama.cpp or any other server speaking the openai api
		if opts.BaseURL != "" {
			oaOpts = append(oaOpts, openai.WithBaseURL(opts.BaseURL))
		}
		llm, err = openai.New(oaOpts...)
	case ProviderAnthropic:
		llm, err = claude.New(opts.APIKey, opts.Model)
	case ProviderGemini:
		llm, err = gemini.New(ctx, opts.APIKey, opts.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", opts.Provider)
	}
	if err != nil {
		logger.Error("failed to create LLM", "provider", opts.Provider, "error", err.Error())
		return nil, fmt.Errorf("failed to create %s LLM: %w", opts.Provider, err)
	}

	return New(llm, opts, logger), nil
}

// New wraps an existing model. Used by Setup and by tests with a mock model.
func New(llm llms.Model, opts Options, logger *logging.Logger) *Bot {
	if logger == nil {
		logger = logging.Default()
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = ai.DefaultTemperature
	}
	return &Bot{
		llm:         llm,
		modelName:   opts.Model,
		temperature: temperature,
		timeout:     opts.Timeout,
		logger:      logger,
	}
}

// ModelName returns the configured model identifier.
func (b *Bot) ModelName() string {
	return b.modelName
}
