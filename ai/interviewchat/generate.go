package interviewchat

import (
	"context"
	"time"

	"github.com/Soypete/star-interview-bot/ai"
	"github.com/Soypete/star-interview-bot/metrics"
	"github.com/tmc/langchaingo/llms"
)

// Generate sends prompt as a single user message and returns the first completion.
func (b *Bot) Generate(ctx context.Context, task ai.Task, prompt string) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	b.logger.Debug("calling LLM", "task", task, "promptLength", len(prompt))

	messages := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}
	resp, err := b.llm.GenerateContent(ctx, messages,
		llms.WithCandidateCount(1),
		llms.WithTemperature(b.temperature))
	if err != nil {
		b.logger.Error("failed to get LLM response", "task", task, "error", err.Error())
		metrics.FailedLLMGen.Add(1)
		return "", &ai.ServiceError{Task: task, Err: err}
	}

	if resp == nil || len(resp.Choices) == 0 {
		b.logger.Warn("LLM returned no choices", "task", task)
		metrics.EmptyLLMResponse.Add(1)
		return "", &ai.ServiceError{Task: task, Err: ai.ErrEmptyResponse}
	}

	text := ai.CleanResponse(resp.Choices[0].Content)
	if text == "" {
		b.logger.Warn("empty response from LLM", "task", task, "stopReason", resp.Choices[0].StopReason)
		metrics.EmptyLLMResponse.Add(1)
		return "", &ai.ServiceError{Task: task, Err: ai.ErrEmptyResponse}
	}

	b.logger.Debug("received LLM response", "task", task, "responseLength", len(text), "duration", time.Since(start).String())
	metrics.SuccessfulLLMGen.Add(1)
	return text, nil
}
