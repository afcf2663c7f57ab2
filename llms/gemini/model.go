// Package gemini adapts the Google Gen AI SDK to the langchaingo llms.Model interface.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Model is a langchaingo llms.Model backed by google.golang.org/genai.
type Model struct {
	client *genai.Client
	model  string
}

var _ llms.Model = (*Model)(nil)

// New creates a Gemini API client.
func New(ctx context.Context, apiKey, model string) (*Model, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Model{client: client, model: model}, nil
}

// GenerateContent sends messages to Gemini and returns the response text as one choice.
func (m *Model) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	system, contents := buildContents(messages)
	config := &genai.GenerateContentConfig{}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.Temperature > 0 {
		temp := float32(opts.Temperature)
		config.Temperature = &temp
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	result, err := m.client.Models.GenerateContent(ctx, m.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content failed: %w", err)
	}

	choice := &llms.ContentChoice{Content: result.Text()}
	if len(result.Candidates) > 0 {
		choice.StopReason = string(result.Candidates[0].FinishReason)
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{choice}}, nil
}

// Call implements the single prompt helper of llms.Model.
func (m *Model) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// buildContents splits out system text and maps the remaining turns to Gemini roles.
func buildContents(messages []llms.MessageContent) (string, []*genai.Content) {
	var system []string
	out := make([]*genai.Content, 0, len(messages))
	for _, mc := range messages {
		text := textOf(mc)
		switch mc.Role {
		case llms.ChatMessageTypeSystem:
			system = append(system, text)
		case llms.ChatMessageTypeAI:
			out = append(out, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}})
		default:
			out = append(out, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: text}}})
		}
	}
	return strings.Join(system, "\n"), out
}

func textOf(mc llms.MessageContent) string {
	var parts []string
	for _, p := range mc.Parts {
		if tc, ok := p.(llms.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
