// Package ai defines the prompts the STAR interview bot sends to the language model and the
// interface a generation backend has to implement.
package ai

import "context"

// Task names the kind of generation a prompt asks for. It is used for logging and metrics.
type Task string

const (
	TaskQuestion     Task = "question"
	TaskEvaluation   Task = "evaluation"
	TaskSampleAnswer Task = "sample_answer"
	TaskResources    Task = "resources"
	TaskHint         Task = "hint"
)

// DefaultTemperature is the sampling temperature used for every prompt.
const DefaultTemperature = 0.7

// Generator sends a single user prompt to the generation service and returns the first completion.
// Every call is exactly one upstream request: no retries and no caching.
type Generator interface {
	Generate(ctx context.Context, task Task, prompt string) (string, error)
}
