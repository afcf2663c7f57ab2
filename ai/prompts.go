package ai

import (
	"fmt"

	"github.com/Soypete/star-interview-bot/types"
)

const (
	// DefaultRole is the position the interview questions are written for.
	DefaultRole = "Project Manager in Software/IT"
	// DefaultAudience is the role in plural form, used when recommending resources.
	DefaultAudience = "Project Managers in IT/Software"
)

// Prompter fills the fixed prompt templates with skill fields.
type Prompter struct {
	Role     string
	Audience string
}

// DefaultPrompter targets software project managers.
var DefaultPrompter = Prompter{Role: DefaultRole, Audience: DefaultAudience}

// NewPrompter builds a Prompter, falling back to the defaults for empty values.
func NewPrompter(role, audience string) Prompter {
	p := DefaultPrompter
	if role != "" {
		p.Role = role
	}
	if audience != "" {
		p.Audience = audience
	}
	return p
}

// Question asks for a situational STAR question that stops after Situation and Task.
func (p Prompter) Question(skill types.Skill) string {
	return fmt.Sprintf("Generate a situational interview question using the STAR format for a %s.\n"+
		"Focus on the skill: %s.\n"+
		"Only describe the Situation and Task. End with: 'What would you do?'\n"+
		"Skill description: %s",
		p.Role, skill.Name, skill.Description)
}

// Evaluation asks the model to grade an answer against the three level descriptions.
func (p Prompter) Evaluation(skill types.Skill, answer string) string {
	return fmt.Sprintf("Evaluate this answer based on the STAR format for the skill: %s.\n"+
		"Candidate's answer: %s\n"+
		"Evaluation criteria:\n"+
		"- Basic level: %s\n"+
		"- Strong level: %s\n"+
		"- Advanced level: %s\n"+
		"Provide the predicted result (R), the estimated level (Basic/Strong/Advanced), and a short feedback.",
		skill.Name, answer, skill.LevelBasic, skill.LevelStrong, skill.LevelAdvanced)
}

// SampleAnswer asks for an example STAR answer with most of the weight on the Action.
func (p Prompter) SampleAnswer(skill types.Skill) string {
	return fmt.Sprintf("Generate a sample STAR-format answer for the skill %s, focusing on the Action part. Skill description: %s",
		skill.Name, skill.Description)
}

// Resources asks for books, courses and videos for the skill.
func (p Prompter) Resources(skill types.Skill) string {
	return fmt.Sprintf("Provide a list of recommended books, courses, and videos to improve the skill: %s (for %s).",
		skill.Name, p.Audience)
}

// Hint asks for a short tip on approaching the question.
func (p Prompter) Hint(skill types.Skill) string {
	return fmt.Sprintf("Give a short tip or clue on how to answer a question related to the skill: %s\nSkill description: %s",
		skill.Name, skill.Description)
}

// QuestionPrompt builds the question prompt with the default role.
func QuestionPrompt(skill types.Skill) string { return DefaultPrompter.Question(skill) }

// EvaluationPrompt builds the evaluation prompt with the default role.
func EvaluationPrompt(skill types.Skill, answer string) string {
	return DefaultPrompter.Evaluation(skill, answer)
}

// SampleAnswerPrompt builds the sample answer prompt.
func SampleAnswerPrompt(skill types.Skill) string { return DefaultPrompter.SampleAnswer(skill) }

// ResourcesPrompt builds the resources prompt with the default audience.
func ResourcesPrompt(skill types.Skill) string { return DefaultPrompter.Resources(skill) }

// HintPrompt builds the hint prompt.
func HintPrompt(skill types.Skill) string { return DefaultPrompter.Hint(skill) }
