package ai

import (
	"strings"
	"testing"

	"github.com/Soypete/star-interview-bot/types"
	"github.com/stretchr/testify/assert"
)

var testSkill = types.Skill{
	Name:          "Stakeholder Management",
	Description:   "Aligning expectations across business and engineering",
	LevelBasic:    "Keeps stakeholders informed",
	LevelStrong:   "Manages conflicting priorities",
	LevelAdvanced: "Shapes portfolio-level decisions",
}

func TestPromptsContainFields(t *testing.T) {
	answer := "I set up a weekly sync and a RAID log."
	tests := []struct {
		name   string
		prompt string
		want   []string
	}{
		{
			name:   "question",
			prompt: QuestionPrompt(testSkill),
			want:   []string{testSkill.Name, testSkill.Description, DefaultRole, "Only describe the Situation and Task", "End with: 'What would you do?'"},
		},
		{
			name:   "evaluation",
			prompt: EvaluationPrompt(testSkill, answer),
			want:   []string{testSkill.Name, answer, testSkill.LevelBasic, testSkill.LevelStrong, testSkill.LevelAdvanced, "(Basic/Strong/Advanced)"},
		},
		{
			name:   "sample answer",
			prompt: SampleAnswerPrompt(testSkill),
			want:   []string{testSkill.Name, testSkill.Description, "focusing on the Action part"},
		},
		{
			name:   "resources",
			prompt: ResourcesPrompt(testSkill),
			want:   []string{testSkill.Name, DefaultAudience, "books, courses, and videos"},
		},
		{
			name:   "hint",
			prompt: HintPrompt(testSkill),
			want:   []string{testSkill.Name, testSkill.Description, "short tip"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, w := range tt.want {
				assert.Contains(t, tt.prompt, w)
			}
		})
	}
}

func TestQuestionPromptExact(t *testing.T) {
	want := "Generate a situational interview question using the STAR format for a Project Manager in Software/IT.\n" +
		"Focus on the skill: Stakeholder Management.\n" +
		"Only describe the Situation and Task. End with: 'What would you do?'\n" +
		"Skill description: Aligning expectations across business and engineering"
	assert.Equal(t, want, QuestionPrompt(testSkill))
}

func TestNewPrompter(t *testing.T) {
	p := NewPrompter("Engineering Manager", "")
	assert.True(t, strings.Contains(p.Question(testSkill), "for a Engineering Manager."))
	assert.Equal(t, DefaultAudience, p.Audience)

	assert.Equal(t, DefaultPrompter, NewPrompter("", ""))
}
