package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSkills(n int) []Skill {
	skills := make([]Skill, n)
	for i := range skills {
		skills[i] = Skill{Name: string(rune('A' + i))}
	}
	return skills
}

func TestSessionLifecycle(t *testing.T) {
	s := NewSession("user-1", testSkills(2), time.Now())
	assert.Equal(t, StateAwaitingQuestion, s.State)
	assert.False(t, s.HasQuestion())
	assert.Empty(t, s.Results)

	skill, ok := s.NextSkill()
	require.True(t, ok)
	s.SetCurrentQuestion(skill, "What would you do?")
	s.MarkHintUsed()
	assert.True(t, s.HintUsed)
	assert.Equal(t, StateAwaitingAnswer, s.State)

	s.AppendResult("Level: Strong")
	s.Advance()
	assert.Equal(t, 1, s.CurrentIndex)
	assert.Equal(t, StateAwaitingQuestion, s.State)
	assert.True(t, s.HasQuestion(), "current skill survives the answer so sample answers still work")

	skill, ok = s.NextSkill()
	require.True(t, ok)
	s.SetCurrentQuestion(skill, "second")
	assert.False(t, s.HintUsed, "a new question resets the hint")

	s.Advance()
	_, ok = s.NextSkill()
	assert.False(t, ok)
	assert.True(t, s.Exhausted())
}

func TestSessionClone(t *testing.T) {
	s := NewSession("user-1", testSkills(3), time.Now())
	s.SetCurrentQuestion(s.Skills[0], "q")
	s.AppendResult("r1")

	c := s.Clone()
	c.Skills[0].Name = "changed"
	c.CurrentSkill.Name = "changed"
	c.AppendResult("r2")

	assert.Equal(t, "A", s.Skills[0].Name)
	assert.Equal(t, "A", s.CurrentSkill.Name)
	assert.Len(t, s.Results, 1)
	assert.Len(t, c.Results, 2)
}
