// Package skills loads the practice skill matrix and draws per-session samples from it.
package skills

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Soypete/star-interview-bot/types"
)

// ErrNotEnoughSkills is returned when a table holds fewer rows than a session draws.
var ErrNotEnoughSkills = errors.New("not enough skills in table")

// Table is the immutable skill matrix loaded at startup.
type Table struct {
	skills []types.Skill

	mu  sync.Mutex
	rng *rand.Rand
}

// NewTable wraps skills in a Table. A nil rng uses the global source.
func NewTable(skills []types.Skill, rng *rand.Rand) *Table {
	return &Table{
		skills: append([]types.Skill(nil), skills...),
		rng:    rng,
	}
}

// Load reads a skill table from a .csv, .yaml or .yml file.
func Load(path string, rng *rand.Rand) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open skill table %s: %w", path, err)
	}
	defer f.Close()

	var skills []types.Skill
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		skills, err = ReadCSV(f)
	case ".yaml", ".yml":
		skills, err = ReadYAML(f)
	default:
		return nil, fmt.Errorf("unsupported skill table format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read skill table %s: %w", path, err)
	}
	if len(skills) == 0 {
		return nil, fmt.Errorf("skill table %s has no rows", path)
	}
	return NewTable(skills, rng), nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.skills)
}

// All returns a copy of every row in table order.
func (t *Table) All() []types.Skill {
	return append([]types.Skill(nil), t.skills...)
}

// Draw picks n distinct rows uniformly at random, without replacement.
func (t *Table) Draw(n int) ([]types.Skill, error) {
	if n <= 0 {
		return nil, fmt.Errorf("draw size must be positive, got %d", n)
	}
	if n > len(t.skills) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrNotEnoughSkills, n, len(t.skills))
	}

	perm := t.perm(len(t.skills))
	drawn := make([]types.Skill, n)
	for i := range drawn {
		drawn[i] = t.skills[perm[i]]
	}
	return drawn, nil
}

func (t *Table) perm(n int) []int {
	if t.rng == nil {
		return rand.Perm(n)
	}
	// *rand.Rand is not safe for concurrent use
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rng.Perm(n)
}
