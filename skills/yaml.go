package skills

import (
	"fmt"
	"io"
	"strings"

	"github.com/Soypete/star-interview-bot/types"
	"gopkg.in/yaml.v3"
)

type yamlTable struct {
	Skills []types.Skill `yaml:"skills"`
}

// ReadYAML parses a skill table of the form
//
//	skills:
//	  - skill: Stakeholder Management
//	    description: ...
//	    level_basic: ...
func ReadYAML(r io.Reader) ([]types.Skill, error) {
	var table yamlTable
	if err := yaml.NewDecoder(r).Decode(&table); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse skill yaml: %w", err)
	}

	skills := make([]types.Skill, 0, len(table.Skills))
	for i, s := range table.Skills {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			return nil, fmt.Errorf("entry %d: skill is required", i)
		}
		skills = append(skills, s)
	}
	return skills, nil
}
