package types

// Skill is one row of the practice skill table. It names a competency and
// describes what a basic, strong and advanced answer looks like.
type Skill struct {
	Name          string `json:"name" yaml:"skill"`
	Description   string `json:"description" yaml:"description"`
	LevelBasic    string `json:"level_basic" yaml:"level_basic"`
	LevelStrong   string `json:"level_strong" yaml:"level_strong"`
	LevelAdvanced string `json:"level_advanced" yaml:"level_advanced"`
}
