package skills

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Soypete/star-interview-bot/types"
)

// Column headers of the skill matrix export.
const (
	ColumnSkill         = "Skill"
	ColumnDescription   = "Description"
	ColumnLevelBasic    = "Level Basic"
	ColumnLevelStrong   = "Level Strong"
	ColumnLevelAdvanced = "Level Advanced"
)

// ErrMissingColumn is returned when the header lacks one of the expected columns.
var ErrMissingColumn = errors.New("missing column")

var requiredColumns = []string{
	ColumnSkill,
	ColumnDescription,
	ColumnLevelBasic,
	ColumnLevelStrong,
	ColumnLevelAdvanced,
}

// ReadCSV parses a skill matrix with a header row. Extra columns are ignored
// and rows with an empty Skill cell are skipped.
func ReadCSV(r io.Reader) ([]types.Skill, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		// spreadsheet exports often start with a byte order mark
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		index[h] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	var skills []types.Skill
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}

		cell := func(col string) string {
			i := index[col]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		name := cell(ColumnSkill)
		if name == "" {
			continue
		}
		skills = append(skills, types.Skill{
			Name:          name,
			Description:   cell(ColumnDescription),
			LevelBasic:    cell(ColumnLevelBasic),
			LevelStrong:   cell(ColumnLevelStrong),
			LevelAdvanced: cell(ColumnLevelAdvanced),
		})
	}
	return skills, nil
}
