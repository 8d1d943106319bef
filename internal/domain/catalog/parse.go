package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseGeneration reads a generation from its dataset spelling.
func ParseGeneration(s string) (Generation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STD", "STANDARD":
		return GenerationStandard, nil
	case "DX", "DELUXE":
		return GenerationDeluxe, nil
	default:
		return 0, fmt.Errorf("unknown generation %q", s)
	}
}

// ParseDifficulty reads a difficulty tier from its dataset spelling.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BASIC":
		return DifficultyBasic, nil
	case "ADVANCED":
		return DifficultyAdvanced, nil
	case "EXPERT":
		return DifficultyExpert, nil
	case "MASTER":
		return DifficultyMaster, nil
	case "RE:MASTER", "REMASTER":
		return DifficultyReMaster, nil
	default:
		return 0, fmt.Errorf("unknown difficulty %q", s)
	}
}

// ParseLevel reads a display level like "13" or "13+".
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	plus := strings.HasSuffix(s, "+")
	base, err := strconv.Atoi(strings.TrimSuffix(s, "+"))
	if err != nil {
		return Level{}, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return NewLevel(base, plus)
}
