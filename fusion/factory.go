package fusion

import (
	"errors"
	"strings"
)

// NewStrategy constructs a merge strategy by name. The empty name selects
// first_wins. Params carry strategy-specific tuning from config.
func NewStrategy(name string, params map[string]any) (Strategy, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		normalized = "first_wins"
	}
	switch normalized {
	case "first_wins":
		return NewFirstWinsStrategy(), nil
	case "max_score":
		return NewMaxScoreStrategy(), nil
	case "rrf":
		return NewRRFStrategy(lookupInt(params, "k")), nil
	default:
		return nil, errors.New("unsupported fusion strategy: " + normalized)
	}
}

// lookupInt tolerates the numeric types YAML and JSON decoding produce.
func lookupInt(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
