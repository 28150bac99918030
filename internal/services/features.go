package services

import (
	"encoding/json"
	"strings"
)

// ParseFeatures reads the features field of a create request. A single
// value is decoded as a JSON array of strings; anything malformed yields an
// empty list. Repeated form values are taken as already split.
func ParseFeatures(values []string) []string {
	switch len(values) {
	case 0:
		return []string{}
	case 1:
		var out []string
		if err := json.Unmarshal([]byte(strings.TrimSpace(values[0])), &out); err != nil {
			return []string{}
		}
		return clean(out)
	default:
		return clean(values)
	}
}

// SplitFeatures reads the features field of an edit request: a JSON array,
// or a comma-joined string. A value that looks like JSON but does not parse
// is rejected rather than split on commas.
func SplitFeatures(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, validationErr("features must be a JSON array of strings or a comma-separated list", nil)
		}
		return clean(out), nil
	}
	return clean(strings.Split(raw, ",")), nil
}

func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
