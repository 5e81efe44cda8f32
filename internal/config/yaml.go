package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// tickd configs are YAML by convention (tickd.yaml), but decoding happens
// through the stdlib JSON decoder because it is the one that can reject
// unknown fields. toStrictJSON bridges the two: YAML input is unmarshaled
// loosely, map keys are stringified, and the result is re-marshaled as JSON
// for the strict decode in Manager.Parse. Anything without a yaml/yml
// extension is treated as JSON already.
func toStrictJSON(path string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return data, nil
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}

	j, err := json.Marshal(stringifyKeys(v))
	if err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return j, nil
}

// stringifyKeys rewrites every map key to a string, recursively. YAML allows
// non-string keys; JSON does not, and json.Marshal would fail on them.
func stringifyKeys(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = stringifyKeys(v)
		}
		return m
	case map[string]any:
		for k, v := range x {
			x[k] = stringifyKeys(v)
		}
		return x
	case []any:
		for i := range x {
			x[i] = stringifyKeys(x[i])
		}
		return x
	default:
		return in
	}
}
