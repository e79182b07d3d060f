package ai

import (
	"encoding/json"
	"strconv"
	"strings"
)

// stripCodeFence unwraps a ```-fenced block, dropping an optional "json"
// language tag. Models fence their output often enough that this is the
// common path, not the exception.
func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}

	parts := strings.Split(raw, "```")
	if len(parts) < 2 {
		return raw
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}

// decodeFacts parses an extraction response into a flat string map. Scalar
// values are coerced to strings the way the service tends to emit them;
// nulls and nested structures are skipped rather than failing the whole
// response.
func decodeFacts(raw string) (map[string]string, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return nil, err
	}

	facts := make(map[string]string, len(payload))
	for key, value := range payload {
		switch v := value.(type) {
		case string:
			facts[key] = v
		case float64:
			facts[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			facts[key] = strconv.FormatBool(v)
		default:
			// null, arrays and objects carry nothing the profile can hold
		}
	}
	return facts, nil
}
