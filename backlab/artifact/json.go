package artifact

import (
	"encoding/json"
	"fmt"
)

// EncodeJSON pretty-prints a payload with two-space indentation, the
// format used for the raw response export and the embedded payload
// sections of the report.
func EncodeJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(data), nil
}
