package unminify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// formatJSON re-indents a JSON document with two spaces. Key order and number literals are kept
// exactly as written.
func formatJSON(code string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(code)), "", "  "); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	return buf.String(), nil
}
