package validator

import (
	"fmt"
	"strings"

	"ficconf/internal/ini"
)

// Diagnostic is a single problem found in a loaded configuration. Pos is the
// zero Position when the offending line is unknown.
type Diagnostic struct {
	Pos     ini.Position
	Section string
	Key     string // empty for section-level problems
	Message string
	Hint    string // a suggested replacement name, if any
}

// FormatDiagnostic formats d as "<position>: <message>", followed by a
// suggestion when one is known.
func FormatDiagnostic(d Diagnostic) string {
	msg := fmt.Sprintf("%s: %s", d.Pos, d.Message)
	if d.Hint == "" {
		return msg
	}
	if d.Key == "" {
		return fmt.Sprintf("%s (did you mean [%s]?)", msg, d.Hint)
	}
	return fmt.Sprintf("%s (did you mean %s?)", msg, d.Hint)
}

// FormatDiagnostics formats every diagnostic, one per element.
func FormatDiagnostics(diags []Diagnostic) []string {
	messages := make([]string, len(diags))
	for i, d := range diags {
		messages[i] = FormatDiagnostic(d)
	}
	return messages
}

// Summary returns a one-line count of diagnostics, or "" when there are none.
func Summary(diags []Diagnostic) string {
	switch len(diags) {
	case 0:
		return ""
	case 1:
		return "configuration check failed: 1 problem"
	default:
		return fmt.Sprintf("configuration check failed: %d problems", len(diags))
	}
}

func bracketList(names []string) string {
	return "[" + strings.Join(names, "], [") + "]"
}
