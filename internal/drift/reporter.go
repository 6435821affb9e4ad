package drift

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatCLI formats the report for a terminal. It returns "" when nothing
// drifted.
func FormatCLI(report DriftReport) string {
	if !report.HasDrift {
		return ""
	}

	var sb strings.Builder
	if report.BaselineName != "" {
		fmt.Fprintf(&sb, "Settings drifted since baseline '%s':\n", report.BaselineName)
	} else {
		sb.WriteString("Settings differ:\n")
	}
	if report.SectionsChanged {
		sb.WriteString("  * section lookup order changed\n")
	}

	for _, change := range report.Changes {
		switch change.Type {
		case DriftAdded:
			fmt.Fprintf(&sb, "  + %s: (new) -> %s\n", change.Key, oneLine(change.CurrentValue))
		case DriftRemoved:
			fmt.Fprintf(&sb, "  - %s: %s -> (removed)\n", change.Key, oneLine(change.BaselineValue))
		case DriftChanged:
			if change.LineDiff != nil {
				fmt.Fprintf(&sb, "  ~ %s:\n", change.Key)
				for _, line := range change.LineDiff {
					fmt.Fprintf(&sb, "      %s\n", line)
				}
				continue
			}
			fmt.Fprintf(&sb, "  ~ %s: %s -> %s\n", change.Key, change.BaselineValue, change.CurrentValue)
		}
	}
	return sb.String()
}

// FormatCI formats the report as GitHub Actions warning annotations against
// file.
func FormatCI(report DriftReport, file string) string {
	if !report.HasDrift {
		return ""
	}

	var sb strings.Builder
	for _, change := range report.Changes {
		var msg string
		switch change.Type {
		case DriftAdded:
			msg = fmt.Sprintf("Settings drift: %s added (value: %s)", change.Key, oneLine(change.CurrentValue))
		case DriftRemoved:
			msg = fmt.Sprintf("Settings drift: %s removed (was: %s)", change.Key, oneLine(change.BaselineValue))
		case DriftChanged:
			msg = fmt.Sprintf("Settings drift: %s changed from '%s' to '%s'",
				change.Key, oneLine(change.BaselineValue), oneLine(change.CurrentValue))
		}
		fmt.Fprintf(&sb, "::warning file=%s::%s\n", file, msg)
	}
	return sb.String()
}

// FormatJSON formats the report as indented JSON.
func FormatJSON(report DriftReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}
