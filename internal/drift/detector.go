// Package drift compares two settings snapshots.
package drift

import (
	"sort"
	"strings"
	"time"

	"ficconf/internal/artifact"
	"ficconf/internal/baseline"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DriftType is the kind of change to one setting.
type DriftType string

const (
	DriftAdded   DriftType = "added"   // only in the current settings
	DriftRemoved DriftType = "removed" // only in the baseline
	DriftChanged DriftType = "changed"
)

// KeyDrift is the change to a single setting. LineDiff is set for changed
// values that span several lines.
type KeyDrift struct {
	Key           string    `json:"key"`
	Type          DriftType `json:"type"`
	BaselineValue string    `json:"baselineValue,omitempty"`
	CurrentValue  string    `json:"currentValue,omitempty"`
	LineDiff      []string  `json:"lineDiff,omitempty"`
}

// DriftReport is the full comparison.
type DriftReport struct {
	HasDrift        bool       `json:"hasDrift"`
	BaselineName    string     `json:"baselineName"`
	BaselineVersion string     `json:"baselineVersion"`
	CurrentVersion  string     `json:"currentVersion"`
	BaselineTime    time.Time  `json:"baselineTime"`
	SectionsChanged bool       `json:"sectionsChanged"`
	Changes         []KeyDrift `json:"changes"`
}

// Detect compares current against the baseline's snapshot.
func Detect(b baseline.Baseline, current artifact.Settings) DriftReport {
	report := Compare(b.Settings, current)
	report.BaselineName = b.Name
	report.BaselineTime = b.Timestamp
	return report
}

// Compare reports every key whose value differs between two snapshots, in
// key order.
func Compare(base, current artifact.Settings) DriftReport {
	report := DriftReport{
		BaselineVersion: base.Version,
		CurrentVersion:  current.Version,
		SectionsChanged: strings.Join(base.Sections, "\x00") != strings.Join(current.Sections, "\x00"),
		Changes:         []KeyDrift{},
	}

	if base.Version == current.Version && base.Version != "" {
		report.HasDrift = report.SectionsChanged
		return report
	}

	allKeys := make(map[string]bool)
	for k := range base.Values {
		allKeys[k] = true
	}
	for k := range current.Values {
		allKeys[k] = true
	}
	keys := make([]string, 0, len(allKeys))
	for k := range allKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		baseVal, inBase := base.Values[key]
		curVal, inCurrent := current.Values[key]

		switch {
		case inBase && !inCurrent:
			report.Changes = append(report.Changes, KeyDrift{
				Key:           key,
				Type:          DriftRemoved,
				BaselineValue: baseVal,
			})
		case !inBase && inCurrent:
			report.Changes = append(report.Changes, KeyDrift{
				Key:          key,
				Type:         DriftAdded,
				CurrentValue: curVal,
			})
		case baseVal != curVal:
			change := KeyDrift{
				Key:           key,
				Type:          DriftChanged,
				BaselineValue: baseVal,
				CurrentValue:  curVal,
			}
			if strings.Contains(baseVal, "\n") || strings.Contains(curVal, "\n") {
				change.LineDiff = lineDiff(baseVal, curVal)
			}
			report.Changes = append(report.Changes, change)
		}
	}

	report.HasDrift = len(report.Changes) > 0 || report.SectionsChanged
	return report
}

// lineDiff returns the lines of a line-level diff, each prefixed with "+",
// "-" or " ".
func lineDiff(before, after string) []string {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out []string
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, prefix+line)
		}
	}
	return out
}
