package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNoOperator is returned for a match term without a known operator.
	ErrNoOperator = errors.New("no match operator")
	// ErrTooManyConditions is returned when a line has more than one &&.
	ErrTooManyConditions = errors.New("more than one && condition")
)

const condSeparator = "&&"

// ParseInExClude parses an include/exclude metadata setting, one rule per
// non-empty line.
func ParseInExClude(setting string) ([]InExRule, error) {
	var out []InExRule
	for _, line := range strings.Split(setting, "\n") {
		if line == "" {
			continue
		}
		rule, err := parseInExLine(line)
		if err != nil {
			return nil, fmt.Errorf("line '%s': %w", line, err)
		}
		out = append(out, rule)
	}
	return out, nil
}

func parseInExLine(line string) (InExRule, error) {
	rule := InExRule{Line: line}
	body, cond, hasCond := strings.Cut(line, condSeparator)
	if hasCond {
		if strings.Contains(cond, condSeparator) {
			return rule, ErrTooManyConditions
		}
		m, err := parseMatch(cond)
		if err != nil {
			return rule, fmt.Errorf("condition: %w", err)
		}
		rule.Cond = &m
	}
	m, err := parseMatch(body)
	if err != nil {
		return rule, err
	}
	rule.Match = m
	return rule, nil
}

// parseMatch splits a term at the first operator it contains.
func parseMatch(term string) (Match, error) {
	for _, op := range operators {
		keys, text, ok := strings.Cut(term, string(op))
		if !ok {
			continue
		}
		m := Match{
			Keys: splitKeys(keys),
			Op:   op,
			Text: strings.ReplaceAll(text, spaceEscape, " "),
		}
		if op == opLegacyLink {
			m.Op = OpRegex
		}
		if m.Op == OpRegex || m.Op == OpNotRegex {
			re, err := Compile(m.Text)
			if err != nil {
				return Match{}, err
			}
			m.re = re
		}
		return m, nil
	}
	return Match{}, ErrNoOperator
}

func splitKeys(s string) []string {
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		keys = append(keys, strings.TrimSpace(p))
	}
	return keys
}

// ParseReplacements parses a replace_metadata setting. Each line is
// `[keys=>]regex=>replacement` with an optional `&&key=~regex` condition;
// lines without => are ignored.
func ParseReplacements(setting string) ([]Replacement, error) {
	var out []Replacement
	for _, line := range strings.Split(setting, "\n") {
		r, ok, err := parseReplacementLine(line)
		if err != nil {
			return nil, fmt.Errorf("replace_metadata line '%s': %w", line, err)
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func parseReplacementLine(line string) (Replacement, bool, error) {
	r := Replacement{Line: line}
	body, cond, hasCond := strings.Cut(line, condSeparator)
	if hasCond {
		if strings.Contains(cond, condSeparator) {
			return r, false, ErrTooManyConditions
		}
		key, pattern, ok := strings.Cut(cond, string(OpRegex))
		if !ok {
			return r, false, fmt.Errorf("condition: %w", ErrNoOperator)
		}
		re, err := Compile(strings.TrimSpace(pattern))
		if err != nil {
			return r, false, err
		}
		r.CondKey = strings.TrimSpace(key)
		r.CondPattern = re
	}

	parts := strings.Split(body, "=>")
	var pattern string
	switch len(parts) {
	case 1:
		return r, false, nil
	case 2:
		pattern, r.Replacement = parts[0], parts[1]
	case 3:
		r.Keys = splitKeys(parts[0])
		pattern, r.Replacement = parts[1], parts[2]
	default:
		return r, false, fmt.Errorf("expected at most 3 parts, got %d", len(parts))
	}
	if pattern == "" {
		return r, false, nil
	}

	re, err := Compile(strings.ReplaceAll(pattern, spaceEscape, " "))
	if err != nil {
		return r, false, err
	}
	r.Pattern = re
	r.Replacement = expandTemplate(strings.ReplaceAll(r.Replacement, spaceEscape, " "))
	return r, true, nil
}

// expandTemplate rewrites backslash group references (\1, \g<name>) into the
// ${1} form Pattern.ReplaceAll understands and escapes literal dollars.
func expandTemplate(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '$':
			sb.WriteString("$$")
		case c == '\\' && i+1 < len(s) && isDigit(s[i+1]):
			j := i + 1
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			n, _ := strconv.Atoi(s[i+1 : j])
			fmt.Fprintf(&sb, "${%d}", n)
			i = j - 1
		case c == '\\' && strings.HasPrefix(s[i+1:], "g<"):
			end := strings.IndexByte(s[i:], '>')
			if end < 0 {
				sb.WriteByte(c)
				continue
			}
			fmt.Fprintf(&sb, "${%s}", s[i+3:i+end])
			i += end
		case c == '\\' && i+1 < len(s) && s[i+1] == '\\':
			sb.WriteByte('\\')
			i++
		case c == '\\' && i+1 < len(s) && s[i+1] == 'n':
			sb.WriteByte('\n')
			i++
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ParseCoverSettings parses generate_cover_settings. Lines without => are
// ignored; the rest must be exactly `template => regexp => setting`.
func ParseCoverSettings(setting string) ([]CoverSetting, error) {
	var out []CoverSetting
	for _, line := range strings.Split(setting, "\n") {
		if !strings.Contains(line, "=>") {
			continue
		}
		parts := strings.Split(line, "=>")
		if len(parts) != 3 {
			return nil, fmt.Errorf("generate_cover_settings line '%s': expected 3 parts, got %d", line, len(parts))
		}
		re, err := Compile(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("generate_cover_settings line '%s': %w", line, err)
		}
		out = append(out, CoverSetting{
			Template: strings.TrimSpace(parts[0]),
			Pattern:  re,
			Setting:  strings.TrimSpace(parts[2]),
		})
	}
	return out, nil
}

// String formats a match back to its `keys op text` form.
func (m Match) String() string {
	return strings.Join(m.Keys, ",") + string(m.Op) + strings.ReplaceAll(m.Text, " ", spaceEscape)
}
