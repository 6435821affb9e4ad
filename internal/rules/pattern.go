package rules

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single match so a backtracking pattern cannot hang
// a check or a resolve.
const matchTimeout = time.Second

// Pattern is a compiled user regular expression. It accepts the backtracking
// syntax INI authors write: lookahead and lookbehind, backreferences, and
// named groups in both (?P<name>...) and (?<name>...) spellings.
type Pattern struct {
	expr string
	re   *regexp2.Regexp
}

// Compile compiles expr into a Pattern.
func Compile(expr string) (*Pattern, error) {
	re, err := regexp2.Compile(translateSyntax(expr), regexp2.None)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = matchTimeout
	return &Pattern{expr: expr, re: re}, nil
}

// String returns the expression as written.
func (p *Pattern) String() string {
	return p.expr
}

// MatchString reports whether s contains a match. A match that times out
// counts as no match.
func (p *Pattern) MatchString(s string) bool {
	ok, err := p.re.MatchString(s)
	return err == nil && ok
}

// ReplaceAll replaces every match in s with repl, where ${1} and ${name}
// refer to groups and $$ is a literal dollar. s is returned unchanged if the
// match times out.
func (p *Pattern) ReplaceAll(s, repl string) string {
	out, err := p.re.Replace(s, repl, -1, -1)
	if err != nil {
		return s
	}
	return out
}

// translateSyntax rewrites (?P<name> to (?<name> and (?P=name) to \k<name>.
// Escaped characters and character classes are copied as they are.
func translateSyntax(expr string) string {
	if !strings.Contains(expr, "(?P") {
		return expr
	}
	var sb strings.Builder
	inClass := false
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '\\' && i+1 < len(expr):
			sb.WriteByte(c)
			sb.WriteByte(expr[i+1])
			i++
		case c == '[' && !inClass:
			inClass = true
			sb.WriteByte(c)
		case c == ']' && inClass:
			inClass = false
			sb.WriteByte(c)
		case !inClass && strings.HasPrefix(expr[i:], "(?P<"):
			sb.WriteString("(?<")
			i += len("(?P<") - 1
		case !inClass && strings.HasPrefix(expr[i:], "(?P="):
			end := strings.IndexByte(expr[i:], ')')
			if end < 0 {
				sb.WriteByte(c)
				continue
			}
			sb.WriteString(`\k<` + expr[i+len("(?P="):i+end] + ">")
			i += end
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
