package ini

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
)

var (
	sectionRE = regexp.MustCompile(`^\[([^\]]+)\]`)
	optionRE  = regexp.MustCompile(`^([^:=\s][^:=]*)\s*([:=])\s*(.*)$`)
)

const utf8BOM = "\uFEFF"

// parser holds the state of one pass over one source.
type parser struct {
	table   *Table
	source  string
	current *Section
	key     string
	errs    *ParseError
}

// Parse reads one source into t. Sections and keys already present in t are
// extended or overwritten key by key. Malformed lines do not stop parsing;
// they are collected and returned together as a *ParseError once the source
// is exhausted.
func Parse(t *Table, source string, r io.Reader) error {
	p := &parser{table: t, source: source}
	br := bufio.NewReader(r)

	lineno := 0
	for {
		raw, err := br.ReadString('\n')
		if len(raw) > 0 {
			lineno++
			if lineno == 1 {
				raw = strings.TrimPrefix(raw, utf8BOM)
			}
			p.line(lineno, strings.TrimRight(raw, "\r\n"))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", source, err)
		}
	}

	if p.errs != nil {
		return p.errs
	}
	return nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(t *Table, source, content string) error {
	return Parse(t, source, strings.NewReader(content))
}

func (p *parser) line(lineno int, line string) {
	if strings.TrimSpace(line) == "" || line[0] == '#' || line[0] == ';' {
		return
	}
	// legacy "rem" comments, only when flush left
	if (line[0] == 'r' || line[0] == 'R') && strings.EqualFold(strings.Fields(line)[0], "rem") {
		return
	}

	if isSpace(line[0]) && p.current != nil && p.key != "" {
		if v := strings.TrimSpace(line); v != "" {
			p.current.appendLine(p.key, v)
		}
		return
	}

	if m := sectionRE.FindStringSubmatch(line); m != nil {
		name := m[1]
		if name == reservedDefault {
			name = DefaultSection
		}
		p.current = p.table.ensure(name, Position{File: p.source, Line: lineno})
		p.key = ""
		return
	}

	if p.current == nil {
		p.fail(lineno, line, true)
		return
	}

	m := optionRE.FindStringSubmatch(line)
	if m == nil {
		p.fail(lineno, line, false)
		return
	}

	key := strings.ToLower(strings.TrimRightFunc(m[1], unicode.IsSpace))
	value := stripInlineComment(m[3])
	value = strings.TrimSpace(value)
	if value == `""` {
		value = ""
	}
	p.table.define(p.current, key, value, Position{File: p.source, Line: lineno})
	p.key = key
}

// stripInlineComment drops everything from the first ';' onward, but only
// when that ';' follows whitespace.
func stripInlineComment(value string) string {
	pos := strings.IndexByte(value, ';')
	if pos > 0 && isSpace(value[pos-1]) {
		return value[:pos]
	}
	return value
}

func (p *parser) fail(lineno int, line string, outside bool) {
	if p.errs == nil {
		p.errs = &ParseError{Source: p.source}
	}
	p.errs.add(lineno, line, outside)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\v' || b == '\f'
}
