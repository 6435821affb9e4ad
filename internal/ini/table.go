// Package ini reads the sectioned key/value configuration format and keeps
// track of where every section and key was defined.
package ini

import (
	"fmt"
	"strings"
)

// DefaultSection is the global-default section. A [DEFAULT] header is folded
// into it.
const DefaultSection = "defaults"

// reservedDefault is the header name that aliases DefaultSection.
const reservedDefault = "DEFAULT"

// Position identifies the source line a section or key was defined on.
// The zero Position means the location is unknown, e.g. for values that were
// injected programmatically.
type Position struct {
	File string
	Line int
}

// IsValid reports whether the position refers to a real line.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	switch {
	case !p.IsValid():
		return "-"
	case p.File == "":
		return fmt.Sprintf("line %d", p.Line)
	default:
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	}
}

// Section is an insertion-ordered mapping of lowercase key to raw value.
type Section struct {
	Name   string
	keys   []string
	values map[string]string
}

func newSection(name string) *Section {
	return &Section{Name: name, values: make(map[string]string)}
}

// Get returns the raw value for key. Keys are matched case-insensitively.
func (s *Section) Get(key string) (string, bool) {
	v, ok := s.values[strings.ToLower(key)]
	return v, ok
}

// Keys returns the section's keys in the order they were first defined.
func (s *Section) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of keys in the section.
func (s *Section) Len() int {
	return len(s.keys)
}

func (s *Section) set(key, value string) {
	key = strings.ToLower(key)
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

func (s *Section) appendLine(key, line string) {
	s.values[key] = s.values[key] + "\n" + line
}

type keyRef struct {
	section string
	key     string
}

// Table is the merged result of one or more parsed sources: sections in the
// order they were first seen, plus the line index used for diagnostics.
type Table struct {
	order      []string
	sections   map[string]*Section
	sectionPos map[string]Position
	keyPos     map[keyRef]Position
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		sections:   make(map[string]*Section),
		sectionPos: make(map[string]Position),
		keyPos:     make(map[keyRef]Position),
	}
}

// Section returns the named section.
func (t *Table) Section(name string) (*Section, bool) {
	s, ok := t.sections[name]
	return s, ok
}

// Sections returns all section names in first-seen order.
func (t *Table) Sections() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of sections.
func (t *Table) Len() int {
	return len(t.order)
}

// Lookup returns the raw value of key in section.
func (t *Table) Lookup(section, key string) (string, bool) {
	s, ok := t.sections[section]
	if !ok {
		return "", false
	}
	return s.Get(key)
}

// Set stores a value without a source position, creating the section if
// needed. It is used for programmatically injected settings.
func (t *Table) Set(section, key, value string) {
	t.ensure(section, Position{}).set(key, value)
}

// SectionPos returns where the section header was first seen.
func (t *Table) SectionPos(section string) Position {
	return t.sectionPos[section]
}

// KeyPos returns where key was last defined within section.
func (t *Table) KeyPos(section, key string) Position {
	return t.keyPos[keyRef{section, strings.ToLower(key)}]
}

func (t *Table) ensure(name string, pos Position) *Section {
	if s, ok := t.sections[name]; ok {
		return s
	}
	s := newSection(name)
	t.sections[name] = s
	t.order = append(t.order, name)
	if pos.IsValid() {
		t.sectionPos[name] = pos
	}
	return s
}

func (t *Table) define(s *Section, key, value string, pos Position) {
	s.set(key, value)
	t.keyPos[keyRef{s.Name, strings.ToLower(key)}] = pos
}
