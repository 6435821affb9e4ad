// Package rules parses and evaluates the small line grammars embedded in
// setting values: include/exclude metadata filters, metadata replacements and
// cover generation settings.
package rules

// Op is a match operator.
type Op string

const (
	OpRegex      Op = "=~"
	OpNotRegex   Op = "!~"
	OpEqual      Op = "=="
	OpNotEqual   Op = "!="
	opLegacyLink Op = "=>" // older spelling of =~
)

// operators in the order a line is tried against them.
var operators = []Op{opLegacyLink, OpRegex, OpNotRegex, OpEqual, OpNotEqual}

// spaceEscape stands for a literal space in match and replacement text, so
// leading and trailing spaces survive value trimming.
const spaceEscape = `\s`

// Match is one `keys op text` term.
type Match struct {
	Keys []string
	Op   Op
	Text string
	re   *Pattern
}

// InExRule is a line of an include_metadata_* or exclude_metadata_* setting:
// a match plus an optional `&&` condition on other metadata.
type InExRule struct {
	Line  string
	Match Match
	Cond  *Match
}

// Replacement is a line of replace_metadata. Nil Keys applies to every
// metadata entry.
type Replacement struct {
	Line        string
	Keys        []string
	Pattern     *Pattern
	Replacement string
	CondKey     string
	CondPattern *Pattern
}

// CoverSetting is a line of generate_cover_settings.
type CoverSetting struct {
	Template string
	Pattern  *Pattern
	Setting  string
}

// Lookup returns the metadata values stored under key.
type Lookup func(key string) []string
