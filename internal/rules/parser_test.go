package rules

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInExClude(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		keys    []string
		op      Op
		text    string
		hasCond bool
	}{
		{"regex", "category,genre=~^Harry", []string{"category", "genre"}, OpRegex, "^Harry", false},
		{"negated regex", "rating!~Adult", []string{"rating"}, OpNotRegex, "Adult", false},
		{"equal", "status==Completed", []string{"status"}, OpEqual, "Completed", false},
		{"not equal", "status!=In-Progress", []string{"status"}, OpNotEqual, "In-Progress", false},
		{"legacy arrow", "genre=>Drama", []string{"genre"}, OpRegex, "Drama", false},
		{"space escape", `ships=~\sx\s`, []string{"ships"}, OpRegex, " x ", false},
		{"condition", "genre=~Drama&&category=~Buffy", []string{"genre"}, OpRegex, "Drama", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := ParseInExClude(tt.line)
			require.NoError(t, err)
			require.Len(t, rules, 1)
			m := rules[0].Match
			assert.Equal(t, tt.keys, m.Keys)
			assert.Equal(t, tt.op, m.Op)
			assert.Equal(t, tt.text, m.Text)
			assert.Equal(t, tt.hasCond, rules[0].Cond != nil)
		})
	}
}

func TestParseInExClude_MultiLine(t *testing.T) {
	rules, err := ParseInExClude("genre=~Drama\n\nstatus==Completed\n")
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestParseInExClude_Errors(t *testing.T) {
	_, err := ParseInExClude("genre=~(unclosed")
	assert.ErrorContains(t, err, "missing closing )")

	_, err = ParseInExClude("just words")
	assert.True(t, errors.Is(err, ErrNoOperator))

	_, err = ParseInExClude("a=~b&&c=~d&&e=~f")
	assert.True(t, errors.Is(err, ErrTooManyConditions))

	_, err = ParseInExClude("a=~b&&c")
	assert.ErrorContains(t, err, "condition")
}

func TestParseReplacements(t *testing.T) {
	repls, err := ParseReplacements(`
genre,category=>Sci-Fi=>Science Fiction
^(.*)\s-\sDraft$=>\1
noarrow line
status=>In-Progress=>WIP&&category=~Buffy
`)
	require.NoError(t, err)
	require.Len(t, repls, 3)

	assert.Equal(t, []string{"genre", "category"}, repls[0].Keys)
	assert.Equal(t, "Sci-Fi", repls[0].Pattern.String())
	assert.Equal(t, "Science Fiction", repls[0].Replacement)

	assert.Nil(t, repls[1].Keys)
	assert.Equal(t, "^(.*) - Draft$", repls[1].Pattern.String())
	assert.Equal(t, "${1}", repls[1].Replacement)

	assert.Equal(t, "category", repls[2].CondKey)
	assert.Equal(t, "Buffy", repls[2].CondPattern.String())
}

func TestParseReplacements_Errors(t *testing.T) {
	_, err := ParseReplacements("a=>b=>c=>d")
	assert.ErrorContains(t, err, "at most 3 parts")

	_, err = ParseReplacements("x=>[=>y")
	assert.Error(t, err)

	_, err = ParseReplacements("a=>b&&nooperator")
	assert.True(t, errors.Is(err, ErrNoOperator))

	_, err = ParseReplacements("a=>b&&k=~(")
	assert.Error(t, err)
}

func TestParseCoverSettings(t *testing.T) {
	settings, err := ParseCoverSettings("category => Buffy => buffy.jpg\nnot a rule\n")
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, "category", settings[0].Template)
	assert.Equal(t, "Buffy", settings[0].Pattern.String())
	assert.Equal(t, "buffy.jpg", settings[0].Setting)

	_, err = ParseCoverSettings("a => b")
	assert.ErrorContains(t, err, "expected 3 parts")

	_, err = ParseCoverSettings("a => ( => c")
	assert.Error(t, err)
}

func TestExpandTemplate(t *testing.T) {
	tests := map[string]string{
		`plain`:       "plain",
		`\1-\2`:       "${1}-${2}",
		`\g<name>!`:   "${name}!",
		`cost $5`:     "cost $$5",
		`a\\b`:        `a\b`,
		`line\nbreak`: "line\nbreak",
		`\g<unclosed`: `\g<unclosed`,
		`\12`:         "${12}",
	}
	for in, want := range tests {
		assert.Equal(t, want, expandTemplate(in), in)
	}
}

// A parsed match formats back to a line that parses to the same match.
func TestMatch_FormatRoundTrip_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("format then parse", prop.ForAll(
		func(keys []string, op Op, text string) bool {
			if len(keys) == 0 {
				return true
			}
			m, err := parseMatch(Match{Keys: keys, Op: op, Text: text}.String())
			if err != nil {
				return false
			}
			if m.Op != op || m.Text != text || len(m.Keys) != len(keys) {
				return false
			}
			for i := range keys {
				if m.Keys[i] != keys[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(3, gen.RegexMatch(`[a-z][a-zA-Z]{0,8}`)),
		gen.OneConstOf(OpRegex, OpNotRegex, OpEqual, OpNotEqual),
		gen.RegexMatch(`[A-Za-z][A-Za-z ]{0,10}`),
	))

	properties.TestingRun(t)
}
