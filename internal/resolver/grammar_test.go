package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrammarAccessors(t *testing.T) {
	content := `[defaults]
include_metadata_pre: genre=~Drama
replace_metadata: Sci-Fi=>Science Fiction
generate_cover_settings: category=>Buffy=>buffy.jpg
[epub]
add_to_include_metadata_pre:
 status==Completed
add_to_replace_metadata:
 genre=>Sci-Fi=>SF
`
	r := newResolver(t, content, "example.com", "epub", nil)

	inex, err := r.InExClude("include_metadata_pre")
	require.NoError(t, err)
	require.Len(t, inex, 2)
	assert.Equal(t, []string{"status"}, inex[1].Match.Keys)

	repls, err := r.Replacements()
	require.NoError(t, err)
	assert.Len(t, repls, 2)

	cover, err := r.CoverSettings()
	require.NoError(t, err)
	require.Len(t, cover, 1)
	assert.Equal(t, "buffy.jpg", cover[0].Setting)
}

func TestGrammarAccessors_Error(t *testing.T) {
	r := newResolver(t, "[defaults]\nreplace_metadata: a=>(=>b\n", "example.com", "", nil)
	_, err := r.Replacements()
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	content := "[defaults]\nb: 1\na: 2\n[overrides]\nadd_to_a: 3\nc: 4\n[other.org]\nz: 9\n"
	r := newResolver(t, content, "example.com", "", nil)
	assert.Equal(t, []string{"a", "c", "b"}, r.Keys())
}
