package loader

import (
	"errors"
	"path/filepath"
	"testing"

	"ficconf/internal/ini"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0644))
	}
	return fs
}

func TestLoad_LaterSourcesOverride(t *testing.T) {
	fs := memFS(t, map[string]string{
		"/cfg/defaults.ini": "[defaults]\na: 1\nb: 1\n",
		"/cfg/personal.ini": "[defaults]\nb: 2\n",
	})

	res, err := New(fs).Load([]string{"/cfg/defaults.ini", "/cfg/personal.ini"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/cfg/defaults.ini", "/cfg/personal.ini"}, res.Read)

	a, _ := res.Table.Lookup("defaults", "a")
	b, _ := res.Table.Lookup("defaults", "b")
	assert.Equal(t, "1", a)
	assert.Equal(t, "2", b)
	assert.Equal(t, ini.Position{File: "/cfg/personal.ini", Line: 2}, res.Table.KeyPos("defaults", "b"))
}

func TestLoad_MissingSourcesSkipped(t *testing.T) {
	fs := memFS(t, map[string]string{"/cfg/personal.ini": "[defaults]\nk: v\n"})

	res, err := New(fs).Load([]string{"/nope/defaults.ini", "/cfg/personal.ini", "/cfg/*.missing"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/cfg/personal.ini"}, res.Read)
}

func TestLoad_NothingFound(t *testing.T) {
	res, err := New(afero.NewMemMapFs()).Load([]string{"/a.ini", "/b.ini"})
	require.NoError(t, err)
	assert.Empty(t, res.Read)
	assert.Zero(t, res.Table.Len())
}

func TestLoad_Glob(t *testing.T) {
	fs := memFS(t, map[string]string{
		"/conf.d/20-site.ini":        "[defaults]\nk: second\n",
		"/conf.d/10-base.ini":        "[defaults]\nk: first\nonly: base\n",
		"/conf.d/notes.txt":          "not ini",
		"/conf.d/nested/30-deep.ini": "[epub]\nk: deep\n",
	})

	res, err := New(fs).Load([]string{"/conf.d/*.ini"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.FromSlash("/conf.d/10-base.ini"),
		filepath.FromSlash("/conf.d/20-site.ini"),
	}, res.Read)
	k, _ := res.Table.Lookup("defaults", "k")
	assert.Equal(t, "second", k)

	res, err = New(fs).Load([]string{"/conf.d/**/*.ini"})
	require.NoError(t, err)
	assert.Len(t, res.Read, 3)
	_, ok := res.Table.Section("epub")
	assert.True(t, ok)
}

func TestLoad_DuplicateSourcesReadOnce(t *testing.T) {
	fs := memFS(t, map[string]string{"/p.ini": "[defaults]\nk: v\n"})
	res, err := New(fs).Load([]string{"/p.ini", "/./p.ini"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/p.ini"}, res.Read)
}

func TestLoad_ParseErrorsAccumulated(t *testing.T) {
	fs := memFS(t, map[string]string{
		"/a.ini": "outside\n[defaults]\nok: 1\n",
		"/b.ini": "[defaults]\n= nokey\n",
		"/c.ini": "[epub]\nfine: yes\n",
	})

	res, err := New(fs).Load([]string{"/a.ini", "/b.ini", "/c.ini"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ini.ErrMalformed))
	assert.Equal(t, []string{"/a.ini", "/b.ini", "/c.ini"}, res.Read)

	var pe *ini.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "/a.ini", pe.Source)
	assert.Contains(t, err.Error(), "/b.ini")

	v, _ := res.Table.Lookup("epub", "fine")
	assert.Equal(t, "yes", v, "sources after a bad one are still read")
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/from-process")
	assert.Equal(t, []string{
		filepath.Join("/xdg", "ficconf", "defaults.ini"),
		filepath.Join("/xdg", "ficconf", "personal.ini"),
		"defaults.ini",
		"personal.ini",
	}, DefaultPaths([]string{"HOME=/home/u", "XDG_CONFIG_HOME=/xdg"}))
}

func TestDefaultPaths_EmptyXDGFallsBack(t *testing.T) {
	paths := DefaultPaths([]string{"XDG_CONFIG_HOME="})
	require.GreaterOrEqual(t, len(paths), 2)
	assert.Equal(t, []string{"defaults.ini", "personal.ini"}, paths[len(paths)-2:])
}
