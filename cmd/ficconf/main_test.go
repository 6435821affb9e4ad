package main

import (
	"bytes"
	"strings"
	"testing"

	"ficconf/internal/artifact"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personal = `[defaults]
titlepage_entries: category,genre
is_adult: false

[www.fanfiction.net]
add_to_titlepage_entries: ,status

[epub]
titlepage_entries: title
`

type result struct {
	code   int
	stdout string
	stderr string
}

func newFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	return fs
}

func runWith(fs afero.Fs, environ []string, args ...string) result {
	var stdout, stderr bytes.Buffer
	environ = append([]string{"FICCONF_BASELINE_DIR=/baselines"}, environ...)
	args = append([]string{"--no-color"}, args...)
	code := run(args, environ, fs, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestCheck_Clean(t *testing.T) {
	fs := newFs(t, map[string]string{"/cfg/personal.ini": personal})

	res := runWith(fs, nil, "check", "-c", "/cfg/personal.ini")
	assert.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "ok: 1 source(s) checked")
}

func TestCheck_Diagnostics(t *testing.T) {
	fs := newFs(t, map[string]string{"/cfg/personal.ini": "[defaults]\ncollect_series: maybe\n\n[defualts]\n"})

	res := runWith(fs, nil, "check", "-c", "/cfg/personal.ini")
	assert.Equal(t, exitProblems, res.code)
	assert.Contains(t, res.stdout, "/cfg/personal.ini:2: maybe not a valid value for collect_series")
	assert.Contains(t, res.stdout, "/cfg/personal.ini:4: Bad Section Name: [defualts] (did you mean [defaults]?)")
	assert.Contains(t, res.stderr, "configuration check failed: 2 problems")
}

func TestCheck_CIAnnotations(t *testing.T) {
	fs := newFs(t, map[string]string{"/cfg/personal.ini": "[defaults]\ncollect_series: maybe\n"})

	res := runWith(fs, []string{"CI=true"}, "check", "-c", "/cfg/personal.ini")
	assert.Equal(t, exitProblems, res.code)
	assert.Equal(t, "::error file=/cfg/personal.ini,line=2::maybe not a valid value for collect_series\n", res.stdout)
}

func TestCheck_Strict(t *testing.T) {
	fs := newFs(t, map[string]string{"/cfg/personal.ini": "[defaults]\ncolect_series: true\n"})

	assert.Equal(t, exitOK, runWith(fs, nil, "check", "-c", "/cfg/personal.ini").code)

	res := runWith(fs, nil, "check", "--strict", "-c", "/cfg/personal.ini")
	assert.Equal(t, exitProblems, res.code)
	assert.Contains(t, res.stdout, "colect_series is not a known keyword (did you mean collect_series?)")
}

func TestCheck_MalformedSource(t *testing.T) {
	fs := newFs(t, map[string]string{"/cfg/personal.ini": "[defaults]\njust some words\n"})

	res := runWith(fs, nil, "check", "-c", "/cfg/personal.ini")
	assert.Equal(t, exitLoad, res.code)
	assert.Contains(t, res.stderr, "source contains parsing errors: /cfg/personal.ini")

	res = runWith(fs, nil, "check", "--ci", "-c", "/cfg/personal.ini")
	assert.Equal(t, exitLoad, res.code)
	assert.Contains(t, res.stdout, "::error file=/cfg/personal.ini,line=2::malformed line")
}

func TestCheck_SitesFile(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/cfg/personal.ini": "[www.mysite.org:epub]\ninclude_images: true\n",
		"/cfg/sites.yaml":   "sites:\n  - mysite.org\n",
	})

	assert.Equal(t, exitProblems, runWith(fs, nil, "check", "-c", "/cfg/personal.ini").code)
	res := runWith(fs, nil, "check", "--sites", "/cfg/sites.yaml", "-c", "/cfg/personal.ini")
	assert.Equal(t, exitOK, res.code, res.stdout)
}

func TestCheck_ConfigFromEnvironment(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/cfg/defaults.ini": "[defaults]\ncollect_series: true\n",
		"/cfg/personal.ini": "[nowhere]\n",
	})

	res := runWith(fs, []string{"FICCONF_CONFIG=/cfg/defaults.ini:/cfg/personal.ini"}, "check")
	assert.Equal(t, exitProblems, res.code)
	assert.Contains(t, res.stdout, "/cfg/personal.ini:1: Bad Section Name: [nowhere]")
}

func TestGet_Precedence(t *testing.T) {
	fs := newFs(t, map[string]string{"/cfg/personal.ini": personal})
	get := func(args ...string) result {
		return runWith(fs, nil, append([]string{"get", "-c", "/cfg/personal.ini"}, args...)...)
	}

	res := get("titlepage_entries", "--site", "www.fanfiction.net", "--format", "epub")
	assert.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "title,status\n", res.stdout)

	res = get("titlepage_entries", "--site", "fanfiction.net")
	assert.Equal(t, "category,genre,status\n", res.stdout)

	res = get("titlepage_entries", "--list", "--site", "fanfiction.net", "--format", "epub")
	assert.Equal(t, "title\nstatus\n", res.stdout)

	res = get("is_adult")
	assert.Equal(t, "false\n", res.stdout)
}

func TestGet_Missing(t *testing.T) {
	fs := newFs(t, map[string]string{"/cfg/personal.ini": personal})

	res := runWith(fs, nil, "get", "-c", "/cfg/personal.ini", "nothing_here")
	assert.Equal(t, exitNotFound, res.code)
	assert.Contains(t, res.stderr, "nothing_here is not set")

	res = runWith(fs, nil, "get", "-c", "/cfg/personal.ini", "nothing_here", "--default", "fallback")
	assert.Equal(t, exitOK, res.code)
	assert.Equal(t, "fallback\n", res.stdout)
}

func TestGet_InjectedLayers(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/cfg/personal.ini": personal,
		"/cfg/inject.env":   "COVER=dotenv\nEXTRA=dotenv\nOTHER=dotenv\n",
	})
	environ := []string{"FICCONF_SET_COVER=env", "FICCONF_SET_EXTRA=env"}
	get := func(key string) string {
		res := runWith(fs, environ, "get", "-c", "/cfg/personal.ini",
			"--inject-file", "/cfg/inject.env", "--set", "cover=flag", key)
		require.Equal(t, exitOK, res.code, res.stderr)
		return strings.TrimSpace(res.stdout)
	}

	assert.Equal(t, "flag", get("cover"))
	assert.Equal(t, "env", get("extra"))
	assert.Equal(t, "dotenv", get("other"))
}

func TestGet_InjectedIsLeastSpecific(t *testing.T) {
	fs := newFs(t, map[string]string{"/cfg/personal.ini": personal})

	res := runWith(fs, nil, "get", "-c", "/cfg/personal.ini", "--set", "is_adult=true", "is_adult")
	assert.Equal(t, "false\n", res.stdout)
}

func TestGet_BadAssignment(t *testing.T) {
	fs := newFs(t, map[string]string{"/cfg/personal.ini": personal})

	res := runWith(fs, nil, "get", "-c", "/cfg/personal.ini", "--set", "novalue", "is_adult")
	assert.Equal(t, exitProblems, res.code)
	assert.Contains(t, res.stderr, "invalid assignment 'novalue'")
}

func TestEntries(t *testing.T) {
	fs := newFs(t, map[string]string{"/cfg/personal.ini": "[defaults]\nextra_valid_entries: fandoms\ninclude_in_fandoms: category\nfandoms_label: Fandoms\n"})

	res := runWith(fs, nil, "entries", "-c", "/cfg/personal.ini")
	assert.Equal(t, exitOK, res.code, res.stderr)
	assert.Regexp(t, `(?m)^fandoms\s+list\s+Fandoms$`, res.stdout)
	assert.Regexp(t, `(?m)^category\s+list\s+Category$`, res.stdout)
}

func TestSections(t *testing.T) {
	fs := newFs(t, map[string]string{"/cfg/personal.ini": personal})

	res := runWith(fs, nil, "sections", "-c", "/cfg/personal.ini", "--site", "fanfiction.net", "--format", "epub", "--extra", "P")
	assert.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, []string{
		"  overrides",
		"  www.fanfiction.net:epub",
		"  fanfiction.net:epub",
		"  P:epub",
		"* epub",
		"* www.fanfiction.net",
		"  fanfiction.net",
		"  P",
		"* defaults",
		"  injected",
	}, strings.Split(strings.TrimRight(res.stdout, "\n"), "\n"))

	res = runWith(fs, nil, "sections", "-c", "/cfg/personal.ini", "--valid")
	assert.Contains(t, strings.Split(res.stdout, "\n"), "www.fanfiction.net:epub")
}

func TestDumpAndDiff(t *testing.T) {
	fs := newFs(t, map[string]string{"/cfg/personal.ini": personal})
	scope := []string{"-c", "/cfg/personal.ini", "--site", "www.fanfiction.net", "--format", "epub"}

	res := runWith(fs, nil, append([]string{"dump"}, scope...)...)
	require.Equal(t, exitOK, res.code, res.stderr)
	settings, err := artifact.FromJSON([]byte(res.stdout))
	require.NoError(t, err)
	assert.Equal(t, "title,status", settings.Values["titlepage_entries"])
	assert.Equal(t, artifact.FalseValue, settings.Values["is_adult"])
	assert.Equal(t, "www.fanfiction.net", settings.Site)

	res = runWith(fs, nil, append([]string{"dump", "-o", "/out/snap.json"}, scope...)...)
	require.Equal(t, exitOK, res.code, res.stderr)

	res = runWith(fs, nil, append([]string{"diff", "--against", "/out/snap.json", "--exit-code"}, scope...)...)
	assert.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "No drift\n", res.stdout)

	require.NoError(t, afero.WriteFile(fs, "/cfg/personal.ini",
		[]byte(strings.Replace(personal, "titlepage_entries: title", "titlepage_entries: title,author", 1)), 0644))

	res = runWith(fs, nil, append([]string{"diff", "--against", "/out/snap.json", "--exit-code"}, scope...)...)
	assert.Equal(t, exitProblems, res.code)
	assert.Contains(t, res.stdout, "~ titlepage_entries: title,status -> title,author,status")

	res = runWith(fs, nil, append([]string{"diff", "--against", "/out/snap.json", "--ci"}, scope...)...)
	assert.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, "::warning file=/cfg/personal.ini::Settings drift: titlepage_entries changed")
}

func TestDiff_RequiresOneSource(t *testing.T) {
	fs := newFs(t, map[string]string{"/cfg/personal.ini": personal})

	res := runWith(fs, nil, "diff", "-c", "/cfg/personal.ini")
	assert.Equal(t, exitProblems, res.code)
	assert.Contains(t, res.stderr, "exactly one of --baseline or --against")
}

func TestBaselineLifecycle(t *testing.T) {
	fs := newFs(t, map[string]string{"/cfg/personal.ini": personal})
	scope := []string{"-c", "/cfg/personal.ini", "--site", "fanfiction.net"}

	res := runWith(fs, nil, append([]string{"dump", "--save-baseline", "ffnet"}, scope...)...)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Baseline 'ffnet' saved")

	res = runWith(fs, nil, "baseline", "list")
	assert.Equal(t, exitOK, res.code)
	assert.True(t, strings.HasPrefix(res.stdout, "ffnet  sha256:"), res.stdout)

	res = runWith(fs, nil, "baseline", "show", "ffnet")
	assert.Contains(t, res.stdout, "Name:      ffnet")
	assert.Contains(t, res.stdout, "  titlepage_entries: category,genre,status")

	res = runWith(fs, nil, append([]string{"diff", "--baseline", "ffnet", "--json"}, scope...)...)
	assert.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"hasDrift": false`)

	assert.Equal(t, exitOK, runWith(fs, nil, "baseline", "delete", "ffnet").code)
	assert.Equal(t, exitNotFound, runWith(fs, nil, "baseline", "delete", "ffnet").code)
	assert.Equal(t, exitNotFound, runWith(fs, nil, append([]string{"diff", "--baseline", "ffnet"}, scope...)...).code)

	res = runWith(fs, nil, "baseline", "list")
	assert.Equal(t, "No baselines found\n", res.stdout)
}

func TestBadLogLevel(t *testing.T) {
	fs := newFs(t, map[string]string{"/cfg/personal.ini": personal})

	res := runWith(fs, nil, "--log-level", "loud", "check", "-c", "/cfg/personal.ini")
	assert.Equal(t, exitProblems, res.code)
	assert.Contains(t, res.stderr, "unknown log level 'loud'")
}

func TestUnknownCommand(t *testing.T) {
	res := runWith(afero.NewMemMapFs(), nil, "frobnicate")
	assert.Equal(t, exitProblems, res.code)
	assert.Contains(t, res.stderr, "unknown command")
}

func TestCheck_UsesXDGConfigHomeFromEnviron(t *testing.T) {
	fs := newFs(t, map[string]string{"/xdg/ficconf/personal.ini": "[defaults]\ncollect_series: maybe\n"})

	res := runWith(fs, []string{"HOME=/home/u", "XDG_CONFIG_HOME=/xdg"}, "check")
	assert.Equal(t, exitProblems, res.code)
	assert.Contains(t, res.stdout, "/xdg/ficconf/personal.ini:2: maybe not a valid value for collect_series")
}

func TestCheckWatch_RegistryErrorIsReported(t *testing.T) {
	fs := newFs(t, map[string]string{"/cfg/personal.ini": personal})

	res := runWith(fs, nil, "check", "--watch", "--sites", "/missing.yaml", "-c", "/cfg/personal.ini")
	assert.Equal(t, exitLoad, res.code)
	assert.Contains(t, res.stderr, "failed to read site list")
	assert.NotContains(t, res.stderr, "no configuration sources to watch")
}
