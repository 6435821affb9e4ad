// Package injector fills the [injected] section, the least specific layer,
// from command-line assignments, the environment and dotenv files.
package injector

import (
	"fmt"
	"sort"
	"strings"

	"ficconf/internal/ini"
	"ficconf/internal/priority"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// EnvPrefix marks environment variables that inject a setting:
// FICCONF_SET_TITLEPAGE_ENTRIES=title sets titlepage_entries.
const EnvPrefix = "FICCONF_SET_"

// FromEnviron collects the injected settings in an environ slice. Keys are
// lowercased; later duplicates win.
func FromEnviron(environ []string) map[string]string {
	values := make(map[string]string)
	for _, env := range environ {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		if key == "" {
			continue
		}
		values[key] = value
	}
	return values
}

// ParseAssignments parses key=value arguments.
func ParseAssignments(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment '%s': expected key=value", arg)
		}
		values[strings.ToLower(key)] = value
	}
	return values, nil
}

// ReadDotenv reads a dotenv file. Keys are lowercased.
func ReadDotenv(fs afero.Fs, path string) (map[string]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inject file: %w", err)
	}
	defer f.Close()

	parsed, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("invalid inject file %s: %w", path, err)
	}
	values := make(map[string]string, len(parsed))
	for k, v := range parsed {
		values[strings.ToLower(k)] = v
	}
	return values, nil
}

// Apply stores every value in the injected section of t. Later layers
// override earlier ones. The injected keys are returned sorted.
func Apply(t *ini.Table, layers ...map[string]string) []string {
	merged := make(map[string]string)
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.Set(priority.Injected, k, merged[k])
	}
	return keys
}
