// Package artifact snapshots the effective settings for one site and format
// and gives the snapshot a content hash.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"ficconf/internal/resolver"
)

// FalseValue is how the false sentinel is recorded.
const FalseValue = "false"

// Settings is the resolved value of every key visible from one lookup order.
type Settings struct {
	Version  string            `json:"version"` // sha256:hex of Values
	Site     string            `json:"site"`
	Format   string            `json:"format,omitempty"`
	Sections []string          `json:"sections"` // most specific first
	Values   map[string]string `json:"values"`
}

// Generate resolves every key the resolver's sections define. Additive
// add_to_ keys are folded into their base key.
func Generate(r *resolver.Resolver, site, format string) Settings {
	values := make(map[string]string)
	for _, key := range r.Keys() {
		v := r.Get(key, "")
		if v.IsFalse() {
			values[key] = FalseValue
			continue
		}
		values[key] = v.String()
	}

	return Settings{
		Version:  ComputeVersion(values),
		Site:     site,
		Format:   format,
		Sections: r.Sections().Names(),
		Values:   values,
	}
}

// ComputeVersion computes the SHA-256 hash of values in canonical form,
// prefixed with "sha256:".
func ComputeVersion(values map[string]string) string {
	hash := sha256.Sum256(canonicalValuesJSON(values))
	return "sha256:" + hex.EncodeToString(hash[:])
}

// Keys returns the setting names, sorted.
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s.Values))
	for k := range s.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToJSON serializes the snapshot as indented JSON.
func (s Settings) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// FromJSON parses a snapshot written by ToJSON.
func FromJSON(data []byte) (Settings, error) {
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}
	if s.Values == nil {
		s.Values = map[string]string{}
	}
	return s, nil
}

// canonicalValuesJSON encodes values with sorted keys and no whitespace.
func canonicalValuesJSON(values map[string]string) []byte {
	if len(values) == 0 {
		return []byte("{}")
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}
		keyJSON, _ := json.Marshal(k)
		valueJSON, _ := json.Marshal(values[k])
		result = append(result, keyJSON...)
		result = append(result, ':')
		result = append(result, valueJSON...)
	}
	return append(result, '}')
}
