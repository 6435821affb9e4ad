package resolver

import (
	"strings"

	"ficconf/internal/rules"
)

// InExClude parses the resolved value of an include_metadata_* or
// exclude_metadata_* setting.
func (r *Resolver) InExClude(key string) ([]rules.InExRule, error) {
	return rules.ParseInExClude(r.Get(key, "").String())
}

// Replacements parses the resolved replace_metadata setting.
func (r *Resolver) Replacements() ([]rules.Replacement, error) {
	return rules.ParseReplacements(r.Get("replace_metadata", "").String())
}

// CoverSettings parses the resolved generate_cover_settings setting.
func (r *Resolver) CoverSettings() ([]rules.CoverSetting, error) {
	return rules.ParseCoverSettings(r.Get("generate_cover_settings", "").String())
}

// Keys returns every key, with any add_to_ prefix removed, that some section
// in the default lookup order defines. Keys appear in the order they are first
// seen walking from most to least specific.
func (r *Resolver) Keys() []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range r.sections.Names() {
		sec, ok := r.table.Section(name)
		if !ok {
			continue
		}
		for _, k := range sec.Keys() {
			k = strings.TrimPrefix(k, addToPrefix)
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}
