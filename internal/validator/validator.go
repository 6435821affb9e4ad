// Package validator checks a loaded section table against a schema registry
// and reports every problem it finds as a line-numbered Diagnostic.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"ficconf/internal/ini"
	"ficconf/internal/resolver"
	"ficconf/internal/rules"
	"ficconf/internal/schema"
)

const addToPrefix = "add_to_"

// Keywords whose values are line grammars. Matched as prefixes.
var (
	inExCludeRE     = regexp.MustCompile(`^(add_to_)?(in|ex)clude_metadata_(pre|post)`)
	replaceRE       = regexp.MustCompile(`^(add_to_)?replace_metadata`)
	coverSettingsRE = regexp.MustCompile(`^(add_to_)?generate_cover_settings`)
)

type config struct {
	strictKeywords bool
}

// Option configures Validate.
type Option func(*config)

// WithStrictKeywords also reports keys that are neither catalogued keywords
// nor built from a known metadata entry.
func WithStrictKeywords() Option {
	return func(c *config) {
		c.strictKeywords = true
	}
}

// Validate checks every section and key of t against reg. It collects all
// problems rather than stopping at the first one; sections are visited in
// table order and keys in definition order.
func Validate(t *ini.Table, reg *schema.Registry, opts ...Option) []Diagnostic {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	var extraEntries []string
	if cfg.strictKeywords {
		extraEntries = declaredEntries(t)
	}

	var diags []Diagnostic
	for _, name := range t.Sections() {
		if !reg.IsValidSection(name) {
			diags = append(diags, Diagnostic{
				Pos:     t.SectionPos(name),
				Section: name,
				Message: fmt.Sprintf("Bad Section Name: [%s]", name),
				Hint:    reg.SuggestSection(name),
			})
			continue
		}

		site, format := reg.Decompose(name)
		sec, _ := t.Section(name)
		for _, key := range sec.Keys() {
			value, _ := sec.Get(key)
			d := sectionKey{
				pos:     t.KeyPos(name, key),
				section: name,
				key:     key,
			}
			diags = append(diags, checkKey(reg, d, site, format, value, cfg, extraEntries)...)
		}
	}
	return diags
}

type sectionKey struct {
	pos     ini.Position
	section string
	key     string
}

func (k sectionKey) diag(format string, args ...any) Diagnostic {
	return Diagnostic{
		Pos:     k.pos,
		Section: k.section,
		Key:     k.key,
		Message: fmt.Sprintf(format, args...),
	}
}

func checkKey(reg *schema.Registry, k sectionKey, site, format, value string, cfg config, extraEntries []string) []Diagnostic {
	if err := compileValue(reg, k.key, value); err != nil {
		return []Diagnostic{k.diag("Error:%s in (%s:%s)", err, k.key, value)}
	}

	var diags []Diagnostic
	if opt, ok := reg.SetOption(k.key); ok {
		if !opt.AllowsSite(site) {
			diags = append(diags, k.diag("%s not valid in section [%s] -- only valid in %s sections.",
				k.key, k.section, bracketList(opt.Sites)))
		}
		if !opt.AllowsFormat(format) {
			diags = append(diags, k.diag("%s not valid in section [%s] -- only valid in %s sections.",
				k.key, k.section, bracketList(opt.Formats)))
		}
		if !opt.AllowsValue(value) {
			diags = append(diags, k.diag("%s not a valid value for %s", value, k.key))
		}
		return diags
	}

	if cfg.strictKeywords && !reg.IsKnownKeyword(k.key, extraEntries...) {
		d := k.diag("%s is not a known keyword", k.key)
		d.Hint = reg.SuggestKeyword(k.key)
		diags = append(diags, d)
	}
	return diags
}

// compileValue parses values that carry a line grammar or a regular
// expression, returning the first error.
func compileValue(reg *schema.Registry, key, value string) error {
	var err error
	switch {
	case inExCludeRE.MatchString(key):
		_, err = rules.ParseInExClude(value)
	case replaceRE.MatchString(key):
		_, err = rules.ParseReplacements(value)
	case coverSettingsRE.MatchString(key):
		_, err = rules.ParseCoverSettings(value)
	case !strings.HasPrefix(key, addToPrefix) && reg.IsRegexKeyword(key):
		_, err = rules.Compile(value)
	}
	return err
}

// declaredEntries collects every extra_valid_entries value in t, regardless
// of section.
func declaredEntries(t *ini.Table) []string {
	var out []string
	for _, name := range t.Sections() {
		for _, key := range []string{"extra_valid_entries", addToPrefix + "extra_valid_entries"} {
			if v, ok := t.Lookup(name, key); ok {
				out = append(out, resolver.SplitList(v)...)
			}
		}
	}
	return out
}
