// Package schema holds the catalogue of valid section names, keywords and
// enumerated option values that a loaded configuration is checked against.
package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"ficconf/internal/priority"
)

// bulkLoadSet is the sites_from name bound to the bulk-load site set given to
// NewRegistry.
const bulkLoadSet = "bulk_load"

var teststoryRE = regexp.MustCompile(`^teststory:(defaults|[0-9]+)$`)

// SetOption is an option with an enumerated set of legal values. Nil Sites or
// Formats mean the option is not restricted on that axis.
type SetOption struct {
	Name    string
	Sites   []string
	Formats []string
	Values  []string
}

// AllowsSite reports whether the option may be set in a section for site.
// An empty site (a section not qualified by a site) only satisfies an
// unrestricted option.
func (o SetOption) AllowsSite(site string) bool {
	return o.Sites == nil || contains(o.Sites, site)
}

// AllowsFormat is AllowsSite for the format axis.
func (o SetOption) AllowsFormat(format string) bool {
	return o.Formats == nil || contains(o.Formats, format)
}

// AllowsValue reports whether v is one of the legal values.
func (o SetOption) AllowsValue(v string) bool {
	return contains(o.Values, v)
}

// Registry is the immutable, derived form of a Catalogue plus the site
// identifiers registered by adapters.
type Registry struct {
	formats       []string
	fixed         []string
	sites         []string
	listEntries   []string
	scalarEntries []string
	labels        map[string]string
	validSections map[string]bool
	setOptions    map[string]SetOption
	regexKeywords map[string]bool
	entries       map[string]bool
	literalNames  []string
	keywordRE     *regexp.Regexp
	entryRE       []*regexp.Regexp
}

type registryConfig struct {
	sites    []string
	bulkLoad []string
}

// Option adds registration data to a Registry.
type Option func(*registryConfig)

// WithSites registers additional site identifiers.
func WithSites(sites ...string) Option {
	return func(c *registryConfig) {
		c.sites = append(c.sites, sites...)
	}
}

// WithBulkLoadSites registers additional sites that accept bulk_load.
func WithBulkLoadSites(sites ...string) Option {
	return func(c *registryConfig) {
		c.bulkLoad = append(c.bulkLoad, sites...)
	}
}

// NewRegistry derives a Registry from cat. Sites and bulk-load sites listed
// in the catalogue are always registered; opts add to them.
func NewRegistry(cat Catalogue, opts ...Option) (*Registry, error) {
	cfg := registryConfig{
		sites:    append([]string(nil), cat.Sites...),
		bulkLoad: append([]string(nil), cat.BulkLoadSites...),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Registry{
		formats:       append([]string(nil), cat.Formats...),
		fixed:         append([]string(nil), cat.FixedSections...),
		sites:         dedupe(cfg.sites),
		listEntries:   append([]string(nil), cat.ListEntries...),
		scalarEntries: append([]string(nil), cat.ScalarEntries...),
		labels:        make(map[string]string, len(cat.Labels)),
		setOptions:    make(map[string]SetOption, len(cat.SetOptions)),
		regexKeywords: make(map[string]bool, len(cat.RegexKeywords)),
		entries:       make(map[string]bool),
	}
	for k, v := range cat.Labels {
		r.labels[k] = v
	}
	for _, k := range cat.RegexKeywords {
		r.regexKeywords[strings.ToLower(k)] = true
	}
	for _, e := range r.ValidEntries() {
		r.entries[strings.ToLower(e)] = true
	}

	r.validSections = r.buildValidSections()

	for name, spec := range cat.SetOptions {
		opt := SetOption{Name: name, Formats: spec.Formats}
		if spec.Boolean {
			opt.Values = append(opt.Values, "true", "false")
		}
		opt.Values = append(opt.Values, spec.Values...)
		switch {
		case spec.SitesFrom == bulkLoadSet:
			opt.Sites = normalizeSites(cfg.bulkLoad)
		case spec.SitesFrom != "":
			set, ok := cat.SiteSets[spec.SitesFrom]
			if !ok {
				return nil, fmt.Errorf("set option '%s': unknown site set '%s'", name, spec.SitesFrom)
			}
			opt.Sites = normalizeSites(set)
		case spec.Sites != nil:
			opt.Sites = normalizeSites(spec.Sites)
		}
		r.setOptions[strings.ToLower(name)] = opt
	}

	var err error
	if r.keywordRE, err = compileKeywords(cat.Keywords); err != nil {
		return nil, err
	}
	for _, tmpl := range cat.EntryKeywords {
		if !strings.Contains(tmpl, "%s") {
			return nil, fmt.Errorf("entry keyword '%s' has no %%s placeholder", tmpl)
		}
		re, err := regexp.Compile("(?i)^(?:add_to_)?" + strings.Replace(tmpl, "%s", "([a-z0-9_]+)", 1) + "$")
		if err != nil {
			return nil, fmt.Errorf("entry keyword '%s': %w", tmpl, err)
		}
		r.entryRE = append(r.entryRE, re)
	}

	for _, kw := range cat.Keywords {
		if regexp.QuoteMeta(kw) == kw {
			r.literalNames = append(r.literalNames, strings.ToLower(kw))
		}
	}
	for e := range r.entries {
		r.literalNames = append(r.literalNames, e)
	}
	sort.Strings(r.literalNames)

	return r, nil
}

func (r *Registry) buildValidSections() map[string]bool {
	siteSections := append([]string(nil), r.fixed...)
	for _, site := range r.sites {
		with, without := priority.SiteSpellings(site)
		siteSections = append(siteSections, with, without)
	}

	valid := make(map[string]bool)
	for _, f := range r.formats {
		valid[f] = true
	}
	for _, s := range siteSections {
		valid[s] = true
		for _, f := range r.formats {
			valid[s+":"+f] = true
		}
	}
	return valid
}

func compileKeywords(keywords []string) (*regexp.Regexp, error) {
	if len(keywords) == 0 {
		return regexp.MustCompile(`^$.`), nil
	}
	re, err := regexp.Compile("(?i)^(?:add_to_)?(?:" + strings.Join(keywords, "|") + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid keyword catalogue: %w", err)
	}
	return re, nil
}

// Formats returns the output format identifiers.
func (r *Registry) Formats() []string {
	return append([]string(nil), r.formats...)
}

// Sites returns the registered site identifiers.
func (r *Registry) Sites() []string {
	return append([]string(nil), r.sites...)
}

// ListEntries returns the metadata entries that are always lists.
func (r *Registry) ListEntries() []string {
	return append([]string(nil), r.listEntries...)
}

// ScalarEntries returns the scalar metadata entries.
func (r *Registry) ScalarEntries() []string {
	return append([]string(nil), r.scalarEntries...)
}

// ValidEntries returns list entries followed by scalar entries.
func (r *Registry) ValidEntries() []string {
	out := make([]string, 0, len(r.listEntries)+len(r.scalarEntries))
	out = append(out, r.listEntries...)
	return append(out, r.scalarEntries...)
}

// Labels returns the built-in display labels.
func (r *Registry) Labels() map[string]string {
	out := make(map[string]string, len(r.labels))
	for k, v := range r.labels {
		out[k] = v
	}
	return out
}

// IsFormat reports whether name is an output format identifier.
func (r *Registry) IsFormat(name string) bool {
	return contains(r.formats, name)
}

// IsFixedSection reports whether name is one of defaults, overrides, injected.
func (r *Registry) IsFixedSection(name string) bool {
	return contains(r.fixed, name)
}

// IsValidSection reports whether name may appear as a section header.
func (r *Registry) IsValidSection(name string) bool {
	return r.validSections[name] || teststoryRE.MatchString(name)
}

// ValidSections returns every valid section name except the teststory
// pattern, sorted.
func (r *Registry) ValidSections() []string {
	out := make([]string, 0, len(r.validSections))
	for s := range r.validSections {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// SetOption returns the enumerated option named key.
func (r *Registry) SetOption(key string) (SetOption, bool) {
	opt, ok := r.setOptions[strings.ToLower(key)]
	return opt, ok
}

// IsRegexKeyword reports whether key's value is a single regular expression.
func (r *Registry) IsRegexKeyword(key string) bool {
	return r.regexKeywords[strings.ToLower(strings.TrimPrefix(key, "add_to_"))]
}

// IsKnownKeyword reports whether key is a catalogued keyword, a metadata
// entry, or an entry keyword built from a metadata entry or one of extra.
func (r *Registry) IsKnownKeyword(key string, extra ...string) bool {
	key = strings.ToLower(key)
	if r.keywordRE.MatchString(key) || r.entries[strings.TrimPrefix(key, "add_to_")] {
		return true
	}
	for _, re := range r.entryRE {
		m := re.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		for _, entry := range m[1:] {
			if r.entries[entry] || containsFold(extra, entry) {
				return true
			}
		}
	}
	return false
}

// Decompose splits a section name into its site and format parts. Every
// "www." is dropped from the site; fixed sections have no site.
func (r *Registry) Decompose(section string) (site, format string) {
	name := strings.ReplaceAll(section, priority.SitePrefix, "")
	if i := strings.Index(name, ":"); i >= 0 {
		site, format = name[:i], name[i+1:]
	} else if r.IsFormat(name) {
		return "", name
	} else {
		site = name
	}
	if r.IsFixedSection(site) {
		site = ""
	}
	return site, format
}

func normalizeSites(sites []string) []string {
	out := make([]string, 0, len(sites))
	for _, s := range sites {
		out = append(out, strings.ReplaceAll(s, priority.SitePrefix, ""))
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
