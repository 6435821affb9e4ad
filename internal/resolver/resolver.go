// Package resolver answers setting lookups against a loaded section table,
// walking a priority list of sections from most to least specific.
package resolver

import (
	"strings"
	"unicode"

	"ficconf/internal/ini"
	"ficconf/internal/priority"
)

const (
	addToPrefix     = "add_to_"
	includeInPrefix = "include_in_"
	labelSuffix     = "_label"
)

// Resolver resolves settings for one (site, format) combination. It owns its
// table; callers only read through it, except for Inject.
type Resolver struct {
	table        *ini.Table
	sections     priority.List
	listEntries  map[string]bool
	labels       map[string]string
	validEntries []string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithListEntries sets the fixed names whose values are comma lists.
func WithListEntries(entries []string) Option {
	return func(r *Resolver) {
		for _, e := range entries {
			r.listEntries[e] = true
		}
	}
}

// WithLabels sets the built-in display labels used by Label.
func WithLabels(labels map[string]string) Option {
	return func(r *Resolver) {
		for k, v := range labels {
			r.labels[k] = v
		}
	}
}

// WithValidEntries sets the metadata entries known without configuration.
func WithValidEntries(entries []string) Option {
	return func(r *Resolver) {
		r.validEntries = append(r.validEntries, entries...)
	}
}

// New returns a resolver over table using sections as the default lookup
// order.
func New(table *ini.Table, sections priority.List, opts ...Option) *Resolver {
	r := &Resolver{
		table:       table,
		sections:    sections,
		listEntries: make(map[string]bool),
		labels:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sections returns the default lookup order.
func (r *Resolver) Sections() priority.List {
	return r.sections
}

// Table returns the underlying section table.
func (r *Resolver) Table() *ini.Table {
	return r.table
}

// Inject stores a value in the injected layer, the least specific one. It is
// meant to be called before the first lookup.
func (r *Resolver) Inject(key, value string) {
	r.table.Set(priority.Injected, key, value)
}

// Has reports whether key, or an additive add_to_ key, is set anywhere in the
// default lookup order.
func (r *Resolver) Has(key string) bool {
	return r.HasIn(r.sections, key)
}

// HasIn is Has over an arbitrary lookup order.
func (r *Resolver) HasIn(sections priority.List, key string) bool {
	return Defines(r.table, sections, key) || Defines(r.table, sections, addToPrefix+key)
}

// Get resolves key, falling back to def.
func (r *Resolver) Get(key, def string) Value {
	return r.GetIn(r.sections, key, def)
}

// GetIn resolves key against sections. The most specific section defining key
// wins. Every add_to_<key> value is then appended, least specific first, even
// when the base came from def.
func (r *Resolver) GetIn(sections priority.List, key, def string) Value {
	val := Str(def)
	for i := 0; i < sections.Len(); i++ {
		if v, ok := r.table.Lookup(sections.At(i), key); ok {
			if strings.EqualFold(v, "false") {
				val = False
			} else {
				val = Str(v)
			}
			break
		}
	}

	for i := sections.Len() - 1; i >= 0; i-- {
		if add, ok := r.table.Lookup(sections.At(i), addToPrefix+key); ok {
			val = val.append(add)
		}
	}
	return val
}

// GetList resolves key as a comma list, falling back to def when the list is
// empty.
func (r *Resolver) GetList(key string, def []string) []string {
	return r.GetListIn(r.sections, key, def)
}

// GetListIn is GetList over an arbitrary lookup order.
func (r *Resolver) GetListIn(sections priority.List, key string, def []string) []string {
	list := SplitList(r.GetIn(sections, key, "").String())
	if len(list) == 0 {
		return def
	}
	return list
}

// IsListType reports whether key holds a list: either it is one of the fixed
// list entries, or some section declares include_in_<key>.
func (r *Resolver) IsListType(key string) bool {
	return r.listEntries[key] || r.Has(includeInPrefix+key)
}

// Label returns the display label for a metadata entry: the <entry>_label
// setting, then the built-in label, then the title-cased entry name.
func (r *Resolver) Label(entry string) string {
	if r.Has(entry + labelSuffix) {
		return r.Get(entry+labelSuffix, "").String()
	}
	if label, ok := r.labels[entry]; ok {
		return label
	}
	return titleCase(entry)
}

// ValidMetaList returns the known metadata entries plus extra_valid_entries.
func (r *Resolver) ValidMetaList() []string {
	out := make([]string, 0, len(r.validEntries))
	out = append(out, r.validEntries...)
	return append(out, r.GetList("extra_valid_entries", nil)...)
}

// IsValidMetaEntry reports whether key is in ValidMetaList.
func (r *Resolver) IsValidMetaEntry(key string) bool {
	for _, e := range r.ValidMetaList() {
		if e == key {
			return true
		}
	}
	return false
}

// Defines reports whether any of sections sets key directly in t.
func Defines(t *ini.Table, sections priority.List, key string) bool {
	for i := 0; i < sections.Len(); i++ {
		if _, ok := t.Lookup(sections.At(i), key); ok {
			return true
		}
	}
	return false
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest: "storyUrl" becomes "Storyurl", "num_words" becomes
// "Num_Words".
func titleCase(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevLetter := false
	for _, c := range s {
		switch {
		case unicode.IsLetter(c) && !prevLetter:
			sb.WriteRune(unicode.ToUpper(c))
		case unicode.IsLetter(c):
			sb.WriteRune(unicode.ToLower(c))
		default:
			sb.WriteRune(c)
		}
		prevLetter = unicode.IsLetter(c)
	}
	return sb.String()
}
