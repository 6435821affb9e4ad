// Package priority builds the ordered list of section names consulted when
// resolving a setting for a given site and output format.
package priority

import "strings"

// Fixed section names.
const (
	Overrides = "overrides"
	Defaults  = "defaults"
	Injected  = "injected"
)

// SitePrefix is the conventional host prefix toggled when spelling a site
// identifier both with and without it.
const SitePrefix = "www."

// List is an immutable sequence of section names, most specific first.
type List struct {
	names []string
}

// Of wraps names as a List. The slice is copied.
func Of(names ...string) List {
	out := make([]string, len(names))
	copy(out, names)
	return List{names: out}
}

// Names returns a copy of the section names, most specific first.
func (l List) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Len returns the number of sections.
func (l List) Len() int {
	return len(l.names)
}

// At returns the i'th most specific section name.
func (l List) At(i int) string {
	return l.names[i]
}

// Contains reports whether name is part of the list.
func (l List) Contains(name string) bool {
	for _, n := range l.names {
		if n == name {
			return true
		}
	}
	return false
}

func (l List) String() string {
	return "[" + strings.Join(l.names, "] > [") + "]"
}

// SiteSpellings returns the site identifier with and without SitePrefix.
func SiteSpellings(site string) (with, without string) {
	if strings.HasPrefix(site, SitePrefix) {
		return site, strings.TrimPrefix(site, SitePrefix)
	}
	return SitePrefix + site, site
}

// Build returns the lookup order for site, an optional output format (empty
// for none) and the extra sections shared by the site's adapter family.
//
// Layers are stacked from least to most specific; every new layer goes in
// front of the previous ones. For extras declared [P, Q] this makes Q more
// specific than P. An empty site contributes no site sections.
func Build(site, format string, extras []string) List {
	var spellings []string
	if site != "" {
		with, without := SiteSpellings(site)
		spellings = []string{without, with}
	}

	// least specific first, reversed at the end
	stack := []string{Injected, Defaults}
	stack = append(stack, extras...)
	stack = append(stack, spellings...)

	if format != "" {
		stack = append(stack, format)
		for _, extra := range extras {
			stack = append(stack, extra+":"+format)
		}
		for _, s := range spellings {
			stack = append(stack, s+":"+format)
		}
	}
	stack = append(stack, Overrides)

	names := make([]string, len(stack))
	for i, name := range stack {
		names[len(stack)-1-i] = name
	}
	return List{names: names}
}
