package schema

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var defaultCatalogue []byte

// Catalogue is the static description of every known keyword, entry and
// section component. It is the raw material a Registry is built from.
type Catalogue struct {
	Formats       []string              `yaml:"formats"`
	FixedSections []string              `yaml:"fixed_sections"`
	ListEntries   []string              `yaml:"list_entries"`
	ScalarEntries []string              `yaml:"scalar_entries"`
	Labels        map[string]string     `yaml:"labels"`
	Keywords      []string              `yaml:"keywords"`
	EntryKeywords []string              `yaml:"entry_keywords"`
	RegexKeywords []string              `yaml:"regex_keywords"`
	SetOptions    map[string]OptionSpec `yaml:"set_options"`
	SiteSets      map[string][]string   `yaml:"site_sets"`
	Sites         []string              `yaml:"sites"`
	BulkLoadSites []string              `yaml:"bulk_load_sites"`
}

// OptionSpec is the catalogue form of an enumerated option.
type OptionSpec struct {
	Boolean   bool     `yaml:"boolean"`
	Values    []string `yaml:"values,omitempty"`
	Sites     []string `yaml:"sites,omitempty"`
	SitesFrom string   `yaml:"sites_from,omitempty"`
	Formats   []string `yaml:"formats,omitempty"`
}

// SiteList is the YAML form of an externally supplied site registration.
type SiteList struct {
	Sites    []string `yaml:"sites"`
	BulkLoad []string `yaml:"bulk_load"`
}

// ParseCatalogue parses YAML content into a Catalogue.
func ParseCatalogue(content []byte) (Catalogue, error) {
	var cat Catalogue
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalogue{}, fmt.Errorf("invalid YAML: %w", err)
	}
	if len(cat.Formats) == 0 {
		return Catalogue{}, fmt.Errorf("catalogue declares no formats")
	}
	for name, opt := range cat.SetOptions {
		if !opt.Boolean && len(opt.Values) == 0 {
			return Catalogue{}, fmt.Errorf("set option '%s' has no values", name)
		}
		if opt.SitesFrom != "" && opt.SitesFrom != bulkLoadSet {
			if _, ok := cat.SiteSets[opt.SitesFrom]; !ok {
				return Catalogue{}, fmt.Errorf("set option '%s': unknown site set '%s'", name, opt.SitesFrom)
			}
		}
	}
	return cat, nil
}

// DefaultCatalogue returns the bundled catalogue.
func DefaultCatalogue() Catalogue {
	cat, err := ParseCatalogue(defaultCatalogue)
	if err != nil {
		panic(fmt.Sprintf("schema: bundled catalogue: %v", err))
	}
	return cat
}

// LoadCatalogueFromPath reads and parses a catalogue from fs.
func LoadCatalogueFromPath(fs afero.Fs, path string) (Catalogue, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return Catalogue{}, err
		}
		return Catalogue{}, fmt.Errorf("failed to read catalogue: %w", err)
	}
	return ParseCatalogue(content)
}

// LoadSiteList reads a YAML site registration from fs.
func LoadSiteList(fs afero.Fs, path string) (SiteList, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return SiteList{}, fmt.Errorf("failed to read site list: %w", err)
	}
	var sl SiteList
	if err := yaml.Unmarshal(content, &sl); err != nil {
		return SiteList{}, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	return sl, nil
}
