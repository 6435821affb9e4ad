package main

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"ficconf/internal/ini"
	"ficconf/internal/injector"
	"ficconf/internal/loader"
	"ficconf/internal/logging"
	"ficconf/internal/priority"
	"ficconf/internal/resolver"
	"ficconf/internal/schema"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Environment variables read by the command.
const (
	envConfig   = "FICCONF_CONFIG"
	envLogLevel = "FICCONF_LOG_LEVEL"
	envCI       = "CI"
)

// app holds the process environment and the persistent flags shared by every
// subcommand.
type app struct {
	fs      afero.Fs
	environ []string
	stdout  io.Writer
	stderr  io.Writer

	configs     []string
	logLevel    string
	prettyLogs  bool
	noColor     bool
	catalogue   string
	sitesFile   string
	sets        []string
	injectFiles []string
}

// session is one loaded configuration together with the registry it is
// checked against.
type session struct {
	table    *ini.Table
	read     []string
	injected []string
	registry *schema.Registry
}

// target selects the lookup order a command resolves against.
type target struct {
	site   string
	format string
	extras []string
}

func (t *target) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&t.site, "site", "s", "", "site to resolve for, e.g. www.fanfiction.net")
	cmd.Flags().StringVarP(&t.format, "format", "f", "", "output format (html, txt, epub, mobi)")
	cmd.Flags().StringArrayVar(&t.extras, "extra", nil, "extra section, least specific first (repeatable)")
}

func (t *target) sections() priority.List {
	return priority.Build(t.site, t.format, t.extras)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ficconf",
		Short: "Resolve and validate layered story download settings",
		Long: `ficconf reads layered INI settings (defaults, personal, injected),
resolves effective values for a site and output format, and checks the
sections and keys against the known schema.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringArrayVarP(&a.configs, "config", "c", nil, "configuration source or glob, least specific first (repeatable)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error, off")
	flags.BoolVar(&a.prettyLogs, "pretty-logs", false, "human-readable log output")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")
	flags.StringVar(&a.catalogue, "catalogue", "", "YAML keyword catalogue replacing the built-in one")
	flags.StringVar(&a.sitesFile, "sites", "", "YAML file registering additional sites")
	flags.StringArrayVar(&a.sets, "set", nil, "inject a setting as key=value (repeatable)")
	flags.StringArrayVar(&a.injectFiles, "inject-file", nil, "dotenv file of injected settings (repeatable)")

	root.AddCommand(
		newCheckCmd(a),
		newGetCmd(a),
		newEntriesCmd(a),
		newSectionsCmd(a),
		newDumpCmd(a),
		newDiffCmd(a),
		newBaselineCmd(a),
	)
	return root
}

// setup applies the logging and color flags.
func (a *app) setup() error {
	cfg := logging.DefaultConfig()
	cfg.Output = a.stderr
	cfg.Pretty = a.prettyLogs

	level := a.logLevel
	if level == "" {
		level = getEnv(a.environ, envLogLevel)
	}
	if level != "" {
		lvl, err := logging.ParseLevel(level)
		if err != nil {
			return withCode(exitProblems, err)
		}
		cfg.Level = lvl
	}
	logging.Init(cfg)

	if a.noColor {
		color.NoColor = true
	}
	return nil
}

// configPatterns returns the sources to read: --config flags, else
// FICCONF_CONFIG, else the default candidates.
func (a *app) configPatterns() []string {
	if len(a.configs) > 0 {
		return a.configs
	}
	if v := getEnv(a.environ, envConfig); v != "" {
		return filepath.SplitList(v)
	}
	return loader.DefaultPaths(a.environ)
}

// registry builds the schema registry from the catalogue and site flags.
func (a *app) registry() (*schema.Registry, error) {
	cat := schema.DefaultCatalogue()
	if a.catalogue != "" {
		var err error
		if cat, err = schema.LoadCatalogueFromPath(a.fs, a.catalogue); err != nil {
			return nil, err
		}
	}

	var opts []schema.Option
	if a.sitesFile != "" {
		sites, err := schema.LoadSiteList(a.fs, a.sitesFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, schema.WithSites(sites.Sites...), schema.WithBulkLoadSites(sites.BulkLoad...))
	}
	return schema.NewRegistry(cat, opts...)
}

// load reads the configuration sources and fills the injected layer.
// Malformed sources abort with exitLoad; the session returned alongside
// still names the sources that were read.
func (a *app) load() (*session, error) {
	reg, err := a.registry()
	if err != nil {
		return nil, withCode(exitLoad, err)
	}

	res, err := loader.New(a.fs).Load(a.configPatterns())
	if err != nil {
		return &session{table: res.Table, read: res.Read, registry: reg}, withCode(exitLoad, err)
	}

	var layers []map[string]string
	for _, path := range a.injectFiles {
		values, err := injector.ReadDotenv(a.fs, path)
		if err != nil {
			return nil, withCode(exitLoad, err)
		}
		layers = append(layers, values)
	}
	sets, err := injector.ParseAssignments(a.sets)
	if err != nil {
		return nil, withCode(exitProblems, err)
	}
	layers = append(layers, injector.FromEnviron(a.environ), sets)

	return &session{
		table:    res.Table,
		read:     res.Read,
		injected: injector.Apply(res.Table, layers...),
		registry: reg,
	}, nil
}

// resolver returns a resolver over the session's table for t.
func (s *session) resolver(t target) *resolver.Resolver {
	return resolver.New(s.table, t.sections(),
		resolver.WithListEntries(s.registry.ListEntries()),
		resolver.WithLabels(s.registry.Labels()),
		resolver.WithValidEntries(s.registry.ValidEntries()),
	)
}

// sourceName is the file annotations point at: the last source read.
func (s *session) sourceName() string {
	if len(s.read) == 0 {
		return "personal.ini"
	}
	return s.read[len(s.read)-1]
}

func getEnv(environ []string, name string) string {
	prefix := name + "="
	for _, env := range environ {
		if strings.HasPrefix(env, prefix) {
			return strings.TrimPrefix(env, prefix)
		}
	}
	return ""
}

// getEnvBool checks if an environment variable is set to a truthy value.
func getEnvBool(environ []string, name string) bool {
	switch strings.ToLower(getEnv(environ, name)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// isMalformed reports whether err came from a source with malformed lines.
func isMalformed(err error) bool {
	return errors.Is(err, ini.ErrMalformed)
}
