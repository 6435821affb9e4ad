package main

import (
	"fmt"
	"strings"

	"ficconf/internal/artifact"
	"ficconf/internal/resolver"

	"github.com/spf13/cobra"
)

func newGetCmd(a *app) *cobra.Command {
	var (
		t      target
		asList bool
		def    string
	)
	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print the effective value of a setting",
		Long: `Get resolves KEY against the sections that apply to --site, --format and
any --extra sections, most specific first, then appends every add_to_KEY
value from the least specific section onwards.`,
		Example: `  ficconf get titlepage_entries --site www.fanfiction.net --format epub
  ficconf get --list extratags --site archiveofourown.org`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.load()
			if err != nil {
				return err
			}
			r := s.resolver(t)
			key := strings.ToLower(args[0])

			if !r.Has(key) && !cmd.Flags().Changed("default") {
				return withCode(exitNotFound, fmt.Errorf("%s is not set in %s", key, r.Sections()))
			}
			if asList {
				for _, v := range r.GetList(key, resolver.SplitList(def)) {
					fmt.Fprintln(a.stdout, v)
				}
				return nil
			}
			v := r.Get(key, def)
			if v.IsFalse() {
				fmt.Fprintln(a.stdout, artifact.FalseValue)
				return nil
			}
			fmt.Fprintln(a.stdout, v.String())
			return nil
		},
	}
	t.addFlags(cmd)
	cmd.Flags().BoolVarP(&asList, "list", "l", false, "print the value as a comma list, one element per line")
	cmd.Flags().StringVarP(&def, "default", "d", "", "value to use when the setting is not set")
	return cmd
}

func newEntriesCmd(a *app) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List the valid metadata entries with their labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.load()
			if err != nil {
				return err
			}
			r := s.resolver(t)
			for _, entry := range r.ValidMetaList() {
				kind := "scalar"
				if r.IsListType(entry) {
					kind = "list"
				}
				fmt.Fprintf(a.stdout, "%-24s %-7s %s\n", entry, kind, r.Label(entry))
			}
			return nil
		},
	}
	t.addFlags(cmd)
	return cmd
}
