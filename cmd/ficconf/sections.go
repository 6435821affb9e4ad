package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSectionsCmd(a *app) *cobra.Command {
	var (
		t     target
		valid bool
	)
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "Print the section lookup order, most specific first",
		Long: `Sections prints the order in which sections are consulted for --site,
--format and any --extra sections. Sections defined by the loaded sources
are marked with '*'. With --valid it prints every section name the schema
accepts instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.load()
			if err != nil {
				return err
			}
			if valid {
				for _, name := range s.registry.ValidSections() {
					fmt.Fprintln(a.stdout, name)
				}
				return nil
			}

			for _, name := range t.sections().Names() {
				if _, ok := s.table.Section(name); ok {
					fmt.Fprintf(a.stdout, "%s %s\n", okStyle.Sprint("*"), name)
					continue
				}
				fmt.Fprintf(a.stdout, "  %s\n", mutedStyle.Sprint(name))
			}
			return nil
		},
	}
	t.addFlags(cmd)
	cmd.Flags().BoolVar(&valid, "valid", false, "list every valid section name")
	return cmd
}
