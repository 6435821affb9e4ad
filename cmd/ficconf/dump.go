package main

import (
	"fmt"
	"time"

	"ficconf/internal/artifact"
	"ficconf/internal/baseline"

	"github.com/spf13/cobra"
)

func newDumpCmd(a *app) *cobra.Command {
	var (
		t        target
		output   string
		saveName string
	)
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every effective setting as a JSON snapshot",
		Long: `Dump resolves every key visible from the lookup order of --site, --format
and any --extra sections and prints the result as JSON, with a content
version that changes whenever an effective value does. The snapshot can be
written to a file or saved as a named baseline for later diffs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.load()
			if err != nil {
				return err
			}
			settings := artifact.Generate(s.resolver(t), t.site, t.format)

			if output != "" {
				if err := settings.WriteFile(a.fs, output); err != nil {
					return withCode(exitProblems, fmt.Errorf("cannot write snapshot: %w", err))
				}
				fmt.Fprintf(a.stderr, "Snapshot written to %s (%s)\n", output, settings.Version)
			} else {
				data, err := settings.ToJSON()
				if err != nil {
					return withCode(exitProblems, err)
				}
				fmt.Fprintln(a.stdout, string(data))
			}

			if saveName != "" {
				b := baseline.Baseline{
					Name:      saveName,
					Settings:  settings,
					Sources:   s.read,
					Timestamp: time.Now().UTC(),
				}
				if err := a.baselineStore().Save(b); err != nil {
					return withCode(exitProblems, fmt.Errorf("cannot save baseline: %w", err))
				}
				fmt.Fprintf(a.stderr, "Baseline '%s' saved\n", saveName)
			}
			return nil
		},
	}
	t.addFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the snapshot to a file instead of stdout")
	cmd.Flags().StringVar(&saveName, "save-baseline", "", "also save the snapshot as a named baseline")
	return cmd
}
