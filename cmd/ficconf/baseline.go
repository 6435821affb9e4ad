package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ficconf/internal/baseline"

	"github.com/spf13/cobra"
)

func newBaselineCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage saved settings baselines",
	}
	cmd.AddCommand(
		newBaselineListCmd(a),
		newBaselineShowCmd(a),
		newBaselineDeleteCmd(a),
	)
	return cmd
}

func (a *app) baselineStore() *baseline.Store {
	return baseline.NewStore(a.fs, baseline.ResolveDir(a.environ))
}

func newBaselineListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved baselines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := a.baselineStore().List()
			if err != nil {
				return withCode(exitProblems, fmt.Errorf("cannot list baselines: %w", err))
			}

			if asJSON {
				data, err := json.MarshalIndent(summaries, "", "  ")
				if err != nil {
					return withCode(exitProblems, err)
				}
				fmt.Fprintln(a.stdout, string(data))
				return nil
			}
			if len(summaries) == 0 {
				fmt.Fprintln(a.stdout, "No baselines found")
				return nil
			}
			for _, b := range summaries {
				scope := b.Site
				if b.Format != "" {
					scope += ":" + b.Format
				}
				fmt.Fprintf(a.stdout, "%s  %s  %s  %s\n", b.Name, shortVersion(b.Version), scope, b.Timestamp.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newBaselineShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Print a saved baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.baselineStore().Load(args[0])
			if err != nil {
				return baselineError(args[0], err)
			}

			fmt.Fprintf(a.stdout, "Name:      %s\n", b.Name)
			fmt.Fprintf(a.stdout, "Version:   %s\n", b.Settings.Version)
			fmt.Fprintf(a.stdout, "Sections:  %v\n", b.Settings.Sections)
			fmt.Fprintf(a.stdout, "Timestamp: %s\n", b.Timestamp.Format(time.RFC3339))
			fmt.Fprintln(a.stdout, "Values:")
			for _, k := range b.Settings.Keys() {
				fmt.Fprintf(a.stdout, "  %s: %s\n", k, b.Settings.Values[k])
			}
			return nil
		},
	}
}

func newBaselineDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a saved baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.baselineStore().Delete(args[0]); err != nil {
				return baselineError(args[0], err)
			}
			fmt.Fprintf(a.stdout, "Deleted baseline: %s\n", args[0])
			return nil
		},
	}
}

func baselineError(name string, err error) error {
	if errors.Is(err, baseline.ErrBaselineNotFound) {
		return withCode(exitNotFound, fmt.Errorf("baseline not found: %s", name))
	}
	return withCode(exitProblems, err)
}

func shortVersion(v string) string {
	if len(v) > 20 {
		return v[:20] + "..."
	}
	return v
}
