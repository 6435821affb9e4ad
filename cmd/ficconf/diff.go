package main

import (
	"errors"
	"fmt"

	"ficconf/internal/artifact"
	"ficconf/internal/drift"

	"github.com/spf13/cobra"
)

type diffOptions struct {
	baseline string
	against  string
	json     bool
	ci       bool
	exitCode bool
}

func newDiffCmd(a *app) *cobra.Command {
	var (
		t    target
		opts diffOptions
	)
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare effective settings with a baseline or snapshot",
		Example: `  ficconf dump --site www.fanfiction.net --format epub --save-baseline ffnet
  ficconf diff --site www.fanfiction.net --format epub --baseline ffnet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (opts.baseline == "") == (opts.against == "") {
				return withCode(exitProblems, errors.New("exactly one of --baseline or --against is required"))
			}
			opts.ci = opts.ci || getEnvBool(a.environ, envCI)

			s, err := a.load()
			if err != nil {
				return err
			}
			current := artifact.Generate(s.resolver(t), t.site, t.format)

			var report drift.DriftReport
			if opts.baseline != "" {
				b, err := a.baselineStore().Load(opts.baseline)
				if err != nil {
					return baselineError(opts.baseline, err)
				}
				report = drift.Detect(b, current)
			} else {
				base, err := artifact.ReadFile(a.fs, opts.against)
				if err != nil {
					return withCode(exitProblems, err)
				}
				report = drift.Compare(base, current)
			}

			switch {
			case opts.json:
				out, err := drift.FormatJSON(report)
				if err != nil {
					return withCode(exitProblems, err)
				}
				fmt.Fprintln(a.stdout, out)
			case opts.ci:
				fmt.Fprint(a.stdout, drift.FormatCI(report, s.sourceName()))
			case report.HasDrift:
				fmt.Fprint(a.stdout, drift.FormatCLI(report))
			default:
				fmt.Fprintln(a.stdout, okStyle.Sprint("No drift"))
			}

			if opts.exitCode && report.HasDrift {
				return withCode(exitProblems, nil)
			}
			return nil
		},
	}
	t.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.baseline, "baseline", "b", "", "name of a saved baseline")
	cmd.Flags().StringVar(&opts.against, "against", "", "snapshot file written by 'dump --output'")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&opts.ci, "ci", false, "print GitHub Actions annotations (default when CI is set)")
	cmd.Flags().BoolVar(&opts.exitCode, "exit-code", false, "exit with status 1 when settings drifted")
	return cmd
}
