package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"ficconf/internal/logging"
	"ficconf/internal/validator"
	"ficconf/internal/watcher"

	"github.com/spf13/cobra"
)

type checkOptions struct {
	strict bool
	watch  bool
	ci     bool
}

func newCheckCmd(a *app) *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate section names and settings",
		Long: `Check reads every configuration source and reports unknown sections,
settings used outside the sites or formats they apply to, values outside a
setting's allowed set, and metadata rules or patterns that do not compile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ci = opts.ci || getEnvBool(a.environ, envCI)
			if opts.watch {
				return a.watchCheck(cmd.Context(), opts)
			}
			_, err := a.check(opts)
			return err
		},
	}
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "also report unknown keywords")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-check whenever a source changes")
	cmd.Flags().BoolVar(&opts.ci, "ci", false, "print GitHub Actions annotations (default when CI is set)")
	return cmd
}

// check loads and validates once.
func (a *app) check(opts checkOptions) (*session, error) {
	s, err := a.load()
	if err != nil {
		if opts.ci && isMalformed(err) {
			for _, line := range formatParseAnnotations(err) {
				fmt.Fprintln(a.stdout, line)
			}
		}
		return s, err
	}
	if len(s.read) == 0 {
		logging.Warn().Strs("patterns", a.configPatterns()).Msg("no configuration sources found")
	}

	var vopts []validator.Option
	if opts.strict {
		vopts = append(vopts, validator.WithStrictKeywords())
	}
	diags := validator.Validate(s.table, s.registry, vopts...)

	if opts.ci {
		for _, d := range diags {
			fmt.Fprintln(a.stdout, formatCIAnnotation(d, s.sourceName()))
		}
	} else {
		printDiagnostics(a.stdout, diags)
	}

	if len(diags) > 0 {
		fmt.Fprintln(a.stderr, validator.Summary(diags))
		return s, withCode(exitProblems, nil)
	}
	if !opts.ci {
		fmt.Fprintln(a.stdout, okStyle.Sprintf("ok: %d source(s) checked", len(s.read)))
	}
	return s, nil
}

// watchCheck checks, then re-checks each time a source that was read
// changes, until interrupted.
func (a *app) watchCheck(ctx context.Context, opts checkOptions) error {
	s, err := a.check(opts)
	if s == nil {
		return err
	}
	a.report(err)
	if len(s.read) == 0 {
		return withCode(exitProblems, errors.New("no configuration sources to watch"))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	w, err := watcher.New(s.read, func(changed []string) {
		logging.Info().Strs("changed", changed).Msg("re-checking configuration")
		fmt.Fprintln(a.stdout, mutedStyle.Sprintf("\n%s changed", strings.Join(changed, ", ")))
		_, err := a.check(opts)
		a.report(err)
	})
	if err != nil {
		return withCode(exitProblems, fmt.Errorf("cannot watch sources: %w", err))
	}

	fmt.Fprintln(a.stderr, mutedStyle.Sprint("watching for changes, press Ctrl-C to stop"))
	return w.Run(ctx)
}

// report prints an error a command has not reported itself.
func (a *app) report(err error) {
	var ee *exitError
	if err == nil || (errors.As(err, &ee) && ee.err == nil) {
		return
	}
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
}
