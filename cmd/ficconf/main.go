// Command ficconf loads layered story-download settings, validates them and
// resolves effective values for a site and output format.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// Exit codes.
const (
	exitOK       = 0
	exitProblems = 1 // diagnostics, drift with --exit-code, usage errors
	exitLoad     = 3 // a configuration source could not be parsed
	exitNotFound = 4 // missing baseline or unset key
)

func main() {
	os.Exit(run(os.Args[1:], os.Environ(), afero.NewOsFs(), os.Stdout, os.Stderr))
}

// exitError carries an exit code out of a command. A nil err means the
// command already reported the problem.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// run executes the command line and returns the process exit code.
func run(args, environ []string, fs afero.Fs, stdout, stderr io.Writer) int {
	a := &app{
		fs:      fs,
		environ: environ,
		stdout:  stdout,
		stderr:  stderr,
	}

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitProblems
}
