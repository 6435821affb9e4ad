package main

import (
	"fmt"
	"io"

	"ficconf/internal/ini"
	"ficconf/internal/validator"

	"github.com/fatih/color"
)

var (
	posStyle   = color.New(color.Bold)
	errStyle   = color.New(color.FgRed)
	hintStyle  = color.New(color.FgYellow)
	okStyle    = color.New(color.FgGreen)
	mutedStyle = color.New(color.Faint)
)

// printDiagnostics writes one colored line per diagnostic.
func printDiagnostics(w io.Writer, diags []validator.Diagnostic) {
	for _, d := range diags {
		line := posStyle.Sprint(d.Pos.String()+":") + " " + errStyle.Sprint(d.Message)
		if d.Hint != "" {
			hint := d.Hint
			if d.Key == "" {
				hint = "[" + hint + "]"
			}
			line += " " + hintStyle.Sprintf("(did you mean %s?)", hint)
		}
		fmt.Fprintln(w, line)
	}
}

// formatCIAnnotation formats a diagnostic as a GitHub Actions annotation.
func formatCIAnnotation(d validator.Diagnostic, fallback string) string {
	file := d.Pos.File
	if file == "" {
		file = fallback
	}
	if d.Pos.Line > 0 {
		return fmt.Sprintf("::error file=%s,line=%d::%s", file, d.Pos.Line, ciMessage(d))
	}
	return fmt.Sprintf("::error file=%s::%s", file, ciMessage(d))
}

func ciMessage(d validator.Diagnostic) string {
	msg := d.Message
	if d.Hint != "" {
		msg += fmt.Sprintf(" (did you mean %s?)", d.Hint)
	}
	return msg
}

// formatParseAnnotations turns every malformed line in err into an annotation.
func formatParseAnnotations(err error) []string {
	var out []string
	for _, pe := range parseErrors(err) {
		for _, l := range pe.Lines {
			msg := "malformed line"
			if l.OutsideSection {
				msg = "line outside section"
			}
			out = append(out, fmt.Sprintf("::error file=%s,line=%d::%s %q", pe.Source, l.Line, msg, l.Text))
		}
	}
	return out
}

// parseErrors unpacks the per-source errors of a joined load error.
func parseErrors(err error) []*ini.ParseError {
	switch e := err.(type) {
	case *ini.ParseError:
		return []*ini.ParseError{e}
	case interface{ Unwrap() []error }:
		var out []*ini.ParseError
		for _, inner := range e.Unwrap() {
			out = append(out, parseErrors(inner)...)
		}
		return out
	case interface{ Unwrap() error }:
		return parseErrors(e.Unwrap())
	}
	return nil
}
