package ini

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is matched by every *ParseError.
var ErrMalformed = errors.New("configuration contains malformed lines")

// LineError is a single line that matched none of the recognized forms.
type LineError struct {
	Line           int
	Text           string
	OutsideSection bool
}

func (e LineError) String() string {
	if e.OutsideSection {
		return fmt.Sprintf("[line %2d]: (Line outside section) %q", e.Line, e.Text)
	}
	return fmt.Sprintf("[line %2d]: %q", e.Line, e.Text)
}

// ParseError lists every malformed line of one source. It is returned only
// after the whole source has been consumed.
type ParseError struct {
	Source string
	Lines  []LineError
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "source contains parsing errors: %s", e.Source)
	for _, l := range e.Lines {
		sb.WriteString("\n\t")
		sb.WriteString(l.String())
	}
	return sb.String()
}

// Is lets errors.Is(err, ErrMalformed) match.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformed
}

func (e *ParseError) add(line int, text string, outside bool) {
	e.Lines = append(e.Lines, LineError{Line: line, Text: text, OutsideSection: outside})
}
