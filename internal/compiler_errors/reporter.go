package compiler_errors

import (
	"fmt"
	"io"
	"strings"
)

const (
	reset     = "\033[0m"
	boldRed   = "\033[1m\033[31m"
	boldGreen = "\033[1m\033[32m"
)

type Reporter struct {
	writer io.Writer
	color  bool
}

func NewReporter(writer io.Writer, color bool) *Reporter {
	return &Reporter{
		writer: writer,
		color:  color,
	}
}

// Report writes every error of eh followed by the failure summary.
func (r *Reporter) Report(eh ErrorHandler) {
	for _, err := range eh.Errors() {
		r.ReportError(err)
	}

	if eh.Count() > 0 {
		fmt.Fprintf(r.writer, "compilation failed with %d errors\n", eh.Count())
	}
}

func (r *Reporter) ReportError(err CompilerError) {
	located, ok := err.(LocatedError)
	if !ok || located.GetUnit() == nil {
		fmt.Fprintf(r.writer, "%s %s\n", r.paint(boldRed, "error:"), err.GetMessage())
		return
	}

	unit := located.GetUnit()
	span := located.GetSpan()
	pos := unit.Position(span.Offset)

	fmt.Fprintf(
		r.writer,
		"%s:%d:%d %s %s\n",
		unit.Path,
		pos.Line,
		pos.Column,
		r.paint(boldRed, "error:"),
		err.GetMessage(),
	)

	line := unit.Line(span.Offset)
	fmt.Fprintln(r.writer, line)

	fmt.Fprintf(r.writer, "%s%s\n", caretIndent(line, pos.Column), r.paint(boldGreen, carets(span.Length)))
}

func (r *Reporter) paint(color string, text string) string {
	if !r.color {
		return text
	}
	return color + text + reset
}

// caretIndent keeps tabs of the source line so the carets stay aligned.
func caretIndent(line string, column int) string {
	var sb strings.Builder
	for i := 0; i < column-1 && i < len(line); i++ {
		if line[i] == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteByte(' ')
	}

	return sb.String()
}

func carets(length int) string {
	if length < 1 {
		length = 1
	}
	return strings.Repeat("^", length)
}
