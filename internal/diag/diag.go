// Package diag renders the two compile-time/runtime diagnostic shapes
// spec.md §7 specifies, in the teacher's plain fmt-to-stderr style — no
// structured logging library is used anywhere in the corpus this repo
// is grounded on, so neither is this package.
package diag

import (
	"fmt"
	"io"
)

// CompileError writes a single parser diagnostic in the exact form
// spec.md §7 requires: "[line N] Error[ at 'token'|at end]: msg".
// atEnd and lexeme are mutually exclusive; when neither applies (the
// faulting token was itself a lexical ERROR token whose lexeme already
// carries the message) pass lexeme == "" and atEnd == false to omit
// the " at ..." clause entirely.
func CompileError(w io.Writer, line int, lexeme string, atEnd bool, msg string) {
	fmt.Fprintf(w, "[line %d] Error", line)
	switch {
	case atEnd:
		fmt.Fprint(w, " at end")
	case lexeme != "":
		fmt.Fprintf(w, " at '%s'", lexeme)
	}
	fmt.Fprintf(w, ": %s\n", msg)
}

// RuntimeError writes a runtime failure's message and call-stack trace
// (as already formatted by vm.RuntimeError.Error) followed by a
// newline, matching the teacher's one-shot stderr report.
func RuntimeError(w io.Writer, err error) {
	fmt.Fprintln(w, err.Error())
}
