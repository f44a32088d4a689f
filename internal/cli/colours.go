package cli

import (
	"fmt"
	"io"
	"net/http"
)

const (
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m" // Bright black, often appears as gray

	ResetColor = "\033[0m"
)

var methodColors = map[string]string{
	http.MethodGet:    Green,
	http.MethodPost:   Blue,
	http.MethodPut:    Cyan,
	http.MethodDelete: Yellow,
	http.MethodPatch:  Magenta,
}

// printRoute writes one "[ METHOD ] path" line, colouring the method when
// colour is on.
func printRoute(w io.Writer, method, path string, colour bool) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if !colour {
		fmt.Fprintf(w, "[%s] %s\n", paddedMethod, path)
		return
	}
	c, ok := methodColors[method]
	if !ok {
		c = Gray
	}
	fmt.Fprintf(w, "[%-19s] %s\n", c+paddedMethod+ResetColor, path)
}

// warn writes a highlighted line, used for friendly error hints.
func warn(w io.Writer, colour bool, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if colour {
		msg = Red + msg + ResetColor
	}
	fmt.Fprintln(w, msg)
}
