package executable

import (
	"strconv"
	"strings"
)

// Argv returns the argument vector for a child: the executable path as
// argv[0] followed by args.
func Argv(path string, args []string) []string {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, path)

	return append(argv, args...)
}

// Display renders path and args as a double-quoted command line.
// The result is for logs and error messages only; it is never parsed or
// passed to a shell.
func Display(path string, args []string) string {
	var b strings.Builder

	b.WriteString(strconv.Quote(path))

	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(arg))
	}

	return b.String()
}
