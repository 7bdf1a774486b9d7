package repl

import (
	"fmt"
	"strings"
)

const helpText = `Enter statements or declarations; they stay in scope for later input.
The value of a trailing expression is printed.

Commands:
  :help          show this help
  :quit          leave the REPL
  :reset         forget all declarations
  :load <file>   add the declarations of a file
  :decls         list the declarations made so far
`

// IsCommand reports whether line is a REPL command rather than code.
func IsCommand(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), ":")
}

// Command runs a REPL command, writing its messages to the session
// output. It reports whether the session should end.
func (s *Session) Command(line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToLower(fields[0]) {
	case ":help", ":h":
		fmt.Fprint(s.out, helpText)

	case ":quit", ":q", ":exit":
		return true

	case ":reset":
		s.Reset()
		fmt.Fprintln(s.out, "session reset.")

	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(s.out, "usage: :load <file>")
			return false
		}
		if err := s.Load(fields[1]); err != nil {
			fmt.Fprintln(s.out, err)
			return false
		}
		fmt.Fprintf(s.out, "loaded %s\n", fields[1])

	case ":decls":
		decls := s.Decls()
		if len(decls) == 0 {
			fmt.Fprintln(s.out, "no declarations.")
		}
		for _, d := range decls {
			fmt.Fprintln(s.out, d)
		}

	default:
		fmt.Fprintf(s.out, "unknown command %s. Type :help for help.\n", fields[0])
	}
	return false
}
