package credential

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PromptTerminal asks for a credential on the terminal without echoing it.
// When in is not a terminal (piped input) a single line is read instead.
// The entered value is handed to r.Supply and never printed.
func PromptTerminal(r *Resolver, in *os.File, out io.Writer, label string) error {
	fmt.Fprintf(out, "%s not found. Please enter it to continue.\n", label)
	fmt.Fprintf(out, "Enter your %s: ", label)

	var value string
	if term.IsTerminal(int(in.Fd())) {
		b, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("read credential: %w", err)
		}
		value = string(b)
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read credential: %w", err)
		}
		value = strings.TrimRight(line, "\r\n")
	}

	return r.Supply(value)
}
