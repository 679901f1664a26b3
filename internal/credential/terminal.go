package credential

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// TerminalPrompter reads a secret from the controlling terminal with
// echo disabled. The prompt itself is written to stderr so stdout stays
// clean for pipeline output.
type TerminalPrompter struct{}

// PromptSecret asks the user for a secret value. A non-terminal stdin
// or an EOF (Ctrl-D) is treated as a cancelled prompt.
func (TerminalPrompter) PromptSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w: no terminal available for interactive prompt", ErrPromptCancelled)
	}

	fmt.Fprintf(os.Stderr, "%s: ", label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return "", ErrPromptCancelled
		}
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return string(secret), nil
}
