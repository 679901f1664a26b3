package credential

import (
	"errors"
	"fmt"
	"strings"
)

// Source represents how a credential value was obtained
type Source string

const (
	// SourcePreconfigured means the value was supplied ahead of time via
	// configuration (env var or config file), bypassing any prompt.
	SourcePreconfigured Source = "preconfigured"
	// SourcePrompted means the value was entered interactively.
	SourcePrompted Source = "prompted"
)

// Credential holds the opaque API secret for the analysis service.
// It lives in memory for the lifetime of the process and is never
// written to disk or logged in full.
type Credential struct {
	Value     string
	Source    Source
	Validated bool
}

// Redacted returns the credential value masked for display
func (c *Credential) Redacted() string {
	masked := c.Value
	if len(masked) > 8 {
		return masked[:4] + "..." + masked[len(masked)-4:]
	}
	return strings.Repeat("*", len(masked))
}

var (
	// ErrMissingCredential indicates no value was available after the
	// prompt (cancelled, empty, or no prompt possible).
	ErrMissingCredential = errors.New("missing credential")
	// ErrMalformedCredential indicates a value was present but failed
	// shape validation.
	ErrMalformedCredential = errors.New("malformed credential")
	// ErrNotResolved indicates Current was called before a successful
	// Resolve.
	ErrNotResolved = errors.New("credential not resolved")
	// ErrAlreadyResolving indicates a re-entrant Resolve while a prompt
	// is still open.
	ErrAlreadyResolving = errors.New("credential resolution already in progress")
	// ErrPromptCancelled is returned by a Prompter when the user
	// declines to enter a value.
	ErrPromptCancelled = errors.New("prompt cancelled")
)

// minLength is the minimum accepted credential length. Keys for the
// analysis API are opaque tokens like "sk-ABCDEF1234567890"; anything
// shorter than 6 characters is rejected as a paste error.
const minLength = 6

// Validate checks the shape of a credential value: non-empty, no
// leading/trailing whitespace, minimum length, and a token character
// set. It never verifies the value against the remote service.
func Validate(value string) error {
	if value == "" {
		return fmt.Errorf("%w: value is empty", ErrMalformedCredential)
	}
	if strings.TrimSpace(value) != value {
		return fmt.Errorf("%w: value has leading or trailing whitespace", ErrMalformedCredential)
	}
	if len(value) < minLength {
		return fmt.Errorf("%w: value is shorter than %d characters", ErrMalformedCredential, minLength)
	}
	for _, r := range value {
		if !isTokenChar(r) {
			return fmt.Errorf("%w: value contains invalid character %q", ErrMalformedCredential, r)
		}
	}
	return nil
}

func isTokenChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '.' || r == '_' || r == '-':
		return true
	}
	return false
}
