package credential

import (
	"errors"
	"fmt"
)

// Prompter obtains a secret interactively. Implementations block until
// the user supplies a value or cancels; a cancelled prompt returns
// ErrPromptCancelled.
type Prompter interface {
	PromptSecret(label string) (string, error)
}

// promptLabel is shown when asking the user for the API key.
const promptLabel = "Analysis API key"

type state int

const (
	stateUnresolved state = iota
	stateResolving
	stateResolved
	stateFailed
)

// Resolver produces the session Credential: a preconfigured value wins
// outright, otherwise the user is prompted once. The resolved
// credential is cached for the remainder of the session.
//
// A Resolver is single-threaded by design: the only suspension point is
// the prompt, and a re-entrant Resolve during an open prompt fails with
// ErrAlreadyResolving rather than opening a second one.
type Resolver struct {
	preconfigured string
	prompter      Prompter
	state         state
	cred          *Credential
}

// NewResolver returns a Resolver for the given preconfigured value.
// A nil prompter makes resolution non-interactive: an empty
// preconfigured value then fails with ErrMissingCredential.
func NewResolver(preconfigured string, prompter Prompter) *Resolver {
	return &Resolver{preconfigured: preconfigured, prompter: prompter}
}

// Resolve obtains, validates, and caches the session credential.
// Resolution order is fixed: a non-empty preconfigured value is used
// as-is and the prompt is never shown; otherwise the prompt runs once.
// Resolve does not loop internally on a malformed value; the caller
// decides whether to call again. Once resolved, further calls return
// the cached credential without prompting.
func (r *Resolver) Resolve() (*Credential, error) {
	switch r.state {
	case stateResolving:
		return nil, ErrAlreadyResolving
	case stateResolved:
		return r.cred, nil
	}
	r.state = stateResolving

	value := r.preconfigured
	source := SourcePreconfigured
	if value == "" {
		if r.prompter == nil {
			r.state = stateFailed
			return nil, fmt.Errorf("%w: no value preconfigured and no prompt available", ErrMissingCredential)
		}
		entered, err := r.prompter.PromptSecret(promptLabel)
		if err != nil {
			r.state = stateFailed
			if errors.Is(err, ErrPromptCancelled) {
				return nil, fmt.Errorf("%w: %s", ErrMissingCredential, err)
			}
			return nil, fmt.Errorf("prompt for credential: %w", err)
		}
		if entered == "" {
			r.state = stateFailed
			return nil, fmt.Errorf("%w: empty value entered", ErrMissingCredential)
		}
		value = entered
		source = SourcePrompted
	}

	if err := Validate(value); err != nil {
		r.state = stateFailed
		return nil, err
	}

	// Cache is written only on full success, so a failed resolution
	// never leaves partial state behind.
	r.cred = &Credential{Value: value, Source: source, Validated: true}
	r.state = stateResolved
	return r.cred, nil
}

// Current returns the cached credential from an earlier successful
// Resolve. It never prompts; before resolution it fails with
// ErrNotResolved.
func (r *Resolver) Current() (*Credential, error) {
	if r.state != stateResolved {
		return nil, ErrNotResolved
	}
	return r.cred, nil
}
