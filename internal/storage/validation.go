// Package storage keeps generated narratives in SQLite so repeated runs
// over unchanged accounts skip the LLM.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/edrs/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidNarrative = errors.New("invalid narrative")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s, name string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, name)
	}
	return nil
}

func validateKey(key model.NarrativeKey) error {
	return validateString(key.Signature, "signature")
}

// validateNarrative rejects entries that could never be served back: no
// signature to match on, no text, or an unknown source.
func validateNarrative(n *model.Narrative) error {
	if n == nil {
		return fmt.Errorf("%w: narrative", ErrNilParameter)
	}

	var problem string
	switch {
	case validateKey(n.Key) != nil:
		problem = "missing signature"
	case strings.TrimSpace(n.Text) == "":
		problem = "empty text"
	case n.PromptVersion == "":
		problem = "missing prompt version"
	case n.Source != model.SourceLLM && n.Source != model.SourceFallback:
		problem = fmt.Sprintf("unknown source %q", n.Source)
	default:
		return nil
	}
	return fmt.Errorf("%w for account %d: %s", ErrInvalidNarrative, n.Key.AccountID, problem)
}
