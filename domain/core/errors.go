package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors
	ErrConfig          = errors.New("invalid design configuration")
	ErrDuplicateLabel  = fmt.Errorf("%w: duplicate label", ErrConfig)
	ErrMissingField    = fmt.Errorf("%w: missing required field", ErrConfig)
	ErrShapeMismatch   = fmt.Errorf("%w: shape mismatch", ErrConfig)
	ErrInteraction     = errors.New("invalid interaction")
	ErrAmbiguousFactor = fmt.Errorf("%w: ambiguous factor", ErrInteraction)

	// Lookup errors
	ErrLookup   = errors.New("covariate not found")
	ErrContrast = fmt.Errorf("%w: contrast", ErrLookup)

	// Pipeline errors
	ErrInvariant  = errors.New("design invariant violated")
	ErrRegression = errors.New("regression failed")

	// Storage errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: design run", ErrNotFound)
)

// Error constructors with context
func NewConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrConfig, field, reason)
}

func NewLookupError(stage string, name string) error {
	return fmt.Errorf("%w: %s references %q", ErrLookup, stage, name)
}

func NewContrastError(name string, reason string) error {
	return fmt.Errorf("%w: %q %s", ErrContrast, name, reason)
}

func NewInteractionError(label string, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInteraction, label, reason)
}

func NewInvariantError(stage string, reason string) error {
	return fmt.Errorf("%w after %s: %s", ErrInvariant, stage, reason)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

func IsLookupError(err error) bool {
	return errors.Is(err, ErrLookup)
}

func IsContrastError(err error) bool {
	return errors.Is(err, ErrContrast)
}

func IsInteractionError(err error) bool {
	return errors.Is(err, ErrInteraction)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
