package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors (construction time, never retried)
	ErrInvalidConfiguration   = errors.New("invalid configuration")
	ErrToleranceUnitAmbiguous = fmt.Errorf("%w: must set either max_log_prob_diff xor max_prob_diff", ErrInvalidConfiguration)
	ErrNegativeTolerance      = fmt.Errorf("%w: maximum probability difference has to be greater than or equal to zero", ErrInvalidConfiguration)
	ErrUnregisteredLanguage   = fmt.Errorf("%w: no language resource provider", ErrInvalidConfiguration)
	ErrUnknownRecipe          = fmt.Errorf("%w: unknown augmentation recipe", ErrInvalidConfiguration)
	ErrInvalidRecipeParams    = fmt.Errorf("%w: invalid recipe parameters", ErrInvalidConfiguration)

	// Contract violations (call time)
	ErrContractViolation      = errors.New("contract violation")
	ErrMissingModifiedIndices = fmt.Errorf("%w: cannot apply language model constraint without newly modified indices", ErrContractViolation)
	ErrProviderArity          = fmt.Errorf("%w: language model returned wrong number of log-probabilities", ErrContractViolation)

	// Resource errors reported by external collaborators
	ErrResourceUnavailable = errors.New("resource unavailable")

	// Input errors
	ErrEmptyInput  = errors.New("empty input text")
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: augmentation run", ErrNotFound)
)

// NewArityError reports a provider that answered a two-text query with n values.
func NewArityError(n int) error {
	return fmt.Errorf("%w: got %d values for 2 inputs", ErrProviderArity, n)
}

// NewUnregisteredLanguageError names the normalized language, the raw input and where to add a provider.
func NewUnregisteredLanguageError(normalized, raw, extensionPoint string) error {
	return fmt.Errorf("%w for %q (normalized %q); register one with %s", ErrUnregisteredLanguage, raw, normalized, extensionPoint)
}

// NewResourceError wraps a collaborator failure for the named resource.
func NewResourceError(resource string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrResourceUnavailable, resource, err)
}

// Error checking helpers
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

func IsContractViolation(err error) bool {
	return errors.Is(err, ErrContractViolation)
}

func IsResourceError(err error) bool {
	return errors.Is(err, ErrResourceUnavailable)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
