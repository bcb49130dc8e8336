package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the root of the registration error taxonomy.
	// Duplicate suite and case errors match it with errors.Is.
	ErrConfiguration = errors.New("catalog: configuration error")
	// ErrSealed indicates a registration attempt after discovery finished
	ErrSealed = errors.New("catalog: registry is sealed")
)

// DuplicateSuiteError reports a suite key that is already registered
type DuplicateSuiteError struct {
	Key string
}

// Error implements the error interface
func (e *DuplicateSuiteError) Error() string {
	return fmt.Sprintf("duplicate test suite %q", e.Key)
}

// Is makes DuplicateSuiteError match ErrConfiguration
func (e *DuplicateSuiteError) Is(target error) bool {
	return target == ErrConfiguration
}

// DuplicateCaseError reports a case collision. Suite is set when the case key
// collides inside a suite and empty when the qualified name collides
// registry-wide.
type DuplicateCaseError struct {
	Key   string
	Suite string
}

// Error implements the error interface
func (e *DuplicateCaseError) Error() string {
	if e.Suite != "" {
		return fmt.Sprintf("duplicate test case %q in suite %q", e.Key, e.Suite)
	}
	return fmt.Sprintf("duplicate test case %q", e.Key)
}

// Is makes DuplicateCaseError match ErrConfiguration
func (e *DuplicateCaseError) Is(target error) bool {
	return target == ErrConfiguration
}

// IsConfigurationError reports whether err comes from a rejected registration
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// ConflictKey returns the key named by a duplicate error, or "" for other errors
func ConflictKey(err error) string {
	var suiteErr *DuplicateSuiteError
	if errors.As(err, &suiteErr) {
		return suiteErr.Key
	}
	var caseErr *DuplicateCaseError
	if errors.As(err, &caseErr) {
		return caseErr.Key
	}
	return ""
}
