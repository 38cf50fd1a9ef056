package models

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Base errors of the screening core. Call sites wrap them with context, callers
// check them with errors.Is.
var (
	// DataIntegrityError is returned when an upstream collaborator hands over a malformed
	// entity or media signal. It is fatal to the current call.
	DataIntegrityError = errors.New("data integrity error")

	// ConfigurationError is returned once, when the screening configuration is loaded.
	// It is never returned by a matching or scoring call.
	ConfigurationError = errors.New("configuration error")
)

// Entity supply related errors
var (
	ErrEntityMissingId   = errors.Wrap(DataIntegrityError, "entity has no id")
	ErrEntityMissingName = errors.Wrap(DataIntegrityError, "entity has no canonical name")
	ErrEntityConflict    = errors.Wrap(DataIntegrityError,
		"entity id is used by records with different canonical names")
)

// Media supply related errors
var (
	ErrMediaSignalMissingId   = errors.Wrap(DataIntegrityError, "media signal has no article id")
	ErrMediaSignalMissingDate = errors.Wrap(DataIntegrityError, "media signal has no publication date")
	ErrMediaSignalUnknownTag  = errors.Wrap(DataIntegrityError, "media signal has an unknown tag")
)

// ConfigurationFieldErrors collects every invalid configuration field, keyed by field path.
type ConfigurationFieldErrors map[string]string

func (e ConfigurationFieldErrors) Error() string {
	return fmt.Sprintf("%v", map[string]string(e))
}

func (e ConfigurationFieldErrors) Unwrap() error {
	return ConfigurationError
}
