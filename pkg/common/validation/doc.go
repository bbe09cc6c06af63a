// Package validation provides common validation utilities for configuration
// parameters across the taskpool packages.
//
// Every helper returns a *errors.ValidationError, which unwraps to
// errors.ErrInvalidConfiguration, so callers can match either the concrete
// type or the sentinel.
package validation
