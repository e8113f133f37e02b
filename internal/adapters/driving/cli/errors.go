package cli

import "errors"

var (
	// ErrNotConfigured is returned when no opener was set.
	ErrNotConfigured = errors.New("cli: services not configured")

	// ErrEvalFailed is returned when at least one golden case fails.
	ErrEvalFailed = errors.New("evaluation failed")
)
