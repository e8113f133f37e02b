// Package httpapi serves the ask pipeline as a small JSON API with a
// minimal HTML page.
package httpapi

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("httpapi: ask service is required")

// Messages returned to clients instead of internal error details.
const (
	msgUpstreamFailure = "The answering service is temporarily unavailable. Please try again later."
	msgTimeout         = "The answer took too long. Please try again."
	msgBadRequest      = `Request body must be JSON like {"question": "..."}.`
)
