package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrRender           = errors.New("dashboard render failed")
)
