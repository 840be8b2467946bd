package status

import "errors"

// Sentinel kinds for payload errors.
var (
	ErrInvalidPayload = errors.New("invalid status payload")
)
