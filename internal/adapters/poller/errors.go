package poller

import "errors"

// ErrPollFailed wraps every tick failure. One of the kinds below is wrapped
// alongside it.
var ErrPollFailed = errors.New("poll failed")

// Failure kinds.
var (
	ErrTransport       = errors.New("transport error")
	ErrHTTPStatus      = errors.New("unexpected http status")
	ErrDecode          = errors.New("malformed status payload")
	ErrPayloadTooLarge = errors.New("status payload too large")
)

// FailureKind returns a short label for err, used in logs and metrics.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrHTTPStatus):
		return "http_status"
	case errors.Is(err, ErrPayloadTooLarge):
		return "too_large"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "unknown"
	}
}
