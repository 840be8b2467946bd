// Package status contains the service status model exchanged over /api/health.
package status

// Status values produced by the upstream checker. Only Healthy has special
// meaning to renderers; every other value is treated as unhealthy.
const (
	Healthy   = "HEALTHY"
	Unhealthy = "UNHEALTHY"
	Down      = "DOWN"
)

// Display colors attached by the checker.
const (
	ColorGreen = "green"
	ColorRed   = "red"
)

// Record is the per-service payload fragment.
type Record struct {
	Status string `json:"status"`
	Color  string `json:"color,omitempty"`
}

// IsHealthy reports whether the record's status is exactly "HEALTHY".
func (r Record) IsHealthy() bool {
	return r.Status == Healthy
}

// Class returns the presentation class for the record: "healthy" or "unhealthy".
func (r Record) Class() string {
	if r.IsHealthy() {
		return "healthy"
	}
	return "unhealthy"
}

// Entry is one (service, record) pair in payload order.
type Entry struct {
	Service string
	Record  Record
}

// NewRecord builds a record with the color matching its classification.
func NewRecord(s string) Record {
	r := Record{Status: s, Color: ColorRed}
	if r.IsHealthy() {
		r.Color = ColorGreen
	}
	return r
}
