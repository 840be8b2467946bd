// Package render turns a status.Map into the dashboard's views. Every view is
// replaced wholesale on each Render call; readers never observe a partially
// rendered view.
package render

import (
	"embed"
	"html/template"
	"time"

	"github.com/okian/healthboard/internal/domain/status"
)

// View names, also used as metric labels.
const (
	ViewList  = "list"
	ViewTable = "table"
	ViewText  = "text"
)

// DefaultTimeFormat is the layout used for render timestamps.
const DefaultTimeFormat = "15:04:05"

// Renderer replaces its representation with m, rendered at time at.
type Renderer interface {
	Name() string
	Render(m status.Map, at time.Time)
	Len() int
}

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))
