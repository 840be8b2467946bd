package render

import (
	"io"
	"sync"
	"time"

	"github.com/okian/healthboard/internal/domain/status"
)

// TableHeader is the fixed first row of the table view.
var TableHeader = []string{"Service", "Status", "Last Updated"}

// TableRow is one data row of the table view.
type TableRow struct {
	Service   string
	Status    string
	Class     string
	Timestamp string
}

// TableView renders a header row plus one row per service. The timestamp
// column holds the wall-clock time of the render, not of the data.
type TableView struct {
	timeFormat string

	mu   sync.RWMutex
	rows []TableRow
}

// TableOption configures a TableView.
type TableOption func(*TableView)

// WithTimeFormat sets the Go time layout of the timestamp column.
func WithTimeFormat(layout string) TableOption {
	return func(v *TableView) {
		if layout != "" {
			v.timeFormat = layout
		}
	}
}

// NewTableView returns a table view holding only its header.
func NewTableView(opts ...TableOption) *TableView {
	v := &TableView{timeFormat: DefaultTimeFormat}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Name implements Renderer.
func (v *TableView) Name() string { return ViewTable }

// Render drops every data row and appends one per service of m.
func (v *TableView) Render(m status.Map, at time.Time) {
	ts := at.Format(v.timeFormat)
	rows := make([]TableRow, 0, m.Len())
	for _, e := range m.Entries() {
		rows = append(rows, TableRow{
			Service:   e.Service,
			Status:    e.Record.Status,
			Class:     e.Record.Class(),
			Timestamp: ts,
		})
	}

	v.mu.Lock()
	v.rows = rows
	v.mu.Unlock()
}

// Rows returns a copy of the data rows (header excluded).
func (v *TableView) Rows() []TableRow {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]TableRow(nil), v.rows...)
}

// Len returns the number of data rows.
func (v *TableView) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.rows)
}

// WriteHTML writes the #services table, header row first.
func (v *TableView) WriteHTML(w io.Writer) error {
	return templates.ExecuteTemplate(w, "table.html", struct {
		Header []string
		Rows   []TableRow
	}{Header: TableHeader, Rows: v.Rows()})
}
