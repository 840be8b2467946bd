package render

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/okian/healthboard/internal/domain/status"
)

// ListEntry is one div of the list view.
type ListEntry struct {
	Service string
	Status  string
	Class   string
	Text    string
}

// ListView renders one div per service with text "{service}: {status}".
type ListView struct {
	mu      sync.RWMutex
	entries []ListEntry
}

// NewListView returns an empty list view.
func NewListView() *ListView {
	return &ListView{}
}

// Name implements Renderer.
func (v *ListView) Name() string { return ViewList }

// Render replaces all entries with the services of m, in order.
func (v *ListView) Render(m status.Map, _ time.Time) {
	entries := make([]ListEntry, 0, m.Len())
	for _, e := range m.Entries() {
		entries = append(entries, ListEntry{
			Service: e.Service,
			Status:  e.Record.Status,
			Class:   e.Record.Class(),
			Text:    fmt.Sprintf("%s: %s", e.Service, e.Record.Status),
		})
	}

	v.mu.Lock()
	v.entries = entries
	v.mu.Unlock()
}

// Entries returns a copy of the rendered entries.
func (v *ListView) Entries() []ListEntry {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]ListEntry(nil), v.entries...)
}

// Len returns the number of rendered entries.
func (v *ListView) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries)
}

// WriteHTML writes the #services container with one div per entry.
func (v *ListView) WriteHTML(w io.Writer) error {
	return templates.ExecuteTemplate(w, "list.html", v.Entries())
}
