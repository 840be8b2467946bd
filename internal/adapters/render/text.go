package render

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/okian/healthboard/internal/domain/status"
)

// TextView renders the table layout for a terminal. It keeps its rows in a
// TableView and only differs in how they are written out.
type TextView struct {
	table *TableView
}

// NewTextView returns an empty terminal view.
func NewTextView(opts ...TableOption) *TextView {
	return &TextView{table: NewTableView(opts...)}
}

// Name implements Renderer.
func (v *TextView) Name() string { return ViewText }

// Render replaces the rows with the services of m.
func (v *TextView) Render(m status.Map, at time.Time) { v.table.Render(m, at) }

// Len returns the number of rendered rows.
func (v *TextView) Len() int { return v.table.Len() }

// WriteText writes an aligned table with a header line.
func (v *TextView) WriteText(w io.Writer) error {
	rows := v.table.Rows()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", TableHeader[0], TableHeader[1], "", TableHeader[2])
	for _, r := range rows {
		mark := "ok"
		if r.Class != "healthy" {
			mark = "!!"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Service, r.Status, mark, r.Timestamp)
	}
	return tw.Flush()
}
