package screens

import (
	"strings"
	"text/tabwriter"
)

type table struct {
	w *tabwriter.Writer
}

func (s *Screens) table(headers ...string) *table {
	t := &table{w: tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)}
	t.row(headers...)
	return t
}

func (t *table) row(cols ...string) {
	t.w.Write([]byte(strings.Join(cols, "\t") + "\n")) //nolint:errcheck
}

func (t *table) flush() error {
	return t.w.Flush()
}
