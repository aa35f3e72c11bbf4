// Package export renders tabular and calendar data into downloadable files.
package export

// Dataset defines tabular export content. Rows are keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Len returns the number of data rows.
func (d Dataset) Len() int {
	return len(d.Rows)
}

// Column returns the values of header in row order.
func (d Dataset) Column(header string) []string {
	out := make([]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		out = append(out, row[header])
	}
	return out
}
