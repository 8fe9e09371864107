// Package dataset loads transaction CSV files into tabular form and
// synthesizes a deterministic demo dataset when none are available.
package dataset

// Record is one row keyed by column name. A missing key means the source
// had no such column for this row; an empty string is a present-but-blank cell.
type Record map[string]string

// Table is an ordered-column collection of records, the raw shape the
// feature preparation stage consumes.
type Table struct {
	Columns []string
	Records []Record
}

// NewTable creates an empty table with the given column order.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn declares a column if it is not already present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Column returns the values of the named column, empty string for rows
// where the cell is absent.
func (t *Table) Column(name string) []string {
	out := make([]string, len(t.Records))
	for i, rec := range t.Records {
		out[i] = rec[name]
	}
	return out
}

// Clone deep-copies the table so callers can mutate the copy freely.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Records: make([]Record, len(t.Records)),
	}
	for i, rec := range t.Records {
		cp := make(Record, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		out.Records[i] = cp
	}
	return out
}

// Concat appends another table's records, unioning column declarations.
// Rows keep only the cells their source had.
func (t *Table) Concat(other *Table) {
	for _, c := range other.Columns {
		t.AddColumn(c)
	}
	t.Records = append(t.Records, other.Records...)
}
