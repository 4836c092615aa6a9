package dataframe

import (
	"github.com/christos-karalis/dataframe/pkg/metrics"
)

// Select keeps the rows for which pred returns true, in their original order.
// The slice passed to pred is reused between calls and must not be retained.
func (t *Table) Select(pred func(row []Value) bool) *Table {
	timer := metrics.NewTimer("select")
	buf := make([]Value, len(t.columns))
	var keep []int
	for r := 0; r < t.rows; r++ {
		if pred(t.rowValues(r, buf)) {
			keep = append(keep, r)
		}
	}
	out := t.take(keep)
	t.observe(timer, t.rows, nil)
	return out
}

// SelectByName is Select with a predicate that reads cells by column name.
func (t *Table) SelectByName(pred func(r Row) bool) *Table {
	timer := metrics.NewTimer("select")
	lookup := make(map[string]int, len(t.names))
	for i, n := range t.names {
		if _, dup := lookup[n]; !dup {
			lookup[n] = i
		}
	}
	var keep []int
	for r := 0; r < t.rows; r++ {
		if pred(Row{table: t, lookup: lookup, pos: r}) {
			keep = append(keep, r)
		}
	}
	out := t.take(keep)
	t.observe(timer, t.rows, nil)
	return out
}

// Row is a read-only view of one table row.
type Row struct {
	table  *Table
	lookup map[string]int
	pos    int
}

// Position returns the row index in its table.
func (r Row) Position() int { return r.pos }

// Len returns the number of cells.
func (r Row) Len() int { return len(r.table.columns) }

// At returns the cell in column i, or null when i is out of range.
func (r Row) At(i int) Value {
	if i < 0 || i >= len(r.table.columns) {
		return Null()
	}
	return r.table.columns[i].Value(r.pos)
}

// Lookup returns the cell in the first column called name.
func (r Row) Lookup(name string) (Value, bool) {
	i, ok := r.lookup[name]
	if !ok {
		return Null(), false
	}
	return r.table.columns[i].Value(r.pos), true
}

// Get returns the cell in the first column called name, or null when there is
// no such column.
func (r Row) Get(name string) Value {
	v, _ := r.Lookup(name)
	return v
}
