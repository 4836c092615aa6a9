package dataframe

import (
	"strings"

	"go.uber.org/zap"

	"github.com/christos-karalis/dataframe/pkg/frameerrors"
	"github.com/christos-karalis/dataframe/pkg/metrics"
)

// NotFound is returned by ColumnIndex when no column has the requested name.
const NotFound = -1

// Table is an immutable, column-oriented table. Every operation returns a new
// table and leaves its receiver untouched, so a Table may be shared freely
// between goroutines.
type Table struct {
	columns []Column
	names   []string
	rows    int
	opts    *options
}

// NewTable assembles a table from finished columns. All columns must have the
// same length. names may be nil; otherwise it needs one entry per column.
func NewTable(columns []Column, names []string, opts ...Option) (*Table, error) {
	return newTable(columns, names, newOptions(opts))
}

func newTable(columns []Column, names []string, o *options) (*Table, error) {
	if names != nil && len(names) != len(columns) {
		return nil, frameerrors.Newf(frameerrors.ErrorTypeConfig,
			"%d column names given for %d columns", len(names), len(columns))
	}
	rows := 0
	for i, c := range columns {
		if i == 0 {
			rows = c.Len()
			continue
		}
		if c.Len() != rows {
			return nil, frameerrors.Newf(frameerrors.ErrorTypeShape,
				"column %d has %d rows, expected %d", i, c.Len(), rows).
				WithDetail("column", i)
		}
	}
	return &Table{columns: columns, names: names, rows: rows, opts: o}, nil
}

// derive builds a table that inherits t's options.
func (t *Table) derive(columns []Column, names []string, rows int) *Table {
	return &Table{columns: columns, names: names, rows: rows, opts: t.opts}
}

// Count returns the number of rows.
func (t *Table) Count() int { return t.rows }

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.columns) }

// HasColumnNames reports whether the table carries column names.
func (t *Table) HasColumnNames() bool { return t.names != nil }

// ColumnNames returns a copy of the column names, or nil for an unnamed table.
func (t *Table) ColumnNames() []string {
	if t.names == nil {
		return nil
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// ColumnIndex returns the position of the first column called name, or
// NotFound.
func (t *Table) ColumnIndex(name string) int {
	for i, n := range t.names {
		if n == name {
			return i
		}
	}
	return NotFound
}

// ColumnTypes returns the type of every column in order.
func (t *Table) ColumnTypes() []ColumnType {
	out := make([]ColumnType, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Type()
	}
	return out
}

// Column returns the column at position i.
func (t *Table) Column(i int) (Column, error) {
	if err := t.checkColumn(i); err != nil {
		return nil, err
	}
	return t.columns[i], nil
}

// ColumnByName returns the first column called name.
func (t *Table) ColumnByName(name string) (Column, error) {
	i, err := t.resolve(name)
	if err != nil {
		return nil, err
	}
	return t.columns[i], nil
}

// Value returns the cell at (row, col).
func (t *Table) Value(row, col int) (Value, error) {
	if err := t.checkColumn(col); err != nil {
		return Null(), err
	}
	if err := t.checkRow(row); err != nil {
		return Null(), err
	}
	return t.columns[col].Value(row), nil
}

// Row returns the cells of one row in column order.
func (t *Table) Row(i int) ([]Value, error) {
	if err := t.checkRow(i); err != nil {
		return nil, err
	}
	return t.rowValues(i, make([]Value, len(t.columns))), nil
}

func (t *Table) rowValues(i int, dst []Value) []Value {
	for c, col := range t.columns {
		dst[c] = col.Value(i)
	}
	return dst
}

func (t *Table) checkColumn(i int) error {
	if i < 0 || i >= len(t.columns) {
		return frameerrors.Newf(frameerrors.ErrorTypeIndex,
			"column %d out of range [0, %d)", i, len(t.columns)).
			WithDetail("column", i)
	}
	return nil
}

func (t *Table) checkRow(i int) error {
	if i < 0 || i >= t.rows {
		return frameerrors.Newf(frameerrors.ErrorTypeIndex,
			"row %d out of range [0, %d)", i, t.rows).
			WithDetail("row", i)
	}
	return nil
}

// resolve maps a column name to its position. An unknown name is an index error.
func (t *Table) resolve(name string) (int, error) {
	i := t.ColumnIndex(name)
	if i == NotFound {
		return NotFound, frameerrors.Newf(frameerrors.ErrorTypeIndex, "no column named %q", name).
			WithDetail("name", name)
	}
	return i, nil
}

func (t *Table) resolveAll(names []string) ([]int, error) {
	out := make([]int, len(names))
	for i, n := range names {
		idx, err := t.resolve(n)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// numericColumn returns column i when it can be summed.
func (t *Table) numericColumn(i int) (Column, error) {
	col, err := t.Column(i)
	if err != nil {
		return nil, err
	}
	if !col.Type().Numeric() {
		return nil, frameerrors.Newf(frameerrors.ErrorTypeType,
			"column %d is %s, not numeric", i, col.Type()).
			WithDetail("column", i).
			WithDetail("type", col.Type().String())
	}
	return col, nil
}

// take gathers the given rows, in order, into a new table.
func (t *Table) take(rows []int) *Table {
	cols := make([]Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.take(rows)
	}
	return t.derive(cols, t.names, len(rows))
}

// Sum adds every cell of a numeric column. A null cell is a type error.
func (t *Table) Sum(col int) (float64, error) {
	timer := metrics.NewTimer("sum")
	s, err := t.summarize(col)
	t.observe(timer, t.rows, err, zap.Int("column", col))
	if err != nil {
		return 0, err
	}
	return s.Sum(), nil
}

// SumByName is Sum for the first column called name.
func (t *Table) SumByName(name string) (float64, error) {
	i, err := t.resolve(name)
	if err != nil {
		return 0, err
	}
	return t.Sum(i)
}

// Average returns the mean of a numeric column, or 0 for an empty table. A
// null cell is a type error.
func (t *Table) Average(col int) (float64, error) {
	timer := metrics.NewTimer("average")
	s, err := t.summarize(col)
	t.observe(timer, t.rows, err, zap.Int("column", col))
	if err != nil {
		return 0, err
	}
	return s.Mean(), nil
}

// AverageByName is Average for the first column called name.
func (t *Table) AverageByName(name string) (float64, error) {
	i, err := t.resolve(name)
	if err != nil {
		return 0, err
	}
	return t.Average(i)
}

func (t *Table) summarize(i int) (Summary, error) {
	col, err := t.numericColumn(i)
	if err != nil {
		return Summary{}, err
	}
	var s Summary
	for r := 0; r < t.rows; r++ {
		v, ok := col.Value(r).Float64()
		if !ok {
			return Summary{}, frameerrors.Newf(frameerrors.ErrorTypeType,
				"null cell in numeric column %d at row %d", i, r).
				WithDetail("column", i).
				WithDetail("row", r)
		}
		s.Add(v)
	}
	return s, nil
}

// Distinct returns the distinct cells of a column in order of first appearance.
func (t *Table) Distinct(col int) ([]Value, error) {
	c, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	h := newKeyHasher()
	seen := make(map[uint64][]int)
	var out []Value
	for r := 0; r < t.rows; r++ {
		v := c.Value(r)
		hash := h.hashValue(v)
		dup := false
		for _, j := range seen[hash] {
			if out[j].Equal(v) {
				dup = true
				break
			}
		}
		if !dup {
			seen[hash] = append(seen[hash], len(out))
			out = append(out, v)
		}
	}
	return out, nil
}

// Head returns the first n rows, or the whole table when it is shorter.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > t.rows {
		n = t.rows
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return t.take(rows)
}

// String renders the table as tab separated text with a header line when the
// table is named.
func (t *Table) String() string {
	var b strings.Builder
	if t.names != nil {
		b.WriteString(strings.Join(t.names, "\t"))
		b.WriteByte('\n')
	}
	row := make([]Value, len(t.columns))
	for r := 0; r < t.rows; r++ {
		t.rowValues(r, row)
		for c, v := range row {
			if c > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(v.String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// observe logs and records the outcome of an operation started with timer.
func (t *Table) observe(timer *metrics.Timer, rows int, err error, fields ...zap.Field) {
	observe(t.opts, timer, rows, err, fields...)
}

func observe(o *options, timer *metrics.Timer, rows int, err error, fields ...zap.Field) {
	d := timer.Stop()
	metrics.Observe(timer.Name(), rows, d, err)
	fields = append(fields,
		zap.String("operation", timer.Name()),
		zap.Int("rows", rows),
		zap.Duration("duration", d))
	if err != nil {
		o.logger.Debug("table operation failed", append(fields, zap.Error(err))...)
		return
	}
	o.logger.Debug("table operation completed", fields...)
}
