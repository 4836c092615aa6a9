package dataframe

import (
	"go.uber.org/zap"

	"github.com/christos-karalis/dataframe/pkg/frameerrors"
	"github.com/christos-karalis/dataframe/pkg/metrics"
)

// RowsBuilder builds a table from materialized rows, such as the result of a
// SQL query.
type RowsBuilder struct {
	rows  [][]any
	types []ColumnType
	names []string
	opts  []Option
}

// FromRows starts a table from rows. Every row must have the same width.
func FromRows(rows [][]any) *RowsBuilder {
	return &RowsBuilder{rows: rows}
}

// Types declares the column types. Without them types are inferred from the
// first row.
func (b *RowsBuilder) Types(types ...ColumnType) *RowsBuilder {
	b.types = types
	return b
}

// ColumnNames names the columns.
func (b *RowsBuilder) ColumnNames(names ...string) *RowsBuilder {
	b.names = names
	return b
}

// Options sets options for the built table and its descendants.
func (b *RowsBuilder) Options(opts ...Option) *RowsBuilder {
	b.opts = append(b.opts, opts...)
	return b
}

// Build converts the rows into columns.
//
// With declared types a cell that does not fit its column is a type error.
// With inferred types the same mismatch is a shape error, since the first row
// decided the shape. Inferred columns are numeric rather than int or float: an
// int column widens to float at the first fractional number. A nil cell in the first row infers a string column, which
// makes every later numeric cell in that column a shape error; this is logged
// at warn level.
func (b *RowsBuilder) Build() (*Table, error) {
	o := newOptions(b.opts)
	timer := metrics.NewTimer("build")
	t, err := b.build(o)
	observe(o, timer, len(b.rows), err, zap.String("source", "rows"))
	return t, err
}

func (b *RowsBuilder) build(o *options) (*Table, error) {
	declared := len(b.types) > 0
	if declared && len(b.names) > 0 && len(b.names) != len(b.types) {
		return nil, frameerrors.Newf(frameerrors.ErrorTypeConfig,
			"%d column names given for %d column types", len(b.names), len(b.types))
	}

	var types []ColumnType
	switch {
	case declared:
		types = append(types, b.types...)
	case len(b.rows) > 0:
		inferred, err := b.inferTypes(o)
		if err != nil {
			return nil, err
		}
		types = inferred
	default:
		types = make([]ColumnType, len(b.names))
	}

	width := len(types)
	if len(b.names) > 0 && len(b.names) != width {
		return nil, frameerrors.Newf(frameerrors.ErrorTypeConfig,
			"%d column names given for rows of width %d", len(b.names), width)
	}

	builders := make([]*ColumnBuilder, width)
	for i, typ := range types {
		builders[i] = NewColumnBuilder(typ, len(b.rows))
	}
	for r, row := range b.rows {
		if len(row) != width {
			return nil, frameerrors.Newf(frameerrors.ErrorTypeShape,
				"row %d has %d cells, expected %d", r, len(row), width).
				WithDetail("row", r)
		}
		for c, cell := range row {
			v, err := ValueOf(cell)
			if err != nil {
				return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeType, "unsupported cell").
					WithDetail("row", r).
					WithDetail("column", c)
			}
			if !declared && builders[c].widenFor(v) {
				o.logger.Debug("widening inferred int column to float",
					zap.Int("column", c),
					zap.Int("row", r))
			}
			if err := builders[c].Append(v); err != nil {
				errType := frameerrors.ErrorTypeShape
				if declared {
					errType = frameerrors.ErrorTypeType
				}
				return nil, frameerrors.Wrap(err, errType, "cell does not fit column").
					WithDetail("row", r).
					WithDetail("column", c)
			}
		}
	}

	columns := make([]Column, width)
	for i, cb := range builders {
		columns[i] = cb.Build()
	}
	var names []string
	if len(b.names) > 0 {
		names = append([]string(nil), b.names...)
	}
	return newTable(columns, names, o)
}

func (b *RowsBuilder) inferTypes(o *options) ([]ColumnType, error) {
	first := b.rows[0]
	types := make([]ColumnType, len(first))
	for c, cell := range first {
		v, err := ValueOf(cell)
		if err != nil {
			return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeType, "cannot infer column type").
				WithDetail("row", 0).
				WithDetail("column", c)
		}
		typ, ok := columnTypeOf(v.kind)
		if !ok {
			o.logger.Warn("null in first row, inferring string column",
				zap.Int("column", c))
			typ = ColumnTypeString
		}
		types[c] = typ
	}
	return types, nil
}
