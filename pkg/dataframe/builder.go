package dataframe

import (
	"iter"

	"go.uber.org/zap"

	"github.com/christos-karalis/dataframe/pkg/frameerrors"
	"github.com/christos-karalis/dataframe/pkg/metrics"
)

// SequenceBuilder builds a table by pulling at most Size values from each of a
// set of lazy sequences, one sequence per column.
type SequenceBuilder struct {
	seqs    []iter.Seq[any]
	names   []string
	size    int
	sizeSet bool
	opts    []Option
}

// FromSequences starts a table with one column per sequence.
func FromSequences(seqs ...iter.Seq[any]) *SequenceBuilder {
	return &SequenceBuilder{seqs: seqs}
}

// ColumnNames names the columns. The count must match the sequences.
func (b *SequenceBuilder) ColumnNames(names ...string) *SequenceBuilder {
	b.names = names
	return b
}

// Size caps how many values are pulled from each sequence.
func (b *SequenceBuilder) Size(n int) *SequenceBuilder {
	b.size = n
	b.sizeSet = true
	return b
}

// Options sets options for the built table and its descendants.
func (b *SequenceBuilder) Options(opts ...Option) *SequenceBuilder {
	b.opts = append(b.opts, opts...)
	return b
}

// Build pulls the sequences and assembles the table. A column takes the type of
// its first non-null value; a later value of another type is a type error.
// Sequences shorter than Size shorten every column to the shortest one.
func (b *SequenceBuilder) Build() (*Table, error) {
	o := newOptions(b.opts)
	timer := metrics.NewTimer("build")
	t, err := b.build(o)
	rows := 0
	if t != nil {
		rows = t.rows
	}
	observe(o, timer, rows, err, zap.Int("columns", len(b.seqs)), zap.String("source", "sequences"))
	return t, err
}

func (b *SequenceBuilder) build(o *options) (*Table, error) {
	if len(b.names) > 0 && len(b.names) != len(b.seqs) {
		return nil, frameerrors.Newf(frameerrors.ErrorTypeConfig,
			"%d column names given for %d sequences", len(b.names), len(b.seqs))
	}
	size := o.builderSize
	if b.sizeSet {
		size = b.size
	}
	if size < 0 {
		return nil, frameerrors.Newf(frameerrors.ErrorTypeConfig, "size must not be negative, got %d", size)
	}

	builders := make([]*ColumnBuilder, len(b.seqs))
	rows := size
	for i, seq := range b.seqs {
		cb, err := pullColumn(seq, size, i)
		if err != nil {
			return nil, err
		}
		builders[i] = cb
		rows = min(rows, cb.Len())
	}
	if len(b.seqs) == 0 {
		rows = 0
	}

	columns := make([]Column, len(builders))
	for i, cb := range builders {
		if cb.Len() > rows {
			o.logger.Debug("truncating column to shortest sequence",
				zap.Int("column", i),
				zap.Int("pulled", cb.Len()),
				zap.Int("rows", rows))
		}
		cb.Truncate(rows)
		columns[i] = cb.Build()
	}

	var names []string
	if len(b.names) > 0 {
		names = append([]string(nil), b.names...)
	}
	return newTable(columns, names, o)
}

// pullColumn reads up to size values from seq. Leading nulls are held back
// until the first non-null value fixes the column type; an all-null column is
// typed string. An int column widens to float at the first float value.
func pullColumn(seq iter.Seq[any], size, column int) (*ColumnBuilder, error) {
	var cb *ColumnBuilder
	pending := 0
	pulled := 0
	var convErr error
	if size > 0 && seq != nil {
		for raw := range seq {
			v, err := ValueOf(raw)
			if err != nil {
				convErr = err
				break
			}
			if cb == nil {
				if v.IsNull() {
					pending++
				} else {
					typ, _ := columnTypeOf(v.kind)
					cb = NewColumnBuilder(typ, size)
					for j := 0; j < pending; j++ {
						cb.AppendNull()
					}
				}
			}
			if cb != nil {
				cb.widenFor(v)
				if err := cb.Append(v); err != nil {
					convErr = err
					break
				}
			}
			pulled++
			if pulled == size {
				break
			}
		}
	}
	if convErr != nil {
		return nil, frameerrors.Wrap(convErr, frameerrors.ErrorTypeType, "sequence value does not fit column").
			WithDetail("column", column).
			WithDetail("position", pulled)
	}
	if cb == nil {
		cb = NewColumnBuilder(ColumnTypeString, pending)
		for j := 0; j < pending; j++ {
			cb.AppendNull()
		}
	}
	return cb, nil
}
