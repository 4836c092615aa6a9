// Package arrowfmt converts tables to and from Apache Arrow records and
// encodes them as Arrow IPC streams.
//
// String, float and int columns map to Arrow utf8, float64 and int64. Summary
// columns map to a struct of count, sum, min, max and mean. Nulls are carried
// in Arrow validity bitmaps.
package arrowfmt

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/christos-karalis/dataframe/pkg/dataframe"
	"github.com/christos-karalis/dataframe/pkg/frameerrors"
)

const namedKey = "dataframe.named"

// summaryType is the Arrow layout of a summary cell.
var summaryType = arrow.StructOf(
	arrow.Field{Name: "count", Type: arrow.PrimitiveTypes.Int64},
	arrow.Field{Name: "sum", Type: arrow.PrimitiveTypes.Float64},
	arrow.Field{Name: "min", Type: arrow.PrimitiveTypes.Float64},
	arrow.Field{Name: "max", Type: arrow.PrimitiveTypes.Float64},
	arrow.Field{Name: "mean", Type: arrow.PrimitiveTypes.Float64},
)

// Schema returns the Arrow schema of t. Unnamed columns are called col_0,
// col_1, ... and the schema metadata records that they were unnamed.
func Schema(t *dataframe.Table) *arrow.Schema {
	names := t.ColumnNames()
	types := t.ColumnTypes()
	fields := make([]arrow.Field, len(types))
	for i, typ := range types {
		name := fmt.Sprintf("col_%d", i)
		if names != nil {
			name = names[i]
		}
		fields[i] = arrow.Field{Name: name, Type: arrowType(typ), Nullable: true}
	}
	named := "false"
	if names != nil {
		named = "true"
	}
	md := arrow.NewMetadata([]string{namedKey}, []string{named})
	return arrow.NewSchema(fields, &md)
}

func arrowType(typ dataframe.ColumnType) arrow.DataType {
	switch typ {
	case dataframe.ColumnTypeFloat:
		return arrow.PrimitiveTypes.Float64
	case dataframe.ColumnTypeInt:
		return arrow.PrimitiveTypes.Int64
	case dataframe.ColumnTypeSummary:
		return summaryType
	default:
		return arrow.BinaryTypes.String
	}
}

// ToRecord copies t into a single Arrow record. The caller must Release it.
func ToRecord(t *dataframe.Table, mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	schema := Schema(t)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for c := 0; c < t.NumColumns(); c++ {
		col, err := t.Column(c)
		if err != nil {
			return nil, err
		}
		if err := appendColumn(b.Field(c), col); err != nil {
			return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeFormat, "failed to encode column").
				WithDetail("column", c)
		}
	}
	return b.NewRecord(), nil
}

func appendColumn(builder array.Builder, col dataframe.Column) error {
	n := col.Len()
	builder.Reserve(n)
	switch b := builder.(type) {
	case *array.StringBuilder:
		for i := 0; i < n; i++ {
			v := col.Value(i)
			if s, ok := v.Str(); ok {
				b.Append(s)
			} else {
				b.AppendNull()
			}
		}
	case *array.Float64Builder:
		for i := 0; i < n; i++ {
			if f, ok := col.Value(i).Float64(); ok {
				b.Append(f)
			} else {
				b.AppendNull()
			}
		}
	case *array.Int64Builder:
		for i := 0; i < n; i++ {
			if v, ok := col.Value(i).Int64(); ok {
				b.Append(v)
			} else {
				b.AppendNull()
			}
		}
	case *array.StructBuilder:
		count := b.FieldBuilder(0).(*array.Int64Builder)
		stats := []*array.Float64Builder{
			b.FieldBuilder(1).(*array.Float64Builder),
			b.FieldBuilder(2).(*array.Float64Builder),
			b.FieldBuilder(3).(*array.Float64Builder),
			b.FieldBuilder(4).(*array.Float64Builder),
		}
		for i := 0; i < n; i++ {
			s, ok := col.Value(i).Summary()
			if !ok {
				b.AppendNull()
				continue
			}
			b.Append(true)
			count.Append(s.Count())
			stats[0].Append(s.Sum())
			stats[1].Append(s.Min())
			stats[2].Append(s.Max())
			stats[3].Append(s.Mean())
		}
	default:
		return fmt.Errorf("unsupported builder %T", builder)
	}
	return nil
}

// FromRecord copies an Arrow record into a table. Besides the types produced
// by ToRecord it accepts large strings, float32 and the narrower integer types.
func FromRecord(rec arrow.Record, opts ...dataframe.Option) (*dataframe.Table, error) {
	return fromRecords(rec.Schema(), []arrow.Record{rec}, opts)
}

func fromRecords(schema *arrow.Schema, recs []arrow.Record, opts []dataframe.Option) (*dataframe.Table, error) {
	rows := 0
	for _, r := range recs {
		rows += int(r.NumRows())
	}

	fields := schema.Fields()
	columns := make([]dataframe.Column, len(fields))
	for c, f := range fields {
		typ, err := columnType(f.Type)
		if err != nil {
			return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeFormat, "unsupported arrow column").
				WithDetail("column", f.Name)
		}
		cb := dataframe.NewColumnBuilder(typ, rows)
		for _, r := range recs {
			if err := appendArray(cb, r.Column(c)); err != nil {
				return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeFormat, "failed to decode column").
					WithDetail("column", f.Name)
			}
		}
		columns[c] = cb.Build()
	}

	var names []string
	if v, ok := schema.Metadata().GetValue(namedKey); !ok || v == "true" {
		names = make([]string, len(fields))
		for i, f := range fields {
			names[i] = f.Name
		}
	}
	return dataframe.NewTable(columns, names, opts...)
}

func columnType(dt arrow.DataType) (dataframe.ColumnType, error) {
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING:
		return dataframe.ColumnTypeString, nil
	case arrow.FLOAT64, arrow.FLOAT32:
		return dataframe.ColumnTypeFloat, nil
	case arrow.INT64, arrow.INT32, arrow.INT16, arrow.INT8:
		return dataframe.ColumnTypeInt, nil
	case arrow.STRUCT:
		if arrow.TypeEqual(dt, summaryType) {
			return dataframe.ColumnTypeSummary, nil
		}
	}
	return 0, fmt.Errorf("arrow type %s has no column equivalent", dt)
}

func appendArray(cb *dataframe.ColumnBuilder, arr arrow.Array) error {
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			cb.AppendNull()
			continue
		}
		var v dataframe.Value
		switch a := arr.(type) {
		case *array.String:
			v = dataframe.String(a.Value(i))
		case *array.LargeString:
			v = dataframe.String(a.Value(i))
		case *array.Float64:
			v = dataframe.Float(a.Value(i))
		case *array.Float32:
			v = dataframe.Float(float64(a.Value(i)))
		case *array.Int64:
			v = dataframe.Int(a.Value(i))
		case *array.Int32:
			v = dataframe.Int(int64(a.Value(i)))
		case *array.Int16:
			v = dataframe.Int(int64(a.Value(i)))
		case *array.Int8:
			v = dataframe.Int(int64(a.Value(i)))
		case *array.Struct:
			v = dataframe.SummaryOf(dataframe.SummaryFromStats(
				a.Field(0).(*array.Int64).Value(i),
				a.Field(1).(*array.Float64).Value(i),
				a.Field(2).(*array.Float64).Value(i),
				a.Field(3).(*array.Float64).Value(i),
			))
		default:
			return fmt.Errorf("unsupported array %T", arr)
		}
		if err := cb.Append(v); err != nil {
			return err
		}
	}
	return nil
}

// WriteIPC encodes t as an Arrow IPC stream with a single record batch.
func WriteIPC(w io.Writer, t *dataframe.Table) error {
	mem := memory.NewGoAllocator()
	rec, err := ToRecord(t, mem)
	if err != nil {
		return err
	}
	defer rec.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err := writer.Write(rec); err != nil {
		writer.Close()
		return frameerrors.Wrap(err, frameerrors.ErrorTypeFormat, "failed to write record batch")
	}
	if err := writer.Close(); err != nil {
		return frameerrors.Wrap(err, frameerrors.ErrorTypeFormat, "failed to close arrow writer")
	}
	return nil
}

// ReadIPC decodes an Arrow IPC stream. Every record batch is appended to the
// table in stream order.
func ReadIPC(r io.Reader, opts ...dataframe.Option) (*dataframe.Table, error) {
	reader, err := ipc.NewReader(r, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeFormat, "failed to create arrow reader")
	}
	defer reader.Release()

	var recs []arrow.Record
	defer func() {
		for _, rec := range recs {
			rec.Release()
		}
	}()
	for reader.Next() {
		rec := reader.Record()
		rec.Retain()
		recs = append(recs, rec)
	}
	if err := reader.Err(); err != nil {
		return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeFormat, "failed to read record batch")
	}
	return fromRecords(reader.Schema(), recs, opts)
}
