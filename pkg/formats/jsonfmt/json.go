// Package jsonfmt encodes tables as JSON.
//
// Three layouts are supported. LayoutRecords writes an array with one object
// per row, LayoutLines writes one such object per line, and LayoutColumns
// writes the column names, types and cell values column by column. Only the
// column layout can be decoded back into a table since it carries the types.
//
// Nulls encode as JSON null, and so do NaN and infinite floats. Summary cells
// encode as objects with count, sum, min, max and mean.
package jsonfmt

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	gojson "github.com/goccy/go-json"

	"github.com/christos-karalis/dataframe/pkg/dataframe"
	"github.com/christos-karalis/dataframe/pkg/frameerrors"
)

// Layout selects how a table is laid out in JSON.
type Layout string

const (
	LayoutRecords Layout = "records"
	LayoutLines   Layout = "lines"
	LayoutColumns Layout = "columns"
)

// ParseLayout maps a layout name to a Layout.
func ParseLayout(name string) (Layout, error) {
	switch l := Layout(name); l {
	case LayoutRecords, LayoutLines, LayoutColumns:
		return l, nil
	}
	return "", frameerrors.Newf(frameerrors.ErrorTypeConfig, "unknown json layout %q", name)
}

// Marshal encodes t in the given layout.
func Marshal(t *dataframe.Table, layout Layout) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	if err := encode(buf, t, layout); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// Encode writes t to w in the given layout.
func Encode(w io.Writer, t *dataframe.Table, layout Layout) error {
	buf := getBuffer()
	defer putBuffer(buf)

	if err := encode(buf, t, layout); err != nil {
		return err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return frameerrors.Wrap(err, frameerrors.ErrorTypeFormat, "failed to write json")
	}
	return nil
}

func encode(buf *bytes.Buffer, t *dataframe.Table, layout Layout) error {
	switch layout {
	case LayoutRecords, "":
		return encodeRecords(buf, t, false)
	case LayoutLines:
		return encodeRecords(buf, t, true)
	case LayoutColumns:
		return encodeColumns(buf, t)
	}
	return frameerrors.Newf(frameerrors.ErrorTypeConfig, "unknown json layout %q", layout)
}

// fieldNames returns the object keys of t; unnamed columns are col_0, col_1, ...
func fieldNames(t *dataframe.Table) []string {
	if names := t.ColumnNames(); names != nil {
		return names
	}
	names := make([]string, t.NumColumns())
	for i := range names {
		names[i] = fmt.Sprintf("col_%d", i)
	}
	return names
}

func encodeRecords(buf *bytes.Buffer, t *dataframe.Table, lines bool) error {
	keys := make([][]byte, t.NumColumns())
	for i, name := range fieldNames(t) {
		k, err := gojson.Marshal(name)
		if err != nil {
			return frameerrors.Wrap(err, frameerrors.ErrorTypeFormat, "failed to encode column name")
		}
		keys[i] = k
	}

	if !lines {
		buf.WriteByte('[')
	}
	for r := 0; r < t.NumRows(); r++ {
		if r > 0 && !lines {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for c := range keys {
			if c > 0 {
				buf.WriteByte(',')
			}
			buf.Write(keys[c])
			buf.WriteByte(':')
			v, err := t.Value(r, c)
			if err != nil {
				return err
			}
			if err := writeValue(buf, v); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		if lines {
			buf.WriteByte('\n')
		}
	}
	if !lines {
		buf.WriteByte(']')
	}
	return nil
}

func encodeColumns(buf *bytes.Buffer, t *dataframe.Table) error {
	types := t.ColumnTypes()
	typeNames := make([]string, len(types))
	for i, typ := range types {
		typeNames[i] = typ.String()
	}
	header, err := gojson.Marshal(struct {
		Columns []string `json:"columns"`
		Types   []string `json:"types"`
	}{t.ColumnNames(), typeNames})
	if err != nil {
		return frameerrors.Wrap(err, frameerrors.ErrorTypeFormat, "failed to encode header")
	}

	// Splice the data array into the header object.
	buf.Write(header[:len(header)-1])
	buf.WriteString(`,"data":[`)
	for c := 0; c < t.NumColumns(); c++ {
		if c > 0 {
			buf.WriteByte(',')
		}
		col, err := t.Column(c)
		if err != nil {
			return err
		}
		buf.WriteByte('[')
		for r := 0; r < col.Len(); r++ {
			if r > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, col.Value(r)); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	}
	buf.WriteString("]}")
	return nil
}

func writeValue(buf *bytes.Buffer, v dataframe.Value) error {
	switch v.Kind() {
	case dataframe.KindString:
		s, _ := v.Str()
		b, err := gojson.Marshal(s)
		if err != nil {
			return frameerrors.Wrap(err, frameerrors.ErrorTypeFormat, "failed to encode string")
		}
		buf.Write(b)
	case dataframe.KindInt:
		i, _ := v.Int64()
		buf.WriteString(strconv.FormatInt(i, 10))
	case dataframe.KindFloat:
		f, _ := v.Float64()
		writeFloat(buf, f)
	case dataframe.KindSummary:
		s, _ := v.Summary()
		buf.WriteString(`{"count":`)
		buf.WriteString(strconv.FormatInt(s.Count(), 10))
		buf.WriteString(`,"sum":`)
		writeFloat(buf, s.Sum())
		buf.WriteString(`,"min":`)
		writeFloat(buf, s.Min())
		buf.WriteString(`,"max":`)
		writeFloat(buf, s.Max())
		buf.WriteString(`,"mean":`)
		writeFloat(buf, s.Mean())
		buf.WriteByte('}')
	default:
		buf.WriteString("null")
	}
	return nil
}

func writeFloat(buf *bytes.Buffer, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		buf.WriteString("null")
		return
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
}

// columnsDocument is the decoded form of LayoutColumns.
type columnsDocument struct {
	Columns []string        `json:"columns"`
	Types   []string        `json:"types"`
	Data    [][]interface{} `json:"data"`
}

// summaryCell is the decoded form of a summary cell.
type summaryCell struct {
	Count int64    `json:"count"`
	Sum   *float64 `json:"sum"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
}

// Decode reads a table written with LayoutColumns.
func Decode(r io.Reader, opts ...dataframe.Option) (*dataframe.Table, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()

	var doc columnsDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeFormat, "failed to decode json")
	}
	if len(doc.Types) != len(doc.Data) {
		return nil, frameerrors.Newf(frameerrors.ErrorTypeFormat,
			"%d column types for %d data columns", len(doc.Types), len(doc.Data))
	}

	columns := make([]dataframe.Column, len(doc.Types))
	for c, name := range doc.Types {
		typ, err := dataframe.ParseColumnType(name)
		if err != nil {
			return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeFormat, "unknown column type").
				WithDetail("column", c)
		}
		cb := dataframe.NewColumnBuilder(typ, len(doc.Data[c]))
		for r, cell := range doc.Data[c] {
			v, err := decodeCell(cell, typ)
			if err != nil {
				return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeFormat, "failed to decode cell").
					WithDetail("column", c).
					WithDetail("row", r)
			}
			if err := cb.Append(v); err != nil {
				return nil, err
			}
		}
		columns[c] = cb.Build()
	}
	return dataframe.NewTable(columns, doc.Columns, opts...)
}

func decodeCell(cell interface{}, typ dataframe.ColumnType) (dataframe.Value, error) {
	switch c := cell.(type) {
	case nil:
		return dataframe.Null(), nil
	case string:
		return dataframe.String(c), nil
	case gojson.Number:
		if typ == dataframe.ColumnTypeInt {
			i, err := c.Int64()
			return dataframe.Int(i), err
		}
		f, err := c.Float64()
		return dataframe.Float(f), err
	case map[string]interface{}:
		raw, err := gojson.Marshal(c)
		if err != nil {
			return dataframe.Value{}, err
		}
		var s summaryCell
		if err := gojson.Unmarshal(raw, &s); err != nil {
			return dataframe.Value{}, err
		}
		return dataframe.SummaryOf(dataframe.SummaryFromStats(s.Count,
			orDefault(s.Sum, 0), orDefault(s.Min, math.Inf(1)), orDefault(s.Max, math.Inf(-1)))), nil
	}
	return dataframe.Value{}, fmt.Errorf("unsupported json cell %T", cell)
}

func orDefault(f *float64, def float64) float64 {
	if f == nil {
		return def
	}
	return *f
}
