package dataframe

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/christos-karalis/dataframe/pkg/frameerrors"
)

// ColumnType is the element type shared by every cell of a column.
type ColumnType uint8

const (
	ColumnTypeString ColumnType = iota
	// ColumnTypeFloat is the general numeric type. It accepts floats and
	// widens integers.
	ColumnTypeFloat
	ColumnTypeInt
	ColumnTypeSummary
)

func (t ColumnType) String() string {
	switch t {
	case ColumnTypeString:
		return "string"
	case ColumnTypeFloat:
		return "float"
	case ColumnTypeInt:
		return "int"
	case ColumnTypeSummary:
		return "summary"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// ParseColumnType maps the name returned by ColumnType.String back to the type.
func ParseColumnType(name string) (ColumnType, error) {
	for _, t := range []ColumnType{ColumnTypeString, ColumnTypeFloat, ColumnTypeInt, ColumnTypeSummary} {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, frameerrors.Newf(frameerrors.ErrorTypeConfig, "unknown column type %q", name)
}

// Numeric reports whether the column can be summed.
func (t ColumnType) Numeric() bool {
	return t == ColumnTypeFloat || t == ColumnTypeInt
}

// Accepts reports whether a value of kind k may be stored in a column of type t.
// Nulls are accepted everywhere.
func (t ColumnType) Accepts(k Kind) bool {
	switch k {
	case KindNull:
		return true
	case KindString:
		return t == ColumnTypeString
	case KindFloat:
		return t == ColumnTypeFloat
	case KindInt:
		return t == ColumnTypeFloat || t == ColumnTypeInt
	case KindSummary:
		return t == ColumnTypeSummary
	default:
		return false
	}
}

// columnTypeOf maps a non-null kind to the column type that stores it.
func columnTypeOf(k Kind) (ColumnType, bool) {
	switch k {
	case KindString:
		return ColumnTypeString, true
	case KindFloat:
		return ColumnTypeFloat, true
	case KindInt:
		return ColumnTypeInt, true
	case KindSummary:
		return ColumnTypeSummary, true
	default:
		return 0, false
	}
}

// Column is an immutable, typed sequence of cells.
type Column interface {
	Type() ColumnType
	Len() int
	Value(i int) Value
	IsNull(i int) bool
	NullCount() int

	take(rows []int) Column
}

// nullMask marks null positions. A nil bitmap means the column has no nulls.
type nullMask struct {
	nulls *roaring.Bitmap
}

func (m nullMask) IsNull(i int) bool {
	return m.nulls != nil && m.nulls.Contains(uint32(i))
}

func (m nullMask) NullCount() int {
	if m.nulls == nil {
		return 0
	}
	return int(m.nulls.GetCardinality())
}

func (m nullMask) take(rows []int) nullMask {
	if m.nulls == nil || m.nulls.IsEmpty() {
		return nullMask{}
	}
	out := roaring.New()
	for i, r := range rows {
		if m.nulls.Contains(uint32(r)) {
			out.Add(uint32(i))
		}
	}
	if out.IsEmpty() {
		return nullMask{}
	}
	out.RunOptimize()
	return nullMask{nulls: out}
}

// StringColumn stores text cells.
type StringColumn struct {
	nullMask
	values []string
}

func (c *StringColumn) Type() ColumnType { return ColumnTypeString }
func (c *StringColumn) Len() int         { return len(c.values) }

// At returns the raw text at i. Null positions read as "".
func (c *StringColumn) At(i int) string { return c.values[i] }

func (c *StringColumn) Value(i int) Value {
	if c.IsNull(i) {
		return Null()
	}
	return String(c.values[i])
}

func (c *StringColumn) take(rows []int) Column {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = c.values[r]
	}
	return &StringColumn{nullMask: c.nullMask.take(rows), values: out}
}

// FloatColumn stores 64-bit floating point cells.
type FloatColumn struct {
	nullMask
	values []float64
}

func (c *FloatColumn) Type() ColumnType { return ColumnTypeFloat }
func (c *FloatColumn) Len() int         { return len(c.values) }

// At returns the raw number at i. Null positions read as 0.
func (c *FloatColumn) At(i int) float64 { return c.values[i] }

func (c *FloatColumn) Value(i int) Value {
	if c.IsNull(i) {
		return Null()
	}
	return Float(c.values[i])
}

func (c *FloatColumn) take(rows []int) Column {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = c.values[r]
	}
	return &FloatColumn{nullMask: c.nullMask.take(rows), values: out}
}

// IntColumn stores 64-bit integer cells.
type IntColumn struct {
	nullMask
	values []int64
}

func (c *IntColumn) Type() ColumnType { return ColumnTypeInt }
func (c *IntColumn) Len() int         { return len(c.values) }

// At returns the raw integer at i. Null positions read as 0.
func (c *IntColumn) At(i int) int64 { return c.values[i] }

func (c *IntColumn) Value(i int) Value {
	if c.IsNull(i) {
		return Null()
	}
	return Int(c.values[i])
}

func (c *IntColumn) take(rows []int) Column {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = c.values[r]
	}
	return &IntColumn{nullMask: c.nullMask.take(rows), values: out}
}

// SummaryColumn stores aggregation results.
type SummaryColumn struct {
	nullMask
	values []Summary
}

func (c *SummaryColumn) Type() ColumnType { return ColumnTypeSummary }
func (c *SummaryColumn) Len() int         { return len(c.values) }

// At returns the summary at i.
func (c *SummaryColumn) At(i int) Summary { return c.values[i] }

func (c *SummaryColumn) Value(i int) Value {
	if c.IsNull(i) {
		return Null()
	}
	return SummaryOf(c.values[i])
}

func (c *SummaryColumn) take(rows []int) Column {
	out := make([]Summary, len(rows))
	for i, r := range rows {
		out[i] = c.values[r]
	}
	return &SummaryColumn{nullMask: c.nullMask.take(rows), values: out}
}

// ColumnBuilder appends cells to a column of a fixed type.
type ColumnBuilder struct {
	typ    ColumnType
	strs   []string
	floats []float64
	ints   []int64
	sums   []Summary
	nulls  *roaring.Bitmap
	n      int
}

// NewColumnBuilder returns a builder for a column of type typ with room for
// capacity cells.
func NewColumnBuilder(typ ColumnType, capacity int) *ColumnBuilder {
	if capacity < 0 {
		capacity = 0
	}
	b := &ColumnBuilder{typ: typ}
	switch typ {
	case ColumnTypeString:
		b.strs = make([]string, 0, capacity)
	case ColumnTypeFloat:
		b.floats = make([]float64, 0, capacity)
	case ColumnTypeInt:
		b.ints = make([]int64, 0, capacity)
	case ColumnTypeSummary:
		b.sums = make([]Summary, 0, capacity)
	}
	return b
}

// Type returns the column type being built.
func (b *ColumnBuilder) Type() ColumnType { return b.typ }

// Len returns the number of cells appended so far.
func (b *ColumnBuilder) Len() int { return b.n }

// Append adds one cell. A value the column type does not accept is a type error.
func (b *ColumnBuilder) Append(v Value) error {
	if !b.typ.Accepts(v.kind) {
		return frameerrors.Newf(frameerrors.ErrorTypeType,
			"cannot store %s value in %s column", v.kind, b.typ).
			WithDetail("position", b.n)
	}
	if v.kind == KindNull {
		b.AppendNull()
		return nil
	}
	switch b.typ {
	case ColumnTypeString:
		b.strs = append(b.strs, v.str)
	case ColumnTypeFloat:
		f, _ := v.Float64()
		b.floats = append(b.floats, f)
	case ColumnTypeInt:
		b.ints = append(b.ints, v.i)
	case ColumnTypeSummary:
		b.sums = append(b.sums, *v.sum)
	}
	b.n++
	return nil
}

// AppendNull adds a missing cell.
func (b *ColumnBuilder) AppendNull() {
	if b.nulls == nil {
		b.nulls = roaring.New()
	}
	b.nulls.Add(uint32(b.n))
	switch b.typ {
	case ColumnTypeString:
		b.strs = append(b.strs, "")
	case ColumnTypeFloat:
		b.floats = append(b.floats, 0)
	case ColumnTypeInt:
		b.ints = append(b.ints, 0)
	case ColumnTypeSummary:
		b.sums = append(b.sums, Summary{})
	}
	b.n++
}

// widenFor converts an int column to float when v is a float, so that a column
// inferred from an integer still accepts later fractional numbers. It reports
// whether the column was widened.
func (b *ColumnBuilder) widenFor(v Value) bool {
	if b.typ != ColumnTypeInt || v.kind != KindFloat {
		return false
	}
	b.floats = make([]float64, len(b.ints), cap(b.ints))
	for i, x := range b.ints {
		b.floats[i] = float64(x)
	}
	b.ints = nil
	b.typ = ColumnTypeFloat
	return true
}

// Truncate drops every cell at or after position n.
func (b *ColumnBuilder) Truncate(n int) {
	if n < 0 || n >= b.n {
		return
	}
	if b.nulls != nil {
		b.nulls.RemoveRange(uint64(n), uint64(b.n))
	}
	switch b.typ {
	case ColumnTypeString:
		b.strs = b.strs[:n]
	case ColumnTypeFloat:
		b.floats = b.floats[:n]
	case ColumnTypeInt:
		b.ints = b.ints[:n]
	case ColumnTypeSummary:
		b.sums = b.sums[:n]
	}
	b.n = n
}

// Build returns the finished column. The builder must not be used afterwards.
func (b *ColumnBuilder) Build() Column {
	mask := nullMask{}
	if b.nulls != nil && !b.nulls.IsEmpty() {
		b.nulls.RunOptimize()
		mask.nulls = b.nulls
	}
	switch b.typ {
	case ColumnTypeFloat:
		return &FloatColumn{nullMask: mask, values: b.floats}
	case ColumnTypeInt:
		return &IntColumn{nullMask: mask, values: b.ints}
	case ColumnTypeSummary:
		return &SummaryColumn{nullMask: mask, values: b.sums}
	default:
		return &StringColumn{nullMask: mask, values: b.strs}
	}
}
