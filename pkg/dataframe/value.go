package dataframe

import (
	"fmt"
	"math"
	"strconv"

	"github.com/christos-karalis/dataframe/pkg/frameerrors"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindFloat
	KindInt
	KindSummary
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindSummary:
		return "summary"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a single table cell. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	i    int64
	sum  *Summary
}

// Null returns the missing-value marker.
func Null() Value { return Value{} }

// String returns a text cell.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Float returns a 64-bit floating point cell.
func Float(f float64) Value { return Value{kind: KindFloat, num: f} }

// Int returns a 64-bit integer cell.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// SummaryOf returns a cell holding a copy of s.
func SummaryOf(s Summary) Value {
	c := s
	return Value{kind: KindSummary, sum: &c}
}

// ValueOf converts a Go value into a cell. Supported inputs are nil, Value,
// string, []byte, every integer and float kind, Summary and *Summary.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case []byte:
		return String(string(x)), nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(float64(x)), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint(uint64(x)), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint(x), nil
	case Summary:
		return SummaryOf(x), nil
	case *Summary:
		if x == nil {
			return Null(), nil
		}
		return SummaryOf(*x), nil
	default:
		return Null(), frameerrors.Newf(frameerrors.ErrorTypeType, "unsupported cell type %T", v).
			WithDetail("value", v)
	}
}

// fromUint keeps values above MaxInt64 as floats instead of wrapping.
func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

// Kind returns the tag of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the missing-value marker.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumeric reports whether v is a float or an int.
func (v Value) IsNumeric() bool { return v.kind == KindFloat || v.kind == KindInt }

// Float64 returns the numeric value of a float or int cell.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.num, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// Int64 returns the value of an int cell.
func (v Value) Int64() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// Str returns the value of a text cell.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Summary returns the value of a summary cell.
func (v Value) Summary() (Summary, bool) {
	if v.kind != KindSummary {
		return Summary{}, false
	}
	return *v.sum, true
}

// Any returns the cell as a plain Go value (nil, string, float64, int64 or Summary).
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindFloat:
		return v.num
	case KindInt:
		return v.i
	case KindSummary:
		return *v.sum
	default:
		return nil
	}
}

// Equal is structural equality. Nulls equal nulls, NaN equals NaN and values of
// different kinds are never equal, so Int(1) and Float(1) are distinct keys.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindFloat:
		return v.num == o.num || (math.IsNaN(v.num) && math.IsNaN(o.num))
	case KindInt:
		return v.i == o.i
	case KindSummary:
		return v.sum.Equal(*o.sum)
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindFloat:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindSummary:
		return v.sum.String()
	default:
		return "null"
	}
}
