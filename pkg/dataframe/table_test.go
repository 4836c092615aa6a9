package dataframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/christos-karalis/dataframe/pkg/frameerrors"
)

// newCallTable returns a small named table:
//
//	country type  cost minutes
//	GRE     VOICE 10   3
//	ITA     DATA  2.5  1
//	GRE     VOICE 4    2
//	UK      DATA  7.5  5
//	GRE     DATA  1    4
func newCallTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := FromRows([][]any{
		{"GRE", "VOICE", 10.0, 3},
		{"ITA", "DATA", 2.5, 1},
		{"GRE", "VOICE", 4.0, 2},
		{"UK", "DATA", 7.5, 5},
		{"GRE", "DATA", 1.0, 4},
	}).
		ColumnNames("country", "type", "cost", "minutes").
		Options(WithLogger(zaptest.NewLogger(t))).
		Build()
	require.NoError(t, err)
	return tbl
}

func TestTableAccessors(t *testing.T) {
	tbl := newCallTable(t)

	assert.Equal(t, 5, tbl.Count())
	assert.Equal(t, 5, tbl.NumRows())
	assert.Equal(t, 4, tbl.NumColumns())
	assert.Equal(t, []string{"country", "type", "cost", "minutes"}, tbl.ColumnNames())
	assert.Equal(t, []ColumnType{ColumnTypeString, ColumnTypeString, ColumnTypeFloat, ColumnTypeInt}, tbl.ColumnTypes())
	assert.Equal(t, 2, tbl.ColumnIndex("cost"))
	assert.Equal(t, NotFound, tbl.ColumnIndex("missing"))

	v, err := tbl.Value(3, 0)
	require.NoError(t, err)
	assert.True(t, v.Equal(String("UK")))

	row, err := tbl.Row(1)
	require.NoError(t, err)
	assert.Len(t, row, 4)
	assert.True(t, row[3].Equal(Int(1)))
}

func TestTableIndexErrors(t *testing.T) {
	tbl := newCallTable(t)

	_, err := tbl.Column(NotFound)
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeIndex))

	_, err = tbl.Column(4)
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeIndex))

	_, err = tbl.Value(5, 0)
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeIndex))

	_, err = tbl.Row(-1)
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeIndex))

	_, err = tbl.SumByName("missing")
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeIndex))
}

func TestTableSumAndAverage(t *testing.T) {
	tbl := newCallTable(t)

	sum, err := tbl.SumByName("cost")
	require.NoError(t, err)
	assert.Equal(t, 25.0, sum)

	avg, err := tbl.AverageByName("minutes")
	require.NoError(t, err)
	assert.Equal(t, 3.0, avg)

	_, err = tbl.Sum(0)
	require.Error(t, err)
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeType))
}

func TestTableSumRejectsNull(t *testing.T) {
	tbl, err := FromRows([][]any{{1.0}, {nil}, {2.0}}).Types(ColumnTypeFloat).Build()
	require.NoError(t, err)

	_, err = tbl.Sum(0)
	require.Error(t, err)
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeType))
}

func TestAverageOfEmptyTable(t *testing.T) {
	tbl, err := FromRows(nil).Types(ColumnTypeFloat).Build()
	require.NoError(t, err)

	avg, err := tbl.Average(0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)
}

func TestDistinct(t *testing.T) {
	tbl := newCallTable(t)

	values, err := tbl.Distinct(0)
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.Equal(t, "GRE", values[0].String())
	assert.Equal(t, "ITA", values[1].String())
	assert.Equal(t, "UK", values[2].String())

	_, err = tbl.Distinct(9)
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeIndex))
}

func TestHead(t *testing.T) {
	tbl := newCallTable(t)

	head := tbl.Head(2)
	assert.Equal(t, 2, head.NumRows())
	assert.Equal(t, tbl.ColumnNames(), head.ColumnNames())
	assert.Equal(t, 5, tbl.Head(100).NumRows())
	assert.Equal(t, 0, tbl.Head(-1).NumRows())
}

func TestTableString(t *testing.T) {
	tbl := newCallTable(t).Head(2)
	want := "country\ttype\tcost\tminutes\n" +
		"GRE\tVOICE\t10\t3\n" +
		"ITA\tDATA\t2.5\t1\n"
	assert.Equal(t, want, tbl.String())
}

func TestNewTableValidatesShape(t *testing.T) {
	a := NewColumnBuilder(ColumnTypeInt, 2)
	require.NoError(t, a.Append(Int(1)))
	b := NewColumnBuilder(ColumnTypeInt, 2)

	_, err := NewTable([]Column{a.Build(), b.Build()}, nil)
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeShape))

	_, err = NewTable(nil, []string{"x"})
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeConfig))
}
