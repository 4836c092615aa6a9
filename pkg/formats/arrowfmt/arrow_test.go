package arrowfmt

import (
	"bytes"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christos-karalis/dataframe/pkg/dataframe"
	"github.com/christos-karalis/dataframe/pkg/frameerrors"
)

func aggregatedTable(t *testing.T) *dataframe.Table {
	t.Helper()
	tbl, err := dataframe.FromRows([][]any{
		{"GRE", 10.0, 3},
		{"ITA", nil, 1},
		{"GRE", 4.0, 2},
	}).
		Types(dataframe.ColumnTypeString, dataframe.ColumnTypeFloat, dataframe.ColumnTypeInt).
		ColumnNames("country", "cost", "minutes").
		Build()
	require.NoError(t, err)

	g, err := tbl.GroupByNames(false, "country")
	require.NoError(t, err)
	out, err := g.AggregateByName("cost")
	require.NoError(t, err)
	return out
}

func TestSchema(t *testing.T) {
	schema := Schema(aggregatedTable(t))
	require.Equal(t, 2, schema.NumFields())
	assert.Equal(t, "country", schema.Field(0).Name)
	assert.Equal(t, arrow.STRING, schema.Field(0).Type.ID())
	assert.True(t, arrow.TypeEqual(summaryType, schema.Field(1).Type))
}

func TestRecordRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	src := aggregatedTable(t)
	rec, err := ToRecord(src, mem)
	require.NoError(t, err)
	defer rec.Release()
	assert.Equal(t, int64(2), rec.NumRows())

	back, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, src.ColumnNames(), back.ColumnNames())
	assert.Equal(t, src.String(), back.String())

	v, err := back.Value(1, 1)
	require.NoError(t, err)
	s, ok := v.Summary()
	require.True(t, ok)
	assert.Equal(t, int64(0), s.Count(), "ITA had only a null cost")
}

func TestIPCRoundTripKeepsNullsAndUnnamedColumns(t *testing.T) {
	src, err := dataframe.FromRows([][]any{
		{"a", 1.5, 7},
		{nil, nil, nil},
	}).Types(dataframe.ColumnTypeString, dataframe.ColumnTypeFloat, dataframe.ColumnTypeInt).Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteIPC(&buf, src))

	back, err := ReadIPC(&buf)
	require.NoError(t, err)
	assert.Nil(t, back.ColumnNames())
	assert.Equal(t, src.ColumnTypes(), back.ColumnTypes())
	for c := 0; c < 3; c++ {
		col, err := back.Column(c)
		require.NoError(t, err)
		assert.True(t, col.IsNull(1))
		assert.False(t, col.IsNull(0))
	}
}

func TestFromRecordRejectsUnsupportedTypes(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{{Name: "flag", Type: arrow.FixedWidthTypes.Boolean}}, nil)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.BooleanBuilder).Append(true)
	rec := b.NewRecord()
	defer rec.Release()

	_, err := FromRecord(rec)
	require.Error(t, err)
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeFormat))
}

func TestFromRecordWidensNarrowTypes(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "n", Type: arrow.PrimitiveTypes.Int32},
		{Name: "f", Type: arrow.PrimitiveTypes.Float32},
	}, nil)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.Int32Builder).AppendValues([]int32{1, 2}, nil)
	b.Field(1).(*array.Float32Builder).AppendValues([]float32{0.5, 1.5}, nil)
	rec := b.NewRecord()
	defer rec.Release()

	tbl, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"n", "f"}, tbl.ColumnNames(), "schemas without metadata are named")
	sum, err := tbl.SumByName("f")
	require.NoError(t, err)
	assert.Equal(t, 2.0, sum)
}
