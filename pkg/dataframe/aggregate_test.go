package dataframe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christos-karalis/dataframe/pkg/frameerrors"
)

func TestAggregate(t *testing.T) {
	g, err := newCallTable(t).GroupByNames(false, "country")
	require.NoError(t, err)

	out, err := g.AggregateByName("cost")
	require.NoError(t, err)
	assert.Equal(t, []string{"country", "cost"}, out.ColumnNames())
	assert.Equal(t, []ColumnType{ColumnTypeString, ColumnTypeSummary}, out.ColumnTypes())
	require.Equal(t, 3, out.NumRows())
	assert.Equal(t, []string{"GRE", "ITA", "UK"}, columnStrings(t, out, 0))

	v, err := out.Value(0, 1)
	require.NoError(t, err)
	gre, ok := v.Summary()
	require.True(t, ok)
	assert.Equal(t, int64(3), gre.Count())
	assert.Equal(t, 15.0, gre.Sum())
	assert.Equal(t, 1.0, gre.Min())
	assert.Equal(t, 10.0, gre.Max())
	assert.Equal(t, 5.0, gre.Mean())
}

func TestGroupSum(t *testing.T) {
	tbl := newCallTable(t)
	g, err := tbl.GroupByNames(true, "country", "type")
	require.NoError(t, err)

	out, err := g.SumByName("cost", "minutes")
	require.NoError(t, err)
	assert.Equal(t, []string{"country", "type", "cost", "minutes"}, out.ColumnNames())
	assert.Equal(t, 4, out.NumRows())

	groupTotal, err := out.SumByName("cost")
	require.NoError(t, err)
	tableTotal, err := tbl.SumByName("cost")
	require.NoError(t, err)
	assert.Equal(t, tableTotal, groupTotal)

	v, err := out.Value(0, 3)
	require.NoError(t, err)
	assert.True(t, v.Equal(Float(5)), "GRE VOICE minutes: %v", v)
}

func TestAggregateSkipsNulls(t *testing.T) {
	tbl, err := FromRows([][]any{
		{"A", nil},
		{"A", 2.0},
		{"B", nil},
	}).Types(ColumnTypeString, ColumnTypeFloat).Build()
	require.NoError(t, err)

	g, err := tbl.GroupBy(false, 0)
	require.NoError(t, err)
	out, err := g.Aggregate(1)
	require.NoError(t, err)
	assert.Nil(t, out.ColumnNames(), "unnamed source gives unnamed result")

	v, err := out.Value(0, 1)
	require.NoError(t, err)
	a, _ := v.Summary()
	assert.Equal(t, int64(1), a.Count())
	assert.Equal(t, 2.0, a.Sum())

	v, err = out.Value(1, 1)
	require.NoError(t, err)
	b, _ := v.Summary()
	assert.Equal(t, int64(0), b.Count())
	assert.Equal(t, 0.0, b.Sum())
	assert.True(t, math.IsInf(b.Min(), 1))
	assert.True(t, math.IsInf(b.Max(), -1))
}

func TestAggregateRollsUpSummaries(t *testing.T) {
	tbl := newCallTable(t)
	fine, err := tbl.GroupByNames(false, "country", "type")
	require.NoError(t, err)
	byType, err := fine.AggregateByName("cost")
	require.NoError(t, err)

	coarse, err := byType.GroupByNames(true, "country")
	require.NoError(t, err)
	rolled, err := coarse.AggregateByName("cost")
	require.NoError(t, err)

	direct, err := tbl.GroupByNames(false, "country")
	require.NoError(t, err)
	want, err := direct.AggregateByName("cost")
	require.NoError(t, err)
	assert.Equal(t, want.String(), rolled.String())

	sums, err := coarse.SumByName("cost")
	require.NoError(t, err)
	v, err := sums.Value(0, 1)
	require.NoError(t, err)
	assert.True(t, v.Equal(Float(15)), "GRE cost over both call types")
}

func TestAggregateErrors(t *testing.T) {
	g, err := newCallTable(t).GroupBy(false, 0)
	require.NoError(t, err)

	_, err = g.Aggregate(1)
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeType), "string target")

	_, err = g.Sum(12)
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeIndex))

	_, err = g.AggregateByName("missing")
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeIndex))
}
