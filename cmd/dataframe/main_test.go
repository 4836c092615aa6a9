package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/christos-karalis/dataframe/pkg/dataframe"
	"github.com/christos-karalis/dataframe/pkg/formats/arrowfmt"
	"github.com/christos-karalis/dataframe/pkg/frameerrors"
	"github.com/christos-karalis/dataframe/pkg/logger"
	"github.com/christos-karalis/dataframe/pkg/sources/generator"
	"github.com/christos-karalis/dataframe/pkg/sources/sqlsource"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dataframe v"+version)
	assert.Contains(t, out, "OS/Arch:")
}

func TestGenerateGroupSumAsJSON(t *testing.T) {
	out, err := execute(t, "generate", "--rows", "500", "--seed", "3",
		"--group-by", "origin", "--sum", "cost", "--sort", "cost", "--desc", "--format", "json")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, gojson.Unmarshal([]byte(out), &rows))
	require.NotEmpty(t, rows)
	assert.LessOrEqual(t, len(rows), len(generator.Countries))

	costs := make([]float64, len(rows))
	for i, r := range rows {
		assert.Contains(t, generator.Countries, r["origin"])
		costs[i] = r["cost"].(float64)
		assert.Greater(t, costs[i], 0.0)
	}
	assert.True(t, sort.IsSorted(sort.Reverse(sort.Float64Slice(costs))))
}

func TestGenerateWhereAndHead(t *testing.T) {
	out, err := execute(t, "generate", "--rows", "200", "--where", "type=VOICE", "--head", "5")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, strings.Join(generator.CallRecordColumns, "\t"), lines[0])
	for _, line := range lines[1:] {
		assert.Equal(t, "VOICE", strings.Split(line, "\t")[3])
	}
}

func TestGenerateArrowFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.arrow")
	_, err := execute(t, "generate", "--rows", "20", "--format", "arrow", "--output", path)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	tbl, err := arrowfmt.ReadIPC(f)
	require.NoError(t, err)
	assert.Equal(t, 20, tbl.NumRows())
	assert.Equal(t, generator.CallRecordColumns, tbl.ColumnNames())
}

func TestGenerateRejectsBadFlags(t *testing.T) {
	_, err := execute(t, "generate", "--sum", "cost")
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeConfig))

	_, err = execute(t, "generate", "--group-by", "origin")
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeConfig))

	_, err = execute(t, "generate", "--where", "planet=mars")
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeIndex))

	_, err = execute(t, "generate", "--format", "csv")
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeConfig))
}

func TestQueryUnsupportedDriver(t *testing.T) {
	_, err := execute(t, "query", "--driver", "oracle", "--sql", "select 1")
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeConfig))
}

func callTable(t *testing.T) *dataframe.Table {
	t.Helper()
	tbl, err := dataframe.FromRows([][]any{
		{"GRE", "VOICE", 10.0},
		{"ITA", "DATA", 2.5},
		{"GRE", "VOICE", 4.0},
		{"UK", "DATA", 7.5},
	}).ColumnNames("country", "type", "cost").Build()
	require.NoError(t, err)
	return tbl
}

func TestApplySumAndSort(t *testing.T) {
	tf := transformFlags{
		groupBy:    []string{"country"},
		sum:        []string{"cost"},
		bitmap:     true,
		sortBy:     "cost",
		descending: true,
		head:       2,
	}
	out, err := tf.apply(callTable(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "country\tcost\nGRE\t14\nUK\t7.5\n", out.String())
}

func TestApplyAggregate(t *testing.T) {
	tf := transformFlags{
		where:     []string{"type=VOICE"},
		groupBy:   []string{"country"},
		aggregate: []string{"cost"},
	}
	out, err := tf.apply(callTable(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, []string{"country", "cost"}, out.ColumnNames())

	v, err := out.Value(0, 1)
	require.NoError(t, err)
	s, ok := v.Summary()
	require.True(t, ok)
	assert.Equal(t, int64(2), s.Count())
	assert.Equal(t, 14.0, s.Sum())
	assert.Equal(t, 7.0, s.Mean())
}

func TestApplySortOnTextIsTypeError(t *testing.T) {
	tf := transformFlags{sortBy: "country"}
	_, err := tf.apply(callTable(t), zaptest.NewLogger(t))
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeType))
}

func TestRetry(t *testing.T) {
	log := zaptest.NewLogger(t)

	calls := 0
	err := retry(context.Background(), 2, 0, log, func(context.Context) error {
		calls++
		return frameerrors.New(frameerrors.ErrorTypeConnection, "refused")
	})
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeConnection))
	assert.Equal(t, 3, calls)

	calls = 0
	err = retry(context.Background(), 5, 0, log, func(context.Context) error {
		calls++
		return frameerrors.New(frameerrors.ErrorTypeQuery, "syntax error")
	})
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeQuery))
	assert.Equal(t, 1, calls, "query errors are not retried")

	calls = 0
	err = retry(context.Background(), 5, 0, log, func(context.Context) error {
		calls++
		if calls < 3 {
			return frameerrors.New(frameerrors.ErrorTypeTimeout, "slow")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestQueryContextTagsLogFields(t *testing.T) {
	ctx := queryContext(context.Background(), "")
	id, ok := ctx.Value(logger.QueryIDKey).(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(id, "q-"))
	assert.Equal(t, sqlsource.DriverPostgres, ctx.Value(logger.SourceKey))

	ctx = queryContext(context.Background(), sqlsource.DriverMySQL)
	assert.Equal(t, sqlsource.DriverMySQL, ctx.Value(logger.SourceKey))
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, int64(42), parseScalar("42"))
	assert.Equal(t, 2.5, parseScalar("2.5"))
	assert.Equal(t, "RPLAN10", parseScalar("RPLAN10"))

	params, err := parseParams([]string{"plan=RPLAN10", "limit=10"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"plan": "RPLAN10", "limit": int64(10)}, params)

	_, err = parseParams([]string{"novalue"})
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeConfig))

	types, err := parseTypes([]string{"string", " float", "int"})
	require.NoError(t, err)
	assert.Equal(t, []dataframe.ColumnType{
		dataframe.ColumnTypeString, dataframe.ColumnTypeFloat, dataframe.ColumnTypeInt,
	}, types)

	_, err = parseTypes([]string{"decimal"})
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeConfig))
}
