package sqlsource

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/christos-karalis/dataframe/pkg/config"
	"github.com/christos-karalis/dataframe/pkg/dataframe"
	"github.com/christos-karalis/dataframe/pkg/frameerrors"
	"github.com/christos-karalis/dataframe/pkg/logger"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Query(ctx context.Context, statement string, params Params) (*ResultSet, error) {
	args := m.Called(ctx, statement, params)
	if rs := args.Get(0); rs != nil {
		return rs.(*ResultSet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSource) Driver() string { return "mock" }

func (m *MockSource) Close() {}

func callResult() *ResultSet {
	return &ResultSet{
		Columns: []string{"region", "duration"},
		Types:   []dataframe.ColumnType{dataframe.ColumnTypeString, dataframe.ColumnTypeFloat},
		Rows: [][]any{
			{"GRE", int64(60)},
			{"ITA", 30.5},
		},
	}
}

func TestQueryBindsPositionalParameters(t *testing.T) {
	src := new(MockSource)
	src.On("Query", mock.Anything, "select * from calls where plan = $1 and type = $2",
		Params{Positional: []any{"RPLAN10", "VOICE"}}).
		Return(callResult(), nil).Once()

	table, err := NewQuery(src, "select * from calls where plan = $1 and type = $2").
		AddParameter("RPLAN10").
		AddParameter("VOICE").
		Types(dataframe.ColumnTypeString, dataframe.ColumnTypeFloat).
		ColumnNames("region", "duration").
		WithLogger(zaptest.NewLogger(t)).
		Build(context.Background())
	require.NoError(t, err)
	src.AssertExpectations(t)

	assert.Equal(t, 2, table.NumRows())
	sum, err := table.SumByName("duration")
	require.NoError(t, err)
	assert.Equal(t, 90.5, sum)
}

func TestQueryBindsNamedParameters(t *testing.T) {
	src := new(MockSource)
	src.On("Query", mock.Anything, "select * from calls where plan = @plan",
		mock.MatchedBy(func(p Params) bool {
			return len(p.Positional) == 0 && p.Named["plan"] == "RPLAN30"
		})).
		Return(callResult(), nil).Once()

	_, err := NewQuery(src, "select * from calls where plan = @plan").
		SetParameter("plan", "RPLAN30").
		UseSourceTypes().
		Build(context.Background())
	require.NoError(t, err)
	src.AssertExpectations(t)
}

func TestQueryInfersTypesFromFirstRow(t *testing.T) {
	src := new(MockSource)
	src.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(callResult(), nil).Once()

	table, err := NewQuery(src, "select 1").Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []dataframe.ColumnType{dataframe.ColumnTypeString, dataframe.ColumnTypeFloat}, table.ColumnTypes(),
		"an int first cell infers a numeric column that widens at 30.5")
	sum, err := table.Sum(1)
	require.NoError(t, err)
	assert.Equal(t, 90.5, sum)
}

func TestQueryLogsContextFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.log")
	require.NoError(t, logger.Init(logger.Config{Level: "debug", OutputPaths: []string{path}}))
	t.Cleanup(func() { _ = logger.Init(logger.Config{Level: "info"}) })

	src := new(MockSource)
	src.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(callResult(), nil).Once()

	ctx := context.WithValue(context.Background(), logger.QueryIDKey, "q-7")
	ctx = context.WithValue(ctx, logger.SourceKey, "mock")
	_, err := NewQuery(src, "select 1").Build(ctx)
	require.NoError(t, err)
	_ = logger.Sync()

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"message":"query completed"`)
	assert.Contains(t, string(out), `"query_id":"q-7"`)
	assert.Contains(t, string(out), `"source":"mock"`)
}

func TestQueryUsesSourceTypes(t *testing.T) {
	src := new(MockSource)
	src.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(callResult(), nil).Once()

	table, err := NewQuery(src, "select 1").UseSourceTypes().Build(context.Background())
	require.NoError(t, err)
	assert.Nil(t, table.ColumnNames())
	assert.Equal(t, []dataframe.ColumnType{dataframe.ColumnTypeString, dataframe.ColumnTypeFloat}, table.ColumnTypes())
}

func TestQueryRejectsMixedParameters(t *testing.T) {
	src := new(MockSource)
	_, err := NewQuery(src, "select 1").AddParameter(1).SetParameter("x", 2).Build(context.Background())
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeConfig))
	src.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
}

func TestQueryPropagatesSourceErrors(t *testing.T) {
	src := new(MockSource)
	src.On("Query", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, classify(context.DeadlineExceeded, frameerrors.ErrorTypeQuery, "query failed")).Once()

	_, err := NewQuery(src, "select pg_sleep(10)").Timeout(time.Millisecond).Build(context.Background())
	require.Error(t, err)
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeTimeout))
	assert.True(t, frameerrors.IsRetryable(err))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.SourceConfig{Driver: "oracle"})
	assert.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeConfig))
}

func TestNormalizeCell(t *testing.T) {
	var n pgtype.Numeric
	require.NoError(t, n.Scan("12.50"))

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bytes", []byte("GRE"), "GRE"},
		{"bool", true, int64(1)},
		{"numeric", n, 12.5},
		{"invalid numeric", pgtype.Numeric{}, nil},
		{"big int", big.NewInt(42), 42.0},
		{"time", ts, "2024-03-01T10:00:00Z"},
		{"int64", int64(3), int64(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeCell(tt.in))
		})
	}
}
