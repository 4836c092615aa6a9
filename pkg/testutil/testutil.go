// Package testutil provides testing utilities for the dataframe engine
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/christos-karalis/dataframe/pkg/dataframe"
	"github.com/christos-karalis/dataframe/pkg/sources/generator"
)

// Call record fixture vocabulary.
var (
	Countries = generator.Countries
	RatePlans = generator.RatePlans
	CallTypes = generator.CallTypes
)

// CallRecordColumns names the columns of CallRecords.
var CallRecordColumns = generator.CallRecordColumns

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// CallRecords builds a telecom call-record table of n rows from a fixed seed:
// origin and destination countries, a rate plan, a call type, a duration in
// seconds and a cost.
func CallRecords(t testing.TB, n int, seed uint64, opts ...dataframe.Option) *dataframe.Table {
	t.Helper()

	table, err := dataframe.FromSequences(generator.CallRecords(seed)...).
		ColumnNames(CallRecordColumns...).
		Size(n).
		Options(opts...).
		Build()
	require.NoError(t, err)
	require.Equal(t, n, table.NumRows())
	return table
}
