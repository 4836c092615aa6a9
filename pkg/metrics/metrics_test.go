package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCountsOutcome(t *testing.T) {
	before := testutil.ToFloat64(OperationsTotal.WithLabelValues("test_op", StatusSuccess))
	beforeFail := testutil.ToFloat64(OperationsTotal.WithLabelValues("test_op", StatusFailure))
	beforeRows := testutil.ToFloat64(RowsProcessed.WithLabelValues("test_op"))

	Observe("test_op", 10, time.Millisecond, nil)
	Observe("test_op", 5, time.Millisecond, errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(OperationsTotal.WithLabelValues("test_op", StatusSuccess)))
	assert.Equal(t, beforeFail+1, testutil.ToFloat64(OperationsTotal.WithLabelValues("test_op", StatusFailure)))
	assert.Equal(t, beforeRows+15, testutil.ToFloat64(RowsProcessed.WithLabelValues("test_op")))
}

func TestSetEnabled(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	before := testutil.ToFloat64(OperationsTotal.WithLabelValues("disabled_op", StatusSuccess))
	Observe("disabled_op", 1, time.Millisecond, nil)
	assert.Equal(t, before, testutil.ToFloat64(OperationsTotal.WithLabelValues("disabled_op", StatusSuccess)))
	assert.False(t, Enabled())
}

func TestTimer(t *testing.T) {
	timer := NewTimer("sort")
	time.Sleep(2 * time.Millisecond)

	assert.Equal(t, "sort", timer.Name())
	assert.GreaterOrEqual(t, timer.Stop(), 2*time.Millisecond)
}
