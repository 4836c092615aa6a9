package generator

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func take(seq iter.Seq[any], n int) []any {
	var out []any
	for v := range seq {
		out = append(out, v)
		if len(out) == n {
			break
		}
	}
	return out
}

func TestChoiceStaysInSet(t *testing.T) {
	values := take(Choice(NewRand(1), "VOICE", "DATA"), 200)
	require.Len(t, values, 200)

	seen := map[any]bool{}
	for _, v := range values {
		assert.Contains(t, []any{"VOICE", "DATA"}, v)
		seen[v] = true
	}
	assert.Len(t, seen, 2)
}

func TestChoiceEmpty(t *testing.T) {
	assert.Empty(t, take(Choice[string](nil), 5))
}

func TestSeededSequencesRepeat(t *testing.T) {
	a := take(Floats(NewRand(7), 0, 1), 10)
	b := take(Floats(NewRand(7), 0, 1), 10)
	assert.Equal(t, a, b)
}

func TestFloatsRange(t *testing.T) {
	for _, v := range take(Floats(nil, 10, 20), 100) {
		f := v.(float64)
		assert.GreaterOrEqual(t, f, 10.0)
		assert.Less(t, f, 20.0)
	}
}

func TestIntsRange(t *testing.T) {
	for _, v := range take(Ints(NewRand(3), -5, 5), 100) {
		i := v.(int64)
		assert.GreaterOrEqual(t, i, int64(-5))
		assert.Less(t, i, int64(5))
	}
	assert.Empty(t, take(Ints(nil, 5, 5), 3))
}

func TestSliceAndLimit(t *testing.T) {
	assert.Equal(t, []any{1, 2, 3}, take(Slice(1, 2, 3), 10))
	assert.Equal(t, []any{int64(0), int64(1), int64(2)}, take(Limit(Counter(0), 3), 10))
	assert.Empty(t, take(Limit(Counter(0), 0), 10))
}

func TestCallRecords(t *testing.T) {
	seqs := CallRecords(11)
	require.Len(t, seqs, len(CallRecordColumns))

	assert.Contains(t, Countries, take(seqs[0], 1)[0])
	assert.Contains(t, RatePlans, take(seqs[2], 1)[0])
	assert.Contains(t, CallTypes, take(seqs[3], 1)[0])
	cost := take(seqs[5], 1)[0].(float64)
	assert.GreaterOrEqual(t, cost, 0.0)
	assert.Less(t, cost, 25.0)

	again := CallRecords(11)
	assert.Equal(t, take(CallRecords(11)[4], 5), take(again[4], 5))
}
