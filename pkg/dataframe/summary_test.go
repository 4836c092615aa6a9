package dataframe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptySummary(t *testing.T) {
	var s Summary
	assert.Equal(t, int64(0), s.Count())
	assert.Equal(t, 0.0, s.Sum())
	assert.True(t, math.IsInf(s.Min(), 1))
	assert.True(t, math.IsInf(s.Max(), -1))
	assert.Equal(t, 0.0, s.Mean())
}

func TestSummaryAdd(t *testing.T) {
	var s Summary
	for _, v := range []float64{4, -1, 10, 3} {
		s.Add(v)
	}
	assert.Equal(t, int64(4), s.Count())
	assert.Equal(t, 16.0, s.Sum())
	assert.Equal(t, -1.0, s.Min())
	assert.Equal(t, 10.0, s.Max())
	assert.Equal(t, 4.0, s.Mean())
}

func TestSummaryCompensatedSum(t *testing.T) {
	var s Summary
	var naive float64
	for i := 0; i < 1_000_000; i++ {
		s.Add(0.1)
		naive += 0.1
	}
	assert.InDelta(t, 100000.0, s.Sum(), 1e-6)
	assert.Greater(t, math.Abs(naive-100000.0), math.Abs(s.Sum()-100000.0))
}

func TestSummaryCombine(t *testing.T) {
	var a, b, all Summary
	for i := 1; i <= 10; i++ {
		v := float64(i)
		all.Add(v)
		if i%2 == 0 {
			a.Add(v)
		} else {
			b.Add(v)
		}
	}
	a.Combine(b)
	assert.True(t, a.Equal(all))

	var empty Summary
	empty.Combine(all)
	assert.True(t, empty.Equal(all))

	all.Combine(Summary{})
	assert.Equal(t, int64(10), all.Count())
}

func TestSummaryString(t *testing.T) {
	var s Summary
	s.Add(2)
	s.Add(4)
	assert.Equal(t, "{count=2, sum=6, min=2, average=3, max=4}", s.String())
}
