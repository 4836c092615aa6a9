package dataframe

import (
	"fmt"
	"math"
)

// Summary holds count, sum, minimum, maximum and mean of a set of numbers. The
// sum is accumulated with Kahan compensation so that long columns of small
// values do not drift.
//
// The zero Summary is the empty summary: Count 0, Sum 0, Min +Inf, Max -Inf and
// Mean 0. Aggregating a group that has no numeric cells yields exactly that.
type Summary struct {
	count  int64
	sum    float64
	comp   float64
	simple float64
	min    float64
	max    float64
}

// SummaryFromStats rebuilds a summary from its observable statistics, for
// example after decoding one. A non-positive count gives the empty summary.
func SummaryFromStats(count int64, sum, min, max float64) Summary {
	if count <= 0 {
		return Summary{}
	}
	return Summary{count: count, sum: sum, simple: sum, min: min, max: max}
}

// Add accepts one value.
func (s *Summary) Add(v float64) {
	if s.count == 0 {
		s.min, s.max = v, v
	} else {
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
	}
	s.count++
	s.simple += v
	s.addCompensated(v)
}

// Combine folds o into s.
func (s *Summary) Combine(o Summary) {
	if o.count == 0 {
		return
	}
	if s.count == 0 {
		*s = o
		return
	}
	s.count += o.count
	s.simple += o.simple
	s.addCompensated(o.sum)
	s.addCompensated(-o.comp)
	s.min = math.Min(s.min, o.min)
	s.max = math.Max(s.max, o.max)
}

func (s *Summary) addCompensated(v float64) {
	y := v - s.comp
	t := s.sum + y
	s.comp = (t - s.sum) - y
	s.sum = t
}

// Count returns the number of accepted values.
func (s Summary) Count() int64 { return s.count }

// Sum returns the compensated sum.
func (s Summary) Sum() float64 {
	total := s.sum - s.comp
	if math.IsNaN(total) && math.IsInf(s.simple, 0) {
		return s.simple
	}
	return total
}

// Min returns the smallest value, or +Inf for an empty summary.
func (s Summary) Min() float64 {
	if s.count == 0 {
		return math.Inf(1)
	}
	return s.min
}

// Max returns the largest value, or -Inf for an empty summary.
func (s Summary) Max() float64 {
	if s.count == 0 {
		return math.Inf(-1)
	}
	return s.max
}

// Mean returns Sum/Count, or 0 for an empty summary.
func (s Summary) Mean() float64 {
	if s.count == 0 {
		return 0
	}
	return s.Sum() / float64(s.count)
}

// Equal compares the observable statistics of two summaries.
func (s Summary) Equal(o Summary) bool {
	return s.count == o.count &&
		sameFloat(s.Sum(), o.Sum()) &&
		sameFloat(s.Min(), o.Min()) &&
		sameFloat(s.Max(), o.Max())
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func (s Summary) String() string {
	return fmt.Sprintf("{count=%d, sum=%g, min=%g, average=%g, max=%g}",
		s.Count(), s.Sum(), s.Min(), s.Mean(), s.Max())
}
