// Package generator provides lazy value sequences for building tables with
// dataframe.FromSequences. Random sequences are infinite; the builder's Size
// decides how many values are pulled.
//
//	rng := generator.NewRand(42)
//	table, err := dataframe.FromSequences(
//	    generator.Choice(rng, "GRE", "ITA", "UK"),
//	    generator.Floats(rng, 0, 100),
//	).Size(1000).Build()
package generator

import (
	"iter"
	"math/rand/v2"
)

// NewRand returns a deterministic random source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func intN(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}

func float64Of(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}

// Choice yields uniformly random picks from values forever. With no values the
// sequence is empty. A nil rng uses the global source.
func Choice[T any](rng *rand.Rand, values ...T) iter.Seq[any] {
	return func(yield func(any) bool) {
		if len(values) == 0 {
			return
		}
		for {
			if !yield(values[intN(rng, len(values))]) {
				return
			}
		}
	}
}

// Floats yields uniformly random floats in [lo, hi) forever.
func Floats(rng *rand.Rand, lo, hi float64) iter.Seq[any] {
	return func(yield func(any) bool) {
		for {
			if !yield(lo + float64Of(rng)*(hi-lo)) {
				return
			}
		}
	}
}

// Ints yields uniformly random integers in [lo, hi) forever. An empty range
// yields nothing.
func Ints(rng *rand.Rand, lo, hi int64) iter.Seq[any] {
	return func(yield func(any) bool) {
		if hi <= lo {
			return
		}
		span := hi - lo
		for {
			var n int64
			if rng == nil {
				n = rand.Int64N(span)
			} else {
				n = rng.Int64N(span)
			}
			if !yield(lo + n) {
				return
			}
		}
	}
}

// Counter yields start, start+1, ... forever.
func Counter(start int64) iter.Seq[any] {
	return func(yield func(any) bool) {
		for i := start; ; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// Slice yields the elements of values once.
func Slice[T any](values ...T) iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, v := range values {
			if !yield(v) {
				return
			}
		}
	}
}

// Limit yields at most n values of seq.
func Limit(seq iter.Seq[any], n int) iter.Seq[any] {
	return func(yield func(any) bool) {
		if n <= 0 {
			return
		}
		i := 0
		for v := range seq {
			if !yield(v) {
				return
			}
			i++
			if i == n {
				return
			}
		}
	}
}
