package dataframe

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// CompositeKey is the ordered tuple of grouping-column values of a row.
// Two keys are equal when every element is equal, nulls included.
type CompositeKey struct {
	values []Value
	hash   uint64
}

// NewCompositeKey builds a key from values. The slice is copied.
func NewCompositeKey(values ...Value) CompositeKey {
	v := make([]Value, len(values))
	copy(v, values)
	return CompositeKey{values: v, hash: newKeyHasher().hashValues(v)}
}

// Len returns the number of elements.
func (k CompositeKey) Len() int { return len(k.values) }

// At returns element i.
func (k CompositeKey) At(i int) Value { return k.values[i] }

// Values returns a copy of the elements.
func (k CompositeKey) Values() []Value {
	out := make([]Value, len(k.values))
	copy(out, k.values)
	return out
}

// Hash returns the 64-bit hash of the key.
func (k CompositeKey) Hash() uint64 { return k.hash }

// Equal reports element-wise equality.
func (k CompositeKey) Equal(o CompositeKey) bool {
	return k.hash == o.hash && valuesEqual(k.values, o.values)
}

func (k CompositeKey) String() string {
	parts := make([]string, len(k.values))
	for i, v := range k.values {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func valuesEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// keyHasher hashes cells with xxhash. It is not safe for concurrent use; each
// grouping worker owns one.
type keyHasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func newKeyHasher() *keyHasher {
	return &keyHasher{d: xxhash.New()}
}

func (h *keyHasher) hashValue(v Value) uint64 {
	h.d.Reset()
	h.write(v)
	return h.d.Sum64()
}

func (h *keyHasher) hashValues(vs []Value) uint64 {
	h.d.Reset()
	for _, v := range vs {
		h.write(v)
	}
	return h.d.Sum64()
}

func (h *keyHasher) write(v Value) {
	h.d.Write([]byte{byte(v.kind)})
	switch v.kind {
	case KindString:
		h.writeUint(uint64(len(v.str)))
		h.d.WriteString(v.str)
	case KindFloat:
		h.writeFloat(v.num)
	case KindInt:
		h.writeUint(uint64(v.i))
	case KindSummary:
		h.writeUint(uint64(v.sum.Count()))
		h.writeFloat(v.sum.Sum())
		h.writeFloat(v.sum.Min())
		h.writeFloat(v.sum.Max())
	}
}

// writeFloat folds -0 into 0 and every NaN into one pattern so that equal
// floats hash alike.
func (h *keyHasher) writeFloat(f float64) {
	switch {
	case f == 0:
		f = 0
	case math.IsNaN(f):
		f = math.NaN()
	}
	h.writeUint(math.Float64bits(f))
}

func (h *keyHasher) writeUint(u uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], u)
	h.d.Write(h.buf[:])
}

// keyIndex maps composite keys to dense group numbers. Hash collisions are
// resolved with element-wise comparison.
type keyIndex struct {
	buckets map[uint64][]int
	keys    []CompositeKey
}

func newKeyIndex() *keyIndex {
	return &keyIndex{buckets: make(map[uint64][]int)}
}

// lookup returns the group number of values, or -1.
func (ix *keyIndex) lookup(hash uint64, values []Value) int {
	for _, g := range ix.buckets[hash] {
		if valuesEqual(ix.keys[g].values, values) {
			return g
		}
	}
	return -1
}

// insert registers a new key and returns its group number. values is copied.
func (ix *keyIndex) insert(hash uint64, values []Value) int {
	v := make([]Value, len(values))
	copy(v, values)
	g := len(ix.keys)
	ix.keys = append(ix.keys, CompositeKey{values: v, hash: hash})
	ix.buckets[hash] = append(ix.buckets[hash], g)
	return g
}

func (ix *keyIndex) len() int { return len(ix.keys) }
