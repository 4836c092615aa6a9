package dataframe

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/christos-karalis/dataframe/pkg/metrics"
)

// GroupBy is the partition of a table's rows by composite key. Every row
// belongs to exactly one group.
//
// Groups are kept either as position lists or as roaring bitmaps. Bitmaps
// iterate positions in ascending order and compress well for low-cardinality
// keys over large tables.
type GroupBy struct {
	source     *Table
	keyColumns []int
	useBitmap  bool
	index      *keyIndex
	lists      [][]int
	bitmaps    []*roaring.Bitmap
}

// Group is one partition cell.
type Group struct {
	Key       CompositeKey
	Positions []int
}

// GroupBy partitions rows by the values of the given columns. With useBitmap
// the partitions are bitmaps instead of position lists.
//
// The table is split into contiguous row ranges that are grouped in parallel,
// one local partial result per worker. The partials are merged in range order
// once every worker is done.
func (t *Table) GroupBy(useBitmap bool, cols ...int) (*GroupBy, error) {
	timer := metrics.NewTimer("group_by")
	g, err := t.groupBy(useBitmap, cols)
	fields := []zap.Field{zap.Ints("columns", cols), zap.Bool("bitmap", useBitmap)}
	if err == nil {
		fields = append(fields, zap.Int("groups", g.Len()))
		metrics.ObserveGroups(g.Len())
	}
	t.observe(timer, t.rows, err, fields...)
	return g, err
}

// GroupByNames is GroupBy for named columns.
func (t *Table) GroupByNames(useBitmap bool, names ...string) (*GroupBy, error) {
	cols, err := t.resolveAll(names)
	if err != nil {
		return nil, err
	}
	return t.GroupBy(useBitmap, cols...)
}

type groupPartial struct {
	index   *keyIndex
	lists   [][]int
	bitmaps []*roaring.Bitmap
}

func (t *Table) groupBy(useBitmap bool, cols []int) (*GroupBy, error) {
	for _, c := range cols {
		if err := t.checkColumn(c); err != nil {
			return nil, err
		}
	}
	keyCols := slices.Clone(cols)

	workers := t.opts.workersFor(t.rows)
	chunk := (t.rows + workers - 1) / workers
	partials := make([]*groupPartial, workers)

	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		start := min(w*chunk, t.rows)
		end := min(start+chunk, t.rows)
		eg.Go(func() error {
			partials[w] = t.groupRange(keyCols, useBitmap, start, end)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	g := &GroupBy{
		source:     t,
		keyColumns: keyCols,
		useBitmap:  useBitmap,
		index:      newKeyIndex(),
	}
	for _, p := range partials {
		g.merge(p)
	}
	return g, nil
}

// groupRange groups rows [start, end) into a partial owned by one worker.
func (t *Table) groupRange(cols []int, useBitmap bool, start, end int) *groupPartial {
	p := &groupPartial{index: newKeyIndex()}
	h := newKeyHasher()
	scratch := make([]Value, len(cols))
	for r := start; r < end; r++ {
		for i, c := range cols {
			scratch[i] = t.columns[c].Value(r)
		}
		hash := h.hashValues(scratch)
		gi := p.index.lookup(hash, scratch)
		if gi < 0 {
			gi = p.index.insert(hash, scratch)
			if useBitmap {
				p.bitmaps = append(p.bitmaps, roaring.New())
			} else {
				p.lists = append(p.lists, nil)
			}
		}
		if useBitmap {
			p.bitmaps[gi].Add(uint32(r))
		} else {
			p.lists[gi] = append(p.lists[gi], r)
		}
	}
	return p
}

func (g *GroupBy) merge(p *groupPartial) {
	for pi, key := range p.index.keys {
		gi := g.index.lookup(key.hash, key.values)
		if gi < 0 {
			gi = g.index.insert(key.hash, key.values)
			if g.useBitmap {
				g.bitmaps = append(g.bitmaps, p.bitmaps[pi])
			} else {
				g.lists = append(g.lists, p.lists[pi])
			}
			continue
		}
		if g.useBitmap {
			g.bitmaps[gi].Or(p.bitmaps[pi])
		} else {
			g.lists[gi] = append(g.lists[gi], p.lists[pi]...)
		}
	}
}

// Len returns the number of groups.
func (g *GroupBy) Len() int { return g.index.len() }

// Bitmap reports whether groups are stored as bitmaps.
func (g *GroupBy) Bitmap() bool { return g.useBitmap }

// KeyColumns returns the grouping column positions.
func (g *GroupBy) KeyColumns() []int { return slices.Clone(g.keyColumns) }

// Source returns the grouped table.
func (g *GroupBy) Source() *Table { return g.source }

// Groups returns every group with its row positions.
func (g *GroupBy) Groups() []Group {
	out := make([]Group, g.Len())
	for i := range out {
		out[i] = Group{Key: g.index.keys[i], Positions: g.positions(i)}
	}
	return out
}

// Lookup returns the row positions of the group with the given key.
func (g *GroupBy) Lookup(key CompositeKey) ([]int, bool) {
	gi := g.index.lookup(key.hash, key.values)
	if gi < 0 {
		return nil, false
	}
	return g.positions(gi), true
}

func (g *GroupBy) positions(gi int) []int {
	if g.useBitmap {
		bm := g.bitmaps[gi]
		out := make([]int, 0, bm.GetCardinality())
		it := bm.Iterator()
		for it.HasNext() {
			out = append(out, int(it.Next()))
		}
		return out
	}
	return slices.Clone(g.lists[gi])
}

// eachPosition calls fn for every row of group gi without copying.
func (g *GroupBy) eachPosition(gi int, fn func(row int)) {
	if g.useBitmap {
		g.bitmaps[gi].Iterate(func(x uint32) bool {
			fn(int(x))
			return true
		})
		return
	}
	for _, r := range g.lists[gi] {
		fn(r)
	}
}
