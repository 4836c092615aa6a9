package dataframe

import (
	"go.uber.org/zap"

	"github.com/christos-karalis/dataframe/pkg/frameerrors"
	"github.com/christos-karalis/dataframe/pkg/metrics"
)

const noChild = -1

// sortNode is one row position in the sort index.
type sortNode struct {
	row    int
	lower  int
	higher int
}

// sortIndex is an unbalanced binary search tree over the numeric cells of one
// column. Nodes live in an arena and refer to each other by position.
//
// Rows equal to a node are routed to the side that is visited after the node,
// so equal keys come out in their original row order in both directions.
type sortIndex struct {
	column     int
	keys       []float64
	nodes      []sortNode
	tiesHigher bool
}

func newSortIndex(t *Table, col int, ascending bool) (*sortIndex, error) {
	c, err := t.numericColumn(col)
	if err != nil {
		return nil, err
	}
	ix := &sortIndex{
		column:     col,
		keys:       make([]float64, t.rows),
		nodes:      make([]sortNode, 0, t.rows),
		tiesHigher: ascending,
	}
	for r := 0; r < t.rows; r++ {
		v, ok := c.Value(r).Float64()
		if !ok {
			return nil, frameerrors.Newf(frameerrors.ErrorTypeType,
				"cannot sort on null cell in column %d at row %d", col, r).
				WithDetail("column", col).
				WithDetail("row", r)
		}
		ix.keys[r] = v
	}
	for r := 0; r < t.rows; r++ {
		ix.insert(r)
	}
	return ix, nil
}

func (ix *sortIndex) insert(row int) {
	ix.nodes = append(ix.nodes, sortNode{row: row, lower: noChild, higher: noChild})
	n := len(ix.nodes) - 1
	if n == 0 {
		return
	}
	key := ix.keys[row]
	cur := 0
	for {
		node := &ix.nodes[cur]
		nodeKey := ix.keys[node.row]
		if key > nodeKey || (ix.tiesHigher && key == nodeKey) {
			if node.higher == noChild {
				node.higher = n
				return
			}
			cur = node.higher
		} else {
			if node.lower == noChild {
				node.lower = n
				return
			}
			cur = node.lower
		}
	}
}

// permutation walks the tree in order (lower, node, higher) when ascending and
// in reverse otherwise. The walk uses an explicit stack because a presorted
// column degenerates the tree into a list.
func (ix *sortIndex) permutation(ascending bool) []int {
	out := make([]int, 0, len(ix.nodes))
	if len(ix.nodes) == 0 {
		return out
	}
	first := func(n *sortNode) int { return n.lower }
	second := func(n *sortNode) int { return n.higher }
	if !ascending {
		first, second = second, first
	}
	var stack []int
	cur := 0
	for cur != noChild || len(stack) > 0 {
		for cur != noChild {
			stack = append(stack, cur)
			cur = first(&ix.nodes[cur])
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, ix.nodes[cur].row)
		cur = second(&ix.nodes[cur])
	}
	return out
}

// Sort returns the rows ordered by a numeric column. Equal keys keep their
// original relative order. A non-numeric column or a null cell is a type error.
func (t *Table) Sort(col int, ascending bool) (*Table, error) {
	timer := metrics.NewTimer("sort")
	out, err := t.sort(col, ascending)
	t.observe(timer, t.rows, err, zap.Int("column", col), zap.Bool("ascending", ascending))
	return out, err
}

// SortByName is Sort for the first column called name.
func (t *Table) SortByName(name string, ascending bool) (*Table, error) {
	i, err := t.resolve(name)
	if err != nil {
		return nil, err
	}
	return t.Sort(i, ascending)
}

func (t *Table) sort(col int, ascending bool) (*Table, error) {
	ix, err := newSortIndex(t, col, ascending)
	if err != nil {
		return nil, err
	}
	return t.take(ix.permutation(ascending)), nil
}
