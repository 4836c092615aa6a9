package dataframe

import (
	"go.uber.org/zap"

	"github.com/christos-karalis/dataframe/pkg/metrics"
)

// Aggregate reduces every group to one row: the key values followed by one
// Summary per target column. Null cells are skipped, so a group with no
// numeric cells gets the empty summary. A summary target, such as a column of
// an earlier Aggregate, is rolled up by combining its summaries. Any other
// non-numeric target is a type error.
func (g *GroupBy) Aggregate(cols ...int) (*Table, error) {
	return g.reduce("aggregate", cols, true)
}

// AggregateByName is Aggregate for named target columns.
func (g *GroupBy) AggregateByName(names ...string) (*Table, error) {
	cols, err := g.source.resolveAll(names)
	if err != nil {
		return nil, err
	}
	return g.Aggregate(cols...)
}

// Sum reduces every group to one row: the key values followed by the sum of
// each target column. Null cells are skipped, and a summary target
// contributes the sums of its summaries.
func (g *GroupBy) Sum(cols ...int) (*Table, error) {
	return g.reduce("group_sum", cols, false)
}

// SumByName is Sum for named target columns.
func (g *GroupBy) SumByName(names ...string) (*Table, error) {
	cols, err := g.source.resolveAll(names)
	if err != nil {
		return nil, err
	}
	return g.Sum(cols...)
}

func (g *GroupBy) reduce(op string, cols []int, summaries bool) (*Table, error) {
	timer := metrics.NewTimer(op)
	out, err := g.reduceGroups(cols, summaries)
	g.source.observe(timer, g.source.rows, err, zap.Ints("columns", cols), zap.Int("groups", g.Len()))
	return out, err
}

func (g *GroupBy) reduceGroups(cols []int, summaries bool) (*Table, error) {
	src := g.source
	targets := make([]Column, len(cols))
	for i, c := range cols {
		col, err := src.Column(c)
		if err != nil {
			return nil, err
		}
		if col.Type() != ColumnTypeSummary {
			if col, err = src.numericColumn(c); err != nil {
				return nil, err
			}
		}
		targets[i] = col
	}

	n := g.Len()
	keyBuilders := make([]*ColumnBuilder, len(g.keyColumns))
	for i, c := range g.keyColumns {
		keyBuilders[i] = NewColumnBuilder(src.columns[c].Type(), n)
	}
	outType := ColumnTypeFloat
	if summaries {
		outType = ColumnTypeSummary
	}
	targetBuilders := make([]*ColumnBuilder, len(cols))
	for i := range cols {
		targetBuilders[i] = NewColumnBuilder(outType, n)
	}

	stats := make([]Summary, len(cols))
	for gi := 0; gi < n; gi++ {
		key := g.index.keys[gi]
		for i, b := range keyBuilders {
			if err := b.Append(key.values[i]); err != nil {
				return nil, err
			}
		}
		for i := range stats {
			stats[i] = Summary{}
		}
		g.eachPosition(gi, func(row int) {
			for i, col := range targets {
				v := col.Value(row)
				if s, ok := v.Summary(); ok {
					stats[i].Combine(s)
				} else if f, ok := v.Float64(); ok {
					stats[i].Add(f)
				}
			}
		})
		for i, b := range targetBuilders {
			v := Float(stats[i].Sum())
			if summaries {
				v = SummaryOf(stats[i])
			}
			if err := b.Append(v); err != nil {
				return nil, err
			}
		}
	}

	columns := make([]Column, 0, len(keyBuilders)+len(targetBuilders))
	for _, b := range keyBuilders {
		columns = append(columns, b.Build())
	}
	for _, b := range targetBuilders {
		columns = append(columns, b.Build())
	}

	var names []string
	if src.names != nil {
		names = make([]string, 0, len(columns))
		for _, c := range g.keyColumns {
			names = append(names, src.names[c])
		}
		for _, c := range cols {
			names = append(names, src.names[c])
		}
	}
	return src.derive(columns, names, n), nil
}
