package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/christos-karalis/dataframe/pkg/dataframe"
	"github.com/christos-karalis/dataframe/pkg/formats/arrowfmt"
	"github.com/christos-karalis/dataframe/pkg/formats/jsonfmt"
	"github.com/christos-karalis/dataframe/pkg/frameerrors"
)

// transformFlags describes what to do with a table once it is built.
type transformFlags struct {
	where      []string
	groupBy    []string
	sum        []string
	aggregate  []string
	bitmap     bool
	sortBy     string
	descending bool
	head       int
}

func (f *transformFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayVar(&f.where, "where", nil, "Keep rows where column=value (repeatable, all must match)")
	flags.StringSliceVar(&f.groupBy, "group-by", nil, "Columns to group by")
	flags.StringSliceVar(&f.sum, "sum", nil, "Columns to sum per group")
	flags.StringSliceVar(&f.aggregate, "aggregate", nil, "Columns to summarize per group (count, sum, min, max, mean)")
	flags.BoolVar(&f.bitmap, "bitmap", false, "Store group partitions as bitmaps (default from engine.use_bitmap)")
	flags.StringVar(&f.sortBy, "sort", "", "Column to sort by")
	flags.BoolVar(&f.descending, "desc", false, "Sort in descending order")
	flags.IntVar(&f.head, "head", 0, "Print only the first N rows (0 = all)")
}

// filter parses --where clauses into a row predicate. Cells are compared by
// their printed form, so "null" matches missing cells.
func (f *transformFlags) filter() (func(dataframe.Row) bool, error) {
	type clause struct{ column, value string }
	clauses := make([]clause, 0, len(f.where))
	for _, w := range f.where {
		column, value, ok := strings.Cut(w, "=")
		if !ok || column == "" {
			return nil, frameerrors.Newf(frameerrors.ErrorTypeConfig, "invalid --where %q, expected column=value", w)
		}
		clauses = append(clauses, clause{column, value})
	}
	return func(r dataframe.Row) bool {
		for _, c := range clauses {
			if r.Get(c.column).String() != c.value {
				return false
			}
		}
		return true
	}, nil
}

// apply runs filter, grouping, sorting and head in that order.
func (f *transformFlags) apply(t *dataframe.Table, log *zap.Logger) (*dataframe.Table, error) {
	if len(f.where) > 0 {
		for _, w := range f.where {
			column, _, _ := strings.Cut(w, "=")
			if t.ColumnIndex(column) == dataframe.NotFound {
				return nil, frameerrors.Newf(frameerrors.ErrorTypeIndex, "unknown column %q in --where", column)
			}
		}
		pred, err := f.filter()
		if err != nil {
			return nil, err
		}
		t = t.SelectByName(pred)
		log.Debug("rows selected", zap.Int("rows", t.NumRows()))
	}

	if len(f.groupBy) > 0 {
		if len(f.sum) > 0 && len(f.aggregate) > 0 {
			return nil, frameerrors.New(frameerrors.ErrorTypeConfig, "--sum and --aggregate cannot be combined")
		}
		if len(f.sum) == 0 && len(f.aggregate) == 0 {
			return nil, frameerrors.New(frameerrors.ErrorTypeConfig, "--group-by needs --sum or --aggregate")
		}
		g, err := t.GroupByNames(f.bitmap, f.groupBy...)
		if err != nil {
			return nil, err
		}
		log.Debug("table grouped",
			zap.Strings("keys", f.groupBy),
			zap.Int("groups", g.Len()),
			zap.Bool("bitmap", f.bitmap))
		if len(f.sum) > 0 {
			t, err = g.SumByName(f.sum...)
		} else {
			t, err = g.AggregateByName(f.aggregate...)
		}
		if err != nil {
			return nil, err
		}
	} else if len(f.sum) > 0 || len(f.aggregate) > 0 {
		return nil, frameerrors.New(frameerrors.ErrorTypeConfig, "--sum and --aggregate need --group-by")
	}

	if f.sortBy != "" {
		sorted, err := t.SortByName(f.sortBy, !f.descending)
		if err != nil {
			return nil, err
		}
		t = sorted
	}
	if f.head > 0 {
		t = t.Head(f.head)
	}
	return t, nil
}

// outputFlags selects the encoding and destination of the result.
type outputFlags struct {
	format string
	layout string
	output string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.format, "format", "f", "table", "Output format (table, json, arrow)")
	flags.StringVar(&o.layout, "layout", string(jsonfmt.LayoutRecords), "JSON layout (records, lines, columns)")
	flags.StringVarP(&o.output, "output", "o", "", "Write to file instead of stdout")
}

func (o *outputFlags) write(stdout io.Writer, t *dataframe.Table) (err error) {
	w := stdout
	if o.output != "" {
		f, createErr := os.Create(o.output)
		if createErr != nil {
			return fmt.Errorf("failed to create output file: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}
	return writeTable(w, t, o.format, o.layout)
}

func writeTable(w io.Writer, t *dataframe.Table, format, layout string) error {
	switch format {
	case "table", "":
		_, err := io.WriteString(w, t.String())
		return err
	case "json":
		l, err := jsonfmt.ParseLayout(layout)
		if err != nil {
			return err
		}
		return jsonfmt.Encode(w, t, l)
	case "arrow":
		return arrowfmt.WriteIPC(w, t)
	default:
		return frameerrors.Newf(frameerrors.ErrorTypeConfig, "unknown output format %q", format)
	}
}
