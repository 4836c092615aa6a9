// Package dataframe is an in-process columnar table engine. Tables are built
// from lazy sequences or materialized rows, then sorted, filtered, grouped and
// aggregated. Every operation returns a new immutable table.
//
// # Basic Usage
//
//	table, err := dataframe.FromSequences(callers, regions, durations).
//	    ColumnNames("caller", "region", "duration").
//	    Size(1000).
//	    Build()
//	if err != nil {
//	    return err
//	}
//
//	groups, err := table.GroupByNames(false, "region")
//	if err != nil {
//	    return err
//	}
//	stats, err := groups.AggregateByName("duration")
//
// # Column Types
//
// A column holds strings, floats, ints or summaries. Float columns accept
// integers by widening; int columns accept only integers. Any column may hold
// nulls, tracked in a roaring bitmap.
//
// # Grouping
//
// GroupBy splits the table into contiguous row ranges and groups each range on
// its own goroutine. Partial results are merged in range order, so groups
// appear in order of first occurrence and list every row in ascending order,
// whatever the worker count.
//
// # Errors
//
// Failures are *frameerrors.Error values. Bad column positions and unknown
// names are index errors, non-numeric or null cells where a number is needed
// are type errors, and ingestion mismatches are config or shape errors.
package dataframe
