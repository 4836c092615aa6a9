// Package dataframe is an in-process columnar analytics engine. Tables are
// immutable sets of typed columns that can be sorted, grouped, aggregated and
// filtered without leaving the process.
//
// # Packages
//
//   - pkg/dataframe: tables, columns, builders, sort, grouping, aggregation and
//     selection
//   - pkg/sources/generator: lazy value sequences for FromSequences
//   - pkg/sources/sqlsource: tables built from PostgreSQL or MySQL queries
//   - pkg/formats/arrowfmt, pkg/formats/jsonfmt: Arrow IPC and JSON encodings
//   - pkg/config, pkg/logger, pkg/metrics, pkg/observability: configuration,
//     zap logging, Prometheus metrics and OpenTelemetry tracing
//   - cmd/dataframe: the command line tool
//
// # Quick Start
//
// Build a table from rows, group it and summarize a column:
//
//	t, err := dataframe.FromRows([][]any{
//	    {"GRE", "VOICE", 10.0},
//	    {"ITA", "DATA", 2.5},
//	    {"GRE", "VOICE", 4.0},
//	}).ColumnNames("country", "type", "cost").Build()
//	if err != nil {
//	    return err
//	}
//
//	g, err := t.GroupByNames(false, "country", "type")
//	if err != nil {
//	    return err
//	}
//	summary, err := g.AggregateByName("cost")
//
// Grouping spreads rows over worker goroutines. The number of workers comes
// from dataframe.WithWorkers or the engine section of the configuration:
//
//	engine:
//	  workers: 8
//	  min_rows_per_worker: 4096
//	  use_bitmap: true
//
// # Command Line
//
//	dataframe generate --rows 100000 --group-by rate_plan,type --sum cost
//	dataframe query --sql "select origin, cost from calls" --group-by origin --aggregate cost -f json
package dataframe
