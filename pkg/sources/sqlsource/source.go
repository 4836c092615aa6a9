// Package sqlsource loads query results from relational databases into
// dataframe tables. PostgreSQL is served by pgx, MySQL by database/sql with the
// go-sql-driver/mysql connector.
//
// # Basic Usage
//
//	src, err := sqlsource.Open(ctx, cfg.Source)
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//
//	table, err := sqlsource.NewQuery(src, "select region, duration from calls where plan = $1").
//	    AddParameter("RPLAN10").
//	    ColumnNames("region", "duration").
//	    Build(ctx)
//
// Positional parameters are bound in the order AddParameter is called. Named
// parameters (SetParameter) use pgx's @name syntax and are PostgreSQL only. A
// query may use one style or the other, not both.
package sqlsource

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/christos-karalis/dataframe/pkg/config"
	"github.com/christos-karalis/dataframe/pkg/dataframe"
	"github.com/christos-karalis/dataframe/pkg/frameerrors"
	"github.com/christos-karalis/dataframe/pkg/logger"
	"github.com/christos-karalis/dataframe/pkg/observability"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Params holds the bound parameters of one query.
type Params struct {
	Positional []any
	Named      map[string]any
}

// ResultSet is a fully materialized query result. Types holds the column
// types reported by the driver.
type ResultSet struct {
	Columns []string
	Types   []dataframe.ColumnType
	Rows    [][]any
}

// Source runs queries against one database.
type Source interface {
	Query(ctx context.Context, statement string, params Params) (*ResultSet, error)
	Driver() string
	Close()
}

// Open connects to the database described by cfg.
func Open(ctx context.Context, cfg config.SourceConfig) (Source, error) {
	switch cfg.Driver {
	case "", DriverPostgres:
		return NewPostgres(ctx, cfg)
	case DriverMySQL:
		return NewMySQL(ctx, cfg)
	default:
		return nil, frameerrors.Newf(frameerrors.ErrorTypeConfig, "unsupported driver %q", cfg.Driver)
	}
}

// Query collects a statement, its parameters and the table shape to build.
type Query struct {
	source      Source
	statement   string
	params      Params
	types       []dataframe.ColumnType
	names       []string
	sourceTypes bool
	opts        []dataframe.Option
	timeout     time.Duration
	logger      *zap.Logger
}

// NewQuery starts a query against src.
func NewQuery(src Source, statement string) *Query {
	return &Query{source: src, statement: statement}
}

// AddParameter binds the next positional parameter.
func (q *Query) AddParameter(v any) *Query {
	q.params.Positional = append(q.params.Positional, v)
	return q
}

// SetParameter binds a named parameter.
func (q *Query) SetParameter(name string, v any) *Query {
	if q.params.Named == nil {
		q.params.Named = make(map[string]any)
	}
	q.params.Named[name] = v
	return q
}

// Types declares the column types of the result.
func (q *Query) Types(types ...dataframe.ColumnType) *Query {
	q.types = types
	return q
}

// UseSourceTypes declares the column types reported by the driver instead of
// inferring them from the first row. Types takes precedence.
func (q *Query) UseSourceTypes() *Query {
	q.sourceTypes = true
	return q
}

// ColumnNames names the columns. Without names the driver's column labels are
// not used and the table is unnamed.
func (q *Query) ColumnNames(names ...string) *Query {
	q.names = names
	return q
}

// Timeout bounds the query.
func (q *Query) Timeout(d time.Duration) *Query {
	q.timeout = d
	return q
}

// Options sets table options for the built table.
func (q *Query) Options(opts ...dataframe.Option) *Query {
	q.opts = append(q.opts, opts...)
	return q
}

// WithLogger sets the logger used for query logging. Without one the query
// logs through the global logger, tagged with the query id and source found in
// the build context.
func (q *Query) WithLogger(l *zap.Logger) *Query {
	if l != nil {
		q.logger = l
	}
	return q
}

// Build runs the query and converts the result into a table.
func (q *Query) Build(ctx context.Context) (*dataframe.Table, error) {
	if len(q.params.Positional) > 0 && len(q.params.Named) > 0 {
		return nil, frameerrors.New(frameerrors.ErrorTypeConfig,
			"positional and named parameters cannot be mixed")
	}
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	log := q.logger
	if log == nil {
		log = logger.WithContext(ctx)
	}

	var result *ResultSet
	tracer := observability.NewSourceTracer(q.source.Driver(), "query")
	err := tracer.TraceQuery(ctx, q.statement, func(ctx context.Context) (int, error) {
		rs, err := q.source.Query(ctx, q.statement, q.params)
		if err != nil {
			return 0, err
		}
		result = rs
		return len(rs.Rows), nil
	})
	if err != nil {
		log.Debug("query failed",
			zap.String("driver", q.source.Driver()),
			zap.Error(err))
		return nil, err
	}

	log.Debug("query completed",
		zap.String("driver", q.source.Driver()),
		zap.Int("rows", len(result.Rows)),
		zap.Int("columns", len(result.Columns)))

	b := dataframe.FromRows(result.Rows).
		Options(dataframe.WithLogger(log)).
		Options(q.opts...)
	switch {
	case len(q.types) > 0:
		b.Types(q.types...)
	case q.sourceTypes && len(result.Types) > 0:
		b.Types(result.Types...)
	}
	if len(q.names) > 0 {
		b.ColumnNames(q.names...)
	}
	return b.Build()
}

// classify wraps a driver error. Deadline and cancellation errors become
// timeouts so that callers can retry them.
func classify(err error, errType frameerrors.ErrorType, message string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		errType = frameerrors.ErrorTypeTimeout
	}
	return frameerrors.Wrap(err, errType, message)
}

// normalizeCell converts a driver value into something dataframe.ValueOf
// accepts. Exact numerics become float64, times become RFC 3339 text.
func normalizeCell(v any) any {
	switch x := v.(type) {
	case nil, string, float64, float32, int64, int32, int16, int8, int, uint64, uint32, uint16, uint8, uint:
		return x
	case []byte:
		return string(x)
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case *big.Int:
		f, _ := new(big.Float).SetInt(x).Float64()
		return f
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
