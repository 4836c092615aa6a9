package sqlsource

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/christos-karalis/dataframe/pkg/config"
	"github.com/christos-karalis/dataframe/pkg/dataframe"
	"github.com/christos-karalis/dataframe/pkg/frameerrors"
	"github.com/christos-karalis/dataframe/pkg/logger"
)

// pgxPool is the subset of *pgxpool.Pool used by Postgres.
type pgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// Postgres is a PostgreSQL source backed by a pgx connection pool.
type Postgres struct {
	pool   pgxPool
	logger *zap.Logger
}

// NewPostgres connects a pool to cfg.DSN and verifies it with a ping.
func NewPostgres(ctx context.Context, cfg config.SourceConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeConfig, "failed to parse connection string")
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, classify(err, frameerrors.ErrorTypeConnection, "failed to create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, classify(err, frameerrors.ErrorTypeConnection, "failed to validate connection")
	}

	l := logger.With(zap.String("driver", DriverPostgres))
	l.Info("connected to postgres", zap.Int32("max_connections", poolConfig.MaxConns))
	return &Postgres{pool: pool, logger: l}, nil
}

// Driver returns "postgres".
func (p *Postgres) Driver() string { return DriverPostgres }

// Close releases the pool.
func (p *Postgres) Close() { p.pool.Close() }

// Query runs statement with positional ($1, $2, ...) or named (@name) parameters.
func (p *Postgres) Query(ctx context.Context, statement string, params Params) (*ResultSet, error) {
	args := params.Positional
	if len(params.Named) > 0 {
		args = []any{pgx.NamedArgs(params.Named)}
	}

	rows, err := p.pool.Query(ctx, statement, args...)
	if err != nil {
		return nil, classify(err, frameerrors.ErrorTypeQuery, "query failed")
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	rs := &ResultSet{
		Columns: make([]string, len(fields)),
		Types:   make([]dataframe.ColumnType, len(fields)),
	}
	for i, fd := range fields {
		rs.Columns[i] = fd.Name
		rs.Types[i] = oidColumnType(fd.DataTypeOID)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, classify(err, frameerrors.ErrorTypeQuery, "failed to decode row")
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = normalizeCell(v)
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, frameerrors.ErrorTypeQuery, "failed to read rows")
	}
	return rs, nil
}

// oidColumnType maps a PostgreSQL type OID to a column type.
func oidColumnType(oid uint32) dataframe.ColumnType {
	switch oid {
	case pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID, pgtype.BoolOID:
		return dataframe.ColumnTypeInt
	case pgtype.Float4OID, pgtype.Float8OID, pgtype.NumericOID:
		return dataframe.ColumnTypeFloat
	default:
		return dataframe.ColumnTypeString
	}
}
