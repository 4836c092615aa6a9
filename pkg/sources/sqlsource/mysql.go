package sqlsource

import (
	"context"
	"database/sql"
	"math"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/christos-karalis/dataframe/pkg/config"
	"github.com/christos-karalis/dataframe/pkg/dataframe"
	"github.com/christos-karalis/dataframe/pkg/frameerrors"
	"github.com/christos-karalis/dataframe/pkg/logger"
)

// MySQL is a MySQL source backed by database/sql.
type MySQL struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQL opens a connection pool for cfg.DSN and verifies it with a ping.
func NewMySQL(ctx context.Context, cfg config.SourceConfig) (*MySQL, error) {
	mcfg, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeConfig, "failed to parse connection string")
	}
	mcfg.ParseTime = true

	connector, err := mysql.NewConnector(mcfg)
	if err != nil {
		return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeConfig, "failed to create connector")
	}
	db := sql.OpenDB(connector)
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, classify(err, frameerrors.ErrorTypeConnection, "failed to validate connection")
	}

	l := logger.With(zap.String("driver", DriverMySQL))
	l.Info("connected to mysql", zap.String("addr", mcfg.Addr), zap.String("database", mcfg.DBName))
	return &MySQL{db: db, logger: l}, nil
}

// Driver returns "mysql".
func (m *MySQL) Driver() string { return DriverMySQL }

// Close closes the pool.
func (m *MySQL) Close() {
	if err := m.db.Close(); err != nil {
		m.logger.Warn("failed to close mysql pool", zap.Error(err))
	}
}

// Query runs statement with positional (?) parameters. Named parameters are
// not supported by the MySQL driver and fail with a config error.
func (m *MySQL) Query(ctx context.Context, statement string, params Params) (*ResultSet, error) {
	if len(params.Named) > 0 {
		return nil, frameerrors.New(frameerrors.ErrorTypeConfig, "named parameters are not supported by mysql")
	}
	rows, err := m.db.QueryContext(ctx, statement, params.Positional...)
	if err != nil {
		return nil, classify(err, frameerrors.ErrorTypeQuery, "query failed")
	}
	defer rows.Close()
	return collectRows(rows)
}

// collectRows materializes a database/sql result.
func collectRows(rows *sql.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, classify(err, frameerrors.ErrorTypeQuery, "failed to read columns")
	}
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, classify(err, frameerrors.ErrorTypeQuery, "failed to read column types")
	}

	rs := &ResultSet{Columns: columns, Types: make([]dataframe.ColumnType, len(columns))}
	dbTypes := make([]string, len(columns))
	for i, ct := range columnTypes {
		dbTypes[i] = ct.DatabaseTypeName()
		rs.Types[i] = sqlColumnType(dbTypes[i])
	}

	dest := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, classify(err, frameerrors.ErrorTypeQuery, "failed to scan row")
		}
		row := make([]any, len(dest))
		for i, v := range dest {
			row[i] = convertSQLCell(v, dbTypes[i], rs.Types[i])
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, frameerrors.ErrorTypeQuery, "failed to read rows")
	}
	return rs, nil
}

// sqlColumnType maps a MySQL type name to a column type. BIT and UNSIGNED
// BIGINT values may exceed int64 and are typed float.
func sqlColumnType(name string) dataframe.ColumnType {
	name = strings.ToUpper(name)
	switch name {
	case "BIT", "UNSIGNED BIGINT":
		return dataframe.ColumnTypeFloat
	}
	switch strings.TrimPrefix(name, "UNSIGNED ") {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT", "YEAR":
		return dataframe.ColumnTypeInt
	case "DECIMAL", "NUMERIC", "FLOAT", "DOUBLE", "REAL":
		return dataframe.ColumnTypeFloat
	default:
		return dataframe.ColumnTypeString
	}
}

// convertSQLCell parses the text-protocol bytes of numeric columns and
// normalizes everything else. BIT bytes are a big-endian unsigned integer.
func convertSQLCell(v any, dbType string, typ dataframe.ColumnType) any {
	b, ok := v.([]byte)
	if !ok {
		return normalizeCell(v)
	}
	dbType = strings.ToUpper(dbType)
	if dbType == "BIT" {
		var u uint64
		for _, x := range b {
			u = u<<8 | uint64(x)
		}
		return unsignedCell(u)
	}
	s := string(b)
	switch typ {
	case dataframe.ColumnTypeInt:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	case dataframe.ColumnTypeFloat:
		if strings.HasPrefix(dbType, "UNSIGNED ") {
			if u, err := strconv.ParseUint(s, 10, 64); err == nil {
				return unsignedCell(u)
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// unsignedCell keeps u as an int64 when it fits and widens it to float64
// otherwise.
func unsignedCell(u uint64) any {
	if u > math.MaxInt64 {
		return float64(u)
	}
	return int64(u)
}
