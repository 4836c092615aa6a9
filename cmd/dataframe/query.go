package main

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/christos-karalis/dataframe/pkg/dataframe"
	"github.com/christos-karalis/dataframe/pkg/frameerrors"
	"github.com/christos-karalis/dataframe/pkg/logger"
	"github.com/christos-karalis/dataframe/pkg/sources/sqlsource"
)

type queryFlags struct {
	statement   string
	driver      string
	dsn         string
	args        []string
	params      []string
	names       []string
	types       []string
	sourceTypes bool
}

func newQueryCmd(a *app) *cobra.Command {
	var (
		qf  queryFlags
		tf  transformFlags
		out outputFlags
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Build a table from a SQL query and transform it",
		Long: `Run a SQL query against the source configured in the config file (or
--driver/--dsn) and build a table from its result. Column types are inferred
from the first row unless --types or --source-types is given.

Example:
  dataframe query --dsn "$BILLING_DSN" \
    --sql "select origin, type, cost from calls where rate_plan = @plan" \
    --param plan=RPLAN10 --group-by origin,type --sum cost`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("bitmap") {
				tf.bitmap = a.cfg.Engine.UseBitmap
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			table, err := a.runQuery(ctx, &qf)
			if err != nil {
				return err
			}
			result, err := tf.apply(table, a.log)
			if err != nil {
				return err
			}
			return out.write(cmd.OutOrStdout(), result)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&qf.statement, "sql", "", "SQL statement to run (required)")
	flags.StringVar(&qf.driver, "driver", "", "Source driver (postgres, mysql); overrides source.driver")
	flags.StringVar(&qf.dsn, "dsn", "", "Connection string; overrides source.dsn")
	flags.StringArrayVar(&qf.args, "arg", nil, "Positional parameter (repeatable)")
	flags.StringArrayVar(&qf.params, "param", nil, "Named parameter name=value (repeatable, postgres only)")
	flags.StringSliceVar(&qf.names, "names", nil, "Column names for the result")
	flags.StringSliceVar(&qf.types, "types", nil, "Column types for the result (string, float, int)")
	flags.BoolVar(&qf.sourceTypes, "source-types", false, "Use the column types reported by the database")
	_ = cmd.MarkFlagRequired("sql")

	tf.register(cmd)
	out.register(cmd)
	return cmd
}

// runQuery connects to the source and builds a table from the statement,
// retrying connection and timeout errors.
func (a *app) runQuery(ctx context.Context, qf *queryFlags) (*dataframe.Table, error) {
	srcCfg := a.cfg.Source
	if qf.driver != "" {
		srcCfg.Driver = qf.driver
	}
	if qf.dsn != "" {
		srcCfg.DSN = qf.dsn
	}

	types, err := parseTypes(qf.types)
	if err != nil {
		return nil, err
	}
	named, err := parseParams(qf.params)
	if err != nil {
		return nil, err
	}

	ctx = queryContext(ctx, srcCfg.Driver)
	log := logger.WithContext(ctx)

	var src sqlsource.Source
	err = retry(ctx, srcCfg.RetryAttempts, srcCfg.RetryDelay, log, func(ctx context.Context) error {
		var openErr error
		src, openErr = sqlsource.Open(ctx, srcCfg)
		return openErr
	})
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var table *dataframe.Table
	err = retry(ctx, srcCfg.RetryAttempts, srcCfg.RetryDelay, log, func(ctx context.Context) error {
		q := sqlsource.NewQuery(src, qf.statement).
			Timeout(srcCfg.QueryTimeout).
			Options(dataframe.WithConfig(a.cfg))
		for _, v := range qf.args {
			q.AddParameter(parseScalar(v))
		}
		for name, v := range named {
			q.SetParameter(name, v)
		}
		if len(types) > 0 {
			q.Types(types...)
		} else if qf.sourceTypes {
			q.UseSourceTypes()
		}
		if len(qf.names) > 0 {
			q.ColumnNames(qf.names...)
		}

		var buildErr error
		table, buildErr = q.Build(ctx)
		return buildErr
	})
	if err != nil {
		return nil, err
	}

	log.Info("query table built",
		zap.String("driver", src.Driver()),
		zap.Int("rows", table.NumRows()),
		zap.Int("columns", table.NumColumns()))
	return table, nil
}

// queryContext tags ctx with a fresh query id and the source driver, which
// logger.WithContext turns into log fields.
func queryContext(ctx context.Context, driver string) context.Context {
	if driver == "" {
		driver = sqlsource.DriverPostgres
	}
	id := "q-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	ctx = context.WithValue(ctx, logger.QueryIDKey, id)
	return context.WithValue(ctx, logger.SourceKey, driver)
}

// retry calls fn up to attempts+1 times while it returns retryable errors.
func retry(ctx context.Context, attempts int, delay time.Duration, log *zap.Logger, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= attempts; attempt++ {
		if attempt > 0 {
			log.Warn("retrying after source error",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return frameerrors.Wrap(ctx.Err(), frameerrors.ErrorTypeTimeout, "retry cancelled")
			case <-time.After(delay):
			}
		}
		if err = fn(ctx); err == nil || !frameerrors.IsRetryable(err) {
			return err
		}
	}
	return err
}

func parseTypes(names []string) ([]dataframe.ColumnType, error) {
	types := make([]dataframe.ColumnType, 0, len(names))
	for _, name := range names {
		typ, err := dataframe.ParseColumnType(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		types = append(types, typ)
	}
	return types, nil
}

func parseParams(params []string) (map[string]any, error) {
	named := make(map[string]any, len(params))
	for _, p := range params {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, frameerrors.Newf(frameerrors.ErrorTypeConfig, "invalid --param %q, expected name=value", p)
		}
		named[name] = parseScalar(value)
	}
	return named, nil
}

// parseScalar turns a flag value into an int64, a float64 or a string.
func parseScalar(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
