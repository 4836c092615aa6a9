package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/christos-karalis/dataframe/pkg/dataframe"
	"github.com/christos-karalis/dataframe/pkg/sources/generator"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		rows int
		seed uint64
		tf   transformFlags
		out  outputFlags
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a call-record table and transform it",
		Long: `Generate a synthetic telecom call-record table with the columns
origin, destination, rate_plan, type, duration and cost, then optionally
filter, group, aggregate and sort it.

Example:
  dataframe generate --rows 100000 --group-by origin,type --aggregate cost --head 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("bitmap") {
				tf.bitmap = a.cfg.Engine.UseBitmap
			}
			if !cmd.Flags().Changed("rows") {
				rows = a.cfg.Engine.BuilderSize
			}

			start := time.Now()
			table, err := dataframe.FromSequences(generator.CallRecords(seed)...).
				ColumnNames(generator.CallRecordColumns...).
				Size(rows).
				Options(dataframe.WithConfig(a.cfg), dataframe.WithLogger(a.log)).
				Build()
			if err != nil {
				return err
			}
			a.log.Info("table generated",
				zap.Int("rows", table.NumRows()),
				zap.Uint64("seed", seed),
				zap.Duration("duration", time.Since(start)))

			result, err := tf.apply(table, a.log)
			if err != nil {
				return err
			}
			return out.write(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().IntVarP(&rows, "rows", "n", 100, "Number of rows to generate (default from engine.builder_size)")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed")
	tf.register(cmd)
	out.register(cmd)
	return cmd
}
