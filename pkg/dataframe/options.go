package dataframe

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/christos-karalis/dataframe/pkg/config"
	"github.com/christos-karalis/dataframe/pkg/logger"
)

const (
	defaultBuilderSize      = 100
	defaultMinRowsPerWorker = 1024
)

type options struct {
	logger           *zap.Logger
	workers          int
	minRowsPerWorker int
	builderSize      int
}

// Option configures a table and every table derived from it.
type Option func(*options)

// WithLogger sets the logger used for operation logging.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkers caps the number of goroutines used by GroupBy.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithMinRowsPerWorker sets how many rows a grouping worker must have before
// another worker is added.
func WithMinRowsPerWorker(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.minRowsPerWorker = n
		}
	}
}

// WithConfig applies the engine section of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		if cfg == nil {
			return
		}
		o.workers = cfg.Engine.GetWorkers()
		if cfg.Engine.MinRowsPerWorker > 0 {
			o.minRowsPerWorker = cfg.Engine.MinRowsPerWorker
		}
		if cfg.Engine.BuilderSize >= 0 {
			o.builderSize = cfg.Engine.BuilderSize
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:           logger.Get(),
		workers:          runtime.GOMAXPROCS(0),
		minRowsPerWorker: defaultMinRowsPerWorker,
		builderSize:      defaultBuilderSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// workersFor returns how many contiguous row ranges a table of n rows is split into.
func (o *options) workersFor(n int) int {
	w := o.workers
	if byRows := n / o.minRowsPerWorker; byRows < w {
		w = byRows
	}
	if w < 1 {
		w = 1
	}
	return w
}
