package config

import (
	"fmt"
	"runtime"
	"time"
)

// Config is the single configuration structure for an embedding application
// and the CLI. It is organized into sections:
//   - Engine: grouping parallelism and builder defaults
//   - Logging: zap logger settings
//   - Observability: metrics and tracing switches
//   - Source: the external tabular source used for SQL ingestion
type Config struct {
	// Name identifies the engine instance in logs and traces
	Name string `yaml:"name" json:"name"`

	Engine        EngineConfig        `yaml:"engine" json:"engine"`
	Logging       LoggingConfig       `yaml:"logging" json:"logging"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
	Source        SourceConfig        `yaml:"source" json:"source"`
}

// EngineConfig controls the core table operations.
type EngineConfig struct {
	// Workers is the number of goroutines used by GroupBy (0 = GOMAXPROCS)
	Workers int `yaml:"workers" json:"workers"`
	// MinRowsPerWorker keeps small tables from being split across many workers
	MinRowsPerWorker int `yaml:"min_rows_per_worker" json:"min_rows_per_worker"`
	// BuilderSize is the default maximum row count pulled by sequence builders
	BuilderSize int `yaml:"builder_size" json:"builder_size"`
	// UseBitmap selects bitmap partitions by default in the CLI
	UseBitmap bool `yaml:"use_bitmap" json:"use_bitmap"`
}

// LoggingConfig mirrors logger.Config in YAML form.
type LoggingConfig struct {
	Level       string   `yaml:"level" json:"level"`
	Development bool     `yaml:"development" json:"development"`
	Encoding    string   `yaml:"encoding" json:"encoding"`
	OutputPaths []string `yaml:"output_paths" json:"output_paths"`
}

// ObservabilityConfig contains metrics and tracing settings.
type ObservabilityConfig struct {
	// EnableMetrics activates Prometheus recording of table operations
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
	// EnableTracing activates OpenTelemetry spans around source queries
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing"`
	// TracingSampleRate controls trace sampling (0.0-1.0)
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate"`
}

// SourceConfig describes the external tabular source.
type SourceConfig struct {
	// Driver is "postgres" or "mysql"
	Driver string `yaml:"driver" json:"driver"`
	// DSN is the connection string; use ${VAR} to pull secrets from the environment
	DSN string `yaml:"dsn" json:"dsn"`
	// MaxConns caps the connection pool
	MaxConns int `yaml:"max_conns" json:"max_conns"`
	// QueryTimeout bounds a single query
	QueryTimeout time.Duration `yaml:"query_timeout" json:"query_timeout"`
	// RetryAttempts is how many times the CLI retries a retryable source error
	RetryAttempts int `yaml:"retry_attempts" json:"retry_attempts"`
	// RetryDelay is the pause between attempts
	RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// NewConfig returns a Config with defaults suitable for most embeddings.
func NewConfig(name string) *Config {
	return &Config{
		Name: name,
		Engine: EngineConfig{
			Workers:          runtime.GOMAXPROCS(0),
			MinRowsPerWorker: 1024,
			BuilderSize:      100,
			UseBitmap:        false,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Observability: ObservabilityConfig{
			EnableMetrics:     true,
			EnableTracing:     false,
			TracingSampleRate: 0.1,
		},
		Source: SourceConfig{
			Driver:        "postgres",
			MaxConns:      4,
			QueryTimeout:  30 * time.Second,
			RetryAttempts: 3,
			RetryDelay:    time.Second,
		},
	}
}

// Validate checks ranges and required fields.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine.workers cannot be negative")
	}
	if c.Engine.MinRowsPerWorker <= 0 {
		return fmt.Errorf("engine.min_rows_per_worker must be positive")
	}
	if c.Engine.BuilderSize < 0 {
		return fmt.Errorf("engine.builder_size cannot be negative")
	}
	if c.Observability.TracingSampleRate < 0 || c.Observability.TracingSampleRate > 1 {
		return fmt.Errorf("observability.tracing_sample_rate must be within [0, 1]")
	}
	switch c.Source.Driver {
	case "", "postgres", "mysql":
	default:
		return fmt.Errorf("source.driver %q is not supported", c.Source.Driver)
	}
	if c.Source.RetryAttempts < 0 {
		return fmt.Errorf("source.retry_attempts cannot be negative")
	}
	return nil
}

// GetWorkers returns the number of grouping workers, ensuring it's at least 1
func (e *EngineConfig) GetWorkers() int {
	if e.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return e.Workers
}
