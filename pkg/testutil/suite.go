package testutil

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// TableSuite provides a context, a test logger and a scratch directory to
// testify suites that exercise whole tables.
type TableSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	logger    *zap.Logger
	tempDir   string
	startTime time.Time
}

// SetupSuite runs before all tests in the suite
func (s *TableSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	s.startTime = time.Now()
	s.logger = zaptest.NewLogger(s.T())

	tempDir, err := os.MkdirTemp("", "dataframe-test-*")
	require.NoError(s.T(), err)
	s.tempDir = tempDir
}

// TearDownSuite runs after all tests in the suite
func (s *TableSuite) TearDownSuite() {
	s.cancel()
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
	s.T().Logf("suite completed in %v", time.Since(s.startTime))
}

// Context returns the suite context
func (s *TableSuite) Context() context.Context {
	return s.ctx
}

// Logger returns the suite logger
func (s *TableSuite) Logger() *zap.Logger {
	return s.logger
}

// TempDir returns the scratch directory
func (s *TableSuite) TempDir() string {
	return s.tempDir
}

// CreateTempFile writes content to a file in the scratch directory
func (s *TableSuite) CreateTempFile(name string, content []byte) string {
	path := filepath.Join(s.tempDir, name)
	require.NoError(s.T(), os.WriteFile(path, content, 0600))
	return path
}
