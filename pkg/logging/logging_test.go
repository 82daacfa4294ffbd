package logging

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestFileLogger_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")

	closer, logger, err := FileLogger(logrus.InfoLevel, path)
	require.NoError(t, err)
	require.NotNil(t, closer)
	require.Equal(t, logrus.InfoLevel, logger.GetLevel())

	logger.Info("hello")
	require.NoError(t, closer.Close())
	require.FileExists(t, path)
}

func TestFileLogger_StdoutOnly(t *testing.T) {
	closer, logger, err := FileLogger(logrus.DebugLevel, "")
	require.NoError(t, err)
	require.Nil(t, closer)
	require.Equal(t, logrus.DebugLevel, logger.GetLevel())
}
