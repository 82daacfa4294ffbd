package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileLogger writes JSON log lines to stdout and a size-rotated file at logPath.
// An empty logPath logs to stdout only.
func FileLogger(level logrus.Level, logPath string) (io.Closer, *logrus.Logger, error) {
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{})

	if logPath == "" {
		logger.SetOutput(os.Stdout)
		return nil, logger, nil
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, nil, err
	}
	rotator := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return rotator, logger, nil
}

// ConsoleLogger is used by CLI tools: text output on stderr so stdout stays machine-readable.
func ConsoleLogger(level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}
