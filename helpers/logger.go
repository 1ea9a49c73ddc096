package helpers

import (
	"fmt"
	"os"
	"time"

	"sjsage522/bountyradar/logger"
)

// LoggerInterface defines the interface for logger implementations
type LoggerInterface interface {
	LogError(component string, err error)
	LogInfo(format string, args ...interface{})
}

// Logger routes diagnostics to the structured logger and, when errorFile is
// set, appends error lines to that file as well.
type Logger struct {
	errorFile string
}

// NewLogger creates a new logger instance. An empty errorFile disables the
// file output.
func NewLogger(errorFile string) *Logger {
	return &Logger{
		errorFile: errorFile,
	}
}

// LogError logs an error with the component name
func (l *Logger) LogError(component string, err error) {
	logger.LogError(component, err, "%s failed", component)

	if l.errorFile == "" {
		return
	}
	f, fileErr := os.OpenFile(l.errorFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if fileErr != nil {
		logger.Warn("failed to open error log %s: %v", l.errorFile, fileErr)
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "[%s] [%s] %s\n", timestamp, component, err.Error())
}

// LogInfo logs an informational message
func (l *Logger) LogInfo(format string, args ...interface{}) {
	logger.LogInfo("worker", format, args...)
}
