package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mapsengine/gme-cli/internal/config"
	"github.com/rs/zerolog"
)

var (
	// Log is the global logger instance. It discards everything until Init runs.
	Log = zerolog.Nop()
)

// Init initializes the logger with the specified configuration
func Init(debug bool, level string) error {
	if err := config.EnsureLogsDir(); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	logLevel := parseLevel(level)
	if debug {
		logLevel = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	logFile, err := getLogFile()
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	var writers []io.Writer
	writers = append(writers, logFile)

	if debug {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		writers = append(writers, consoleWriter)
	}

	multi := io.MultiWriter(writers...)

	Log = zerolog.New(multi).With().
		Timestamp().
		Str("app", "gme-cli").
		Logger()

	Log.Debug().Msg("Logger initialized")
	return nil
}

// SetOutput points the global logger at w. Used by tests to capture output.
func SetOutput(w io.Writer, level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	Log = zerolog.New(w).With().Timestamp().Logger()
}

// With returns a child logger tagged with a component name
func With(component string) zerolog.Logger {
	return Log.With().Str("component", component).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// getLogFile returns the log file for the current date
func getLogFile() (*os.File, error) {
	logsDir := config.GetLogsDir()

	logFileName := fmt.Sprintf("gme-%s.log", time.Now().Format("2006-01-02"))
	logFilePath := filepath.Join(logsDir, logFileName)

	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}

	// Keep a week of logs
	go cleanOldLogs(logsDir, 7)

	return logFile, nil
}

// cleanOldLogs removes log files older than the specified number of days
func cleanOldLogs(logsDir string, keepDays int) {
	files, err := os.ReadDir(logsDir)
	if err != nil {
		return
	}

	cutoffTime := time.Now().AddDate(0, 0, -keepDays)

	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".log" {
			continue
		}

		filePath := filepath.Join(logsDir, file.Name())
		fileInfo, err := os.Stat(filePath)
		if err != nil {
			continue
		}

		if fileInfo.ModTime().Before(cutoffTime) {
			os.Remove(filePath)
		}
	}
}

// Debug logs a debug message
func Debug(format string, args ...interface{}) {
	if len(args) == 0 {
		Log.Debug().Msg(format)
	} else {
		Log.Debug().Msgf(format, args...)
	}
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	if len(args) == 0 {
		Log.Info().Msg(format)
	} else {
		Log.Info().Msgf(format, args...)
	}
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	if len(args) == 0 {
		Log.Warn().Msg(format)
	} else {
		Log.Warn().Msgf(format, args...)
	}
}

// Error logs an error message
func Error(msg string, err error) {
	Log.Error().Err(err).Msg(msg)
}

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) {
	Log.Error().Msgf(format, args...)
}
