// Package logger provides the module-wide structured logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var (
	Logger        *log.Logger
	currentWriter io.Writer = os.Stderr
	hook          func(level, message string)
)

func init() {
	Logger = log.New(os.Stderr)
	SetLevel(os.Getenv("LOG_LEVEL"))
}

// SetHook installs a callback invoked with every logged line, in addition
// to the normal write. Used by the event spine to surface scheduling
// offenses and backend failures to a supervising process.
func SetHook(fn func(level, message string)) {
	hook = fn
}

func notify(level, message string) {
	if hook != nil {
		hook(level, message)
	}
}

func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
	notify("INFO", fmt.Sprintf("%v", msg))
}

func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
	if Logger.GetLevel() <= log.DebugLevel {
		notify("DEBUG", fmt.Sprintf("%v", msg))
	}
}

func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
	notify("WARN", fmt.Sprintf("%v", msg))
}

func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
	notify("ERROR", fmt.Sprintf("%v", msg))
}

func Fatal(msg interface{}, keyvals ...interface{}) {
	Logger.Fatal(msg, keyvals...)
	notify("FATAL", fmt.Sprintf("%v", msg))
}

func Infof(format string, args ...interface{}) {
	Logger.Infof(format, args...)
	notify("INFO", fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...interface{}) {
	Logger.Debugf(format, args...)
	if Logger.GetLevel() <= log.DebugLevel {
		notify("DEBUG", fmt.Sprintf(format, args...))
	}
}

func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
	notify("WARN", fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...interface{}) {
	Logger.Errorf(format, args...)
	notify("ERROR", fmt.Sprintf(format, args...))
}

func Fatalf(format string, args ...interface{}) {
	Logger.Fatalf(format, args...)
	notify("FATAL", fmt.Sprintf(format, args...))
}

// SetLevel sets the log level from a string; an empty or invalid value
// defaults to info.
func SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		Logger.SetLevel(log.DebugLevel)
	case "INFO", "":
		Logger.SetLevel(log.InfoLevel)
	case "WARN", "WARNING":
		Logger.SetLevel(log.WarnLevel)
	case "ERROR":
		Logger.SetLevel(log.ErrorLevel)
	case "FATAL":
		Logger.SetLevel(log.FatalLevel)
	default:
		Logger.SetLevel(log.InfoLevel)
	}
}

// SetOutput redirects the logger to a different writer, preserving level.
func SetOutput(w io.Writer) {
	currentWriter = w
	level := Logger.GetLevel()
	Logger = log.NewWithOptions(w, log.Options{ReportTimestamp: true, TimeFormat: "15:04:05"})
	Logger.SetLevel(level)
}

// WithPrefix returns a child logger tagged with a subsystem name
// (surface, shell, seat, output, wm, spine, ...), writing to the same
// destination as the package logger.
func WithPrefix(prefix string) *log.Logger {
	l := log.NewWithOptions(currentWriter, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          prefix,
	})
	l.SetLevel(Logger.GetLevel())
	return l
}

// SetupFileLogging redirects logging to a per-user (or, running as root,
// system) log file and returns the open file so callers can close it on
// shutdown.
func SetupFileLogging(prefix string) (*os.File, error) {
	var logDir, logPath string

	if os.Geteuid() == 0 {
		logDir = "/var/log/wlcore"
		logPath = filepath.Join(logDir, "wlcore.log")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			return nil, fmt.Errorf("create system log directory: %w", err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		logDir = filepath.Join(home, ".local", "share", "wlcore")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		logPath = filepath.Join(logDir, "wlcore.log")
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", logPath, err)
	}

	fmt.Fprintf(logFile, "\n%s %s: compositor starting (log: %s)\n",
		time.Now().Format("15:04:05"), prefix, logPath)

	SetOutput(logFile)
	Logger = log.NewWithOptions(logFile, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          prefix,
	})
	return logFile, nil
}

// Get returns the shared logger instance.
func Get() *log.Logger {
	return Logger
}
