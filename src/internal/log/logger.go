package log

import (
	"io"
	"os"
	"sync"

	charmlog "github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
)

const timeFormat = "2006-01-02 15:04:05"

var (
	mu          sync.RWMutex
	disableLogs bool

	stdout = newLogger(os.Stdout)
	stderr = newLogger(os.Stderr)

	levelPrefixes = map[charmlog.Level]lipgloss.Style{
		charmlog.DebugLevel: lipgloss.NewStyle().SetString("[DBG]").Foreground(lipgloss.Color("7")),
		charmlog.InfoLevel:  lipgloss.NewStyle().SetString("[INF]").Foreground(lipgloss.Color("6")),
		charmlog.WarnLevel:  lipgloss.NewStyle().SetString("[WRN]").Foreground(lipgloss.Color("3")),
		charmlog.ErrorLevel: lipgloss.NewStyle().SetString("[ERR]").Foreground(lipgloss.Color("1")),
	}
)

func newLogger(w io.Writer) *charmlog.Logger {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Level:           charmlog.InfoLevel,
	})
	styles := charmlog.DefaultStyles()
	for level, style := range levelPrefixes {
		styles.Levels[level] = style
	}
	l.SetStyles(styles)
	return l
}

// SetVerbose sets the logging verbosity. If true, debug messages are displayed.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	level := charmlog.InfoLevel
	if v {
		level = charmlog.DebugLevel
	}
	stdout.SetLevel(level)
	stderr.SetLevel(level)
}

// DisableLogs disables all logging.
func DisableLogs() {
	mu.Lock()
	defer mu.Unlock()
	disableLogs = true
}

// SetOutput replaces the streams used for regular and error output.
func SetOutput(out, errOut io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	stdout.SetOutput(out)
	stderr.SetOutput(errOut)
}

// Debugf logs a debug message if verbose is true.
func Debugf(format string, args ...interface{}) {
	logMessage(charmlog.DebugLevel, format, args...)
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	logMessage(charmlog.InfoLevel, format, args...)
}

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) {
	logMessage(charmlog.WarnLevel, format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	logMessage(charmlog.ErrorLevel, format, args...)
}

// Fatalf logs an error message and exits the program.
func Fatalf(format string, args ...interface{}) {
	logMessage(charmlog.ErrorLevel, format, args...)
	os.Exit(1)
}

func logMessage(level charmlog.Level, format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if disableLogs {
		return
	}

	target := stdout
	if level >= charmlog.ErrorLevel {
		target = stderr
	}
	target.Logf(level, format, args...)
}
