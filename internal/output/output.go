// Package output provides styled terminal output and structured logging.
//
// All quill commands use this package for consistent UX: styled one-line
// status messages on stdout, structured diagnostics on stderr.
package output

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Logger is the shared structured logger. Commands reconfigure it via
// SetVerbose; library packages receive it by reference.
var Logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
	ReportCaller:    false,
})

// SetVerbose switches the logger into debug mode. Called by the CLI when
// --verbose is set.
func SetVerbose(v bool) {
	level := log.InfoLevel
	if v {
		level = log.DebugLevel
	}
	Logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: v,
	})
}

// Success prints a completed-operation message.
func Success(msg string) {
	fmt.Println(successStyle.Render("✏️  " + msg))
}

// Error prints a failure that needs user attention.
func Error(msg string) {
	fmt.Println(errorStyle.Render("✗ " + msg))
}

// Info prints a status update or explanation.
func Info(msg string) {
	fmt.Println(infoStyle.Render(msg))
}

// Step prints an indented sub-item, typically a follow-up action.
func Step(msg string) {
	fmt.Println(stepStyle.Render("   " + msg))
}

// Debug logs a structured debug message through the shared logger.
func Debug(msg string, keyvals ...any) {
	Logger.Debug(msg, keyvals...)
}

// Warn logs a structured warning through the shared logger.
func Warn(msg string, keyvals ...any) {
	Logger.Warn(msg, keyvals...)
}
