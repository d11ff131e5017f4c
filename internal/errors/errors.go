package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/nutrisnap/internal/logger"
)

// UserFacing is implemented by errors that carry a message meant for the
// person at the keyboard rather than for the log.
type UserFacing interface {
	UserMessage() string
}

// Suggester is implemented by errors that come with remediation hints.
type Suggester interface {
	SuggestionList() []string
}

// Message returns the text a banner or CLI should show for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var uf UserFacing
	if stderrors.As(err, &uf) {
		return uf.UserMessage()
	}
	return err.Error()
}

// Format formats an error message with a consistent "Error: " prefix,
// appending any suggestions on their own line.
func Format(err error) string {
	if err == nil {
		return ""
	}
	out := "Error: " + Message(err)
	var s Suggester
	if stderrors.As(err, &s) && len(s.SuggestionList()) > 0 {
		out += "\n  Suggestions: " + strings.Join(s.SuggestionList(), ", ")
	}
	return out
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
