package main

import (
	"os"

	"github.com/loykin/apiscenario/internal/common"
)

// ExitHandler provides a testable way to handle program termination
type ExitHandler interface {
	Exit(code int)
	LogFatalError(err error, msg string, keyvals ...any)
}

// DefaultExitHandler logs through the global logger and calls os.Exit.
type DefaultExitHandler struct{}

func (DefaultExitHandler) Exit(code int) {
	os.Exit(code)
}

// LogFatalError logs err and exits with 1.
func (h DefaultExitHandler) LogFatalError(err error, msg string, keyvals ...any) {
	common.GetLogger().WithComponent("main").Error(msg, append([]any{"error", err}, keyvals...)...)
	h.Exit(1)
}

// Global exit handler (can be replaced for testing)
var exitHandler ExitHandler = DefaultExitHandler{}
