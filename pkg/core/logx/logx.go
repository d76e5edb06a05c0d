// Package logx provides the bracket-tagged logging convention used
// throughout this codebase ("[component] message"), matching the plain
// fmt/log style the rest of the stack is built on rather than a structured
// logging library.
package logx

import (
	"fmt"
	"log"
	"os"
)

var std = log.New(os.Stderr, "", log.LstdFlags)

// Infof logs an informational message tagged with component.
func Infof(component, format string, args ...interface{}) {
	std.Printf("[%s] %s", component, fmt.Sprintf(format, args...))
}

// Warnf logs a warning tagged with component.
func Warnf(component, format string, args ...interface{}) {
	std.Printf("[%s] WARNING: %s", component, fmt.Sprintf(format, args...))
}

// Errorf logs an error tagged with component.
func Errorf(component, format string, args ...interface{}) {
	std.Printf("[%s] ERROR: %s", component, fmt.Sprintf(format, args...))
}
