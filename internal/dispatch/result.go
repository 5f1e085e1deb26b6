// Package dispatch routes tool calls to their executors and wraps every
// outcome in a uniform result envelope.
package dispatch

import "fmt"

// Result is the envelope every tool call produces, success or not.
// Dispatch never returns a Go error to the agent loop; failures travel
// inside the envelope so the model can read them.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func OK(data any, message string) Result {
	return Result{Success: true, Message: message, Data: data}
}

func Fail(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

func Failf(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}
