// Package editor builds and submits automation scripts for the open
// office document through a scripting connector.
package editor

import (
	"context"
	"errors"
)

// ErrEditorUnavailable is returned when no document editor frame is
// attached or the frame does not expose scripting.
var ErrEditorUnavailable = errors.New("document editor is not available")

// Connector executes one automation script inside the editor frame.
type Connector interface {
	CallCommand(ctx context.Context, script string) (string, error)
}

// Handle represents an attached editor frame. A nil Handle means no
// document is open.
type Handle interface {
	CreateConnector() (Connector, error)
}
