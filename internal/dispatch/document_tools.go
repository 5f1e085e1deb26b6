package dispatch

import (
	"context"

	"github.com/oapilot/agent-engine/internal/catalog"
)

func isDocumentTool(name string) bool {
	switch name {
	case catalog.ToolUpdateParagraph,
		catalog.ToolInsertFormattedText,
		catalog.ToolReplaceCurrentWord,
		catalog.ToolUpdateSpreadsheet,
		catalog.ToolUpdatePresentation:
		return true
	}
	return false
}

// execDocumentTool routes a call to the editor bridge. Without an
// attached editor every document tool fails the same way, before any
// script is built.
func (d *Dispatcher) execDocumentTool(ctx context.Context, name string, args map[string]any) Result {
	d.mu.RLock()
	handle := d.handle
	d.mu.RUnlock()
	if handle == nil {
		return Failf("Document editor is not available")
	}

	switch name {
	case catalog.ToolUpdateParagraph:
		return docResult(d.bridge.InsertParagraph(ctx, handle, stringArg(args, "text", "")))
	case catalog.ToolInsertFormattedText:
		return docResult(d.bridge.InsertFormattedText(ctx, handle,
			stringArg(args, "text", ""),
			boolArg(args, "bold", false),
			boolArg(args, "italic", false),
			boolArg(args, "underline", false),
		))
	case catalog.ToolReplaceCurrentWord:
		return docResult(d.bridge.ReplaceSelection(ctx, handle, stringArg(args, "text", "")))
	case catalog.ToolUpdateSpreadsheet:
		return docResult(d.bridge.SetCellValue(ctx, handle,
			stringArg(args, "cell", "A1"),
			stringArg(args, "value", ""),
			boolArg(args, "bold", false),
		))
	case catalog.ToolUpdatePresentation:
		return docResult(d.bridge.SetSlideText(ctx, handle,
			intArg(args, "slideIndex", 0),
			stringArg(args, "text", ""),
		))
	}
	return Failf("tool %s has no document executor", name)
}

func docResult(message string, err error) Result {
	if err != nil {
		return Fail(err)
	}
	return OK(nil, message)
}
