package catalog

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Document tool names, shared with the dispatcher's routing table.
const (
	ToolUpdateParagraph     = "updateParagraph"
	ToolInsertFormattedText = "insertFormattedText"
	ToolReplaceCurrentWord  = "replaceCurrentWord"
	ToolUpdateSpreadsheet   = "updateSpreadsheet"
	ToolUpdatePresentation  = "updatePresentation"
)

// DocumentTools returns the descriptors for the tools that drive the
// open document through the editor scripting bridge.
func DocumentTools() []Descriptor {
	tools := []mcp.Tool{
		mcp.NewTool(ToolUpdateParagraph,
			mcp.WithDescription("Insert a new paragraph with the given text at the end of the open document"),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Text content of the new paragraph"),
			),
		),
		mcp.NewTool(ToolInsertFormattedText,
			mcp.WithDescription("Insert a new paragraph with optional bold, italic and underline formatting"),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Text content to insert"),
			),
			mcp.WithBoolean("bold",
				mcp.Description("Render the text bold. Default: false"),
			),
			mcp.WithBoolean("italic",
				mcp.Description("Render the text italic. Default: false"),
			),
			mcp.WithBoolean("underline",
				mcp.Description("Underline the text. Default: false"),
			),
		),
		mcp.NewTool(ToolReplaceCurrentWord,
			mcp.WithDescription("Replace the word at the current cursor position with the given text"),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Replacement text"),
			),
		),
		mcp.NewTool(ToolUpdateSpreadsheet,
			mcp.WithDescription("Set a cell value on the active worksheet, optionally bold"),
			mcp.WithString("cell",
				mcp.Description("Cell reference such as A1 or B2. Default: A1"),
			),
			mcp.WithString("value",
				mcp.Required(),
				mcp.Description("Value to write into the cell"),
			),
			mcp.WithBoolean("bold",
				mcp.Description("Render the cell value bold. Default: false"),
			),
		),
		mcp.NewTool(ToolUpdatePresentation,
			mcp.WithDescription("Replace the text of the first shape on a presentation slide"),
			mcp.WithNumber("slideIndex",
				mcp.Description("Zero-based slide index. Default: 0"),
			),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Text content for the slide"),
			),
		),
	}

	descs := make([]Descriptor, 0, len(tools))
	for _, tool := range tools {
		descs = append(descs, Descriptor{Tool: tool, Origin: LocalOrigin()})
	}
	return descs
}
