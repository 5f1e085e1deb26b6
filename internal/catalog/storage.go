package catalog

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Storage tool names, shared with the dispatcher's routing table.
const (
	ToolGetFileList   = "getFileList"
	ToolDownloadFile  = "downloadFile"
	ToolCreateFile    = "createFile"
	ToolDeleteFile    = "deleteFile"
	ToolRenameFile    = "renameFile"
	ToolGetFolderList = "getFolderList"
)

// StorageTools returns the descriptors for the workspace file tools.
// Folder arguments default to the engine workspace when omitted.
func StorageTools() []Descriptor {
	tools := []mcp.Tool{
		mcp.NewTool(ToolGetFileList,
			mcp.WithDescription("List the files in a storage folder"),
			mcp.WithString("folder",
				mcp.Description("Storage folder to list; defaults to the current workspace"),
			),
		),
		mcp.NewTool(ToolDownloadFile,
			mcp.WithDescription("Get a download link for a stored file"),
			mcp.WithString("filename",
				mcp.Required(),
				mcp.Description("Name of the file to download"),
			),
			mcp.WithString("folder",
				mcp.Description("Storage folder; defaults to the current workspace"),
			),
		),
		mcp.NewTool(ToolCreateFile,
			mcp.WithDescription("Create a new document from a blank template"),
			mcp.WithString("type",
				mcp.Required(),
				mcp.Description("Kind of document to create"),
				mcp.Enum("word", "excel", "ppt", "pdf"),
			),
			mcp.WithString("filename",
				mcp.Required(),
				mcp.Description("Base name for the new file, without extension"),
			),
			mcp.WithString("folder",
				mcp.Description("Storage folder; defaults to the current workspace"),
			),
		),
		mcp.NewTool(ToolDeleteFile,
			mcp.WithDescription("Delete a stored file"),
			mcp.WithString("filename",
				mcp.Required(),
				mcp.Description("Name of the file to delete"),
			),
			mcp.WithString("folder",
				mcp.Description("Storage folder; defaults to the current workspace"),
			),
		),
		mcp.NewTool(ToolRenameFile,
			mcp.WithDescription("Rename a stored file, keeping its extension"),
			mcp.WithString("oldFilename",
				mcp.Required(),
				mcp.Description("Current file name"),
			),
			mcp.WithString("newName",
				mcp.Required(),
				mcp.Description("New base name, without extension"),
			),
			mcp.WithString("folder",
				mcp.Description("Storage folder; defaults to the current workspace"),
			),
		),
		mcp.NewTool(ToolGetFolderList,
			mcp.WithDescription("List the folders available in storage"),
		),
	}

	descs := make([]Descriptor, 0, len(tools))
	for _, tool := range tools {
		descs = append(descs, Descriptor{Tool: tool, Origin: LocalOrigin()})
	}
	return descs
}
