package dispatch

import (
	"context"
	"fmt"
	"strconv"

	"github.com/oapilot/agent-engine/internal/catalog"
)

// execStorageTool runs a workspace file tool. The folder argument
// defaults to the engine workspace.
func (d *Dispatcher) execStorageTool(ctx context.Context, name string, args map[string]any) Result {
	folder := stringArg(args, "folder", d.workspace)

	switch name {
	case catalog.ToolGetFileList:
		files, err := d.storage.ListFiles(ctx, folder)
		if err != nil {
			return Fail(err)
		}
		return OK(files, fmt.Sprintf("Found %d files in %s", len(files), folder))

	case catalog.ToolDownloadFile:
		filename := stringArg(args, "filename", "")
		link := d.storage.DownloadURL(filename, folder)
		return OK(map[string]string{"filename": filename, "url": link},
			fmt.Sprintf("Download link for %s", filename))

	case catalog.ToolCreateFile:
		created, err := d.storage.Create(ctx,
			stringArg(args, "type", ""),
			stringArg(args, "filename", ""),
			folder,
		)
		if err != nil {
			return Fail(err)
		}
		return OK(created, fmt.Sprintf("Created %s in %s", created.Filename, folder))

	case catalog.ToolDeleteFile:
		filename := stringArg(args, "filename", "")
		if err := d.storage.Delete(ctx, filename, folder); err != nil {
			return Fail(err)
		}
		return OK(nil, fmt.Sprintf("Deleted %s from %s", filename, folder))

	case catalog.ToolRenameFile:
		renamed, err := d.storage.Rename(ctx,
			stringArg(args, "oldFilename", ""),
			stringArg(args, "newName", ""),
			folder,
		)
		if err != nil {
			return Fail(err)
		}
		message := fmt.Sprintf("Renamed %s to %s", renamed.OldFilename, renamed.NewFilename)
		if renamed.Unchanged {
			message = fmt.Sprintf("File %s already has the requested name", renamed.OldFilename)
		}
		if renamed.Warning != "" {
			message += "; " + renamed.Warning
		}
		return OK(renamed, message)

	case catalog.ToolGetFolderList:
		folders, err := d.storage.ListFolders(ctx)
		if err != nil {
			return Fail(err)
		}
		return OK(folders, fmt.Sprintf("Found %d folders", len(folders)))
	}
	return Failf("tool %s has no local executor", name)
}

// Argument coercion for loosely-typed model output. JSON numbers arrive
// as float64 and the occasional model sends numbers or bools where a
// string is expected.

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key]; ok {
		switch t := v.(type) {
		case string:
			return t
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(t)
		}
	}
	return fallback
}

func boolArg(args map[string]any, key string, fallback bool) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

func intArg(args map[string]any, key string, fallback int) int {
	if v, ok := args[key]; ok {
		switch t := v.(type) {
		case float64:
			return int(t)
		case string:
			if n, err := strconv.Atoi(t); err == nil {
				return n
			}
		}
	}
	return fallback
}
