package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Bridge turns tool arguments into editor automation scripts and runs
// them through a fresh connector per call. Every caller-supplied value
// is JSON-encoded into the script body so hostile text cannot break out
// of the command it is embedded in.
type Bridge struct {
	logger *slog.Logger
}

func NewBridge(logger *slog.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// InsertParagraph appends a plain paragraph to the open document.
func (b *Bridge) InsertParagraph(ctx context.Context, h Handle, text string) (string, error) {
	script := fmt.Sprintf(`var oDocument = Api.GetDocument();
var oParagraph = Api.CreateParagraph();
oParagraph.AddText(%s);
oDocument.InsertContent([oParagraph]);`, jsonValue(text))
	if err := b.run(ctx, h, script); err != nil {
		return "", err
	}
	return fmt.Sprintf("Inserted new paragraph: %s", text), nil
}

// InsertFormattedText appends a paragraph whose run carries the
// requested formatting.
func (b *Bridge) InsertFormattedText(ctx context.Context, h Handle, text string, bold, italic, underline bool) (string, error) {
	var sb strings.Builder
	sb.WriteString("var oDocument = Api.GetDocument();\n")
	sb.WriteString("var oParagraph = Api.CreateParagraph();\n")
	sb.WriteString("var oRun = Api.CreateRun();\n")
	fmt.Fprintf(&sb, "oRun.AddText(%s);\n", jsonValue(text))
	if bold {
		sb.WriteString("oRun.SetBold(true);\n")
	}
	if italic {
		sb.WriteString("oRun.SetItalic(true);\n")
	}
	if underline {
		sb.WriteString("oRun.SetUnderline(true);\n")
	}
	sb.WriteString("oParagraph.AddElement(oRun);\n")
	sb.WriteString("oDocument.InsertContent([oParagraph]);")
	if err := b.run(ctx, h, sb.String()); err != nil {
		return "", err
	}
	return fmt.Sprintf("Inserted formatted text: %s%s", text, styleSuffix(bold, italic, underline)), nil
}

// ReplaceSelection replaces the currently selected range with the
// given text.
func (b *Bridge) ReplaceSelection(ctx context.Context, h Handle, text string) (string, error) {
	script := fmt.Sprintf(`var oDocument = Api.GetDocument();
var oRange = oDocument.GetRangeBySelect();
oRange.SetText(%s);`, jsonValue(text))
	if err := b.run(ctx, h, script); err != nil {
		return "", err
	}
	return fmt.Sprintf("Replaced selection with: %s", text), nil
}

// SetCellValue writes a value into a cell of the active worksheet.
func (b *Bridge) SetCellValue(ctx context.Context, h Handle, cell, value string, bold bool) (string, error) {
	var sb strings.Builder
	sb.WriteString("var oWorksheet = Api.GetActiveSheet();\n")
	fmt.Fprintf(&sb, "var oRange = oWorksheet.GetRange(%s);\n", jsonValue(cell))
	fmt.Fprintf(&sb, "oRange.SetValue(%s);\n", jsonValue(value))
	if bold {
		sb.WriteString("oRange.SetBold(true);\n")
	}
	if err := b.run(ctx, h, sb.String()); err != nil {
		return "", err
	}
	msg := fmt.Sprintf("Updated cell %s with value %s", cell, value)
	if bold {
		msg += " (bold)"
	}
	return msg, nil
}

// SetSlideText replaces the text of the first shape on the given slide.
// An out-of-range index is reported by the editor itself.
func (b *Bridge) SetSlideText(ctx context.Context, h Handle, slideIndex int, text string) (string, error) {
	script := fmt.Sprintf(`var oPresentation = Api.GetPresentation();
var oSlide = oPresentation.GetSlideByIndex(%d);
var oShape = oSlide.GetAllShapes()[0];
var oContent = oShape.GetDocContent();
oContent.RemoveAllElements();
var oParagraph = Api.CreateParagraph();
oParagraph.AddText(%s);
oContent.Push(oParagraph);`, slideIndex, jsonValue(text))
	if err := b.run(ctx, h, script); err != nil {
		return "", err
	}
	return fmt.Sprintf("Updated slide %d with text: %s", slideIndex, text), nil
}

func (b *Bridge) run(ctx context.Context, h Handle, script string) error {
	if h == nil {
		return ErrEditorUnavailable
	}
	conn, err := h.CreateConnector()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEditorUnavailable, err)
	}
	b.logger.Debug("submitting editor script", "bytes", len(script))
	if _, err := conn.CallCommand(ctx, script); err != nil {
		return fmt.Errorf("script execution failed: %w", err)
	}
	return nil
}

func jsonValue(v any) string {
	encoded, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(encoded)
}

func styleSuffix(bold, italic, underline bool) string {
	var styles []string
	if bold {
		styles = append(styles, "bold")
	}
	if italic {
		styles = append(styles, "italic")
	}
	if underline {
		styles = append(styles, "underline")
	}
	if len(styles) == 0 {
		return ""
	}
	return " (" + strings.Join(styles, ", ") + ")"
}
