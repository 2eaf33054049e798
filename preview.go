package yuquemd

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// previewEngine renders exported Markdown with the GFM extensions needed
// for the pipe tables we emit. Raw HTML in the input is omitted.
var previewEngine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// RenderPreview renders Markdown into an HTML fragment.
func RenderPreview(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := previewEngine.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPreviewPage wraps the rendered fragment in a minimal HTML page.
func RenderPreviewPage(title, markdown string) ([]byte, error) {
	body, err := RenderPreview(markdown)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	buf.Write(util.EscapeHTML([]byte(title)))
	buf.WriteString("</title></head><body>\n")
	buf.Write(body)
	buf.WriteString("</body></html>\n")
	return buf.Bytes(), nil
}
