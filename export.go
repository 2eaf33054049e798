// Package yuquemd exports yuque.com documents as Markdown files. It ties the
// site client, the lake converter, output encoding, optional HTML previews
// and the export history together.
package yuquemd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pevans/yuquemd/lake"
	"github.com/pevans/yuquemd/yuque"
)

// DocumentSource fetches documents. *yuque.Client implements it.
type DocumentSource interface {
	FetchBook(ctx context.Context, docURL string) (*yuque.Book, error)
	FetchContent(ctx context.Context, book *yuque.Book) (string, error)
}

// Exporter fetches documents, converts them and writes them to disk.
type Exporter struct {
	Source    DocumentSource
	Converter *lake.Converter
	Encoding  string        // output encoding, default utf-8
	History   *HistoryStore // optional
	Preview   bool          // also write an HTML preview next to the Markdown
	Out       io.Writer     // progress output, default os.Stdout
}

// ExportResult describes one exported document.
type ExportResult struct {
	Book        *yuque.Book
	Path        string
	PreviewPath string
	Markdown    string
	CardErrors  []lake.CardError
	Record      *ExportRecord
}

// NewExporter creates an exporter with a sequential converter and UTF-8
// output.
func NewExporter(source DocumentSource) *Exporter {
	return &Exporter{
		Source:    source,
		Converter: &lake.Converter{},
		Encoding:  "utf-8",
	}
}

func (e *Exporter) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

// Export fetches the document at docURL, converts it and writes it to the
// location derived from outPath (see ResolveOutputPath).
func (e *Exporter) Export(ctx context.Context, docURL, outPath string) (*ExportResult, error) {
	out := e.out()

	if err := yuque.ValidateDocURL(docURL); err != nil {
		return nil, err
	}

	book, err := e.Source.FetchBook(ctx, docURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch book: %w", err)
	}

	printBook(out, book)

	path, warning := ResolveOutputPath(outPath, book.Title)
	if warning != "" {
		fmt.Fprintf(out, "Warning: %s\n", warning)
	}
	if abs, err := filepath.Abs(path); err == nil {
		fmt.Fprintf(out, "Saving to: %s\n", abs)
	}

	content, err := e.Source.FetchContent(ctx, book)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	result, err := e.converter().ConvertString(content)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document: %w", err)
	}
	for _, cardErr := range result.Errors {
		fmt.Fprintf(out, "Warning: skipped card: %v\n", &cardErr)
	}

	markdown := result.String()
	data, err := EncodeString(e.encoding(), markdown)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write markdown: %w", err)
	}

	export := &ExportResult{
		Book:       book,
		Path:       path,
		Markdown:   markdown,
		CardErrors: result.Errors,
	}

	if e.Preview {
		export.PreviewPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
		page, err := RenderPreviewPage(book.Title, markdown)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(export.PreviewPath, page, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write preview: %w", err)
		}
	}

	if e.History != nil {
		rec, err := e.History.Record(ExportRecord{
			BookID:     book.ID,
			Slug:       book.Slug,
			Title:      book.Title,
			Author:     book.Author,
			URL:        docURL,
			Path:       path,
			Encoding:   e.encoding(),
			CardErrors: len(result.Errors),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to record export: %w", err)
		}
		export.Record = rec
	}

	fmt.Fprintf(out, "> Saved: %s\n", path)
	return export, nil
}

func (e *Exporter) converter() *lake.Converter {
	if e.Converter == nil {
		return &lake.Converter{}
	}
	return e.Converter
}

func (e *Exporter) encoding() string {
	if e.Encoding == "" {
		return "utf-8"
	}
	return e.Encoding
}

func printBook(out io.Writer, book *yuque.Book) {
	rule := strings.Repeat("-", 30)
	fmt.Fprintf(out, "%s BEGIN %s\n", rule, rule)
	fmt.Fprintf(out, "Title: %s (%s)\n", book.Title, book.ID)
	fmt.Fprintf(out, "Author: %s    Type: %s    Slug: %s\n", book.Author, book.DocType, book.Slug)
	fmt.Fprintf(out, "Description: %s\n", book.Description)
	fmt.Fprintf(out, "%s  END  %s\n", rule, rule)
}

// ResolveOutputPath decides where a document titled title is written:
//   - an existing directory gets <dir>/<title>.md
//   - a path ending in a separator that does not exist falls back to
//     ./<title>.md
//   - a file path whose parent directory is missing falls back to
//     ./<file name>
//   - any other path is used as given
//
// The second return value is a warning to show the user, or "".
func ResolveOutputPath(raw, title string) (string, string) {
	if raw == "" {
		raw = "."
	}
	fileName := SanitizeFileName(title) + ".md"

	if info, err := os.Stat(raw); err == nil && info.IsDir() {
		return filepath.Join(raw, fileName), ""
	}

	if strings.HasSuffix(raw, "/") || strings.HasSuffix(raw, string(filepath.Separator)) {
		return fileName, fmt.Sprintf("output directory does not exist (%s), saving in the current directory", raw)
	}

	parent := filepath.Dir(raw)
	if _, err := os.Stat(parent); err != nil {
		return filepath.Base(raw), fmt.Sprintf("output directory does not exist (%s), saving in the current directory", parent)
	}

	return raw, ""
}

// SanitizeFileName makes a document title safe to use as a file name.
func SanitizeFileName(title string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "\x00", "")
	name := strings.TrimSpace(replacer.Replace(title))
	if name == "" || name == "." || name == ".." {
		return "untitled"
	}
	return name
}
