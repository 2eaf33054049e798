// Package lake converts documents written in the lake HTML dialect (plain
// HTML plus custom card elements carrying percent-encoded JSON) into
// Markdown. Each direct child of body becomes one Block, which is rendered
// to one Markdown string.
package lake

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Converter turns parsed lake documents into Markdown. The zero value
// converts sequentially.
type Converter struct {
	// Workers bounds how many top-level elements are converted at once.
	// Values below 2 mean sequential conversion. Output order never
	// depends on this setting.
	Workers int
}

// NewConverter creates a converter that uses the given number of workers.
func NewConverter(workers int) *Converter {
	return &Converter{Workers: workers}
}

// Result contains the Markdown produced for a document together with any
// cards that had to be skipped.
type Result struct {
	Markdown []string    // one entry per top-level body element
	Blocks   []*Block    // the blocks Markdown was rendered from
	Errors   []CardError // undecodable cards, in document order
}

// String joins the per-element Markdown with newlines, the form written to
// disk.
func (r *Result) String() string {
	return strings.Join(r.Markdown, "\n")
}

// ConvertString parses html and converts it. Only a parse failure is
// returned as an error.
func (c *Converter) ConvertString(html string) (*Result, error) {
	return c.ConvertReader(strings.NewReader(html))
}

// ConvertReader parses HTML from r and converts it.
func (c *Converter) ConvertReader(r io.Reader) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return c.Convert(doc), nil
}

// Convert converts every direct child of the document body, in document
// order.
func (c *Converter) Convert(doc *goquery.Document) *Result {
	elems := doc.Find("body").First().Children()
	n := elems.Length()

	blocks := make([]*Block, n)
	errs := make([][]CardError, n)
	convertOne := func(i int) {
		blocks[i], errs[i] = walkTopLevel(i, elems.Eq(i))
	}

	if c.Workers < 2 || n < 2 {
		for i := 0; i < n; i++ {
			convertOne(i)
		}
	} else {
		// Blocks share no state, so they can be built in any order as long
		// as each lands in its own slot.
		sem := make(chan struct{}, c.Workers)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				convertOne(i)
			}(i)
		}
		wg.Wait()
	}

	result := &Result{
		Markdown: make([]string, 0, n),
		Blocks:   blocks,
	}
	for i, b := range blocks {
		result.Markdown = append(result.Markdown, Render(b))
		result.Errors = append(result.Errors, errs[i]...)
	}
	return result
}

// ToMarkdown is a convenience wrapper that converts html sequentially and
// returns one Markdown string per top-level element.
func ToMarkdown(html string) ([]string, error) {
	result, err := (&Converter{}).ConvertString(html)
	if err != nil {
		return nil, err
	}
	return result.Markdown, nil
}
