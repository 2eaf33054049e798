package yuque

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrMetadataNotFound is returned when a page carries no usable book
	// metadata.
	ErrMetadataNotFound = errors.New("book metadata not found in page")

	// ErrContentNotFound is returned when the docs API response has no
	// document content.
	ErrContentNotFound = errors.New("document content not found")
)

// pageDataPattern finds the percent-encoded JSON the page hands to its
// client-side app.
var pageDataPattern = regexp.MustCompile(`decodeURIComponent\("(.*)"\)`)

// Book describes a document and the knowledge base (book) it belongs to.
type Book struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	BookType    string `json:"book_type"`
	DocType     string `json:"doc_type"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Origin      string `json:"-"` // scheme://host of the page
}

type pageData struct {
	Book *struct {
		ID   json.Number `json:"id"`
		Type string      `json:"type"`
	} `json:"book"`
	Group *struct {
		Name string `json:"name"`
	} `json:"group"`
	Doc *struct {
		Title       *string `json:"title"`
		Type        string  `json:"type"`
		Description string  `json:"description"`
		Slug        *string `json:"slug"`
	} `json:"doc"`
}

// ExtractBook finds the embedded page data in a document page's scripts
// and maps it to a Book.
func ExtractBook(page *goquery.Document) (*Book, error) {
	var raw string
	page.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := pageDataPattern.FindStringSubmatch(s.Text()); m != nil {
			raw = m[1]
			return false
		}
		return true
	})
	if raw == "" {
		return nil, ErrMetadataNotFound
	}
	return ParsePageData(raw)
}

// ParsePageData decodes the percent-encoded page data JSON. The book, group
// and doc objects must be present, as must the document's slug and title.
func ParsePageData(encoded string) (*Book, error) {
	decoded, err := url.PathUnescape(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to unescape page data: %w", err)
	}

	var data pageData
	if err := json.Unmarshal([]byte(decoded), &data); err != nil {
		return nil, fmt.Errorf("failed to parse page data: %w", err)
	}

	if data.Book == nil || data.Group == nil || data.Doc == nil ||
		data.Doc.Slug == nil || data.Doc.Title == nil {
		return nil, ErrMetadataNotFound
	}

	return &Book{
		ID:          data.Book.ID.String(),
		Title:       *data.Doc.Title,
		Author:      data.Group.Name,
		BookType:    data.Book.Type,
		DocType:     data.Doc.Type,
		Slug:        *data.Doc.Slug,
		Description: data.Doc.Description,
	}, nil
}
