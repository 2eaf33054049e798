package lake

import "fmt"

// Kind identifies the Markdown rendering rule applied to a segment.
type Kind int

const (
	KindSpan Kind = iota
	KindHeading
	KindParagraph
	KindEmphasis
	KindStrong
	KindCodeBlock
	KindImage
	KindUnorderedListItem
	KindOrderedListItem
	KindHorizontalRule
	KindTable
)

var kindNames = map[Kind]string{
	KindSpan:              "span",
	KindHeading:           "heading",
	KindParagraph:         "paragraph",
	KindEmphasis:          "emphasis",
	KindStrong:            "strong",
	KindCodeBlock:         "codeblock",
	KindImage:             "image",
	KindUnorderedListItem: "ul_item",
	KindOrderedListItem:   "ol_item",
	KindHorizontalRule:    "hr",
	KindTable:             "table",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Classification is the semantic category of one segment. Only the fields
// belonging to Kind are meaningful; the rest stay zero.
type Classification struct {
	Kind     Kind   `json:"kind"`
	Level    int    `json:"level,omitempty"`    // Heading: 1..6
	Language string `json:"language,omitempty"` // CodeBlock
	Indent   int    `json:"indent,omitempty"`   // list items
	Position int    `json:"position,omitempty"` // OrderedListItem, 1-based
	Rows     int    `json:"rows,omitempty"`     // Table
	Cols     int    `json:"cols,omitempty"`     // Table
}

// Heading classifies an h1..h6 segment.
func Heading(level int) Classification {
	return Classification{Kind: KindHeading, Level: level}
}

func Paragraph() Classification { return Classification{Kind: KindParagraph} }
func Emphasis() Classification  { return Classification{Kind: KindEmphasis} }
func Strong() Classification    { return Classification{Kind: KindStrong} }
func Span() Classification      { return Classification{Kind: KindSpan} }
func Image() Classification     { return Classification{Kind: KindImage} }

// HorizontalRule classifies a divider card.
func HorizontalRule() Classification { return Classification{Kind: KindHorizontalRule} }

// CodeBlock classifies a code card written in the given language mode.
func CodeBlock(language string) Classification {
	return Classification{Kind: KindCodeBlock, Language: language}
}

// UnorderedListItem classifies a ul item at the given tab indent.
func UnorderedListItem(indent int) Classification {
	return Classification{Kind: KindUnorderedListItem, Indent: indent}
}

// OrderedListItem classifies an ol item with its 1-based position.
func OrderedListItem(position, indent int) Classification {
	return Classification{Kind: KindOrderedListItem, Position: position, Indent: indent}
}

// Table classifies a table card with the dimensions declared in its payload.
func Table(rows, cols int) Classification {
	return Classification{Kind: KindTable, Rows: rows, Cols: cols}
}

// classifyTag maps an element with leading text to its classification. A
// span inherits the classification of its parent unless the parent is the
// document root, in which case it stays a plain span.
func classifyTag(tag, parentTag string) Classification {
	if tag == "span" && !isDocumentRoot(parentTag) {
		tag = parentTag
	}

	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return Heading(int(tag[1] - '0'))
	case "p":
		return Paragraph()
	case "em", "i":
		return Emphasis()
	case "strong":
		return Strong()
	default:
		return Span()
	}
}

func isDocumentRoot(tag string) bool {
	return tag == "body" || tag == "html"
}
