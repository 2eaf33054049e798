package lake

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// CardError records a card whose payload could not be decoded. The card is
// left out of its block; conversion of the rest of the document goes on.
type CardError struct {
	Block int    // index of the top-level element holding the card
	Name  string // card name attribute
	Err   error
}

func (e *CardError) Error() string {
	return fmt.Sprintf("block %d: card %q: %v", e.Block, e.Name, e.Err)
}

func (e *CardError) Unwrap() error {
	return e.Err
}

// walker builds one Block by visiting a subtree depth-first.
type walker struct {
	index  int
	block  *Block
	errors []CardError
}

// Walk converts a single element (normally a direct child of body) into a
// Block. Cards that fail to decode are skipped and reported in the returned
// slice.
func Walk(node *goquery.Selection) (*Block, []CardError) {
	return walkTopLevel(0, node)
}

func walkTopLevel(index int, node *goquery.Selection) (*Block, []CardError) {
	w := &walker{index: index, block: &Block{}}
	if node.Length() == 0 {
		return w.block, nil
	}

	node = node.First()
	w.walk(node, goquery.NodeName(node.Parent()))
	return w.block, w.errors
}

func (w *walker) walk(node *goquery.Selection, parentTag string) {
	n := node.Get(0)
	if n == nil || n.Type != html.ElementNode || n.Data == "" {
		return
	}
	tag := n.Data

	switch tag {
	case "ul", "ol":
		w.block.addSegments(renderList(node))

	case "card":
		seg, ok, err := resolveCard(node)
		if err != nil {
			name, _ := node.Attr("name")
			w.errors = append(w.errors, CardError{Block: w.index, Name: name, Err: err})
			return
		}
		if ok {
			w.block.add(seg.Classification, seg.Text)
		}

	default:
		if text := leadingText(node); text != "" {
			w.block.add(classifyTag(tag, parentTag), text)
		}
		node.Children().Each(func(_ int, child *goquery.Selection) {
			w.walk(child, tag)
		})
	}
}

// leadingText returns the text that precedes the node's first non-text
// child (its immediate text content), or "" when there is none. Comments
// end the leading text just like elements do.
func leadingText(node *goquery.Selection) string {
	n := node.Get(0)
	if n == nil {
		return ""
	}

	text := ""
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			break
		}
		text += c.Data
	}
	return text
}
