package lake

import (
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// indentAttr is the attribute the editor writes on indented lists.
const indentAttr = "data-lake-indent"

// renderList turns the direct li children of a ul/ol into list item
// segments. Only the list's own indent attribute is honoured; lists nested
// inside other lists are not indented any further.
func renderList(list *goquery.Selection) []Segment {
	ordered := goquery.NodeName(list) == "ol"
	indent := listIndent(list)

	var segments []Segment
	position := 0
	list.Children().Each(func(_ int, item *goquery.Selection) {
		if goquery.NodeName(item) != "li" {
			return
		}
		position++

		c := UnorderedListItem(indent)
		if ordered {
			c = OrderedListItem(position, indent)
		}
		segments = append(segments, Segment{Classification: c, Text: listItemText(item)})
	})

	return segments
}

// listItemText collects the li's leading text plus one level of inline
// decoration: spans are appended as-is and spans wrapped in strong are
// appended in bold. Anything deeper is ignored.
func listItemText(item *goquery.Selection) string {
	text := leadingText(item)

	item.Children().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "strong":
			child.Children().Each(func(_ int, inner *goquery.Selection) {
				if goquery.NodeName(inner) != "span" {
					return
				}
				if t := leadingText(inner); t != "" {
					text += "**" + t + "**"
				}
			})
		case "span":
			text += leadingText(child)
		}
	})

	return text
}

func listIndent(list *goquery.Selection) int {
	raw, ok := list.Attr(indentAttr)
	if !ok {
		return 0
	}
	indent, err := strconv.Atoi(raw)
	if err != nil || indent < 0 {
		return 0
	}
	return indent
}
