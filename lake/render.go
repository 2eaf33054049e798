package lake

import (
	"strconv"
	"strings"
)

// imageAlt is the alt text written for every image; the lake format does
// not carry one.
const imageAlt = "image not loaded"

// Render converts a Block into Markdown. Segments are concatenated with no
// separator other than what each rule emits itself.
func Render(b *Block) string {
	var sb strings.Builder
	for i, c := range b.Classifications {
		renderSegment(&sb, c, b.Texts[i])
	}
	return sb.String()
}

func renderSegment(sb *strings.Builder, c Classification, text string) {
	switch c.Kind {
	case KindHeading:
		sb.WriteString(strings.Repeat("#", c.Level))
		sb.WriteString(" ")
		sb.WriteString(text)
		sb.WriteString("\n")
	case KindParagraph:
		sb.WriteString(text)
	case KindEmphasis:
		sb.WriteString("*" + text + "*")
	case KindStrong:
		sb.WriteString("**" + text + "**")
	case KindSpan:
		sb.WriteString(strings.TrimSpace(text))
	case KindCodeBlock:
		sb.WriteString("\n```" + c.Language + "\n" + text + "\n```\n")
	case KindImage:
		sb.WriteString("![" + imageAlt + "](" + text + ")\n")
	case KindUnorderedListItem:
		sb.WriteString(strings.Repeat("\t", c.Indent))
		sb.WriteString("- " + text + "\n")
	case KindOrderedListItem:
		sb.WriteString(strings.Repeat("\t", c.Indent))
		sb.WriteString(strconv.Itoa(c.Position) + ". " + text + "\n")
	case KindHorizontalRule:
		sb.WriteString("\n---" + text)
	case KindTable:
		// Already Markdown
		sb.WriteString(text)
	}
}
