package lake

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// payloadPrefixLen is the length of the scheme prefix ("data:") the site
// writes in front of every card value. The prefix carries nothing we use.
const payloadPrefixLen = 5

// ErrCardDecode is wrapped by every card payload decoding failure.
var ErrCardDecode = errors.New("card payload decode failed")

// Card names understood by the resolver.
const (
	cardCodeBlock = "codeblock"
	cardImage     = "image"
	cardFlowchart = "flowchart2"
	cardHR        = "hr"
	cardTable     = "table"
)

// cardPayload is the union of the JSON shapes used by the supported cards.
type cardPayload struct {
	Code string     `json:"code"`
	Mode string     `json:"mode"`
	Src  string     `json:"src"`
	Rows countField `json:"rows"`
	Cols countField `json:"cols"`
	HTML string     `json:"html"`
}

// countField accepts both 3 and "3" since table cards have carried either.
// Any other JSON value leaves the field empty, which counts as 0.
type countField string

func (c *countField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = countField(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*c = countField(n.String())
		return nil
	}

	*c = ""
	return nil
}

// Int returns the count, or 0 when it is not a non-negative integer.
func (c countField) Int() int {
	n, err := strconv.Atoi(string(c))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// DecodePayload strips the scheme prefix from a card value, percent-decodes
// the rest and parses it as JSON.
func DecodePayload(value string) (map[string]any, error) {
	raw, err := unwrapPayload(value)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCardDecode, err)
	}
	return out, nil
}

// EncodePayload builds a card value from JSON text, using prefix as the
// scheme. It is the inverse of DecodePayload and exists for fixtures and
// tooling that generate lake documents.
func EncodePayload(prefix, jsonText string) string {
	return prefix + url.PathEscape(jsonText)
}

func unwrapPayload(value string) (string, error) {
	runes := []rune(value)
	if len(runes) <= payloadPrefixLen {
		return "", fmt.Errorf("%w: value shorter than prefix", ErrCardDecode)
	}

	raw, err := url.PathUnescape(string(runes[payloadPrefixLen:]))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCardDecode, err)
	}
	return raw, nil
}

func decodeCard(value string) (*cardPayload, error) {
	raw, err := unwrapPayload(value)
	if err != nil {
		return nil, err
	}

	// Defaults for keys the payload leaves out
	payload := &cardPayload{Mode: "text", Rows: "0", Cols: "0"}
	if err := json.Unmarshal([]byte(raw), payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCardDecode, err)
	}
	return payload, nil
}

// resolveCard converts a card element into at most one segment. ok is false
// for card kinds we do not render. A non-nil error means the payload could
// not be decoded and the card must be skipped.
func resolveCard(card *goquery.Selection) (seg Segment, ok bool, err error) {
	name, _ := card.Attr("name")
	value, _ := card.Attr("value")

	switch name {
	case cardCodeBlock:
		payload, err := decodeCard(value)
		if err != nil {
			return Segment{}, false, err
		}
		return Segment{Classification: CodeBlock(payload.Mode), Text: payload.Code}, true, nil

	case cardImage, cardFlowchart:
		payload, err := decodeCard(value)
		if err != nil {
			return Segment{}, false, err
		}
		return Segment{Classification: Image(), Text: payload.Src}, true, nil

	case cardHR:
		return Segment{Classification: HorizontalRule(), Text: "\n"}, true, nil

	case cardTable:
		payload, err := decodeCard(value)
		if err != nil {
			return Segment{}, false, err
		}
		grid := ExtractCells(payload.HTML)
		return Segment{
			Classification: Table(payload.Rows.Int(), payload.Cols.Int()),
			Text:           MarkdownTable(grid),
		}, true, nil

	default:
		return Segment{}, false, nil
	}
}
