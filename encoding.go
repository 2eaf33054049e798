package yuquemd

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// EncoderFor returns the encoder for a WHATWG encoding name or label such
// as "utf-8", "gbk" or "big5". UTF-8 yields a nil encoder.
func EncoderFor(name string) (*encoding.Encoder, error) {
	if isUTF8(name) {
		return nil, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc.NewEncoder(), nil
}

// EncodeString converts s from UTF-8 into the named encoding. Characters
// the target encoding cannot represent cause an error.
func EncodeString(name, s string) ([]byte, error) {
	enc, err := EncoderFor(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return []byte(s), nil
	}

	out, err := enc.String(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode as %s: %w", name, err)
	}
	return []byte(out), nil
}

func isUTF8(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}
