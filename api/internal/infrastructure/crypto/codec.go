package crypto

import (
	"encoding/base64"
	"errors"
	"strings"
)

var errLineBreak = errors.New("illegal line break in Base64 input")

// Encode converts bytes to standard padded Base64.
func Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Decode parses standard padded Base64. Line breaks are rejected rather than
// skipped. The returned error names the field and never echoes the input.
func Decode(field, text string) ([]byte, error) {
	if strings.ContainsAny(text, "\r\n") {
		return nil, &Error{Kind: KindInvalidFormat, Field: field, Err: errLineBreak}
	}
	b, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, &Error{Kind: KindInvalidFormat, Field: field, Err: err}
	}
	return b, nil
}
