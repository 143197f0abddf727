// Package codec converts raw file bytes to and from the text form embedded in
// the vault document.
package codec

import (
	"encoding/base64"
	"fmt"
)

// Base64Codec encodes payloads with padded standard base64 (RFC 4648).
// Encoded payloads are about 4/3 the size of the input.
type Base64Codec struct{}

// NewBase64Codec returns the codec used for vault payloads.
func NewBase64Codec() *Base64Codec {
	return &Base64Codec{}
}

// Encode returns the text form of data.
func (Base64Codec) Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Decode reverses Encode.
func (Base64Codec) Decode(text string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 payload: %w", err)
	}
	return data, nil
}

// DecodedLen returns the number of bytes text decodes to, without decoding it.
// The result is only meaningful for well-formed payloads.
func (Base64Codec) DecodedLen(text string) int64 {
	n := len(text)
	if n == 0 {
		return 0
	}
	padding := 0
	for i := n - 1; i >= 0 && i >= n-2 && text[i] == '='; i-- {
		padding++
	}
	return int64(n/4*3 - padding)
}

// EncodedLen returns the length of the text form of n raw bytes.
func (Base64Codec) EncodedLen(n int) int {
	return base64.StdEncoding.EncodedLen(n)
}
