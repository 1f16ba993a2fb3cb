package core

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// TrimBytes strips leading and trailing PDF whitespace from a byte buffer.
// It never copies; the returned slice shares backing storage with b.
func TrimBytes(b []byte) []byte {
	start := 0
	for start < len(b) && isWhitespace(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isWhitespace(b[end-1]) {
		end--
	}
	return b[start:end]
}

// DecodeRange decodes the byte range b[start:end] to text.
//
// PDF file-structure keywords and the cross-reference grammar are plain
// ASCII, but surrounding bytes may carry arbitrary Latin-1 values, so
// the range is decoded with the Latin-1 charmap rather than interpreted
// as UTF-8.
func DecodeRange(b []byte, start, end int) (string, error) {
	if start < 0 || end > len(b) || start > end {
		return "", fmt.Errorf("byte range [%d:%d) out of bounds for %d bytes", start, end, len(b))
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b[start:end])
	if err != nil {
		return "", fmt.Errorf("failed to decode byte range [%d:%d): %w", start, end, err)
	}
	return string(decoded), nil
}
