package core

import (
	"strconv"
	"strings"
)

// Classic cross-reference table recognition.
//
// A classic (non-stream) table is plain text:
//
//	xref
//	0 6
//	0000000000 65535 f
//	0000000017 00000 n
//	...
//
// ScanXRefTable and its two helpers recognize this construct with a
// hand-written cursor over the decoded text. Each layer is all-or-nothing:
// a grammar violation anywhere fails the whole layer with nothing consumed,
// so the caller can try a different interpretation of the same bytes (a
// cross-reference stream, typically). Failure is an absence, not an error;
// the recognizer cannot tell "corrupt table" from "not a table", and its
// callers never need the difference.

const (
	xrefKeyword = "xref"

	xrefOffsetDigits = 10
	xrefGenDigits    = 5
	// Offset10 " " GenNum5 " " Flag
	xrefEntryLen = xrefOffsetDigits + 1 + xrefGenDigits + 1 + 1
)

// isXRefSpace reports whether c is whitespace inside a table. The 2-byte
// end-of-line marker between entries is accepted generically here.
func isXRefSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r'
}

// isXRefAlphabet reports whether c may appear anywhere in a classic table:
// letters of the keyword, decimal digits, the in-use/free markers, and
// whitespace. 'f' doubles as keyword letter and free marker.
func isXRefAlphabet(c byte) bool {
	switch c {
	case 'x', 'r', 'e', 'f', 'n':
		return true
	}
	return isDigit(c) || isXRefSpace(c)
}

// skipXRefSpace advances pos past any run of table whitespace. The cursor
// only ever moves forward, so trimmed prefixes are never re-scanned.
func skipXRefSpace(s string, pos int) int {
	for pos < len(s) && isXRefSpace(s[pos]) {
		pos++
	}
	return pos
}

// matchXRefEntry attempts to match one fixed-width entry token at pos:
// exactly 10 digits, a space, exactly 5 digits, a space, then 'n' or 'f'.
// On success it returns the decoded entry and the position past the token.
func matchXRefEntry(s string, pos int) (XRefEntry, int, bool) {
	if pos+xrefEntryLen > len(s) {
		return XRefEntry{}, 0, false
	}
	tok := s[pos : pos+xrefEntryLen]

	for i := 0; i < xrefOffsetDigits; i++ {
		if !isDigit(tok[i]) {
			return XRefEntry{}, 0, false
		}
	}
	if tok[xrefOffsetDigits] != ' ' {
		return XRefEntry{}, 0, false
	}
	for i := xrefOffsetDigits + 1; i < xrefOffsetDigits+1+xrefGenDigits; i++ {
		if !isDigit(tok[i]) {
			return XRefEntry{}, 0, false
		}
	}
	if tok[xrefOffsetDigits+1+xrefGenDigits] != ' ' {
		return XRefEntry{}, 0, false
	}
	flag := tok[xrefEntryLen-1]
	if flag != 'n' && flag != 'f' {
		return XRefEntry{}, 0, false
	}

	offset, err := strconv.ParseInt(tok[:xrefOffsetDigits], 10, 64)
	if err != nil {
		return XRefEntry{}, 0, false
	}
	generation, err := strconv.Atoi(tok[xrefOffsetDigits+1 : xrefOffsetDigits+1+xrefGenDigits])
	if err != nil {
		return XRefEntry{}, 0, false
	}

	return NewXRefEntry(offset, generation, flag == 'n'), pos + xrefEntryLen, true
}

// matchUint matches a run of one or more decimal digits at pos and decodes
// it. A digit run too long for int64 is a failed match, not a wrapped value.
func matchUint(s string, pos int) (int64, int, bool) {
	start := pos
	for pos < len(s) && isDigit(s[pos]) {
		pos++
	}
	if pos == start {
		return 0, 0, false
	}
	v, err := strconv.ParseInt(s[start:pos], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return v, pos, true
}

// captureEntryBlock returns the end of the maximal run of
// whitespace-interleaved entry-shaped tokens starting at pos. Trailing
// whitespace after the last token is left uncaptured.
func captureEntryBlock(s string, pos int) int {
	end := pos
	for {
		next := skipXRefSpace(s, end)
		_, after, ok := matchXRefEntry(s, next)
		if !ok {
			return end
		}
		end = after
	}
}

// parseXRefEntries recognizes a span consisting entirely of entry tokens.
//
// It returns the entries in encounter order, or ok=false if any part of the
// span fails to match. There is no partial success: a caller cannot safely
// resynchronize its byte accounting from a partial entry list, so a single
// malformed token discards everything matched before it. An empty span is
// vacuously successful with zero entries.
func parseXRefEntries(span string) ([]XRefEntry, bool) {
	entries := []XRefEntry{}
	pos := skipXRefSpace(span, 0)
	for pos < len(span) {
		entry, next, ok := matchXRefEntry(span, pos)
		if !ok {
			return nil, false
		}
		entries = append(entries, entry)
		pos = skipXRefSpace(span, next)
	}
	return entries, true
}

// parseXRefSubsections recognizes a span as one or more subsections, each a
// header of exactly two integers separated by one space followed by that
// subsection's entries block.
//
// The declared entry count is decoded and carried on the subsection but
// never compared to the number of entries actually present. Like the entry
// layer this is all-or-nothing: ok=false means the span is not a valid
// sequence of subsections, and nothing is returned.
func parseXRefSubsections(span string) ([]XRefSubsection, bool) {
	var subsections []XRefSubsection
	pos := skipXRefSpace(span, 0)
	for pos < len(span) {
		first, afterFirst, ok := matchUint(span, pos)
		if !ok {
			return nil, false
		}
		if afterFirst >= len(span) || span[afterFirst] != ' ' {
			return nil, false
		}
		count, afterCount, ok := matchUint(span, afterFirst+1)
		if !ok {
			return nil, false
		}

		blockEnd := captureEntryBlock(span, afterCount)
		entries, ok := parseXRefEntries(span[afterCount:blockEnd])
		if !ok {
			return nil, false
		}

		subsections = append(subsections, NewXRefSubsection(first, count, entries))
		pos = skipXRefSpace(span, blockEnd)
	}
	if len(subsections) == 0 {
		return nil, false
	}
	return subsections, true
}

// ScanXRefTable recognizes a classic cross-reference table at the start of
// buf, after trimming insignificant leading and trailing bytes.
//
// On success it returns the assembled table and the unconsumed remainder of
// the trimmed buffer, having first invoked observer (if non-nil) exactly
// once with the completed table. On failure it returns ok=false with zero
// bytes consumed and no side effects, so the caller can try an alternative
// construct, such as a cross-reference stream, against the same bytes.
func ScanXRefTable(buf []byte, observer XRefObserver) (*XRefTable, []byte, bool) {
	trimmed := TrimBytes(buf)

	// Maximal candidate span over the table alphabet.
	spanEnd := 0
	for spanEnd < len(trimmed) && isXRefAlphabet(trimmed[spanEnd]) {
		spanEnd++
	}

	text, err := DecodeRange(trimmed, 0, spanEnd)
	if err != nil {
		return nil, nil, false
	}

	if !strings.HasPrefix(text, xrefKeyword) {
		return nil, nil, false
	}
	// The keyword alone is not sufficient evidence; the whole candidate
	// span must parse as subsections.
	subsections, ok := parseXRefSubsections(text[len(xrefKeyword):])
	if !ok {
		return nil, nil, false
	}

	table := NewXRefTable(subsections)
	if observer != nil {
		observer(table)
	}
	return table, trimmed[spanEnd:], true
}
