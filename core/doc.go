// Package core provides low-level PDF file-structure primitives: the basic
// object types, a tokenizer and parser for PDF syntax, and recognition of
// classic cross-reference tables.
//
// # Object Types
//
// The PDF object types are implemented as types satisfying the Object
// interface: [Null], [Bool], [Int], [Real], [String], [Name], [Array],
// and [Dict], plus [IndirectRef] for references to indirect objects.
// The [Parser] type parses these from a byte buffer, tokenized by [Lexer].
//
// # Cross-Reference Tables
//
// [ScanXRefTable] recognizes a classic (non-stream) cross-reference table
// at the start of a byte buffer and decodes it into an [XRefTable] of
// [XRefSubsection] and [XRefEntry] values, reporting the unconsumed
// remainder of the buffer. Recognition is strict and all-or-nothing: when
// the bytes are not a valid classic table the scan declines cleanly with
// zero bytes consumed, so a caller can try the same bytes as a different
// construct (for example a PDF 1.5+ cross-reference stream, which this
// package does not parse).
//
// Tables from incremental updates can be combined with [MergeXRefTables];
// lookups on the merged table resolve to the newest revision of each
// object.
package core
