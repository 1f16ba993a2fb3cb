// Package reader reads the file structure of PDF documents: the version
// header, the startxref pointer, classic cross-reference tables (including
// the /Prev chain left by incremental updates), and trailer dictionaries.
//
// Documents whose last cross-reference section is a PDF 1.5+
// cross-reference stream are detected and rejected with a descriptive
// error; stream-format tables are not parsed.
package reader
