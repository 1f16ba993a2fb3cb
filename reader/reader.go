package reader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/zapkub/pdf-lib/core"
	"github.com/zapkub/pdf-lib/logging"
)

// startXRefKeyword marks the pointer to the last cross-reference section.
const startXRefKeyword = "startxref"

// tailReadSize is how many bytes from the end of the file are searched
// for the startxref pointer.
const tailReadSize = 1024

// PDFVersion represents a PDF version.
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g. "1.7").
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Reader reads the file structure of a PDF document: header, startxref
// pointer, the chain of classic cross-reference tables, and their trailer
// dictionaries. Cross-reference streams (PDF 1.5+) are detected but not
// parsed.
type Reader struct {
	file     *os.File
	fileSize int64
	version  PDFVersion
	xref     *core.XRefTable
	trailer  core.Dict
}

// Open opens a PDF file and returns a Reader.
func Open(filename string) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return r, nil
}

// NewReader creates a Reader for the given file. The Reader takes over
// responsibility for the file handle only when created via Open.
func NewReader(file *os.File) (*Reader, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	r := &Reader{
		file:     file,
		fileSize: info.Size(),
	}

	version, err := r.parseHeader()
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	r.version = version

	if err := r.loadXRef(); err != nil {
		return nil, fmt.Errorf("failed to load xref: %w", err)
	}

	return r, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Version returns the PDF version from the header.
func (r *Reader) Version() PDFVersion {
	return r.version
}

// Trailer returns the trailer dictionary of the newest revision.
func (r *Reader) Trailer() core.Dict {
	return r.trailer
}

// XRefTable returns the cross-reference table, merged across incremental
// updates when the document has any.
func (r *Reader) XRefTable() *core.XRefTable {
	return r.xref
}

// NumObjects returns the declared object count from the trailer /Size,
// or 0 when absent.
func (r *Reader) NumObjects() int {
	size, ok := r.trailer.GetInt("Size")
	if !ok {
		return 0
	}
	return int(size)
}

// FileSize returns the size of the file in bytes.
func (r *Reader) FileSize() int64 {
	return r.fileSize
}

// parseHeader parses the "%PDF-x.y" file header.
func (r *Reader) parseHeader() (PDFVersion, error) {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return PDFVersion{}, fmt.Errorf("failed to seek to start: %w", err)
	}

	header := make([]byte, 16)
	n, err := r.file.Read(header)
	if err != nil && err != io.EOF {
		return PDFVersion{}, fmt.Errorf("failed to read header: %w", err)
	}
	header = header[:n]

	headerStr := string(header)
	if !strings.HasPrefix(headerStr, "%PDF-") {
		return PDFVersion{}, fmt.Errorf("invalid PDF header: %q", headerStr)
	}

	versionStr := headerStr[len("%PDF-"):]
	majorStr, rest, found := strings.Cut(versionStr, ".")
	if !found {
		return PDFVersion{}, fmt.Errorf("invalid version format: %q", versionStr)
	}
	minorStr := rest
	if i := strings.IndexFunc(rest, func(c rune) bool { return c < '0' || c > '9' }); i >= 0 {
		minorStr = rest[:i]
	}

	major, err := strconv.Atoi(majorStr)
	if err != nil {
		return PDFVersion{}, fmt.Errorf("invalid major version %q: %w", majorStr, err)
	}
	minor, err := strconv.Atoi(minorStr)
	if err != nil {
		return PDFVersion{}, fmt.Errorf("invalid minor version %q: %w", minorStr, err)
	}

	return PDFVersion{Major: major, Minor: minor}, nil
}

// findStartXRef finds the byte offset of the last cross-reference section
// by scanning the file tail for "startxref\n<offset>\n%%EOF".
func (r *Reader) findStartXRef() (int64, error) {
	readSize := int64(tailReadSize)
	if r.fileSize < readSize {
		readSize = r.fileSize
	}

	if _, err := r.file.Seek(r.fileSize-readSize, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek to startxref area: %w", err)
	}

	buf := make([]byte, readSize)
	n, err := r.file.Read(buf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("failed to read startxref area: %w", err)
	}
	content := string(buf[:n])

	idx := strings.LastIndex(content, startXRefKeyword)
	if idx == -1 {
		return 0, fmt.Errorf("%s not found", startXRefKeyword)
	}

	after := content[idx+len(startXRefKeyword):]
	lines := strings.Split(after, "\n")
	if len(lines) < 2 {
		return 0, fmt.Errorf("invalid %s format", startXRefKeyword)
	}

	offset, err := strconv.ParseInt(strings.TrimSpace(lines[1]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid xref offset: %w", err)
	}
	return offset, nil
}

// loadXRef walks the cross-reference chain starting at the startxref
// pointer, following trailer /Prev entries through older revisions, and
// merges the tables with newest entries winning.
func (r *Reader) loadXRef() error {
	offset, err := r.findStartXRef()
	if err != nil {
		return err
	}

	log := logging.Logger()

	// Newest first as we walk /Prev; reversed before merging.
	var tables []*core.XRefTable
	var newestTrailer core.Dict
	seen := make(map[int64]bool)

	for {
		if seen[offset] {
			return fmt.Errorf("xref /Prev chain loops back to offset %d", offset)
		}
		seen[offset] = true

		table, trailer, err := r.loadXRefAt(offset)
		if err != nil {
			return err
		}
		log.Debug("parsed xref table",
			"offset", offset,
			"subsections", len(table.Subsections),
			"entries", table.Size())

		tables = append(tables, table)
		if newestTrailer == nil {
			newestTrailer = trailer
		}

		prev, ok := trailer.GetInt("Prev")
		if !ok {
			break
		}
		offset = int64(prev)
	}

	// Oldest first for merging.
	for i, j := 0, len(tables)-1; i < j; i, j = i+1, j-1 {
		tables[i], tables[j] = tables[j], tables[i]
	}

	r.xref = core.MergeXRefTables(tables...)
	r.trailer = newestTrailer
	return nil
}

// loadXRefAt recognizes the classic cross-reference table at the given
// byte offset and parses the trailer dictionary that follows it.
//
// The classic recognizer is one link in a chain of alternatives: when it
// declines and the same bytes open with an indirect-object header instead,
// the section is a cross-reference stream, which this reader reports as
// unsupported rather than misparsing.
func (r *Reader) loadXRefAt(offset int64) (*core.XRefTable, core.Dict, error) {
	if offset < 0 || offset >= r.fileSize {
		return nil, nil, fmt.Errorf("xref offset %d outside file of %d bytes", offset, r.fileSize)
	}

	section := io.NewSectionReader(r.file, offset, r.fileSize-offset)
	buf, err := io.ReadAll(section)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read xref section at %d: %w", offset, err)
	}

	table, remainder, ok := core.ScanXRefTable(buf, nil)
	if !ok {
		if looksLikeXRefStream(buf) {
			return nil, nil, fmt.Errorf("cross-reference streams are not supported (offset %d)", offset)
		}
		return nil, nil, fmt.Errorf("no cross-reference table at offset %d", offset)
	}

	trailer, err := parseTrailer(remainder)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse trailer: %w", err)
	}

	return table, trailer, nil
}

// looksLikeXRefStream reports whether the section opens with an
// indirect-object header ("N G obj"), the shape a PDF 1.5+ cross-reference
// stream has where a classic table would have the "xref" keyword.
func looksLikeXRefStream(buf []byte) bool {
	trimmed := core.TrimBytes(buf)
	return len(trimmed) > 0 && trimmed[0] >= '0' && trimmed[0] <= '9'
}

// parseTrailer parses the "trailer" keyword and its dictionary from the
// bytes following a cross-reference table.
func parseTrailer(remainder []byte) (core.Dict, error) {
	trimmed := core.TrimBytes(remainder)
	if !bytes.HasPrefix(trimmed, []byte("trailer")) {
		return nil, fmt.Errorf("expected trailer keyword after xref table")
	}

	parser := core.NewParser(trimmed[len("trailer"):])
	obj, err := parser.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse trailer dictionary: %w", err)
	}

	dict, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("trailer is not a dictionary, got %T", obj)
	}
	return dict, nil
}
