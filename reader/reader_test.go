package reader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zapkub/pdf-lib/logging"
)

// writeTempPDF writes content to a temp file and returns its path
func writeTempPDF(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pdf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

// singleRevisionPDF builds a minimal document with one xref section
func singleRevisionPDF() string {
	head := "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"
	xref := "xref\n" +
		"0 2\n" +
		"0000000000 65535 f \n" +
		"0000000009 00000 n \n" +
		"trailer\n<< /Size 2 /Root 1 0 R >>\n"
	return head + xref + fmt.Sprintf("startxref\n%d\n%%%%EOF\n", len(head))
}

// TestReaderSingleRevision tests the happy path end to end
func TestReaderSingleRevision(t *testing.T) {
	r, err := Open(writeTempPDF(t, singleRevisionPDF()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	if got := r.Version().String(); got != "1.4" {
		t.Errorf("expected version 1.4, got %s", got)
	}
	if r.NumObjects() != 2 {
		t.Errorf("expected 2 declared objects, got %d", r.NumObjects())
	}

	table := r.XRefTable()
	if table.Size() != 2 {
		t.Fatalf("expected 2 entries, got %d", table.Size())
	}
	entry, found := table.Get(1)
	if !found {
		t.Fatal("expected entry for object 1")
	}
	if entry.Offset != 9 || !entry.InUse {
		t.Errorf("unexpected entry for object 1: %+v", entry)
	}

	root, ok := r.Trailer().GetIndirectRef("Root")
	if !ok || root.Number != 1 {
		t.Errorf("expected Root=1 0 R, got %v", r.Trailer().Get("Root"))
	}
}

// TestReaderIncrementalUpdate tests the /Prev chain and table merging
func TestReaderIncrementalUpdate(t *testing.T) {
	head := "%PDF-1.5\noriginal body\n"
	xref1 := "xref\n" +
		"0 2\n" +
		"0000000000 65535 f \n" +
		"0000000009 00000 n \n" +
		"trailer\n<< /Size 2 /Root 1 0 R >>\n"
	off1 := len(head)

	update := "updated body\n"
	xref2 := "xref\n" +
		"1 1\n" +
		"0000000099 00001 n \n" +
		fmt.Sprintf("trailer\n<< /Size 2 /Root 1 0 R /Prev %d >>\n", off1)
	off2 := len(head) + len(xref1) + len(update)

	content := head + xref1 + update + xref2 +
		fmt.Sprintf("startxref\n%d\n%%%%EOF\n", off2)

	r, err := Open(writeTempPDF(t, content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	// Object 1 resolves to the newer revision.
	entry, found := r.XRefTable().Get(1)
	if !found {
		t.Fatal("expected entry for object 1")
	}
	if entry.Offset != 99 || entry.Generation != 1 {
		t.Errorf("expected newest revision of object 1, got %+v", entry)
	}

	// Object 0 survives from the older revision.
	entry, found = r.XRefTable().Get(0)
	if !found {
		t.Fatal("expected entry for object 0")
	}
	if entry.InUse {
		t.Error("expected object 0 to be free")
	}

	// The trailer is the newest revision's.
	if !r.Trailer().Has("Prev") {
		t.Error("expected newest trailer with /Prev")
	}
}

// TestReaderXRefStreamRejected tests detection of stream-format tables
func TestReaderXRefStreamRejected(t *testing.T) {
	head := "%PDF-1.5\nbody\n"
	obj := "5 0 obj\n<< /Type /XRef /Size 6 >>\nstream\n...\nendstream\nendobj\n"
	content := head + obj + fmt.Sprintf("startxref\n%d\n%%%%EOF\n", len(head))

	_, err := Open(writeTempPDF(t, content))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "cross-reference streams are not supported") {
		t.Errorf("expected xref stream rejection, got: %v", err)
	}
}

// TestReaderErrors tests malformed documents
func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{
			"not a PDF",
			"hello world\n",
			"invalid PDF header",
		},
		{
			"missing startxref",
			"%PDF-1.4\nbody\n%%EOF\n",
			"startxref not found",
		},
		{
			"startxref points at garbage",
			"%PDF-1.4\ngarbage here\nstartxref\n9\n%%EOF\n",
			"no cross-reference table",
		},
		{
			"startxref outside file",
			"%PDF-1.4\nbody\nstartxref\n99999\n%%EOF\n",
			"outside file",
		},
		{
			"table without trailer",
			"%PDF-1.4\nx\nxref\n0 1\n0000000000 65535 f \nstartxref\n11\n%%EOF\n",
			"trailer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(writeTempPDF(t, tt.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("expected error containing %q, got: %v", tt.wantSub, err)
			}
		})
	}
}

// TestReaderPrevLoop tests that a looping /Prev chain is rejected
func TestReaderPrevLoop(t *testing.T) {
	head := "%PDF-1.4\nbody\n"
	off := len(head)
	xref := "xref\n0 1\n0000000000 65535 f \n" +
		fmt.Sprintf("trailer\n<< /Size 1 /Prev %d >>\n", off)
	content := head + xref + fmt.Sprintf("startxref\n%d\n%%%%EOF\n", off)

	_, err := Open(writeTempPDF(t, content))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "loops") {
		t.Errorf("expected loop detection, got: %v", err)
	}
}

// TestReaderDebugLogging tests that parsing emits debug records
func TestReaderDebugLogging(t *testing.T) {
	handler := logging.NewBufferedLogHandler(&slog.HandlerOptions{Level: slog.LevelDebug})
	logging.SetLogger(slog.New(handler))
	defer logging.SetLogger(nil)

	r, err := Open(writeTempPDF(t, singleRevisionPDF()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	if !handler.Contains("parsed xref table") {
		t.Errorf("expected debug record, captured: %q", handler.String())
	}
}
