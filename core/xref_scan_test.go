package core

import (
	"strings"
	"testing"
)

// TestParseXRefEntries tests the entry-level recognizer
func TestParseXRefEntries(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   []XRefEntry
		wantOK bool
	}{
		{
			"empty span",
			"",
			[]XRefEntry{},
			true,
		},
		{
			"whitespace only",
			" \r\n ",
			[]XRefEntry{},
			true,
		},
		{
			"single in-use entry",
			"0000000017 00000 n",
			[]XRefEntry{{Offset: 17, Generation: 0, InUse: true}},
			true,
		},
		{
			"single free entry",
			"0000000000 65535 f",
			[]XRefEntry{{Offset: 0, Generation: 65535, InUse: false}},
			true,
		},
		{
			"three entries with mixed separators",
			"0000000000 65535 f \r\n0000000017 00000 n \n0000000081 00003 n ",
			[]XRefEntry{
				{Offset: 0, Generation: 65535, InUse: false},
				{Offset: 17, Generation: 0, InUse: true},
				{Offset: 81, Generation: 3, InUse: true},
			},
			true,
		},
		{
			"maximum offset",
			"9999999999 99999 n",
			[]XRefEntry{{Offset: 9999999999, Generation: 99999, InUse: true}},
			true,
		},
		{
			"nine-digit offset",
			"000000017 00000 n",
			nil,
			false,
		},
		{
			"eleven-digit offset",
			"00000000017 00000 n",
			nil,
			false,
		},
		{
			"four-digit generation",
			"0000000017 0000 n",
			nil,
			false,
		},
		{
			"bad flag",
			"0000000017 00000 x",
			nil,
			false,
		},
		{
			"malformed entry in the middle discards everything",
			"0000000017 00000 n \n123 00000 n \n0000000081 00000 n",
			nil,
			false,
		},
		{
			"trailing garbage after valid entries",
			"0000000017 00000 n \nrubbish",
			nil,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, ok := parseXRefEntries(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("wantOK=%v, got %v", tt.wantOK, ok)
			}
			if !tt.wantOK {
				if entries != nil {
					t.Fatalf("expected no entries on failure, got %v", entries)
				}
				return
			}
			if len(entries) != len(tt.want) {
				t.Fatalf("expected %d entries, got %d", len(tt.want), len(entries))
			}
			for i, want := range tt.want {
				if entries[i] != want {
					t.Errorf("entry %d: expected %+v, got %+v", i, want, entries[i])
				}
			}
		})
	}
}

// TestParseXRefSubsections tests the subsection-level recognizer
func TestParseXRefSubsections(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantFirsts []int64
		wantCounts []int // actual entry counts per subsection
		wantOK     bool
	}{
		{
			"single subsection",
			"0 1\n0000000000 65535 f \n",
			[]int64{0},
			[]int{1},
			true,
		},
		{
			"two subsections",
			"0 1\n0000000000 65535 f \n5 2\n0000000020 00000 n \n0000000045 00000 n \n",
			[]int64{0, 5},
			[]int{1, 2},
			true,
		},
		{
			"declared count larger than actual entries is tolerated",
			"0 99\n0000000000 65535 f \n",
			[]int64{0},
			[]int{1},
			true,
		},
		{
			"declared count smaller than actual entries is tolerated",
			"0 1\n0000000000 65535 f \n0000000017 00000 n \n",
			[]int64{0},
			[]int{2},
			true,
		},
		{
			"zero-entry subsection",
			"7 0\n",
			[]int64{7},
			[]int{0},
			true,
		},
		{
			"empty span",
			"",
			nil,
			nil,
			false,
		},
		{
			"header with two spaces",
			"0  1\n0000000000 65535 f \n",
			nil,
			nil,
			false,
		},
		{
			"header missing count",
			"0\n0000000000 65535 f \n",
			nil,
			nil,
			false,
		},
		{
			"first object number overflows int64",
			"99999999999999999999 1\n0000000000 65535 f \n",
			nil,
			nil,
			false,
		},
		{
			"short entry fails the whole span",
			"0 1\n123 65535 f\n",
			nil,
			nil,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs, ok := parseXRefSubsections(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("wantOK=%v, got %v (subs=%v)", tt.wantOK, ok, subs)
			}
			if !tt.wantOK {
				return
			}
			if len(subs) != len(tt.wantFirsts) {
				t.Fatalf("expected %d subsections, got %d", len(tt.wantFirsts), len(subs))
			}
			for i := range subs {
				if subs[i].FirstObjectNumber != tt.wantFirsts[i] {
					t.Errorf("subsection %d: expected first %d, got %d",
						i, tt.wantFirsts[i], subs[i].FirstObjectNumber)
				}
				if len(subs[i].Entries) != tt.wantCounts[i] {
					t.Errorf("subsection %d: expected %d entries, got %d",
						i, tt.wantCounts[i], len(subs[i].Entries))
				}
			}
		})
	}
}

// TestScanXRefTable tests the top-level table recognizer
func TestScanXRefTable(t *testing.T) {
	t.Run("single subsection single free entry", func(t *testing.T) {
		table, remainder, ok := ScanXRefTable([]byte("xref\n0 1\n0000000000 65535 f \n"), nil)
		if !ok {
			t.Fatal("expected success")
		}
		if len(remainder) != 0 {
			t.Errorf("expected empty remainder, got %q", remainder)
		}
		if len(table.Subsections) != 1 {
			t.Fatalf("expected 1 subsection, got %d", len(table.Subsections))
		}
		sub := table.Subsections[0]
		if sub.FirstObjectNumber != 0 {
			t.Errorf("expected first object number 0, got %d", sub.FirstObjectNumber)
		}
		if len(sub.Entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(sub.Entries))
		}
		entry := sub.Entries[0]
		if entry.Offset != 0 || entry.Generation != 65535 || entry.InUse {
			t.Errorf("unexpected entry %+v", entry)
		}
	})

	t.Run("short offset fails with nothing consumed", func(t *testing.T) {
		table, remainder, ok := ScanXRefTable([]byte("xref\n0 1\n123 65535 f\n"), nil)
		if ok {
			t.Fatal("expected failure")
		}
		if table != nil || remainder != nil {
			t.Errorf("expected nil results on failure, got table=%v remainder=%q", table, remainder)
		}
	})

	t.Run("two concatenated subsections", func(t *testing.T) {
		input := "xref\n0 1\n0000000000 65535 f \n5 1\n0000000020 00000 n \n"
		table, _, ok := ScanXRefTable([]byte(input), nil)
		if !ok {
			t.Fatal("expected success")
		}
		if len(table.Subsections) != 2 {
			t.Fatalf("expected 2 subsections, got %d", len(table.Subsections))
		}
		if table.Subsections[0].FirstObjectNumber != 0 {
			t.Errorf("expected first subsection at 0, got %d", table.Subsections[0].FirstObjectNumber)
		}
		if table.Subsections[1].FirstObjectNumber != 5 {
			t.Errorf("expected second subsection at 5, got %d", table.Subsections[1].FirstObjectNumber)
		}
	})

	t.Run("missing keyword", func(t *testing.T) {
		if _, _, ok := ScanXRefTable([]byte("trailer\n<< /Size 1 >>"), nil); ok {
			t.Error("expected failure without the keyword")
		}
	})

	t.Run("keyword alone is not a table", func(t *testing.T) {
		if _, _, ok := ScanXRefTable([]byte("xref\n"), nil); ok {
			t.Error("expected failure for keyword without subsections")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if _, _, ok := ScanXRefTable(nil, nil); ok {
			t.Error("expected failure for empty input")
		}
	})

	t.Run("remainder excludes exactly the matched span", func(t *testing.T) {
		suffix := "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n0\n%%EOF"
		input := "\r\n xref\n0 2\n0000000000 65535 f \n0000000017 00000 n \n" + suffix
		table, remainder, ok := ScanXRefTable([]byte(input), nil)
		if !ok {
			t.Fatal("expected success")
		}
		if table.Size() != 2 {
			t.Errorf("expected 2 entries, got %d", table.Size())
		}
		if !strings.HasPrefix(string(remainder), "trailer") {
			t.Errorf("expected remainder to start at the trailer, got %q", remainder)
		}
		if !strings.HasSuffix(string(remainder), "%%EOF") {
			t.Errorf("expected bytes after the table to be untouched, got %q", remainder)
		}
	})

	t.Run("garbage inside the candidate span fails everything", func(t *testing.T) {
		// The second "xref" keyword sits inside the alphabet span but
		// cannot parse as a subsection header.
		input := "xref\n0 1\n0000000000 65535 f \nxref\n0 1\n0000000000 65535 f \n"
		if _, _, ok := ScanXRefTable([]byte(input), nil); ok {
			t.Error("expected failure")
		}
	})
}

// TestScanXRefTableObserver tests the completion callback
func TestScanXRefTableObserver(t *testing.T) {
	t.Run("invoked exactly once on success", func(t *testing.T) {
		var got []*XRefTable
		observer := func(table *XRefTable) { got = append(got, table) }

		table, _, ok := ScanXRefTable([]byte("xref\n0 1\n0000000000 65535 f \n"), observer)
		if !ok {
			t.Fatal("expected success")
		}
		if len(got) != 1 {
			t.Fatalf("expected observer to run once, ran %d times", len(got))
		}
		if got[0] != table {
			t.Error("observer received a different table than the caller")
		}
	})

	t.Run("never invoked on failure", func(t *testing.T) {
		calls := 0
		observer := func(*XRefTable) { calls++ }

		if _, _, ok := ScanXRefTable([]byte("not a table"), observer); ok {
			t.Fatal("expected failure")
		}
		if calls != 0 {
			t.Errorf("observer ran %d times on failure", calls)
		}
	})
}

// BenchmarkScanXRefTable benchmarks table recognition
func BenchmarkScanXRefTable(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("xref\n0 1000\n")
	for i := 0; i < 1000; i++ {
		sb.WriteString("0000001234 00000 n \n")
	}
	input := []byte(sb.String())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, ok := ScanXRefTable(input, nil); !ok {
			b.Fatal("scan failed")
		}
	}
}
