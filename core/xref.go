package core

import (
	"fmt"
)

// XRefEntry is a single object-location record in a cross-reference table.
//
// For in-use entries (flag 'n') Offset is the byte offset of the object in
// the file. For free entries (flag 'f') Offset is the object number of the
// next free object. Entries are value objects; they are never mutated after
// construction.
type XRefEntry struct {
	Offset     int64 // Byte offset (in-use) or next free object number (free)
	Generation int   // Generation number, 0-99999
	InUse      bool  // true for 'n' entries, false for 'f' entries
}

// NewXRefEntry creates a cross-reference entry from its three decoded fields.
func NewXRefEntry(offset int64, generation int, inUse bool) XRefEntry {
	return XRefEntry{
		Offset:     offset,
		Generation: generation,
		InUse:      inUse,
	}
}

// String renders the entry in the canonical fixed-width form used on disk.
func (e XRefEntry) String() string {
	flag := "f"
	if e.InUse {
		flag = "n"
	}
	return fmt.Sprintf("%010d %05d %s", e.Offset, e.Generation, flag)
}

// XRefSubsection is a contiguous run of object numbers sharing one
// subsection header. Entries[i] describes object FirstObjectNumber+i.
//
// DeclaredCount is the entry count stated in the header. It is carried for
// display and diagnostics only and is never checked against len(Entries);
// real-world writers get it wrong and readers traditionally tolerate that.
type XRefSubsection struct {
	FirstObjectNumber int64
	DeclaredCount     int64
	Entries           []XRefEntry
}

// NewXRefSubsection creates a subsection from its header fields and the
// entries decoded for it, in encounter order.
func NewXRefSubsection(firstObjectNumber, declaredCount int64, entries []XRefEntry) XRefSubsection {
	return XRefSubsection{
		FirstObjectNumber: firstObjectNumber,
		DeclaredCount:     declaredCount,
		Entries:           entries,
	}
}

// XRefTable is the cross-reference table of one document revision:
// an ordered sequence of subsections in encounter order. It is assembled
// once, atomically, and never mutated afterwards.
type XRefTable struct {
	Subsections []XRefSubsection
}

// NewXRefTable assembles a table from its subsections.
func NewXRefTable(subsections []XRefSubsection) *XRefTable {
	return &XRefTable{Subsections: subsections}
}

// Get retrieves the entry for an object number.
//
// Subsections are searched newest-last: when tables from incremental
// updates have been merged, the most recent revision's entry wins.
func (t *XRefTable) Get(objNum int64) (XRefEntry, bool) {
	for i := len(t.Subsections) - 1; i >= 0; i-- {
		sub := t.Subsections[i]
		idx := objNum - sub.FirstObjectNumber
		if idx >= 0 && idx < int64(len(sub.Entries)) {
			return sub.Entries[idx], true
		}
	}
	return XRefEntry{}, false
}

// Size returns the total number of entries across all subsections.
func (t *XRefTable) Size() int {
	n := 0
	for _, sub := range t.Subsections {
		n += len(sub.Entries)
	}
	return n
}

// String returns a short description of the table.
func (t *XRefTable) String() string {
	return fmt.Sprintf("XRefTable{subsections: %d, entries: %d}", len(t.Subsections), t.Size())
}

// MergeXRefTables merges tables from incremental updates, given oldest
// first. The merged table keeps every subsection in order, so lookups via
// Get resolve to the newest revision's entry for each object number.
func MergeXRefTables(tables ...*XRefTable) *XRefTable {
	var subsections []XRefSubsection
	for _, table := range tables {
		subsections = append(subsections, table.Subsections...)
	}
	return NewXRefTable(subsections)
}

// XRefObserver is an optional callback invoked synchronously, exactly once,
// with a completed table when recognition succeeds. A nil observer means
// no notification.
type XRefObserver func(*XRefTable)
