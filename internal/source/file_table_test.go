package source

import "testing"

func TestFileTableAddDedup(t *testing.T) {
	tbl := NewFileTable()
	a := tbl.Add("src/gen.sg")
	b := tbl.Add("./src/gen.sg")
	if a != b {
		t.Fatalf("equal normalized paths got distinct ids: %d vs %d", a, b)
	}
	if a == NoFileID {
		t.Fatalf("Add returned the reserved id")
	}
	if got := tbl.Path(a); got != "src/gen.sg" {
		t.Errorf("Path(%d) = %q, want %q", a, got, "src/gen.sg")
	}
}

func TestFileTableExportImport(t *testing.T) {
	tbl := NewFileTable()
	tbl.Add("a.sg")
	tbl.Add("lib/b.sg")

	paths := tbl.Export()
	back, err := Import(paths)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if back.Len() != tbl.Len() {
		t.Fatalf("round trip changed len: %d -> %d", tbl.Len(), back.Len())
	}
	id, ok := back.Lookup("lib/b.sg")
	if !ok {
		t.Fatalf("lib/b.sg lost in round trip")
	}
	if got := back.Path(id); got != "lib/b.sg" {
		t.Errorf("Path = %q, want lib/b.sg", got)
	}
}

func TestImportRejectsMissingReservedSlot(t *testing.T) {
	if _, err := Import([]string{"a.sg"}); err == nil {
		t.Fatalf("Import accepted a table without the reserved slot")
	}
	if _, err := Import(nil); err == nil {
		t.Fatalf("Import accepted an empty table")
	}
}

func TestSpanCoverAndString(t *testing.T) {
	s := Span{File: 1, Start: 10, End: 14}
	s = s.Cover(Span{File: 1, Start: 4, End: 12})
	if s.Start != 4 || s.End != 14 {
		t.Fatalf("Cover = %v", s)
	}
	// другой файл игнорируется
	s2 := s.Cover(Span{File: 2, Start: 0, End: 100})
	if s2 != s {
		t.Errorf("Cover across files changed span: %v", s2)
	}
	if NoSpan.Valid() {
		t.Errorf("NoSpan must not be valid")
	}
	if got := NoSpan.String(); got != "<synthesized>" {
		t.Errorf("NoSpan.String() = %q", got)
	}
}
