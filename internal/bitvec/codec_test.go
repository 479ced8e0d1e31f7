package bitvec

import (
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestMatrixMsgpackRoundTrip(t *testing.T) {
	m := NewMatrix(67) // два слова на строку, последнее частичное
	m.Insert(0, 66)
	m.Insert(66, 0)
	m.Insert(13, 13)
	m.InsertAll(5)

	blob, err := msgpack.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Matrix
	if err := msgpack.Unmarshal(blob, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Size() != m.Size() {
		t.Fatalf("Size = %d, want %d", back.Size(), m.Size())
	}
	for a := 0; a < m.Size(); a++ {
		for b := 0; b < m.Size(); b++ {
			if m.Contains(a, b) != back.Contains(a, b) {
				t.Fatalf("bit (%d,%d) flipped in round trip", a, b)
			}
		}
	}
}

func TestMatrixMsgpackNilPointerField(t *testing.T) {
	type holder struct {
		Name      string
		Conflicts *Matrix
	}
	blob, err := msgpack.Marshal(&holder{Name: "plain"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back holder
	if err := msgpack.Unmarshal(blob, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Conflicts != nil {
		t.Fatalf("nil matrix came back non-nil")
	}

	filled := holder{Name: "coro", Conflicts: NewMatrix(3)}
	filled.Conflicts.Insert(1, 2)
	blob, err = msgpack.Marshal(&filled)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back = holder{}
	if err := msgpack.Unmarshal(blob, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Conflicts == nil || !back.Conflicts.Contains(1, 2) || back.Conflicts.Contains(2, 1) {
		t.Fatalf("matrix field did not survive the struct round trip: %+v", back.Conflicts)
	}
}

func TestMatrixMsgpackRejectsTruncated(t *testing.T) {
	m := NewMatrix(5)
	m.Insert(4, 4)
	blob, err := msgpack.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Matrix
	if err := msgpack.Unmarshal(blob[:len(blob)-1], &back); err == nil {
		t.Fatalf("truncated payload decoded without error")
	}
}
