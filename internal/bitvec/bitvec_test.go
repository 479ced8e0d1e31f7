package bitvec

import "testing"

func TestSetBasics(t *testing.T) {
	s := New(130) // три слова, последний частичный
	if !s.Empty() {
		t.Fatalf("new set is not empty")
	}
	if !s.Insert(0) || !s.Insert(64) || !s.Insert(129) {
		t.Fatalf("Insert on fresh bits returned false")
	}
	if s.Insert(64) {
		t.Errorf("second Insert(64) reported a change")
	}
	if s.Count() != 3 {
		t.Errorf("Count = %d, want 3", s.Count())
	}
	for _, i := range []int{0, 64, 129} {
		if !s.Contains(i) {
			t.Errorf("Contains(%d) = false", i)
		}
	}
	if s.Contains(1) {
		t.Errorf("Contains(1) = true")
	}
	if !s.Remove(64) || s.Remove(64) {
		t.Errorf("Remove(64) change reporting broken")
	}
	if got := s.String(); got != "{0 129}" {
		t.Errorf("String = %q", got)
	}
}

func TestSetUnionIntersectSubtract(t *testing.T) {
	a := New(70)
	b := New(70)
	a.Insert(3)
	a.Insert(69)
	b.Insert(3)
	b.Insert(10)

	u := a.Clone()
	if !u.UnionWith(b) {
		t.Fatalf("UnionWith reported no change")
	}
	if u.Count() != 3 || !u.Contains(10) {
		t.Errorf("union = %v", u)
	}
	if u.UnionWith(b) {
		t.Errorf("repeated UnionWith reported a change")
	}

	i := a.Clone()
	i.IntersectWith(b)
	if i.Count() != 1 || !i.Contains(3) {
		t.Errorf("intersection = %v", i)
	}

	d := a.Clone()
	d.SubtractWith(b)
	if d.Count() != 1 || !d.Contains(69) {
		t.Errorf("difference = %v", d)
	}
}

func TestSetForEachOrder(t *testing.T) {
	s := New(200)
	want := []int{1, 63, 64, 127, 128, 199}
	for _, i := range want {
		s.Insert(i)
	}
	var got []int
	s.ForEach(func(i int) { got = append(got, i) })
	if len(got) != len(want) {
		t.Fatalf("ForEach visited %d bits, want %d", len(got), len(want))
	}
	for k := range want {
		if got[k] != want[k] {
			t.Errorf("ForEach[%d] = %d, want %d", k, got[k], want[k])
		}
	}
}

func TestSetWidthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("UnionWith across widths did not panic")
		}
	}()
	New(10).UnionWith(New(11))
}

func TestMatrix(t *testing.T) {
	m := NewMatrix(5)
	if !m.Insert(1, 3) || m.Insert(1, 3) {
		t.Fatalf("Insert change reporting broken")
	}
	if !m.Contains(1, 3) || m.Contains(3, 1) {
		t.Errorf("matrix must not symmetrize on its own")
	}

	src := New(5)
	src.Insert(0)
	src.Insert(4)
	if !m.UnionRowWith(src, 2) {
		t.Fatalf("UnionRowWith reported no change")
	}
	if !m.Contains(2, 0) || !m.Contains(2, 4) {
		t.Errorf("row 2 after union: %v", m.Row(2))
	}

	m.InsertAll(1)
	for b := 0; b < 5; b++ {
		if !m.Contains(1, b) {
			t.Errorf("InsertAll missed column %d of row 1", b)
		}
	}
}
