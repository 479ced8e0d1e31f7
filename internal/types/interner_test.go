package types

import "testing"

func TestInternDedupsStructuralKinds(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	r1 := in.Intern(MakeRef(b.I32, true))
	r2 := in.Intern(MakeRef(b.I32, true))
	if r1 != r2 {
		t.Fatalf("&mut i32 interned twice: %d vs %d", r1, r2)
	}
	r3 := in.Intern(MakeRef(b.I32, false))
	if r3 == r1 {
		t.Fatalf("&i32 and &mut i32 collapsed to one id")
	}
	cs1 := in.CoroStateOf(b.I32, b.Unit)
	cs2 := in.CoroStateOf(b.I32, b.Unit)
	if cs1 != cs2 {
		t.Fatalf("carrier interned twice: %d vs %d", cs1, cs2)
	}
	y, r, ok := in.CoroStatePayloads(cs1)
	if !ok || y != b.I32 || r != b.Unit {
		t.Fatalf("CoroStatePayloads = (%d, %d, %v)", y, r, ok)
	}
}

func TestNominalKindsGetFreshIDs(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	info := AdtInfo{Name: "Pair", Variants: []VariantInfo{{Name: "Pair", Fields: []TypeID{b.I32, b.I32}}}}
	a1 := in.RegisterAdt(info)
	a2 := in.RegisterAdt(info)
	if a1 == a2 {
		t.Fatalf("two registrations of the same shape shared an id")
	}
	got, ok := in.AdtInfo(a1)
	if !ok || got.Name != "Pair" || len(got.Variants) != 1 {
		t.Fatalf("AdtInfo = %+v, %v", got, ok)
	}

	c1 := in.RegisterCoroutine(CoroInfo{Name: "gen", Upvars: []TypeID{b.I32}, Movable: true})
	c2 := in.RegisterCoroutine(CoroInfo{Name: "gen", Upvars: []TypeID{b.I32}, Movable: true})
	if c1 == c2 {
		t.Fatalf("two coroutine registrations shared an id")
	}
	if !in.IsCoroutine(c1) || in.IsCoroutine(b.I32) {
		t.Fatalf("IsCoroutine misclassified")
	}
}

func TestNeedsDrop(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	droppy := in.RegisterAdt(AdtInfo{Name: "Guard", HasDtor: true, Variants: []VariantInfo{{Name: "Guard"}}})
	plain := in.RegisterAdt(AdtInfo{Name: "Point", Variants: []VariantInfo{{Name: "Point", Fields: []TypeID{b.I32, b.I32}}}})
	nested := in.RegisterAdt(AdtInfo{Name: "Holder", Variants: []VariantInfo{{Name: "Holder", Fields: []TypeID{droppy}}}})

	cases := []struct {
		name string
		id   TypeID
		want bool
	}{
		{"i32", b.I32, false},
		{"unit", b.Unit, false},
		{"guard with dtor", droppy, true},
		{"plain struct", plain, false},
		{"nested droppy field", nested, true},
		{"ref to droppy", in.Intern(MakeRef(droppy, true)), false},
		{"raw ptr to droppy", in.Intern(MakeRawPtr(droppy, true)), false},
		{"tuple with droppy", in.RegisterTuple([]TypeID{b.I32, droppy}), true},
		{"array of droppy", in.Intern(MakeArray(droppy, 4)), true},
		{"carrier of droppy yield", in.CoroStateOf(droppy, b.Unit), true},
		{"carrier of plain", in.CoroStateOf(b.I32, b.Unit), false},
	}
	for _, tc := range cases {
		if got := in.NeedsDrop(tc.id); got != tc.want {
			t.Errorf("%s: NeedsDrop = %v, want %v", tc.name, got, tc.want)
		}
	}

	coro := in.RegisterCoroutine(CoroInfo{Name: "g", Upvars: []TypeID{droppy}})
	if !in.NeedsDrop(coro) {
		t.Errorf("coroutine with droppy upvar: NeedsDrop = false")
	}
	coroClean := in.RegisterCoroutine(CoroInfo{Name: "h", Upvars: []TypeID{b.I32}})
	if in.NeedsDrop(coroClean) {
		t.Errorf("coroutine with plain upvars: NeedsDrop = true")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	adt := in.RegisterAdt(AdtInfo{Name: "Res", Variants: []VariantInfo{
		{Name: "Ok", Fields: []TypeID{b.I32}},
		{Name: "Err", Fields: []TypeID{b.Str}},
	}})
	coro := in.RegisterCoroutine(CoroInfo{Name: "gen", Upvars: []TypeID{adt}, Witness: []TypeID{b.I32}, Movable: true})
	tup := in.RegisterTuple([]TypeID{adt, coro})

	back, err := Restore(in.Export())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if back.Len() != in.Len() {
		t.Fatalf("round trip changed table size: %d -> %d", in.Len(), back.Len())
	}
	if back.Format(adt) != "Res" {
		t.Errorf("adt lost its name: %q", back.Format(adt))
	}
	info, ok := back.CoroInfo(coro)
	if !ok || !info.Movable || len(info.Witness) != 1 {
		t.Errorf("coroutine info after round trip: %+v, %v", info, ok)
	}
	ti, ok := back.TupleInfo(tup)
	if !ok || len(ti.Elems) != 2 || ti.Elems[0] != adt {
		t.Errorf("tuple info after round trip: %+v, %v", ti, ok)
	}
	// дедуп-индекс восстановлен: повторный Intern известного типа не растит таблицу
	before := back.Len()
	if got := back.Intern(MakeInt(Width32)); got != b.I32 || back.Len() != before {
		t.Errorf("restored index lost i32: id=%d len %d -> %d", got, before, back.Len())
	}
}

func TestRestoreRejectsBrokenSnapshots(t *testing.T) {
	if _, err := Restore(Snapshot{}); err == nil {
		t.Fatalf("Restore accepted an empty snapshot")
	}
	in := NewInterner()
	snap := in.Export()
	snap.Types = append(snap.Types, Type{Kind: KindAdt, Payload: 99})
	if _, err := Restore(snap); err == nil {
		t.Fatalf("Restore accepted an out-of-range adt payload")
	}
}

func TestFormat(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	cases := []struct {
		id   TypeID
		want string
	}{
		{b.I32, "i32"},
		{b.USize, "usize"},
		{in.Intern(MakeRef(b.Str, true)), "&mut str"},
		{in.Intern(MakeRawPtr(b.Unit, true)), "*mut unit"},
		{in.Intern(MakePin(in.Intern(MakeRef(b.Bool, true)))), "pin<&mut bool>"},
		{in.RegisterTuple([]TypeID{b.I32, b.Bool}), "(i32, bool)"},
		{in.Intern(MakeArray(b.F64, 3)), "[f64; 3]"},
		{in.CoroStateOf(b.I32, b.Unit), "corostate<i32, unit>"},
	}
	for _, tc := range cases {
		if got := in.Format(tc.id); got != tc.want {
			t.Errorf("Format(%d) = %q, want %q", tc.id, got, tc.want)
		}
	}
}
