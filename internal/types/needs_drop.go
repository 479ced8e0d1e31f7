package types

// NeedsDrop reports whether values of the type run any destructor code.
// The layout builder skips storage slots for types that do not, and the
// drop elaborator uses it to prune ladder steps.
func (in *Interner) NeedsDrop(id TypeID) bool {
	return in.needsDrop(id, make(map[TypeID]bool))
}

func (in *Interner) needsDrop(id TypeID, visiting map[TypeID]bool) bool {
	if visiting[id] {
		// рекурсивный тип: цикл сам по себе дропа не добавляет
		return false
	}
	visiting[id] = true
	defer delete(visiting, id)

	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindRef, KindRawPtr:
		return false
	case KindPin:
		return in.needsDrop(tt.Elem, visiting)
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return false
		}
		for _, e := range info.Elems {
			if in.needsDrop(e, visiting) {
				return true
			}
		}
		return false
	case KindArray:
		return in.needsDrop(tt.Elem, visiting)
	case KindAdt:
		info, ok := in.AdtInfo(id)
		if !ok {
			return false
		}
		if info.HasDtor {
			return true
		}
		for _, v := range info.Variants {
			for _, f := range v.Fields {
				if in.needsDrop(f, visiting) {
					return true
				}
			}
		}
		return false
	case KindCoroutine:
		info, ok := in.CoroInfo(id)
		if !ok {
			return false
		}
		for _, u := range info.Upvars {
			if in.needsDrop(u, visiting) {
				return true
			}
		}
		for _, w := range info.Witness {
			if in.needsDrop(w, visiting) {
				return true
			}
		}
		return false
	case KindCoroState:
		y, r, _ := in.CoroStatePayloads(id)
		return in.needsDrop(y, visiting) || in.needsDrop(r, visiting)
	default:
		// unit, never, bool, числа, str
		return false
	}
}
