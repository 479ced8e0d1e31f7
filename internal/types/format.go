package types

import (
	"fmt"
	"strings"
)

// Format renders a human-readable name for dumps and diagnostics.
func (in *Interner) Format(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case KindUnit:
		return "unit"
	case KindNever:
		return "never"
	case KindBool:
		return "bool"
	case KindStr:
		return "str"
	case KindInt:
		if tt.Width == Width64 {
			return "i64"
		}
		return "i32"
	case KindUint:
		switch tt.Width {
		case WidthSize:
			return "usize"
		case Width64:
			return "u64"
		default:
			return "u32"
		}
	case KindFloat:
		return "f64"
	case KindRef:
		if tt.Mutable {
			return "&mut " + in.Format(tt.Elem)
		}
		return "&" + in.Format(tt.Elem)
	case KindRawPtr:
		if tt.Mutable {
			return "*mut " + in.Format(tt.Elem)
		}
		return "*const " + in.Format(tt.Elem)
	case KindPin:
		return "pin<" + in.Format(tt.Elem) + ">"
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return "<tuple?>"
		}
		parts := make([]string, len(info.Elems))
		for i, e := range info.Elems {
			parts[i] = in.Format(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindArray:
		return fmt.Sprintf("[%s; %d]", in.Format(tt.Elem), tt.Count)
	case KindAdt:
		info, ok := in.AdtInfo(id)
		if !ok || info.Name == "" {
			return fmt.Sprintf("adt#%d", tt.Payload)
		}
		return info.Name
	case KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return "<fn?>"
		}
		parts := make([]string, len(info.Params))
		for i, p := range info.Params {
			parts[i] = in.Format(p)
		}
		return "fn(" + strings.Join(parts, ", ") + ") -> " + in.Format(info.Result)
	case KindCoroutine:
		info, ok := in.CoroInfo(id)
		if !ok || info.Name == "" {
			return fmt.Sprintf("coroutine#%d", tt.Payload)
		}
		return "coroutine " + info.Name
	case KindCoroState:
		y, r, _ := in.CoroStatePayloads(id)
		return fmt.Sprintf("corostate<%s, %s>", in.Format(y), in.Format(r))
	default:
		return "<invalid>"
	}
}
