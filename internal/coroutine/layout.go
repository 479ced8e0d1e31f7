package coroutine

import (
	"coil/internal/mir"
	"coil/internal/source"
	"coil/internal/types"
)

// fieldRef is where a saved local ends up inside the state: a field of
// one suspension variant of the receiver.
type fieldRef struct {
	ty      types.TypeID
	variant mir.VariantIdx
	field   uint32
}

// computeLayout assigns every saved local its variant/field slot and
// packages the state description. A local live at several suspension
// points keeps the slot of the first one: the value must be readable in
// every state it survives, so its position may not depend on the state.
func computeLayout(f *mir.Body, li livenessInfo) (map[mir.LocalID]fieldRef, *mir.StateLayout) {
	n := li.saved.count()
	tys := make([]types.TypeID, n)
	names := make([]string, n)
	fieldSpans := make([]source.Span, n)
	for i, l := range li.saved.order {
		tys[i] = f.Locals[l].Type
		names[i] = f.Locals[l].Name
		fieldSpans[i] = f.Locals[l].Span
	}

	// Три зарезервированных варианта всегда пустые.
	variantFields := make([][]mir.SavedLocal, mir.ReservedVariants, mir.ReservedVariants+len(li.liveAt))
	variantSpans := make([]source.Span, 0, mir.ReservedVariants+len(li.liveAt))
	variantSpans = append(variantSpans, f.Span.StartPoint(), f.Span.EndPoint(), f.Span.EndPoint())

	remap := make(map[mir.LocalID]fieldRef, n)
	for point, live := range li.liveAt {
		variant := mir.VariantIdx(mir.ReservedVariants + point)
		var fields []mir.SavedLocal
		live.ForEach(func(sv int) {
			idx := uint32(len(fields))
			fields = append(fields, mir.SavedLocal(int32(sv)))
			l := li.saved.order[sv]
			if _, seen := remap[l]; !seen {
				remap[l] = fieldRef{ty: tys[sv], variant: variant, field: idx}
			}
		})
		variantFields = append(variantFields, fields)
		variantSpans = append(variantSpans, li.spanAt[point])
	}

	layout := &mir.StateLayout{
		FieldTys:      tys,
		FieldNames:    names,
		FieldSpans:    fieldSpans,
		VariantFields: variantFields,
		VariantSpans:  variantSpans,
		Conflicts:     li.conflicts,
	}
	return remap, layout
}
