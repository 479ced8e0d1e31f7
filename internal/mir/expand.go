package mir

// ExpandAggregateAssign lowers dst = aggregate(...) into one assignment
// per field, followed by a discriminant write for discriminated
// aggregates. Later passes then see the field stores and the active
// variant explicitly instead of a composite store.
//
// Для ADT и carrier-значений поля пишутся через downcast-проекцию,
// чтобы место совпадало с тем, что читает остальной код.
func ExpandAggregateAssign(dst Place, agg AggregateRValue) []Stmt {
	out := make([]Stmt, 0, len(agg.Fields)+1)

	discriminated := agg.Agg == AggAdt || agg.Agg == AggCoroState

	for i, field := range agg.Fields {
		fieldPlace := dst
		if discriminated {
			fieldPlace = fieldPlace.WithProj(DowncastProj(agg.Variant))
		}
		fieldPlace = fieldPlace.WithProj(FieldProj(uint32(i), field.Type))
		out = append(out, MakeAssign(fieldPlace, UseRValue(field)))
	}

	if discriminated {
		out = append(out, MakeSetDiscriminant(dst, agg.Variant))
	}
	return out
}
