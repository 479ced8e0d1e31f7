package diag

// Reporter — минимальный контракт получения диагностик от фаз.
// Реализации: BagReporter (кладёт в Bag), NopReporter.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter складывает диагностики в Bag.
type BagReporter struct {
	Bag *Bag
}

func (r BagReporter) Report(d Diagnostic) {
	r.Bag.Add(d)
}

// NopReporter отбрасывает всё.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}
