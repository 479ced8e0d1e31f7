package trace

// MultiTracer duplicates every event into several sinks; mode "both" wires
// a stream and a ring through one of these.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{tracers: tracers, level: level}
}

// Emit stamps a shared sequence number once, so the sinks agree on ordering.
func (t *MultiTracer) Emit(ev Event) {
	if ev.Seq == 0 {
		ev.Seq = NextSeq()
	}
	for _, tr := range t.tracers {
		tr.Emit(ev)
	}
}

func (t *MultiTracer) Flush() error { return t.each(Tracer.Flush) }
func (t *MultiTracer) Close() error { return t.each(Tracer.Close) }

// each applies op to every sink and keeps the first error.
func (t *MultiTracer) each(op func(Tracer) error) error {
	var first error
	for _, tr := range t.tracers {
		if err := op(tr); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
