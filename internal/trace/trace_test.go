package trace

import (
	"strings"
	"testing"
)

func TestStreamTracerRespectsLevel(t *testing.T) {
	var sb strings.Builder
	tr := NewStreamTracer(&sb, LevelPhase, FormatText)

	sp := Begin(tr, ScopePass, "liveness", 0)
	sp.End("2 points")
	Begin(tr, ScopeBlock, "bb3", sp.ID()).End("") // ниже уровня, молчит

	out := sb.String()
	if !strings.Contains(out, "liveness") {
		t.Fatalf("pass span missing:\n%s", out)
	}
	if strings.Contains(out, "bb3") {
		t.Errorf("block-scope event leaked at phase level:\n%s", out)
	}
}

func TestRingTracerWrapsAround(t *testing.T) {
	tr := NewRingTracer(4, LevelDebug)
	for i := 0; i < 10; i++ {
		tr.Emit(Event{Kind: KindPoint, Scope: ScopePass, Name: "ev"})
	}
	snap := tr.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("Snapshot len = %d, want 4", len(snap))
	}
	for i := 1; i < len(snap); i++ {
		if snap[i].Seq <= snap[i-1].Seq {
			t.Errorf("snapshot out of order at %d: %d then %d", i, snap[i-1].Seq, snap[i].Seq)
		}
	}
}

func TestMultiTracerFansOut(t *testing.T) {
	var sb strings.Builder
	stream := NewStreamTracer(&sb, LevelDebug, FormatNDJSON)
	ring := NewRingTracer(16, LevelDebug)
	tr := NewMultiTracer(LevelDebug, stream, ring)

	Point(tr, ScopeFunc, "func:gen", "lowered", 0)

	if len(ring.Snapshot()) != 1 {
		t.Errorf("ring missed the event")
	}
	if !strings.Contains(sb.String(), `"func:gen"`) {
		t.Errorf("stream missed the event: %s", sb.String())
	}
}

func TestParseLevelAndMode(t *testing.T) {
	if lvl, err := ParseLevel("detail"); err != nil || lvl != LevelDetail {
		t.Errorf("ParseLevel(detail) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("ParseLevel accepted garbage")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Errorf("ParseMode(both) = %v, %v", m, err)
	}
	if _, err := ParseMode("tape"); err == nil {
		t.Errorf("ParseMode accepted garbage")
	}
}

func TestNopIsSilent(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Enabled() {
		t.Fatalf("off tracer is enabled")
	}
	sp := Begin(tr, ScopeDriver, "anything", 0)
	if sp.ID() != 0 {
		t.Errorf("nop span allocated an id")
	}
}
