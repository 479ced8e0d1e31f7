package trace

import (
	"fmt"
	"sync"
	"time"
)

// Heartbeat periodically emits heartbeat events so a hung lowering run is
// distinguishable from a slow one: spans stop, heartbeats keep coming.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	stopCh   chan struct{}
	stop     sync.Once
	done     chan struct{}
}

// StartHeartbeat spawns the heartbeat goroutine. Returns nil when tracing
// is off or the interval is unusable; Stop on a nil Heartbeat is a no-op.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Heartbeat) run() {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	beat := uint64(0)
	for {
		select {
		case <-ticker.C:
			beat++
			h.tracer.Emit(Event{
				Time:   time.Now(),
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    getGoroutineID(),
				Name:   "heartbeat",
				Detail: fmt.Sprintf("#%d", beat),
			})
		case <-h.stopCh:
			return
		}
	}
}

// Stop halts the goroutine and waits for it to exit. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.stop.Do(func() { close(h.stopCh) })
	<-h.done
}
