package driver

import "time"

// Stage describes a high-level lowering phase.
type Stage string

const (
	// StageValidate is the whole-module input validation stage.
	StageValidate Stage = "validate"
	// StageLower is the per-function state transform.
	StageLower Stage = "lower"
	// StageWrite is the output snapshot write.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the function is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the function is being lowered.
	StatusWorking Status = "working"
	// StatusDone indicates the function lowered cleanly.
	StatusDone Status = "done"
	// StatusSkipped indicates the body is not a coroutine.
	StatusSkipped Status = "skipped"
	// StatusError indicates the lowering failed.
	StatusError Status = "error"
)

// Event reports progress for one function (or for the whole run when
// Func is empty).
type Event struct {
	Func    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
