package source

import (
	"fmt"
)

// Span is a half-open byte range inside a file recorded by the front end.
type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

// NoSpan marks entities the front end attached no position to (synthesized
// locals, shim blocks and the like).
var NoSpan = Span{File: NoFileID}

func (s Span) Valid() bool {
	return s.File != NoFileID
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	if !s.Valid() {
		return "<synthesized>"
	}
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// StartPoint collapses the span to its first byte.
func (s Span) StartPoint() Span {
	return Span{File: s.File, Start: s.Start, End: s.Start}
}

// EndPoint collapses the span to the position just past its last byte.
func (s Span) EndPoint() Span {
	return Span{File: s.File, Start: s.End, End: s.End}
}

// Cover расширяет span так, чтобы он покрывал other (в пределах одного файла).
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
