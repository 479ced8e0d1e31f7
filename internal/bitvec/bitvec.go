// Package bitvec provides the dense bit sets the dataflow analyses and the
// storage-conflict matrix are built on. Sets are fixed-width at construction;
// all indices are plain ints validated by the caller.
package bitvec

import (
	"fmt"
	"math/bits"
	"strings"
)

const wordBits = 64

// Set is a fixed-width bit set packed into uint64 words.
type Set struct {
	n     int
	words []uint64
}

func New(n int) Set {
	if n < 0 {
		panic(fmt.Sprintf("bitvec: negative width %d", n))
	}
	return Set{n: n, words: make([]uint64, (n+wordBits-1)/wordBits)}
}

// Len returns the width the set was created with.
func (s Set) Len() int { return s.n }

func (s Set) Contains(i int) bool {
	if i < 0 || i >= s.n {
		panic(fmt.Sprintf("bitvec: index %d out of range [0,%d)", i, s.n))
	}
	return s.words[i/wordBits]&(1<<(uint(i)%wordBits)) != 0
}

func (s Set) Insert(i int) bool {
	if i < 0 || i >= s.n {
		panic(fmt.Sprintf("bitvec: index %d out of range [0,%d)", i, s.n))
	}
	w := &s.words[i/wordBits]
	mask := uint64(1) << (uint(i) % wordBits)
	old := *w
	*w = old | mask
	return old&mask == 0
}

func (s Set) Remove(i int) bool {
	if i < 0 || i >= s.n {
		panic(fmt.Sprintf("bitvec: index %d out of range [0,%d)", i, s.n))
	}
	w := &s.words[i/wordBits]
	mask := uint64(1) << (uint(i) % wordBits)
	old := *w
	*w = old &^ mask
	return old&mask != 0
}

// UnionWith ors other into s and reports whether s changed.
func (s Set) UnionWith(other Set) bool {
	s.checkWidth(other)
	changed := false
	for i, w := range other.words {
		old := s.words[i]
		merged := old | w
		if merged != old {
			s.words[i] = merged
			changed = true
		}
	}
	return changed
}

// IntersectWith ands other into s and reports whether s changed.
func (s Set) IntersectWith(other Set) bool {
	s.checkWidth(other)
	changed := false
	for i, w := range other.words {
		old := s.words[i]
		merged := old & w
		if merged != old {
			s.words[i] = merged
			changed = true
		}
	}
	return changed
}

// SubtractWith clears every bit of other from s and reports whether s changed.
func (s Set) SubtractWith(other Set) bool {
	s.checkWidth(other)
	changed := false
	for i, w := range other.words {
		old := s.words[i]
		merged := old &^ w
		if merged != old {
			s.words[i] = merged
			changed = true
		}
	}
	return changed
}

func (s Set) Clear() {
	for i := range s.words {
		s.words[i] = 0
	}
}

// CopyFrom overwrites s with other (widths must match).
func (s Set) CopyFrom(other Set) {
	s.checkWidth(other)
	copy(s.words, other.words)
}

func (s Set) Clone() Set {
	out := Set{n: s.n, words: make([]uint64, len(s.words))}
	copy(out.words, s.words)
	return out
}

// Equal reports exact bit equality. Widths must match.
func (s Set) Equal(other Set) bool {
	s.checkWidth(other)
	for i, w := range s.words {
		if w != other.words[i] {
			return false
		}
	}
	return true
}

func (s Set) Count() int {
	total := 0
	for _, w := range s.words {
		total += bits.OnesCount64(w)
	}
	return total
}

func (s Set) Empty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// ForEach calls fn for every set bit in ascending order.
func (s Set) ForEach(fn func(i int)) {
	for wi, w := range s.words {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			fn(wi*wordBits + bit)
			w &= w - 1
		}
	}
}

func (s Set) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	s.ForEach(func(i int) {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		fmt.Fprintf(&b, "%d", i)
	})
	b.WriteByte('}')
	return b.String()
}

func (s Set) checkWidth(other Set) {
	if s.n != other.n {
		panic(fmt.Sprintf("bitvec: width mismatch %d vs %d", s.n, other.n))
	}
}
