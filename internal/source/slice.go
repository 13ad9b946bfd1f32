// Package source provides the position-tracking primitives shared by the
// lexer and parser: byte-offset slices, templated/source position markers,
// and the templated-file abstraction that maps templated text back to its
// source origin.
package source

import "fmt"

// Slice is a half-open byte range [Start, Stop) into some string. It never
// carries the string itself, so slices are cheap to copy and compare.
type Slice struct {
	Start int
	Stop  int
}

// NewSlice builds a Slice, clamping Stop up to Start if callers pass a
// reversed range.
func NewSlice(start, stop int) Slice {
	if stop < start {
		stop = start
	}
	return Slice{Start: start, Stop: stop}
}

// Len returns the number of bytes the slice spans.
func (s Slice) Len() int { return s.Stop - s.Start }

// IsEmpty reports whether the slice spans zero bytes.
func (s Slice) IsEmpty() bool { return s.Stop <= s.Start }

// Apply returns the substring of raw that this slice addresses. Out-of-range
// slices are clamped rather than panicking, since templated slices can be
// computed speculatively during lexing.
func (s Slice) Apply(raw string) string {
	start, stop := s.Start, s.Stop
	if start < 0 {
		start = 0
	}
	if stop > len(raw) {
		stop = len(raw)
	}
	if start >= stop {
		return ""
	}
	return raw[start:stop]
}

// Shift returns a copy of the slice moved by delta bytes.
func (s Slice) Shift(delta int) Slice {
	return Slice{Start: s.Start + delta, Stop: s.Stop + delta}
}

func (s Slice) String() string {
	return fmt.Sprintf("[%d:%d]", s.Start, s.Stop)
}
