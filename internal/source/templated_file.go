package source

import "strings"

// SliceKind classifies a TemplatedFile slice as coming straight from the
// source (literal) or having been synthesised by a templater (templated).
// This module never ships a templating engine, but the lexer's
// position-marker contract depends on the distinction existing.
type SliceKind int

const (
	// SliceLiteral marks a templated-file region that is a byte-for-byte
	// copy of the source: SourceSlice and TemplatedSlice have equal length
	// and identical content.
	SliceLiteral SliceKind = iota
	// SliceTemplated marks a region produced by template expansion, where
	// the templated text may have no correspondence at all to the nearest
	// source bytes beyond "somewhere in this source span".
	SliceTemplated
	// SliceEscaped marks a region where the templater escaped a literal
	// delimiter (e.g. a doubled quote); treated like SliceTemplated for
	// position-mapping purposes but kept distinct for callers that care.
	SliceEscaped
	// SliceBlockStart marks the opening tag of a template control block
	// (e.g. `{% if %}`). Zero-length in the templated view.
	SliceBlockStart
	// SliceBlockMid marks a continuation tag of a template control block
	// (e.g. `{% else %}`).
	SliceBlockMid
	// SliceBlockEnd marks the closing tag of a template control block
	// (e.g. `{% endif %}`).
	SliceBlockEnd
)

// IsBlock reports whether this slice kind is one of the block bookkeeping
// kinds the lexer's block stack tracks.
func (k SliceKind) IsBlock() bool {
	return k == SliceBlockStart || k == SliceBlockMid || k == SliceBlockEnd
}

// FileSlice pairs a source-side range with its templated-side counterpart.
type FileSlice struct {
	Kind           SliceKind
	SourceSlice    Slice
	TemplatedSlice Slice
}

// TemplatedFile is the bridge between "the text the lexer actually reads"
// (Templated) and "the text the user wrote" (Source). For the common case
// of a plain, non-templated SQL file the two are identical and the file
// carries a single literal slice spanning the whole string.
type TemplatedFile struct {
	Source    string
	Templated string
	Slices    []FileSlice

	// lineStarts[i] is the byte offset of the first byte of line i (0-based)
	// within Source. Computed lazily on first use.
	lineStarts []int
}

// NewTemplatedFile wraps raw, untemplated text: source and templated text
// are identical, covered by a single literal slice.
func NewTemplatedFile(raw string) *TemplatedFile {
	return &TemplatedFile{
		Source:    raw,
		Templated: raw,
		Slices: []FileSlice{{
			Kind:           SliceLiteral,
			SourceSlice:    Slice{Start: 0, Stop: len(raw)},
			TemplatedSlice: Slice{Start: 0, Stop: len(raw)},
		}},
	}
}

// NewTemplatedFileWithSlices builds a file from explicit source/templated
// text and a pre-computed mapping between them, for callers that already
// ran a templater upstream of this module.
func NewTemplatedFileWithSlices(sourceText, templatedText string, slices []FileSlice) *TemplatedFile {
	return &TemplatedFile{Source: sourceText, Templated: templatedText, Slices: slices}
}

func (f *TemplatedFile) ensureLineStarts() {
	if f.lineStarts != nil {
		return
	}
	starts := []int{0}
	for i := 0; i < len(f.Source); i++ {
		if f.Source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	f.lineStarts = starts
}

// LineCol converts a byte offset into the source string to a 1-based
// (line, column) pair, the way editors and diagnostics expect.
func (f *TemplatedFile) LineCol(sourceOffset int) (line, col int) {
	f.ensureLineStarts()
	// binary search for the last lineStart <= sourceOffset
	lo, hi := 0, len(f.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineStarts[mid] <= sourceOffset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	lineStart := f.lineStarts[lo]
	return lo + 1, sourceOffset - lineStart + 1
}

// TemplatedSliceToSource maps a templated-side slice back to its best-effort
// source-side slice by finding the FileSlice whose templated range contains
// it. Literal slices map with a byte-exact offset shift; templated slices
// fall back to the whole enclosing source range, matching the original
// implementation's "can't do better than the containing block" behaviour.
func (f *TemplatedFile) TemplatedSliceToSource(templated Slice) Slice {
	// Prefer the slice that properly contains the start offset; only when
	// none does (zero-length query at a boundary) fall back to an
	// inclusive-boundary match, so a slice starting exactly where its
	// neighbour stops maps to the later slice, not the earlier.
	for _, fs := range f.Slices {
		ts := fs.TemplatedSlice
		if templated.Start >= ts.Start && templated.Start < ts.Stop {
			if fs.Kind == SliceLiteral {
				return templated.Shift(fs.SourceSlice.Start - ts.Start)
			}
			return fs.SourceSlice
		}
	}
	for _, fs := range f.Slices {
		ts := fs.TemplatedSlice
		if templated.Start >= ts.Start && templated.Start <= ts.Stop {
			if fs.Kind == SliceLiteral {
				return templated.Shift(fs.SourceSlice.Start - ts.Start)
			}
			return fs.SourceSlice
		}
	}
	return templated
}

// IsFullyLiteral reports whether the whole file is an untemplated, literal
// copy of its source -- the common case for a lexer fed raw SQL text.
func (f *TemplatedFile) IsFullyLiteral() bool {
	for _, fs := range f.Slices {
		if fs.Kind != SliceLiteral {
			return false
		}
	}
	return true
}

// String renders the templated text for debugging.
func (f *TemplatedFile) String() string {
	var b strings.Builder
	b.WriteString(f.Templated)
	return b.String()
}
