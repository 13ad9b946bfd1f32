package source

// PositionMarker is the bijective link between a token/node and both of its
// coordinate systems: the literal byte range the lexer consumed (Templated)
// and that range's projection back onto the file the user wrote (Source).
// For a non-templated file the two slices are identical.
type PositionMarker struct {
	SourceSlice    Slice
	TemplatedSlice Slice
	File           *TemplatedFile

	// WorkingLine/WorkingCol cache the 1-based source position so repeated
	// diagnostics don't re-scan the file; populated lazily via LineCol.
	workingLine int
	workingCol  int
	resolved    bool
}

// NewPositionMarker builds a marker whose source and templated slices are
// identical -- the position of a token read directly from raw SQL text.
func NewPositionMarker(slice Slice, file *TemplatedFile) PositionMarker {
	return PositionMarker{SourceSlice: slice, TemplatedSlice: slice, File: file}
}

// NewTemplatedPositionMarker builds a marker whose source and templated
// slices differ, for tokens whose raw text came from template expansion.
func NewTemplatedPositionMarker(sourceSlice, templatedSlice Slice, file *TemplatedFile) PositionMarker {
	return PositionMarker{SourceSlice: sourceSlice, TemplatedSlice: templatedSlice, File: file}
}

// IsLiteral reports whether this marker's source and templated slices
// correspond byte-for-byte -- true for every token in a non-templated
// file, and for any token lexed entirely within a literal template region
// (where the two spans hold identical text at possibly different
// offsets).
func (p PositionMarker) IsLiteral() bool {
	if p.SourceSlice == p.TemplatedSlice {
		return true
	}
	if p.SourceSlice.Len() != p.TemplatedSlice.Len() || p.File == nil {
		return false
	}
	return p.SourceRaw() == p.Raw()
}

// LineNo returns the 1-based source line the marker starts on.
func (p *PositionMarker) LineNo() int {
	line, _ := p.lineCol()
	return line
}

// LinePos returns the 1-based source column the marker starts on.
func (p *PositionMarker) LinePos() int {
	_, col := p.lineCol()
	return col
}

func (p *PositionMarker) lineCol() (int, int) {
	if p.resolved {
		return p.workingLine, p.workingCol
	}
	if p.File == nil {
		return 1, 1
	}
	line, col := p.File.LineCol(p.SourceSlice.Start)
	p.workingLine, p.workingCol, p.resolved = line, col, true
	return line, col
}

// Raw returns the literal templated-side text this marker addresses.
func (p PositionMarker) Raw() string {
	if p.File == nil {
		return ""
	}
	return p.TemplatedSlice.Apply(p.File.Templated)
}

// SourceRaw returns the literal source-side text this marker addresses.
func (p PositionMarker) SourceRaw() string {
	if p.File == nil {
		return ""
	}
	return p.SourceSlice.Apply(p.File.Source)
}

// Advance returns a new marker covering the next n templated bytes after
// this one ends, preserving the literal/templated relationship if this
// marker is literal.
func (p PositionMarker) Advance(n int) PositionMarker {
	tmpl := Slice{Start: p.TemplatedSlice.Stop, Stop: p.TemplatedSlice.Stop + n}
	if p.IsLiteral() {
		return NewPositionMarker(tmpl, p.File)
	}
	src := Slice{Start: p.SourceSlice.Stop, Stop: p.SourceSlice.Stop + n}
	return NewTemplatedPositionMarker(src, tmpl, p.File)
}
