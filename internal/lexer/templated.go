package lexer

import (
	"fmt"

	"github.com/sunholo/sqlcore/internal/perror"
	"github.com/sunholo/sqlcore/internal/source"
	"github.com/sunholo/sqlcore/internal/token"
)

// element is one matcher-produced run of text, positioned in the
// templated file's own coordinate space. Elements don't yet know their
// source position -- that's resolved against file.Slices in mapElements.
type element struct {
	raw            string
	tokenType      token.Type
	instances      []string
	norm           *token.Normaliser
	templatedStart int
	templatedStop  int
}

// blockFrame tracks one open template control block (e.g. `{% if %}`) on
// the lexer's block stack, so a block_end can be paired with the
// block_start/block_mid chain it closes.
type blockFrame struct {
	id string
}

// mapElements walks elements and file.Slices together in templated order,
// producing the final token stream: literal slices map byte-for-byte,
// templated/escaped/block slices map to their whole source range (the
// "stash"), zero-length slices emit a template_placeholder (plus
// Indent/Dedent bookkeeping for block slices), and a backward jump in
// source position emits a template_loop marker. The common case -- a
// single literal slice spanning the whole file -- degenerates to a plain
// positional scan.
func (lx *Lexer) mapElements(elements []element, file *source.TemplatedFile, templateBlocksIndent bool) ([]token.Token, []Violation) {
	var toks []token.Token
	var violations []Violation

	sliceIdx := 0
	var blockStack []blockFrame
	furthestSource := -1

	maybeEmitLoop := func(fs source.FileSlice) {
		if furthestSource >= 0 && fs.SourceSlice.Start < furthestSource {
			toks = append(toks, token.New("", token.TemplateLoop, source.NewPositionMarker(fs.SourceSlice, file)))
		}
		if fs.SourceSlice.Stop > furthestSource {
			furthestSource = fs.SourceSlice.Stop
		}
	}

	emitZeroLengthSlice := func(fs source.FileSlice) {
		maybeEmitLoop(fs)
		if fs.Kind.IsBlock() {
			id := fmt.Sprintf("block-%d-%d", fs.SourceSlice.Start, fs.SourceSlice.Stop)
			switch fs.Kind {
			case source.SliceBlockStart:
				if templateBlocksIndent {
					toks = append(toks, token.New("", token.Indent, source.NewPositionMarker(fs.SourceSlice, file)))
				}
				blockStack = append(blockStack, blockFrame{id: id})
			case source.SliceBlockMid:
				if templateBlocksIndent && len(blockStack) > 0 {
					toks = append(toks, token.New("", token.Dedent, source.NewPositionMarker(fs.SourceSlice, file)))
					toks = append(toks, token.New("", token.Indent, source.NewPositionMarker(fs.SourceSlice, file)))
				}
			case source.SliceBlockEnd:
				if templateBlocksIndent && len(blockStack) > 0 {
					toks = append(toks, token.New("", token.Dedent, source.NewPositionMarker(fs.SourceSlice, file)))
				}
				if len(blockStack) > 0 {
					blockStack = blockStack[:len(blockStack)-1]
				}
			}
		}
		toks = append(toks, token.New("", token.TemplatePlaceholder, source.NewPositionMarker(fs.SourceSlice, file)))
	}

	// advanceTo moves the slice cursor up to the slice containing templated
	// offset pos, emitting every zero-length slice (placeholders, block
	// markers) passed along the way -- exhausted non-zero slices and
	// zero-length slices interleave freely, so a single cursor walk has to
	// handle both.
	advanceTo := func(pos int) {
		for sliceIdx < len(file.Slices) {
			fs := file.Slices[sliceIdx]
			if fs.TemplatedSlice.IsEmpty() && fs.TemplatedSlice.Start <= pos {
				emitZeroLengthSlice(fs)
				sliceIdx++
				continue
			}
			if sliceIdx < len(file.Slices)-1 && fs.TemplatedSlice.Stop <= pos {
				sliceIdx++
				continue
			}
			break
		}
	}

	for _, el := range elements {
		advanceTo(el.templatedStart)

		var srcSlice source.Slice
		if sliceIdx < len(file.Slices) {
			fs := file.Slices[sliceIdx]
			maybeEmitLoop(fs)
			if fs.Kind == source.SliceLiteral {
				offset := fs.SourceSlice.Start - fs.TemplatedSlice.Start
				srcSlice = source.Slice{Start: el.templatedStart + offset, Stop: el.templatedStop + offset}
			} else {
				// Spanning a templated/escaped/block region: the whole
				// element maps to the enclosing slice's source range (the
				// "stash"), since there's no byte-exact correspondence.
				srcSlice = fs.SourceSlice
			}
		} else {
			srcSlice = source.Slice{Start: el.templatedStart, Stop: el.templatedStop}
		}

		marker := source.NewTemplatedPositionMarker(srcSlice, source.Slice{Start: el.templatedStart, Stop: el.templatedStop}, file)
		tok := token.New(el.raw, el.tokenType, marker, el.instances...)
		tok.Normaliser = el.norm
		toks = append(toks, tok)
		if el.tokenType == token.Unlexable {
			line, col := file.LineCol(srcSlice.Start)
			violations = append(violations, Violation{
				Code:    perror.LEX001,
				Message: fmt.Sprintf("unable to lex %q", el.raw),
				Line:    line,
				Col:     col,
			})
		}
	}

	advanceTo(1 << 62)

	return toks, violations
}
