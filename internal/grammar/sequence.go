package grammar

import "fmt"

// Sequence matches its elements in order. Between elements, when AllowGaps
// is true the parser skips over whitespace/newlines/comments, collecting
// them into the accumulated children. An element marked Optional may match
// Empty without failing the sequence; a required element matching Empty
// fails the whole sequence.
type Sequence struct {
	Elements         []OptionalElement
	AllowGaps        bool
	Terminators      []Grammar
	ResetTerminators bool
	ParseMode        ParseMode
}

func NewSequence(elements ...OptionalElement) *Sequence {
	return &Sequence{Elements: elements, AllowGaps: true}
}

func (g *Sequence) Kind() Kind      { return KindSequence }
func (g *Sequence) String() string { return fmt.Sprintf("Sequence(%d elements)", len(g.Elements)) }

func (g *Sequence) Hash() uint64 {
	return memoizedHash(g, func() uint64 {
		b := newHashBuilder(KindSequence)
		b.writeElements(g.Elements)
		b.writeBool(g.AllowGaps)
		b.writeChildren(g.Terminators)
		b.writeBool(g.ResetTerminators)
		b.writeUint64(uint64(g.ParseMode))
		return b.sum()
	})
}

// simpleHint is the hint of the first non-optional element; if every
// element is optional, the union of their hints (since matching could stop
// at any of them).
func (g *Sequence) simpleHint(c *HintCache) *SimpleHint {
	var optionalHints []*SimpleHint
	for _, e := range g.Elements {
		h := c.Hint(e.Grammar)
		if !e.Optional {
			return h
		}
		optionalHints = append(optionalHints, h)
	}
	if len(optionalHints) == 0 {
		return &SimpleHint{RawValues: map[string]bool{}, TokenTypes: map[string]bool{}}
	}
	return unionHints(optionalHints...)
}
