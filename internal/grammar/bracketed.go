package grammar

import "fmt"

// BracketPair names the opening/closing token types a Bracketed grammar
// matches between, and whether the bracket tokens themselves are kept in
// the resulting node (BracketPersists).
type BracketPair struct {
	Open, Close     Grammar
	BracketPersists bool
}

// Bracketed matches content found strictly between a matched pair of
// bracket tokens (as pre-computed by the lexer's bracket pass). Elements
// are matched as an implicit Sequence against everything strictly inside
// the bracket pair.
type Bracketed struct {
	Elements    []OptionalElement
	Pairs       []BracketPair
	AllowGaps   bool
	ParseMode   ParseMode
}

func NewBracketed(pair BracketPair, elements ...OptionalElement) *Bracketed {
	return &Bracketed{Elements: elements, Pairs: []BracketPair{pair}, AllowGaps: true}
}

func (g *Bracketed) Kind() Kind      { return KindBracketed }
func (g *Bracketed) String() string { return fmt.Sprintf("Bracketed(%d elements)", len(g.Elements)) }

func (g *Bracketed) Hash() uint64 {
	return memoizedHash(g, func() uint64 {
		b := newHashBuilder(KindBracketed)
		b.writeElements(g.Elements)
		b.writeUint64(uint64(len(g.Pairs)))
		for _, p := range g.Pairs {
			b.writeChild(p.Open)
			b.writeChild(p.Close)
			b.writeBool(p.BracketPersists)
		}
		b.writeBool(g.AllowGaps)
		b.writeUint64(uint64(g.ParseMode))
		return b.sum()
	})
}

// simpleHint is the hint of the opening bracket, since the bracket token
// itself is always the first thing a successful match would consume.
func (g *Bracketed) simpleHint(c *HintCache) *SimpleHint {
	if len(g.Pairs) == 0 {
		return nil
	}
	hints := make([]*SimpleHint, 0, len(g.Pairs))
	for _, p := range g.Pairs {
		hints = append(hints, c.Hint(p.Open))
	}
	return unionHints(hints...)
}
