package grammar

import "fmt"

// OneOf tries every child and keeps the best successful match rather
// than the first: a clean match (no Unparsable content) beats an unclean
// one, and among equally-clean matches the longest wins. Exclude, if
// set, is tried first; a successful exclude match forces OneOf to fail
// without consuming input.
type OneOf struct {
	Children    []Grammar
	Exclude     Grammar
	Optional    bool
	Terminators []Grammar
	AllowGaps   bool
	ParseMode   ParseMode
}

func NewOneOf(children ...Grammar) *OneOf {
	return &OneOf{Children: children, AllowGaps: true}
}

func (g *OneOf) Kind() Kind      { return KindOneOf }
func (g *OneOf) String() string { return fmt.Sprintf("OneOf(%d options)", len(g.Children)) }

func (g *OneOf) Hash() uint64 {
	return memoizedHash(g, func() uint64 {
		b := newHashBuilder(KindOneOf)
		b.writeChildren(g.Children)
		b.writeChild(g.Exclude)
		b.writeBool(g.Optional)
		b.writeChildren(g.Terminators)
		b.writeBool(g.AllowGaps)
		b.writeUint64(uint64(g.ParseMode))
		return b.sum()
	})
}

func (g *OneOf) simpleHint(c *HintCache) *SimpleHint {
	hints := make([]*SimpleHint, 0, len(g.Children))
	for _, child := range g.Children {
		hints = append(hints, c.Hint(child))
	}
	return unionHints(hints...)
}
