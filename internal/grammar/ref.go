package grammar

import "fmt"

// Ref is indirection through the dialect's rule registry by name. The
// parser resolves Name against the dialect at match time (not at grammar
// construction time), which is what lets dialects express recursive
// grammars (a rule that refers to itself, directly or through others)
// without a chicken-and-egg construction problem.
type Ref struct {
	Name        string
	Optional    bool
	AllowGaps   bool
	Terminators []Grammar
	ResetTerminators bool
	Exclude     Grammar

	// resolver is supplied by the dialect/parser layer so Ref can compute
	// a hint and a hash without importing the dialect package (which
	// would create an import cycle). It must be set before Hash/simpleHint
	// are called; dialect registries set it via SetResolver at
	// registration time.
	resolver func(name string) Grammar
}

// SetResolver installs the lookup function Ref uses to find its target
// grammar by name. Dialects call this once per Ref when registering rules.
func (g *Ref) SetResolver(resolve func(name string) Grammar) { g.resolver = resolve }

func NewRef(name string) *Ref { return &Ref{Name: name, AllowGaps: true} }

func (g *Ref) Kind() Kind      { return KindRef }
func (g *Ref) String() string { return fmt.Sprintf("Ref(%s)", g.Name) }

func (g *Ref) Resolve() Grammar {
	if g.resolver == nil {
		return nil
	}
	return g.resolver(g.Name)
}

func (g *Ref) Hash() uint64 {
	return memoizedHash(g, func() uint64 {
		b := newHashBuilder(KindRef)
		b.writeString(g.Name)
		b.writeBool(g.Optional)
		b.writeBool(g.AllowGaps)
		b.writeChildren(g.Terminators)
		b.writeBool(g.ResetTerminators)
		b.writeChild(g.Exclude)
		return b.sum()
	})
}

func (g *Ref) simpleHint(c *HintCache) *SimpleHint {
	child := g.Resolve()
	if child == nil {
		return nil
	}
	return c.Hint(child)
}
