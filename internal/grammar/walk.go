package grammar

// Walk visits g and every grammar reachable from it through combinator
// children, element lists, delimiters, bracket pairs, terminators and
// excludes -- but not through Ref resolution, since a Ref's target belongs
// to the registry, not to the referring grammar. Each distinct grammar
// value is visited exactly once even if shared by several parents.
func Walk(g Grammar, visit func(Grammar)) {
	walk(g, visit, map[Grammar]bool{})
}

func walk(g Grammar, visit func(Grammar), seen map[Grammar]bool) {
	if g == nil || seen[g] {
		return
	}
	seen[g] = true
	visit(g)

	switch gg := g.(type) {
	case *Ref:
		walkAll(gg.Terminators, visit, seen)
		walk(gg.Exclude, visit, seen)
	case *Sequence:
		walkElements(gg.Elements, visit, seen)
		walkAll(gg.Terminators, visit, seen)
	case *OneOf:
		walkAll(gg.Children, visit, seen)
		walk(gg.Exclude, visit, seen)
		walkAll(gg.Terminators, visit, seen)
	case *AnyNumberOf:
		walkAll(gg.Children, visit, seen)
		walkAll(gg.Terminators, visit, seen)
	case *AnySetOf:
		walkAll(gg.Children, visit, seen)
		walkAll(gg.Terminators, visit, seen)
	case *Delimited:
		walkAll(gg.Elements, visit, seen)
		walk(gg.Delimiter, visit, seen)
		walkAll(gg.Terminators, visit, seen)
	case *Bracketed:
		walkElements(gg.Elements, visit, seen)
		for _, p := range gg.Pairs {
			walk(p.Open, visit, seen)
			walk(p.Close, visit, seen)
		}
	}
}

func walkAll(gs []Grammar, visit func(Grammar), seen map[Grammar]bool) {
	for _, g := range gs {
		walk(g, visit, seen)
	}
}

func walkElements(elems []OptionalElement, visit func(Grammar), seen map[Grammar]bool) {
	for _, e := range elems {
		walk(e.Grammar, visit, seen)
	}
}
