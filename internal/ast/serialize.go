package ast

import "gopkg.in/yaml.v3"

// Tuple is the result of ToTuple: either a leaf (Type, Raw) pair or a
// compound (Type, Children) pair. Exactly one of Raw/Children is
// meaningful; IsLeaf says which.
type Tuple struct {
	Type     string
	Raw      string
	IsLeaf   bool
	Children []Tuple
}

// ToTuple reduces the tree to the compact comparison shape external
// fixture differs use: leaves are (type, raw) pairs, everything else is
// (type, [children...]). codeOnly drops transparent tokens (whitespace,
// newline, comment); showRaw controls whether compound nodes' own label
// uses the node kind name or (for Ref) the rule name; includeMeta controls
// whether Indent/Dedent markers survive the filter.
func (n *Node) ToTuple(codeOnly, showRaw, includeMeta bool) Tuple {
	return n.toTuple(codeOnly, showRaw, includeMeta)
}

func (n *Node) toTuple(codeOnly, showRaw, includeMeta bool) Tuple {
	switch n.NKind {
	case KindToken, KindWhitespace, KindNewline, KindComment, KindEndOfFile:
		return Tuple{Type: string(n.TokenType), Raw: n.Raw, IsLeaf: true}
	case KindMeta:
		return Tuple{Type: n.MetaKind, Raw: "", IsLeaf: true}
	case KindEmpty:
		return Tuple{Type: "empty", Raw: "", IsLeaf: true}
	default:
		label := n.NKind.String()
		if n.NKind == KindRef && n.SegmentType != "" {
			label = n.SegmentType
		} else if n.NKind == KindRef && showRaw {
			label = n.RefName
		}
		var children []Tuple
		for _, c := range n.Children {
			if codeOnly && !c.IsCode() {
				continue
			}
			if !includeMeta && c.NKind == KindMeta {
				continue
			}
			children = append(children, c.toTuple(codeOnly, showRaw, includeMeta))
		}
		return Tuple{Type: label, Children: children, IsLeaf: false}
	}
}

// recordValue is the plain-Go-value shape AsRecord builds, chosen so
// yaml.Marshal produces stable, fixture-diffable output: a leaf is a
// single-key map {type: raw}, a compound node is a single-key map whose
// value is a list of child records.
func (t Tuple) recordValue() any {
	if t.IsLeaf {
		return map[string]any{t.Type: t.Raw}
	}
	children := make([]any, 0, len(t.Children))
	for _, c := range t.Children {
		children = append(children, c.recordValue())
	}
	return map[string]any{t.Type: children}
}

// AsRecord renders the node as a YAML document using the same (code_only,
// show_raw, include_meta) reduction as ToTuple. The output is stable
// byte-for-byte for a given tree: yaml.v3 preserves map insertion order
// via yaml.Node when asked, but since every map here has exactly one key
// that guarantee is moot -- ordering only matters across sibling list
// entries, which are plain slices and therefore already stable.
func (n *Node) AsRecord(codeOnly, showRaw, includeMeta bool) (string, error) {
	t := n.ToTuple(codeOnly, showRaw, includeMeta)
	out, err := yaml.Marshal(t.recordValue())
	if err != nil {
		return "", err
	}
	return string(out), nil
}
