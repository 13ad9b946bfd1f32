// Package ast defines the parsed Node tree: the materialised result of
// applying a MatchResult to a token slice. Nodes own their children and
// are positioned by integer token index, not byte offset -- byte/line
// position is always reachable through the underlying token's PosMarker.
package ast

import (
	"github.com/sunholo/sqlcore/internal/token"
)

// Kind discriminates the concrete Node variant.
type Kind int

const (
	KindToken Kind = iota
	KindWhitespace
	KindNewline
	KindComment
	KindEndOfFile
	KindMeta
	KindRef
	KindSequence
	KindDelimitedList
	KindBracketed
	KindUnparsable
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindToken:
		return "token"
	case KindWhitespace:
		return "whitespace"
	case KindNewline:
		return "newline"
	case KindComment:
		return "comment"
	case KindEndOfFile:
		return "end_of_file"
	case KindMeta:
		return "meta"
	case KindRef:
		return "ref"
	case KindSequence:
		return "sequence"
	case KindDelimitedList:
		return "delimited_list"
	case KindBracketed:
		return "bracketed"
	case KindUnparsable:
		return "unparsable"
	case KindEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Node is the parsed-tree value every combinator's MatchResult eventually
// materialises into. A single struct (rather than one Go type per variant)
// keeps the tree walkable without a type switch at every call site; Kind
// says which fields are meaningful.
type Node struct {
	NKind Kind

	// Leaf fields (Token/Whitespace/Newline/Comment/EndOfFile/Meta).
	TokenType token.Type
	Raw       string
	Idx       int
	MetaKind  string // "Indent" or "Dedent", only set when NKind == KindMeta

	// Ref fields.
	RefName     string
	SegmentType string

	// Compound fields (Sequence/DelimitedList/Bracketed/Unparsable/Ref).
	Children []*Node

	// Bracketed-only.
	BracketPersists bool

	// Unparsable-only: a human-readable description of what the parser
	// expected instead of the unparsed content.
	Expected string
}

// NewTokenNode builds a leaf Node wrapping one lexed Token at index idx.
// The node's kind follows from the token's own classification (code tokens
// become KindToken; whitespace/newline/comment/EOF get their own kinds).
func NewTokenNode(tok token.Token, idx int) *Node {
	n := &Node{Raw: tok.Raw, TokenType: tok.TokenType, Idx: idx}
	switch {
	case tok.TokenType == token.EndOfFile:
		n.NKind = KindEndOfFile
	case tok.IsWhitespace():
		n.NKind = KindWhitespace
	case tok.IsNewline():
		n.NKind = KindNewline
	case tok.IsComment():
		n.NKind = KindComment
	default:
		n.NKind = KindToken
	}
	return n
}

// NewRetypedTokenNode builds a leaf Node for a token the grammar re-typed
// on match -- e.g. a lexed word that a StringParser recognised as a
// keyword. The raw text is unchanged; only the reported type differs from
// what the lexer assigned.
func NewRetypedTokenNode(raw string, tt token.Type, idx int) *Node {
	return &Node{NKind: KindToken, TokenType: tt, Raw: raw, Idx: idx}
}

// NewMetaNode builds a zero-width Indent/Dedent marker at idx.
func NewMetaNode(kind string, idx int) *Node {
	return &Node{NKind: KindMeta, MetaKind: kind, Idx: idx}
}

// NewRefNode wraps child in a named Ref node, tagging it with the
// dialect's segment type for that rule (if any).
func NewRefNode(name, segmentType string, child *Node) *Node {
	children := []*Node{}
	if child != nil {
		children = []*Node{child}
	}
	return &Node{NKind: KindRef, RefName: name, SegmentType: segmentType, Children: children}
}

// NewSequenceNode wraps children in an (unnamed) Sequence node.
func NewSequenceNode(children []*Node) *Node {
	return &Node{NKind: KindSequence, Children: children}
}

// NewDelimitedListNode wraps children (elements interleaved with
// delimiters and transparent tokens) in a DelimitedList node.
func NewDelimitedListNode(children []*Node) *Node {
	return &Node{NKind: KindDelimitedList, Children: children}
}

// NewBracketedNode wraps children (including the bracket tokens
// themselves when bracketPersists is true) in a Bracketed node.
func NewBracketedNode(children []*Node, bracketPersists bool) *Node {
	return &Node{NKind: KindBracketed, Children: children, BracketPersists: bracketPersists}
}

// NewUnparsableNode wraps children the parser could not fit to any
// grammar, tagged with what was expected instead.
func NewUnparsableNode(expected string, children []*Node) *Node {
	return &Node{NKind: KindUnparsable, Expected: expected, Children: children}
}

// NewEmptyNode is the materialisation of an Empty match: no tokens, no
// children.
func NewEmptyNode() *Node { return &Node{NKind: KindEmpty} }

// IsCode reports whether this node represents parsed code rather than a
// transparent token (whitespace/newline/comment) or meta marker.
func (n *Node) IsCode() bool {
	switch n.NKind {
	case KindWhitespace, KindNewline, KindComment, KindMeta, KindEndOfFile, KindEmpty:
		return false
	default:
		return true
	}
}

// Raws returns the concatenated raw text this node (and all descendants)
// covers.
func (n *Node) Raws() string {
	if n.NKind != KindSequence && n.NKind != KindDelimitedList && n.NKind != KindBracketed &&
		n.NKind != KindUnparsable && n.NKind != KindRef {
		return n.Raw
	}
	var out string
	for _, c := range n.Children {
		out += c.Raws()
	}
	return out
}

// RecursiveCrawl walks the tree depth-first, calling visit on every node
// (including n itself) whose NKind is in kinds. An empty kinds set visits
// every node.
func (n *Node) RecursiveCrawl(visit func(*Node), kinds ...Kind) {
	n.recursiveCrawl(visit, kindSet(kinds))
}

func (n *Node) recursiveCrawl(visit func(*Node), kinds map[Kind]bool) {
	if len(kinds) == 0 || kinds[n.NKind] {
		visit(n)
	}
	for _, c := range n.Children {
		c.recursiveCrawl(visit, kinds)
	}
}

func kindSet(kinds []Kind) map[Kind]bool {
	m := map[Kind]bool{}
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

// PathStep is one hop in a Path result: the index of the child taken at
// that level.
type PathStep struct {
	Node        *Node
	ChildIndex  int
}

// Path finds the route from root down to target by identity (pointer
// equality), returning nil if target is not reachable from root. This is
// a plain recursive search rather than the original's Weak-parent-pointer
// cache: Go's GC makes back-pointers unnecessary, and path queries are rare
// enough (diagnostics, rule authoring) that O(n) is an acceptable cost.
func Path(root, target *Node) []PathStep {
	if root == target {
		return []PathStep{}
	}
	for i, c := range root.Children {
		if sub := Path(c, target); sub != nil {
			return append([]PathStep{{Node: root, ChildIndex: i}}, sub...)
		}
	}
	return nil
}
