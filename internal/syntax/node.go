// Package syntax defines the immutable tree that migration rules inspect.
//
// A Node is created once by the parser through New and never changes
// afterwards. Children are owned by their parent; the parent link is a
// read-only back-reference used for ancestor and sibling inspection.
package syntax

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool { return s.End <= s.Start }

// Overlaps reports whether two spans share at least one byte, or whether a
// zero-width span lies strictly inside the other.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Node is one element of a parsed migration.
//
// Layout per kind:
//   - Send: Value is the method name, Receiver is optional, Children are the arguments.
//   - Block: Children[0] is the Send, Children[1] the Args, the rest is the body.
//   - Def: Value is the method name, Children[0] the Args, the rest is the body.
//   - Class: Value is the class name, Children is the body.
//   - Pair: Children[0] is the key, Children[1] the value.
//   - Asgn, OpAsgn: Children[0] is the target, Children[1] the value; OpAsgn.Value is the operator.
//   - Sym, Str, Int, Float, Lvar, Const: Value is the literal or name.
type Node struct {
	kind     Kind
	value    string
	span     Span
	selector Span
	receiver *Node
	children []*Node
	parent   *Node
}

// Spec describes a node to build.
type Spec struct {
	Kind     Kind
	Value    string
	Span     Span
	Selector Span
	Receiver *Node
	Children []*Node
}

// New builds a node and adopts the receiver and children of s.
// Nil children are dropped.
func New(s Spec) *Node {
	n := &Node{
		kind:     s.Kind,
		value:    s.Value,
		span:     s.Span,
		selector: s.Selector,
		receiver: s.Receiver,
	}

	if s.Receiver != nil {
		s.Receiver.parent = n
	}

	n.children = make([]*Node, 0, len(s.Children))
	for _, c := range s.Children {
		if c == nil {
			continue
		}

		c.parent = n
		n.children = append(n.children, c)
	}

	return n
}

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Value returns the literal value or name carried by the node.
func (n *Node) Value() string { return n.value }

// Span returns the source range of the node.
func (n *Node) Span() Span { return n.span }

// Selector returns the range of the method name of a Send.
func (n *Node) Selector() Span { return n.selector }

// Receiver returns the receiver of a Send, or nil.
func (n *Node) Receiver() *Node { return n.receiver }

// Parent returns the enclosing node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the ordered children. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Len returns the number of children.
func (n *Node) Len() int { return len(n.children) }

// Child returns the i-th child, or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}

	return n.children[i]
}

// Is reports whether n is non-nil and of one of the given kinds.
func (n *Node) Is(kinds ...Kind) bool {
	if n == nil {
		return false
	}

	for _, k := range kinds {
		if n.kind == k {
			return true
		}
	}

	return false
}

// Text returns the source text covered by the node.
func (n *Node) Text(src string) string {
	if n.span.Start < 0 || n.span.End > len(src) || n.span.Start > n.span.End {
		return ""
	}

	return src[n.span.Start:n.span.End]
}

// Ancestors returns the chain of enclosing nodes, innermost first.
func (n *Node) Ancestors() []*Node {
	var out []*Node
	for p := n.parent; p != nil; p = p.parent {
		out = append(out, p)
	}

	return out
}

// FirstAncestor returns the innermost ancestor of one of the given kinds.
func (n *Node) FirstAncestor(kinds ...Kind) *Node {
	for p := n.parent; p != nil; p = p.parent {
		if p.Is(kinds...) {
			return p
		}
	}

	return nil
}

func (n *Node) index() int {
	if n.parent == nil {
		return -1
	}

	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}

	return -1
}

// LeftSiblings returns the children of the parent that precede n.
// A receiver has no siblings.
func (n *Node) LeftSiblings() []*Node {
	i := n.index()
	if i < 0 {
		return nil
	}

	return n.parent.children[:i]
}

// RightSiblings returns the children of the parent that follow n.
func (n *Node) RightSiblings() []*Node {
	i := n.index()
	if i < 0 {
		return nil
	}

	return n.parent.children[i+1:]
}

// Walk visits n and its descendants in pre-order: the node, its receiver,
// then its children. Returning false from fn skips the node's descendants.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	n.receiver.Walk(fn)

	for _, c := range n.children {
		c.Walk(fn)
	}
}
