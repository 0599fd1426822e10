package syntax

// Method returns the method name of a Send, or "" for other kinds.
func (n *Node) Method() string {
	if !n.Is(Send) {
		return ""
	}

	return n.value
}

// IsMethod reports whether n is a Send of one of the given method names.
func (n *Node) IsMethod(names ...string) bool {
	if !n.Is(Send) {
		return false
	}

	for _, name := range names {
		if n.value == name {
			return true
		}
	}

	return false
}

// Arguments returns the arguments of a Send.
func (n *Node) Arguments() []*Node {
	if !n.Is(Send) {
		return nil
	}

	return n.children
}

// FirstArgument returns the first argument of a Send, or nil.
func (n *Node) FirstArgument() *Node {
	if !n.Is(Send) {
		return nil
	}

	return n.Child(0)
}

// LastArgument returns the last argument of a Send, or nil.
func (n *Node) LastArgument() *Node {
	if !n.Is(Send) {
		return nil
	}

	return n.Child(len(n.children) - 1)
}

// Pairs returns the pairs of a Hash.
func (n *Node) Pairs() []*Node {
	if !n.Is(Hash) {
		return nil
	}

	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		if c.kind == Pair {
			out = append(out, c)
		}
	}

	return out
}

// Key returns the key of a Pair.
func (n *Node) Key() *Node {
	if !n.Is(Pair) {
		return nil
	}

	return n.Child(0)
}

// PairValue returns the value of a Pair.
func (n *Node) PairValue() *Node {
	if !n.Is(Pair) {
		return nil
	}

	return n.Child(1)
}

// BlockCall returns the Send a Block is attached to.
func (n *Node) BlockCall() *Node {
	if !n.Is(Block) {
		return nil
	}

	return n.Child(0)
}

// Body returns the statements of a Block, Def, Class or Program.
func (n *Node) Body() []*Node {
	switch {
	case n.Is(Block):
		if len(n.children) <= 2 {
			return nil
		}

		return n.children[2:]
	case n.Is(Def):
		if len(n.children) <= 1 {
			return nil
		}

		return n.children[1:]
	case n.Is(Class, Program):
		return n.children
	default:
		return nil
	}
}

// LastOption returns the trailing keyword-option hash of a Send, if any.
func (n *Node) LastOption() *Node {
	last := n.LastArgument()
	if last.Is(Hash) {
		return last
	}

	return nil
}

// Option returns the value of the keyword option named key from the trailing
// hash of a Send, or nil.
func (n *Node) Option(key string) *Node {
	p := n.OptionPair(key)
	if p == nil {
		return nil
	}

	return p.PairValue()
}

// OptionPair returns the pair for the keyword option named key, or nil.
func (n *Node) OptionPair(key string) *Node {
	h := n.LastOption()
	if h == nil {
		return nil
	}

	for _, p := range h.Pairs() {
		if k := p.Key(); k.Is(Sym) && k.value == key {
			return p
		}
	}

	return nil
}

// InsertionPoint returns the node after which a new trailing argument should
// be written: the last pair of a trailing hash, or the last argument.
func (n *Node) InsertionPoint() *Node {
	last := n.LastArgument()
	if last.Is(Hash) {
		if pairs := last.Pairs(); len(pairs) > 0 {
			return pairs[len(pairs)-1]
		}
	}

	return last
}
