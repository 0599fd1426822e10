package parser //nolint:revive // intentional: does not conflict with go/parser in internal package

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"

	"github.com/aqasim81/migrationcop/internal/syntax"
)

// Tree-sitter parsers are not safe for concurrent use; pool them per goroutine.
var rubyParsers = sync.Pool{ //nolint:gochecknoglobals // parser pool
	New: func() any {
		p := sitter.NewParser()
		p.SetLanguage(ruby.GetLanguage())

		return p
	},
}

// ParseRuby parses a Ruby compilation unit into a syntax tree.
func ParseRuby(ctx context.Context, src []byte) (*syntax.Node, error) {
	p, _ := rubyParsers.Get().(*sitter.Parser)
	defer rubyParsers.Put(p)

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing ruby: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, describeError(root, src))
	}

	c := &converter{src: src}
	c.collectHeredocs(root)

	return syntax.New(syntax.Spec{
		Kind:     syntax.Program,
		Span:     span(root),
		Children: c.statements(root),
	}), nil
}

func describeError(root *sitter.Node, src []byte) string {
	var bad *sitter.Node

	var find func(n *sitter.Node)
	find = func(n *sitter.Node) {
		if bad != nil || n == nil {
			return
		}

		if n.Type() == "ERROR" || n.IsMissing() {
			bad = n

			return
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			find(n.Child(i))
		}
	}
	find(root)

	if bad == nil {
		return "unexpected input"
	}

	pt := bad.StartPoint()
	text := bad.Content(src)

	if len(text) > 40 {
		text = text[:40] + "..."
	}

	return fmt.Sprintf("line %d, column %d: unexpected %q", pt.Row+1, pt.Column+1, text)
}

type converter struct {
	src      []byte
	heredocs []*sitter.Node
	next     int
	scopes   []map[string]bool
}

func span(n *sitter.Node) syntax.Span {
	return syntax.Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}

	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func (c *converter) text(n *sitter.Node) string {
	return n.Content(c.src)
}

func (c *converter) collectHeredocs(n *sitter.Node) {
	if n.Type() == "heredoc_body" {
		c.heredocs = append(c.heredocs, n)

		return
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		c.collectHeredocs(n.NamedChild(i))
	}
}

func (c *converter) declare(name string) {
	if len(c.scopes) == 0 {
		c.scopes = append(c.scopes, map[string]bool{})
	}

	c.scopes[len(c.scopes)-1][name] = true
}

func (c *converter) isLocal(name string) bool {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if c.scopes[i][name] {
			return true
		}
	}

	return false
}

// statements converts the named children of n, flattening body wrappers and
// skipping the children listed in skip.
func (c *converter) statements(n *sitter.Node, skip ...*sitter.Node) []*syntax.Node {
	var out []*syntax.Node

children:
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if ch == nil {
			continue
		}

		for _, s := range skip {
			if sameNode(ch, s) {
				continue children
			}
		}

		switch ch.Type() {
		case "comment", "heredoc_body", "block_parameters", "method_parameters":
			continue
		case "body_statement", "block_body":
			out = append(out, c.statements(ch)...)

			continue
		}

		if x := c.node(ch); x != nil {
			out = append(out, x)
		}
	}

	return out
}

//nolint:cyclop,funlen // one case per grammar node type
func (c *converter) node(n *sitter.Node) *syntax.Node {
	switch n.Type() {
	case "class", "module":
		name := n.ChildByFieldName("name")

		return syntax.New(syntax.Spec{
			Kind:     syntax.Class,
			Value:    c.text(name),
			Span:     span(n),
			Children: c.statements(n, name, n.ChildByFieldName("superclass")),
		})
	case "method", "singleton_method":
		return c.method(n)
	case "call":
		return c.call(n)
	case "identifier":
		name := c.text(n)
		if c.isLocal(name) {
			return syntax.New(syntax.Spec{Kind: syntax.Lvar, Value: name, Span: span(n)})
		}

		return syntax.New(syntax.Spec{Kind: syntax.Send, Value: name, Span: span(n), Selector: span(n)})
	case "constant", "scope_resolution":
		return syntax.New(syntax.Spec{Kind: syntax.Const, Value: c.text(n), Span: span(n)})
	case "self":
		return syntax.New(syntax.Spec{Kind: syntax.Self, Span: span(n)})
	case "nil":
		return syntax.New(syntax.Spec{Kind: syntax.Nil, Span: span(n)})
	case "true":
		return syntax.New(syntax.Spec{Kind: syntax.True, Span: span(n)})
	case "false":
		return syntax.New(syntax.Spec{Kind: syntax.False, Span: span(n)})
	case "integer":
		return syntax.New(syntax.Spec{Kind: syntax.Int, Value: c.text(n), Span: span(n)})
	case "float":
		return syntax.New(syntax.Spec{Kind: syntax.Float, Value: c.text(n), Span: span(n)})
	case "simple_symbol", "symbol":
		return syntax.New(syntax.Spec{Kind: syntax.Sym, Value: strings.TrimPrefix(c.text(n), ":"), Span: span(n)})
	case "hash_key_symbol":
		return syntax.New(syntax.Spec{Kind: syntax.Sym, Value: c.text(n), Span: span(n)})
	case "delimited_symbol":
		value, interpolated := c.stringValue(n)
		if interpolated {
			return c.generic(n)
		}

		return syntax.New(syntax.Spec{Kind: syntax.Sym, Value: value, Span: span(n)})
	case "string":
		value, interpolated := c.stringValue(n)
		if interpolated {
			return syntax.New(syntax.Spec{Kind: syntax.DStr, Span: span(n)})
		}

		return syntax.New(syntax.Spec{Kind: syntax.Str, Value: value, Span: span(n)})
	case "heredoc_beginning":
		return c.heredoc(n)
	case "array":
		return syntax.New(syntax.Spec{Kind: syntax.Array, Span: span(n), Children: c.statements(n)})
	case "string_array", "symbol_array":
		return c.wordArray(n)
	case "hash":
		return syntax.New(syntax.Spec{Kind: syntax.Hash, Span: span(n), Children: c.statements(n)})
	case "pair":
		return c.pair(n)
	case "assignment", "operator_assignment":
		return c.assignment(n)
	default:
		return c.generic(n)
	}
}

func (c *converter) generic(n *sitter.Node) *syntax.Node {
	return syntax.New(syntax.Spec{
		Kind:     syntax.Other,
		Value:    n.Type(),
		Span:     span(n),
		Children: c.statements(n),
	})
}

// parameters declares the names bound by a parameter list and returns them as
// an Args node.
func (c *converter) parameters(n *sitter.Node, at int) *syntax.Node {
	if n == nil {
		return syntax.New(syntax.Spec{Kind: syntax.Args, Span: syntax.Span{Start: at, End: at}})
	}

	var params []*syntax.Node

	for i := 0; i < int(n.NamedChildCount()); i++ {
		p := n.NamedChild(i)

		id := p
		if p.Type() != "identifier" {
			id = p.ChildByFieldName("name")
		}

		if id == nil {
			continue
		}

		name := c.text(id)
		c.declare(name)
		params = append(params, syntax.New(syntax.Spec{Kind: syntax.Lvar, Value: name, Span: span(id)}))
	}

	return syntax.New(syntax.Spec{Kind: syntax.Args, Span: span(n), Children: params})
}

func (c *converter) method(n *sitter.Node) *syntax.Node {
	outer := c.scopes
	c.scopes = []map[string]bool{{}}

	defer func() { c.scopes = outer }()

	name := n.ChildByFieldName("name")
	params := n.ChildByFieldName("parameters")
	args := c.parameters(params, int(n.EndByte()))

	children := append([]*syntax.Node{args}, c.statements(n, name, params, n.ChildByFieldName("object"))...)

	return syntax.New(syntax.Spec{
		Kind:     syntax.Def,
		Value:    c.text(name),
		Span:     span(n),
		Children: children,
	})
}

func (c *converter) call(n *sitter.Node) *syntax.Node {
	recvNode := n.ChildByFieldName("receiver")
	methodNode := n.ChildByFieldName("method")
	argsNode := n.ChildByFieldName("arguments")
	blockNode := n.ChildByFieldName("block")

	var recv *syntax.Node
	if recvNode != nil {
		recv = c.node(recvNode)
	}

	name := "call"
	selector := syntax.Span{Start: int(n.StartByte()), End: int(n.StartByte())}

	if methodNode != nil {
		name = c.text(methodNode)
		selector = span(methodNode)
	}

	var args []*syntax.Node
	if argsNode != nil {
		args = c.arguments(argsNode)
	}

	sendSpan := span(n)

	if blockNode != nil {
		sendSpan.End = selector.End
		if argsNode != nil && int(argsNode.EndByte()) > sendSpan.End {
			sendSpan.End = int(argsNode.EndByte())
		}
	}

	send := syntax.New(syntax.Spec{
		Kind:     syntax.Send,
		Value:    name,
		Span:     sendSpan,
		Selector: selector,
		Receiver: recv,
		Children: args,
	})

	if blockNode == nil {
		return send
	}

	c.scopes = append(c.scopes, map[string]bool{})

	defer func() { c.scopes = c.scopes[:len(c.scopes)-1] }()

	params := blockNode.ChildByFieldName("parameters")
	children := append([]*syntax.Node{send, c.parameters(params, int(blockNode.StartByte()))},
		c.statements(blockNode, params)...)

	return syntax.New(syntax.Spec{
		Kind:     syntax.Block,
		Span:     span(n),
		Children: children,
	})
}

// arguments converts an argument list, grouping consecutive keyword pairs
// into one implicit hash.
func (c *converter) arguments(n *sitter.Node) []*syntax.Node {
	var (
		out   []*syntax.Node
		pairs []*syntax.Node
	)

	flush := func() {
		if len(pairs) == 0 {
			return
		}

		out = append(out, syntax.New(syntax.Spec{
			Kind:     syntax.Hash,
			Span:     syntax.Span{Start: pairs[0].Span().Start, End: pairs[len(pairs)-1].Span().End},
			Children: pairs,
		}))
		pairs = nil
	}

	for _, arg := range c.statements(n) {
		if arg.Kind() == syntax.Pair {
			pairs = append(pairs, arg)

			continue
		}

		flush()

		out = append(out, arg)
	}

	flush()

	return out
}

func (c *converter) pair(n *sitter.Node) *syntax.Node {
	var children []*syntax.Node

	if key := n.ChildByFieldName("key"); key != nil {
		children = append(children, c.node(key))
	}

	if value := n.ChildByFieldName("value"); value != nil {
		children = append(children, c.node(value))
	}

	return syntax.New(syntax.Spec{Kind: syntax.Pair, Span: span(n), Children: children})
}

func (c *converter) assignment(n *sitter.Node) *syntax.Node {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")

	var target *syntax.Node

	switch {
	case left == nil:
	case left.Type() == "identifier":
		name := c.text(left)
		c.declare(name)
		target = syntax.New(syntax.Spec{Kind: syntax.Lvar, Value: name, Span: span(left)})
	default:
		target = c.node(left)
	}

	children := []*syntax.Node{target}
	if right != nil {
		children = append(children, c.node(right))
	}

	if n.Type() == "assignment" {
		return syntax.New(syntax.Spec{Kind: syntax.Asgn, Value: "=", Span: span(n), Children: children})
	}

	op := ""
	if opNode := n.ChildByFieldName("operator"); opNode != nil {
		op = opNode.Type()
	}

	return syntax.New(syntax.Spec{Kind: syntax.OpAsgn, Value: op, Span: span(n), Children: children})
}

// stringValue returns the literal content of a string-like node and whether it
// contains interpolation.
func (c *converter) stringValue(n *sitter.Node) (string, bool) {
	var sb strings.Builder

	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)

		switch ch.Type() {
		case "interpolation":
			return "", true
		case "string_content", "escape_sequence", "heredoc_content":
			sb.WriteString(c.text(ch))
		}
	}

	return sb.String(), false
}

func (c *converter) wordArray(n *sitter.Node) *syntax.Node {
	kind := syntax.Str
	if n.Type() == "symbol_array" {
		kind = syntax.Sym
	}

	var items []*syntax.Node

	for i := 0; i < int(n.NamedChildCount()); i++ {
		w := n.NamedChild(i)
		if w.Type() == "comment" {
			continue
		}

		items = append(items, syntax.New(syntax.Spec{Kind: kind, Value: c.text(w), Span: span(w)}))
	}

	return syntax.New(syntax.Spec{Kind: syntax.Array, Span: span(n), Children: items})
}

// heredoc pairs an opener with the next unclaimed body in document order.
func (c *converter) heredoc(n *sitter.Node) *syntax.Node {
	if c.next >= len(c.heredocs) {
		return syntax.New(syntax.Spec{Kind: syntax.DStr, Span: span(n)})
	}

	body := c.heredocs[c.next]
	c.next++

	value, interpolated := c.stringValue(body)
	if interpolated {
		return syntax.New(syntax.Spec{Kind: syntax.DStr, Span: span(n)})
	}

	if strings.HasPrefix(c.text(n), "<<~") {
		value = dedent(value)
	}

	return syntax.New(syntax.Spec{Kind: syntax.Str, Value: value, Span: span(n)})
}

func dedent(s string) string {
	lines := strings.Split(s, "\n")
	indent := -1

	for _, l := range lines {
		trimmed := strings.TrimLeft(l, " \t")
		if trimmed == "" {
			continue
		}

		if w := len(l) - len(trimmed); indent < 0 || w < indent {
			indent = w
		}
	}

	if indent <= 0 {
		return s
	}

	for i, l := range lines {
		if len(l) >= indent {
			lines[i] = l[indent:]
		} else {
			lines[i] = strings.TrimLeft(l, " \t")
		}
	}

	return strings.Join(lines, "\n")
}
