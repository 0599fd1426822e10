// Package pattern matches declarative tree shapes against syntax nodes.
//
// Patterns are built from combinators once, compiled with Compile, and then
// evaluated any number of times. Evaluation never mutates the pattern or the
// node.
package pattern

import (
	"slices"

	"github.com/aqasim81/migrationcop/internal/syntax"
)

// Pattern is a tree-shaped matcher expression.
type Pattern interface {
	match(n *syntax.Node, st *state) bool
	visit(v *validator)
}

type anyPattern struct{}

// Any matches any single node, including a missing one (`_`).
func Any() Pattern { return anyPattern{} }

func (anyPattern) match(*syntax.Node, *state) bool { return true }
func (anyPattern) visit(*validator)                {}

type absentPattern struct{}

// Absent matches only a missing node, such as the receiver of `foo(1)`.
func Absent() Pattern { return absentPattern{} }

func (absentPattern) match(n *syntax.Node, _ *state) bool { return n == nil }
func (absentPattern) visit(*validator)                    {}

type typePattern struct {
	kinds []syntax.Kind
}

// Type matches a node of one of the given kinds without looking at children.
func Type(kinds ...syntax.Kind) Pattern { return typePattern{kinds: kinds} }

func (p typePattern) match(n *syntax.Node, _ *state) bool { return n.Is(p.kinds...) }

func (p typePattern) visit(v *validator) {
	if len(p.kinds) == 0 {
		v.malformed("type pattern without kinds")
	}
}

type literalPattern struct {
	kind   syntax.Kind
	values []string
}

// Sym matches a symbol whose value is one of values, or any symbol when
// values is empty.
func Sym(values ...string) Pattern { return literalPattern{kind: syntax.Sym, values: values} }

// Str matches a string literal whose value is one of values, or any string
// literal when values is empty.
func Str(values ...string) Pattern { return literalPattern{kind: syntax.Str, values: values} }

func (p literalPattern) match(n *syntax.Node, _ *state) bool {
	if !n.Is(p.kind) {
		return false
	}

	return len(p.values) == 0 || slices.Contains(p.values, n.Value())
}

func (literalPattern) visit(*validator) {}

type seqPattern struct {
	kind     syntax.Kind
	children []Pattern
}

// Node matches a node of the given kind whose children match children
// positionally. Children may contain at most the variadic patterns returned by
// Rest, RestOf and CaptureRest; without them the arity must match exactly.
func Node(kind syntax.Kind, children ...Pattern) Pattern {
	return seqPattern{kind: kind, children: children}
}

// Hash matches a hash whose children match pairs positionally.
func Hash(pairs ...Pattern) Pattern { return Node(syntax.Hash, pairs...) }

// Pair matches a hash pair.
func Pair(key, value Pattern) Pattern { return Node(syntax.Pair, key, value) }

// Option matches a pair keyed by the symbol name.
func Option(name string, value Pattern) Pattern { return Pair(Sym(name), value) }

func (p seqPattern) match(n *syntax.Node, st *state) bool {
	if !n.Is(p.kind) {
		return false
	}

	return matchSequence(n.Children(), p.children, st)
}

func (p seqPattern) visit(v *validator) { v.sequence(p.children) }

type sendPattern struct {
	receiver Pattern
	methods  []string
	args     []Pattern
}

// Send matches a method call. A nil receiver pattern means Any; an empty
// methods list matches any method name. args is a positional sequence.
func Send(receiver Pattern, methods []string, args ...Pattern) Pattern {
	if receiver == nil {
		receiver = Any()
	}

	return sendPattern{receiver: receiver, methods: methods, args: args}
}

// Call matches a receiver-less call to one of methods.
func Call(methods []string, args ...Pattern) Pattern {
	return Send(Absent(), methods, args...)
}

func (p sendPattern) match(n *syntax.Node, st *state) bool {
	if !n.Is(syntax.Send) {
		return false
	}

	if len(p.methods) > 0 && !slices.Contains(p.methods, n.Method()) {
		return false
	}

	if !st.try(p.receiver, n.Receiver()) {
		return false
	}

	return matchSequence(n.Arguments(), p.args, st)
}

func (p sendPattern) visit(v *validator) {
	v.single(p.receiver)
	v.sequence(p.args)
}

type includesPattern struct {
	kind  syntax.Kind
	items []Pattern
}

// Includes matches a node of the given kind when every item matches a
// distinct child, in any order. Remaining children are ignored.
func Includes(kind syntax.Kind, items ...Pattern) Pattern {
	return includesPattern{kind: kind, items: items}
}

// HashIncluding matches a hash containing pairs matching items.
func HashIncluding(items ...Pattern) Pattern { return Includes(syntax.Hash, items...) }

func (p includesPattern) match(n *syntax.Node, st *state) bool {
	if !n.Is(p.kind) {
		return false
	}

	used := make([]bool, n.Len())

	for _, item := range p.items {
		found := false

		for i, c := range n.Children() {
			if used[i] {
				continue
			}

			if st.try(item, c) {
				used[i] = true
				found = true

				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}

func (p includesPattern) visit(v *validator) {
	for _, item := range p.items {
		v.single(item)
	}
}

type orPattern struct {
	branches []Pattern
}

// Or tries branches in order; the first match wins and only its captures are
// kept.
func Or(branches ...Pattern) Pattern { return orPattern{branches: branches} }

func (p orPattern) match(n *syntax.Node, st *state) bool {
	for _, b := range p.branches {
		if st.try(b, n) {
			return true
		}
	}

	return false
}

func (p orPattern) visit(v *validator) {
	if len(p.branches) == 0 {
		v.malformed("alternation without branches")
	}

	for _, b := range p.branches {
		v.single(b)
	}
}

type notPattern struct {
	inner Pattern
}

// Not matches when inner does not. It never produces captures.
func Not(inner Pattern) Pattern { return notPattern{inner: inner} }

func (p notPattern) match(n *syntax.Node, st *state) bool {
	mark := st.mark()
	ok := p.inner.match(n, st)
	st.reset(mark)

	return !ok
}

func (p notPattern) visit(v *validator) { v.single(p.inner) }

type capturePattern struct {
	name  string
	inner Pattern
}

// Capture records the node matched by inner under name.
func Capture(name string, inner Pattern) Pattern {
	return capturePattern{name: name, inner: inner}
}

func (p capturePattern) match(n *syntax.Node, st *state) bool {
	if !p.inner.match(n, st) {
		return false
	}

	st.capture(p.name, n)

	return true
}

func (p capturePattern) visit(v *validator) {
	v.name(p.name)
	v.single(p.inner)
}

type predicatePattern struct {
	fn func(*syntax.Node) bool
}

// Where matches when fn reports true. fn must be pure.
func Where(fn func(*syntax.Node) bool) Pattern { return predicatePattern{fn: fn} }

func (p predicatePattern) match(n *syntax.Node, _ *state) bool { return p.fn(n) }

func (p predicatePattern) visit(v *validator) {
	if p.fn == nil {
		v.malformed("nil predicate")
	}
}

// restPattern absorbs zero or more consecutive children inside a sequence.
type restPattern struct {
	name string
	each Pattern
}

// Rest absorbs any number of remaining children (`...`).
func Rest() Pattern { return restPattern{each: Any()} }

// RestOf absorbs remaining children, each of which must match each.
func RestOf(each Pattern) Pattern { return restPattern{each: each} }

// CaptureRest absorbs remaining children matching each and records them as a
// list under name.
func CaptureRest(name string, each Pattern) Pattern {
	return restPattern{name: name, each: each}
}

func (restPattern) match(*syntax.Node, *state) bool { return false }

func (p restPattern) visit(v *validator) {
	if p.name != "" {
		v.name(p.name)
	}

	v.single(p.each)
}

// matchSequence matches nodes positionally against pats. The first variadic
// takes every child not needed by the fixed patterns; later variadics take
// what is left, which is nothing.
func matchSequence(nodes []*syntax.Node, pats []Pattern, st *state) bool {
	fixed := 0
	variadic := false

	for _, p := range pats {
		if _, ok := p.(restPattern); ok {
			variadic = true

			continue
		}

		fixed++
	}

	slack := len(nodes) - fixed
	if slack < 0 || (!variadic && slack != 0) {
		return false
	}

	i := 0

	for _, p := range pats {
		rest, ok := p.(restPattern)
		if !ok {
			if !st.try(p, nodes[i]) {
				return false
			}

			i++

			continue
		}

		taken := nodes[i : i+slack]
		for _, c := range taken {
			if !st.try(rest.each, c) {
				return false
			}
		}

		if rest.name != "" {
			st.captureList(rest.name, taken)
		}

		i += slack
		slack = 0
	}

	return true
}
