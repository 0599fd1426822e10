package pattern

import (
	"fmt"

	"github.com/aqasim81/migrationcop/internal/syntax"
)

// Result is the outcome of one match.
type Result struct {
	Matched  bool
	Captures map[string]*syntax.Node
	Lists    map[string][]*syntax.Node
}

// Node returns the node captured under name, or nil.
func (r Result) Node(name string) *syntax.Node {
	return r.Captures[name]
}

// List returns the nodes captured by a variadic under name.
func (r Result) List(name string) []*syntax.Node {
	return r.Lists[name]
}

// Matcher is a compiled pattern.
type Matcher struct {
	root  Pattern
	names []string
}

// Compile validates p. Duplicate capture names and malformed patterns are
// rejected here so that matching can never fail on them.
func Compile(p Pattern) (*Matcher, error) {
	v := &validator{seen: map[string]bool{}}
	v.single(p)

	if v.err != nil {
		return nil, v.err
	}

	return &Matcher{root: p, names: v.names}, nil
}

// MustCompile is Compile that panics on error, for package-level rule patterns.
func MustCompile(p Pattern) *Matcher {
	m, err := Compile(p)
	if err != nil {
		panic(err)
	}

	return m
}

// CaptureNames returns the capture names declared by the pattern.
func (m *Matcher) CaptureNames() []string {
	return append([]string(nil), m.names...)
}

// Match evaluates the pattern against n.
func (m *Matcher) Match(n *syntax.Node) Result {
	st := &state{}
	if !m.root.match(n, st) {
		return Result{}
	}

	res := Result{Matched: true}

	for _, e := range st.entries {
		if e.list {
			if res.Lists == nil {
				res.Lists = map[string][]*syntax.Node{}
			}

			res.Lists[e.name] = e.nodes

			continue
		}

		if res.Captures == nil {
			res.Captures = map[string]*syntax.Node{}
		}

		res.Captures[e.name] = e.nodes[0]
	}

	return res
}

// Matches reports whether the pattern matches n.
func (m *Matcher) Matches(n *syntax.Node) bool {
	return m.Match(n).Matched
}

type entry struct {
	name  string
	nodes []*syntax.Node
	list  bool
}

// state accumulates captures; failed sub-matches roll back to a mark.
type state struct {
	entries []entry
}

func (s *state) mark() int { return len(s.entries) }

func (s *state) reset(mark int) { s.entries = s.entries[:mark] }

func (s *state) try(p Pattern, n *syntax.Node) bool {
	mark := s.mark()
	if p.match(n, s) {
		return true
	}

	s.reset(mark)

	return false
}

func (s *state) capture(name string, n *syntax.Node) {
	s.entries = append(s.entries, entry{name: name, nodes: []*syntax.Node{n}})
}

func (s *state) captureList(name string, nodes []*syntax.Node) {
	s.entries = append(s.entries, entry{name: name, nodes: append([]*syntax.Node(nil), nodes...), list: true})
}

type validator struct {
	seen  map[string]bool
	names []string
	err   error
}

func (v *validator) malformed(reason string) {
	if v.err == nil {
		v.err = fmt.Errorf("%w: %s", ErrMalformedPattern, reason)
	}
}

func (v *validator) name(name string) {
	if name == "" {
		v.malformed("empty capture name")

		return
	}

	if v.seen[name] {
		if v.err == nil {
			v.err = fmt.Errorf("%w: %q", ErrDuplicateCapture, name)
		}

		return
	}

	v.seen[name] = true
	v.names = append(v.names, name)
}

// single validates a pattern in a single-node position.
func (v *validator) single(p Pattern) {
	if p == nil {
		v.malformed("nil pattern")

		return
	}

	if _, ok := p.(restPattern); ok {
		v.malformed("variadic pattern outside a sequence")

		return
	}

	p.visit(v)
}

// sequence validates the children of a sequence, where variadics are allowed.
func (v *validator) sequence(ps []Pattern) {
	for _, p := range ps {
		if p == nil {
			v.malformed("nil pattern")

			continue
		}

		p.visit(v)
	}
}
