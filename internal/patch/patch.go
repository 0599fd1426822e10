// Package patch stages text edits produced by rule corrections and composes
// them into a single non-overlapping set applied in one pass.
package patch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aqasim81/migrationcop/internal/syntax"
)

// Edit replaces the bytes [Start, End) with Text. Start == End is an insertion.
type Edit struct {
	Start int
	End   int
	Text  string
	Rule  string
}

// Span returns the range of the edit.
func (e Edit) Span() syntax.Span { return syntax.Span{Start: e.Start, End: e.End} }

func (e Edit) String() string {
	return fmt.Sprintf("[%d,%d)->%q", e.Start, e.End, e.Text)
}

// Builder accumulates edits for one rule firing in staging order.
type Builder struct {
	rule  string
	edits []Edit
}

// NewBuilder returns a builder whose edits are attributed to rule.
func NewBuilder(rule string) *Builder {
	return &Builder{rule: rule}
}

// Stage appends an edit as-is.
func (b *Builder) Stage(e Edit) {
	if e.Rule == "" {
		e.Rule = b.rule
	}

	b.edits = append(b.edits, e)
}

// Replace replaces the text covered by s.
func (b *Builder) Replace(s syntax.Span, text string) {
	b.Stage(Edit{Start: s.Start, End: s.End, Text: text})
}

// Remove deletes the text covered by s.
func (b *Builder) Remove(s syntax.Span) {
	b.Replace(s, "")
}

// InsertBefore inserts text at the start of s.
func (b *Builder) InsertBefore(s syntax.Span, text string) {
	b.Stage(Edit{Start: s.Start, End: s.Start, Text: text})
}

// InsertAfter inserts text at the end of s.
func (b *Builder) InsertAfter(s syntax.Span, text string) {
	b.Stage(Edit{Start: s.End, End: s.End, Text: text})
}

// Edits returns the staged edits in staging order.
func (b *Builder) Edits() []Edit {
	return append([]Edit(nil), b.edits...)
}

// Len returns the number of staged edits.
func (b *Builder) Len() int { return len(b.edits) }

// Conflict records an edit dropped because it overlaps an earlier one.
type Conflict struct {
	Kept    Edit
	Dropped Edit
}

func (c Conflict) String() string {
	return fmt.Sprintf("edit %s from %s dropped: overlaps %s from %s", c.Dropped, c.Dropped.Rule, c.Kept, c.Kept.Rule)
}

// PatchSet is a sorted collection of non-overlapping edits for one unit.
type PatchSet []Edit

// Compose resolves staged edits into a PatchSet. Edits are considered in
// staging order; an edit overlapping an already accepted one is dropped and
// reported as a Conflict. An edit identical to an accepted one is dropped
// without a conflict.
func Compose(edits []Edit) (PatchSet, []Conflict) {
	groups := make([][]Edit, len(edits))
	for i, e := range edits {
		groups[i] = []Edit{e}
	}

	ps, conflicts, _ := ComposeGroups(groups)

	return ps, conflicts
}

// ComposeGroups is Compose for groups of edits that must apply together, one
// group per correction. A group with any conflicting edit is dropped as a
// whole. The returned slice reports, per group, whether it was accepted.
func ComposeGroups(groups [][]Edit) (PatchSet, []Conflict, []bool) {
	var (
		accepted  []Edit
		conflicts []Conflict
	)

	ok := make([]bool, len(groups))

	for g, group := range groups {
		var (
			staged []Edit
			failed []Conflict
		)

		for _, e := range group {
			dup, clash, hit := against(e, accepted)
			if !hit {
				dup, clash, hit = against(e, staged)
			}

			switch {
			case hit && dup:
			case hit:
				failed = append(failed, Conflict{Kept: clash, Dropped: e})
			default:
				staged = append(staged, e)
			}
		}

		if len(failed) > 0 {
			conflicts = append(conflicts, failed...)

			continue
		}

		ok[g] = true
		accepted = append(accepted, staged...)
	}

	return sortEdits(accepted), conflicts, ok
}

// against reports whether e collides with one of edits, and whether the
// collision is an identical duplicate.
func against(e Edit, edits []Edit) (dup bool, with Edit, hit bool) {
	for _, a := range edits {
		if a.Start == e.Start && a.End == e.End && a.Text == e.Text {
			return true, a, true
		}

		if a.Span().Overlaps(e.Span()) {
			return false, a, true
		}
	}

	return false, Edit{}, false
}

// sortEdits orders accepted edits by start offset. Insertions precede a
// replacement at the same offset; ties otherwise keep acceptance order.
func sortEdits(accepted []Edit) PatchSet {
	ps := make(PatchSet, len(accepted))
	copy(ps, accepted)

	sort.SliceStable(ps, func(x, y int) bool {
		a, b := ps[x], ps[y]
		if a.Start != b.Start {
			return a.Start < b.Start
		}

		return a.Start == a.End && b.Start != b.End
	})

	return ps
}

// Apply writes the corrected text in a single left-to-right pass.
func Apply(ps PatchSet, text string) (string, error) {
	var sb strings.Builder

	sb.Grow(len(text))

	cursor := 0

	for _, e := range ps {
		if e.Start < 0 || e.End > len(text) || e.Start > e.End {
			return "", fmt.Errorf("%w: %s (text length %d)", ErrEditOutOfRange, e, len(text))
		}

		if e.Start < cursor {
			return "", fmt.Errorf("%w: %s", ErrOverlappingEdits, e)
		}

		sb.WriteString(text[cursor:e.Start])
		sb.WriteString(e.Text)
		cursor = e.End
	}

	sb.WriteString(text[cursor:])

	return sb.String(), nil
}

// MapSpan translates a span of the text ps applies to into the text Apply
// produces. A boundary inside a replaced range moves to the edge of the
// replacement; text inserted exactly at a boundary stays outside the span.
func (ps PatchSet) MapSpan(s syntax.Span) syntax.Span {
	start := ps.mapOffset(s.Start, false)
	end := max(ps.mapOffset(s.End, true), start)

	return syntax.Span{Start: start, End: end}
}

func (ps PatchSet) mapOffset(o int, end bool) int {
	delta := 0

	for _, e := range ps {
		switch {
		case e.Start > o:
			return o + delta
		case e.Start == e.End:
			if e.Start == o && end {
				return o + delta
			}

			delta += len(e.Text)
		case e.End <= o:
			delta += len(e.Text) - (e.End - e.Start)
		case e.Start == o:
			return o + delta
		case end:
			return e.Start + delta + len(e.Text)
		default:
			return e.Start + delta
		}
	}

	return o + delta
}
