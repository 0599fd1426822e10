package syntax

import "sort"

// Source is the text of one compilation unit with a line index.
type Source struct {
	text       string
	lineStarts []int
}

// NewSource indexes the line starts of text.
func NewSource(text string) *Source {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}

	return &Source{text: text, lineStarts: starts}
}

// Text returns the full source text.
func (s *Source) Text() string { return s.text }

// Slice returns the text covered by sp, clamped to the source.
func (s *Source) Slice(sp Span) string {
	start := max(0, min(sp.Start, len(s.text)))
	end := max(start, min(sp.End, len(s.text)))

	return s.text[start:end]
}

// Position converts a byte offset to a 1-based line and column.
func (s *Source) Position(offset int) (line, column int) {
	i := sort.Search(len(s.lineStarts), func(i int) bool {
		return s.lineStarts[i] > offset
	}) - 1
	if i < 0 {
		i = 0
	}

	return i + 1, offset - s.lineStarts[i] + 1
}

// Indentation returns the 0-based column at which the node starts.
func (s *Source) Indentation(n *Node) int {
	_, col := s.Position(n.Span().Start)

	return col - 1
}
