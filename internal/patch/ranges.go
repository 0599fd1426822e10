package patch

import "github.com/aqasim81/migrationcop/internal/syntax"

// Side selects which end of a range to extend.
type Side int

const (
	Left Side = iota
	Right
	Both
)

// WithSurroundingSpace extends s over adjacent spaces and tabs.
func WithSurroundingSpace(src string, s syntax.Span, side Side) syntax.Span {
	if side == Left || side == Both {
		for s.Start > 0 && isBlank(src[s.Start-1]) {
			s.Start--
		}
	}

	if side == Right || side == Both {
		for s.End < len(src) && isBlank(src[s.End]) {
			s.End++
		}
	}

	return s
}

// WithSurroundingComma extends s over one adjacent comma.
func WithSurroundingComma(src string, s syntax.Span, side Side) syntax.Span {
	if (side == Left || side == Both) && s.Start > 0 && src[s.Start-1] == ',' {
		s.Start--
	}

	if (side == Right || side == Both) && s.End < len(src) && src[s.End] == ',' {
		s.End++
	}

	return s
}

// ArgumentRemoval returns the range to delete to drop a trailing argument or
// option together with the separator before it.
func ArgumentRemoval(src string, s syntax.Span) syntax.Span {
	return WithSurroundingComma(src, WithSurroundingSpace(src, s, Left), Left)
}

func isBlank(c byte) bool { return c == ' ' || c == '\t' }
