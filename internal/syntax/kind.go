package syntax

// Kind identifies the shape of a Node. The set is closed: every construct the
// parser does not model explicitly is reported as Other.
type Kind int

const (
	Other Kind = iota
	Program
	Class
	Def
	Send
	Block
	Args
	Sym
	Str
	DStr
	Int
	Float
	Array
	Hash
	Pair
	True
	False
	Nil
	Self
	Lvar
	Const
	Asgn
	OpAsgn

	kindCount
)

var kindNames = [kindCount]string{ //nolint:gochecknoglobals // lookup table
	Other:   "other",
	Program: "program",
	Class:   "class",
	Def:     "def",
	Send:    "send",
	Block:   "block",
	Args:    "args",
	Sym:     "sym",
	Str:     "str",
	DStr:    "dstr",
	Int:     "int",
	Float:   "float",
	Array:   "array",
	Hash:    "hash",
	Pair:    "pair",
	True:    "true",
	False:   "false",
	Nil:     "nil",
	Self:    "self",
	Lvar:    "lvar",
	Const:   "const",
	Asgn:    "asgn",
	OpAsgn:  "op_asgn",
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}

	return kindNames[k]
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

// Kinds returns every declared kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}

	return kinds
}

// IsLiteral reports whether nodes of kind k carry their literal value in Value.
func (k Kind) IsLiteral() bool {
	switch k {
	case Sym, Str, Int, Float:
		return true
	default:
		return false
	}
}
