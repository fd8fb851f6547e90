package ctype

// Kind discriminates how a field's bytes are interpreted.
type Kind uint8

const (
	KindScalar Kind = iota
	KindPointer
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindPointer:
		return "pointer"
	}
	return "unknown"
}

// Desc is a fixed-width, signedness-tagged type descriptor independent
// of the host platform. Alignment of a scalar equals its byte width.
type Desc struct {
	Width  uint32
	Signed bool
	Float  bool
	Kind   Kind
}

// The known-type table. Multi-word keywords are joined with single
// spaces by the parser before lookup. Widths are fixed by the target
// model, never taken from the host.
var known = map[string]Desc{
	"int8_t":   {Width: 1, Signed: true},
	"uint8_t":  {Width: 1},
	"int16_t":  {Width: 2, Signed: true},
	"uint16_t": {Width: 2},
	"int32_t":  {Width: 4, Signed: true},
	"uint32_t": {Width: 4},
	"int64_t":  {Width: 8, Signed: true},
	"uint64_t": {Width: 8},

	"char":          {Width: 1, Signed: true},
	"signed char":   {Width: 1, Signed: true},
	"unsigned char": {Width: 1},

	"short":              {Width: 2, Signed: true},
	"short int":          {Width: 2, Signed: true},
	"signed short":       {Width: 2, Signed: true},
	"signed short int":   {Width: 2, Signed: true},
	"unsigned short":     {Width: 2},
	"unsigned short int": {Width: 2},

	"int":          {Width: 4, Signed: true},
	"signed":       {Width: 4, Signed: true},
	"signed int":   {Width: 4, Signed: true},
	"unsigned":     {Width: 4},
	"unsigned int": {Width: 4},

	"long":                   {Width: 8, Signed: true},
	"long int":               {Width: 8, Signed: true},
	"signed long":            {Width: 8, Signed: true},
	"unsigned long":          {Width: 8},
	"long long":              {Width: 8, Signed: true},
	"long long int":          {Width: 8, Signed: true},
	"signed long long":       {Width: 8, Signed: true},
	"unsigned long long":     {Width: 8},
	"unsigned long long int": {Width: 8},

	"float":  {Width: 4, Signed: true, Float: true},
	"double": {Width: 8, Signed: true, Float: true},
}

// multiword is the set of keywords that may combine into a multi-word
// type name.
var multiword = map[string]bool{
	"signed":   true,
	"unsigned": true,
	"short":    true,
	"long":     true,
	"int":      true,
	"char":     true,
}

// Lookup maps a base type keyword to its fixed descriptor.
func Lookup(keyword string) (Desc, bool) {
	d, ok := known[keyword]
	return d, ok
}

// Multiword reports whether keyword can start or continue a multi-word
// type name.
func Multiword(keyword string) bool {
	return multiword[keyword]
}

// Pointer returns the descriptor of a pointer on a target with the given
// word size in bytes. The stored value is an opaque raw address; the
// compiler never dereferences it.
func Pointer(wordSize int) Desc {
	return Desc{Width: uint32(wordSize), Kind: KindPointer}
}

// Enum returns the descriptor backing an enumeration type.
func Enum() Desc {
	return Desc{Width: 4}
}
