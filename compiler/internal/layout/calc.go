package layout

import (
	"github.com/declbyte/declbyte/compiler/internal/ast"
	"github.com/declbyte/declbyte/errors"
)

// Slot is the resolved placement of one field: byte offset, byte size,
// and the padding inserted immediately before it. Bitfields packed into
// a shared storage unit all carry the unit's offset; only the closing
// slot of a unit carries the unit's byte size, so that summing sizes of
// preceding slots always reproduces every slot's offset.
type Slot struct {
	Field     *ast.FieldDecl
	Offset    uint32
	Size      uint32
	Padding   uint32
	BitOffset uint32
	BitWidth  uint32 // 0 for non-bitfields
	UnitStart bool
	UnitEnd   bool
}

// Info is the byte-exact layout of one struct.
type Info struct {
	Slots []Slot
	Size  uint32
	Align uint32
}

// Calculator computes struct layouts and memoizes them per StructDecl.
// A StructDecl's layout is computed exactly once and never mutated.
type Calculator struct {
	cache map[*ast.StructDecl]*Info
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*ast.StructDecl]*Info),
	}
}

// Info returns the memoized layout of a struct, if computed.
func (c *Calculator) Info(s *ast.StructDecl) (*Info, bool) {
	info, ok := c.cache[s]
	return info, ok
}

// Calculate simulates C struct layout for s: natural mode maintains a
// running offset padded to each member's alignment; packed mode
// overrides every alignment to 1 and never inserts padding.
func (c *Calculator) Calculate(s *ast.StructDecl) (*Info, error) {
	if cached, ok := c.cache[s]; ok {
		return cached, nil
	}

	if len(s.Fields) == 0 {
		return nil, errors.New(errors.PhaseLayout, errors.KindLayoutConflict).
			Pos(s.Line, s.Col).
			Symbol(s.Name).
			Detail("empty struct has no layout").
			Build()
	}

	st := &state{calc: c, decl: s}
	for i := range s.Fields {
		f := &s.Fields[i]
		var err error
		if f.BitWidth > 0 {
			err = st.placeBitfield(f)
		} else {
			err = st.placeField(f)
		}
		if err != nil {
			return nil, err
		}
	}
	st.closeUnit()

	if st.maxAlign == 0 {
		st.maxAlign = 1
	}
	total := alignTo(st.offset, st.maxAlign)

	info := &Info{
		Slots: st.slots,
		Size:  total,
		Align: st.maxAlign,
	}
	c.cache[s] = info
	return info, nil
}

type state struct {
	calc     *Calculator
	decl     *ast.StructDecl
	slots    []Slot
	offset   uint32
	maxAlign uint32

	// Open bitfield storage unit, if any.
	unitOpen   bool
	unitWidth  uint32 // storage unit byte width (declared base type width)
	unitSigned bool
	unitUsed   uint32 // bits consumed so far
	unitOffset uint32
}

func (st *state) placeField(f *ast.FieldDecl) error {
	st.closeUnit()

	size, align, err := st.sizeAndAlign(f)
	if err != nil {
		return err
	}

	if st.decl.Packed {
		align = 1
	}
	if align > st.maxAlign {
		st.maxAlign = align
	}

	aligned := alignTo(st.offset, align)
	st.slots = append(st.slots, Slot{
		Field:   f,
		Offset:  aligned,
		Size:    size,
		Padding: aligned - st.offset,
	})
	st.offset = aligned + size
	return nil
}

// placeBitfield packs consecutive bitfields of the same declared base
// type into one storage unit, consuming bits from least-significant
// upward. A width that would overflow the open unit closes it and
// starts a new one at the next aligned boundary.
func (st *state) placeBitfield(f *ast.FieldDecl) error {
	base := f.Type.Desc
	width := uint32(f.BitWidth)

	if st.unitOpen && (st.unitWidth != base.Width || st.unitSigned != base.Signed) {
		// Cross-compiler behavior for mixed base types is
		// platform-defined; rejected rather than guessed.
		return errors.Unsupported(errors.PhaseLayout, f.Line, f.Col,
			"adjacent bitfields with differing base types")
	}

	if st.unitOpen && st.unitUsed+width <= st.unitWidth*8 {
		st.slots = append(st.slots, Slot{
			Field:     f,
			Offset:    st.unitOffset,
			BitOffset: st.unitUsed,
			BitWidth:  width,
		})
		st.unitUsed += width
		return nil
	}

	st.closeUnit()

	align := base.Width
	if st.decl.Packed {
		align = 1
	}
	if align > st.maxAlign {
		st.maxAlign = align
	}

	aligned := alignTo(st.offset, align)
	st.slots = append(st.slots, Slot{
		Field:     f,
		Offset:    aligned,
		Padding:   aligned - st.offset,
		BitOffset: 0,
		BitWidth:  width,
		UnitStart: true,
	})
	st.unitOpen = true
	st.unitWidth = base.Width
	st.unitSigned = base.Signed
	st.unitUsed = width
	st.unitOffset = aligned
	st.offset = aligned + base.Width
	return nil
}

func (st *state) closeUnit() {
	if !st.unitOpen {
		return
	}
	last := &st.slots[len(st.slots)-1]
	last.UnitEnd = true
	last.Size = st.unitWidth
	st.unitOpen = false
	st.unitUsed = 0
}

func (st *state) sizeAndAlign(f *ast.FieldDecl) (size, align uint32, err error) {
	t := &f.Type

	switch {
	case t.Pointers > 0 || t.Struct == nil:
		size = t.Desc.Width
		align = t.Desc.Width
	default:
		sub, serr := st.calc.Calculate(t.Struct)
		if serr != nil {
			return 0, 0, serr
		}
		size = sub.Size
		align = sub.Align
	}

	if size == 0 {
		return 0, 0, errors.New(errors.PhaseLayout, errors.KindLayoutConflict).
			Pos(f.Line, f.Col).
			Symbol(f.Name).
			Detail("field type has no resolved byte width").
			Build()
	}

	if t.IsArray {
		if t.ArrayLen <= 0 {
			return 0, 0, errors.New(errors.PhaseLayout, errors.KindLayoutConflict).
				Pos(f.Line, f.Col).
				Symbol(f.Name).
				Detail("array length %d is not positive", t.ArrayLen).
				Build()
		}
		// Reject before multiplying: the product of two valid int64s
		// can wrap and land under the limit as a tiny size.
		if t.ArrayLen > int64(^uint32(0))/int64(size) {
			return 0, 0, errors.New(errors.PhaseLayout, errors.KindLayoutConflict).
				Pos(f.Line, f.Col).
				Symbol(f.Name).
				Detail("array of %d elements overflows layout", t.ArrayLen).
				Build()
		}
		// Array alignment is the element's alignment.
		size = uint32(t.ArrayLen * int64(size))
	}

	return size, align, nil
}

func alignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}
