package compiler

import (
	"github.com/declbyte/declbyte/compiler/internal/emit"
	"github.com/declbyte/declbyte/compiler/internal/layout"
	"github.com/declbyte/declbyte/errors"
)

// Constant is one resolved named integer constant.
type Constant struct {
	Name  string
	Value int64
}

// FieldInfo is the resolved placement of one slot: real fields and
// explicit padding runs alike. Offsets always equal the sum of the
// Sizes of the preceding slots.
type FieldInfo struct {
	Name      string
	Type      string
	Kind      string
	Offset    uint32
	Size      uint32
	Signed    bool
	BitOffset uint32
	BitWidth  uint32
}

// StructInfo is the computed layout of one struct.
type StructInfo struct {
	Name   string
	Fields []FieldInfo
	Size   uint32
	Align  uint32
	Packed bool
}

// Describe compiles a source unit and returns the resolved constants and
// struct layouts as data instead of generated source. It shares the
// pipeline and the all-or-nothing error behavior of Compile.
func Describe(source string, opts Options) ([]Constant, []StructInfo, error) {
	table, unit, calc, err := run(source, &opts)
	if err != nil {
		return nil, nil, err
	}

	var consts []Constant
	for _, name := range table.Names() {
		v, ok := table.Value(name)
		if !ok {
			return nil, nil, errors.New(errors.PhaseGenerate, errors.KindUndefinedSymbol).
				Symbol(name).
				Detail("constant left unresolved").
				Build()
		}
		consts = append(consts, Constant{Name: name, Value: v})
	}

	var structs []StructInfo
	for _, s := range unit.Structs {
		info, ok := calc.Info(s)
		if !ok {
			return nil, nil, errors.New(errors.PhaseGenerate, errors.KindLayoutConflict).
				Symbol(s.Name).
				Detail("struct has no computed layout").
				Build()
		}
		structs = append(structs, StructInfo{
			Name:   s.Name,
			Fields: fieldInfos(info),
			Size:   info.Size,
			Align:  info.Align,
			Packed: s.Packed,
		})
	}
	return consts, structs, nil
}

func fieldInfos(info *layout.Info) []FieldInfo {
	var out []FieldInfo
	consumed := uint32(0)
	for i := range info.Slots {
		slot := &info.Slots[i]
		if slot.Padding > 0 {
			out = append(out, padInfo(slot.Offset-slot.Padding, slot.Padding))
			consumed += slot.Padding
		}
		fi := FieldInfo{
			Name:      slot.Field.Name,
			Offset:    slot.Offset,
			Size:      slot.Size,
			BitOffset: slot.BitOffset,
			BitWidth:  slot.BitWidth,
		}
		if slot.BitWidth > 0 {
			fi.Type = slot.Field.Type.Name
			fi.Kind = "bitfield"
			fi.Signed = slot.Field.Type.Desc.Signed
		} else {
			fi.Type = emit.GoType(&slot.Field.Type)
			fi.Kind = emit.KindOf(&slot.Field.Type)
			fi.Signed = emit.SignedOf(&slot.Field.Type)
		}
		out = append(out, fi)
		consumed += slot.Size
	}
	if trailing := info.Size - consumed; trailing > 0 {
		out = append(out, padInfo(consumed, trailing))
	}
	return out
}

func padInfo(offset, size uint32) FieldInfo {
	return FieldInfo{
		Name:   "_pad",
		Type:   "bytes",
		Kind:   "padding",
		Offset: offset,
		Size:   size,
	}
}
