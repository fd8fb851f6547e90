package emit

import (
	"fmt"
	"strings"

	"github.com/declbyte/declbyte/compiler/internal/ast"
	"github.com/declbyte/declbyte/compiler/internal/ctype"
	"github.com/declbyte/declbyte/compiler/internal/layout"
	"github.com/declbyte/declbyte/compiler/internal/macro"
	"github.com/declbyte/declbyte/errors"
)

// Generator renders one compilation unit as Go source. Output is built
// entirely in memory and returned only on success, so a failing unit
// never produces partial text.
type Generator struct {
	table *macro.Table
	calc  *layout.Calculator
	pkg   string
}

func NewGenerator(table *macro.Table, calc *layout.Calculator, pkg string) *Generator {
	if pkg == "" {
		pkg = "layout"
	}
	return &Generator{table: table, calc: calc, pkg: pkg}
}

const header = "// Code generated by declbyte. DO NOT EDIT.\n"

const fieldType = `// Field describes one slot of a generated record. Slots appear in
// declaration order and are self-describing: every slot's Offset equals
// the sum of the Sizes of all slots before it, so no alignment inference
// is needed to walk the raw bytes. Bitfield slots share their storage
// unit's Offset; the unit's byte Size is carried by its last slot.
type Field struct {
	Name      string
	Type      string
	Kind      string
	Offset    uint32
	Size      uint32
	Signed    bool
	BitOffset uint32
	BitWidth  uint32
}
`

// Generate emits named constants in definition order followed by one
// descriptor per struct in declaration order (which is dependency
// order).
func (g *Generator) Generate(unit *ast.Unit) (string, error) {
	var b strings.Builder

	b.WriteString(header)
	b.WriteString("\npackage ")
	b.WriteString(g.pkg)
	b.WriteString("\n\n")
	b.WriteString(fieldType)

	if names := g.table.Names(); len(names) > 0 {
		b.WriteString("\nconst (\n")
		for _, name := range names {
			v, ok := g.table.Value(name)
			if !ok {
				return "", errors.New(errors.PhaseGenerate, errors.KindUndefinedSymbol).
					Symbol(name).
					Detail("constant left unresolved").
					Build()
			}
			fmt.Fprintf(&b, "\t%s = %d\n", name, v)
		}
		b.WriteString(")\n")
	}

	for _, s := range unit.Structs {
		if err := g.generateStruct(&b, s); err != nil {
			return "", err
		}
	}

	return b.String(), nil
}

func (g *Generator) generateStruct(b *strings.Builder, s *ast.StructDecl) error {
	info, ok := g.calc.Info(s)
	if !ok {
		return errors.New(errors.PhaseGenerate, errors.KindLayoutConflict).
			Symbol(s.Name).
			Detail("struct has no computed layout").
			Build()
	}

	name := ExportName(s.Name)

	fmt.Fprintf(b, "\n// %s is %d bytes, %d-byte aligned.\n", name, info.Size, info.Align)
	fmt.Fprintf(b, "type %s struct {\n", name)
	padIdx, bitsIdx := 0, 0
	for i := range info.Slots {
		slot := &info.Slots[i]
		if slot.Padding > 0 {
			fmt.Fprintf(b, "\tPad%d [%d]byte\n", padIdx, slot.Padding)
			padIdx++
		}
		switch {
		case slot.BitWidth > 0 && slot.UnitStart:
			fmt.Fprintf(b, "\tBits%d uint%d\n", bitsIdx, unitSize(info, i)*8)
			bitsIdx++
		case slot.BitWidth > 0:
			// packed into the unit opened above
		default:
			fmt.Fprintf(b, "\t%s %s\n", ExportName(slot.Field.Name), GoType(&slot.Field.Type))
		}
	}
	if trailing := info.Size - usedBytes(info); trailing > 0 {
		fmt.Fprintf(b, "\tPad%d [%d]byte\n", padIdx, trailing)
	}
	b.WriteString("}\n")

	if err := g.generateFieldTable(b, s, info, name); err != nil {
		return err
	}

	fmt.Fprintf(b, "\nconst (\n\t%sSize  = %d\n\t%sAlign = %d\n)\n", name, info.Size, name, info.Align)
	return nil
}

func (g *Generator) generateFieldTable(b *strings.Builder, s *ast.StructDecl, info *layout.Info, name string) error {
	fmt.Fprintf(b, "\nvar %sFields = []Field{\n", name)

	consumed := uint32(0)
	padIdx := 0
	for i := range info.Slots {
		slot := &info.Slots[i]

		if slot.Padding > 0 {
			fmt.Fprintf(b, "\t{Name: %q, Type: %q, Kind: %q, Offset: %d, Size: %d},\n",
				fmt.Sprintf("_pad%d", padIdx), fmt.Sprintf("[%d]byte", slot.Padding),
				"padding", slot.Offset-slot.Padding, slot.Padding)
			padIdx++
			consumed += slot.Padding
		}

		if consumed != slot.Offset {
			return errors.New(errors.PhaseGenerate, errors.KindLayoutConflict).
				Symbol(s.Name + "." + slot.Field.Name).
				Detail("slot offset %d does not match consumed bytes %d", slot.Offset, consumed).
				Build()
		}

		if slot.BitWidth > 0 {
			fmt.Fprintf(b, "\t{Name: %q, Type: %q, Kind: %q, Offset: %d, Size: %d, Signed: %v, BitOffset: %d, BitWidth: %d},\n",
				slot.Field.Name, slot.Field.Type.Name, "bitfield",
				slot.Offset, slot.Size, slot.Field.Type.Desc.Signed,
				slot.BitOffset, slot.BitWidth)
		} else {
			fmt.Fprintf(b, "\t{Name: %q, Type: %q, Kind: %q, Offset: %d, Size: %d, Signed: %v},\n",
				slot.Field.Name, GoType(&slot.Field.Type), KindOf(&slot.Field.Type),
				slot.Offset, slot.Size, SignedOf(&slot.Field.Type))
		}
		consumed += slot.Size
	}

	if trailing := info.Size - consumed; trailing > 0 {
		fmt.Fprintf(b, "\t{Name: %q, Type: %q, Kind: %q, Offset: %d, Size: %d},\n",
			fmt.Sprintf("_pad%d", padIdx), fmt.Sprintf("[%d]byte", trailing),
			"padding", consumed, trailing)
	}

	b.WriteString("}\n")
	return nil
}

// unitSize returns the byte width of the bitfield storage unit opened at
// slot i. The closing slot of the unit carries it.
func unitSize(info *layout.Info, i int) uint32 {
	for ; i < len(info.Slots); i++ {
		if info.Slots[i].UnitEnd {
			return info.Slots[i].Size
		}
	}
	return 0
}

// usedBytes is the offset one past the last consumed byte, before
// trailing padding.
func usedBytes(info *layout.Info) uint32 {
	used := uint32(0)
	for i := range info.Slots {
		end := info.Slots[i].Offset + info.Slots[i].Size
		if end > used {
			used = end
		}
	}
	return used
}

// KindOf classifies a field type for descriptor output.
func KindOf(t *ast.TypeSpec) string {
	switch {
	case t.IsArray:
		return "array"
	case t.Struct != nil:
		return "struct"
	case t.Desc.Kind == ctype.KindPointer:
		return "pointer"
	default:
		return "scalar"
	}
}

// SignedOf reports descriptor signedness; composite types are unsigned.
func SignedOf(t *ast.TypeSpec) bool {
	if t.Struct != nil {
		return false
	}
	return t.Desc.Signed
}

// GoType renders the Go spelling of a field's type.
func GoType(t *ast.TypeSpec) string {
	var elem string
	switch {
	case t.Struct != nil:
		elem = ExportName(t.Struct.Name)
	case t.Desc.Float && t.Desc.Width == 4:
		elem = "float32"
	case t.Desc.Float:
		elem = "float64"
	case t.Desc.Signed:
		elem = fmt.Sprintf("int%d", t.Desc.Width*8)
	default:
		elem = fmt.Sprintf("uint%d", t.Desc.Width*8)
	}
	if t.IsArray {
		return fmt.Sprintf("[%d]%s", t.ArrayLen, elem)
	}
	return elem
}

// ExportName converts a C identifier to an exported Go name: a trailing
// "_t" is dropped, snake segments are capitalized and joined.
func ExportName(c string) string {
	c = strings.TrimSuffix(c, "_t")
	parts := strings.Split(c, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	if b.Len() == 0 {
		return "X"
	}
	return b.String()
}
