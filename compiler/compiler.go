package compiler

import (
	"go.uber.org/zap"

	"github.com/declbyte/declbyte/compiler/internal/ast"
	"github.com/declbyte/declbyte/compiler/internal/emit"
	"github.com/declbyte/declbyte/compiler/internal/layout"
	"github.com/declbyte/declbyte/compiler/internal/macro"
	"github.com/declbyte/declbyte/compiler/internal/parser"
	"github.com/declbyte/declbyte/compiler/internal/token"
)

// Packing selects the default layout mode for structs without an
// explicit marker.
type Packing int

const (
	// Natural inserts padding so every member sits on a multiple of
	// its alignment.
	Natural Packing = iota
	// Packed overrides every member alignment to 1; no padding is
	// ever inserted.
	Packed
)

func (p Packing) String() string {
	if p == Packed {
		return "packed"
	}
	return "natural"
}

// Options configures one compilation.
type Options struct {
	// TargetWordSize is the pointer width in bytes, 4 or 8.
	// Defaults to 8.
	TargetWordSize int
	// DefaultPacking applies to structs without a struct-level
	// marker. Defaults to Natural.
	DefaultPacking Packing
	// PackageName names the generated Go package. Defaults to
	// "layout".
	PackageName string
}

// Compile translates one source unit of constant definitions and struct
// declarations into a generated unit of layout descriptors. Output is
// all-or-nothing: on any error the returned string is empty.
func Compile(source string, opts Options) (string, error) {
	table, unit, calc, err := run(source, &opts)
	if err != nil {
		return "", err
	}
	return emit.NewGenerator(table, calc, opts.PackageName).Generate(unit)
}

// run executes the pipeline up to (and including) layout calculation.
func run(source string, opts *Options) (*macro.Table, *ast.Unit, *layout.Calculator, error) {
	if opts.TargetWordSize == 0 {
		opts.TargetWordSize = 8
	}

	toks, err := token.Tokenize(source)
	if err != nil {
		return nil, nil, nil, err
	}
	Logger().Debug("tokenized source", zap.Int("tokens", len(toks)))

	table := macro.NewTable()
	p := parser.New(toks, table, parser.Config{
		WordSize:      opts.TargetWordSize,
		DefaultPacked: opts.DefaultPacking == Packed,
	})
	unit, err := p.Parse()
	if err != nil {
		return nil, nil, nil, err
	}

	// Resolve every constant, used or not, so that a broken definition
	// aborts the unit. After this the table is immutable.
	if err := table.ResolveAll(); err != nil {
		return nil, nil, nil, err
	}
	Logger().Debug("resolved constants",
		zap.Int("constants", len(table.Names())),
		zap.Int("structs", len(unit.Structs)))

	// Declaration order is dependency order, so every nested struct
	// is already cached when its parent is calculated.
	calc := layout.NewCalculator()
	for _, s := range unit.Structs {
		info, err := calc.Calculate(s)
		if err != nil {
			return nil, nil, nil, err
		}
		Logger().Debug("computed layout",
			zap.String("struct", s.Name),
			zap.Uint32("size", info.Size),
			zap.Uint32("align", info.Align))
	}

	return table, unit, calc, nil
}
