package declbyte

import "github.com/declbyte/declbyte/compiler"

// Options configures one compilation. See compiler.Options.
type Options = compiler.Options

// Packing selects the default layout mode.
type Packing = compiler.Packing

const (
	Natural = compiler.Natural
	Packed  = compiler.Packed
)

// Compile translates a C-style header into Go layout descriptors using
// default options: 8-byte pointers, natural packing.
func Compile(source string) (string, error) {
	return compiler.Compile(source, Options{})
}

// CompileWithOptions is Compile with explicit target options.
func CompileWithOptions(source string, opts Options) (string, error) {
	return compiler.Compile(source, opts)
}
