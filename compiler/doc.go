// Package compiler translates C-style struct declarations and the
// preprocessor constants they depend on into Go layout descriptors that
// preserve exact binary memory layout.
//
// # Pipeline
//
// One compilation unit flows through a single logical pass:
//
//	text → tokens → (constant table built incrementally) →
//	declaration tree → per-struct layout → generated Go source
//
// The stages map onto internal packages:
//
//	internal/token    tokenizer
//	internal/macro    constant-expression evaluator and symbol table
//	internal/parser   struct/field parser
//	internal/ctype    C keyword → fixed-width descriptor mapping
//	internal/layout   offset, padding, and bitfield packing
//	internal/emit     Go source generation
//
// # Layout model
//
// Natural mode reproduces a C compiler's rules: each member is placed at
// the next multiple of its alignment (scalars: their byte width; arrays:
// the element alignment; nested structs: their own computed alignment),
// struct alignment is the maximum member alignment, and total size is
// rounded up to it. Packed mode overrides every alignment to 1 and never
// inserts padding.
//
// Consecutive bitfields of the same declared base type pack into one
// storage unit sized to that type, consuming bits from least-significant
// upward; a width that would overflow the unit starts a new unit at the
// next aligned boundary.
//
// # What is rejected
//
// Unknown type keywords, unions, function pointers, variable-length
// arrays, forward or self struct references by value, preprocessor
// conditionals, and adjacent bitfields of differing base types all abort
// the unit with a structured error. Nothing is approximated: a wrong
// guess about layout would corrupt decoded data undetectably.
//
// # Errors and atomicity
//
// All errors are *errors.Error values carrying phase, kind, and source
// position. Compilation is all-or-nothing per unit; no partial output is
// ever produced.
package compiler
