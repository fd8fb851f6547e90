// Package layout simulates C struct layout: byte offsets, padding, and
// bitfield packing.
//
// Given an ordered field list and a packing mode it produces the ordered
// slot list plus the struct's total size and alignment, byte-exact with
// what a C compiler would produce for the target model. Layouts are
// memoized per struct and never mutated after computation.
//
// This package is internal to the compiler.
package layout
