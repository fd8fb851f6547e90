// Package emit renders resolved constants and struct layouts as Go
// source.
//
// Every run of inserted padding becomes an explicit anonymous padding
// field, so the emitted descriptor reconstructs the computed layout
// field by field without relying on the consumer's own alignment rules.
//
// This package is internal to the compiler.
package emit
