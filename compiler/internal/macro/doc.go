// Package macro resolves named integer constants defined as arithmetic
// expressions over previously defined constants.
//
// Definitions are recorded in source order and resolved lazily with
// memoization. Resolution tracks the in-progress set, so a definition
// that references itself directly or transitively fails with a cyclic
// definition error; a reference to a name defined later in the source
// (that does not close a cycle) fails as undefined, preserving
// single-forward-pass semantics.
//
// All arithmetic is 64-bit integer arithmetic with standard precedence
// and left-to-right associativity. Division by a zero-valued
// subexpression is an error.
//
// This package is internal to the compiler.
package macro
