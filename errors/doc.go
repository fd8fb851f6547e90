// Package errors provides structured error types for the declbyte compiler.
//
// Errors are categorized by Phase (which stage failed) and Kind (error
// category). The Error type carries the offending token's source position
// and, where applicable, the symbol name involved.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMacro, errors.KindUndefinedSymbol).
//		Pos(12, 9).
//		Symbol("SECTOR_PER_FAT").
//		Detail("referenced before definition").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UndefinedSymbol(12, 9, "SECTOR_PER_FAT")
//	err := errors.LayoutConflict(30, 1, "empty struct")
//
// All errors implement the standard error interface and support errors.Is/As.
// Is matches on Phase and Kind, so callers can classify failures without
// string inspection:
//
//	errors.Is(err, &errors.Error{Phase: errors.PhaseMacro, Kind: errors.KindCyclicDefinition})
package errors
