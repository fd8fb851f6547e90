// Package declbyte compiles C-style structure declarations into Go
// data-layout descriptors that preserve exact binary memory layout, so
// raw bytes produced by hardware or firmware can be decoded without a C
// toolchain.
//
// # Architecture Overview
//
// The library is organized into a small set of packages:
//
//	declbyte/            Root package with the Compile facade
//	├── compiler/        Compilation pipeline (tokenizer, parser, layout, emitter)
//	└── errors/          Structured error types with phase, kind, and position
//
// # Quick Start
//
//	out, err := declbyte.Compile(`
//		#define NUMBER_FAT 12
//		#define SECTOR_PER_FAT 4
//		#define FAT_REGION_SIZE NUMBER_FAT * SECTOR_PER_FAT
//
//		typedef struct {
//			uint8_t  id;
//			uint32_t region[FAT_REGION_SIZE];
//		} fat_header_t;
//	`)
//
// The output is a Go source file: one named constant per resolved macro,
// and per struct a Go type with explicit padding fields plus a field
// descriptor table (name, offset, size, signedness, kind) that makes the
// layout self-describing.
//
// # Fidelity over convenience
//
// The compiler reproduces natural C layout (alignment, padding, bitfield
// packing) byte for byte, and rejects every construct it cannot model
// exactly - unions, function pointers, variable-length arrays,
// preprocessor conditionals - rather than approximating. A compilation
// unit either produces complete output or none.
package declbyte
