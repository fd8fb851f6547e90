package ast

import "github.com/declbyte/declbyte/compiler/internal/ctype"

// TypeSpec describes the declared type of one field after keyword
// resolution. Exactly one of Desc/Struct is authoritative: struct-by-value
// fields carry Struct, everything else (scalars, enums, pointers of any
// base) carries Desc.
type TypeSpec struct {
	Struct   *StructDecl
	Name     string // source spelling of the base type
	Desc     ctype.Desc
	Pointers int   // indirection depth; >0 means opaque address-sized value
	ArrayLen int64 // resolved element count, valid when IsArray
	IsArray  bool
}

// FieldDecl is one field of a struct. Index preserves declaration order,
// which determines byte layout downstream.
type FieldDecl struct {
	Name     string
	Type     TypeSpec
	BitWidth int // 0 for non-bitfields
	Index    int
	Line     int
	Col      int
}

// StructDecl is a fully parsed struct. Fields keep source order. Layout
// results live in the layout calculator's cache, keyed by this node.
type StructDecl struct {
	Name   string
	Fields []FieldDecl
	Packed bool
	Line   int
	Col    int
}

// Unit is the declaration tree of one compilation unit. Structs appear
// in declaration order, which is also dependency order: a struct can
// only reference structs parsed before it.
type Unit struct {
	Structs []*StructDecl
}
