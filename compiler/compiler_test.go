package compiler

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/declbyte/declbyte/errors"
)

// A cut-down FAT-style boot sector: macros feeding array lengths, a
// packed on-disk struct, a bitfield date stamp, and an enum.
const fatSource = `
#define BYTES_PER_SEC 64
#define NUMBER_FAT 12
#define SECTOR_PER_FAT 4
#define FAT_REGION_SIZE NUMBER_FAT * SECTOR_PER_FAT
#define NUMBER_ROOT_ENTRIES 24
#define ROOT_DIR_SIZE NUMBER_ROOT_ENTRIES * BYTES_PER_SEC
#define NUMBER_CLUSTER 128
#define SECTOR_PER_CLUSTER 4
#define DATA_SIZE NUMBER_CLUSTER * SECTOR_PER_CLUSTER

typedef enum {
	MEDIA_FIXED = 0xF8,
	MEDIA_REMOVABLE,
} media_t;

typedef struct __attribute__((packed)) {
	uint8_t jump[3];
	uint16_t bytes_per_sector;
	uint8_t sectors_per_cluster;
	uint16_t reserved_sectors;
	media_t media;
} boot_sector_t;

typedef struct {
	uint16_t day : 5;
	uint16_t month : 4;
	uint16_t year : 7;
} date_t;

typedef struct {
	boot_sector_t boot;
	uint8_t fat[FAT_REGION_SIZE];
	date_t modified;
} volume_t;
`

func TestCompile(t *testing.T) {
	out, err := Compile(fatSource, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	wantLines := []string{
		"// Code generated by declbyte. DO NOT EDIT.",
		"package layout",
		"\tBYTES_PER_SEC = 64",
		"\tFAT_REGION_SIZE = 48",
		"\tROOT_DIR_SIZE = 1536",
		"\tDATA_SIZE = 512",
		"\tMEDIA_FIXED = 248",
		"\tMEDIA_REMOVABLE = 249",
		// packed: 3+2+1+2+4 bytes, no padding anywhere
		"// BootSector is 12 bytes, 1-byte aligned.",
		"\tBootSectorSize  = 12",
		"\tBootSectorAlign = 1",
		"// Date is 2 bytes, 2-byte aligned.",
		"\tBits0 uint16",
		// volume: boot at 0 (12), fat at 12 (48), date at 60 (2), size 62
		"// Volume is 62 bytes, 2-byte aligned.",
		`{Name: "boot", Type: "BootSector", Kind: "struct", Offset: 0, Size: 12, Signed: false},`,
		`{Name: "fat", Type: "[48]uint8", Kind: "array", Offset: 12, Size: 48, Signed: false},`,
		`{Name: "modified", Type: "Date", Kind: "struct", Offset: 60, Size: 2, Signed: false},`,
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if t.Failed() {
		t.Logf("full output:\n%s", out)
	}
}

func TestCompileIdempotent(t *testing.T) {
	a, err := Compile(fatSource, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	b, err := Compile(fatSource, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if a != b {
		t.Error("two compilations of the same source differ")
	}
}

func TestCompileWordSize(t *testing.T) {
	src := `typedef struct { char *p; uint8_t b; } s_t;`

	out32, err := Compile(src, Options{TargetWordSize: 4})
	if err != nil {
		t.Fatalf("Compile(4): %v", err)
	}
	if !strings.Contains(out32, "\tSSize  = 8") {
		t.Errorf("32-bit size wrong:\n%s", out32)
	}

	out64, err := Compile(src, Options{TargetWordSize: 8})
	if err != nil {
		t.Fatalf("Compile(8): %v", err)
	}
	if !strings.Contains(out64, "\tSSize  = 16") {
		t.Errorf("64-bit size wrong:\n%s", out64)
	}
}

func TestCompileDefaultPacking(t *testing.T) {
	src := `typedef struct { uint8_t a; uint32_t b; } s_t;`

	out, err := Compile(src, Options{DefaultPacking: Packed})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(out, "\tSSize  = 5") {
		t.Errorf("packed default not applied:\n%s", out)
	}
}

func TestCompilePackageName(t *testing.T) {
	out, err := Compile(`typedef struct { uint8_t a; } s_t;`, Options{PackageName: "bootfs"})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(out, "package bootfs\n") {
		t.Errorf("package name not honored:\n%s", out)
	}
}

// On any error the output must be empty, even when earlier declarations
// were fine.
func TestCompileAllOrNothing(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		phase errors.Phase
		kind  errors.Kind
	}{
		{
			name:  "lex error after valid struct",
			src:   "typedef struct { uint8_t a; } s_t;\nint @;",
			phase: errors.PhaseLex,
			kind:  errors.KindBadToken,
		},
		{
			name:  "unused broken macro",
			src:   "#define BROKEN 1 / 0\ntypedef struct { uint8_t a; } s_t;",
			phase: errors.PhaseMacro,
			kind:  errors.KindDivideByZero,
		},
		{
			name:  "undefined in unused macro",
			src:   "#define BROKEN MISSING + 1\ntypedef struct { uint8_t a; } s_t;",
			phase: errors.PhaseMacro,
			kind:  errors.KindUndefinedSymbol,
		},
		{
			name:  "unsupported construct",
			src:   "typedef struct { uint8_t a; } s_t;\nunion u { int a; };",
			phase: errors.PhaseParse,
			kind:  errors.KindUnsupported,
		},
		{
			name:  "mixed bitfield bases",
			src:   "typedef struct { uint8_t a; } s_t;\ntypedef struct { uint8_t a:4; uint16_t b:4; } m_t;",
			phase: errors.PhaseLayout,
			kind:  errors.KindUnsupported,
		},
		{
			name:  "empty struct",
			src:   "typedef struct { uint8_t a; } s_t;\ntypedef struct { } e_t;",
			phase: errors.PhaseLayout,
			kind:  errors.KindLayoutConflict,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Compile(tc.src, Options{})
			if out != "" {
				t.Errorf("output not empty on error: %q", out)
			}
			if !stderrors.Is(err, &errors.Error{Phase: tc.phase, Kind: tc.kind}) {
				t.Errorf("got %v, want %s/%s", err, tc.phase, tc.kind)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	consts, structs, err := Describe(fatSource, Options{})
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}

	values := make(map[string]int64, len(consts))
	for _, c := range consts {
		values[c.Name] = c.Value
	}
	if values["FAT_REGION_SIZE"] != 48 {
		t.Errorf("FAT_REGION_SIZE = %d, want 48", values["FAT_REGION_SIZE"])
	}
	if values["MEDIA_REMOVABLE"] != 249 {
		t.Errorf("MEDIA_REMOVABLE = %d, want 249", values["MEDIA_REMOVABLE"])
	}

	if len(structs) != 3 {
		t.Fatalf("struct count: got %d, want 3", len(structs))
	}
	boot := structs[0]
	if boot.Name != "boot_sector_t" || boot.Size != 12 || boot.Align != 1 || !boot.Packed {
		t.Errorf("boot: %+v", boot)
	}
	volume := structs[2]
	if volume.Name != "volume_t" || volume.Size != 62 || volume.Align != 2 {
		t.Errorf("volume: %+v", volume)
	}

	// Field rows, padding included, must tile the struct exactly.
	for _, s := range structs {
		consumed := uint32(0)
		for _, f := range s.Fields {
			if f.Offset != consumed {
				t.Errorf("%s.%s: offset %d, consumed %d", s.Name, f.Name, f.Offset, consumed)
			}
			consumed += f.Size
		}
		if consumed != s.Size {
			t.Errorf("%s: fields cover %d of %d bytes", s.Name, consumed, s.Size)
		}
	}
}

func TestDescribeError(t *testing.T) {
	consts, structs, err := Describe(`struct s { unknown_t a; };`, Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if consts != nil || structs != nil {
		t.Error("results not nil on error")
	}
}
