package declbyte

import (
	"strings"
	"testing"
)

func TestCompile(t *testing.T) {
	out, err := Compile(`
#define N 8
typedef struct { uint8_t data[N]; uint32_t crc; } frame_t;
`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, want := range []string{"package layout", "type Frame struct {", "\tFrameSize  = 12"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestCompileWithOptions(t *testing.T) {
	out, err := CompileWithOptions(
		`typedef struct { uint8_t a; uint16_t b; } s_t;`,
		Options{DefaultPacking: Packed, PackageName: "wire"},
	)
	if err != nil {
		t.Fatalf("CompileWithOptions: %v", err)
	}
	if !strings.Contains(out, "package wire\n") {
		t.Error("package name not honored")
	}
	if !strings.Contains(out, "\tSSize  = 3") {
		t.Errorf("packed size wrong:\n%s", out)
	}
}
