package macro

import (
	"errors"
	"testing"

	"github.com/declbyte/declbyte/compiler/internal/token"
	cerrors "github.com/declbyte/declbyte/errors"
)

func mustTokenize(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := token.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	return toks
}

func define(t *testing.T, tbl *Table, name, src string) {
	t.Helper()
	expr, err := Parse(mustTokenize(t, src))
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	if err := tbl.Define(name, expr, 1, 1); err != nil {
		t.Fatalf("Define(%q): %v", name, err)
	}
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want int64
	}{
		{"12", 12},
		{"0xE5", 229},
		{"480U", 480},
		{"8 * 512", 4096},
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 - 4 - 3", 3},      // left associative
		{"100 / 10 / 5", 2},    // left associative
		{"7 / 2", 3},           // integer division
		{"-4 + 10", 6},
		{"2 * -3", -6},
		{"-(2 + 3)", -5},
	}

	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			tbl := NewTable()
			expr, err := Parse(mustTokenize(t, tc.expr))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			got, err := tbl.Eval(expr)
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"1 +",
		"* 2",
		"(1 + 2",
		"1 2",
		"+",
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			if _, err := Parse(mustTokenize(t, src)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

// Resolution over an acyclic dependency graph must equal direct
// evaluation of the substituted expression.
func TestResolveChain(t *testing.T) {
	tbl := NewTable()
	define(t, tbl, "NUMBER_FAT", "12")
	define(t, tbl, "SECTOR_PER_FAT", "4")
	define(t, tbl, "FAT_REGION_SIZE", "NUMBER_FAT * SECTOR_PER_FAT")
	define(t, tbl, "NUMBER_ROOT_ENTRIES", "24")
	define(t, tbl, "BYTES_PER_SEC", "64")
	define(t, tbl, "ROOT_DIR_SIZE", "NUMBER_ROOT_ENTRIES * BYTES_PER_SEC")
	define(t, tbl, "NUMBER_CLUSTER", "128")
	define(t, tbl, "SECTOR_PER_CLUSTER", "4")
	define(t, tbl, "DATA_SIZE", "NUMBER_CLUSTER * SECTOR_PER_CLUSTER")

	if err := tbl.ResolveAll(); err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}

	want := map[string]int64{
		"FAT_REGION_SIZE": 48,
		"ROOT_DIR_SIZE":   1536,
		"DATA_SIZE":       512,
	}
	for name, v := range want {
		got, ok := tbl.Value(name)
		if !ok {
			t.Fatalf("%s not resolved", name)
		}
		if got != v {
			t.Errorf("%s: got %d, want %d", name, got, v)
		}
	}
}

func TestResolveUndefined(t *testing.T) {
	tbl := NewTable()
	define(t, tbl, "A", "MISSING + 1")

	err := tbl.ResolveAll()
	if !errors.Is(err, &cerrors.Error{Phase: cerrors.PhaseMacro, Kind: cerrors.KindUndefinedSymbol}) {
		t.Errorf("got %v, want undefined_symbol", err)
	}
}

// A non-cyclic reference to a macro defined later in the source stays
// undefined: resolution is a single forward pass.
func TestResolveForwardReference(t *testing.T) {
	tbl := NewTable()
	define(t, tbl, "A", "B + 1")
	define(t, tbl, "B", "2")

	err := tbl.ResolveAll()
	if !errors.Is(err, &cerrors.Error{Phase: cerrors.PhaseMacro, Kind: cerrors.KindUndefinedSymbol}) {
		t.Errorf("got %v, want undefined_symbol", err)
	}
}

func TestResolveCycle(t *testing.T) {
	t.Run("mutual", func(t *testing.T) {
		tbl := NewTable()
		define(t, tbl, "A", "B + 1")
		define(t, tbl, "B", "A + 1")

		err := tbl.ResolveAll()
		if !errors.Is(err, &cerrors.Error{Phase: cerrors.PhaseMacro, Kind: cerrors.KindCyclicDefinition}) {
			t.Errorf("got %v, want cyclic_definition", err)
		}
	})

	t.Run("self", func(t *testing.T) {
		tbl := NewTable()
		define(t, tbl, "A", "A + 1")

		err := tbl.ResolveAll()
		if !errors.Is(err, &cerrors.Error{Phase: cerrors.PhaseMacro, Kind: cerrors.KindCyclicDefinition}) {
			t.Errorf("got %v, want cyclic_definition", err)
		}
	})

	t.Run("transitive", func(t *testing.T) {
		tbl := NewTable()
		define(t, tbl, "A", "B * 2")
		define(t, tbl, "B", "C * 2")
		define(t, tbl, "C", "A * 2")

		err := tbl.ResolveAll()
		if !errors.Is(err, &cerrors.Error{Phase: cerrors.PhaseMacro, Kind: cerrors.KindCyclicDefinition}) {
			t.Errorf("got %v, want cyclic_definition", err)
		}
	})
}

func TestResolveDivideByZero(t *testing.T) {
	tests := []struct {
		name string
		defs [][2]string
	}{
		{"literal zero", [][2]string{{"A", "1 / 0"}}},
		{"zero subexpression", [][2]string{{"A", "10 / (3 - 3)"}}},
		{"zero macro", [][2]string{{"Z", "0"}, {"A", "5 / Z"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tbl := NewTable()
			for _, d := range tc.defs {
				define(t, tbl, d[0], d[1])
			}
			err := tbl.ResolveAll()
			if !errors.Is(err, &cerrors.Error{Phase: cerrors.PhaseMacro, Kind: cerrors.KindDivideByZero}) {
				t.Errorf("got %v, want divide_by_zero", err)
			}
		})
	}
}

func TestDefineDuplicate(t *testing.T) {
	tbl := NewTable()
	define(t, tbl, "A", "1")

	expr, err := Parse(mustTokenize(t, "2"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	err = tbl.Define("A", expr, 2, 1)
	if !errors.Is(err, &cerrors.Error{Phase: cerrors.PhaseParse, Kind: cerrors.KindDuplicateSymbol}) {
		t.Errorf("got %v, want duplicate_symbol", err)
	}
}

func TestValueMemoized(t *testing.T) {
	tbl := NewTable()
	define(t, tbl, "A", "6 * 7")

	if _, ok := tbl.Value("A"); ok {
		t.Fatal("value should not be resolved before first use")
	}
	v, err := tbl.Resolve("A", 1, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != 42 {
		t.Errorf("got %d, want 42", v)
	}
	if got, ok := tbl.Value("A"); !ok || got != 42 {
		t.Errorf("memoized value: got %d,%v", got, ok)
	}
}
