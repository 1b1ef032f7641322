package codegen_test

import (
	"strings"
	"testing"

	"github.com/skx/minic/codegen"
	"github.com/skx/minic/lexer"
	"github.com/skx/minic/parser"
	"github.com/skx/minic/semantics"
	"github.com/skx/minic/tac"
)

func assemble(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.ParseProgram(lexer.New(src))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	a := semantics.New()
	if err := a.Analyze(prog); err != nil {
		t.Fatalf("unexpected semantic error: %v", err)
	}
	gen := tac.NewGenerator(a.Global())
	instrs, err := gen.Generate(prog)
	if err != nil {
		t.Fatalf("unexpected generation error: %v", err)
	}
	out, err := codegen.NewAssembler(a.Global(), gen.PoolTable()).Assemble(instrs)
	if err != nil {
		t.Fatalf("unexpected codegen error: %v", err)
	}
	return out
}

func TestPreambleAndFunctionLabel(t *testing.T) {
	out := assemble(t, `fn main() -> int { return 0; }`)
	if !strings.Contains(out, "__TEXT,__text") {
		t.Errorf("expected the Mach-O text-section preamble, got:\n%s", out)
	}
	if !strings.Contains(out, "_main:") {
		t.Errorf("expected a leading-underscore _main label, got:\n%s", out)
	}
	if !strings.Contains(out, "pushq %rbp") || !strings.Contains(out, "popq %rbp") {
		t.Errorf("expected a push/pop %%rbp frame, got:\n%s", out)
	}
}

func TestStackFrameAlignedTo16(t *testing.T) {
	out := assemble(t, `
		fn f() -> int {
			int a = 1;
			int b = 2;
			int c = 3;
			return a + b + c;
		}
	`)
	idx := strings.Index(out, "subq $")
	if idx < 0 {
		t.Fatalf("expected a subq $S, %%rsp prologue, got:\n%s", out)
	}
	rest := out[idx+len("subq $"):]
	end := strings.IndexByte(rest, ',')
	if end < 0 {
		t.Fatalf("malformed subq operand in:\n%s", out)
	}
	size := rest[:end]
	n := 0
	for _, r := range size {
		if r < '0' || r > '9' {
			t.Fatalf("non-numeric stack size %q", size)
		}
		n = n*10 + int(r-'0')
	}
	if n%16 != 0 {
		t.Errorf("expected the frame size to be 16-byte aligned, got %d", n)
	}
}

func TestIfElseUsesCmpAndSetg(t *testing.T) {
	out := assemble(t, `
		fn main() -> int {
			int a = 5;
			int b = 3;
			if (a > b) {
				return 1;
			} else {
				return 0;
			}
		}
	`)
	if !strings.Contains(out, "cmpl") || !strings.Contains(out, "setg") {
		t.Errorf("expected cmpl/setg for a signed '>' comparison, got:\n%s", out)
	}
}

func TestForLoopEmitsBackEdgeAndEndLabel(t *testing.T) {
	out := assemble(t, `
		fn main() -> int {
			int s = 0;
			for (int i = 0; i < 10; i = i + 1) {
				s = s + i;
			}
			return s;
		}
	`)
	if !strings.Contains(out, "jmp LLloop1_start") && !strings.Contains(out, "jmp LLloop") {
		t.Errorf("expected a back-edge jmp to the loop's start label, got:\n%s", out)
	}
	if !strings.Contains(out, "_end:") {
		t.Errorf("expected a loop end label, got:\n%s", out)
	}
}

func TestGlobalEmitsDataSectionWithRIPLoad(t *testing.T) {
	out := assemble(t, `
		static int g = 7;
		fn main() -> int { return g; }
	`)
	if !strings.Contains(out, "\n\t.data") {
		t.Errorf("expected a .data section, got:\n%s", out)
	}
	if !strings.Contains(out, ".long 7") {
		t.Errorf("expected '.long 7' for the initializer, got:\n%s", out)
	}
	if !strings.Contains(out, "(%rip)") {
		t.Errorf("expected a RIP-relative load of the static global, got:\n%s", out)
	}
}

func TestStaticLinkageOmitsGlobalDirective(t *testing.T) {
	out := assemble(t, `
		static int g = 7;
		static fn helper() -> int { return 1; }
		fn main() -> int { return g + helper(); }
	`)
	if strings.Contains(out, ".global _g") {
		t.Errorf("static global %q must not get a .global directive, got:\n%s", "_g", out)
	}
	if strings.Contains(out, ".global _helper") {
		t.Errorf("static function %q must not get a .global directive, got:\n%s", "_helper", out)
	}
	if !strings.Contains(out, ".global _main") {
		t.Errorf("expected the externally-linked _main to keep its .global directive, got:\n%s", out)
	}
}

func TestArrayInitAndIndexingUsesStrideFour(t *testing.T) {
	out := assemble(t, `
		fn main() -> int {
			int a[3] = {10, 20, 30};
			return a[1] + a[2];
		}
	`)
	if strings.Count(out, "movl $") < 3 {
		t.Errorf("expected at least three immediate stores for the array initializer, got:\n%s", out)
	}
	for _, slot := range []string{"-12(%rbp)", "-8(%rbp)", "-4(%rbp)"} {
		if !strings.Contains(out, slot) {
			t.Errorf("expected an element store at %s (stride four from a at -12), got:\n%s", slot, out)
		}
	}
}

func TestDoubleLiteralEncodesIEEE754Bits(t *testing.T) {
	out := assemble(t, `
		fn main() -> int {
			double d = 1.5;
			return (int)(d * 2.0);
		}
	`)
	if !strings.Contains(out, "__literal8") {
		t.Errorf("expected a __literal8 section, got:\n%s", out)
	}
	if !strings.Contains(out, ".quad 0x3FF8000000000000") {
		t.Errorf("expected 1.5's bit pattern 0x3FF8000000000000, got:\n%s", out)
	}
	if !strings.Contains(out, "mulsd") {
		t.Errorf("expected mulsd for the double multiply, got:\n%s", out)
	}
	if !strings.Contains(out, "cvttsd2si") {
		t.Errorf("expected cvttsd2si for the (int) cast, got:\n%s", out)
	}
}

func TestUnsignedDivisionUsesDivNotIdiv(t *testing.T) {
	out := assemble(t, `
		fn main() -> unsigned int {
			unsigned int a = 10u;
			unsigned int b = 3u;
			return a / b;
		}
	`)
	if !strings.Contains(out, "divl") {
		t.Errorf("expected an unsigned 'divl' instruction, got:\n%s", out)
	}
	if strings.Contains(out, "idivl") {
		t.Errorf("did not expect a signed 'idivl' for unsigned division, got:\n%s", out)
	}
}

func TestSignedDivisionUsesIdivAndCdq(t *testing.T) {
	out := assemble(t, `
		fn main() -> int {
			int a = 10;
			int b = 3;
			return a / b;
		}
	`)
	if !strings.Contains(out, "idivl") {
		t.Errorf("expected a signed 'idivl' instruction, got:\n%s", out)
	}
	if !strings.Contains(out, "cdq") {
		t.Errorf("expected 'cdq' to sign-extend before a 32-bit signed division, got:\n%s", out)
	}
}

func TestFunctionCallPassesArgumentsInRegisters(t *testing.T) {
	out := assemble(t, `
		fn add(int a, int b) -> int { return a + b; }
		fn main() -> int { return add(1, 2); }
	`)
	if !strings.Contains(out, "call _add") {
		t.Errorf("expected a leading-underscore call to _add, got:\n%s", out)
	}
	if !strings.Contains(out, "%edi") || !strings.Contains(out, "%esi") {
		t.Errorf("expected the first two arguments in %%edi/%%esi, got:\n%s", out)
	}
}

func TestPointerDerefStoresThroughLoadedAddress(t *testing.T) {
	out := assemble(t, `
		fn f(int x) -> int {
			int* p = &x;
			*p = 9;
			return *p;
		}
	`)
	if !strings.Contains(out, "leaq") {
		t.Errorf("expected a leaq to compute &x, got:\n%s", out)
	}
	if !strings.Contains(out, "%r11") {
		t.Errorf("expected the pointer's value to be loaded into a scratch register for the indirect store, got:\n%s", out)
	}
}

func TestStructFieldStoresAtOffsetDirectly(t *testing.T) {
	out := assemble(t, `
		struct point { int x; int y; };
		fn f(struct point p) -> int {
			p.y = 5;
			return p.y;
		}
	`)
	// A struct VALUE's field write is a direct, not indirect, store: no
	// scratch-register dereference should appear for the assignment.
	if strings.Contains(out, "%r11") {
		t.Errorf("did not expect an indirect address load for a struct-value field write, got:\n%s", out)
	}
}

func TestSDKVersionIsConfigurable(t *testing.T) {
	prog, err := parser.ParseProgram(lexer.New(`fn main() -> int { return 0; }`))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	a := semantics.New()
	if err := a.Analyze(prog); err != nil {
		t.Fatalf("unexpected semantic error: %v", err)
	}
	gen := tac.NewGenerator(a.Global())
	instrs, err := gen.Generate(prog)
	if err != nil {
		t.Fatalf("unexpected generation error: %v", err)
	}

	asm := codegen.NewAssembler(a.Global(), gen.PoolTable())
	asm.SetSDKVersion("13.2")
	out, err := asm.Assemble(instrs)
	if err != nil {
		t.Fatalf("unexpected codegen error: %v", err)
	}
	if !strings.Contains(out, "build_version macos, 13, 2") {
		t.Errorf("expected the configured SDK version in the build_version marker, got:\n%s", out)
	}
}

func TestUnknownOpcodeEmitsDiagnosticNotError(t *testing.T) {
	asm := codegen.NewAssembler(nil, nil)
	out, err := asm.Assemble([]tac.Instruction{{Op: tac.Op(999)}})
	if err != nil {
		t.Fatalf("unexpected error for an unrecognised opcode: %v", err)
	}
	if !strings.Contains(out, "Unknown TAC operation") {
		t.Errorf("expected a diagnostic comment, got:\n%s", out)
	}
}
