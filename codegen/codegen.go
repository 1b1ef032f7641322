// Package codegen implements the assembler: the last pipeline stage,
// turning a flat []tac.Instruction into textual x86-64 assembly
// targeting the macOS Mach-O System V variant.
//
// Grounded on _examples/skx-math-compiler/compiler/generator.go and
// compiler.go: the teacher builds its output by concatenating raw
// assembly-text fragments returned from one gen<Op> method per RPN
// opcode, then wraps them in a fixed header/footer. This package keeps
// that shape - one gen<Op> method per tac.Op, string-built and
// concatenated by Assemble - but targets Mach-O directives, leading
// underscores, RIP-relative data, and System V register conventions
// instead of the teacher's x87-stack toy machine.
package codegen

import (
	"fmt"
	"strings"

	"github.com/klauspost/asmfmt"

	"github.com/skx/minic/cmderr"
	"github.com/skx/minic/symbols"
	"github.com/skx/minic/tac"
	"github.com/skx/minic/types"
)

// section is the assembler's current section-state, transitioning only
// on ENTER_* markers (spec's "State machines" section).
type section int

const (
	sectNone section = iota
	sectText
	sectData
	sectBss
	sectLiteral8
	sectCString
)

// Assembler walks a TAC instruction stream once, emitting one assembly
// fragment per instruction. It never looks ahead except to coalesce a
// PUSH run into a single CALL's argument-passing (see call.go).
type Assembler struct {
	global *symbols.GlobalTable
	pool   *symbols.Table
	table  *symbols.Table // current function's locals; nil outside a function
	fn     string         // current function's name

	sect section

	out strings.Builder

	pendingArgs []tac.Instruction // PUSH instructions buffered since the last CALL
	labelSeq    int

	sdkVersion string
}

// buildVersionField renders a "MAJOR, MINOR" pair for the
// .build_version directive from a dotted SDK version string like
// "11.0"; a version that doesn't parse falls back to
// defaultSDKVersion's own rendering rather than emitting bad asm.
func buildVersionField(version string) string {
	major, minor, ok := strings.Cut(version, ".")
	if !ok || major == "" {
		return "11, 0"
	}
	if minor == "" {
		minor = "0"
	}
	return major + ", " + minor
}

// NewAssembler builds an Assembler over the symbol tables a completed
// tac.Generator populated: global declares every function/global
// variable, pool owns the literal8/cstring pool entries. The
// .build_version marker defaults to defaultSDKVersion; use
// SetSDKVersion to honor a project's internal/config setting instead.
func NewAssembler(global *symbols.GlobalTable, pool *symbols.Table) *Assembler {
	return &Assembler{global: global, pool: pool, sdkVersion: defaultSDKVersion}
}

// SetSDKVersion overrides the .build_version marker's SDK version
// (internal/config's Target.SDKVersion); a project with no minic.toml
// keeps NewAssembler's default.
func (a *Assembler) SetSDKVersion(version string) {
	a.sdkVersion = version
}

// Assemble lowers instrs into one assembly-text file, formatted (best
// effort) by asmfmt before returning.
func (a *Assembler) Assemble(instrs []tac.Instruction) (string, error) {
	fmt.Fprintf(&a.out, preambleTemplate, buildVersionField(a.sdkVersion))

	for i := 0; i < len(instrs); i++ {
		instr := instrs[i]

		if instr.Op == tac.Push {
			a.pendingArgs = append(a.pendingArgs, instr)
			continue
		}

		if err := a.emit(instr); err != nil {
			return "", err
		}
	}

	return a.format(a.out.String()), nil
}

// format runs the generated text through asmfmt. asmfmt targets Go's
// Plan9 assembly dialect, not the AT&T/GNU syntax this package emits,
// so a parse failure here is expected rather than exceptional: fall
// back to the unformatted text rather than failing the whole
// compilation over a cosmetic pass.
func (a *Assembler) format(src string) string {
	formatted, err := asmfmt.Format(strings.NewReader(src))
	if err != nil {
		return src
	}
	return string(formatted)
}

// emit dispatches one instruction to its gen<Op> method. Per spec.md's
// failure model, the assembler never fails on an unrecognised TAC op -
// it emits a diagnostic comment and continues, protecting against
// future IR additions the test suite doesn't exercise.
func (a *Assembler) emit(instr tac.Instruction) error {
	switch instr.Op {
	case tac.EnterText:
		return a.genEnterText()
	case tac.EnterData:
		return a.genEnterData()
	case tac.EnterBss:
		return a.genEnterBss()
	case tac.EnterLiteral8:
		return a.genEnterLiteral8()
	case tac.EnterCString:
		return a.genEnterCString()

	case tac.FuncBegin:
		return a.genFuncBegin(instr)
	case tac.FuncEnd:
		return a.genFuncEnd(instr)
	case tac.AllocStack:
		return a.genAllocStack(instr)
	case tac.DeallocStack:
		return a.genDeallocStack(instr)
	case tac.Return:
		return a.genReturn(instr)

	case tac.Assign:
		return a.genAssign(instr)
	case tac.Mov:
		return a.genMov(instr)
	case tac.Deref:
		return a.genDeref(instr)
	case tac.AddrOf:
		return a.genAddrOf(instr)
	case tac.ConvertType:
		return a.genConvertType(instr)

	case tac.Add, tac.Sub, tac.Mul, tac.Div, tac.Mod:
		return a.genArith(instr)
	case tac.Eq, tac.Ne, tac.Lt, tac.Le, tac.Gt, tac.Ge:
		return a.genCompare(instr)
	case tac.Negate:
		return a.genNegate(instr)
	case tac.Complement:
		return a.genComplement(instr)
	case tac.Increment:
		return a.genIncDec(instr, "add")
	case tac.Decrement:
		return a.genIncDec(instr, "sub")

	case tac.Label:
		a.line("%s:", localLabel(instr.Result))
		return nil
	case tac.Goto:
		a.line("jmp %s", localLabel(instr.Result))
		return nil
	case tac.If:
		return a.genIf(instr)

	case tac.Call:
		return a.genCall(instr)

	case tac.Nop:
		return nil

	default:
		a.line("# Unknown TAC operation: %s", instr.Op)
		return nil
	}
}

func (a *Assembler) line(format string, args ...any) {
	a.out.WriteString("\t")
	fmt.Fprintf(&a.out, format, args...)
	a.out.WriteString("\n")
}

func (a *Assembler) raw(text string) {
	a.out.WriteString(text)
}

func (a *Assembler) newLocal(prefix string) string {
	a.labelSeq++
	return fmt.Sprintf("%s%d", prefix, a.labelSeq)
}

// localLabel renders a TAC label (e.g. "Lif_end3", "Lloop1_start") as a
// GNU-assembler local label by prefixing "L". Labels are not scoped per
// function: the TAC generator's label counter runs across the whole
// module, so no two functions produce the same label name.
func localLabel(name string) string {
	return "L" + name
}

func (a *Assembler) requireFunc(op tac.Op) error {
	if a.table == nil {
		return cmderr.Codegen("%s instruction seen outside of a function body", op)
	}
	return nil
}

// genIf implements instrIf's branch-on-false convention (tac/instructions.go):
// jump to Result's label when Arg1's condition is zero, fall through when
// it's non-zero. Every if/while/for and short-circuit &&/|| lowering in
// tac/generator.go ultimately reduces to this one primitive. Integers
// use one `cmp $0`/`je` pair whatever their signedness; a double is
// compared against 0.0 with ucomisd, and NaN counts as true.
func (a *Assembler) genIf(instr tac.Instruction) error {
	ty := a.srcType(instr.Arg1)
	if ty.Base == types.Double && !ty.IsPointer() {
		a.loadDouble(instr.Arg1, "xmm0")
		a.line("xorpd %%xmm1, %%xmm1")
		a.line("ucomisd %%xmm1, %%xmm0")
		nan := a.newLocal("Lnan")
		a.line("jp %s", nan)
		a.line("je %s", localLabel(instr.Result))
		a.line("%s:", nan)
		return nil
	}
	reg := sizedReg("a", ty)
	a.line("%s %s, %s", movSuffix(ty), a.src(instr.Arg1), reg)
	a.line("cmp%s $0, %s", sizeSuffix(ty), reg)
	a.line("je %s", localLabel(instr.Result))
	return nil
}
