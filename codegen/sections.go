package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/skx/minic/cmderr"
	"github.com/skx/minic/symbols"
	"github.com/skx/minic/tac"
	"github.com/skx/minic/types"
)

// preambleTemplate is the fixed Mach-O text-section header every
// generated file opens with, per spec.md §4.7: the text-section
// directive, a build-version marker, and the 16-byte code alignment
// GNU as expects before the first instruction. The SDK version in the
// build-version marker is configurable (internal/config's
// Target.SDKVersion); %s is that version.
const preambleTemplate = "\t.section __TEXT,__text,regular,pure_instructions\n" +
	"\t.build_version macos, %s\n" +
	"\t.p2align 4, 0x90\n"

// defaultSDKVersion matches internal/config.DefaultConfig's Target.SDKVersion.
const defaultSDKVersion = "11.0"

// genEnterText switches the section-state to text. The text section is
// opened unconditionally by the preamble above, so a `.text` directive
// is emitted only when an earlier ENTER_* marker has switched away from
// it (the generator emits global data/bss entries before the functions).
func (a *Assembler) genEnterText() error {
	if a.sect != sectNone && a.sect != sectText {
		a.raw("\n\t.text\n")
	}
	a.sect = sectText
	return nil
}

func (a *Assembler) genEnterData() error {
	a.sect = sectData
	a.raw("\n\t.data\n\t.balign 8\n")
	return nil
}

func (a *Assembler) genEnterBss() error {
	a.sect = sectBss
	a.raw("\n\t.bss\n\t.balign 8\n")
	return nil
}

func (a *Assembler) genEnterLiteral8() error {
	a.sect = sectLiteral8
	a.raw("\n\t.section __TEXT,__literal8,8byte_literals\n\t.balign 8\n")
	return nil
}

func (a *Assembler) genEnterCString() error {
	a.sect = sectCString
	a.raw("\n\t.section __TEXT,__cstring,cstring_literals\n")
	return nil
}

// genAssign's meaning depends on the current section: in .text it is a
// register-level move into a variable's slot; everywhere else it is a
// data-section declaration (a symbol label plus a directive holding its
// initial value).
func (a *Assembler) genAssign(instr tac.Instruction) error {
	switch a.sect {
	case sectData:
		return a.declareData(instr)
	case sectBss:
		return a.declareBss(instr)
	case sectLiteral8:
		return a.declareLiteral8(instr)
	case sectCString:
		return a.declareCString(instr)
	default:
		return a.storeAssign(instr)
	}
}

// storeAssign is the .text-section case: move the already-computed
// operand into the destination's memory location.
func (a *Assembler) storeAssign(instr tac.Instruction) error {
	if instr.Result == "" {
		return nil
	}
	sym, ok := a.resolveSymbol(instr.Result)
	if !ok {
		return cmderr.Codegen("assign to unresolved symbol %q", instr.Result)
	}
	dst := a.mem(sym)
	if instr.Type.Base == types.Double {
		a.loadDouble(instr.Arg1, "xmm0")
		a.line("movsd %%xmm0, %s", dst)
		return nil
	}
	reg := sizedReg("a", instr.Type)
	a.line("%s %s, %s", movSuffix(instr.Type), a.src(instr.Arg1), reg)
	a.line("%s %s, %s", movSuffix(instr.Type), reg, dst)
	return nil
}

func (a *Assembler) declareData(instr tac.Instruction) error {
	sym, ok := a.resolveSymbol(instr.Result)
	if !ok {
		return cmderr.Codegen("internal error: undeclared global %q", instr.Result)
	}
	label := asmLabel(sym)
	if sym.Linkage == symbols.LinkExternal {
		a.line(".global %s", label)
	}
	a.raw(fmt.Sprintf("%s:\n", label))

	if instr.Type.IsPointer() && instr.Type.Base == types.Char {
		// char* global initialised from a string literal: the operand
		// is itself a cstring-pool label, stored as its address.
		strSym, _ := a.resolveSymbol(instr.Arg1)
		a.line(".quad %s", asmLabel(strSym))
		return nil
	}

	directive := dataDirective(instr.Type)
	a.line("%s %s", directive, renderImmediate(instr.Arg1))
	return nil
}

func (a *Assembler) declareBss(instr tac.Instruction) error {
	sym, ok := a.resolveSymbol(instr.Result)
	if !ok {
		return cmderr.Codegen("internal error: undeclared global %q", instr.Result)
	}
	label := asmLabel(sym)
	if sym.Linkage == symbols.LinkExternal {
		a.line(".global %s", label)
	}
	a.raw(fmt.Sprintf("%s:\n", label))
	a.line(".zero %d", sym.Type.Size())
	return nil
}

func (a *Assembler) declareLiteral8(instr tac.Instruction) error {
	bits, err := doubleBits(instr.Arg1)
	if err != nil {
		return err
	}
	sym, ok := a.resolveSymbol(instr.Result)
	if !ok {
		return cmderr.Codegen("internal error: unregistered literal %q", instr.Result)
	}
	a.raw(fmt.Sprintf("%s:\n", asmLabel(sym)))
	a.line(".quad 0x%016X", bits)
	return nil
}

func (a *Assembler) declareCString(instr tac.Instruction) error {
	sym, ok := a.resolveSymbol(instr.Result)
	if !ok {
		return cmderr.Codegen("internal error: unregistered string %q", instr.Result)
	}
	a.raw(fmt.Sprintf("%s:\n", asmLabel(sym)))
	a.line(".asciz \"%s\"", escapeString(instr.Arg1))
	return nil
}

// dataDirective picks the data directive by the declared type's size,
// per spec.md §6: 4-byte integers use .long, 8-byte integers .quad.
func dataDirective(ty types.Type) string {
	if ty.Size() == 8 {
		return ".quad"
	}
	return ".long"
}

// doubleBits parses a literal's decimal text and returns its IEEE-754
// bit pattern, per the "Double literal encoding" testable property:
// `1.5` must emit `.quad 0x3FF8000000000000`.
func doubleBits(text string) (uint64, error) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, cmderr.Codegen("malformed double literal %q: %v", text, err)
	}
	return math.Float64bits(v), nil
}

// escapeString renders a source-level string value safely inside a GNU
// .asciz directive.
func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// renderImmediate renders a scalar literal's decimal text as a
// directive operand. Negative values pass through unchanged; GNU as
// accepts signed decimal immediates in .long/.quad directives directly.
func renderImmediate(text string) string {
	return text
}
