package codegen

import (
	"fmt"
	"strconv"

	"github.com/skx/minic/cmderr"
	"github.com/skx/minic/symbols"
	"github.com/skx/minic/tac"
	"github.com/skx/minic/types"
)

// directAddr renders the memory operand for sym's own storage slot,
// offset by off bytes: a frame-relative offset for an automatic-
// duration local/temporary, RIP-relative (with the displacement folded
// into the label expression, which GNU as accepts directly) otherwise.
func (a *Assembler) directAddr(sym *symbols.Symbol, off int) string {
	if sym.Duration == symbols.Automatic {
		return fmt.Sprintf("%d(%%rbp)", sym.Offset+off)
	}
	label := asmLabel(sym)
	if off == 0 {
		return label + "(%rip)"
	}
	return fmt.Sprintf("%s+%d(%%rip)", label, off)
}

// indirectAddr loads ptrSym's value (a pointer) into scratch register
// %r11 and returns the resulting [%r11+off] memory operand.
func (a *Assembler) indirectAddr(ptrSym *symbols.Symbol, off int) string {
	a.line("movq %s, %%r11", a.mem(ptrSym))
	if off == 0 {
		return "(%r11)"
	}
	return fmt.Sprintf("%d(%%r11)", off)
}

// genMov is the DEREF/Indirect counterpart for writes: store Arg1's
// value at Result's address, offset by Arg2 bytes. Per Instruction's
// doc comment, Indirect says whether Result names a pointer-holding
// symbol (load then write through it) or a plain storage slot (write
// directly, honoring Arg2 as a field/element offset on that slot).
func (a *Assembler) genMov(instr tac.Instruction) error {
	off, err := strconv.Atoi(instr.Arg2)
	if err != nil {
		return cmderr.Codegen("internal error: malformed MOV offset %q", instr.Arg2)
	}
	sym, ok := a.resolveSymbol(instr.Result)
	if !ok {
		return cmderr.Codegen("internal error: MOV to unresolved symbol %q", instr.Result)
	}

	var dst string
	if instr.Indirect {
		dst = a.indirectAddr(sym, off)
	} else {
		dst = a.directAddr(sym, off)
	}

	if instr.Type.Base == types.Double && !instr.Type.IsPointer() {
		a.loadDouble(instr.Arg1, "xmm0")
		a.line("movsd %%xmm0, %s", dst)
		return nil
	}

	reg := sizedReg("a", instr.Type)
	a.line("%s %s, %s", movSuffix(instr.Type), a.src(instr.Arg1), reg)
	a.line("%s %s, %s", movSuffix(instr.Type), reg, dst)
	return nil
}

// genDeref is genMov's read-side counterpart: load the value found at
// Arg1's address (offset by Arg2) into Result.
func (a *Assembler) genDeref(instr tac.Instruction) error {
	off, err := strconv.Atoi(instr.Arg2)
	if err != nil {
		return cmderr.Codegen("internal error: malformed DEREF offset %q", instr.Arg2)
	}
	sym, ok := a.resolveSymbol(instr.Arg1)
	if !ok {
		return cmderr.Codegen("internal error: DEREF of unresolved symbol %q", instr.Arg1)
	}

	var src string
	if instr.Indirect {
		src = a.indirectAddr(sym, off)
	} else {
		src = a.directAddr(sym, off)
	}

	dst, ok := a.resolveSymbol(instr.Result)
	if !ok {
		return cmderr.Codegen("internal error: unresolved DEREF destination %q", instr.Result)
	}

	if instr.Type.Base == types.Double && !instr.Type.IsPointer() {
		a.line("movsd %s, %%xmm0", src)
		a.line("movsd %%xmm0, %s", a.mem(dst))
		return nil
	}

	reg := sizedReg("a", instr.Type)
	a.line("%s %s, %s", movSuffix(instr.Type), src, reg)
	a.line("%s %s, %s", movSuffix(instr.Type), reg, a.mem(dst))
	return nil
}

// genAddrOf takes the address of a direct storage slot: tac/expr.go's
// genAddrOf only ever emits this opcode for the Direct lvalue case (the
// Indirect case already holds an address value and just aliases or
// offsets it via ASSIGN/ADD), so Arg1 here always names a plain
// variable or literal-pool entry, never a pointer-holding symbol.
func (a *Assembler) genAddrOf(instr tac.Instruction) error {
	off, err := strconv.Atoi(instr.Arg2)
	if err != nil {
		return cmderr.Codegen("internal error: malformed ADDR_OF offset %q", instr.Arg2)
	}
	sym, ok := a.resolveSymbol(instr.Arg1)
	if !ok {
		return cmderr.Codegen("internal error: ADDR_OF of unresolved symbol %q", instr.Arg1)
	}
	dst, ok := a.resolveSymbol(instr.Result)
	if !ok {
		return cmderr.Codegen("internal error: unresolved ADDR_OF destination %q", instr.Result)
	}
	a.line("leaq %s, %%r11", a.directAddr(sym, off))
	a.line("movq %%r11, %s", a.mem(dst))
	return nil
}

// genConvertType selects the conversion instruction per spec.md §4.7's
// table, keyed on the source type (carried as a rendered type string in
// Arg2, since CONVERT_TYPE's Type field holds the destination type) and
// the destination type.
func (a *Assembler) genConvertType(instr tac.Instruction) error {
	srcTy := parseTypeString(instr.Arg2)
	dstTy := instr.Type

	dst, ok := a.resolveSymbol(instr.Result)
	if !ok {
		return cmderr.Codegen("internal error: unresolved CONVERT_TYPE destination %q", instr.Result)
	}

	switch {
	case dstTy.Base == types.Double && !dstTy.IsPointer():
		if srcTy.Base == types.UInt {
			a.line("movl %s, %%eax", a.src(instr.Arg1))
			a.line("cvtsi2sdq %%rax, %%xmm0")
		} else {
			a.line("movl %s, %%eax", a.src(instr.Arg1))
			a.line("cvtsi2sdl %%eax, %%xmm0")
		}
		a.line("movsd %%xmm0, %s", a.mem(dst))
		return nil

	case srcTy.Base == types.Double && !srcTy.IsPointer():
		a.loadDouble(instr.Arg1, "xmm0")
		if dstTy.IsSigned() {
			if dstTy.Size() == 8 {
				a.line("cvttsd2siq %%xmm0, %%rax")
			} else {
				a.line("cvttsd2sil %%xmm0, %%eax")
			}
		} else {
			a.line("cvttsd2sil %%xmm0, %%eax")
		}
		a.line("%s %s, %s", movSuffix(dstTy), sizedReg("a", dstTy), a.mem(dst))
		return nil

	case srcTy.Base == types.Int && dstTy.Base == types.Long:
		a.line("movl %s, %%eax", a.src(instr.Arg1))
		a.line("movslq %%eax, %%rax")
		a.line("movq %%rax, %s", a.mem(dst))
		return nil

	case srcTy.Base == types.UInt && dstTy.Base == types.ULong:
		a.line("movl %s, %%eax", a.src(instr.Arg1))
		a.line("movq %%rax, %s", a.mem(dst))
		return nil

	case (srcTy.Base == types.Long || srcTy.Base == types.ULong) && (dstTy.Base == types.Int || dstTy.Base == types.UInt):
		a.line("movq %s, %%rax", a.src(instr.Arg1))
		a.line("movl %%eax, %s", a.mem(dst))
		return nil

	default:
		a.line("%s %s, %s", movSuffix(dstTy), a.src(instr.Arg1), sizedReg("a", dstTy))
		a.line("%s %s, %s", movSuffix(dstTy), sizedReg("a", dstTy), a.mem(dst))
		return nil
	}
}

// parseTypeString recovers a scalar types.Type from types.Type.String()'s
// rendering: CONVERT_TYPE's Arg2 only ever carries a non-pointer,
// non-array source (this language's casts are scalar-only), so matching
// the base-kind names back to back is exhaustive.
func parseTypeString(s string) types.Type {
	switch s {
	case "long":
		return types.New(types.Long)
	case "unsigned int":
		return types.New(types.UInt)
	case "unsigned long":
		return types.New(types.ULong)
	case "double":
		return types.New(types.Double)
	case "char":
		return types.New(types.Char)
	case "bool":
		return types.New(types.Bool)
	default:
		return types.New(types.Int)
	}
}
