package codegen

import (
	"github.com/skx/minic/cmderr"
	"github.com/skx/minic/tac"
	"github.com/skx/minic/types"
)

// sizeSuffix picks the GNU-as mnemonic suffix for ty's size: this
// language only ever needs byte/double-word/quad-word arithmetic.
func sizeSuffix(ty types.Type) string {
	switch ty.Size() {
	case 1:
		return "b"
	case 8:
		return "q"
	default:
		return "l"
	}
}

func (a *Assembler) storeResult(instr tac.Instruction, reg string) error {
	dst, ok := a.resolveSymbol(instr.Result)
	if !ok {
		return cmderr.Codegen("internal error: unresolved destination %q", instr.Result)
	}
	a.line("%s %s, %s", movSuffix(instr.Type), reg, a.mem(dst))
	return nil
}

// genArith handles the non-comparison binary arithmetic ops, per
// spec.md §4.7: integer arithmetic through %r10/%r10d, doubles through
// %xmm0/%xmm1 with the SSE scalar-double mnemonics.
func (a *Assembler) genArith(instr tac.Instruction) error {
	if instr.Type.Base == types.Double && !instr.Type.IsPointer() {
		return a.genArithDouble(instr)
	}
	if instr.Op == tac.Div || instr.Op == tac.Mod {
		return a.genDivMod(instr)
	}
	return a.genArithInt(instr)
}

func (a *Assembler) genArithInt(instr tac.Instruction) error {
	ty := instr.Type
	suf := sizeSuffix(ty)
	eax := sizedReg("a", ty)
	r10 := sizedReg("r10", ty)

	a.line("%s %s, %s", movSuffix(ty), a.src(instr.Arg1), eax)
	a.line("%s %s, %s", movSuffix(ty), a.src(instr.Arg2), r10)

	switch instr.Op {
	case tac.Add:
		a.line("add%s %s, %s", suf, r10, eax)
	case tac.Sub:
		a.line("sub%s %s, %s", suf, r10, eax)
	case tac.Mul:
		if ty.IsSigned() {
			a.line("imul%s %s, %s", suf, r10, eax)
		} else {
			a.line("mul%s %s", suf, r10)
		}
	default:
		return cmderr.Codegen("internal error: %s reached genArithInt", instr.Op)
	}

	return a.storeResult(instr, eax)
}

// genDivMod implements spec.md §4.7's division/modulo recipe: numerator
// in %rax, sign- (signed) or zero- (unsigned) extend into %rdx, divide
// by the divisor loaded into %r10, quotient lands in %rax and remainder
// in %rdx. Signedness drives idiv/cqto versus div/zeroed-%rdx - the
// "Signedness of division" testable property this implementation must
// honor.
func (a *Assembler) genDivMod(instr tac.Instruction) error {
	ty := instr.Type
	suf := sizeSuffix(ty)
	eax := sizedReg("a", ty)
	r10 := sizedReg("r10", ty)

	a.line("%s %s, %s", movSuffix(ty), a.src(instr.Arg1), eax)
	a.line("%s %s, %s", movSuffix(ty), a.src(instr.Arg2), r10)

	if ty.IsSigned() {
		if ty.Size() == 8 {
			a.line("cqto")
		} else {
			a.line("cdq")
		}
		a.line("idiv%s %s", suf, r10)
	} else {
		a.line("xorl %%edx, %%edx")
		a.line("div%s %s", suf, r10)
	}

	if instr.Op == tac.Div {
		return a.storeResult(instr, eax)
	}
	return a.storeResult(instr, sizedReg("d", ty))
}

func (a *Assembler) genArithDouble(instr tac.Instruction) error {
	a.loadDouble(instr.Arg1, "xmm0")
	a.loadDouble(instr.Arg2, "xmm1")

	switch instr.Op {
	case tac.Add:
		a.line("addsd %%xmm1, %%xmm0")
	case tac.Sub:
		a.line("subsd %%xmm1, %%xmm0")
	case tac.Mul:
		a.line("mulsd %%xmm1, %%xmm0")
	case tac.Div:
		a.line("divsd %%xmm1, %%xmm0")
	default:
		return cmderr.Codegen("internal error: %s is not defined over double", instr.Op)
	}

	dst, ok := a.resolveSymbol(instr.Result)
	if !ok {
		return cmderr.Codegen("internal error: unresolved destination %q", instr.Result)
	}
	a.line("movsd %%xmm0, %s", a.mem(dst))
	return nil
}

// genCompare emits cmp+setcc+movzbl (or comisd+setcc for doubles),
// selecting the signed/unsigned set-code family by the OPERANDS' type -
// instr.Type is the comparison's own result type (always bool), so the
// assembler asks the left operand what it actually compared as.
func (a *Assembler) genCompare(instr tac.Instruction) error {
	ty := a.srcType(instr.Arg1)
	if ty.Base == types.Double && !ty.IsPointer() {
		return a.genCompareDouble(instr)
	}

	suf := sizeSuffix(ty)
	eax := sizedReg("a", ty)
	r10 := sizedReg("r10", ty)
	a.line("%s %s, %s", movSuffix(ty), a.src(instr.Arg1), eax)
	a.line("%s %s, %s", movSuffix(ty), a.src(instr.Arg2), r10)
	a.line("cmp%s %s, %s", suf, r10, eax)
	a.line("set%s %%al", setcc(instr.Op, ty.IsSigned()))
	a.line("movzbl %%al, %%eax")
	return a.storeResult(instr, "%al")
}

func (a *Assembler) genCompareDouble(instr tac.Instruction) error {
	a.loadDouble(instr.Arg1, "xmm0")
	a.loadDouble(instr.Arg2, "xmm1")
	a.line("comisd %%xmm1, %%xmm0")
	a.line("set%s %%al", setcc(instr.Op, false))
	a.line("movzbl %%al, %%eax")
	return a.storeResult(instr, "%al")
}

// setcc maps a comparison op to its SETcc suffix: signed l/le/g/ge,
// unsigned b/be/a/ae, e/ne shared by both (spec.md §4.7). Doubles
// always take the unsigned-style codes, matching comisd's unordered
// flag semantics.
func setcc(op tac.Op, signed bool) string {
	switch op {
	case tac.Eq:
		return "e"
	case tac.Ne:
		return "ne"
	case tac.Lt:
		if signed {
			return "l"
		}
		return "b"
	case tac.Le:
		if signed {
			return "le"
		}
		return "be"
	case tac.Gt:
		if signed {
			return "g"
		}
		return "a"
	case tac.Ge:
		if signed {
			return "ge"
		}
		return "ae"
	default:
		return "e"
	}
}

func (a *Assembler) genNegate(instr tac.Instruction) error {
	if instr.Type.Base == types.Double && !instr.Type.IsPointer() {
		a.loadDouble(instr.Arg1, "xmm0")
		a.line("xorpd %%xmm1, %%xmm1")
		a.line("subsd %%xmm0, %%xmm1")
		dst, ok := a.resolveSymbol(instr.Result)
		if !ok {
			return cmderr.Codegen("internal error: unresolved destination %q", instr.Result)
		}
		a.line("movsd %%xmm1, %s", a.mem(dst))
		return nil
	}
	ty := instr.Type
	eax := sizedReg("a", ty)
	a.line("%s %s, %s", movSuffix(ty), a.src(instr.Arg1), eax)
	a.line("neg%s %s", sizeSuffix(ty), eax)
	return a.storeResult(instr, eax)
}

func (a *Assembler) genComplement(instr tac.Instruction) error {
	ty := instr.Type
	eax := sizedReg("a", ty)
	a.line("%s %s, %s", movSuffix(ty), a.src(instr.Arg1), eax)
	a.line("not%s %s", sizeSuffix(ty), eax)
	return a.storeResult(instr, eax)
}

// genIncDec implements both INCREMENT and DECREMENT, which share a
// shape: add or subtract the literal 1 from the operand and store the
// new value. verb is "add" or "sub".
func (a *Assembler) genIncDec(instr tac.Instruction, verb string) error {
	ty := instr.Type
	if ty.Base == types.Double && !ty.IsPointer() {
		a.loadDouble(instr.Arg1, "xmm0")
		// 1.0's IEEE-754 bit pattern, loaded through a GPR: there is no
		// movsd-from-immediate form, so the constant travels through
		// %rax the same way a double return value would.
		a.line("movq $0x3FF0000000000000, %%rax")
		a.line("movq %%rax, %%xmm1")
		if verb == "add" {
			a.line("addsd %%xmm1, %%xmm0")
		} else {
			a.line("subsd %%xmm1, %%xmm0")
		}
		dst, ok := a.resolveSymbol(instr.Result)
		if !ok {
			return cmderr.Codegen("internal error: unresolved destination %q", instr.Result)
		}
		a.line("movsd %%xmm0, %s", a.mem(dst))
		return nil
	}
	eax := sizedReg("a", ty)
	a.line("%s %s, %s", movSuffix(ty), a.src(instr.Arg1), eax)
	a.line("%s%s $1, %s", verb, sizeSuffix(ty), eax)
	return a.storeResult(instr, eax)
}
