package codegen

import (
	"strconv"

	"github.com/skx/minic/cmderr"
	"github.com/skx/minic/symbols"
	"github.com/skx/minic/tac"
	"github.com/skx/minic/types"
)

// System V argument-passing registers, in the order spec.md §4.7
// assigns them: the first six scalar arguments in the 32-bit integer
// registers (promoted to the 64-bit name for 8-byte types), the first
// eight floating-point arguments in %xmm0..%xmm7.
var intArgRegs32 = [6]string{"edi", "esi", "edx", "ecx", "r8d", "r9d"}
var intArgRegs64 = [6]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
var sseArgRegs = [8]string{"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7"}

// genFuncBegin emits the prologue: an optional .global for external
// linkage, the label, and the classic push-rbp/mov-rsp,rbp frame
// setup. ALLOC_STACK (a separate TAC instruction the generator always
// emits right after FUNC_BEGIN when the function has any locals) is
// responsible for the `subq`, matching tac/generator.go's own split
// between the two.
func (a *Assembler) genFuncBegin(instr tac.Instruction) error {
	name := instr.Result
	table, ok := a.global.FuncTable(name)
	if !ok {
		return cmderr.Codegen("internal error: no symbol table for function %q", name)
	}
	a.table = table
	a.fn = name

	paramCount, err := strconv.Atoi(instr.Arg1)
	if err != nil {
		return cmderr.Codegen("internal error: malformed FUNC_BEGIN arity %q", instr.Arg1)
	}

	fn, ok := a.global.FuncSymbol(name)
	if !ok {
		return cmderr.Codegen("internal error: no signature for function %q", name)
	}

	label := funcLabel(name)
	if fn.Linkage == symbols.LinkExternal {
		a.line(".global %s", label)
	}
	a.raw(label + ":\n")
	a.line("pushq %%rbp")
	a.line("movq %%rsp, %%rbp")

	return a.spillParams(table, paramCount)
}

// spillParams moves each incoming argument from its System V register
// (or, beyond the register count, its caller-pushed stack slot) into
// the parameter's own frame slot. table.Names() returns every unique
// name this table has declared in first-declared order, and parameters
// are always declared before any local or temporary, so its first
// paramCount entries are exactly the parameter list in left-to-right
// order.
func (a *Assembler) spillParams(table *symbols.Table, paramCount int) error {
	names := table.Names()
	if paramCount > len(names) {
		return cmderr.Codegen("internal error: function declares fewer symbols than its own arity")
	}

	intIdx, sseIdx, overflowIdx := 0, 0, 0
	for i := 0; i < paramCount; i++ {
		sym, ok := table.SymbolByUnique(names[i])
		if !ok {
			return cmderr.Codegen("internal error: unresolved parameter %q", names[i])
		}
		dst := a.mem(sym)

		if sym.Type.Base == types.Double && !sym.Type.IsPointer() {
			if sseIdx < len(sseArgRegs) {
				a.line("movsd %%%s, %s", sseArgRegs[sseIdx], dst)
				sseIdx++
			} else {
				a.line("movsd %d(%%rbp), %%xmm0", overflowOffset(overflowIdx))
				a.line("movsd %%xmm0, %s", dst)
				overflowIdx++
			}
			continue
		}

		if intIdx < len(intArgRegs32) {
			reg := intArgRegs32[intIdx]
			if sym.Type.Size() == 8 {
				reg = intArgRegs64[intIdx]
			}
			a.line("%s %%%s, %s", movSuffix(sym.Type), reg, dst)
			intIdx++
		} else {
			a.line("%s %d(%%rbp), %%rax", movSuffix(sym.Type), overflowOffset(overflowIdx))
			a.line("%s %%%s, %s", movSuffix(sym.Type), sizedReg("a", sym.Type), dst)
			overflowIdx++
		}
	}
	return nil
}

// overflowOffset returns a stack-passed argument's frame-relative
// offset: the saved %rbp occupies 0(%rbp) and the return address
// 8(%rbp), so the caller's pushed arguments begin at 16(%rbp).
func overflowOffset(i int) int {
	return 16 + 8*i
}

// genFuncEnd emits `popq %rbp; retq`. The teardown label and the `addq`
// come from DEALLOC_STACK, which the generator always emits immediately
// before FUNC_END, so together they spell out the
// `addq $S, %rsp; popq %rbp; retq` sequence without `leave`, keeping
// ALLOC_STACK/DEALLOC_STACK as the sole owners of frame-size arithmetic.
func (a *Assembler) genFuncEnd(instr tac.Instruction) error {
	a.line("popq %%rbp")
	a.line("retq")
	a.table = nil
	a.fn = ""
	return nil
}

func (a *Assembler) genAllocStack(instr tac.Instruction) error {
	if err := a.requireFunc(tac.AllocStack); err != nil {
		return err
	}
	size, err := strconv.Atoi(instr.Arg1)
	if err != nil {
		return cmderr.Codegen("internal error: malformed ALLOC_STACK size %q", instr.Arg1)
	}
	a.line("subq $%d, %%rsp", size)
	return nil
}

// genDeallocStack is the landing point every RETURN jumps to: the
// generator always emits exactly one DEALLOC_STACK, right before
// FUNC_END, so this is the one place in a function's body that can
// serve as its single shared epilogue label. A return in the middle of
// the body must still go through the stack-deallocation here, not
// around it, or %rsp would be left pointing below the saved %rbp when
// FUNC_END's popq runs.
func (a *Assembler) genDeallocStack(instr tac.Instruction) error {
	if err := a.requireFunc(tac.DeallocStack); err != nil {
		return err
	}
	size, err := strconv.Atoi(instr.Arg1)
	if err != nil {
		return cmderr.Codegen("internal error: malformed DEALLOC_STACK size %q", instr.Arg1)
	}
	a.raw(funcEndLabel(a.fn) + ":\n")
	a.line("addq $%d, %%rsp", size)
	return nil
}

// genReturn loads the return value into %rax (or %xmm0 for a double)
// and jumps to the function's teardown; an empty Arg1 is a bare
// `return;` from a void function.
func (a *Assembler) genReturn(instr tac.Instruction) error {
	if instr.Arg1 != "" {
		if instr.Type.Base == types.Double && !instr.Type.IsPointer() {
			a.loadDouble(instr.Arg1, "xmm0")
		} else {
			a.line("%s %s, %s", movSuffix(instr.Type), a.src(instr.Arg1), sizedReg("a", instr.Type))
		}
	}
	a.line("jmp %s", funcEndLabel(a.fn))
	return nil
}

func funcEndLabel(fn string) string {
	return "L" + fn + "_end"
}
