package codegen

import (
	"github.com/skx/minic/cmderr"
	"github.com/skx/minic/tac"
	"github.com/skx/minic/types"
)

// regAssign pairs a buffered PUSH with the argument register genCall
// decided to classify it into.
type regAssign struct {
	instr tac.Instruction
	reg   string
}

// genCall consumes every PUSH instruction buffered since the previous
// CALL (Assemble's main loop defers them rather than emitting a real
// `push` per argument) and classifies each into the System V register
// it belongs in, per spec.md §4.7: the first six non-double arguments
// in %edi/%esi/%edx/%ecx/%r8d/%r9d (promoted to the 64-bit name for
// 8-byte types), the first eight doubles in %xmm0..%xmm7, anything
// past those counts on the stack.
func (a *Assembler) genCall(instr tac.Instruction) error {
	args := a.pendingArgs
	a.pendingArgs = nil

	intIdx, sseIdx := 0, 0
	var assigns []regAssign
	var overflow []tac.Instruction

	for _, arg := range args {
		if arg.Type.Base == types.Double && !arg.Type.IsPointer() {
			if sseIdx < len(sseArgRegs) {
				assigns = append(assigns, regAssign{arg, sseArgRegs[sseIdx]})
				sseIdx++
			} else {
				overflow = append(overflow, arg)
			}
			continue
		}
		if intIdx < len(intArgRegs32) {
			reg := intArgRegs32[intIdx]
			if arg.Type.Size() == 8 {
				reg = intArgRegs64[intIdx]
			}
			assigns = append(assigns, regAssign{arg, reg})
			intIdx++
		} else {
			overflow = append(overflow, arg)
		}
	}

	// Extra arguments are pushed right-to-left, per spec.md §4.7, so
	// they land on the stack in left-to-right order for the callee.
	for i := len(overflow) - 1; i >= 0; i-- {
		arg := overflow[i]
		if arg.Type.Base == types.Double && !arg.Type.IsPointer() {
			a.loadDouble(arg.Arg1, "xmm0")
			a.line("subq $8, %%rsp")
			a.line("movsd %%xmm0, (%%rsp)")
		} else {
			a.line("%s %s, %%rax", movSuffix(arg.Type), a.src(arg.Arg1))
			a.line("pushq %%rax")
		}
	}

	for _, asn := range assigns {
		if asn.instr.Type.Base == types.Double && !asn.instr.Type.IsPointer() {
			a.loadDouble(asn.instr.Arg1, asn.reg)
		} else {
			a.line("%s %s, %%%s", movSuffix(asn.instr.Type), a.src(asn.instr.Arg1), asn.reg)
		}
	}

	a.line("call %s", funcLabel(instr.Arg1))

	if len(overflow) > 0 {
		a.line("addq $%d, %%rsp", 8*len(overflow))
	}

	if instr.Result == "" {
		return nil
	}
	dst, ok := a.resolveSymbol(instr.Result)
	if !ok {
		return cmderr.Codegen("internal error: unresolved call-result destination %q", instr.Result)
	}
	if instr.Type.Base == types.Double && !instr.Type.IsPointer() {
		a.line("movsd %%xmm0, %s", a.mem(dst))
		return nil
	}
	a.line("%s %s, %s", movSuffix(instr.Type), sizedReg("a", instr.Type), a.mem(dst))
	return nil
}
