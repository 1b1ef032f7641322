package tac

import (
	"strconv"

	"github.com/skx/minic/types"
)

// The constructors below cover the common Instruction shapes: one small
// helper per opcode shape, so a caller can't forget a required field.
// generator.go and expr.go build the other instructions as struct
// literals. See tac.go's package doc for why Go drops
// the C++ original's default-constructor-argument convention in favor
// of this.

func instrLabel(name string) Instruction { return Instruction{Op: Label, Result: name} }

func instrGoto(name string) Instruction { return Instruction{Op: Goto, Result: name} }

// instrIf branches to falseLabel when cond is falsy (zero); execution
// falls through when cond is truthy. Every control-flow lowering in
// generator.go (if/while/for, short-circuit &&/||) is built from this
// single branch-on-false primitive plus Goto/Label.
func instrIf(cond, falseLabel string) Instruction {
	return Instruction{Op: If, Arg1: cond, Result: falseLabel}
}

func instrAssign(value, result string, ty types.Type) Instruction {
	return Instruction{Op: Assign, Arg1: value, Result: result, Type: ty}
}

func instrReturn(value string, ty types.Type) Instruction {
	return Instruction{Op: Return, Arg1: value, Type: ty}
}

func instrFuncBegin(name string, paramCount int) Instruction {
	return Instruction{Op: FuncBegin, Result: name, Arg1: strconv.Itoa(paramCount)}
}

func instrFuncEnd(name string) Instruction { return Instruction{Op: FuncEnd, Result: name} }

func instrAllocStack(size int) Instruction {
	return Instruction{Op: AllocStack, Arg1: strconv.Itoa(size)}
}

func instrDeallocStack(size int) Instruction {
	return Instruction{Op: DeallocStack, Arg1: strconv.Itoa(size)}
}
