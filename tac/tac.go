// Package tac implements three-address code: a flat, forward-only
// instruction stream generated from the analyzed AST and consumed by
// the assembler.
//
// Grounded on original_source/include/tacGenerator.h's TACOp enum and
// TACInstruction struct: the C++ version packs op/arg1/arg2/result/type
// into one struct with default-valued constructor arguments; Go has no
// default arguments, so the common instruction shapes are built through
// the small instrXxx helpers in instructions.go, and the remaining ones
// as Instruction struct literals that name every field they set.
package tac

import "github.com/skx/minic/types"

// Op is the opcode of one Instruction.
type Op int

// The closed set of TAC opcodes, per spec.md §3's TAC instruction data
// model.
const (
	Add Op = iota
	Sub
	Mul
	Div
	Mod
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	FuncBegin
	FuncEnd
	Return
	Assign
	Goto
	If
	Label
	AllocStack
	DeallocStack
	Negate
	Complement
	Increment
	Decrement
	Nop
	Mov
	Push
	Call
	EnterText
	EnterData
	EnterBss
	EnterLiteral8
	EnterCString
	ConvertType
	AddrOf
	Deref
)

func (o Op) String() string {
	names := [...]string{
		"ADD", "SUB", "MUL", "DIV", "MOD", "EQ", "NE", "LT", "LE", "GT", "GE",
		"FUNC_BEGIN", "FUNC_END", "RETURN", "ASSIGN", "GOTO", "IF", "LABEL",
		"ALLOC_STACK", "DEALLOC_STACK", "NEGATE", "COMPLEMENT", "INCREMENT",
		"DECREMENT", "NOP", "MOV", "PUSH", "CALL", "ENTER_TEXT", "ENTER_DATA",
		"ENTER_BSS", "ENTER_LITERAL8", "ENTER_CSTRING", "CONVERT_TYPE",
		"ADDR_OF", "DEREF",
	}
	if int(o) < len(names) {
		return names[o]
	}
	return "UNKNOWN"
}

// Instruction is one (op, arg1, arg2, result, type) tuple. Arg1/Arg2 are
// either a symbol's unique name or immediate literal text; an absent
// argument is the empty string.
//
// Indirect applies to DEREF (its Arg1) and MOV (its Result): it is set
// when that operand names a symbol holding a pointer VALUE that must
// itself be loaded and dereferenced, as opposed to a symbol whose own
// storage slot is the target address (a plain variable, or a struct
// value's field accessed by `.`). Both forms share the same string-typed
// operand shape - a bare unique name - so this flag is the only thing
// that tells the assembler which addressing mode applies; see
// tac/expr.go's storeLvalue/loadLvalue and genExpr's Deref case, the
// places that set it.
type Instruction struct {
	Op        Op
	Arg1      string
	Arg2      string
	Result    string
	Type      types.Type
	Indirect  bool
}
