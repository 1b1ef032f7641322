// Package ast defines the tagged-variant AST node set the parser
// builds and the semantic analyser/TAC generator walk.
//
// Grounded on original_source/include/ast.h: a closed NodeType
// enumeration over node structs. The C++ original uses virtual
// dispatch (ASTNode base class, `print`/`clone` overrides); Go has no
// inheritance, so each concrete node type implements the small Node
// interface directly and callers exhaustively type-switch on Kind()
// (or, in Go, on the concrete type itself) rather than calling a
// virtual method — the same "sum type, exhaustive match" idiom
// spec.md §9 asks for instead of an open class hierarchy.
//
// Ownership is tree-shaped: a parent node exclusively owns its
// children (no shared sub-expressions, no parent back-pointers), so the
// tree can be walked and freed without reference counting.
package ast

import "github.com/skx/minic/types"

// Kind tags which concrete Node a value is.
type Kind int

// The closed set of AST node kinds.
const (
	KindIntLiteral Kind = iota
	KindLongLiteral
	KindUIntLiteral
	KindULongLiteral
	KindDoubleLiteral
	KindCharLiteral
	KindStringLiteral
	KindBoolLiteral
	KindCompoundInit
	KindVar
	KindVarDecl
	KindVarAssign
	KindStructDecl
	KindUnary
	KindBinary
	KindPostfix
	KindCast
	KindDeref
	KindAddrOf
	KindArrayAccess
	KindIf
	KindWhile
	KindFor
	KindLoopControl
	KindFunc
	KindFuncCall
	KindReturn
	KindProgram
)

func (k Kind) String() string {
	names := [...]string{
		"IntLiteral", "LongLiteral", "UIntLiteral", "ULongLiteral", "DoubleLiteral",
		"CharLiteral", "StringLiteral", "BoolLiteral", "CompoundInit", "Var",
		"VarDecl", "VarAssign", "StructDecl", "Unary", "Binary", "Postfix", "Cast",
		"Deref", "AddrOf", "ArrayAccess", "If", "While", "For", "LoopControl",
		"Func", "FuncCall", "Return", "Program",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Position is the source location a node was parsed from.
type Position struct {
	Line   int
	Column int
}

// Node is implemented by every concrete AST node.
type Node interface {
	Kind() Kind
	Pos() Position
}

// Expr is implemented by every node that yields a value and therefore
// carries an inferred Type, populated by semantic analysis (before
// that it is the zero types.Type, which reads as `int`).
type Expr interface {
	Node
	ExprType() types.Type
	SetExprType(types.Type)
}

// UnaryOp is the operator of a UnaryNode.
type UnaryOp int

// The unary operators.
const (
	Negate UnaryOp = iota
	Complement
	PreIncrement
	PreDecrement
)

// BinOp is the operator of a BinaryNode.
type BinOp int

// The binary operators.
const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	LogicalAnd
	LogicalOr
	Equal
	NotEqual
	LessThan
	GreaterThan
	LessOrEqual
	GreaterOrEqual
)

// IsComparison reports whether op yields a bool result.
func (op BinOp) IsComparison() bool {
	switch op {
	case Equal, NotEqual, LessThan, GreaterThan, LessOrEqual, GreaterOrEqual:
		return true
	default:
		return false
	}
}

// IsShortCircuit reports whether op must be lowered with branches
// rather than as a single eager TAC instruction.
func (op BinOp) IsShortCircuit() bool {
	return op == LogicalAnd || op == LogicalOr
}

// PostfixOp is the operator of a PostfixNode.
type PostfixOp int

// The postfix operators.
const (
	PostIncrement PostfixOp = iota
	PostDecrement
	FieldDot   // a.field
	FieldArrow // a->field
)

// Specifier is a declaration's storage-class specifier.
type Specifier int

// The storage-class specifiers.
const (
	SpecNone Specifier = iota
	SpecStatic
	SpecExtern
)

func (s Specifier) String() string {
	switch s {
	case SpecStatic:
		return "static"
	case SpecExtern:
		return "extern"
	default:
		return ""
	}
}

// base is embedded by every concrete node to provide Pos().
type base struct {
	position Position
}

func (b base) Pos() Position { return b.position }

// exprBase is embedded by every Expr to provide ExprType/SetExprType.
type exprBase struct {
	base
	Type types.Type
}

func (e exprBase) ExprType() types.Type       { return e.Type }
func (e *exprBase) SetExprType(t types.Type)  { e.Type = t }
