package ast

import (
	"github.com/samber/lo"

	"github.com/skx/minic/types"
)

// IntLiteral is a signed 32-bit integer constant.
type IntLiteral struct {
	exprBase
	Value int32
}

// Kind implements Node.
func (n *IntLiteral) Kind() Kind { return KindIntLiteral }

// NewIntLiteral builds an IntLiteral at pos with the given value.
func NewIntLiteral(pos Position, v int32) *IntLiteral {
	return &IntLiteral{exprBase: exprBase{base: base{pos}, Type: types.New(types.Int)}, Value: v}
}

// LongLiteral is a signed 64-bit integer constant (`l` suffix).
type LongLiteral struct {
	exprBase
	Value int64
}

func (n *LongLiteral) Kind() Kind { return KindLongLiteral }

func NewLongLiteral(pos Position, v int64) *LongLiteral {
	return &LongLiteral{exprBase: exprBase{base: base{pos}, Type: types.New(types.Long)}, Value: v}
}

// UIntLiteral is an unsigned 32-bit integer constant (`u` suffix).
type UIntLiteral struct {
	exprBase
	Value uint32
}

func (n *UIntLiteral) Kind() Kind { return KindUIntLiteral }

func NewUIntLiteral(pos Position, v uint32) *UIntLiteral {
	return &UIntLiteral{exprBase: exprBase{base: base{pos}, Type: types.New(types.UInt)}, Value: v}
}

// ULongLiteral is an unsigned 64-bit integer constant (`ul` suffix).
type ULongLiteral struct {
	exprBase
	Value uint64
}

func (n *ULongLiteral) Kind() Kind { return KindULongLiteral }

func NewULongLiteral(pos Position, v uint64) *ULongLiteral {
	return &ULongLiteral{exprBase: exprBase{base: base{pos}, Type: types.New(types.ULong)}, Value: v}
}

// DoubleLiteral is a double-precision floating literal.
type DoubleLiteral struct {
	exprBase
	Value float64
}

func (n *DoubleLiteral) Kind() Kind { return KindDoubleLiteral }

func NewDoubleLiteral(pos Position, v float64) *DoubleLiteral {
	return &DoubleLiteral{exprBase: exprBase{base: base{pos}, Type: types.New(types.Double)}, Value: v}
}

// CharLiteral is a single-quoted character constant.
type CharLiteral struct {
	exprBase
	Value byte
}

func (n *CharLiteral) Kind() Kind { return KindCharLiteral }

func NewCharLiteral(pos Position, v byte) *CharLiteral {
	return &CharLiteral{exprBase: exprBase{base: base{pos}, Type: types.New(types.Char)}, Value: v}
}

// StringLiteral is a double-quoted string; it decays to char* at use
// sites but is emitted into the cstring literal section.
type StringLiteral struct {
	exprBase
	Value string
}

func (n *StringLiteral) Kind() Kind { return KindStringLiteral }

func NewStringLiteral(pos Position, v string) *StringLiteral {
	return &StringLiteral{exprBase: exprBase{base: base{pos}, Type: types.NewPointer(types.Char, 1)}, Value: v}
}

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	exprBase
	Value bool
}

func (n *BoolLiteral) Kind() Kind { return KindBoolLiteral }

func NewBoolLiteral(pos Position, v bool) *BoolLiteral {
	return &BoolLiteral{exprBase: exprBase{base: base{pos}, Type: types.New(types.Bool)}, Value: v}
}

// CompoundInit is an array (or struct) initializer `{ e1, e2, ... }`.
type CompoundInit struct {
	exprBase
	Elements []Expr
}

func (n *CompoundInit) Kind() Kind { return KindCompoundInit }

func NewCompoundInit(pos Position, elements []Expr) *CompoundInit {
	return &CompoundInit{exprBase: exprBase{base: base{pos}}, Elements: elements}
}

// Var is a reference to a declared variable by its source name; semantic
// analysis resolves it and fills in Unique (the post-renaming name used
// by every later stage) and ExprType.
type Var struct {
	exprBase
	Name   string
	Unique string
}

func (n *Var) Kind() Kind { return KindVar }

func NewVar(pos Position, name string) *Var {
	return &Var{exprBase: exprBase{base: base{pos}}, Name: name}
}

// VarDecl declares a new variable, with an optional initializer.
type VarDecl struct {
	base
	Var       *Var
	Type      types.Type
	Specifier Specifier
	Value     Expr // nil if uninitialized
}

func (n *VarDecl) Kind() Kind { return KindVarDecl }

func NewVarDecl(pos Position, v *Var, declType types.Type, spec Specifier, value Expr) *VarDecl {
	return &VarDecl{base: base{pos}, Var: v, Type: declType, Specifier: spec, Value: value}
}

// VarAssign assigns Value into Target, an lvalue expression (Var,
// Deref, ArrayAccess, or a field-access Postfix).
type VarAssign struct {
	base
	Target Expr
	Value  Expr
}

func (n *VarAssign) Kind() Kind { return KindVarAssign }

func NewVarAssign(pos Position, target, value Expr) *VarAssign {
	return &VarAssign{base: base{pos}, Target: target, Value: value}
}

// StructDecl declares a struct type and its member fields.
type StructDecl struct {
	base
	Name    string
	Members []*VarDecl
}

func (n *StructDecl) Kind() Kind { return KindStructDecl }

func NewStructDecl(pos Position, name string, members []*VarDecl) *StructDecl {
	return &StructDecl{base: base{pos}, Name: name, Members: members}
}

// Unary is a prefix unary operator: `-x`, `~x`, `++x`, `--x`.
type Unary struct {
	exprBase
	Op    UnaryOp
	Value Expr
}

func (n *Unary) Kind() Kind { return KindUnary }

func NewUnary(pos Position, op UnaryOp, value Expr) *Unary {
	return &Unary{exprBase: exprBase{base: base{pos}}, Op: op, Value: value}
}

// Binary is a binary operator application.
type Binary struct {
	exprBase
	Op    BinOp
	Left  Expr
	Right Expr
}

func (n *Binary) Kind() Kind { return KindBinary }

func NewBinary(pos Position, op BinOp, left, right Expr) *Binary {
	return &Binary{exprBase: exprBase{base: base{pos}}, Op: op, Left: left, Right: right}
}

// Postfix is a postfix operator: `x++`, `x--`, `x.field`, `x->field`.
type Postfix struct {
	exprBase
	Op    PostfixOp
	Value Expr
	Field string // set when Op is FieldDot or FieldArrow
}

func (n *Postfix) Kind() Kind { return KindPostfix }

func NewPostfix(pos Position, op PostfixOp, value Expr, field string) *Postfix {
	return &Postfix{exprBase: exprBase{base: base{pos}}, Op: op, Value: value, Field: field}
}

// Cast is an explicit `(type) expr` conversion. ExprType is the target
// type; SrcType records the pre-cast type for the assembler's
// instruction-selection.
type Cast struct {
	exprBase
	Expr    Expr
	SrcType types.Type
}

func (n *Cast) Kind() Kind { return KindCast }

func NewCast(pos Position, target types.Type, expr Expr) *Cast {
	return &Cast{exprBase: exprBase{base: base{pos}, Type: target}, Expr: expr}
}

// Deref is `*p`.
type Deref struct {
	exprBase
	Expr Expr
}

func (n *Deref) Kind() Kind { return KindDeref }

func NewDeref(pos Position, expr Expr) *Deref {
	return &Deref{exprBase: exprBase{base: base{pos}}, Expr: expr}
}

// AddrOf is `&x`.
type AddrOf struct {
	exprBase
	Expr Expr
}

func (n *AddrOf) Kind() Kind { return KindAddrOf }

func NewAddrOf(pos Position, expr Expr) *AddrOf {
	return &AddrOf{exprBase: exprBase{base: base{pos}}, Expr: expr}
}

// ArrayAccess is `a[i]`.
type ArrayAccess struct {
	exprBase
	Array Expr
	Index Expr
}

func (n *ArrayAccess) Kind() Kind { return KindArrayAccess }

func NewArrayAccess(pos Position, array, index Expr) *ArrayAccess {
	return &ArrayAccess{exprBase: exprBase{base: base{pos}}, Array: array, Index: index}
}

// If is an if/else statement. Else is nil when there is no else-branch.
type If struct {
	base
	Condition Expr
	Then      []Node
	Else      []Node
}

func (n *If) Kind() Kind { return KindIf }

func NewIf(pos Position, cond Expr, then, els []Node) *If {
	return &If{base: base{pos}, Condition: cond, Then: then, Else: els}
}

// While is a while-loop, labelled for break/continue resolution.
type While struct {
	base
	Condition Expr
	Body      []Node
	Label     string
}

func (n *While) Kind() Kind { return KindWhile }

func NewWhile(pos Position, cond Expr, body []Node) *While {
	return &While{base: base{pos}, Condition: cond, Body: body}
}

// For is a for-loop with an init statement, condition, and post
// expression, labelled for break/continue resolution.
type For struct {
	base
	Init      Node
	Condition Expr
	Post      Node
	Body      []Node
	Label     string
}

func (n *For) Kind() Kind { return KindFor }

func NewFor(pos Position, init Node, cond Expr, post Node, body []Node) *For {
	return &For{base: base{pos}, Init: init, Condition: cond, Post: post, Body: body}
}

// LoopControl is a `break;` or `continue;` statement.
type LoopControl struct {
	base
	IsBreak bool
	Label   string
}

func (n *LoopControl) Kind() Kind { return KindLoopControl }

func NewLoopControl(pos Position, isBreak bool) *LoopControl {
	return &LoopControl{base: base{pos}, IsBreak: isBreak}
}

// Func is a function declaration with its parameter list and body.
type Func struct {
	base
	Name       string
	Params     []*VarDecl
	Body       []Node
	ReturnType types.Type
	Specifier  Specifier
}

func (n *Func) Kind() Kind { return KindFunc }

func NewFunc(pos Position, name string, spec Specifier) *Func {
	return &Func{base: base{pos}, Name: name, Specifier: spec, ReturnType: types.New(types.Void)}
}

// ParamType returns the declared type of the i'th parameter.
func (n *Func) ParamType(i int) types.Type {
	return n.Params[i].Type
}

// ParamTypes projects the whole parameter list down to its declared
// types, in order, for callers (symbol-table registration) that only
// care about the signature, not the parameter names.
func (n *Func) ParamTypes() []types.Type {
	return lo.Map(n.Params, func(p *VarDecl, _ int) types.Type {
		return p.Type
	})
}

// FuncCall is a call expression `name(args...)`.
type FuncCall struct {
	exprBase
	Name string
	Args []Expr
}

func (n *FuncCall) Kind() Kind { return KindFuncCall }

func NewFuncCall(pos Position, name string, args []Expr) *FuncCall {
	return &FuncCall{exprBase: exprBase{base: base{pos}}, Name: name, Args: args}
}

// Return is a `return expr;` statement. Value is nil for `return;` in a
// void function.
type Return struct {
	base
	Value Expr
}

func (n *Return) Kind() Kind { return KindReturn }

func NewReturn(pos Position, value Expr) *Return {
	return &Return{base: base{pos}, Value: value}
}

// Program is the root node: an ordered list of top-level declarations
// (functions, globals, struct declarations).
type Program struct {
	base
	Decls []Node
}

func (n *Program) Kind() Kind { return KindProgram }

func NewProgram() *Program {
	return &Program{}
}
