// Package semantics implements the post-order AST walk that resolves
// every identifier to a symbol, infers and records each expression's
// type, inserts implicit conversions, labels loops for break/continue,
// and validates the rules spec.md §4.5 lists.
//
// Grounded on original_source/include/semanticAnalyser.h and the older
// semanticAnalyser.cpp draft: the C++ original dispatches through a
// NodeType -> std::function handler map built at construction time; Go
// has no closure-keyed dispatch table convention as idiomatic as a type
// switch, so Analyzer.analyzeStmt/analyzeExpr exhaustively switch on the
// concrete *ast.X type instead, one case per original handler.
package semantics

import (
	"fmt"

	"github.com/skx/minic/ast"
	"github.com/skx/minic/cmderr"
	"github.com/skx/minic/internal/clog"
	"github.com/skx/minic/stack"
	"github.com/skx/minic/symbols"
	"github.com/skx/minic/types"
)

// Analyzer walks a parsed program, mutating it in place (filling in
// ExprType on every expression, Unique on every Var, Label on every loop
// and loop-control statement) and populating the global symbol table.
type Analyzer struct {
	global        *symbols.GlobalTable
	structs       map[string]types.Type
	loopLabels    *stack.Stack[string]
	loopCounter   int
	strictExterns bool
}

// New builds an Analyzer over a fresh global symbol table.
func New() *Analyzer {
	return &Analyzer{
		global:     symbols.NewGlobalTable(),
		structs:    map[string]types.Type{},
		loopLabels: stack.New[string](),
	}
}

// SetStrictExterns controls whether Analyze rejects an `extern` global
// that is never matched by a storage-defining declaration in the same
// translation unit (internal/config's Linkage.StrictExtern). Off by
// default: spec.md's baseline behaviour trusts the linker to resolve
// it instead.
func (a *Analyzer) SetStrictExterns(v bool) {
	a.strictExterns = v
}

// Global returns the symbol table populated by Analyze, for consumption
// by the TAC generator and assembler.
func (a *Analyzer) Global() *symbols.GlobalTable {
	return a.global
}

// Analyze performs the full semantic pass over prog: struct and function
// signature registration, then body analysis.
func (a *Analyzer) Analyze(prog *ast.Program) error {
	for _, decl := range prog.Decls {
		if sd, ok := decl.(*ast.StructDecl); ok {
			if err := a.registerStruct(sd); err != nil {
				return err
			}
		}
	}

	for _, decl := range prog.Decls {
		switch n := decl.(type) {
		case *ast.Func:
			if err := a.registerFunc(n); err != nil {
				return err
			}
		case *ast.VarDecl:
			if err := a.registerGlobalVar(n); err != nil {
				return err
			}
		}
	}

	for _, decl := range prog.Decls {
		if fn, ok := decl.(*ast.Func); ok {
			if err := a.analyzeFuncBody(fn); err != nil {
				return err
			}
		}
	}

	if a.strictExterns {
		if unresolved := a.global.UnresolvedExterns(); len(unresolved) > 0 {
			return cmderr.Semantic(0, 0, "unresolved extern global %q: no matching definition in this translation unit", unresolved[0])
		}
	}

	return nil
}

// registerStruct resolves each member's type (against structs already
// registered) and builds the struct's field-offset layout.
func (a *Analyzer) registerStruct(sd *ast.StructDecl) error {
	if _, exists := a.structs[sd.Name]; exists {
		return cmderr.Semantic(sd.Pos().Line, sd.Pos().Column, "redefinition of struct %q", sd.Name)
	}

	st := types.NewStruct(sd.Name, 0)
	for _, member := range sd.Members {
		memberType, err := a.resolveType(member.Type, member.Pos())
		if err != nil {
			return err
		}
		st = st.WithField(member.Var.Name, memberType)
	}
	a.structs[sd.Name] = st
	return nil
}

// resolveType fills in a named struct type's Fields from the struct
// table; scalar, pointer, and array types pass through unchanged.
func (a *Analyzer) resolveType(t types.Type, pos ast.Position) (types.Type, error) {
	if t.Base != types.Struct {
		return t, nil
	}
	full, ok := a.structs[t.StructName]
	if !ok {
		return types.Type{}, cmderr.Semantic(pos.Line, pos.Column, "undeclared struct %q", t.StructName)
	}
	full.PtrDepth = t.PtrDepth
	full.ArrayDims = t.ArrayDims
	return full, nil
}

func linkageFor(spec ast.Specifier) symbols.Linkage {
	switch spec {
	case ast.SpecStatic:
		return symbols.LinkInternal
	case ast.SpecExtern:
		return symbols.LinkExternal
	default:
		return symbols.LinkExternal
	}
}

func (a *Analyzer) registerFunc(fn *ast.Func) error {
	retType, err := a.resolveType(fn.ReturnType, fn.Pos())
	if err != nil {
		return err
	}
	fn.ReturnType = retType

	for _, p := range fn.Params {
		pt, err := a.resolveType(p.Type, p.Pos())
		if err != nil {
			return err
		}
		p.Type = pt
	}
	params := fn.ParamTypes()

	defined := fn.Body != nil
	if err := a.global.DeclareFunc(fn.Name, params, retType, linkageFor(fn.Specifier), defined); err != nil {
		return err
	}
	return nil
}

func (a *Analyzer) registerGlobalVar(decl *ast.VarDecl) error {
	declType, err := a.resolveType(decl.Type, decl.Pos())
	if err != nil {
		return err
	}
	decl.Type = declType

	linkage := linkageFor(decl.Specifier)
	definesStorage := decl.Specifier != ast.SpecExtern

	sym, err := a.global.DeclareGlobal(decl.Var.Name, declType, linkage, definesStorage)
	if err != nil {
		return err
	}
	decl.Var.Unique = sym.Unique
	decl.Var.SetExprType(declType)
	return nil
}

// analyzeFuncBody walks one function's parameter list and statements in
// a fresh per-function scope.
func (a *Analyzer) analyzeFuncBody(fn *ast.Func) error {
	if fn.Body == nil {
		return nil // a prototype with no definition
	}

	table := a.global.EnterFunction(fn.Name)

	for _, param := range fn.Params {
		sym, err := table.DeclareVar(param.Var.Name, param.Type, false)
		if err != nil {
			return err
		}
		param.Var.Unique = sym.Unique
		param.Var.SetExprType(param.Type)
	}

	for _, stmt := range fn.Body {
		if err := a.analyzeStmt(stmt, fn); err != nil {
			return err
		}
	}
	return nil
}

// analyzeStmt type-switches over every statement-level node kind.
func (a *Analyzer) analyzeStmt(node ast.Node, fn *ast.Func) error {
	switch n := node.(type) {
	case *ast.VarDecl:
		return a.analyzeVarDecl(n)
	case *ast.VarAssign:
		return a.analyzeVarAssign(n)
	case *ast.Return:
		return a.analyzeReturn(n, fn)
	case *ast.If:
		return a.analyzeIf(n, fn)
	case *ast.While:
		return a.analyzeWhile(n, fn)
	case *ast.For:
		return a.analyzeFor(n, fn)
	case *ast.LoopControl:
		return a.analyzeLoopControl(n)
	case ast.Expr:
		_, err := a.analyzeExpr(n)
		return err
	default:
		return cmderr.Semantic(node.Pos().Line, node.Pos().Column, "internal error: unhandled statement %T", node)
	}
}

func (a *Analyzer) analyzeBlock(stmts []ast.Node, fn *ast.Func) error {
	table, _ := a.global.FuncTable(fn.Name)
	table.EnterScope()
	defer table.ExitScope()

	for _, stmt := range stmts {
		if err := a.analyzeStmt(stmt, fn); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeVarDecl(n *ast.VarDecl) error {
	declType, err := a.resolveType(n.Type, n.Pos())
	if err != nil {
		return err
	}
	n.Type = declType

	table, _ := a.global.FuncTable(a.global.CurrentFunction())
	static := n.Specifier == ast.SpecStatic
	sym, err := table.DeclareVar(n.Var.Name, declType, static)
	if err != nil {
		return cmderr.Semantic(n.Pos().Line, n.Pos().Column, "%v", err)
	}
	n.Var.Unique = sym.Unique
	n.Var.SetExprType(declType)

	if n.Value != nil {
		valueType, err := a.analyzeExpr(n.Value)
		if err != nil {
			return err
		}
		if !declType.AssignCompatibleFrom(valueType) {
			if _, ok := n.Value.(*ast.CompoundInit); !ok {
				return cmderr.Semantic(n.Pos().Line, n.Pos().Column,
					"cannot initialize %s with %s", declType, valueType)
			}
		}
	}
	return nil
}

func (a *Analyzer) analyzeVarAssign(n *ast.VarAssign) error {
	if !isLvalue(n.Target) {
		return cmderr.Semantic(n.Pos().Line, n.Pos().Column, "left-hand side of assignment is not an lvalue")
	}
	targetType, err := a.analyzeExpr(n.Target)
	if err != nil {
		return err
	}
	valueType, err := a.analyzeExpr(n.Value)
	if err != nil {
		return err
	}
	if !targetType.AssignCompatibleFrom(valueType) {
		return cmderr.Semantic(n.Pos().Line, n.Pos().Column, "cannot assign %s to %s", valueType, targetType)
	}
	if !targetType.Equal(valueType) {
		n.Value = ast.NewCast(n.Pos(), targetType, n.Value)
	}
	return nil
}

func (a *Analyzer) analyzeReturn(n *ast.Return, fn *ast.Func) error {
	if n.Value == nil {
		if !fn.ReturnType.IsVoid() {
			return cmderr.Semantic(n.Pos().Line, n.Pos().Column, "missing return value in non-void function %q", fn.Name)
		}
		return nil
	}
	valueType, err := a.analyzeExpr(n.Value)
	if err != nil {
		return err
	}
	if !fn.ReturnType.AssignCompatibleFrom(valueType) {
		return cmderr.Semantic(n.Pos().Line, n.Pos().Column,
			"cannot return %s from function %q declared to return %s", valueType, fn.Name, fn.ReturnType)
	}
	if !fn.ReturnType.Equal(valueType) {
		n.Value = ast.NewCast(n.Pos(), fn.ReturnType, n.Value)
	}
	return nil
}

func (a *Analyzer) analyzeIf(n *ast.If, fn *ast.Func) error {
	condType, err := a.analyzeExpr(n.Condition)
	if err != nil {
		return err
	}
	if !condType.IsIntegral() {
		return cmderr.Semantic(n.Pos().Line, n.Pos().Column, "if condition must be integral, got %s", condType)
	}
	if err := a.analyzeBlock(n.Then, fn); err != nil {
		return err
	}
	if n.Else != nil {
		if err := a.analyzeBlock(n.Else, fn); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeWhile(n *ast.While, fn *ast.Func) error {
	condType, err := a.analyzeExpr(n.Condition)
	if err != nil {
		return err
	}
	if !condType.IsIntegral() {
		return cmderr.Semantic(n.Pos().Line, n.Pos().Column, "while condition must be integral, got %s", condType)
	}

	n.Label = a.enterLoop()
	defer a.exitLoop()

	return a.analyzeBlock(n.Body, fn)
}

func (a *Analyzer) analyzeFor(n *ast.For, fn *ast.Func) error {
	table, _ := a.global.FuncTable(fn.Name)
	table.EnterScope()
	defer table.ExitScope()

	if n.Init != nil {
		if err := a.analyzeStmt(n.Init, fn); err != nil {
			return err
		}
	}
	if n.Condition != nil {
		condType, err := a.analyzeExpr(n.Condition)
		if err != nil {
			return err
		}
		if !condType.IsIntegral() {
			return cmderr.Semantic(n.Pos().Line, n.Pos().Column, "for condition must be integral, got %s", condType)
		}
	}
	if n.Post != nil {
		if err := a.analyzeStmt(n.Post, fn); err != nil {
			return err
		}
	}

	n.Label = a.enterLoop()
	defer a.exitLoop()

	for _, stmt := range n.Body {
		if err := a.analyzeStmt(stmt, fn); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeLoopControl(n *ast.LoopControl) error {
	label, err := a.loopLabels.Peek()
	if err != nil {
		kind := "continue"
		if n.IsBreak {
			kind = "break"
		}
		return cmderr.Semantic(n.Pos().Line, n.Pos().Column, "%s outside of a loop", kind)
	}
	n.Label = label
	return nil
}

// enterLoop generates the next `Lloop<n>` label and pushes it for
// break/continue resolution; LoopControl.Label carries the base label,
// and the TAC generator appends `_start`/`_end` per spec.md §4.5, plus
// `_continue`, the target of `continue`.
func (a *Analyzer) enterLoop() string {
	a.loopCounter++
	label := fmt.Sprintf("Lloop%d", a.loopCounter)
	a.loopLabels.Push(label)
	clog.Debugf("allocated label %s", label)
	return label
}

// exitLoop pops the label pushed by the matching enterLoop; every call
// site pairs the two via defer, so the stack is never empty here.
func (a *Analyzer) exitLoop() {
	_, _ = a.loopLabels.Pop()
}

// isLvalue reports whether expr denotes an assignable location: a
// variable, a dereference, an array index, or a field access.
func isLvalue(expr ast.Expr) bool {
	switch n := expr.(type) {
	case *ast.Var, *ast.Deref, *ast.ArrayAccess:
		return true
	case *ast.Postfix:
		return n.Op == ast.FieldDot || n.Op == ast.FieldArrow
	default:
		return false
	}
}
