package semantics

import (
	"github.com/skx/minic/ast"
	"github.com/skx/minic/cmderr"
	"github.com/skx/minic/types"
)

// analyzeExpr infers and records expr's type, per the rules in spec.md
// §4.3 ("Type inference rules (used by semantic analyser)"), and
// recurses into every child expression first (post-order).
func (a *Analyzer) analyzeExpr(expr ast.Expr) (types.Type, error) {
	switch n := expr.(type) {
	case *ast.IntLiteral, *ast.LongLiteral, *ast.UIntLiteral, *ast.ULongLiteral,
		*ast.DoubleLiteral, *ast.CharLiteral, *ast.StringLiteral, *ast.BoolLiteral:
		return expr.ExprType(), nil

	case *ast.Var:
		return a.analyzeVar(n)

	case *ast.Unary:
		return a.analyzeUnary(n)

	case *ast.Binary:
		return a.analyzeBinary(n)

	case *ast.Postfix:
		return a.analyzePostfix(n)

	case *ast.Cast:
		return a.analyzeCast(n)

	case *ast.Deref:
		return a.analyzeDeref(n)

	case *ast.AddrOf:
		return a.analyzeAddrOf(n)

	case *ast.ArrayAccess:
		return a.analyzeArrayAccess(n)

	case *ast.FuncCall:
		return a.analyzeFuncCall(n)

	case *ast.CompoundInit:
		return a.analyzeCompoundInit(n)

	default:
		return types.Type{}, cmderr.Semantic(expr.Pos().Line, expr.Pos().Column, "internal error: unhandled expression %T", expr)
	}
}

func (a *Analyzer) analyzeVar(n *ast.Var) (types.Type, error) {
	sym, ok := a.global.Resolve(n.Name)
	if !ok {
		return types.Type{}, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "use of undeclared identifier %q", n.Name)
	}
	n.Unique = sym.Unique
	n.SetExprType(sym.Type)
	return sym.Type, nil
}

func (a *Analyzer) analyzeUnary(n *ast.Unary) (types.Type, error) {
	operandType, err := a.analyzeExpr(n.Value)
	if err != nil {
		return types.Type{}, err
	}

	switch n.Op {
	case ast.PreIncrement, ast.PreDecrement:
		if !isLvalue(n.Value) {
			return types.Type{}, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "operand of ++/-- must be an lvalue")
		}
	}

	n.SetExprType(operandType)
	return operandType, nil
}

// analyzeBinary implements spec.md §4.3's numeric-promotion and
// comparison-typing rules.
func (a *Analyzer) analyzeBinary(n *ast.Binary) (types.Type, error) {
	leftType, err := a.analyzeExpr(n.Left)
	if err != nil {
		return types.Type{}, err
	}
	rightType, err := a.analyzeExpr(n.Right)
	if err != nil {
		return types.Type{}, err
	}

	if leftType.IsPointer() && !rightType.IsPointer() && rightType.IsIntegral() {
		n.SetExprType(leftType)
		return leftType, nil
	}
	if rightType.IsPointer() && !leftType.IsPointer() && leftType.IsIntegral() {
		n.SetExprType(rightType)
		return rightType, nil
	}

	result := promote(leftType, rightType)

	if !leftType.Equal(result) {
		n.Left = ast.NewCast(n.Left.Pos(), result, n.Left)
	}
	if !rightType.Equal(result) {
		n.Right = ast.NewCast(n.Right.Pos(), result, n.Right)
	}

	if n.Op.IsComparison() {
		boolType := types.New(types.Bool)
		n.SetExprType(boolType)
		return boolType, nil
	}

	n.SetExprType(result)
	return result, nil
}

// promote implements the numeric binary op result-type rule: double
// wins outright; else long/ulong wins over int-width, with unsigned
// winning a same-width tie; else int/uint with the same unsigned-wins
// tie-break.
func promote(a, b types.Type) types.Type {
	if a.Base == types.Double || b.Base == types.Double {
		return types.New(types.Double)
	}
	if a.IsSize8() || b.IsSize8() {
		if a.Base == types.ULong || b.Base == types.ULong {
			return types.New(types.ULong)
		}
		return types.New(types.Long)
	}
	if a.Base == types.UInt || b.Base == types.UInt {
		return types.New(types.UInt)
	}
	return types.New(types.Int)
}

func (a *Analyzer) analyzePostfix(n *ast.Postfix) (types.Type, error) {
	operandType, err := a.analyzeExpr(n.Value)
	if err != nil {
		return types.Type{}, err
	}

	switch n.Op {
	case ast.PostIncrement, ast.PostDecrement:
		if !isLvalue(n.Value) {
			return types.Type{}, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "operand of ++/-- must be an lvalue")
		}
		n.SetExprType(operandType)
		return operandType, nil

	case ast.FieldDot:
		if !operandType.IsStruct() || operandType.IsPointer() {
			return types.Type{}, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "`.` requires a struct value, got %s", operandType)
		}
		return a.resolveField(n, operandType)

	case ast.FieldArrow:
		if !operandType.IsStruct() || !operandType.IsPointer() {
			return types.Type{}, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "`->` requires a pointer-to-struct, got %s", operandType)
		}
		return a.resolveField(n, operandType)

	default:
		return types.Type{}, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "internal error: unhandled postfix operator")
	}
}

func (a *Analyzer) resolveField(n *ast.Postfix, structType types.Type) (types.Type, error) {
	field, ok := structType.Field(n.Field)
	if !ok {
		return types.Type{}, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "struct %s has no field %q", structType, n.Field)
	}
	n.SetExprType(field.Type)
	return field.Type, nil
}

func (a *Analyzer) analyzeCast(n *ast.Cast) (types.Type, error) {
	srcType, err := a.analyzeExpr(n.Expr)
	if err != nil {
		return types.Type{}, err
	}
	n.SrcType = srcType
	target := n.ExprType()

	if !target.ConvertCompatibleFrom(srcType) {
		return types.Type{}, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "cannot cast %s to %s", srcType, target)
	}
	return target, nil
}

func (a *Analyzer) analyzeDeref(n *ast.Deref) (types.Type, error) {
	operandType, err := a.analyzeExpr(n.Expr)
	if err != nil {
		return types.Type{}, err
	}
	if !operandType.IsPointer() {
		return types.Type{}, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "cannot dereference non-pointer type %s", operandType)
	}
	result := operandType.Pointee()
	n.SetExprType(result)
	return result, nil
}

func (a *Analyzer) analyzeAddrOf(n *ast.AddrOf) (types.Type, error) {
	if !isLvalue(n.Expr) {
		return types.Type{}, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "operand of `&` must be an lvalue")
	}
	operandType, err := a.analyzeExpr(n.Expr)
	if err != nil {
		return types.Type{}, err
	}
	result := operandType.PointerTo()
	n.SetExprType(result)
	return result, nil
}

func (a *Analyzer) analyzeArrayAccess(n *ast.ArrayAccess) (types.Type, error) {
	arrayType, err := a.analyzeExpr(n.Array)
	if err != nil {
		return types.Type{}, err
	}
	indexType, err := a.analyzeExpr(n.Index)
	if err != nil {
		return types.Type{}, err
	}
	if !indexType.IsIntegral() {
		return types.Type{}, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "array index must be integral, got %s", indexType)
	}
	if !indexType.Equal(types.New(types.Long)) {
		n.Index = ast.NewCast(n.Index.Pos(), types.New(types.Long), n.Index)
	}

	var result types.Type
	switch {
	case arrayType.IsArray():
		result = arrayType.WithoutOuterArrayDimension()
	case arrayType.IsPointer():
		result = arrayType.Pointee()
	default:
		return types.Type{}, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "cannot index non-array, non-pointer type %s", arrayType)
	}
	n.SetExprType(result)
	return result, nil
}

func (a *Analyzer) analyzeFuncCall(n *ast.FuncCall) (types.Type, error) {
	fn, ok := a.global.FuncSymbol(n.Name)
	if !ok {
		return types.Type{}, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "call to undeclared function %q", n.Name)
	}
	if len(n.Args) != len(fn.ParamTypes) {
		return types.Type{}, cmderr.Semantic(n.Pos().Line, n.Pos().Column,
			"function %q expects %d argument(s), got %d", n.Name, len(fn.ParamTypes), len(n.Args))
	}

	for i, arg := range n.Args {
		argType, err := a.analyzeExpr(arg)
		if err != nil {
			return types.Type{}, err
		}
		paramType := fn.ParamTypes[i]
		if !paramType.AssignCompatibleFrom(argType) {
			return types.Type{}, cmderr.Semantic(n.Pos().Line, n.Pos().Column,
				"argument %d to %q: cannot pass %s as %s", i+1, n.Name, argType, paramType)
		}
		if !paramType.Equal(argType) {
			n.Args[i] = ast.NewCast(arg.Pos(), paramType, arg)
		}
	}

	n.SetExprType(fn.ReturnType)
	return fn.ReturnType, nil
}

func (a *Analyzer) analyzeCompoundInit(n *ast.CompoundInit) (types.Type, error) {
	for _, el := range n.Elements {
		if _, err := a.analyzeExpr(el); err != nil {
			return types.Type{}, err
		}
	}
	// A compound initializer's own type is fixed by the declaration it
	// initializes (analyzeVarDecl special-cases it); until matched
	// against one it carries no independent type.
	return n.ExprType(), nil
}
