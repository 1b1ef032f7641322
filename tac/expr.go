package tac

import (
	"strconv"

	"github.com/skx/minic/ast"
	"github.com/skx/minic/cmderr"
	"github.com/skx/minic/types"
)

// lvalue is the address-form of an assignable expression: either a
// plain symbol name (Direct — a variable or temporary's own stack/data
// slot) or a pointer value held in a temporary (Indirect — the target
// of a Deref, ArrayAccess, or `->` field access), plus a byte Offset
// applied atop either form (field access within a struct, or an array
// element's index*size). Exactly one of Direct/Indirect is set.
type lvalue struct {
	Direct   string
	Indirect string
	Offset   int
	Ty       types.Type
}

// genLvalue computes the address-form of an assignable expression
// without loading its value. genExpr calls this for read access via
// loadLvalue; genVarAssign calls it for write access via storeLvalue.
func (g *Generator) genLvalue(expr ast.Expr) (lvalue, []Instruction, error) {
	switch n := expr.(type) {
	case *ast.Var:
		return lvalue{Direct: n.Unique, Ty: n.ExprType()}, nil, nil

	case *ast.Deref:
		operand, instrs, err := g.genExpr(n.Expr)
		if err != nil {
			return lvalue{}, nil, err
		}
		return lvalue{Indirect: operand, Ty: n.ExprType()}, instrs, nil

	case *ast.ArrayAccess:
		return g.genArrayLvalue(n)

	case *ast.Postfix:
		if n.Op == ast.FieldDot {
			base, instrs, err := g.genLvalue(n.Value)
			if err != nil {
				return lvalue{}, nil, err
			}
			field, ok := n.Value.ExprType().Field(n.Field)
			if !ok {
				return lvalue{}, nil, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "internal error: unknown field %q", n.Field)
			}
			base.Offset += field.Offset
			base.Ty = field.Type
			return base, instrs, nil
		}
		if n.Op == ast.FieldArrow {
			operand, instrs, err := g.genExpr(n.Value)
			if err != nil {
				return lvalue{}, nil, err
			}
			field, ok := n.Value.ExprType().Pointee().Field(n.Field)
			if !ok {
				return lvalue{}, nil, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "internal error: unknown field %q", n.Field)
			}
			return lvalue{Indirect: operand, Offset: field.Offset, Ty: field.Type}, instrs, nil
		}
		return lvalue{}, nil, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "internal error: %T is not an lvalue", expr)

	default:
		return lvalue{}, nil, cmderr.Semantic(expr.Pos().Line, expr.Pos().Column, "internal error: %T is not an lvalue", expr)
	}
}

func (g *Generator) genArrayLvalue(n *ast.ArrayAccess) (lvalue, []Instruction, error) {
	baseOperand, instrs, err := g.genArrayBase(n.Array)
	if err != nil {
		return lvalue{}, nil, err
	}
	idxOperand, idxInstrs, err := g.genExpr(n.Index)
	if err != nil {
		return lvalue{}, nil, err
	}
	instrs = append(instrs, idxInstrs...)

	elemType := n.ExprType()
	scaled := g.declareTemp(types.New(types.Long))
	instrs = append(instrs, Instruction{Op: Mul, Arg1: idxOperand, Arg2: strconv.Itoa(elemType.Size()), Result: scaled.Unique, Type: types.New(types.Long)})

	addr := g.declareTemp(elemType.PointerTo())
	instrs = append(instrs, Instruction{Op: Add, Arg1: baseOperand, Arg2: scaled.Unique, Result: addr.Unique, Type: addr.Type})

	return lvalue{Indirect: addr.Unique, Ty: elemType}, instrs, nil
}

// genArrayBase evaluates the base of an array-index expression to a
// pointer-valued operand: a pointer variable's value is used directly,
// while an array variable decays via AddrOf.
func (g *Generator) genArrayBase(expr ast.Expr) (string, []Instruction, error) {
	if expr.ExprType().IsArray() {
		lv, instrs, err := g.genLvalue(expr)
		if err != nil {
			return "", nil, err
		}
		temp := g.declareTemp(expr.ExprType().PointerTo())
		instrs = append(instrs, Instruction{Op: AddrOf, Arg1: lv.Direct, Arg2: strconv.Itoa(lv.Offset), Result: temp.Unique, Type: temp.Type})
		return temp.Unique, instrs, nil
	}
	return g.genExpr(expr)
}

// loadLvalue renders lv's current value into an operand, emitting a
// Deref when the address isn't a bare, zero-offset direct symbol.
func (g *Generator) loadLvalue(lv lvalue) (string, []Instruction) {
	if lv.Indirect == "" && lv.Offset == 0 {
		return lv.Direct, nil
	}
	addr := lv.Direct
	if lv.Indirect != "" {
		addr = lv.Indirect
	}
	temp := g.declareTemp(lv.Ty)
	return temp.Unique, []Instruction{{Op: Deref, Arg1: addr, Arg2: strconv.Itoa(lv.Offset), Result: temp.Unique, Type: lv.Ty, Indirect: lv.Indirect != ""}}
}

// storeLvalue writes valueOperand into lv, via a Mov carrying the byte
// offset (0 for a plain direct symbol).
func (g *Generator) storeLvalue(lv lvalue, valueOperand string, ty types.Type) []Instruction {
	addr := lv.Direct
	if lv.Indirect != "" {
		addr = lv.Indirect
	}
	return []Instruction{{Op: Mov, Arg1: valueOperand, Arg2: strconv.Itoa(lv.Offset), Result: addr, Type: ty, Indirect: lv.Indirect != ""}}
}

// genExpr lowers expr to a single operand (a symbol's unique name, a
// pool label, or a literal's rendered text) plus the instructions that
// compute it.
func (g *Generator) genExpr(expr ast.Expr) (string, []Instruction, error) {
	switch n := expr.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(int64(n.Value), 10), nil, nil
	case *ast.LongLiteral:
		return strconv.FormatInt(n.Value, 10), nil, nil
	case *ast.UIntLiteral:
		return strconv.FormatUint(uint64(n.Value), 10), nil, nil
	case *ast.ULongLiteral:
		return strconv.FormatUint(n.Value, 10), nil, nil
	case *ast.CharLiteral:
		return strconv.Itoa(int(n.Value)), nil, nil
	case *ast.BoolLiteral:
		if n.Value {
			return "1", nil, nil
		}
		return "0", nil, nil
	case *ast.DoubleLiteral:
		text := strconv.FormatFloat(n.Value, 'g', -1, 64)
		return g.internLiteral8(text, n.ExprType()), nil, nil
	case *ast.StringLiteral:
		return g.internString(n.Value), nil, nil

	case *ast.Var:
		return n.Unique, nil, nil

	case *ast.Unary:
		return g.genUnary(n)

	case *ast.Binary:
		return g.genBinary(n)

	case *ast.Postfix:
		return g.genPostfix(n)

	case *ast.Cast:
		operand, instrs, err := g.genExpr(n.Expr)
		if err != nil {
			return "", nil, err
		}
		temp := g.declareTemp(n.ExprType())
		instrs = append(instrs, Instruction{Op: ConvertType, Arg1: operand, Arg2: n.SrcType.String(), Result: temp.Unique, Type: n.ExprType()})
		return temp.Unique, instrs, nil

	case *ast.Deref:
		operand, instrs, err := g.genExpr(n.Expr)
		if err != nil {
			return "", nil, err
		}
		temp := g.declareTemp(n.ExprType())
		instrs = append(instrs, Instruction{Op: Deref, Arg1: operand, Arg2: "0", Result: temp.Unique, Type: n.ExprType(), Indirect: true})
		return temp.Unique, instrs, nil

	case *ast.AddrOf:
		return g.genAddrOf(n)

	case *ast.ArrayAccess:
		lv, instrs, err := g.genArrayLvalue(n)
		if err != nil {
			return "", nil, err
		}
		operand, loadInstrs := g.loadLvalue(lv)
		instrs = append(instrs, loadInstrs...)
		return operand, instrs, nil

	case *ast.FuncCall:
		return g.genFuncCall(n)

	case *ast.CompoundInit:
		return "", nil, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "compound initializer may only appear in a declaration")

	default:
		return "", nil, cmderr.Semantic(expr.Pos().Line, expr.Pos().Column, "internal error: unhandled expression %T", expr)
	}
}

func (g *Generator) genUnary(n *ast.Unary) (string, []Instruction, error) {
	switch n.Op {
	case ast.PreIncrement, ast.PreDecrement:
		lv, instrs, err := g.genLvalue(n.Value)
		if err != nil {
			return "", nil, err
		}
		oldOperand, loadInstrs := g.loadLvalue(lv)
		instrs = append(instrs, loadInstrs...)
		op := Increment
		if n.Op == ast.PreDecrement {
			op = Decrement
		}
		newTemp := g.declareTemp(n.ExprType())
		instrs = append(instrs, Instruction{Op: op, Arg1: oldOperand, Result: newTemp.Unique, Type: n.ExprType()})
		instrs = append(instrs, g.storeLvalue(lv, newTemp.Unique, n.ExprType())...)
		return newTemp.Unique, instrs, nil

	default:
		operand, instrs, err := g.genExpr(n.Value)
		if err != nil {
			return "", nil, err
		}
		op := Negate
		if n.Op == ast.Complement {
			op = Complement
		}
		temp := g.declareTemp(n.ExprType())
		instrs = append(instrs, Instruction{Op: op, Arg1: operand, Result: temp.Unique, Type: n.ExprType()})
		return temp.Unique, instrs, nil
	}
}

func (g *Generator) genBinary(n *ast.Binary) (string, []Instruction, error) {
	if n.Op.IsShortCircuit() {
		return g.genShortCircuit(n)
	}

	leftOperand, instrs, err := g.genExpr(n.Left)
	if err != nil {
		return "", nil, err
	}
	rightOperand, rightInstrs, err := g.genExpr(n.Right)
	if err != nil {
		return "", nil, err
	}
	instrs = append(instrs, rightInstrs...)

	temp := g.declareTemp(n.ExprType())
	instrs = append(instrs, Instruction{Op: binOpToOp(n.Op), Arg1: leftOperand, Arg2: rightOperand, Result: temp.Unique, Type: n.ExprType()})
	return temp.Unique, instrs, nil
}

func binOpToOp(op ast.BinOp) Op {
	switch op {
	case ast.Add:
		return Add
	case ast.Sub:
		return Sub
	case ast.Mul:
		return Mul
	case ast.Div:
		return Div
	case ast.Mod:
		return Mod
	case ast.Equal:
		return Eq
	case ast.NotEqual:
		return Ne
	case ast.LessThan:
		return Lt
	case ast.GreaterThan:
		return Gt
	case ast.LessOrEqual:
		return Le
	case ast.GreaterOrEqual:
		return Ge
	default:
		return Nop
	}
}

// genShortCircuit lowers `&&`/`||` to branches rather than an eager
// boolean op, per the REDESIGN decision recorded in DESIGN.md: `a && b` short-
// circuits to false the moment either operand is false; `a || b`
// short-circuits to true the moment either operand is true.
func (g *Generator) genShortCircuit(n *ast.Binary) (string, []Instruction, error) {
	result := g.declareTemp(n.ExprType())
	lend := g.newLabel("Lsc_end")

	if n.Op == ast.LogicalAnd {
		lfalse := g.newLabel("Lsc_false")
		leftOperand, instrs, err := g.genExpr(n.Left)
		if err != nil {
			return "", nil, err
		}
		instrs = append(instrs, instrIf(leftOperand, lfalse))
		rightOperand, rightInstrs, err := g.genExpr(n.Right)
		if err != nil {
			return "", nil, err
		}
		instrs = append(instrs, rightInstrs...)
		instrs = append(instrs, instrIf(rightOperand, lfalse))
		instrs = append(instrs, instrAssign("1", result.Unique, n.ExprType()))
		instrs = append(instrs, instrGoto(lend))
		instrs = append(instrs, instrLabel(lfalse))
		instrs = append(instrs, instrAssign("0", result.Unique, n.ExprType()))
		instrs = append(instrs, instrLabel(lend))
		return result.Unique, instrs, nil
	}

	lnext := g.newLabel("Lsc_next")
	lfalse := g.newLabel("Lsc_false")
	leftOperand, instrs, err := g.genExpr(n.Left)
	if err != nil {
		return "", nil, err
	}
	instrs = append(instrs, instrIf(leftOperand, lnext))
	instrs = append(instrs, instrAssign("1", result.Unique, n.ExprType()))
	instrs = append(instrs, instrGoto(lend))
	instrs = append(instrs, instrLabel(lnext))
	rightOperand, rightInstrs, err := g.genExpr(n.Right)
	if err != nil {
		return "", nil, err
	}
	instrs = append(instrs, rightInstrs...)
	instrs = append(instrs, instrIf(rightOperand, lfalse))
	instrs = append(instrs, instrAssign("1", result.Unique, n.ExprType()))
	instrs = append(instrs, instrGoto(lend))
	instrs = append(instrs, instrLabel(lfalse))
	instrs = append(instrs, instrAssign("0", result.Unique, n.ExprType()))
	instrs = append(instrs, instrLabel(lend))
	return result.Unique, instrs, nil
}

func (g *Generator) genPostfix(n *ast.Postfix) (string, []Instruction, error) {
	switch n.Op {
	case ast.PostIncrement, ast.PostDecrement:
		lv, instrs, err := g.genLvalue(n.Value)
		if err != nil {
			return "", nil, err
		}
		oldOperand, loadInstrs := g.loadLvalue(lv)
		instrs = append(instrs, loadInstrs...)
		saved := g.declareTemp(n.ExprType())
		instrs = append(instrs, instrAssign(oldOperand, saved.Unique, n.ExprType()))

		op := Increment
		if n.Op == ast.PostDecrement {
			op = Decrement
		}
		newTemp := g.declareTemp(n.ExprType())
		instrs = append(instrs, Instruction{Op: op, Arg1: oldOperand, Result: newTemp.Unique, Type: n.ExprType()})
		instrs = append(instrs, g.storeLvalue(lv, newTemp.Unique, n.ExprType())...)
		return saved.Unique, instrs, nil

	default: // FieldDot, FieldArrow
		lv, instrs, err := g.genLvalue(n)
		if err != nil {
			return "", nil, err
		}
		operand, loadInstrs := g.loadLvalue(lv)
		instrs = append(instrs, loadInstrs...)
		return operand, instrs, nil
	}
}

func (g *Generator) genAddrOf(n *ast.AddrOf) (string, []Instruction, error) {
	lv, instrs, err := g.genLvalue(n.Expr)
	if err != nil {
		return "", nil, err
	}
	temp := g.declareTemp(n.ExprType())
	if lv.Indirect != "" {
		if lv.Offset == 0 {
			instrs = append(instrs, instrAssign(lv.Indirect, temp.Unique, n.ExprType()))
		} else {
			instrs = append(instrs, Instruction{Op: Add, Arg1: lv.Indirect, Arg2: strconv.Itoa(lv.Offset), Result: temp.Unique, Type: n.ExprType()})
		}
		return temp.Unique, instrs, nil
	}
	instrs = append(instrs, Instruction{Op: AddrOf, Arg1: lv.Direct, Arg2: strconv.Itoa(lv.Offset), Result: temp.Unique, Type: n.ExprType()})
	return temp.Unique, instrs, nil
}

func (g *Generator) genFuncCall(n *ast.FuncCall) (string, []Instruction, error) {
	var instrs []Instruction
	for _, arg := range n.Args {
		operand, argInstrs, err := g.genExpr(arg)
		if err != nil {
			return "", nil, err
		}
		instrs = append(instrs, argInstrs...)
		instrs = append(instrs, Instruction{Op: Push, Arg1: operand, Type: arg.ExprType()})
	}

	if n.ExprType().IsVoid() {
		instrs = append(instrs, Instruction{Op: Call, Arg1: n.Name, Arg2: strconv.Itoa(len(n.Args))})
		return "", instrs, nil
	}

	temp := g.declareTemp(n.ExprType())
	instrs = append(instrs, Instruction{Op: Call, Arg1: n.Name, Arg2: strconv.Itoa(len(n.Args)), Result: temp.Unique, Type: n.ExprType()})
	return temp.Unique, instrs, nil
}
