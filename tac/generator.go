package tac

import (
	"strconv"

	"github.com/samber/lo"

	"github.com/skx/minic/ast"
	"github.com/skx/minic/cmderr"
	"github.com/skx/minic/symbols"
	"github.com/skx/minic/types"
)

// Generator lowers an analyzed *ast.Program into a flat Instruction
// stream. It consults the symbol table the semantic analyser built
// rather than re-deriving types or storage, and introduces its own
// compiler-generated temporaries for every intermediate value through
// the function's symbols.Table.
//
// Grounded on original_source/src/tacGenerator.cpp's recursive
// generate_* dispatch; the control-flow lowering (if/while/for,
// short-circuit &&/||, break/continue) follows the same branch-on-false
// shape the original uses, adapted to this package's Op set: `If`
// branches when its condition operand is falsy, `Goto`/`Label` do the
// rest, matching the REDESIGN decision recorded in DESIGN.md that
// short-circuit operators lower to branches rather than an eager
// boolean TAC op.
type Generator struct {
	global *symbols.GlobalTable
	table  *symbols.Table
	// poolTable owns every literal-pool (double / cstring) declaration,
	// independent of which function first referenced the literal: pool
	// entries are process-wide, not per-function, so they get their own
	// table rather than cluttering every function's stack-offset table.
	poolTable *symbols.Table
	labelSeq  int

	// literal8Pool and stringPool content-address the double/cstring
	// pools: the same source constant appearing twice (a literal in a
	// loop body, a repeated string) reuses its first label instead of
	// growing the pool, via lo.Find over these append-only logs.
	literal8Pool []poolEntry
	stringPool   []poolEntry
}

// poolEntry pairs a pool entry's source text with the label it was
// assigned, so a later occurrence of the same text can be matched back
// to it.
type poolEntry struct {
	text  string
	label string
}

// NewGenerator builds a Generator over the symbol table a completed
// semantics.Analyzer.Analyze populated.
func NewGenerator(global *symbols.GlobalTable) *Generator {
	return &Generator{global: global, poolTable: symbols.NewTable()}
}

// PoolTable returns the literal/string pool's symbol table, so the
// assembler can resolve a pool label's type and section.
func (g *Generator) PoolTable() *symbols.Table {
	return g.poolTable
}

// internLiteral8 returns the pool label for a double literal's rendered
// text, reusing a prior occurrence's label when one already matches.
func (g *Generator) internLiteral8(text string, ty types.Type) string {
	if existing, ok := lo.Find(g.literal8Pool, func(e poolEntry) bool { return e.text == text }); ok {
		return existing.label
	}
	label := g.global.NextLiteral8Label()
	g.poolTable.DeclareLiteral8(label, ty, text)
	g.literal8Pool = append(g.literal8Pool, poolEntry{text: text, label: label})
	return label
}

// internString returns the pool label for a string literal's value,
// reusing a prior occurrence's label when one already matches.
func (g *Generator) internString(text string) string {
	if existing, ok := lo.Find(g.stringPool, func(e poolEntry) bool { return e.text == text }); ok {
		return existing.label
	}
	label := g.global.NextStringLabel()
	g.poolTable.DeclareString(label, text)
	g.stringPool = append(g.stringPool, poolEntry{text: text, label: label})
	return label
}

// Generate lowers prog's global variables and function bodies into one
// Instruction stream: data/bss section entries first, then one
// FUNC_BEGIN/.../FUNC_END block per defined function.
func (g *Generator) Generate(prog *ast.Program) ([]Instruction, error) {
	var out []Instruction

	var dataDecls, bssDecls []*ast.VarDecl
	for _, decl := range prog.Decls {
		vd, ok := decl.(*ast.VarDecl)
		if !ok || vd.Specifier == ast.SpecExtern {
			continue
		}
		if vd.Value != nil {
			dataDecls = append(dataDecls, vd)
		} else {
			bssDecls = append(bssDecls, vd)
		}
	}

	if len(dataDecls) > 0 {
		out = append(out, Instruction{Op: EnterData})
		for _, vd := range dataDecls {
			instrs, err := g.genGlobalInit(vd)
			if err != nil {
				return nil, err
			}
			out = append(out, instrs...)
		}
	}
	if len(bssDecls) > 0 {
		out = append(out, Instruction{Op: EnterBss})
		for _, vd := range bssDecls {
			out = append(out, instrAssign("", vd.Var.Unique, vd.Type))
		}
	}

	out = append(out, Instruction{Op: EnterText})
	for _, decl := range prog.Decls {
		fn, ok := decl.(*ast.Func)
		if !ok || fn.Body == nil {
			continue
		}
		instrs, err := g.generateFunc(fn)
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
	}

	out = append(out, g.poolInstructions()...)
	return out, nil
}

// poolInstructions renders every registered literal8/string pool entry
// under its own section marker, in the order it was first referenced.
func (g *Generator) poolInstructions() []Instruction {
	var out []Instruction
	var dbls, strs []Instruction
	for _, name := range g.poolTable.Names() {
		sym, _ := g.poolTable.SymbolByUnique(name)
		switch {
		case sym.IsLiteral8:
			dbls = append(dbls, instrAssign(sym.LiteralText, sym.Name, sym.Type))
		case sym.IsString:
			strs = append(strs, instrAssign(sym.LiteralText, sym.Name, sym.Type))
		}
	}
	if len(dbls) > 0 {
		out = append(out, Instruction{Op: EnterLiteral8})
		out = append(out, dbls...)
	}
	if len(strs) > 0 {
		out = append(out, Instruction{Op: EnterCString})
		out = append(out, strs...)
	}
	return out
}

func (g *Generator) genGlobalInit(vd *ast.VarDecl) ([]Instruction, error) {
	if ci, ok := vd.Value.(*ast.CompoundInit); ok {
		out := []Instruction{instrAssign("", vd.Var.Unique, vd.Type)}
		for i, el := range ci.Elements {
			operand, instrs, err := g.genConstExpr(el)
			if err != nil {
				return nil, err
			}
			out = append(out, instrs...)
			out = append(out, Instruction{Op: Mov, Arg1: operand, Arg2: strconv.Itoa(elementOffset(vd.Type, i)), Result: vd.Var.Unique, Type: el.ExprType()})
		}
		return out, nil
	}

	operand, instrs, err := g.genConstExpr(vd.Value)
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, instrAssign(operand, vd.Var.Unique, vd.Type))
	return instrs, nil
}

// genConstExpr renders a file-scope initializer's value: a literal
// operand directly, or a pool label for doubles/strings. Anything
// needing runtime computation is rejected — spec.md's global
// initializers are compile-time constants.
func (g *Generator) genConstExpr(expr ast.Expr) (string, []Instruction, error) {
	switch n := expr.(type) {
	case *ast.DoubleLiteral, *ast.StringLiteral:
		return g.genExpr(expr)
	case *ast.IntLiteral, *ast.LongLiteral, *ast.UIntLiteral, *ast.ULongLiteral, *ast.CharLiteral, *ast.BoolLiteral:
		return g.genExpr(expr)
	default:
		return "", nil, cmderr.Semantic(n.Pos().Line, n.Pos().Column, "global initializer must be a compile-time constant")
	}
}

// elementOffset returns the byte offset of the i'th element of an
// array-typed or struct-typed initializer target.
func elementOffset(ty types.Type, i int) int {
	switch {
	case ty.IsArray():
		return i * ty.WithoutOuterArrayDimension().Size()
	case ty.IsStruct() && i < len(ty.Fields):
		return ty.Fields[i].Offset
	default:
		return 0
	}
}

func (g *Generator) generateFunc(fn *ast.Func) ([]Instruction, error) {
	table, ok := g.global.FuncTable(fn.Name)
	if !ok {
		return nil, cmderr.Semantic(fn.Pos().Line, fn.Pos().Column, "internal error: no symbol table for function %q", fn.Name)
	}
	g.table = table

	var body []Instruction
	for _, stmt := range fn.Body {
		instrs, err := g.genStmt(stmt)
		if err != nil {
			return nil, err
		}
		body = append(body, instrs...)
	}

	out := []Instruction{instrFuncBegin(fn.Name, len(fn.Params))}
	if size := table.StackSize(); size > 0 {
		out = append(out, instrAllocStack(size))
	}
	out = append(out, body...)
	out = append(out, instrDeallocStack(table.StackSize()))
	out = append(out, instrFuncEnd(fn.Name))
	return out, nil
}

func (g *Generator) genBlock(stmts []ast.Node) ([]Instruction, error) {
	var out []Instruction
	for _, stmt := range stmts {
		instrs, err := g.genStmt(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
	}
	return out, nil
}

func (g *Generator) genStmt(node ast.Node) ([]Instruction, error) {
	switch n := node.(type) {
	case *ast.VarDecl:
		return g.genVarDecl(n)
	case *ast.VarAssign:
		return g.genVarAssign(n)
	case *ast.Return:
		return g.genReturn(n)
	case *ast.If:
		return g.genIf(n)
	case *ast.While:
		return g.genWhile(n)
	case *ast.For:
		return g.genFor(n)
	case *ast.LoopControl:
		suffix := "_end"
		if !n.IsBreak {
			suffix = "_continue"
		}
		return []Instruction{instrGoto(n.Label + suffix)}, nil
	case ast.Expr:
		_, instrs, err := g.genExpr(n)
		return instrs, err
	default:
		return nil, cmderr.Semantic(node.Pos().Line, node.Pos().Column, "internal error: unhandled statement %T", node)
	}
}

func (g *Generator) genVarDecl(n *ast.VarDecl) ([]Instruction, error) {
	if n.Value == nil {
		return nil, nil
	}
	if ci, ok := n.Value.(*ast.CompoundInit); ok {
		var out []Instruction
		for i, el := range ci.Elements {
			operand, instrs, err := g.genExpr(el)
			if err != nil {
				return nil, err
			}
			out = append(out, instrs...)
			out = append(out, Instruction{Op: Mov, Arg1: operand, Arg2: strconv.Itoa(elementOffset(n.Type, i)), Result: n.Var.Unique, Type: el.ExprType()})
		}
		return out, nil
	}

	operand, instrs, err := g.genExpr(n.Value)
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, instrAssign(operand, n.Var.Unique, n.Type))
	return instrs, nil
}

func (g *Generator) genVarAssign(n *ast.VarAssign) ([]Instruction, error) {
	lv, instrs, err := g.genLvalue(n.Target)
	if err != nil {
		return nil, err
	}
	valOperand, valInstrs, err := g.genExpr(n.Value)
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, valInstrs...)
	instrs = append(instrs, g.storeLvalue(lv, valOperand, n.Value.ExprType())...)
	return instrs, nil
}

func (g *Generator) genReturn(n *ast.Return) ([]Instruction, error) {
	if n.Value == nil {
		return []Instruction{{Op: Return}}, nil
	}
	operand, instrs, err := g.genExpr(n.Value)
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, instrReturn(operand, n.Value.ExprType()))
	return instrs, nil
}

func (g *Generator) genIf(n *ast.If) ([]Instruction, error) {
	condOperand, instrs, err := g.genExpr(n.Condition)
	if err != nil {
		return nil, err
	}
	lelse := g.newLabel("Lif_else")
	lend := g.newLabel("Lif_end")

	instrs = append(instrs, instrIf(condOperand, lelse))
	thenInstrs, err := g.genBlock(n.Then)
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, thenInstrs...)
	instrs = append(instrs, instrGoto(lend))
	instrs = append(instrs, instrLabel(lelse))
	if n.Else != nil {
		elseInstrs, err := g.genBlock(n.Else)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, elseInstrs...)
	}
	instrs = append(instrs, instrLabel(lend))
	return instrs, nil
}

func (g *Generator) genWhile(n *ast.While) ([]Instruction, error) {
	lstart := n.Label + "_start"
	lcontinue := n.Label + "_continue"
	lend := n.Label + "_end"

	instrs := []Instruction{instrLabel(lstart)}
	condOperand, condInstrs, err := g.genExpr(n.Condition)
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, condInstrs...)
	instrs = append(instrs, instrIf(condOperand, lend))

	body, err := g.genBlock(n.Body)
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, body...)
	instrs = append(instrs, instrLabel(lcontinue))
	instrs = append(instrs, instrGoto(lstart))
	instrs = append(instrs, instrLabel(lend))
	return instrs, nil
}

func (g *Generator) genFor(n *ast.For) ([]Instruction, error) {
	lstart := n.Label + "_start"
	lcontinue := n.Label + "_continue"
	lend := n.Label + "_end"

	var instrs []Instruction
	if n.Init != nil {
		initInstrs, err := g.genStmt(n.Init)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, initInstrs...)
	}

	instrs = append(instrs, instrLabel(lstart))
	if n.Condition != nil {
		condOperand, condInstrs, err := g.genExpr(n.Condition)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, condInstrs...)
		instrs = append(instrs, instrIf(condOperand, lend))
	}

	body, err := g.genBlock(n.Body)
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, body...)
	instrs = append(instrs, instrLabel(lcontinue))
	if n.Post != nil {
		postInstrs, err := g.genStmt(n.Post)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, postInstrs...)
	}
	instrs = append(instrs, instrGoto(lstart))
	instrs = append(instrs, instrLabel(lend))
	return instrs, nil
}

func (g *Generator) newLabel(prefix string) string {
	g.labelSeq++
	return prefix + strconv.Itoa(g.labelSeq)
}

func (g *Generator) declareTemp(ty types.Type) *symbols.Symbol {
	return g.table.DeclareTemp(ty)
}
