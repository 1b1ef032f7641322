package parser

import (
	"testing"

	"github.com/skx/minic/ast"
	"github.com/skx/minic/lexer"
	"github.com/skx/minic/types"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := ParseProgram(lexer.New(src))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return prog
}

func TestParseSimpleFunction(t *testing.T) {
	prog := parseProgram(t, `fn add(int a, int b) -> int { return a + b; }`)

	if len(prog.Decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(prog.Decls))
	}
	fn, ok := prog.Decls[0].(*ast.Func)
	if !ok {
		t.Fatalf("expected a Func, got %T", prog.Decls[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("unexpected function shape: %+v", fn)
	}
	if fn.ReturnType.Base != types.Int {
		t.Errorf("return type = %v, want int", fn.ReturnType)
	}
	if len(fn.Body) != 1 {
		t.Fatalf("expected 1 statement in body, got %d", len(fn.Body))
	}
	ret, ok := fn.Body[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected Return, got %T", fn.Body[0])
	}
	bin, ok := ret.Value.(*ast.Binary)
	if !ok || bin.Op != ast.Add {
		t.Fatalf("expected a+b, got %+v", ret.Value)
	}
}

func TestPrecedenceClimbing(t *testing.T) {
	prog := parseProgram(t, `fn f() -> int { return 1 + 2 * 3; }`)
	fn := prog.Decls[0].(*ast.Func)
	ret := fn.Body[0].(*ast.Return)

	top, ok := ret.Value.(*ast.Binary)
	if !ok || top.Op != ast.Add {
		t.Fatalf("expected top-level +, got %+v", ret.Value)
	}
	right, ok := top.Right.(*ast.Binary)
	if !ok || right.Op != ast.Mul {
		t.Fatalf("expected 2*3 grouped on the right of +, got %+v", top.Right)
	}
}

func TestLogicalOperatorsBindLooserThanComparison(t *testing.T) {
	prog := parseProgram(t, `fn f() -> int { return 1 < 2 && 3 < 4; }`)
	fn := prog.Decls[0].(*ast.Func)
	ret := fn.Body[0].(*ast.Return)

	top, ok := ret.Value.(*ast.Binary)
	if !ok || top.Op != ast.LogicalAnd {
		t.Fatalf("expected top-level &&, got %+v", ret.Value)
	}
	if _, ok := top.Left.(*ast.Binary); !ok {
		t.Fatalf("expected a comparison on the left of &&")
	}
}

func TestIfElse(t *testing.T) {
	prog := parseProgram(t, `fn f(int x) -> int { if (x > 0) { return 1; } else { return 0; } }`)
	fn := prog.Decls[0].(*ast.Func)
	ifNode, ok := fn.Body[0].(*ast.If)
	if !ok {
		t.Fatalf("expected If, got %T", fn.Body[0])
	}
	if len(ifNode.Then) != 1 || len(ifNode.Else) != 1 {
		t.Fatalf("expected one statement in each branch")
	}
}

func TestWhileLoop(t *testing.T) {
	prog := parseProgram(t, `fn f() -> void { while (1) { break; } }`)
	fn := prog.Decls[0].(*ast.Func)
	w, ok := fn.Body[0].(*ast.While)
	if !ok {
		t.Fatalf("expected While, got %T", fn.Body[0])
	}
	if _, ok := w.Body[0].(*ast.LoopControl); !ok {
		t.Fatalf("expected break as loop body, got %T", w.Body[0])
	}
}

func TestForLoop(t *testing.T) {
	prog := parseProgram(t, `fn f() -> void { for (int i = 0; i < 10; i = i + 1) { continue; } }`)
	fn := prog.Decls[0].(*ast.Func)
	f, ok := fn.Body[0].(*ast.For)
	if !ok {
		t.Fatalf("expected For, got %T", fn.Body[0])
	}
	if _, ok := f.Init.(*ast.VarDecl); !ok {
		t.Fatalf("expected VarDecl init, got %T", f.Init)
	}
	if f.Condition == nil {
		t.Fatalf("expected a condition")
	}
}

func TestVariableDeclarationWithArray(t *testing.T) {
	prog := parseProgram(t, `fn f() -> void { int a[3] = {1, 2, 3}; }`)
	fn := prog.Decls[0].(*ast.Func)
	decl, ok := fn.Body[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected VarDecl, got %T", fn.Body[0])
	}
	if !decl.Type.IsArray() {
		t.Fatalf("expected array type, got %v", decl.Type)
	}
	init, ok := decl.Value.(*ast.CompoundInit)
	if !ok || len(init.Elements) != 3 {
		t.Fatalf("expected a 3-element compound init, got %+v", decl.Value)
	}
}

func TestStructDeclAndFieldAccess(t *testing.T) {
	prog := parseProgram(t, `
		struct point { int x; int y; };
		fn f(struct point p) -> int { return p.x + p.y; }
	`)
	sd, ok := prog.Decls[0].(*ast.StructDecl)
	if !ok || sd.Name != "point" || len(sd.Members) != 2 {
		t.Fatalf("unexpected struct decl: %+v", prog.Decls[0])
	}

	fn := prog.Decls[1].(*ast.Func)
	if !fn.Params[0].Type.IsStruct() {
		t.Fatalf("expected struct parameter type, got %v", fn.Params[0].Type)
	}
	ret := fn.Body[0].(*ast.Return)
	bin := ret.Value.(*ast.Binary)
	left, ok := bin.Left.(*ast.Postfix)
	if !ok || left.Op != ast.FieldDot || left.Field != "x" {
		t.Fatalf("expected p.x on the left, got %+v", bin.Left)
	}
}

func TestPointerParamAndDeref(t *testing.T) {
	prog := parseProgram(t, `fn f(int* p) -> int { return *p + 0; }`)
	fn := prog.Decls[0].(*ast.Func)
	if fn.Params[0].Type.PtrDepth != 1 {
		t.Fatalf("expected pointer parameter, got %v", fn.Params[0].Type)
	}
	ret := fn.Body[0].(*ast.Return)
	bin := ret.Value.(*ast.Binary)
	if _, ok := bin.Left.(*ast.Deref); !ok {
		t.Fatalf("expected deref on the left, got %+v", bin.Left)
	}
}

func TestCastExpression(t *testing.T) {
	prog := parseProgram(t, `fn f(double d) -> int { return (int) d; }`)
	fn := prog.Decls[0].(*ast.Func)
	ret := fn.Body[0].(*ast.Return)
	cast, ok := ret.Value.(*ast.Cast)
	if !ok || cast.ExprType().Base != types.Int {
		t.Fatalf("expected an int cast, got %+v", ret.Value)
	}
}

func TestFunctionCallArgs(t *testing.T) {
	prog := parseProgram(t, `fn f() -> int { return add(1, 2); }`)
	fn := prog.Decls[0].(*ast.Func)
	ret := fn.Body[0].(*ast.Return)
	call, ok := ret.Value.(*ast.FuncCall)
	if !ok || call.Name != "add" || len(call.Args) != 2 {
		t.Fatalf("expected add(1, 2), got %+v", ret.Value)
	}
}

func TestStaticAndExternSpecifiers(t *testing.T) {
	prog := parseProgram(t, `
		static int counter;
		extern int shared;
	`)
	counter := prog.Decls[0].(*ast.VarDecl)
	if counter.Specifier != ast.SpecStatic {
		t.Errorf("expected static specifier")
	}
	shared := prog.Decls[1].(*ast.VarDecl)
	if shared.Specifier != ast.SpecExtern {
		t.Errorf("expected extern specifier")
	}
}

func TestCompoundAssignmentDesugars(t *testing.T) {
	prog := parseProgram(t, `fn f(int x) -> void { x += 1; }`)
	fn := prog.Decls[0].(*ast.Func)
	assign, ok := fn.Body[0].(*ast.VarAssign)
	if !ok {
		t.Fatalf("expected VarAssign, got %T", fn.Body[0])
	}
	bin, ok := assign.Value.(*ast.Binary)
	if !ok || bin.Op != ast.Add {
		t.Fatalf("expected x+1 on the RHS, got %+v", assign.Value)
	}
}

func TestUnexpectedTokenIsAParserError(t *testing.T) {
	_, err := ParseProgram(lexer.New(`fn f() -> int { return 1 2; }`))
	if err == nil {
		t.Fatalf("expected a parse error for a missing semicolon")
	}
}

func TestMissingClosingBraceIsAParserError(t *testing.T) {
	_, err := ParseProgram(lexer.New(`fn f() -> int { return 1; `))
	if err == nil {
		t.Fatalf("expected a parse error for an unterminated block")
	}
}
