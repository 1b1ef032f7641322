package tac_test

import (
	"testing"

	"github.com/skx/minic/lexer"
	"github.com/skx/minic/parser"
	"github.com/skx/minic/semantics"
	"github.com/skx/minic/tac"
)

func generate(t *testing.T, src string) []tac.Instruction {
	t.Helper()
	prog, err := parser.ParseProgram(lexer.New(src))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	a := semantics.New()
	if err := a.Analyze(prog); err != nil {
		t.Fatalf("unexpected semantic error: %v", err)
	}
	instrs, err := tac.NewGenerator(a.Global()).Generate(prog)
	if err != nil {
		t.Fatalf("unexpected generation error: %v", err)
	}
	return instrs
}

func opsOf(instrs []tac.Instruction) []tac.Op {
	out := make([]tac.Op, len(instrs))
	for i, instr := range instrs {
		out[i] = instr.Op
	}
	return out
}

func contains(ops []tac.Op, op tac.Op) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

func TestSimpleFunctionHasFuncBeginAndEnd(t *testing.T) {
	instrs := generate(t, `fn f() -> int { return 1; }`)
	ops := opsOf(instrs)
	if ops[0] != tac.EnterText {
		t.Fatalf("expected the first instruction to enter .text, got %v", ops[0])
	}
	if !contains(ops, tac.FuncBegin) || !contains(ops, tac.FuncEnd) {
		t.Errorf("expected FUNC_BEGIN/FUNC_END to bracket the function")
	}
	if !contains(ops, tac.Return) {
		t.Errorf("expected a RETURN instruction")
	}
}

func TestArithmeticExpressionLowersToTemporaries(t *testing.T) {
	instrs := generate(t, `fn f(int x, int y) -> int { return x + y * 2; }`)
	ops := opsOf(instrs)
	if !contains(ops, tac.Mul) || !contains(ops, tac.Add) {
		t.Errorf("expected MUL and ADD instructions, got %v", ops)
	}
}

func TestIfElseLowersToLabelledBranches(t *testing.T) {
	instrs := generate(t, `
		fn f(int x) -> int {
			if (x > 0) {
				return 1;
			} else {
				return 0;
			}
		}
	`)
	ops := opsOf(instrs)
	if !contains(ops, tac.If) || !contains(ops, tac.Goto) || !contains(ops, tac.Label) {
		t.Errorf("expected IF/GOTO/LABEL for the if/else, got %v", ops)
	}
}

func TestWhileLoopUsesLoopLabel(t *testing.T) {
	instrs := generate(t, `
		fn f() -> void {
			int i = 0;
			while (i < 10) {
				i = i + 1;
			}
		}
	`)
	var sawStart, sawEnd bool
	for _, instr := range instrs {
		if instr.Op == tac.Label {
			switch instr.Result {
			case "Lloop1_start":
				sawStart = true
			case "Lloop1_end":
				sawEnd = true
			}
		}
	}
	if !sawStart || !sawEnd {
		t.Errorf("expected Lloop1_start/Lloop1_end labels in %+v", instrs)
	}
}

func TestBreakJumpsToLoopEndLabel(t *testing.T) {
	instrs := generate(t, `
		fn f() -> void {
			while (1) {
				break;
			}
		}
	`)
	found := false
	for _, instr := range instrs {
		if instr.Op == tac.Goto && instr.Result == "Lloop1_end" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected break to GOTO Lloop1_end")
	}
}

func TestContinueJumpsToForPostLabel(t *testing.T) {
	instrs := generate(t, `
		fn f() -> void {
			for (int i = 0; i < 10; i = i + 1) {
				continue;
			}
		}
	`)
	found := false
	for _, instr := range instrs {
		if instr.Op == tac.Goto && instr.Result == "Lloop1_continue" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected continue to GOTO Lloop1_continue")
	}
}

func TestShortCircuitAndLowersToBranches(t *testing.T) {
	instrs := generate(t, `fn f(int x, int y) -> int { return x && y; }`)
	ops := opsOf(instrs)
	if !contains(ops, tac.If) || !contains(ops, tac.Goto) {
		t.Errorf("expected && to lower to branches, got %v", ops)
	}
	for _, op := range ops {
		if op == tac.Add {
			t.Errorf("unexpected eager boolean op")
		}
	}
}

func TestFunctionCallPushesArgumentsAndCalls(t *testing.T) {
	instrs := generate(t, `
		fn add(int a, int b) -> int { return a + b; }
		fn f() -> int { return add(1, 2); }
	`)
	ops := opsOf(instrs)
	if !contains(ops, tac.Push) || !contains(ops, tac.Call) {
		t.Errorf("expected PUSH/CALL for the function call, got %v", ops)
	}
}

func TestGlobalVariableEmitsDataSection(t *testing.T) {
	instrs := generate(t, `
		int counter = 0;
		fn f() -> int { return counter; }
	`)
	if instrs[0].Op != tac.EnterData {
		t.Fatalf("expected the stream to open with ENTER_DATA, got %v", instrs[0].Op)
	}
}

func TestUninitializedGlobalEmitsBssSection(t *testing.T) {
	instrs := generate(t, `
		int counter;
		fn f() -> int { return counter; }
	`)
	if !contains(opsOf(instrs), tac.EnterBss) {
		t.Errorf("expected an ENTER_BSS marker for the tentative definition")
	}
}

func TestDoubleLiteralGeneratesLiteral8Pool(t *testing.T) {
	instrs := generate(t, `fn f() -> double { return 3.5; }`)
	if !contains(opsOf(instrs), tac.EnterLiteral8) {
		t.Errorf("expected a literal8 pool section for the double constant")
	}
}

func TestRepeatedDoubleLiteralReusesPoolEntry(t *testing.T) {
	instrs := generate(t, `
		fn f(int flag) -> double {
			if (flag) {
				return 3.5;
			}
			return 3.5;
		}
	`)
	ops := opsOf(instrs)
	idx := -1
	for i, op := range ops {
		if op == tac.EnterLiteral8 {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.Fatalf("expected a literal8 pool section")
	}
	count := 0
	for _, instr := range instrs[idx+1:] {
		if instr.Op != tac.Assign {
			break
		}
		count++
	}
	if count != 1 {
		t.Errorf("expected the repeated 3.5 literal to share one pool entry, got %d", count)
	}
}

func TestStringLiteralGeneratesCStringPool(t *testing.T) {
	instrs := generate(t, `fn f() -> char* { return "hi"; }`)
	if !contains(opsOf(instrs), tac.EnterCString) {
		t.Errorf("expected a cstring pool section for the string constant")
	}
}

func TestPointerDerefAndAddrOfLower(t *testing.T) {
	instrs := generate(t, `
		fn f(int x) -> int {
			int* p = &x;
			return *p;
		}
	`)
	ops := opsOf(instrs)
	if !contains(ops, tac.AddrOf) || !contains(ops, tac.Deref) {
		t.Errorf("expected ADDR_OF and DEREF instructions, got %v", ops)
	}
}

func TestArrayAccessComputesScaledAddress(t *testing.T) {
	instrs := generate(t, `
		fn f() -> int {
			int a[3] = {1, 2, 3};
			return a[1];
		}
	`)
	ops := opsOf(instrs)
	if !contains(ops, tac.Mul) || !contains(ops, tac.Add) || !contains(ops, tac.Deref) {
		t.Errorf("expected array indexing to scale and add an offset then dereference, got %v", ops)
	}
}

func TestStructFieldAssignmentStoresAtOffset(t *testing.T) {
	instrs := generate(t, `
		struct point { int x; int y; };
		fn f(struct point p) -> int {
			p.y = 5;
			return p.y;
		}
	`)
	found := false
	for _, instr := range instrs {
		if instr.Op == tac.Mov && instr.Arg2 == "4" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a MOV at the second field's 4-byte offset, got %+v", instrs)
	}
}

func TestPostIncrementSavesOldValue(t *testing.T) {
	instrs := generate(t, `
		fn f() -> int {
			int x = 1;
			int y = x++;
			return y;
		}
	`)
	if !contains(opsOf(instrs), tac.Increment) {
		t.Errorf("expected an INCREMENT instruction for x++")
	}
}
