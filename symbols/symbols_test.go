package symbols

import (
	"testing"

	"github.com/skx/minic/types"
)

func TestDeclareAndLookup(t *testing.T) {
	tbl := NewTable()
	sym, err := tbl.DeclareVar("x", types.New(types.Int), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sym.Unique != "x" {
		t.Errorf("top-level declaration should not be renamed, got %q", sym.Unique)
	}
	if sym.Offset != -4 {
		t.Errorf("offset = %d, want -4", sym.Offset)
	}

	found, ok := tbl.Lookup("x")
	if !ok || found != sym {
		t.Errorf("Lookup did not find the declared symbol")
	}
}

func TestRedeclareSameScopeErrors(t *testing.T) {
	tbl := NewTable()
	if _, err := tbl.DeclareVar("x", types.New(types.Int), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tbl.DeclareVar("x", types.New(types.Int), false); err == nil {
		t.Errorf("expected redeclaration in the same scope to error")
	}
}

func TestShadowingRenames(t *testing.T) {
	tbl := NewTable()
	outer, _ := tbl.DeclareVar("x", types.New(types.Int), false)

	tbl.EnterScope()
	inner, err := tbl.DeclareVar("x", types.New(types.Int), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.Unique == outer.Unique {
		t.Errorf("shadowing declaration was not renamed: both are %q", inner.Unique)
	}

	found, _ := tbl.Lookup("x")
	if found != inner {
		t.Errorf("inner scope should shadow outer")
	}

	tbl.ExitScope()
	found, _ = tbl.Lookup("x")
	if found != outer {
		t.Errorf("after exiting the inner scope, outer x should be visible again")
	}
}

func TestStackOffsetsGrowAndAlign(t *testing.T) {
	tbl := NewTable()
	a, _ := tbl.DeclareVar("a", types.New(types.Char), false) // size 1
	b, _ := tbl.DeclareVar("b", types.New(types.Int), false)  // size 4, must align to 4

	if a.Offset != -1 {
		t.Errorf("a offset = %d, want -1", a.Offset)
	}
	if b.Offset != -8 {
		t.Errorf("b offset = %d, want -8 (aligned up from 1 to 4, then +4)", b.Offset)
	}
}

func TestStackSizeAlignedTo16(t *testing.T) {
	tbl := NewTable()
	tbl.DeclareVar("a", types.New(types.Int), false)
	if got := tbl.StackSize(); got != 16 {
		t.Errorf("StackSize() = %d, want 16", got)
	}
}

func TestStaticLocalHasNoOffset(t *testing.T) {
	tbl := NewTable()
	sym, _ := tbl.DeclareVar("counter", types.New(types.Int), true)
	if sym.Duration != Static {
		t.Errorf("expected static duration")
	}
	if sym.Offset != 0 {
		t.Errorf("static local should have no frame offset, got %d", sym.Offset)
	}
	if sym.Linkage != LinkInternal {
		t.Errorf("static local should have internal linkage")
	}
}

func TestGlobalTableFunctionLifecycle(t *testing.T) {
	g := NewGlobalTable()
	err := g.DeclareFunc("add", []types.Type{types.New(types.Int), types.New(types.Int)}, types.New(types.Int), LinkExternal, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fn, ok := g.FuncSymbol("add")
	if !ok || fn.ReturnType.Base != types.Int {
		t.Fatalf("function was not registered correctly")
	}

	g.EnterFunction("add")
	if g.CurrentFunction() != "add" {
		t.Errorf("CurrentFunction() = %q, want add", g.CurrentFunction())
	}
}

func TestGlobalTableRejectsConflictingRedefinition(t *testing.T) {
	g := NewGlobalTable()
	g.DeclareFunc("f", nil, types.New(types.Void), LinkExternal, true)
	if err := g.DeclareFunc("f", nil, types.New(types.Void), LinkExternal, true); err == nil {
		t.Errorf("expected redefinition of f to error")
	}
}

func TestGlobalTableRejectsConflictingSignature(t *testing.T) {
	g := NewGlobalTable()
	g.DeclareFunc("f", []types.Type{types.New(types.Int)}, types.New(types.Void), LinkExternal, false)
	if err := g.DeclareFunc("f", []types.Type{types.New(types.Double)}, types.New(types.Void), LinkExternal, false); err == nil {
		t.Errorf("expected conflicting parameter type to error")
	}
}

func TestDeclareGlobalLinkageConflict(t *testing.T) {
	g := NewGlobalTable()
	g.DeclareGlobal("counter", types.New(types.Int), LinkExternal, true)
	if _, err := g.DeclareGlobal("counter", types.New(types.Int), LinkInternal, true); err == nil {
		t.Errorf("expected conflicting linkage to error")
	}
}

func TestStringAndLiteral8Labels(t *testing.T) {
	g := NewGlobalTable()
	a := g.NextStringLabel()
	b := g.NextStringLabel()
	if a == b {
		t.Errorf("string labels should be distinct, both %q", a)
	}

	d := g.NextLiteral8Label()
	if d == a {
		t.Errorf("literal8 and string label pools should not collide")
	}
}

func TestDeclareTempIsMarked(t *testing.T) {
	tbl := NewTable()
	tmp := tbl.DeclareTemp(types.New(types.Int))
	if !tmp.IsTemp {
		t.Errorf("expected IsTemp to be set")
	}
	if tmp.Offset == 0 {
		t.Errorf("temp should still occupy stack space like any automatic local")
	}
}
