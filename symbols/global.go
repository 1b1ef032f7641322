package symbols

import (
	"sort"
	"strconv"

	"github.com/skx/minic/cmderr"
	"github.com/skx/minic/internal/clog"
	"github.com/skx/minic/types"
)

// GlobalTable is the program-wide symbol table: one FuncSymbol plus a
// per-function Table for every declared function, and a flat map of
// file-scope variables. It tracks the "current function" as a cursor so
// callers can declare/lookup without threading a Table around.
//
// Grounded on original_source/include/globalSymbolTable.h's
// GlobalSymbolTable, which keeps the analogous `functions` and
// `global_variables` maps and the same enter_scope/exit_scope/declare_var
// cursor-based API.
type GlobalTable struct {
	funcs        map[string]*FuncSymbol
	tables       map[string]*Table
	globals      map[string]*Symbol
	globalsByKey map[string]*Symbol
	current      string
	strCount     int
	litCount     int
}

// NewGlobalTable builds an empty global symbol table.
func NewGlobalTable() *GlobalTable {
	return &GlobalTable{
		funcs:        map[string]*FuncSymbol{},
		tables:       map[string]*Table{},
		globals:      map[string]*Symbol{},
		globalsByKey: map[string]*Symbol{},
	}
}

// DeclareFunc registers a function's signature. Redeclaration with a
// matching signature is allowed (a prototype followed by a definition);
// a conflicting signature or linkage is a semantic error.
func (g *GlobalTable) DeclareFunc(name string, params []types.Type, ret types.Type, linkage Linkage, defined bool) error {
	if existing, ok := g.funcs[name]; ok {
		if !signaturesEqual(existing.ParamTypes, params) || !existing.ReturnType.Equal(ret) {
			return cmderr.Semantic(0, 0, "conflicting declaration of function %q", name)
		}
		if existing.Linkage != linkage {
			return cmderr.Semantic(0, 0, "conflicting linkage for function %q", name)
		}
		if existing.Defined && defined {
			return cmderr.Semantic(0, 0, "redefinition of function %q", name)
		}
		existing.Defined = existing.Defined || defined
		return nil
	}

	g.funcs[name] = &FuncSymbol{Name: name, ParamTypes: params, ReturnType: ret, Linkage: linkage, Defined: defined}
	g.tables[name] = NewTable()
	return nil
}

func signaturesEqual(a, b []types.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// FuncSymbol returns the named function's signature, if declared.
func (g *GlobalTable) FuncSymbol(name string) (*FuncSymbol, bool) {
	fn, ok := g.funcs[name]
	return fn, ok
}

// FuncTable returns the named function's per-function scope stack.
func (g *GlobalTable) FuncTable(name string) (*Table, bool) {
	t, ok := g.tables[name]
	return t, ok
}

// EnterFunction makes name the current function and returns its Table.
func (g *GlobalTable) EnterFunction(name string) *Table {
	g.current = name
	return g.tables[name]
}

// CurrentFunction returns the name of the function currently under
// analysis.
func (g *GlobalTable) CurrentFunction() string {
	return g.current
}

// DeclareGlobal registers a file-scope variable. An existing declaration
// with conflicting linkage is a semantic error, per spec.md §4.4: a
// plain declaration is external linkage, `static` is internal, `extern`
// refers to storage defined elsewhere and does not itself define
// storage.
func (g *GlobalTable) DeclareGlobal(name string, ty types.Type, linkage Linkage, definesStorage bool) (*Symbol, error) {
	if existing, ok := g.globals[name]; ok {
		if existing.Linkage != linkage {
			return nil, cmderr.Semantic(0, 0, "conflicting linkage for global %q", name)
		}
		if !existing.Type.Equal(ty) {
			return nil, cmderr.Semantic(0, 0, "conflicting type for global %q", name)
		}
		if definesStorage {
			existing.Defined = true
		}
		return existing, nil
	}

	unique := name
	if linkage == LinkInternal {
		unique = "_file_static." + name
	}

	sym := &Symbol{Name: name, Unique: unique, Type: ty, Duration: Static, Linkage: linkage, Defined: definesStorage}
	g.globals[name] = sym
	g.globalsByKey[unique] = sym
	return sym, nil
}

// UnresolvedExterns returns the name of every declared global that never
// received a storage-defining (non-extern) declaration anywhere in the
// translation unit.
func (g *GlobalTable) UnresolvedExterns() []string {
	var out []string
	for name, sym := range g.globals {
		if !sym.Defined {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Global looks up a file-scope variable by name.
func (g *GlobalTable) Global(name string) (*Symbol, bool) {
	sym, ok := g.globals[name]
	return sym, ok
}

// GlobalByUnique looks up a file-scope variable by its post-renaming IR
// name (equal to Name for external-linkage globals, "_file_static.<name>"
// for internal-linkage ones). TAC generation and codegen resolve globals
// this way since, unlike locals, a global's AST reference may carry only
// the unique name by the time it runs.
func (g *GlobalTable) GlobalByUnique(unique string) (*Symbol, bool) {
	sym, ok := g.globalsByKey[unique]
	return sym, ok
}

// Resolve looks up name first in the current function's scope stack,
// then among file-scope globals.
func (g *GlobalTable) Resolve(name string) (*Symbol, bool) {
	if t, ok := g.tables[g.current]; ok {
		if sym, ok := t.Lookup(name); ok {
			return sym, true
		}
	}
	return g.Global(name)
}

// ResolveByUnique looks up a symbol declared anywhere in the program by
// its post-renaming IR name: first among the named function's locals,
// then among file-scope globals. funcName may be empty if unique is
// known to be a global (or pool) name.
func (g *GlobalTable) ResolveByUnique(funcName, unique string) (*Symbol, bool) {
	if t, ok := g.tables[funcName]; ok {
		if sym, ok := t.SymbolByUnique(unique); ok {
			return sym, true
		}
	}
	return g.GlobalByUnique(unique)
}

// NextStringLabel hands out the next cstring-pool label.
func (g *GlobalTable) NextStringLabel() string {
	g.strCount++
	label := fmtLabel("L.str", g.strCount)
	clog.Debugf("allocated label %s", label)
	return label
}

// NextLiteral8Label hands out the next floating-point literal-pool
// label.
func (g *GlobalTable) NextLiteral8Label() string {
	g.litCount++
	label := fmtLabel("L.dbl", g.litCount)
	clog.Debugf("allocated label %s", label)
	return label
}

func fmtLabel(prefix string, n int) string {
	return prefix + "." + strconv.Itoa(n)
}
