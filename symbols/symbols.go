// Package symbols implements the per-function scope stack and the
// program-global symbol table: storage-duration and linkage bookkeeping,
// block-scope renaming on redeclaration, and stack-offset assignment.
//
// Grounded on original_source/include/symbolTable.h and
// globalSymbolTable.h: the C++ original keeps a std::stack<unordered_map>
// per function plus a process-wide GlobalSymbolTable holding a
// (FuncSymbol, SymbolTable) tuple per function name and a separate map
// for file-scope globals. The shadow-rename and temporary counters live
// on each Table instead of the C++ version's static counters; the
// static-local ordinal (nextOrdinal) is a package-level counter that is
// never reset, so it keeps counting across compilations in one process.
package symbols

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/skx/minic/cmderr"
	"github.com/skx/minic/internal/clog"
	"github.com/skx/minic/types"
)

// Duration is a symbol's storage duration.
type Duration int

const (
	Automatic Duration = iota
	Static
)

// Linkage is a symbol's linkage class.
type Linkage int

const (
	LinkNone Linkage = iota
	LinkInternal
	LinkExternal
)

// Symbol describes one declared name: its type, its renamed IR identity,
// its stack offset (for automatic-duration locals), and its linkage.
type Symbol struct {
	Name       string // original source name
	Unique     string // IR name after block-scope renaming
	Type       types.Type
	Offset     int // negative from frame base; 0 for static/temp/literal
	Duration   Duration
	Linkage    Linkage
	IsTemp      bool
	IsLiteral8  bool // double literal, lives in the literal pool
	IsString    bool // string literal, lives in the cstring pool
	LiteralText string // the pool entry's rendered value, set for IsLiteral8/IsString symbols
	Defined     bool // a storage-defining (non-extern) declaration has been seen; globals only
}

// FuncSymbol describes a declared function's signature.
type FuncSymbol struct {
	Name       string
	ParamTypes []types.Type
	ReturnType types.Type
	Linkage    Linkage
	Defined    bool
}

// scope is one lexical block: a flat name -> Symbol map.
type scope map[string]*Symbol

// Table is the per-function scope stack plus the running stack-size
// counter used to assign offsets to automatic-duration locals.
type Table struct {
	scopes    []scope
	byUnique  map[string]*Symbol
	order     []string // byUnique's keys in first-declared order
	stackSize int
	renameSeq int
}

// NewTable builds an empty per-function scope stack with one top-level
// scope already pushed (a function's parameter/body scope).
func NewTable() *Table {
	t := &Table{byUnique: map[string]*Symbol{}}
	t.EnterScope()
	return t
}

// Names returns every unique name this table has declared, in the order
// they were first declared. Used to render literal pools deterministically.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func (t *Table) remember(unique string, sym *Symbol) {
	if _, exists := t.byUnique[unique]; !exists {
		t.order = append(t.order, unique)
	}
	t.byUnique[unique] = sym
}

// SymbolByUnique looks up a symbol this table declared by its post-
// renaming IR name, independent of which lexical scope declared it or
// whether that scope has since been exited. The TAC generator and
// assembler use this: by the time they run, the symbol's owning scope
// may already be off the stack, but its AST node still carries the
// unique name.
func (t *Table) SymbolByUnique(unique string) (*Symbol, bool) {
	sym, ok := t.byUnique[unique]
	return sym, ok
}

// EnterScope pushes a new, empty lexical block.
func (t *Table) EnterScope() {
	t.scopes = append(t.scopes, scope{})
}

// ExitScope pops the innermost lexical block. Symbols it declared remain
// reachable through the table's by-unique-name bookkeeping (callers keep
// them in the TAC/AST), but are no longer found by Lookup.
func (t *Table) ExitScope() {
	if len(t.scopes) == 0 {
		return
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// top returns the innermost scope.
func (t *Table) top() scope {
	return t.scopes[len(t.scopes)-1]
}

// DeclareVar declares name at the current scope with the given type and
// storage duration. If name is already declared in the CURRENT scope,
// that is a redeclaration error (spec.md §4.4's linkage rules: "a
// block-scope redeclaration must match storage class or is an error" is
// covered here, since every same-scope redeclaration is rejected
// whatever its storage class); if
// name shadows a declaration in an OUTER scope, it is renamed by
// appending a monotonic counter so IR names never collide.
func (t *Table) DeclareVar(name string, ty types.Type, static bool) (*Symbol, error) {
	if _, exists := t.top()[name]; exists {
		return nil, cmderr.Semantic(0, 0, "redeclaration of %q in the same scope", name)
	}

	unique := name
	if t.isShadowed(name) {
		t.renameSeq++
		unique = fmt.Sprintf("%s.%d", name, t.renameSeq)
	}

	sym := &Symbol{Name: name, Unique: unique, Type: ty}
	if static {
		sym.Duration = Static
		sym.Linkage = LinkInternal
		sym.Unique = fmt.Sprintf("_static.%s.%d", name, t.nextOrdinal())
	} else {
		sym.Duration = Automatic
		sym.Offset = t.allocate(ty)
	}

	t.top()[name] = sym
	t.remember(sym.Unique, sym)
	clog.Debugf("declared %q as %s (scope now: %v)", name, sym.Unique, t.DeclaredNames())
	return sym, nil
}

// DeclaredNames returns the current scope's declared names, excluding
// compiler-generated temporaries, for debug tracing: lo.Keys collects
// the scope map's keys, lo.Filter drops anything DeclareTemp put there.
func (t *Table) DeclaredNames() []string {
	scope := t.top()
	return lo.Filter(lo.Keys(scope), func(name string, _ int) bool {
		return !scope[name].IsTemp
	})
}

// isShadowed reports whether name is already visible from an outer
// (non-top) scope.
func (t *Table) isShadowed(name string) bool {
	for i := len(t.scopes) - 2; i >= 0; i-- {
		if _, ok := t.scopes[i][name]; ok {
			return true
		}
	}
	return false
}

var staticOrdinal int

// nextOrdinal hands out a monotonic suffix for static-local mangled
// names. It is package-level because static storage duration means the
// name must stay unique across the whole compilation, not just one
// function's table.
func (t *Table) nextOrdinal() int {
	staticOrdinal++
	return staticOrdinal
}

// DeclareTemp introduces a compiler-generated temporary of the given
// type and returns its unique name.
func (t *Table) DeclareTemp(ty types.Type) *Symbol {
	t.renameSeq++
	sym := &Symbol{
		Name:     fmt.Sprintf("t%d", t.renameSeq),
		Unique:   fmt.Sprintf("t%d", t.renameSeq),
		Type:     ty,
		Duration: Automatic,
		IsTemp:   true,
		Offset:   t.allocate(ty),
	}
	t.top()[sym.Name] = sym
	t.remember(sym.Unique, sym)
	return sym
}

// DeclareLiteral8 introduces a floating-point literal-pool entry. Pool
// entries have no stack offset; they are addressed RIP-relative. text is
// the literal's rendered decimal value, carried through for the final
// data-section emission.
func (t *Table) DeclareLiteral8(label string, ty types.Type, text string) *Symbol {
	sym := &Symbol{Name: label, Unique: label, Type: ty, Duration: Static, IsLiteral8: true, LiteralText: text}
	t.top()[label] = sym
	t.remember(label, sym)
	return sym
}

// DeclareString introduces a cstring-pool entry, addressed RIP-relative.
// text is the string's source-level value (unescaped), carried through
// for the final data-section emission.
func (t *Table) DeclareString(label string, text string) *Symbol {
	sym := &Symbol{
		Name:        label,
		Unique:      label,
		Type:        types.NewPointer(types.Char, 1),
		Duration:    Static,
		IsString:    true,
		LiteralText: text,
	}
	t.top()[label] = sym
	t.remember(label, sym)
	return sym
}

// allocate aligns the running stack size to ty's natural alignment, adds
// ty's size, and returns the new symbol's (negative) frame offset.
func (t *Table) allocate(ty types.Type) int {
	align := ty.Size()
	if align > 8 {
		align = 8
	}
	if align == 0 {
		align = 1
	}
	t.stackSize = (t.stackSize + align - 1) &^ (align - 1)
	t.stackSize += ty.Size()
	offset := -t.stackSize
	clog.Debugf("assigned stack offset %d (frame now %d bytes)", offset, t.stackSize)
	return offset
}

// Lookup walks the scope stack from innermost to outermost and returns
// the matching symbol, if any.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i][name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// StackSize returns the function's total local-variable footprint,
// aligned up to 16 bytes for the frame directive.
func (t *Table) StackSize() int {
	return (t.stackSize + 15) &^ 15
}
