package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/skx/minic/symbols"
	"github.com/skx/minic/types"
)

// resolveSymbol looks an operand's unique name up: first among the
// current function's locals/temporaries, then the literal pool, then
// file-scope globals. This mirrors symbols.GlobalTable.ResolveByUnique,
// reimplemented here so the pool table (which ResolveByUnique doesn't
// know about) is checked too.
func (a *Assembler) resolveSymbol(name string) (*symbols.Symbol, bool) {
	if a.table != nil {
		if sym, ok := a.table.SymbolByUnique(name); ok {
			return sym, true
		}
	}
	if sym, ok := a.pool.SymbolByUnique(name); ok {
		return sym, true
	}
	if sym, ok := a.global.GlobalByUnique(name); ok {
		return sym, true
	}
	return nil, false
}

// isImmediate reports whether raw is a TAC-generated decimal literal
// rather than a symbol's unique name: tac/expr.go renders every
// int/long/uint/ulong/char/bool literal as plain decimal text, so a
// string that parses as an integer is always an immediate, never a
// variable name (identifiers can't be all-digit in this grammar).
func isImmediate(raw string) bool {
	if raw == "" {
		return false
	}
	_, err := strconv.ParseInt(raw, 10, 64)
	if err == nil {
		return true
	}
	_, err = strconv.ParseUint(raw, 10, 64)
	return err == nil
}

// asmLabel renders sym's compiler-visible name. Every symbol this
// compiler emits - function, global, literal-pool entry - is prefixed
// with an underscore per spec.md §6; dots in a mangled unique name
// (static-local and file-static renaming both use them) are folded to
// underscores so the result is a legal assembler identifier.
func asmLabel(sym *symbols.Symbol) string {
	return "_" + strings.ReplaceAll(sym.Unique, ".", "_")
}

// funcLabel renders a called function's name the same way FUNC_BEGIN
// does, without going through symbol resolution (a call target isn't
// necessarily declared in the current function's table).
func funcLabel(name string) string {
	return "_" + name
}

// mem renders sym's address as a memory operand: a frame-relative
// offset for automatic-duration locals/temporaries, RIP-relative
// otherwise (globals, statics, and literal/cstring pool entries all
// have static storage duration).
func (a *Assembler) mem(sym *symbols.Symbol) string {
	if sym.Duration == symbols.Automatic {
		return fmt.Sprintf("%d(%%rbp)", sym.Offset)
	}
	return asmLabel(sym) + "(%rip)"
}

// src renders raw (an immediate literal or a symbol's unique name) as
// a general-purpose-register source operand.
func (a *Assembler) src(raw string) string {
	if isImmediate(raw) {
		return "$" + raw
	}
	if sym, ok := a.resolveSymbol(raw); ok {
		return a.mem(sym)
	}
	return "$0"
}

// srcType resolves raw's type: a literal pool/variable's declared type,
// or - for a bare immediate, which carries no type of its own - int,
// the TAC generator's own default for untyped integer constants.
func (a *Assembler) srcType(raw string) types.Type {
	if sym, ok := a.resolveSymbol(raw); ok {
		return sym.Type
	}
	return types.New(types.Int)
}

// loadDouble loads raw's value into the named xmm register.
func (a *Assembler) loadDouble(raw string, xmm string) {
	if sym, ok := a.resolveSymbol(raw); ok {
		a.line("movsd %s, %%%s", a.mem(sym), xmm)
		return
	}
	// An immediate double only ever reaches the assembler through a
	// literal-pool label (tac/expr.go always pools DoubleLiteral nodes),
	// so this path is defensive rather than expected.
	a.line("movsd %s, %%%s", raw, xmm)
}

// storeDouble stores the named xmm register into raw's memory location.
func (a *Assembler) storeDouble(xmm string, raw string) {
	if sym, ok := a.resolveSymbol(raw); ok {
		a.line("movsd %%%s, %s", xmm, a.mem(sym))
		return
	}
	a.line("movsd %%%s, %s", xmm, raw)
}

// register family tables, indexed by sizeIndex(ty): 0 = byte, 1 = word
// (unused by this language's type set, kept for completeness), 2 =
// double-word, 3 = quad-word.
var regFamily = map[string][4]string{
	"a":   {"al", "ax", "eax", "rax"},
	"b":   {"bl", "bx", "ebx", "rbx"},
	"c":   {"cl", "cx", "ecx", "rcx"},
	"d":   {"dl", "dx", "edx", "rdx"},
	"r10": {"r10b", "r10w", "r10d", "r10"},
	"r11": {"r11b", "r11w", "r11d", "r11"},
}

func sizeIndex(ty types.Type) int {
	switch ty.Size() {
	case 1:
		return 0
	case 8:
		return 3
	default:
		return 2
	}
}

// sizedReg renders the family's register name sized to ty: the
// compiler's size-polymorphic instruction selection (spec.md §4.7)
// applies to register choice as much as to the mov/cmp mnemonic.
func sizedReg(family string, ty types.Type) string {
	return "%" + regFamily[family][sizeIndex(ty)]
}

// movSuffix picks the size suffix spec.md §4.7 calls for: movb/movl/movq
// by the operand type's size (this language has no 2-byte type).
func movSuffix(ty types.Type) string {
	switch ty.Size() {
	case 1:
		return "movb"
	case 8:
		return "movq"
	default:
		return "movl"
	}
}
