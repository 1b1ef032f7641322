package ast

import "github.com/skx/minic/token"

// BinOpFromToken maps an operator token to the BinOp it denotes. ok is
// false if tok is not a binary operator.
func BinOpFromToken(tok token.Type) (BinOp, bool) {
	switch tok {
	case token.PLUS:
		return Add, true
	case token.MINUS:
		return Sub, true
	case token.ASTERISK:
		return Mul, true
	case token.SLASH:
		return Div, true
	case token.PERCENT:
		return Mod, true
	case token.AND:
		return LogicalAnd, true
	case token.OR:
		return LogicalOr, true
	case token.EQ:
		return Equal, true
	case token.NOT_EQ:
		return NotEqual, true
	case token.LT:
		return LessThan, true
	case token.GT:
		return GreaterThan, true
	case token.LE:
		return LessOrEqual, true
	case token.GE:
		return GreaterOrEqual, true
	default:
		return 0, false
	}
}

// CompoundAssignOp maps a compound-assignment token (`+=`, `-=`, ...) to
// the BinOp its desugared `x = x OP y` form uses.
func CompoundAssignOp(tok token.Type) (BinOp, bool) {
	switch tok {
	case token.PLUS_EQ:
		return Add, true
	case token.MINUS_EQ:
		return Sub, true
	case token.ASTERISK_EQ:
		return Mul, true
	case token.SLASH_EQ:
		return Div, true
	case token.PERCENT_EQ:
		return Mod, true
	default:
		return 0, false
	}
}

// Precedence returns the binding power of a binary operator token, per
// the precedence-climbing table: lower binds looser. ok is false if tok
// is not a binary operator.
func Precedence(tok token.Type) (int, bool) {
	switch tok {
	case token.OR:
		return 5, true
	case token.AND:
		return 10, true
	case token.EQ, token.NOT_EQ:
		return 20, true
	case token.LT, token.GT, token.LE, token.GE:
		return 25, true
	case token.PLUS, token.MINUS:
		return 35, true
	case token.ASTERISK, token.SLASH, token.PERCENT:
		return 40, true
	default:
		return 0, false
	}
}
