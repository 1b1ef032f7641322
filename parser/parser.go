// Package parser implements the recursive-descent, precedence-climbing
// parser that turns a token stream into an ast.Program.
//
// Grounded on original_source/src/parser.cpp and include/parser.h: a
// single Parser object holding the lexer, the current and peek tokens,
// and one method per grammar production (parse_program, parse_statement,
// parse_expression with a precedence table, parse_factor for unary/
// postfix/primary). The teacher repo's compiler.go tokenizes eagerly
// into a flat slice; this parser instead pulls tokens from the lexer
// lazily with a one-token lookahead, per spec.md §4.1's "next/rewind"
// lexer contract.
package parser

import (
	"fmt"

	"github.com/skx/minic/ast"
	"github.com/skx/minic/cmderr"
	"github.com/skx/minic/lexer"
	"github.com/skx/minic/token"
	"github.com/skx/minic/types"
)

// Parser holds the token stream and one token of lookahead.
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token
}

// New builds a Parser over the given lexer and primes the two-token
// lookahead window.
func New(l *lexer.Lexer) (*Parser, error) {
	p := &Parser{l: l}
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p, nil
}

// next advances the lookahead window by one token.
func (p *Parser) next() error {
	p.curToken = p.peekToken
	tok, err := p.l.NextToken()
	if err != nil {
		return err
	}
	p.peekToken = tok
	return nil
}

func (p *Parser) pos() ast.Position {
	return ast.Position{Line: p.curToken.Line, Column: p.curToken.Column}
}

func (p *Parser) errorf(format string, args ...any) error {
	return cmderr.Parser(p.curToken.Line, p.curToken.Column, format, args...)
}

// expect consumes curToken if it matches tt, else raises a ParserError
// naming what was expected versus what was found.
func (p *Parser) expect(tt token.Type) (token.Token, error) {
	if p.curToken.Type != tt {
		return token.Token{}, p.errorf("expected %q, found %q (%q)", tt, p.curToken.Type, p.curToken.Literal)
	}
	tok := p.curToken
	err := p.next()
	return tok, err
}

func (p *Parser) curIs(tt token.Type) bool  { return p.curToken.Type == tt }
func (p *Parser) peekIs(tt token.Type) bool { return p.peekToken.Type == tt }

// ParseProgram parses an entire translation unit: a sequence of
// top-level function, variable, and struct declarations.
func ParseProgram(l *lexer.Lexer) (*ast.Program, error) {
	p, err := New(l)
	if err != nil {
		return nil, err
	}

	prog := ast.NewProgram()
	for !p.curIs(token.EOF) {
		decl, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		prog.Decls = append(prog.Decls, decl)
	}
	return prog, nil
}

// parseTopLevel parses one of: an optional storage specifier followed by
// a function or variable declaration, or a struct declaration.
func (p *Parser) parseTopLevel() (ast.Node, error) {
	spec := ast.SpecNone
	if p.curIs(token.STATIC) {
		spec = ast.SpecStatic
		if err := p.next(); err != nil {
			return nil, err
		}
	} else if p.curIs(token.EXTERN) {
		spec = ast.SpecExtern
		if err := p.next(); err != nil {
			return nil, err
		}
	}

	if p.curIs(token.STRUCT) && p.peekIs(token.IDENT) {
		// Disambiguate `struct Foo { ... };` (a declaration) from
		// `struct Foo x;` (a variable of struct type) by peeking past
		// the identifier.
		return p.parseStructDeclOrVar(spec)
	}

	if p.curIs(token.FN) {
		return p.parseFuncDecl(spec)
	}

	return p.parseVarDeclStatement(spec)
}

func (p *Parser) parseStructDeclOrVar(spec ast.Specifier) (ast.Node, error) {
	pos := p.pos()
	if err := p.next(); err != nil { // consume `struct`
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	if p.curIs(token.LBRACE) {
		return p.finishStructDecl(pos, name.Literal)
	}

	// `struct Name var;` or `struct Name var = ...;` — fall through to
	// a variable declaration whose type is the named struct.
	declType := types.NewStruct(name.Literal, 0)
	return p.finishVarDecl(pos, declType, spec)
}

func (p *Parser) finishStructDecl(pos ast.Position, name string) (*ast.StructDecl, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}

	var members []*ast.VarDecl
	for !p.curIs(token.RBRACE) {
		memberType, err := p.parseTypeSpecifier()
		if err != nil {
			return nil, err
		}
		memberName, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		memberType, err = p.parseArraySuffix(memberType)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		members = append(members, ast.NewVarDecl(pos, ast.NewVar(pos, memberName.Literal), memberType, ast.SpecNone, nil))
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	return ast.NewStructDecl(pos, name, members), nil
}

// parseTypeSpecifier parses a base type keyword (optionally preceded by
// `unsigned`/`signed`) and any trailing `*` pointer markers.
func (p *Parser) parseTypeSpecifier() (types.Type, error) {
	unsigned := false
	if p.curIs(token.UNSIGNED) {
		unsigned = true
		if err := p.next(); err != nil {
			return types.Type{}, err
		}
	} else if p.curIs(token.SIGNED) {
		if err := p.next(); err != nil {
			return types.Type{}, err
		}
	}

	var base types.Type
	switch p.curToken.Type {
	case token.VOID_KW:
		base = types.New(types.Void)
	case token.CHAR_KW:
		base = types.New(types.Char)
	case token.DOUBLE:
		base = types.New(types.Double)
	case token.INT_KW:
		if unsigned {
			base = types.New(types.UInt)
		} else {
			base = types.New(types.Int)
		}
	case token.LONG_KW:
		if unsigned {
			base = types.New(types.ULong)
		} else {
			base = types.New(types.Long)
		}
	case token.STRUCT:
		if err := p.next(); err != nil {
			return types.Type{}, err
		}
		name, err := p.expect(token.IDENT)
		if err != nil {
			return types.Type{}, err
		}
		base = types.NewStruct(name.Literal, 0)
		return p.parsePointerSuffix(base)
	default:
		return types.Type{}, p.errorf("expected a type, found %q", p.curToken.Literal)
	}

	if err := p.next(); err != nil {
		return types.Type{}, err
	}
	return p.parsePointerSuffix(base)
}

func (p *Parser) parsePointerSuffix(base types.Type) (types.Type, error) {
	for p.curIs(token.ASTERISK) {
		base.PtrDepth++
		if err := p.next(); err != nil {
			return types.Type{}, err
		}
	}
	return base, nil
}

// parseArraySuffix parses zero or more `[N]` dimensions following a
// declarator name.
func (p *Parser) parseArraySuffix(base types.Type) (types.Type, error) {
	for p.curIs(token.LBRACKET) {
		if err := p.next(); err != nil {
			return types.Type{}, err
		}
		sizeTok, err := p.expect(token.INT)
		if err != nil {
			return types.Type{}, err
		}
		size, convErr := parseIntLiteralValue(sizeTok.Literal)
		if convErr != nil {
			return types.Type{}, p.errorf("invalid array dimension %q", sizeTok.Literal)
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return types.Type{}, err
		}
		base = base.WithArrayDimension(int(size))
	}
	return base, nil
}

// parseFuncDecl parses `fn name(params) -> type { body }`.
func (p *Parser) parseFuncDecl(spec ast.Specifier) (*ast.Func, error) {
	pos := p.pos()
	if err := p.next(); err != nil { // consume `fn`
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	fn := ast.NewFunc(pos, name.Literal, spec)

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	for !p.curIs(token.RPAREN) {
		paramType, err := p.parseTypeSpecifier()
		if err != nil {
			return nil, err
		}
		paramName, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		paramType, err = p.parseArraySuffix(paramType)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, ast.NewVarDecl(pos, ast.NewVar(pos, paramName.Literal), paramType, ast.SpecNone, nil))
		if p.curIs(token.COMMA) {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.ARROW); err != nil {
		return nil, err
	}
	retType, err := p.parseTypeSpecifier()
	if err != nil {
		return nil, err
	}
	fn.ReturnType = retType

	if p.curIs(token.SEMICOLON) {
		// A prototype with no body.
		return fn, p.next()
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

// parseBlock parses `{ statement* }`.
func (p *Parser) parseBlock() ([]ast.Node, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var stmts []ast.Node
	for !p.curIs(token.RBRACE) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return stmts, nil
}

// parseStatement parses one statement production.
func (p *Parser) parseStatement() (ast.Node, error) {
	switch p.curToken.Type {
	case token.RETURN:
		return p.parseReturn()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.BREAK:
		pos := p.pos()
		if err := p.next(); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return ast.NewLoopControl(pos, true), nil
	case token.CONTINUE:
		pos := p.pos()
		if err := p.next(); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return ast.NewLoopControl(pos, false), nil
	case token.STATIC:
		pos := p.pos()
		if err := p.next(); err != nil {
			return nil, err
		}
		return p.finishVarDeclAt(pos, ast.SpecStatic)
	default:
		if token.IsTypeKeyword(p.curToken.Type) {
			return p.parseVarDeclStatement(ast.SpecNone)
		}
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseReturn() (ast.Node, error) {
	pos := p.pos()
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.curIs(token.SEMICOLON) {
		if err := p.next(); err != nil {
			return nil, err
		}
		return ast.NewReturn(pos, nil), nil
	}
	value, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.NewReturn(pos, value), nil
}

func (p *Parser) parseIf() (ast.Node, error) {
	pos := p.pos()
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var els []ast.Node
	if p.curIs(token.ELSE) {
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.curIs(token.IF) {
			nested, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			els = []ast.Node{nested}
		} else {
			els, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}
	return ast.NewIf(pos, cond, then, els), nil
}

func (p *Parser) parseWhile() (ast.Node, error) {
	pos := p.pos()
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewWhile(pos, cond, body), nil
}

func (p *Parser) parseFor() (ast.Node, error) {
	pos := p.pos()
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var init ast.Node
	var err error
	if !p.curIs(token.SEMICOLON) {
		if token.IsTypeKeyword(p.curToken.Type) {
			init, err = p.parseVarDeclStatement(ast.SpecNone)
			if err != nil {
				return nil, err
			}
		} else {
			init, err = p.parseExpressionStatement()
			if err != nil {
				return nil, err
			}
		}
	} else {
		if err := p.next(); err != nil {
			return nil, err
		}
	}

	var cond ast.Expr
	if !p.curIs(token.SEMICOLON) {
		cond, err = p.parseExpression(0)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	var post ast.Node
	if !p.curIs(token.RPAREN) {
		post, err = p.parseSimpleStatement()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewFor(pos, init, cond, post, body), nil
}

// parseSimpleStatement parses a bare expression or assignment without
// requiring a trailing semicolon — used for a for-loop's post-clause.
func (p *Parser) parseSimpleStatement() (ast.Node, error) {
	pos := p.pos()
	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if p.curIs(token.ASSIGN) {
		if err := p.next(); err != nil {
			return nil, err
		}
		value, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		return ast.NewVarAssign(pos, expr, value), nil
	}
	return expr, nil
}

// parseExpressionStatement parses an expression-statement: an
// assignment, compound assignment, or bare expression, terminated by
// `;`.
func (p *Parser) parseExpressionStatement() (ast.Node, error) {
	pos := p.pos()
	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	var stmt ast.Node = expr
	switch p.curToken.Type {
	case token.ASSIGN:
		if err := p.next(); err != nil {
			return nil, err
		}
		value, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		stmt = ast.NewVarAssign(pos, expr, value)
	case token.PLUS_EQ, token.MINUS_EQ, token.ASTERISK_EQ, token.SLASH_EQ, token.PERCENT_EQ:
		op, _ := ast.CompoundAssignOp(p.curToken.Type)
		if err := p.next(); err != nil {
			return nil, err
		}
		value, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		stmt = ast.NewVarAssign(pos, expr, ast.NewBinary(pos, op, expr, value))
	}

	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseVarDeclStatement parses `type name (= expr)? (, name ...)?;`.
func (p *Parser) parseVarDeclStatement(spec ast.Specifier) (ast.Node, error) {
	pos := p.pos()
	declType, err := p.parseTypeSpecifier()
	if err != nil {
		return nil, err
	}
	return p.finishVarDecl(pos, declType, spec)
}

func (p *Parser) finishVarDeclAt(pos ast.Position, spec ast.Specifier) (ast.Node, error) {
	declType, err := p.parseTypeSpecifier()
	if err != nil {
		return nil, err
	}
	return p.finishVarDecl(pos, declType, spec)
}

func (p *Parser) finishVarDecl(pos ast.Position, declType types.Type, spec ast.Specifier) (ast.Node, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	declType, err = p.parseArraySuffix(declType)
	if err != nil {
		return nil, err
	}

	var value ast.Expr
	if p.curIs(token.ASSIGN) {
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.curIs(token.LBRACE) {
			value, err = p.parseCompoundInit()
		} else {
			value, err = p.parseExpression(0)
		}
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	return ast.NewVarDecl(pos, ast.NewVar(pos, name.Literal), declType, spec, value), nil
}

// parseCompoundInit parses `{ e1, e2, ... }`.
func (p *Parser) parseCompoundInit() (ast.Expr, error) {
	pos := p.pos()
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var elements []ast.Expr
	for !p.curIs(token.RBRACE) {
		var el ast.Expr
		var err error
		if p.curIs(token.LBRACE) {
			el, err = p.parseCompoundInit()
		} else {
			el, err = p.parseExpression(0)
		}
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
		if p.curIs(token.COMMA) {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewCompoundInit(pos, elements), nil
}

// parseExpression implements precedence climbing: parseFactor produces
// the left-hand atom, then loops while the lookahead operator's
// precedence is at least minPrec.
func (p *Parser) parseExpression(minPrec int) (ast.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for {
		prec, ok := ast.Precedence(p.curToken.Type)
		if !ok || prec < minPrec {
			return left, nil
		}
		op, _ := ast.BinOpFromToken(p.curToken.Type)
		pos := p.pos()
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseExpression(prec + 1)
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(pos, op, left, right)
	}
}

// parseFactor parses unary prefix operators, then dispatches to
// parsePostfix for the primary expression and any postfix chain.
func (p *Parser) parseFactor() (ast.Expr, error) {
	pos := p.pos()
	switch p.curToken.Type {
	case token.MINUS:
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(pos, ast.Negate, operand), nil
	case token.TILDE:
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(pos, ast.Complement, operand), nil
	case token.BANG:
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		// `!x` desugars to `x == 0` so later stages only ever see the
		// comparison operator set.
		return ast.NewBinary(pos, ast.Equal, operand, ast.NewIntLiteral(pos, 0)), nil
	case token.INCREMENT:
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(pos, ast.PreIncrement, operand), nil
	case token.DECREMENT:
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(pos, ast.PreDecrement, operand), nil
	case token.AMPERSAND:
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return ast.NewAddrOf(pos, operand), nil
	case token.ASTERISK:
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return ast.NewDeref(pos, operand), nil
	case token.LPAREN:
		if p.startsCast() {
			return p.parseCast(pos)
		}
	}
	return p.parsePostfix()
}

// startsCast reports whether the current `(` introduces a cast (the
// token after it is a type keyword) rather than a parenthesised
// expression.
func (p *Parser) startsCast() bool {
	return token.IsTypeKeyword(p.peekToken.Type)
}

func (p *Parser) parseCast(pos ast.Position) (ast.Expr, error) {
	if err := p.next(); err != nil { // consume `(`
		return nil, err
	}
	target, err := p.parseTypeSpecifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	operand, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	return ast.NewCast(pos, target, operand), nil
}

// parsePostfix parses a primary expression followed by any chain of
// `(...)`, `[...]`, `.field`, `->field`, `++`, `--`.
func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		pos := p.pos()
		switch p.curToken.Type {
		case token.LBRACKET:
			if err := p.next(); err != nil {
				return nil, err
			}
			index, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			expr = ast.NewArrayAccess(pos, expr, index)
		case token.DOT:
			if err := p.next(); err != nil {
				return nil, err
			}
			field, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			expr = ast.NewPostfix(pos, ast.FieldDot, expr, field.Literal)
		case token.ARROW:
			if err := p.next(); err != nil {
				return nil, err
			}
			field, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			expr = ast.NewPostfix(pos, ast.FieldArrow, expr, field.Literal)
		case token.INCREMENT:
			if err := p.next(); err != nil {
				return nil, err
			}
			expr = ast.NewPostfix(pos, ast.PostIncrement, expr, "")
		case token.DECREMENT:
			if err := p.next(); err != nil {
				return nil, err
			}
			expr = ast.NewPostfix(pos, ast.PostDecrement, expr, "")
		default:
			return expr, nil
		}
	}
}

// parsePrimary parses literals, parenthesised expressions, variable
// references, and function calls.
func (p *Parser) parsePrimary() (ast.Expr, error) {
	pos := p.pos()
	switch p.curToken.Type {
	case token.INT:
		lit := p.curToken.Literal
		if err := p.next(); err != nil {
			return nil, err
		}
		return parseIntLiteral(pos, lit)
	case token.FLOAT:
		lit := p.curToken.Literal
		if err := p.next(); err != nil {
			return nil, err
		}
		var f float64
		if _, err := fmt.Sscanf(lit, "%g", &f); err != nil {
			return nil, p.errorf("invalid floating literal %q", lit)
		}
		return ast.NewDoubleLiteral(pos, f), nil
	case token.CHAR:
		lit := p.curToken.Literal
		if err := p.next(); err != nil {
			return nil, err
		}
		return ast.NewCharLiteral(pos, lit[0]), nil
	case token.STRING:
		lit := p.curToken.Literal
		if err := p.next(); err != nil {
			return nil, err
		}
		return ast.NewStringLiteral(pos, lit), nil
	case token.BOOL:
		lit := p.curToken.Literal
		if err := p.next(); err != nil {
			return nil, err
		}
		return ast.NewBoolLiteral(pos, lit == "true"), nil
	case token.LPAREN:
		if err := p.next(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case token.IDENT:
		name := p.curToken.Literal
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.curIs(token.LPAREN) {
			return p.parseCallArgs(pos, name)
		}
		return ast.NewVar(pos, name), nil
	default:
		return nil, p.errorf("unexpected token %q in expression", p.curToken.Literal)
	}
}

func (p *Parser) parseCallArgs(pos ast.Position, name string) (ast.Expr, error) {
	if err := p.next(); err != nil { // consume `(`
		return nil, err
	}
	var args []ast.Expr
	for !p.curIs(token.RPAREN) {
		arg, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.curIs(token.COMMA) {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return ast.NewFuncCall(pos, name, args), nil
}

// parseIntLiteral builds the right literal node kind from an integer
// token's suffix (`l`, `u`, `ul`).
func parseIntLiteral(pos ast.Position, lit string) (ast.Expr, error) {
	digits, suffix := splitIntSuffix(lit)
	value, err := parseIntLiteralValue(digits)
	if err != nil {
		return nil, fmt.Errorf("invalid integer literal %q", lit)
	}

	switch suffix {
	case "ul", "lu":
		return ast.NewULongLiteral(pos, uint64(value)), nil
	case "l":
		return ast.NewLongLiteral(pos, value), nil
	case "u":
		return ast.NewUIntLiteral(pos, uint32(value)), nil
	default:
		return ast.NewIntLiteral(pos, int32(value)), nil
	}
}

func splitIntSuffix(lit string) (digits, suffix string) {
	i := len(lit)
	for i > 0 && (lit[i-1] == 'l' || lit[i-1] == 'u') {
		i--
	}
	return lit[:i], lit[i:]
}

func parseIntLiteralValue(digits string) (int64, error) {
	var value int64
	for _, ch := range digits {
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("invalid digit %q", ch)
		}
		value = value*10 + int64(ch-'0')
	}
	return value, nil
}
