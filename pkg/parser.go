package ifj25

import "fmt"

// Parser is a recursive-descent parser over the token stream a [Tokenizer]
// produces, with an operator-precedence sub-parser (exprparser.go) for
// expressions. It buffers a single token of lookahead.
type Parser struct {
	tokenizer Tokenizer
	buf       *Token
}

// NewParser creates a parser pulling tokens from tokenizer.
func NewParser(tokenizer Tokenizer) *Parser {
	return &Parser{tokenizer: tokenizer}
}

// Parse consumes the tokenizer's whole output, building the program AST per
// spec §4.2. The caller must already have the tokenizer's producer running
// (see [Compiler.Compile]); Parse only pulls. It returns the first error
// encountered; per the pipeline's failure semantics a malformed program
// never yields a partial tree. A failure caused by a lexer error token is
// reported with the lexer's category rather than as a syntax error.
func (p *Parser) Parse() (*Program, *CompileError) {
	prog, cerr := p.program()
	if cerr != nil && p.buf != nil {
		switch p.buf.Typ {
		case TokenError:
			return nil, lexicalErrorf(p.buf.Loc, "%s", p.buf.Value)
		case TokenInternal:
			return nil, internalErrorf(p.buf.Loc, "%s", p.buf.Value)
		}
	}

	return prog, cerr
}

func (p *Parser) peek() Token {
	if p.buf == nil {
		tok := p.next0()
		p.buf = &tok
	}

	return *p.buf
}

func (p *Parser) next() Token {
	if p.buf != nil {
		tok := *p.buf
		p.buf = nil

		if !tok.isValid() {
			// Keep an EOF/error token buffered so subsequent calls see it
			// too instead of blocking on an exhausted channel.
			p.buf = &tok
		}

		return tok
	}

	return p.next0()
}

func (p *Parser) next0() Token {
	tok := p.tokenizer.Get()
	if !tok.isValid() {
		p.buf = &tok
	}

	return tok
}

func (p *Parser) check(typ TokenType) bool {
	return p.peek().Typ == typ
}

func (p *Parser) consume(typ TokenType) bool {
	if !p.check(typ) {
		return false
	}

	p.next()
	return true
}

func (p *Parser) expect(typ TokenType) (Token, *CompileError) {
	tok := p.next()
	if tok.Typ != typ {
		return tok, syntaxErrorf(tok.Loc, "unexpected token %v", tok.Typ)
	}

	return tok, nil
}

// skipEOLs consumes zero or more EOL tokens, letting callers tolerate blank
// lines between top-level definitions and between statements.
func (p *Parser) skipEOLs() {
	for p.check(TokenEOL) {
		p.next()
	}
}

func (p *Parser) errorf(loc *Location, format string, args ...interface{}) *CompileError {
	return syntaxErrorf(loc, format, args...)
}

// program parses the whole translation unit: the prolog followed by the
// class body.
func (p *Parser) program() (*Program, *CompileError) {
	if cerr := p.prolog(); cerr != nil {
		return nil, cerr
	}

	defs, cerr := p.classBody()
	if cerr != nil {
		return nil, cerr
	}

	return &Program{Defs: defs}, nil
}

// prolog matches 'import' STRING('ifj25') 'for' 'Ifj' EOL.
func (p *Parser) prolog() *CompileError {
	if _, cerr := p.expect(TokenImport); cerr != nil {
		return cerr
	}

	str, cerr := p.expect(TokenStringLit)
	if cerr != nil {
		return cerr
	}

	if str.Value != "ifj25" {
		return p.errorf(str.Loc, "expected import \"ifj25\", got %q", str.Value)
	}

	if _, cerr := p.expect(TokenFor); cerr != nil {
		return cerr
	}

	if _, cerr := p.expect(TokenIfj); cerr != nil {
		return cerr
	}

	if _, cerr := p.expect(TokenEOL); cerr != nil {
		return cerr
	}

	p.skipEOLs()
	return nil
}

// classBody matches 'class' IDENT('Program') '{' EOL (def-fn)* '}'.
func (p *Parser) classBody() ([]Stmt, *CompileError) {
	if _, cerr := p.expect(TokenClass); cerr != nil {
		return nil, cerr
	}

	name, cerr := p.expect(TokenIdentifier)
	if cerr != nil {
		return nil, cerr
	}

	if name.Value != "Program" {
		return nil, p.errorf(name.Loc, "expected class name \"Program\", got %q", name.Value)
	}

	if _, cerr := p.expect(TokenLCurly); cerr != nil {
		return nil, cerr
	}

	p.skipEOLs()

	var defs []Stmt
	for !p.check(TokenRCurly) && p.peek().isValid() {
		def, cerr := p.defFn()
		if cerr != nil {
			return nil, cerr
		}

		defs = append(defs, def)
		p.skipEOLs()
	}

	if _, cerr := p.expect(TokenRCurly); cerr != nil {
		return nil, cerr
	}

	return defs, nil
}

// defFn matches 'static' IDENT ( getter | setter | function ), dispatching
// on the token that follows the name: '{' is a getter, '=' a setter, '('
// a function.
func (p *Parser) defFn() (Stmt, *CompileError) {
	if _, cerr := p.expect(TokenStatic); cerr != nil {
		return nil, cerr
	}

	name, cerr := p.expect(TokenIdentifier)
	if cerr != nil {
		return nil, cerr
	}

	switch p.peek().Typ {
	case TokenLCurly:
		body, cerr := p.blockStmts()
		if cerr != nil {
			return nil, cerr
		}

		return &GetterDef{Name: name.Value, Body: body, Loc: name.Loc}, nil
	case TokenAssign:
		return p.setterDef(name)
	case TokenLParen:
		return p.funcDef(name)
	default:
		return nil, p.errorf(name.Loc, "expected getter, setter or function body after %q", name.Value)
	}
}

func (p *Parser) setterDef(name Token) (Stmt, *CompileError) {
	p.next() // '='

	if _, cerr := p.expect(TokenLParen); cerr != nil {
		return nil, cerr
	}

	param, cerr := p.expect(TokenIdentifier)
	if cerr != nil {
		return nil, cerr
	}

	if _, cerr := p.expect(TokenRParen); cerr != nil {
		return nil, cerr
	}

	body, cerr := p.blockStmts()
	if cerr != nil {
		return nil, cerr
	}

	return &SetterDef{Name: name.Value, Param: Param{Name: param.Value}, Body: body, Loc: name.Loc}, nil
}

func (p *Parser) funcDef(name Token) (Stmt, *CompileError) {
	if _, cerr := p.expect(TokenLParen); cerr != nil {
		return nil, cerr
	}

	var params []Param
	for !p.check(TokenRParen) {
		pname, cerr := p.expect(TokenIdentifier)
		if cerr != nil {
			return nil, cerr
		}

		params = append(params, Param{Name: pname.Value})

		if !p.check(TokenComma) {
			break
		}

		p.next()
	}

	if _, cerr := p.expect(TokenRParen); cerr != nil {
		return nil, cerr
	}

	body, cerr := p.blockStmts()
	if cerr != nil {
		return nil, cerr
	}

	return &FuncDef{Name: name.Value, Params: params, Body: body, Loc: name.Loc}, nil
}

// blockStmts matches '{' EOL stmt* '}' and returns the statement list
// directly, for callers (function/getter/setter/if/while bodies) that hold
// their own Body/Then/Else field rather than a Block node.
func (p *Parser) blockStmts() ([]Stmt, *CompileError) {
	open, cerr := p.expect(TokenLCurly)
	if cerr != nil {
		return nil, cerr
	}

	p.skipEOLs()

	var stmts []Stmt
	for !p.check(TokenRCurly) {
		if !p.peek().isValid() {
			return nil, p.errorf(open.Loc, "unclosed block")
		}

		stmt, cerr := p.statement()
		if cerr != nil {
			return nil, cerr
		}

		stmts = append(stmts, stmt)
		p.skipEOLs()
	}

	if _, cerr := p.expect(TokenRCurly); cerr != nil {
		return nil, cerr
	}

	return stmts, nil
}

// statement matches stmt := var-decl | assign-or-call | if | while | return
// | ifj-call | block.
func (p *Parser) statement() (Stmt, *CompileError) {
	switch tok := p.peek(); tok.Typ {
	case TokenVar:
		return p.varDecl()
	case TokenIf:
		return p.ifStmt()
	case TokenWhile:
		return p.whileStmt()
	case TokenReturn:
		return p.returnStmt()
	case TokenIfj:
		call, cerr := p.ifjCall()
		if cerr != nil {
			return nil, cerr
		}

		return p.finishCallStatement(call)
	case TokenIdentifier, TokenGlobalIdentifier:
		return p.assignOrCall()
	case TokenLCurly:
		stmts, cerr := p.blockStmts()
		if cerr != nil {
			return nil, cerr
		}

		return &Block{Stmts: stmts}, nil
	default:
		return nil, p.errorf(tok.Loc, "unexpected token %v at start of statement", tok.Typ)
	}
}

// varDecl matches 'var' IDENT EOL.
func (p *Parser) varDecl() (Stmt, *CompileError) {
	kw := p.next() // 'var'

	name, cerr := p.expect(TokenIdentifier)
	if cerr != nil {
		return nil, cerr
	}

	if _, cerr := p.expect(TokenEOL); cerr != nil {
		return nil, cerr
	}

	return &VarDecl{Name: name.Value, Loc: kw.Loc}, nil
}

// assignOrCall matches IDENT ( '(' args? ')' | '=' rhs ).
func (p *Parser) assignOrCall() (Stmt, *CompileError) {
	name := p.next()

	switch p.peek().Typ {
	case TokenLParen:
		call, cerr := p.callArgs(name)
		if cerr != nil {
			return nil, cerr
		}

		return p.finishCallStatement(call)
	case TokenAssign:
		p.next()

		rhs, cerr := p.rhs()
		if cerr != nil {
			return nil, cerr
		}

		if _, cerr := p.expect(TokenEOL); cerr != nil {
			return nil, cerr
		}

		return &Assign{Target: name.Value, Rhs: rhs, Loc: name.Loc}, nil
	default:
		return nil, p.errorf(name.Loc, "expected ( or = after identifier %q", name.Value)
	}
}

// rhs matches expr | ifj-call.
func (p *Parser) rhs() (Expr, *CompileError) {
	if p.check(TokenIfj) {
		return p.ifjCall()
	}

	return p.parseExpr()
}

// callArgs matches '(' args? ')' for a call to the already-consumed name.
func (p *Parser) callArgs(name Token) (*FuncCall, *CompileError) {
	if _, cerr := p.expect(TokenLParen); cerr != nil {
		return nil, cerr
	}

	var args []Expr
	for !p.check(TokenRParen) {
		arg, cerr := p.parseExpr()
		if cerr != nil {
			return nil, cerr
		}

		args = append(args, arg)

		if !p.check(TokenComma) {
			break
		}

		p.next()
	}

	if _, cerr := p.expect(TokenRParen); cerr != nil {
		return nil, cerr
	}

	return &FuncCall{Name: name.Value, Args: args, Loc: name.Loc}, nil
}

// ifjCall matches 'Ifj' '.' IDENT '(' args? ')'.
func (p *Parser) ifjCall() (*FuncCall, *CompileError) {
	kw := p.next() // 'Ifj'

	if _, cerr := p.expect(TokenDot); cerr != nil {
		return nil, cerr
	}

	name, cerr := p.expect(TokenIdentifier)
	if cerr != nil {
		return nil, cerr
	}

	call, cerr := p.callArgs(name)
	if cerr != nil {
		return nil, cerr
	}

	call.Name = fmt.Sprintf("Ifj.%s", name.Value)
	call.Loc = kw.Loc
	return call, nil
}

// finishCallStatement consumes the statement-terminating EOL after a bare
// call used in statement position and wraps it as an ExprStmt.
func (p *Parser) finishCallStatement(call *FuncCall) (Stmt, *CompileError) {
	if _, cerr := p.expect(TokenEOL); cerr != nil {
		return nil, cerr
	}

	return &ExprStmt{Expr: call, Loc: call.Loc}, nil
}

// ifStmt matches 'if' '(' expr ')' block 'else' block.
func (p *Parser) ifStmt() (Stmt, *CompileError) {
	kw := p.next() // 'if'

	if _, cerr := p.expect(TokenLParen); cerr != nil {
		return nil, cerr
	}

	cond, cerr := p.parseExpr()
	if cerr != nil {
		return nil, cerr
	}

	if _, cerr := p.expect(TokenRParen); cerr != nil {
		return nil, cerr
	}

	then, cerr := p.blockStmts()
	if cerr != nil {
		return nil, cerr
	}

	p.skipEOLs()

	if _, cerr := p.expect(TokenElse); cerr != nil {
		return nil, cerr
	}

	els, cerr := p.blockStmts()
	if cerr != nil {
		return nil, cerr
	}

	return &If{Cond: cond, Then: then, Else: els, Loc: kw.Loc}, nil
}

// whileStmt matches 'while' '(' expr ')' block.
func (p *Parser) whileStmt() (Stmt, *CompileError) {
	kw := p.next() // 'while'

	if _, cerr := p.expect(TokenLParen); cerr != nil {
		return nil, cerr
	}

	cond, cerr := p.parseExpr()
	if cerr != nil {
		return nil, cerr
	}

	if _, cerr := p.expect(TokenRParen); cerr != nil {
		return nil, cerr
	}

	body, cerr := p.blockStmts()
	if cerr != nil {
		return nil, cerr
	}

	return &While{Cond: cond, Body: body, Loc: kw.Loc}, nil
}

// returnStmt matches 'return' expr? EOL.
func (p *Parser) returnStmt() (Stmt, *CompileError) {
	kw := p.next() // 'return'

	if p.check(TokenEOL) {
		p.next()
		return &Return{Loc: kw.Loc}, nil
	}

	val, cerr := p.parseExpr()
	if cerr != nil {
		return nil, cerr
	}

	if _, cerr := p.expect(TokenEOL); cerr != nil {
		return nil, cerr
	}

	return &Return{Value: val, Loc: kw.Loc}, nil
}
