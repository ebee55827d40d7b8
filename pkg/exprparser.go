package ifj25

import "strconv"

// precSym is a column/row index into precTable. It is the precedence-parser
// alphabet from spec §4.3: Term, the ten binary operators, is, the two
// parentheses and the end-of-expression sentinel $.
type precSym int

const (
	psTerm precSym = iota
	psPlus
	psMinus
	psMul
	psDiv
	psLParen
	psRParen
	psLt
	psGt
	psLe
	psGe
	psIs
	psEq
	psNeq
	psDollar
)

// precTable is the 15x15 operator-precedence table, transcribed verbatim
// (row/column order and contents) from the original compiler's
// expr_precedence_parser.c. '<' means the stack top has lower precedence
// than the incoming token, which should be shifted; '>' means the stack
// top should be reduced first; '=' shifts then immediately reduces (used
// for matching parentheses); 'T' terminates the expression, handing the
// current token back to the caller; a blank entry is unreachable for
// well-formed input and is treated as a syntax error.
var precTable = [15][15]byte{
	psTerm:   {' ', '>', '>', '>', '>', ' ', '>', '>', '>', '>', '>', '>', '>', '>', '>'},
	psPlus:   {'<', '>', '>', '<', '<', '<', '>', '>', '>', '>', '>', '>', '>', '>', '>'},
	psMinus:  {'<', '>', '>', '<', '<', '<', '>', '>', '>', '>', '>', '>', '>', '>', '>'},
	psMul:    {'<', '>', '>', '>', '>', '<', '>', '>', '>', '>', '>', '>', '>', '>', '>'},
	psDiv:    {'<', '>', '>', '>', '>', '<', '>', '>', '>', '>', '>', '>', '>', '>', '>'},
	psLParen: {'<', '<', '<', '<', '<', '<', '=', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '},
	psRParen: {' ', '>', '>', '>', '>', ' ', '>', '>', '>', '>', '>', '>', '>', '>', '>'},
	psLt:     {'<', '<', '<', '<', '<', '<', '>', '>', '>', '>', '>', '>', '>', '>', '>'},
	psGt:     {'<', '<', '<', '<', '<', '<', '>', '>', '>', '>', '>', '>', '>', '>', '>'},
	psLe:     {'<', '<', '<', '<', '<', '<', '>', '>', '>', '>', '>', '>', '>', '>', '>'},
	psGe:     {'<', '<', '<', '<', '<', '<', '>', '>', '>', '>', '>', '>', '>', '>', '>'},
	psIs:     {'<', '<', '<', '<', '<', '<', '>', '>', '>', '>', '>', '>', '>', '>', '>'},
	psEq:     {'<', '<', '<', '<', '<', '<', '>', '>', '>', '>', '>', '>', '>', '>', '>'},
	psNeq:    {'<', '<', '<', '<', '<', '<', '>', '>', '>', '>', '>', '>', '>', '>', '>'},
	psDollar: {'<', '<', '<', '<', '<', '<', 'T', '<', '<', '<', '<', '<', '<', '<', ' '},
}

// binOpTable maps a precedence symbol to the Binary operator it denotes.
var binOpTable = map[precSym]BinOp{
	psPlus:  OpAdd,
	psMinus: OpSub,
	psMul:   OpMul,
	psDiv:   OpDiv,
	psLt:    OpLt,
	psGt:    OpGt,
	psLe:    OpLe,
	psGe:    OpGe,
	psEq:    OpEq,
	psNeq:   OpNeq,
	psIs:    OpIs,
}

// exprStackEntry is one cell of the precedence-parser stack: either a shifted
// terminal (carrying its source token and precedence symbol) or a reduced
// nonterminal (carrying the Expr built so far). A reduced entry's sym is
// always psTerm, mirroring expr_Pstack_push_nonterm tagging the node PS_TERM
// so later table lookups treat it exactly like a single operand.
type exprStackEntry struct {
	isTerm bool
	tok    Token
	sym    precSym
	expr   Expr
}

// tokenToPrecSym maps a lexer token to its precedence-parser symbol. Any
// literal, identifier or type-keyword token is a bare operand (psTerm);
// EOL, comma, EOF and the synthetic $ close the expression.
func tokenToPrecSym(tok Token) precSym {
	switch tok.Typ {
	case TokenPlus:
		return psPlus
	case TokenMinus:
		return psMinus
	case TokenMulti:
		return psMul
	case TokenDiv:
		return psDiv
	case TokenLt:
		return psLt
	case TokenGt:
		return psGt
	case TokenLe:
		return psLe
	case TokenGe:
		return psGe
	case TokenEq:
		return psEq
	case TokenNeq:
		return psNeq
	case TokenLParen:
		return psLParen
	case TokenRParen:
		return psRParen
	case TokenIs:
		return psIs
	case TokenIdentifier, TokenGlobalIdentifier, TokenInt, TokenDecimal, TokenStringLit,
		TokenNullLower, TokenNullUpper, TokenNum, TokenString:
		return psTerm
	case TokenDollar, TokenEOL, TokenComma, TokenEOF, TokenRCurly:
		return psDollar
	default:
		return psTerm
	}
}

// mainLoopStackSym is the stack symbol used while still shifting/reducing:
// it scans down past already-reduced nonterminals to the nearest terminal
// (which may be the bottom $ sentinel), exactly as main_precedence_parser's
// scan loop does. This is what lets a fully-reduced expression sitting on
// top of an operator correctly compare against that operator's precedence
// rather than against its own (always psTerm) tag.
func mainLoopStackSym(stack []exprStackEntry) precSym {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].isTerm {
			return stack[i].sym
		}
	}

	return psDollar
}

// parseExpr parses one expression starting at the parser's current token,
// per spec §4.3. The precedence-parser stack always starts with a bottom
// $ sentinel, matching expr_Pstack_init.
func (p *Parser) parseExpr() (Expr, *CompileError) {
	if tok := p.peek(); tok.Typ == TokenIdentifier || tok.Typ == TokenGlobalIdentifier {
		idTok := tok
		p.next()

		if p.peek().Typ == TokenLParen {
			return p.funcCallExpr(idTok)
		}

		stack := []exprStackEntry{
			{isTerm: true, sym: psDollar},
			{isTerm: true, tok: idTok, sym: psTerm},
		}

		return p.runPrecedenceParser(stack)
	}

	stack := []exprStackEntry{{isTerm: true, sym: psDollar}}
	return p.runPrecedenceParser(stack)
}

func (p *Parser) runPrecedenceParser(stack []exprStackEntry) (Expr, *CompileError) {
	for {
		cur := p.peek()
		stackSym := mainLoopStackSym(stack)
		curSym := tokenToPrecSym(cur)
		action := precTable[stackSym][curSym]

		switch action {
		case '<':
			stack = append(stack, exprStackEntry{isTerm: true, tok: cur, sym: curSym})
			p.next()
		case '>':
			ns, cerr := p.reduceExprStack(stack)
			if cerr != nil {
				return nil, cerr
			}
			stack = ns
		case '=':
			stack = append(stack, exprStackEntry{isTerm: true, tok: cur, sym: curSym})
			p.next()

			ns, cerr := p.reduceExprStack(stack)
			if cerr != nil {
				return nil, cerr
			}
			stack = ns
		case 'T':
			goto drain
		default:
			return nil, syntaxErrorf(cur.Loc, "unexpected token in expression")
		}

		if t := p.peek(); t.Typ == TokenEOF || t.Typ == TokenEOL || t.Typ == TokenComma {
			break
		}
	}

drain:
	for {
		if n := len(stack); n >= 2 && !stack[n-1].isTerm && stack[n-2].isTerm && stack[n-2].sym == psDollar {
			break
		}

		top := stack[len(stack)-1]
		stackSym := psTerm
		if top.isTerm {
			stackSym = top.sym
		}

		action := precTable[stackSym][psDollar]
		switch action {
		case '>':
			ns, cerr := p.reduceExprStack(stack)
			if cerr != nil {
				return nil, cerr
			}
			stack = ns
		case '=':
			goto done
		default:
			return nil, syntaxErrorf(p.peek().Loc, "unterminated expression")
		}
	}

done:
	if len(stack) < 2 || stack[len(stack)-1].isTerm {
		return nil, syntaxErrorf(p.peek().Loc, "empty expression")
	}

	return stack[len(stack)-1].expr, nil
}

// reduceExprStack applies exactly one of the three reduction rules in spec
// §4.3, chosen by the shape of the stack top, mirroring reduce() in the
// original compiler.
func (p *Parser) reduceExprStack(stack []exprStackEntry) ([]exprStackEntry, *CompileError) {
	n := len(stack)
	if n == 0 {
		return nil, syntaxErrorf(nil, "empty expression stack")
	}

	top := stack[n-1]

	// ( E ) -> E
	if top.isTerm && top.sym == psRParen && n >= 3 &&
		!stack[n-2].isTerm && stack[n-3].isTerm && stack[n-3].sym == psLParen {
		return append(stack[:n-3], exprStackEntry{isTerm: false, sym: psTerm, expr: stack[n-2].expr}), nil
	}

	// TERM -> E
	if top.isTerm {
		switch top.sym {
		case psPlus, psMinus, psMul, psDiv, psLt, psGt, psLe, psGe, psEq, psNeq, psIs:
			return nil, syntaxErrorf(top.tok.Loc, "unexpected operator in expression")
		}

		node, cerr := reduceTermToNode(top.tok)
		if cerr != nil {
			return nil, cerr
		}

		return append(stack[:n-1], exprStackEntry{isTerm: false, sym: psTerm, expr: node}), nil
	}

	// E op E -> E
	if n >= 3 && !top.isTerm && stack[n-2].isTerm && !stack[n-3].isTerm {
		op, ok := binOpTable[stack[n-2].sym]
		if !ok {
			return nil, syntaxErrorf(stack[n-2].tok.Loc, "unexpected operator in expression")
		}

		left := stack[n-3].expr
		right := top.expr
		bin := &Binary{Op: op, Left: left, Right: right, Loc: stack[n-2].tok.Loc}

		return append(stack[:n-3], exprStackEntry{isTerm: false, sym: psTerm, expr: bin}), nil
	}

	return nil, syntaxErrorf(nil, "malformed expression")
}

// reduceTermToNode turns a single shifted terminal into a leaf Expr. "null"
// is a value (NullLit); "Null", "Num" and "String" are type-literals for
// the right operand of is. Semantic analysis does not check where a
// type-literal appears; the emitter reports one outside is as an internal
// error.
func reduceTermToNode(tok Token) (Expr, *CompileError) {
	switch tok.Typ {
	case TokenIdentifier, TokenGlobalIdentifier:
		return &Ident{Name: tok.Value, Loc: tok.Loc}, nil
	case TokenInt:
		return parseIntLit(tok)
	case TokenDecimal:
		return parseDecimalLit(tok)
	case TokenStringLit:
		return &StrLit{Value: tok.Value, Loc: tok.Loc}, nil
	case TokenNullLower:
		return &NullLit{Loc: tok.Loc}, nil
	case TokenNullUpper:
		return &TypeLit{Tag: TypeNull, Loc: tok.Loc}, nil
	case TokenNum:
		return &TypeLit{Tag: TypeNum, Loc: tok.Loc}, nil
	case TokenString:
		return &TypeLit{Tag: TypeString, Loc: tok.Loc}, nil
	default:
		return nil, syntaxErrorf(tok.Loc, "unexpected token %v in expression", tok.Typ)
	}
}

func parseIntLit(tok Token) (Expr, *CompileError) {
	v, err := strconv.ParseInt(tok.Value, 0, 64)
	if err != nil {
		return nil, syntaxErrorf(tok.Loc, "malformed integer literal %q", tok.Value)
	}

	return &NumLit{Value: float64(v), IsInt: true, Loc: tok.Loc}, nil
}

func parseDecimalLit(tok Token) (Expr, *CompileError) {
	v, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		return nil, syntaxErrorf(tok.Loc, "malformed numeric literal %q", tok.Value)
	}

	return &NumLit{Value: v, IsInt: false, Loc: tok.Loc}, nil
}

// funcCallExpr parses the argument list of a call that the precedence
// parser recognized (identifier immediately followed by "("). Per spec
// §4.3, function calls cannot nest inside a larger expression: this is
// always the whole expression.
func (p *Parser) funcCallExpr(idTok Token) (Expr, *CompileError) {
	if !p.consume(TokenLParen) {
		return nil, syntaxErrorf(idTok.Loc, "expected ( after %s", idTok.Value)
	}

	var args []Expr
	for p.peek().Typ != TokenRParen {
		arg, cerr := p.parseExpr()
		if cerr != nil {
			return nil, cerr
		}

		args = append(args, arg)

		if p.peek().Typ != TokenComma {
			break
		}

		p.next()
	}

	if !p.consume(TokenRParen) {
		return nil, syntaxErrorf(idTok.Loc, "expected ) to close call to %s", idTok.Value)
	}

	return &FuncCall{Name: idTok.Value, Args: args, Loc: idTok.Loc}, nil
}
