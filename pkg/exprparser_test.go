package ifj25

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// tokStream is a Tokenizer that replays a fixed slice of tokens, appending a
// trailing EOF so the parser can always drain cleanly.
type tokStream struct {
	toks []Token
	pos  int
}

func newTokStream(toks []Token) *tokStream {
	return &tokStream{toks: append(toks, Token{Typ: TokenEOF})}
}

func (s *tokStream) Do() {}

func (s *tokStream) Get() Token {
	if s.pos >= len(s.toks) {
		return Token{Typ: TokenEOF}
	}

	t := s.toks[s.pos]
	s.pos++
	return t
}

func numTok(v string) Token   { return Token{Typ: TokenInt, Value: v} }
func identTok(v string) Token { return Token{Typ: TokenIdentifier, Value: v} }

func TestParseExprPrecedence(t *testing.T) {
	// 1 + 2 * 3 -> +(1, *(2, 3))
	p := NewParser(newTokStream([]Token{
		numTok("1"), {Typ: TokenPlus}, numTok("2"), {Typ: TokenMulti}, numTok("3"), {Typ: TokenEOL},
	}))

	expr, cerr := p.parseExpr()
	assert.Nil(t, cerr)

	bin, ok := expr.(*Binary)
	assert.True(t, ok)
	assert.Equal(t, OpAdd, bin.Op)

	left, ok := bin.Left.(*NumLit)
	assert.True(t, ok)
	assert.Equal(t, 1.0, left.Value)

	right, ok := bin.Right.(*Binary)
	assert.True(t, ok)
	assert.Equal(t, OpMul, right.Op)
}

func TestParseExprParentheses(t *testing.T) {
	// (1 + 3) * 2 -> *(+(1, 3), 2)
	p := NewParser(newTokStream([]Token{
		{Typ: TokenLParen}, numTok("1"), {Typ: TokenPlus}, numTok("3"), {Typ: TokenRParen},
		{Typ: TokenMulti}, numTok("2"), {Typ: TokenEOL},
	}))

	expr, cerr := p.parseExpr()
	assert.Nil(t, cerr)

	bin, ok := expr.(*Binary)
	assert.True(t, ok)
	assert.Equal(t, OpMul, bin.Op)

	left, ok := bin.Left.(*Binary)
	assert.True(t, ok)
	assert.Equal(t, OpAdd, left.Op)
}

func TestParseExprCall(t *testing.T) {
	p := NewParser(newTokStream([]Token{
		identTok("foo"), {Typ: TokenLParen},
		{Typ: TokenStringLit, Value: "arg1"}, {Typ: TokenComma},
		numTok("2"), {Typ: TokenRParen}, {Typ: TokenEOL},
	}))

	expr, cerr := p.parseExpr()
	assert.Nil(t, cerr)

	call, ok := expr.(*FuncCall)
	assert.True(t, ok)
	assert.Equal(t, "foo", call.Name)
	assert.Len(t, call.Args, 2)
}

func TestParseExprIs(t *testing.T) {
	p := NewParser(newTokStream([]Token{
		identTok("x"), {Typ: TokenIs}, {Typ: TokenNum, Value: "Num"}, {Typ: TokenEOL},
	}))

	expr, cerr := p.parseExpr()
	assert.Nil(t, cerr)

	bin, ok := expr.(*Binary)
	assert.True(t, ok)
	assert.Equal(t, OpIs, bin.Op)

	tl, ok := bin.Right.(*TypeLit)
	assert.True(t, ok)
	assert.Equal(t, TypeNum, tl.Tag)
}

func TestParseExprMalformed(t *testing.T) {
	// Two bare terms with nothing between them is a syntax error.
	p := NewParser(newTokStream([]Token{
		numTok("1"), numTok("2"), {Typ: TokenEOL},
	}))

	_, cerr := p.parseExpr()
	assert.NotNil(t, cerr)
}
