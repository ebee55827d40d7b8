package ifj25

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func analyzeProgram(t *testing.T, defs []Stmt) (*Program, *Analyzer, *CompileError) {
	t.Helper()

	a := NewAnalyzer()
	prog, cerr := a.Analyze(&Program{Defs: defs})
	return prog, a, cerr
}

func TestAnalyzeRetagsMainAndInfersTypes(t *testing.T) {
	main := &FuncDef{
		Name: "main",
		Body: []Stmt{
			&VarDecl{Name: "x"},
			&Assign{Target: "x", Rhs: &Binary{Op: OpAdd, Left: &NumLit{Value: 1}, Right: &NumLit{Value: 1}}},
		},
	}

	prog, _, cerr := analyzeProgram(t, []Stmt{main})
	assert.Nil(t, cerr)
	assert.Len(t, prog.Defs, 1)

	md, ok := prog.Defs[0].(*MainDef)
	assert.True(t, ok)
	assert.Len(t, md.Locals, 1)

	assign := md.Body[1].(*Assign)
	sym := assign.Scope.Lookup("x").(*VarSymbol)
	assert.Equal(t, TypeNum, sym.Type)
}

func TestAnalyzeMissingMainIsError(t *testing.T) {
	_, _, cerr := analyzeProgram(t, []Stmt{
		&FuncDef{Name: "helper", Body: nil},
	})

	assert.NotNil(t, cerr)
	assert.Equal(t, CategoryOther, cerr.Category)
}

func TestAnalyzeRedefinitionOfFunction(t *testing.T) {
	_, _, cerr := analyzeProgram(t, []Stmt{
		&FuncDef{Name: "main", Body: nil},
		&FuncDef{Name: "foo", Body: nil},
		&FuncDef{Name: "foo", Body: nil},
	})

	assert.NotNil(t, cerr)
	assert.Equal(t, CategoryRedefinition, cerr.Category)
}

func TestAnalyzeUndefinedVariableIsError(t *testing.T) {
	main := &FuncDef{
		Name: "main",
		Body: []Stmt{
			&Assign{Target: "neverDeclared", Rhs: &NumLit{Value: 1}},
		},
	}

	_, _, cerr := analyzeProgram(t, []Stmt{main})
	assert.NotNil(t, cerr)
	assert.Equal(t, CategoryUndefined, cerr.Category)
}

func TestAnalyzeGlobalIdentAutoDeclares(t *testing.T) {
	main := &FuncDef{
		Name: "main",
		Body: []Stmt{
			&Assign{Target: "__counter", Rhs: &NumLit{Value: 1}},
		},
	}

	_, a, cerr := analyzeProgram(t, []Stmt{main})
	assert.Nil(t, cerr)
	assert.NotNil(t, a.GlobalScope().Lookup("__counter"))
}

func TestAnalyzeGetterCallRewrite(t *testing.T) {
	getter := &GetterDef{Name: "count", Body: []Stmt{&Return{Value: &NumLit{Value: 7}}}}
	main := &FuncDef{
		Name: "main",
		Body: []Stmt{
			&VarDecl{Name: "v"},
			&Assign{Target: "v", Rhs: &Ident{Name: "count"}},
		},
	}

	prog, _, cerr := analyzeProgram(t, []Stmt{getter, main})
	assert.Nil(t, cerr)

	var fn *MainDef
	for _, d := range prog.Defs {
		if f, ok := d.(*MainDef); ok {
			fn = f
		}
	}
	assert.NotNil(t, fn)

	assign := fn.Body[1].(*Assign)
	gc, ok := assign.Rhs.(*GetterCall)
	assert.True(t, ok)
	assert.Equal(t, "count", gc.Name)
	assert.Equal(t, TypeNum, gc.ResolvedType)
}

func TestAnalyzeSetterCallRewrite(t *testing.T) {
	setter := &SetterDef{Name: "count", Param: Param{Name: "v"}, Body: nil}
	main := &FuncDef{
		Name: "main",
		Body: []Stmt{
			&Assign{Target: "count", Rhs: &NumLit{Value: 3}},
		},
	}

	prog, _, cerr := analyzeProgram(t, []Stmt{setter, main})
	assert.Nil(t, cerr)

	var fn *MainDef
	for _, d := range prog.Defs {
		if f, ok := d.(*MainDef); ok {
			fn = f
		}
	}
	assert.NotNil(t, fn)

	sc, ok := fn.Body[0].(*SetterCall)
	assert.True(t, ok)
	assert.Equal(t, "count", sc.Name)
}

func TestAnalyzeSetterNullWildcardAcceptsLaterType(t *testing.T) {
	setter := &SetterDef{Name: "count", Param: Param{Name: "v"}, Body: nil}
	main := &FuncDef{
		Name: "main",
		Body: []Stmt{
			&Assign{Target: "count", Rhs: &NullLit{}},
			&Assign{Target: "count", Rhs: &NumLit{Value: 3}},
		},
	}

	_, _, cerr := analyzeProgram(t, []Stmt{setter, main})
	assert.Nil(t, cerr)
}

func TestCombineTypesRelationalRequiresNum(t *testing.T) {
	_, cerr := combineTypes(OpLt, TypeString, TypeNum, nil)
	assert.NotNil(t, cerr)
	assert.Equal(t, CategoryTypeError, cerr.Category)

	rt, cerr := combineTypes(OpLt, TypeNum, TypeNum, nil)
	assert.Nil(t, cerr)
	assert.Equal(t, TypeNum, rt)
}

func TestCombineTypesAddAcceptsStringOrNum(t *testing.T) {
	rt, cerr := combineTypes(OpAdd, TypeString, TypeString, nil)
	assert.Nil(t, cerr)
	assert.Equal(t, TypeString, rt)

	rt, cerr = combineTypes(OpAdd, TypeNum, TypeNum, nil)
	assert.Nil(t, cerr)
	assert.Equal(t, TypeNum, rt)

	_, cerr = combineTypes(OpAdd, TypeString, TypeNum, nil)
	assert.NotNil(t, cerr)
}

func TestCombineTypesMulAcceptsStringTimesNum(t *testing.T) {
	rt, cerr := combineTypes(OpMul, TypeString, TypeNum, nil)
	assert.Nil(t, cerr)
	assert.Equal(t, TypeString, rt)

	_, cerr = combineTypes(OpMul, TypeNum, TypeString, nil)
	assert.NotNil(t, cerr)
}

func TestCombineTypesUndefDefersToRuntime(t *testing.T) {
	rt, cerr := combineTypes(OpAdd, TypeUndef, TypeNum, nil)
	assert.Nil(t, cerr)
	assert.Equal(t, TypeUndef, rt)
}

func TestAnalyzeFuncCallArityMismatch(t *testing.T) {
	helper := &FuncDef{Name: "helper", Params: []Param{{Name: "a"}}, Body: nil}
	main := &FuncDef{
		Name: "main",
		Body: []Stmt{
			&ExprStmt{Expr: &FuncCall{Name: "helper", Args: []Expr{&NumLit{Value: 1}, &NumLit{Value: 2}}}},
		},
	}

	_, _, cerr := analyzeProgram(t, []Stmt{helper, main})
	assert.NotNil(t, cerr)
	assert.Equal(t, CategoryParamMismatch, cerr.Category)
}

func TestAnalyzeUndefinedFuncCall(t *testing.T) {
	main := &FuncDef{
		Name: "main",
		Body: []Stmt{
			&ExprStmt{Expr: &FuncCall{Name: "neverDefined", Args: nil}},
		},
	}

	_, _, cerr := analyzeProgram(t, []Stmt{main})
	assert.NotNil(t, cerr)
	assert.Equal(t, CategoryUndefined, cerr.Category)
}
