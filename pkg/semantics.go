package ifj25

// Analyzer runs the two-pass semantic analysis described in spec §4.5: pass
// 1 registers every top-level definition; pass 2 walks each definition's
// body, resolving scopes, inferring types and rewriting AST nodes whose
// variant changes (Assign→SetterCall, Ident→GetterCall).
type Analyzer struct {
	global    *Scope
	mainFound bool
}

// NewAnalyzer creates an analyzer with the built-in Ifj.* routines already
// preloaded into the global scope.
func NewAnalyzer() *Analyzer {
	global := NewGlobalScope()
	defineBuiltins(global)

	return &Analyzer{global: global}
}

// GlobalScope returns the analyzer's global scope, kept alive for the
// emitter to inspect after Analyze returns.
func (a *Analyzer) GlobalScope() *Scope {
	return a.global
}

// Analyze runs both passes over prog and returns the annotated program.
func (a *Analyzer) Analyze(prog *Program) (*Program, *CompileError) {
	defs, cerr := a.pass1(prog.Defs)
	if cerr != nil {
		return nil, cerr
	}

	for i, d := range defs {
		nd, cerr := a.walkDef(d)
		if cerr != nil {
			return nil, cerr
		}

		defs[i] = nd
	}

	return &Program{Defs: defs}, nil
}

// analyzeCtx threads the current lexical scope and a pointer to the
// enclosing function's locals accumulator through pass 2's recursive walk.
type analyzeCtx struct {
	scope  *Scope
	locals *[]*VarDecl
}

func (c analyzeCtx) withScope(s *Scope) analyzeCtx {
	return analyzeCtx{scope: s, locals: c.locals}
}

// isGlobalIdent reports whether name is a global variable identifier: one
// beginning with two underscores, per spec §3/§4.1.
func isGlobalIdent(name string) bool {
	return len(name) >= 2 && name[0] == '_' && name[1] == '_'
}

// ---- Pass 1: definitions ----------------------------------------------

func (a *Analyzer) pass1(defs []Stmt) ([]Stmt, *CompileError) {
	for i, d := range defs {
		switch def := d.(type) {
		case *FuncDef:
			nd, cerr := a.registerFunc(def)
			if cerr != nil {
				return nil, cerr
			}

			defs[i] = nd
		case *GetterDef:
			nd, cerr := a.registerGetter(def)
			if cerr != nil {
				return nil, cerr
			}

			defs[i] = nd
		case *SetterDef:
			nd, cerr := a.registerSetter(def)
			if cerr != nil {
				return nil, cerr
			}

			defs[i] = nd
		}
	}

	if !a.mainFound {
		return nil, errorf(CategoryOther, nil, "function main with no parameters is not defined")
	}

	return defs, nil
}

func (a *Analyzer) registerFunc(def *FuncDef) (Stmt, *CompileError) {
	seen := make(map[string]bool, len(def.Params))
	for _, p := range def.Params {
		if seen[p.Name] {
			return nil, errorf(CategoryRedefinition, def.Loc, "duplicate parameter %q in function %q", p.Name, def.Name)
		}

		seen[p.Name] = true
	}

	scope := NewChildScope(a.global)
	params := make([]Param, len(def.Params))
	for i, p := range def.Params {
		params[i] = Param{Name: p.Name, Type: TypeUndef}
		scope.Insert(p.Name, &VarSymbol{Type: TypeUndef, Defined: true, Initialized: true, Scope: scope})
	}

	if def.Name == "main" && len(def.Params) == 0 {
		if !a.global.Insert(FuncKey("main", 0), &FuncSymbol{Defined: true, ReturnType: TypeNull}) {
			return nil, errorf(CategoryRedefinition, def.Loc, "redefinition of main")
		}

		a.mainFound = true
		return &MainDef{Body: def.Body, Scope: scope}, nil
	}

	key := FuncKey(def.Name, len(def.Params))
	if !a.global.Insert(key, &FuncSymbol{Params: params, Defined: true, ReturnType: TypeUndef}) {
		return nil, errorf(CategoryRedefinition, def.Loc, "redefinition of function %q with %d parameters", def.Name, len(def.Params))
	}

	return &FuncDef{Name: key, Params: params, Body: def.Body, Scope: scope, ReturnType: TypeUndef}, nil
}

func (a *Analyzer) registerGetter(def *GetterDef) (Stmt, *CompileError) {
	scope := NewChildScope(a.global)
	rt := a.inferGetterReturnType(def.Body)

	if !a.global.Insert(GetterKey(def.Name), &GetterSymbol{ReturnType: rt, Defined: true}) {
		return nil, errorf(CategoryRedefinition, def.Loc, "redefinition of getter %q", def.Name)
	}

	return &GetterDef{Name: def.Name, Body: def.Body, Scope: scope, ReturnType: rt}, nil
}

func (a *Analyzer) registerSetter(def *SetterDef) (Stmt, *CompileError) {
	scope := NewChildScope(a.global)
	scope.Insert(def.Param.Name, &VarSymbol{Type: TypeUndef, Defined: true, Initialized: true, Scope: scope})

	if !a.global.Insert(SetterKey(def.Name), &SetterSymbol{ParamType: TypeUndef, Defined: true}) {
		return nil, errorf(CategoryRedefinition, def.Loc, "redefinition of setter %q", def.Name)
	}

	return &SetterDef{Name: def.Name, Param: def.Param, Body: def.Body, Scope: scope, ParamType: TypeUndef}, nil
}

// inferGetterReturnType scans a getter body for the first return statement
// whose value has a statically-inferable type, per spec §4.5 step 6. It
// recurses into nested control-flow bodies but never into other
// definitions.
func (a *Analyzer) inferGetterReturnType(stmts []Stmt) DataType {
	for _, s := range stmts {
		switch v := s.(type) {
		case *Return:
			if v.Value == nil {
				return TypeNull
			}

			if t := inferLiteralType(v.Value); t != TypeUndef {
				return t
			}
		case *If:
			if t := a.inferGetterReturnType(v.Then); t != TypeUndef {
				return t
			}

			if t := a.inferGetterReturnType(v.Else); t != TypeUndef {
				return t
			}
		case *While:
			if t := a.inferGetterReturnType(v.Body); t != TypeUndef {
				return t
			}
		case *Block:
			if t := a.inferGetterReturnType(v.Stmts); t != TypeUndef {
				return t
			}
		}
	}

	return TypeUndef
}

// inferLiteralType computes the type of an expression using only its
// literal shape, with no scope to consult; it is used solely for getter
// return-type inference, before pass 2 has resolved anything.
func inferLiteralType(e Expr) DataType {
	switch v := e.(type) {
	case *NumLit:
		return TypeNum
	case *StrLit:
		return TypeString
	case *NullLit:
		return TypeNull
	case *Binary:
		if v.Op == OpIs {
			if tl, ok := v.Right.(*TypeLit); ok {
				return tl.Tag
			}

			return TypeUndef
		}

		lt := inferLiteralType(v.Left)
		rt := inferLiteralType(v.Right)
		if lt == TypeUndef || rt == TypeUndef {
			return TypeUndef
		}

		t, cerr := combineTypes(v.Op, lt, rt, nil)
		if cerr != nil {
			return TypeUndef
		}

		return t
	default:
		return TypeUndef
	}
}

// ---- Pass 2: walk -------------------------------------------------------

func (a *Analyzer) walkDef(d Stmt) (Stmt, *CompileError) {
	switch def := d.(type) {
	case *MainDef:
		var locals []*VarDecl
		stmts, cerr := a.walkStmts(def.Body, analyzeCtx{scope: def.Scope, locals: &locals})
		if cerr != nil {
			return nil, cerr
		}

		return &MainDef{Body: stmts, Locals: locals, Scope: def.Scope}, nil
	case *FuncDef:
		var locals []*VarDecl
		stmts, cerr := a.walkStmts(def.Body, analyzeCtx{scope: def.Scope, locals: &locals})
		if cerr != nil {
			return nil, cerr
		}

		return &FuncDef{Name: def.Name, Params: def.Params, Body: stmts, Locals: locals, Scope: def.Scope, ReturnType: def.ReturnType}, nil
	case *GetterDef:
		var locals []*VarDecl
		stmts, cerr := a.walkStmts(def.Body, analyzeCtx{scope: def.Scope, locals: &locals})
		if cerr != nil {
			return nil, cerr
		}

		return &GetterDef{Name: def.Name, Body: stmts, Locals: locals, Scope: def.Scope, ReturnType: def.ReturnType}, nil
	case *SetterDef:
		var locals []*VarDecl
		stmts, cerr := a.walkStmts(def.Body, analyzeCtx{scope: def.Scope, locals: &locals})
		if cerr != nil {
			return nil, cerr
		}

		return &SetterDef{Name: def.Name, Param: def.Param, Body: stmts, Locals: locals, Scope: def.Scope, ParamType: def.ParamType}, nil
	default:
		return nil, internalErrorf(nil, "unhandled top-level definition %T", d)
	}
}

func (a *Analyzer) walkStmts(stmts []Stmt, ctx analyzeCtx) ([]Stmt, *CompileError) {
	for i, s := range stmts {
		ns, cerr := a.walkStmt(s, ctx)
		if cerr != nil {
			return nil, cerr
		}

		stmts[i] = ns
	}

	return stmts, nil
}

func (a *Analyzer) walkStmt(s Stmt, ctx analyzeCtx) (Stmt, *CompileError) {
	switch v := s.(type) {
	case *VarDecl:
		if ctx.scope.LookupLocal(v.Name) != nil {
			return nil, errorf(CategoryRedefinition, v.Loc, "redefinition of variable %q", v.Name)
		}

		ctx.scope.Insert(v.Name, &VarSymbol{Type: TypeUndef, Defined: true, Scope: ctx.scope})
		nv := &VarDecl{Name: v.Name, Scope: ctx.scope, Depth: ctx.scope.Depth, Loc: v.Loc}
		*ctx.locals = append(*ctx.locals, nv)

		return nv, nil

	case *Assign:
		if sym := ctx.scope.Lookup(SetterKey(v.Target)); sym != nil {
			setter := sym.(*SetterSymbol)

			arg, cerr := a.walkExpr(v.Rhs, ctx)
			if cerr != nil {
				return nil, cerr
			}

			argType := exprType(arg)
			if setter.ParamType == TypeUndef || setter.ParamType == TypeNull {
				setter.ParamType = argType
			} else if argType != TypeUndef && setter.ParamType != argType {
				return nil, errorf(CategoryTypeError, v.Loc, "setter %q expects %s, got %s", v.Target, setter.ParamType, argType)
			}

			return &SetterCall{Name: v.Target, Arg: arg, Loc: v.Loc}, nil
		}

		varSym, cerr := a.resolveOrDeclareVar(ctx.scope, v.Target, v.Loc)
		if cerr != nil {
			return nil, cerr
		}

		rhs, cerr := a.walkExpr(v.Rhs, ctx)
		if cerr != nil {
			return nil, cerr
		}

		varSym.Type = exprType(rhs)
		varSym.Initialized = true

		return &Assign{Target: v.Target, Rhs: rhs, Scope: ctx.scope, Loc: v.Loc}, nil

	case *ExprStmt:
		ne, cerr := a.walkExpr(v.Expr, ctx)
		if cerr != nil {
			return nil, cerr
		}

		return &ExprStmt{Expr: ne, Loc: v.Loc}, nil

	case *If:
		cond, cerr := a.walkExpr(v.Cond, ctx)
		if cerr != nil {
			return nil, cerr
		}

		if t := exprType(cond); t != TypeNum && t != TypeUndef {
			return nil, errorf(CategoryTypeError, v.Loc, "if condition must be Num, got %s", t)
		}

		thenStmts, cerr := a.walkStmts(v.Then, ctx.withScope(NewChildScope(ctx.scope)))
		if cerr != nil {
			return nil, cerr
		}

		elseStmts, cerr := a.walkStmts(v.Else, ctx.withScope(NewChildScope(ctx.scope)))
		if cerr != nil {
			return nil, cerr
		}

		return &If{Cond: cond, Then: thenStmts, Else: elseStmts, Loc: v.Loc}, nil

	case *While:
		cond, cerr := a.walkExpr(v.Cond, ctx)
		if cerr != nil {
			return nil, cerr
		}

		if t := exprType(cond); t != TypeNum && t != TypeUndef {
			return nil, errorf(CategoryTypeError, v.Loc, "while condition must be Num, got %s", t)
		}

		body, cerr := a.walkStmts(v.Body, ctx.withScope(NewChildScope(ctx.scope)))
		if cerr != nil {
			return nil, cerr
		}

		return &While{Cond: cond, Body: body, Loc: v.Loc}, nil

	case *Return:
		if v.Value == nil {
			return &Return{ResolvedType: TypeNull, Loc: v.Loc}, nil
		}

		val, cerr := a.walkExpr(v.Value, ctx)
		if cerr != nil {
			return nil, cerr
		}

		return &Return{Value: val, ResolvedType: exprType(val), Loc: v.Loc}, nil

	case *Block:
		child := NewChildScope(ctx.scope)
		stmts, cerr := a.walkStmts(v.Stmts, ctx.withScope(child))
		if cerr != nil {
			return nil, cerr
		}

		return &Block{Stmts: stmts, Scope: child}, nil

	case *BadStmt:
		return v, nil

	default:
		return nil, internalErrorf(nil, "unhandled statement kind %T", s)
	}
}

// resolveOrDeclareVar resolves name as a plain variable, auto-creating it in
// the global scope if it is global-prefixed and not yet known.
func (a *Analyzer) resolveOrDeclareVar(scope *Scope, name string, loc *Location) (*VarSymbol, *CompileError) {
	sym := scope.Lookup(name)
	if sym == nil {
		if !isGlobalIdent(name) {
			return nil, errorf(CategoryUndefined, loc, "undefined variable %q", name)
		}

		vs := &VarSymbol{Type: TypeUndef, Defined: true, Scope: a.global}
		a.global.Insert(name, vs)
		return vs, nil
	}

	vs, ok := sym.(*VarSymbol)
	if !ok {
		return nil, errorf(CategoryUndefined, loc, "%q is not a variable", name)
	}

	return vs, nil
}

func (a *Analyzer) walkExpr(e Expr, ctx analyzeCtx) (Expr, *CompileError) {
	switch v := e.(type) {
	case *NumLit, *StrLit, *NullLit, *TypeLit, *BadExpr:
		return v, nil

	case *Ident:
		sym := ctx.scope.Lookup(v.Name)
		if sym == nil {
			sym = ctx.scope.Lookup(GetterKey(v.Name))
		}

		if sym == nil {
			if !isGlobalIdent(v.Name) {
				return nil, errorf(CategoryUndefined, v.Loc, "undefined variable %q", v.Name)
			}

			vs := &VarSymbol{Type: TypeUndef, Defined: true, Scope: a.global}
			a.global.Insert(v.Name, vs)
			sym = vs
		}

		switch sv := sym.(type) {
		case *VarSymbol:
			if !sv.Initialized {
				return nil, errorf(CategoryOther, v.Loc, "variable %q used before being initialized", v.Name)
			}

			return &Ident{Name: v.Name, Scope: sv.Scope, Loc: v.Loc}, nil
		case *GetterSymbol:
			return &GetterCall{Name: v.Name, ResolvedType: sv.ReturnType, Loc: v.Loc}, nil
		default:
			return nil, errorf(CategoryUndefined, v.Loc, "%q is not a value", v.Name)
		}

	case *GetterCall:
		sym := ctx.scope.Lookup(GetterKey(v.Name))
		if sym == nil {
			return nil, errorf(CategoryUndefined, v.Loc, "undefined getter %q", v.Name)
		}

		return &GetterCall{Name: v.Name, ResolvedType: sym.(*GetterSymbol).ReturnType, Loc: v.Loc}, nil

	case *FuncCall:
		args := make([]Expr, len(v.Args))
		for i, arg := range v.Args {
			na, cerr := a.walkExpr(arg, ctx)
			if cerr != nil {
				return nil, cerr
			}

			args[i] = na
		}

		key := FuncKey(v.Name, len(args))
		sym := ctx.scope.Lookup(key)
		if sym == nil {
			if ctx.scope.HasAnyArity(v.Name) {
				return nil, errorf(CategoryParamMismatch, v.Loc, "%q called with %d arguments: no matching overload", v.Name, len(args))
			}

			return nil, errorf(CategoryUndefined, v.Loc, "undefined function %q", v.Name)
		}

		fn := sym.(*FuncSymbol)
		for i, p := range fn.Params {
			at := exprType(args[i])
			if p.Type != TypeUndef && at != TypeUndef && p.Type != at {
				return nil, errorf(CategoryParamMismatch, v.Loc, "argument %d to %q: expected %s, got %s", i+1, v.Name, p.Type, at)
			}
		}

		return &FuncCall{Name: key, Args: args, ResolvedType: fn.ReturnType, Loc: v.Loc}, nil

	case *Binary:
		left, cerr := a.walkExpr(v.Left, ctx)
		if cerr != nil {
			return nil, cerr
		}

		right, cerr := a.walkExpr(v.Right, ctx)
		if cerr != nil {
			return nil, cerr
		}

		if v.Op == OpIs {
			tl, ok := right.(*TypeLit)
			if !ok {
				return nil, errorf(CategoryTypeError, v.Loc, "right operand of is must be a type literal")
			}

			return &Binary{Op: OpIs, Left: left, Right: right, ResolvedType: tl.Tag, Loc: v.Loc}, nil
		}

		rt, cerr := combineTypes(v.Op, exprType(left), exprType(right), v.Loc)
		if cerr != nil {
			return nil, cerr
		}

		return &Binary{Op: v.Op, Left: left, Right: right, ResolvedType: rt, Loc: v.Loc}, nil

	default:
		return nil, internalErrorf(nil, "unhandled expression kind %T", e)
	}
}

// exprType returns the already-resolved type of an expression node that has
// passed through walkExpr.
func exprType(e Expr) DataType {
	switch v := e.(type) {
	case *NumLit:
		return TypeNum
	case *StrLit:
		return TypeString
	case *NullLit:
		return TypeNull
	case *TypeLit:
		return v.Tag
	case *Ident:
		if v.Scope == nil {
			return TypeUndef
		}

		if sym, ok := v.Scope.Lookup(v.Name).(*VarSymbol); ok {
			return sym.Type
		}

		return TypeUndef
	case *GetterCall:
		return v.ResolvedType
	case *FuncCall:
		return v.ResolvedType
	case *Binary:
		return v.ResolvedType
	default:
		return TypeUndef
	}
}

// combineTypes implements the binary operator type-inference table in spec
// §4.5. An Undef operand defers checking to run time.
func combineTypes(op BinOp, lt, rt DataType, loc *Location) (DataType, *CompileError) {
	if lt == TypeUndef || rt == TypeUndef {
		return TypeUndef, nil
	}

	switch op {
	case OpEq, OpNeq:
		return TypeNum, nil
	case OpLt, OpGt, OpLe, OpGe:
		if lt == TypeNum && rt == TypeNum {
			return TypeNum, nil
		}

		return typeError, errorf(CategoryTypeError, loc, "relational operator requires Num operands, got %s and %s", lt, rt)
	case OpAdd:
		if lt == TypeNum && rt == TypeNum {
			return TypeNum, nil
		}

		if lt == TypeString && rt == TypeString {
			return TypeString, nil
		}

		return typeError, errorf(CategoryTypeError, loc, "+ requires Num+Num or String+String, got %s and %s", lt, rt)
	case OpSub, OpDiv:
		if lt == TypeNum && rt == TypeNum {
			return TypeNum, nil
		}

		return typeError, errorf(CategoryTypeError, loc, "%s requires Num operands, got %s and %s", op, lt, rt)
	case OpMul:
		if lt == TypeNum && rt == TypeNum {
			return TypeNum, nil
		}

		if lt == TypeString && rt == TypeNum {
			return TypeString, nil
		}

		return typeError, errorf(CategoryTypeError, loc, "* requires Num*Num or String*Num, got %s and %s", lt, rt)
	default:
		return typeError, internalErrorf(loc, "unknown binary operator %v", op)
	}
}
