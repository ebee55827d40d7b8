package ifj25

// builtinDef describes one Ifj.* built-in registered into the global scope
// before user code is processed, per spec §4.5.
type builtinDef struct {
	name       string
	arity      int
	returnType DataType
	params     []DataType
}

// builtins is the preload table from spec §4.5. Parameter types of
// TypeUndef act as a wildcard accepting any argument type (used by
// Ifj.write, which prints any of Num/String/Null).
var builtins = []builtinDef{
	{"Ifj.read_str", 0, TypeString, nil},
	{"Ifj.read_num", 0, TypeNum, nil},
	{"Ifj.write", 1, TypeNull, []DataType{TypeUndef}},
	{"Ifj.floor", 1, TypeNum, []DataType{TypeNum}},
	{"Ifj.str", 1, TypeString, []DataType{TypeUndef}},
	{"Ifj.length", 1, TypeNum, []DataType{TypeString}},
	{"Ifj.substring", 3, TypeString, []DataType{TypeString, TypeNum, TypeNum}},
	{"Ifj.strcmp", 2, TypeNum, []DataType{TypeString, TypeString}},
	{"Ifj.ord", 2, TypeNum, []DataType{TypeString, TypeNum}},
	{"Ifj.chr", 1, TypeString, []DataType{TypeNum}},
}

// defineBuiltins registers every entry of builtins into scope, keyed the
// same way a user-defined function of that name and arity would be.
func defineBuiltins(scope *Scope) {
	for _, b := range builtins {
		params := make([]Param, len(b.params))
		for i, t := range b.params {
			params[i] = Param{Name: "_", Type: t}
		}

		scope.Insert(FuncKey(b.name, b.arity), &FuncSymbol{
			Params:     params,
			Defined:    true,
			ReturnType: b.returnType,
		})
	}
}

// isBuiltin reports whether key (an arity-encoded FuncCall.Name, e.g.
// "Ifj.write$1") names a preloaded Ifj.* routine, which the emitter lowers
// inline instead of emitting a CALL.
func isBuiltin(key string) bool {
	for _, b := range builtins {
		if FuncKey(b.name, b.arity) == key {
			return true
		}
	}

	return false
}

// builtinBaseName strips the arity suffix off an arity-encoded built-in
// call name, e.g. "Ifj.write$1" -> "Ifj.write".
func builtinBaseName(key string) string {
	for _, b := range builtins {
		if FuncKey(b.name, b.arity) == key {
			return b.name
		}
	}

	return key
}
