package ifj25

import "fmt"

// ErrorCategory is the numeric exit code the driver reports for a failed
// compile, per the IFJ25 process contract. Success is the zero value so a
// nil *CompileError and a zero category agree.
type ErrorCategory int

const (
	CategorySuccess       ErrorCategory = 0
	CategoryLexical       ErrorCategory = 1
	CategorySyntax        ErrorCategory = 2
	CategoryUndefined     ErrorCategory = 3
	CategoryRedefinition  ErrorCategory = 4
	CategoryParamMismatch ErrorCategory = 5
	CategoryTypeError     ErrorCategory = 6
	CategoryOther         ErrorCategory = 10
	CategoryInternal      ErrorCategory = 99
)

func (c ErrorCategory) String() string {
	switch c {
	case CategorySuccess:
		return "success"
	case CategoryLexical:
		return "lexical error"
	case CategorySyntax:
		return "syntax error"
	case CategoryUndefined:
		return "undefined symbol"
	case CategoryRedefinition:
		return "redefinition"
	case CategoryParamMismatch:
		return "wrong parameter count or type"
	case CategoryTypeError:
		return "type compatibility error"
	case CategoryOther:
		return "semantic error"
	case CategoryInternal:
		return "internal error"
	default:
		return fmt.Sprintf("unknown error category %d", int(c))
	}
}

// CompileError is the single error type every pipeline stage returns. It
// carries the exit-code category alongside a free-form message; per spec §7
// the message is for debugging only and not part of the observable contract.
type CompileError struct {
	Category ErrorCategory
	Message  string
	Loc      *Location
}

func (e *CompileError) Error() string {
	if e.Loc != nil {
		return fmt.Sprintf("%s: %s: %s", e.Loc, e.Category, e.Message)
	}

	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func errorf(cat ErrorCategory, loc *Location, format string, args ...interface{}) *CompileError {
	return &CompileError{
		Category: cat,
		Message:  fmt.Sprintf(format, args...),
		Loc:      loc,
	}
}

func lexicalErrorf(loc *Location, format string, args ...interface{}) *CompileError {
	return errorf(CategoryLexical, loc, format, args...)
}

func syntaxErrorf(loc *Location, format string, args ...interface{}) *CompileError {
	return errorf(CategorySyntax, loc, format, args...)
}

func internalErrorf(loc *Location, format string, args ...interface{}) *CompileError {
	return errorf(CategoryInternal, loc, format, args...)
}
