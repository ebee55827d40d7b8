package ifj25

import (
	"io"

	"golang.org/x/sync/errgroup"
)

// Compiler drives the four pipeline stages described in spec §2: lexer,
// parser, semantic analyzer, emitter. Each stage fully materializes its
// output before the next runs, except the lexer, which is driven on its own
// goroutine so the parser can pull tokens one at a time as spec §4.1's pull
// model requires.
type Compiler struct{}

// NewCompiler creates a Compiler. It carries no state of its own; every
// Compile call is independent.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile reads an IFJ25 program from src and writes the generated
// IFJcode25 program to out. A non-nil result carries the error category the
// driver should translate into a process exit code; per spec §7 there is no
// partial output on failure path beyond what out has already buffered.
func (c *Compiler) Compile(src io.Reader, out io.Writer) *CompileError {
	lexer := NewLexer(src)

	g := new(errgroup.Group)
	g.Go(func() error {
		lexer.Do()
		return nil
	})

	parser := NewParser(lexer)
	prog, cerr := parser.Parse()
	if cerr != nil {
		// Parse can return before the lexer goroutine has drained the
		// rest of the source (it stops pulling at the first syntax
		// error), so waiting here could block on a full, unread
		// channel. The process is about to exit on this error path
		// regardless, reclaiming the goroutine.
		return cerr
	}

	if err := g.Wait(); err != nil {
		return internalErrorf(nil, "lexer: %v", err)
	}

	analyzer := NewAnalyzer()
	annotated, cerr := analyzer.Analyze(prog)
	if cerr != nil {
		return cerr
	}

	emitter := NewEmitter(out, analyzer.GlobalScope())
	return emitter.Emit(annotated)
}
