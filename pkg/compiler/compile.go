package compiler

import "fmt"

// Options selects the optimization passes and the output shape.
type Options struct {
	Pipeline Pipeline
	Gen      GenOptions
}

func DefaultOptions() Options {
	return Options{Pipeline: DefaultPipeline(), Gen: DefaultGenOptions()}
}

// Result is everything one compilation produced. Diagnostics being non-empty
// does not stop code generation; callers decide whether to run JS anyway.
type Result struct {
	Program     *Program // after optimization
	Symbols     *SymbolTable
	Labels      LabelTable
	Diagnostics Diagnostics
	JS          string
}

// Compile parses src and compiles the resulting program.
func Compile(src string, opts Options) (*Result, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, fmt.Errorf("lex error: %w", err)
	}
	prog, err := Parse(tokens, src)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return CompileProgram(prog, opts)
}

// CompileProgram resolves, analyzes, optimizes and generates prog. The
// returned error is only ever an *InternalError from the generator; user
// mistakes are in Result.Diagnostics.
func CompileProgram(prog *Program, opts Options) (*Result, error) {
	if prog == nil {
		return nil, internalf("no program to compile")
	}
	labels, diags := ResolveLabels(prog)
	syms, more := Analyze(prog)
	diags = append(diags, more...)

	optimized := opts.Pipeline.Run(prog)

	res := &Result{
		Program:     optimized,
		Symbols:     syms,
		Labels:      labels,
		Diagnostics: diags,
	}
	if countUnresolved(optimized) > 0 {
		// Already reported as LabelError; the generator would only refuse.
		return res, nil
	}
	js, err := Generate(optimized, opts.Gen)
	if err != nil {
		return res, fmt.Errorf("codegen error: %w", err)
	}
	res.JS = js
	return res, nil
}

func countUnresolved(prog *Program) int {
	n := 0
	walkStmts(prog.Stmts, func(s Stmt) {
		switch j := s.(type) {
		case *GotoStmt:
			if !j.Target.Resolved() {
				n++
			}
		case *GosubStmt:
			if !j.Target.Resolved() {
				n++
			}
		}
	})
	return n
}
