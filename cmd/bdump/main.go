package main

import (
	"fmt"
	"os"

	"gobasic/pkg/compiler"
)

const testSource = `10 LET X = 2 + 3
20 IF X > 4 THEN GOSUB 100
30 END
100 PRINT "X is "; X
110 RETURN
`

func main() {
	src := testSource
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	}

	fmt.Printf("Source:\n%s\n", src)

	// Lex
	tokens, err := compiler.Lex(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lex error:", err)
		os.Exit(1)
	}

	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	// Parse
	prog, err := compiler.Parse(tokens, src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}

	fmt.Println("AST")
	for _, s := range prog.Stmts {
		fmt.Println(" ", s)
	}
	fmt.Println()

	res, err := compiler.CompileProgram(prog, compiler.DefaultOptions())
	if err != nil {
		fmt.Fprintln(os.Stderr, "codegen error:", err)
		os.Exit(1)
	}

	fmt.Print(res.Symbols)
	fmt.Println()

	if res.Diagnostics.HasErrors() {
		fmt.Println("Diagnostics")
		for _, d := range res.Diagnostics {
			fmt.Println(" ", d)
		}
		fmt.Println()
	}

	fmt.Println("Optimized AST")
	for _, s := range res.Program.Stmts {
		fmt.Println(" ", s)
	}
	fmt.Println()

	fmt.Println("Generated JavaScript")
	fmt.Print(res.JS)
}
