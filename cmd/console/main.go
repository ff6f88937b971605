package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"gobasic/pkg/compiler"
	"gobasic/pkg/config"
	"gobasic/pkg/jsrun"
	"gobasic/pkg/repl"
	"gobasic/pkg/report"
	"gobasic/pkg/utils"
)

// Usage: console [file.bas] [--show-js]
// Without a file it starts an interactive session. GOBASIC_CONFIG names an
// optional YAML config.
func main() {
	cfg, err := config.Load(os.Getenv("GOBASIC_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	timeout, _ := cfg.RunTimeout()

	var filename string
	showJS := false
	for _, arg := range os.Args[1:] {
		if arg == "--show-js" {
			showJS = true
			continue
		}
		if !strings.HasPrefix(arg, "-") {
			filename = arg
		}
	}

	if filename == "" {
		repl.Start(os.Stdout, repl.Options{
			Compiler: cfg.CompilerOptions(),
			Timeout:  timeout,
			Force:    cfg.Run.Force,
		})
		return
	}

	src, fullPath, err := utils.ReadSource(filename)
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}
	fmt.Fprintln(os.Stderr, "Compiling source file:", fullPath)

	rep := report.New(os.Stderr)
	res, err := compiler.Compile(src, cfg.CompilerOptions())
	if err != nil {
		rep.Error(filename, err)
		os.Exit(1)
	}
	if res.Diagnostics.HasErrors() {
		rep.Diagnostics(filename, res.Diagnostics)
		if !cfg.Run.Force || res.JS == "" {
			os.Exit(1)
		}
	}

	if showJS {
		fmt.Print("Generated JavaScript:\n", res.JS, "\n")
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := jsrun.Run(ctx, res.JS, jsrun.Host{Out: os.Stdout, ReadLine: jsrun.LineReader(os.Stdin)}); err != nil {
		rep.Error(filename, err)
		os.Exit(1)
	}
}
