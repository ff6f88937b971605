//go:build !js

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"gobasic/pkg/compiler"
	"gobasic/pkg/config"
	"gobasic/pkg/jsrun"
	"gobasic/pkg/report"
	"gobasic/pkg/utils"
	"gobasic/pkg/watch"
)

// errDiagnostics means the program was reported as faulty and not run.
var errDiagnostics = errors.New("program has errors")

type buildFlags struct {
	in     string
	out    string
	run    bool
	showJS bool
	force  bool
}

func main() {
	inPath := flag.String("in", "", "input BASIC source file")
	outPath := flag.String("out", "", "output JavaScript file (default: input with .js extension)")
	runProgram := flag.Bool("run", false, "run the compiled program in-process")
	configPath := flag.String("config", "", "YAML config file")
	watchMode := flag.Bool("watch", false, "recompile whenever the input file changes")
	force := flag.Bool("force", false, "run output even when diagnostics were reported")
	showJS := flag.Bool("show-js", false, "print the generated JavaScript")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in <file.bas>")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	bf := buildFlags{
		in:     *inPath,
		out:    *outPath,
		run:    *runProgram,
		showJS: *showJS,
		force:  *force || cfg.Run.Force,
	}
	if bf.out == "" {
		bf.out = utils.OutputPath(bf.in, ".js")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = build(ctx, cfg, bf)
	if !*watchMode {
		if err != nil {
			if !errors.Is(err, errDiagnostics) {
				fmt.Fprintln(os.Stderr, err)
			}
			os.Exit(1)
		}
		return
	}

	w, err := watch.New(bf.in, func(string) {
		fmt.Fprintf(os.Stderr, "[WATCH] %s changed, rebuilding\n", bf.in)
		if err := build(ctx, cfg, bf); err != nil && !errors.Is(err, errDiagnostics) {
			fmt.Fprintln(os.Stderr, err)
		}
	}, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer w.Close()
	fmt.Fprintf(os.Stderr, "[WATCH] watching %s (Ctrl+C to stop)\n", bf.in)
	w.Run(ctx)
}

// build compiles bf.in, writes the JavaScript and optionally runs it.
// Diagnostics stop the run, not the output, unless bf.force is set.
func build(ctx context.Context, cfg *config.Config, bf buildFlags) error {
	src, fullPath, err := utils.ReadSource(bf.in)
	if err != nil {
		return err
	}

	rep := report.New(os.Stderr)
	res, err := compiler.Compile(src, cfg.CompilerOptions())
	if err != nil {
		rep.Error(bf.in, err)
		return errDiagnostics
	}
	if res.Diagnostics.HasErrors() {
		rep.Diagnostics(bf.in, res.Diagnostics)
	}
	if res.JS == "" {
		return errDiagnostics
	}

	if bf.showJS {
		fmt.Print(res.JS)
	}
	if err := os.WriteFile(bf.out, []byte(res.JS), 0o644); err != nil {
		return fmt.Errorf("failed to write output file %q: %w", bf.out, err)
	}
	fmt.Fprintf(os.Stderr, "compiled %s -> %s (%d bytes)\n", fullPath, bf.out, len(res.JS))

	if res.Diagnostics.HasErrors() && !bf.force {
		return errDiagnostics
	}
	if !bf.run {
		return nil
	}
	timeout, err := cfg.RunTimeout()
	if err != nil {
		return err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	host := jsrun.Host{Out: os.Stdout, ReadLine: jsrun.LineReader(os.Stdin)}
	if err := jsrun.Run(ctx, res.JS, host); err != nil {
		return fmt.Errorf("run failed for %q: %w", bf.in, err)
	}
	return nil
}
