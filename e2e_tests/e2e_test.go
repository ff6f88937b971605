package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gobasic/pkg/compiler"
	"gobasic/pkg/jsrun"
)

// TestSamplePrograms compiles every program in _bas and compares what it
// prints with the .out file next to it. A .in file, when present, is fed to
// INPUT.
func TestSamplePrograms(t *testing.T) {
	sources, err := filepath.Glob("../_bas/*.bas")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) == 0 {
		t.Fatal("no sample programs found")
	}

	for _, srcPath := range sources {
		name := strings.TrimSuffix(filepath.Base(srcPath), ".bas")
		t.Run(name, func(t *testing.T) {
			src, err := os.ReadFile(srcPath)
			if err != nil {
				t.Fatalf("Failed to read source: %v", err)
			}
			want, err := os.ReadFile(strings.TrimSuffix(srcPath, ".bas") + ".out")
			if err != nil {
				t.Fatalf("Failed to read expected output: %v", err)
			}
			input, err := os.ReadFile(strings.TrimSuffix(srcPath, ".bas") + ".in")
			if err != nil && !os.IsNotExist(err) {
				t.Fatalf("Failed to read input: %v", err)
			}

			res, err := compiler.Compile(string(src), compiler.DefaultOptions())
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			if res.Diagnostics.HasErrors() {
				t.Fatalf("Diagnostics: %v", res.Diagnostics)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			got, err := jsrun.RunString(ctx, res.JS, string(input))
			if err != nil {
				t.Fatalf("Run failed: %v\nJS:\n%s", err, res.JS)
			}
			if got != string(want) {
				t.Errorf("output mismatch\ngot:  %q\nwant: %q", got, want)
			}
		})
	}
}

// TestSamplePrograms_Unoptimized checks the passes do not change behavior.
func TestSamplePrograms_Unoptimized(t *testing.T) {
	sources, _ := filepath.Glob("../_bas/*.bas")
	for _, srcPath := range sources {
		src, _ := os.ReadFile(srcPath)
		input, _ := os.ReadFile(strings.TrimSuffix(srcPath, ".bas") + ".in")

		outputs := make([]string, 2)
		for i, pl := range []compiler.Pipeline{compiler.DefaultPipeline(), {}} {
			opts := compiler.DefaultOptions()
			opts.Pipeline = pl
			res, err := compiler.Compile(string(src), opts)
			if err != nil {
				t.Fatalf("%s: Compile failed: %v", srcPath, err)
			}
			outputs[i], err = jsrun.RunString(context.Background(), res.JS, string(input))
			if err != nil {
				t.Fatalf("%s: Run failed: %v", srcPath, err)
			}
		}
		if outputs[0] != outputs[1] {
			t.Errorf("%s: optimized %q, unoptimized %q", srcPath, outputs[0], outputs[1])
		}
	}
}
