// Package compiler turns a line-numbered BASIC dialect into JavaScript.
//
// Pipeline: source → Lex → Parse → ResolveLabels → Analyze → Optimize →
// Generate → JavaScript text
//
// GOTO and GOSUB are lowered to continuation functions driven by a
// trampoline, so the output needs no goto and runs on any JavaScript engine.
package compiler
