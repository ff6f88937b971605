package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// GenOptions controls the shape of the emitted JavaScript.
type GenOptions struct {
	PrintZone string // written for a ',' between PRINT items
	Indent    string // one level of indentation
}

func DefaultGenOptions() GenOptions {
	return GenOptions{PrintZone: "\t", Indent: "  "}
}

// Generate lowers prog to a JavaScript program.
//
// JavaScript has no goto, so every jump target becomes a zero-argument
// continuation function: each label, each FOR and WHILE test, each GOSUB
// return point and each IF that contains one of those. A jump is
// "return k_target;". A continuation that runs off its end returns the one
// after it, and END returns null. A driver loop at the bottom keeps calling
// whatever was returned, so GOTO chains never grow the host stack.
//
// The tree must already be resolved. An unresolved jump or a node the
// generator does not know is an *InternalError.
func Generate(prog *Program, opts GenOptions) (string, error) {
	if prog == nil {
		return "", internalf("no program to generate")
	}
	g := newCodeGen(opts)
	if err := g.scan(prog); err != nil {
		return "", err
	}

	body := bodyCtx()
	main, err := g.stmts(body, prog.Stmts)
	if err != nil {
		return "", err
	}
	conts := main.then(lines(g.line(body, "return null;"))).startingAt("k_start")

	g.emit(conts)
	return g.out.String(), nil
}

// CodeGen holds the read-only facts gathered before lowering starts, and
// the output buffer written once lowering is done.
type CodeGen struct {
	opts GenOptions
	out  strings.Builder

	pos      map[Stmt]int          // pre-order index; names synthetic continuations
	labels   map[string]*LabelStmt // first definition of each label
	vars     map[Variable]bool
	fors     []*ForStmt
	closedBy map[*ForStmt]bool       // FOR has a matching NEXT
	closes   map[*NextStmt][]*ForStmt // per NEXT variable; nil entry means unmatched
}

func newCodeGen(opts GenOptions) *CodeGen {
	return &CodeGen{
		opts:     opts,
		pos:      make(map[Stmt]int),
		labels:   make(map[string]*LabelStmt),
		vars:     make(map[Variable]bool),
		closedBy: make(map[*ForStmt]bool),
		closes:   make(map[*NextStmt][]*ForStmt),
	}
}

// scan numbers the statements, pairs FOR with NEXT the same way the analyzer
// does, and checks every jump points at a label in this program.
func (cg *CodeGen) scan(prog *Program) error {
	var open []*ForStmt
	var jumps []*LabelRef
	var bad error
	next := 0

	walkStmts(prog.Stmts, func(s Stmt) {
		cg.pos[s] = next
		next++
		walkExprs(s, func(e Expr) {
			if err := cg.collectVars(e); err != nil && bad == nil {
				bad = err
			}
		})

		switch n := s.(type) {
		case *LabelStmt:
			if _, dup := cg.labels[n.Name]; !dup {
				cg.labels[n.Name] = n
			}
		case *LetStmt:
			cg.vars[n.Var] = true
		case *InputStmt:
			for _, v := range n.Vars {
				cg.vars[v] = true
			}
		case *GotoStmt:
			jumps = append(jumps, n.Target)
		case *GosubStmt:
			jumps = append(jumps, n.Target)
		case *ForStmt:
			cg.vars[n.Var] = true
			cg.fors = append(cg.fors, n)
			open = append(open, n)
		case *NextStmt:
			if len(n.Vars) == 0 {
				var f *ForStmt
				if len(open) > 0 {
					f = open[len(open)-1]
					open = open[:len(open)-1]
					cg.closedBy[f] = true
				}
				cg.closes[n] = []*ForStmt{f}
				return
			}
			matched := make([]*ForStmt, len(n.Vars))
			for i, v := range n.Vars {
				cg.vars[v] = true
				if len(open) > 0 && open[len(open)-1].Var == v {
					matched[i] = open[len(open)-1]
					open = open[:len(open)-1]
					cg.closedBy[matched[i]] = true
				}
			}
			cg.closes[n] = matched
		}
	})
	if bad != nil {
		return bad
	}

	for _, ref := range jumps {
		if ref == nil {
			return internalf("jump without a target")
		}
		if !ref.Resolved() {
			return internalf("unresolved label reference %q", ref.Name)
		}
		if _, ok := cg.labels[ref.Name]; !ok {
			return internalf("label %q is not in the program", ref.Name)
		}
	}
	return nil
}

func (cg *CodeGen) collectVars(e Expr) error {
	switch n := e.(type) {
	case nil:
		return internalf("missing expression")
	case *VarRef:
		cg.vars[n.Var] = true
	case *BinaryExpr:
		if err := cg.collectVars(n.Left); err != nil {
			return err
		}
		return cg.collectVars(n.Right)
	case *UnaryExpr:
		return cg.collectVars(n.Operand)
	}
	return nil
}

//  Generation context

// genCtx is the lowering state that changes with nesting. It is passed by
// value, so a callee can never disturb its caller's view.
type genCtx struct {
	depth int
}

// bodyCtx is the context at the top of a continuation function.
func bodyCtx() genCtx { return genCtx{depth: 1} }

func (c genCtx) nested() genCtx { return genCtx{depth: c.depth + 1} }

func (cg *CodeGen) line(ctx genCtx, format string, args ...any) string {
	return strings.Repeat(cg.opts.Indent, ctx.depth) + fmt.Sprintf(format, args...)
}

// continuation is one emitted zero-argument function.
type continuation struct {
	name  string
	lines []string
}

// fragment is the lowered form of a run of statements. head continues
// whatever continuation is open when the run starts; conts are the
// continuations the run opens, and the last of them is left open for
// whatever follows.
type fragment struct {
	head  []string
	conts []continuation
}

func lines(ls ...string) fragment { return fragment{head: ls} }

// then appends next to f.
func (f fragment) then(next fragment) fragment {
	if len(f.conts) == 0 {
		return fragment{head: slices.Concat(f.head, next.head), conts: next.conts}
	}
	conts := slices.Clone(f.conts)
	last := conts[len(conts)-1]
	conts[len(conts)-1] = continuation{name: last.name, lines: slices.Concat(last.lines, next.head)}
	return fragment{head: f.head, conts: append(conts, next.conts...)}
}

// startingAt makes f the body of a new continuation called name.
func (f fragment) startingAt(name string) []continuation {
	return fragment{conts: []continuation{{name: name}}}.then(f).conts
}

// opens starts a new continuation after whatever f already holds.
func (f fragment) opens(name string) fragment {
	return f.then(fragment{conts: []continuation{{name: name}}})
}

//  Continuation names

func labelCont(name string) string { return "k_L_" + jsIdent(name) }

func (cg *CodeGen) synth(kind string, s Stmt) string {
	return fmt.Sprintf("k_%s%d", kind, cg.pos[s])
}

// jsIdent keeps letters, digits and '_' and hex-escapes anything else.
func jsIdent(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9'):
			sb.WriteRune(r)
		default:
			fmt.Fprintf(&sb, "_%x", r)
		}
	}
	return sb.String()
}

// varName mangles a variable identity. A, A$ and A% never collide.
func varName(v Variable) string {
	switch v.Suffix {
	case SuffixString:
		return "s_" + jsIdent(v.Name)
	case SuffixInteger:
		return "i_" + jsIdent(v.Name)
	}
	return "v_" + jsIdent(v.Name)
}

//  Statements

// splits reports whether lowering s opens a new continuation.
func splits(s Stmt) bool {
	switch n := s.(type) {
	case *LabelStmt, *ForStmt, *NextStmt, *GosubStmt, *WhileStmt:
		return true
	case *IfStmt:
		return splits(n.Then) || splits(n.Else)
	}
	return false
}

func (cg *CodeGen) stmts(ctx genCtx, list []Stmt) (fragment, error) {
	var out fragment
	for _, s := range list {
		f, err := cg.stmt(ctx, s)
		if err != nil {
			return fragment{}, err
		}
		out = out.then(f)
	}
	return out, nil
}

func (cg *CodeGen) stmt(ctx genCtx, s Stmt) (fragment, error) {
	switch n := s.(type) {
	case *PrintStmt:
		return cg.genPrint(ctx, n)

	case *LetStmt:
		value, err := cg.expr(n.Value)
		if err != nil {
			return fragment{}, err
		}
		return lines(cg.line(ctx, "%s = %s;", varName(n.Var), coerce(n.Var, n.Value, value))), nil

	case *IfStmt:
		return cg.genIf(ctx, n)

	case *GotoStmt:
		return lines(cg.line(ctx, "return %s;", labelCont(n.Target.Name))), nil

	case *GosubStmt:
		ret := cg.synth("gosub", n)
		return lines(
			cg.line(ctx, "$gosub.push(%s);", ret),
			cg.line(ctx, "return %s;", labelCont(n.Target.Name)),
		).opens(ret), nil

	case *ReturnStmt:
		return lines(
			cg.line(ctx, "if ($gosub.length > 0) {"),
			cg.line(ctx.nested(), "return $gosub.pop();"),
			cg.line(ctx, "}"),
		), nil

	case *ForStmt:
		return cg.genFor(ctx, n)

	case *NextStmt:
		return cg.genNext(ctx, n), nil

	case *WhileStmt:
		return cg.genWhile(ctx, n)

	case *InputStmt:
		return cg.genInput(ctx, n)

	case *EndStmt:
		return lines(cg.line(ctx, "return null;")), nil

	case *LabelStmt:
		if cg.labels[n.Name] != n {
			return lines(cg.line(ctx, "// duplicate label %s", n.Name)), nil
		}
		name := labelCont(n.Name)
		return lines(cg.line(ctx, "return %s;", name)).opens(name), nil

	case nil:
		return fragment{}, internalf("nil statement")
	}
	return fragment{}, internalf("unrecognized statement %T", s)
}

// genPrint joins the items, keeping the separator chosen for each gap.
func (cg *CodeGen) genPrint(ctx genCtx, n *PrintStmt) (fragment, error) {
	var args []string
	for _, it := range n.Items {
		v, err := cg.expr(it.Expr)
		if err != nil {
			return fragment{}, err
		}
		args = append(args, v)
		switch it.Sep {
		case ',':
			args = append(args, jsString(cg.opts.PrintZone))
		case ';', 0:
		default:
			return fragment{}, internalf("unknown PRINT separator %q", it.Sep)
		}
	}
	if len(n.Items) == 0 || n.Items[len(n.Items)-1].Sep == 0 {
		args = append(args, jsString("\n"))
	}
	return lines(cg.line(ctx, "$print(%s);", strings.Join(args, ", "))), nil
}

// genIf emits a plain if/else when neither branch holds a jump target.
// Otherwise each branch becomes its own continuation and both rejoin at
// k_if<n>_end.
func (cg *CodeGen) genIf(ctx genCtx, n *IfStmt) (fragment, error) {
	cond, err := cg.expr(n.Cond)
	if err != nil {
		return fragment{}, err
	}

	if !splits(n.Then) && !splits(n.Else) {
		out := []string{cg.line(ctx, "if (%s) {", cond)}
		then, err := cg.branch(ctx.nested(), n.Then)
		if err != nil {
			return fragment{}, err
		}
		out = append(out, then.head...)
		if n.Else != nil {
			els, err := cg.branch(ctx.nested(), n.Else)
			if err != nil {
				return fragment{}, err
			}
			out = append(out, cg.line(ctx, "} else {"))
			out = append(out, els.head...)
		}
		out = append(out, cg.line(ctx, "}"))
		return lines(out...), nil
	}

	thenName := cg.synth("if", n) + "_then"
	elseName := cg.synth("if", n) + "_else"
	endName := cg.synth("if", n) + "_end"
	miss := endName
	if n.Else != nil {
		miss = elseName
	}
	head := lines(
		cg.line(ctx, "if (%s) {", cond),
		cg.line(ctx.nested(), "return %s;", thenName),
		cg.line(ctx, "}"),
		cg.line(ctx, "return %s;", miss),
	)

	body := bodyCtx()
	rejoin := lines(cg.line(body, "return %s;", endName))
	then, err := cg.branch(body, n.Then)
	if err != nil {
		return fragment{}, err
	}
	conts := then.then(rejoin).startingAt(thenName)
	if n.Else != nil {
		els, err := cg.branch(body, n.Else)
		if err != nil {
			return fragment{}, err
		}
		conts = append(conts, els.then(rejoin).startingAt(elseName)...)
	}
	return head.then(fragment{conts: conts}).opens(endName), nil
}

// branch lowers one IF arm. A missing arm lowers to nothing.
func (cg *CodeGen) branch(ctx genCtx, s Stmt) (fragment, error) {
	if s == nil {
		return fragment{}, nil
	}
	return cg.stmt(ctx, s)
}

// genFor stores start, limit and step, then jumps to the loop test. The test
// continuation either leaves through k_next<n> or falls into the body.
func (cg *CodeGen) genFor(ctx genCtx, n *ForStmt) (fragment, error) {
	start, err := cg.expr(n.Start)
	if err != nil {
		return fragment{}, err
	}
	end, err := cg.expr(n.End)
	if err != nil {
		return fragment{}, err
	}
	step := "1"
	if n.Step != nil {
		if step, err = cg.expr(n.Step); err != nil {
			return fragment{}, err
		}
	}

	v := varName(n.Var)
	slot := forSlot(cg.pos[n])
	test := cg.synth("for", n)
	exit := "null"
	if cg.closedBy[n] {
		exit = cg.synth("next", n)
	}

	body := bodyCtx()
	return lines(
		cg.line(ctx, "%s = %s;", v, coerce(n.Var, n.Start, start)),
		cg.line(ctx, "%s_end = %s;", slot, end),
		cg.line(ctx, "%s_step = %s;", slot, step),
		cg.line(ctx, "return %s;", test),
	).then(fragment{conts: []continuation{{name: test, lines: []string{
		cg.line(body, "if (!(%[1]s_step >= 0 ? %[2]s <= %[1]s_end : %[2]s >= %[1]s_end)) {", slot, v),
		cg.line(body.nested(), "return %s;", exit),
		cg.line(body, "}"),
	}}}}), nil
}

// genNext steps each closed loop and jumps back to its test. The code after
// NEXT starts in the loop's exit continuation.
func (cg *CodeGen) genNext(ctx genCtx, n *NextStmt) fragment {
	var out fragment
	for i, f := range cg.closes[n] {
		if f == nil {
			name := "NEXT"
			if i < len(n.Vars) {
				name = "NEXT " + n.Vars[i].String()
			}
			out = out.then(lines(cg.line(ctx, "// %s without FOR", name)))
			continue
		}
		v := varName(f.Var)
		stepped := fmt.Sprintf("%s + %s_step", v, forSlot(cg.pos[f]))
		if f.Var.Suffix == SuffixInteger {
			stepped = "Math.trunc(" + stepped + ")"
		}
		out = out.then(lines(
			cg.line(ctx, "%s = %s;", v, stepped),
			cg.line(ctx, "return %s;", cg.synth("for", f)),
		)).opens(cg.synth("next", f))
	}
	return out
}

// genWhile tests at the top of k_while<n> and loops by returning it again.
func (cg *CodeGen) genWhile(ctx genCtx, n *WhileStmt) (fragment, error) {
	cond, err := cg.expr(n.Cond)
	if err != nil {
		return fragment{}, err
	}
	test := cg.synth("while", n)
	done := cg.synth("wend", n)

	body := bodyCtx()
	inner, err := cg.stmts(body, n.Body)
	if err != nil {
		return fragment{}, err
	}
	loop := lines(
		cg.line(body, "if (!(%s)) {", cond),
		cg.line(body.nested(), "return %s;", done),
		cg.line(body, "}"),
	).then(inner).then(lines(cg.line(body, "return %s;", test)))

	head := lines(cg.line(ctx, "return %s;", test))
	return head.then(fragment{conts: loop.startingAt(test)}).opens(done), nil
}

// genInput reads one line and converts a field per variable.
func (cg *CodeGen) genInput(ctx genCtx, n *InputStmt) (fragment, error) {
	if len(n.Vars) == 0 {
		return fragment{}, internalf("INPUT without variables")
	}
	prompt := "null"
	if n.Prompt != nil {
		p, err := cg.expr(n.Prompt)
		if err != nil {
			return fragment{}, err
		}
		prompt = p
	}
	out := []string{cg.line(ctx, "$in = $input(%s, %d);", prompt, len(n.Vars))}
	for i, v := range n.Vars {
		field := fmt.Sprintf("$in[%d]", i)
		switch v.Suffix {
		case SuffixNone:
			field = "$num(" + field + ")"
		case SuffixInteger:
			field = "$int(" + field + ")"
		}
		out = append(out, cg.line(ctx, "%s = %s;", varName(v), field))
	}
	return lines(out...), nil
}

func forSlot(pos int) string { return fmt.Sprintf("f%d", pos) }

// coerce converts a value to the storage type of v.
func coerce(v Variable, e Expr, value string) string {
	switch v.Suffix {
	case SuffixString:
		if isStringExpr(e) {
			return value
		}
		return "String(" + value + ")"
	case SuffixInteger:
		if lit, ok := e.(*NumberLit); ok && lit.Value == math.Trunc(lit.Value) {
			return value
		}
		return "Math.trunc(" + value + ")"
	}
	return value
}

//  Expressions

var jsOps = map[TokenType]string{
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
	EQUALS:     "===",
	NOT_EQ:     "!==",
	LESS:       "<",
	GREATER:    ">",
	LESS_EQ:    "<=",
	GREATER_EQ: ">=",
}

func (cg *CodeGen) expr(e Expr) (string, error) {
	switch n := e.(type) {
	case *NumberLit:
		return jsNumber(n.Value), nil

	case *StringLit:
		return jsString(n.Value), nil

	case *VarRef:
		return varName(n.Var), nil

	case *BinaryExpr:
		left, err := cg.expr(n.Left)
		if err != nil {
			return "", err
		}
		right, err := cg.expr(n.Right)
		if err != nil {
			return "", err
		}
		if n.Op == SLASH {
			return fmt.Sprintf("$div(%s, %s)", left, right), nil
		}
		op, ok := jsOps[n.Op]
		if !ok {
			return "", internalf("unknown binary operator %s", n.Op)
		}
		if n.Op.IsComparison() {
			return fmt.Sprintf("(%s %s %s ? 1 : 0)", left, op, right), nil
		}
		return fmt.Sprintf("(%s %s %s)", left, op, right), nil

	case *UnaryExpr:
		operand, err := cg.expr(n.Operand)
		if err != nil {
			return "", err
		}
		if n.Op != MINUS {
			return "", internalf("unknown unary operator %s", n.Op)
		}
		return "(-" + operand + ")", nil

	case nil:
		return "", internalf("missing expression")
	}
	return "", internalf("unrecognized expression %T", e)
}

func jsNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "(-Infinity)"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if math.Signbit(v) {
		return "(" + s + ")"
	}
	return s
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // a string always encodes
	return strings.TrimSuffix(buf.String(), "\n")
}

//  Output

func (cg *CodeGen) emit(conts []continuation) {
	fmt.Fprintln(&cg.out, "// Code generated by gobasic. DO NOT EDIT.")
	fmt.Fprintln(&cg.out)
	cg.out.WriteString(runtimePrelude)
	fmt.Fprintln(&cg.out)

	vars := make([]Variable, 0, len(cg.vars))
	for v := range cg.vars {
		vars = append(vars, v)
	}
	sortVariables(vars)
	for _, v := range vars {
		zero := "0"
		if v.Suffix == SuffixString {
			zero = `""`
		}
		fmt.Fprintf(&cg.out, "var %s = %s;\n", varName(v), zero)
	}
	for _, f := range cg.fors {
		slot := forSlot(cg.pos[f])
		fmt.Fprintf(&cg.out, "var %s_end = 0, %s_step = 1;\n", slot, slot)
	}

	for _, c := range conts {
		fmt.Fprintf(&cg.out, "\nfunction %s() {\n", c.name)
		for _, l := range c.lines {
			cg.out.WriteString(l)
			cg.out.WriteByte('\n')
		}
		cg.out.WriteString("}\n")
	}

	cg.out.WriteString("\nvar $k = k_start;\n")
	cg.out.WriteString("while ($k !== null) {\n")
	cg.out.WriteString(cg.opts.Indent + "$k = $k();\n")
	cg.out.WriteString("}\n")
}
