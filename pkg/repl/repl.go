// Package repl is an interactive BASIC session: numbered lines are stored
// as the program, anything else runs immediately.
package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"gobasic/pkg/compiler"
	"gobasic/pkg/jsrun"
	"gobasic/pkg/report"
)

const PROMPT = "] "

const banner = "gobasic interactive. Numbered lines build a program; type HELP for commands."

// Words offered by tab completion.
var completionWords = []string{
	"PRINT", "LET", "IF", "THEN", "ELSE", "GOTO", "GOSUB", "RETURN",
	"FOR", "TO", "STEP", "NEXT", "WHILE", "WEND", "INPUT", "END", "REM",
	"RUN", "LIST", "NEW", "CHECK", "JS", "HELP", "QUIT",
}

// Options configures a Session.
type Options struct {
	Compiler compiler.Options
	Timeout  time.Duration // per RUN; zero means no limit
	Force    bool          // run programs that have diagnostics
}

// Session is the state of one interactive session. It is not safe for
// concurrent use.
type Session struct {
	opts     Options
	lines    map[int]string
	out      *tailWriter
	report   *report.Printer
	readLine func() (string, error)
}

// NewSession writes to out and reads INPUT lines with readLine.
func NewSession(out io.Writer, readLine func() (string, error), opts Options) *Session {
	tw := &tailWriter{w: out}
	return &Session{
		opts:     opts,
		lines:    make(map[int]string),
		out:      tw,
		report:   report.New(tw),
		readLine: readLine,
	}
}

// Exec handles one line typed by the user and reports whether the session
// should end.
func (s *Session) Exec(ctx context.Context, input string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}

	if n, rest, ok := splitLineNumber(trimmed); ok {
		s.Store(n, rest)
		return false
	}

	switch strings.ToUpper(trimmed) {
	case "QUIT", "EXIT", "BYE":
		return true
	case "HELP":
		s.help()
	case "NEW":
		s.lines = make(map[int]string)
	case "LIST":
		for _, l := range s.Listing() {
			fmt.Fprintln(s.out, l)
		}
	case "CHECK":
		if res := s.compile(s.Source()); res != nil {
			s.report.Diagnostics("program", res.Diagnostics)
		}
	case "JS":
		if res := s.compile(s.Source()); res != nil && res.JS != "" {
			fmt.Fprint(s.out, res.JS)
		}
	case "RUN":
		s.run(ctx, s.Source())
	default:
		s.run(ctx, trimmed)
	}
	return false
}

// Store sets program line n. An empty body deletes it.
func (s *Session) Store(n int, body string) {
	if strings.TrimSpace(body) == "" {
		delete(s.lines, n)
		return
	}
	s.lines[n] = body
}

// Listing returns the stored lines in line-number order.
func (s *Session) Listing() []string {
	nums := make([]int, 0, len(s.lines))
	for n := range s.lines {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	out := make([]string, len(nums))
	for i, n := range nums {
		out[i] = fmt.Sprintf("%d %s", n, s.lines[n])
	}
	return out
}

// Source is the stored program as one compilable text.
func (s *Session) Source() string {
	return strings.Join(s.Listing(), "\n") + "\n"
}

// compile returns nil when the source did not even parse.
func (s *Session) compile(src string) *compiler.Result {
	res, err := compiler.Compile(src, s.opts.Compiler)
	if err != nil {
		s.report.Error("program", err)
		return nil
	}
	return res
}

func (s *Session) run(ctx context.Context, src string) {
	res := s.compile(src)
	if res == nil {
		return
	}
	if res.Diagnostics.HasErrors() {
		s.report.Diagnostics("program", res.Diagnostics)
		if !s.opts.Force || res.JS == "" {
			return
		}
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	err := jsrun.Run(ctx, res.JS, jsrun.Host{Out: s.out, ReadLine: s.readLine})
	if s.out.tail != "" {
		fmt.Fprintln(s.out)
	}
	if err != nil {
		s.report.Error("program", err)
	}
}

func (s *Session) help() {
	fmt.Fprintln(s.out, "Commands:")
	fmt.Fprintln(s.out, "  10 PRINT X   store program line 10 (a bare number deletes it)")
	fmt.Fprintln(s.out, "  RUN          compile and run the stored program")
	fmt.Fprintln(s.out, "  LIST         show the stored program")
	fmt.Fprintln(s.out, "  CHECK        report diagnostics without running")
	fmt.Fprintln(s.out, "  JS           show the generated JavaScript")
	fmt.Fprintln(s.out, "  NEW          clear the stored program")
	fmt.Fprintln(s.out, "  QUIT         leave")
	fmt.Fprintln(s.out, "Anything else runs immediately as a program of its own.")
}

// splitLineNumber recognizes "20 PRINT X" and the bare "20".
func splitLineNumber(s string) (int, string, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, "", false
	}
	if end < len(s) && s[end] != ' ' && s[end] != '\t' {
		return 0, "", false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, "", false
	}
	return n, strings.TrimSpace(s[end:]), true
}

// tailWriter remembers the unterminated end of what was written, so an
// INPUT prompt printed by the program can be handed to the line editor.
type tailWriter struct {
	w    io.Writer
	tail string
}

func (t *tailWriter) Write(p []byte) (int, error) {
	s := string(p)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		t.tail = s[i+1:]
	} else {
		t.tail += s
	}
	return t.w.Write(p)
}

func filterCompletions(line string) []string {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasSuffix(line, " ") {
		return nil
	}
	word := strings.ToUpper(fields[len(fields)-1])
	prefix := line[:len(line)-len(fields[len(fields)-1])]
	var out []string
	for _, w := range completionWords {
		if strings.HasPrefix(w, word) {
			out = append(out, prefix+w)
		}
	}
	return out
}

// Start runs a session on the terminal until QUIT or Ctrl+D.
func Start(out io.Writer, opts Options) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(filterCompletions)

	historyFile := filepath.Join(os.TempDir(), ".gobasic_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	var s *Session
	s = NewSession(out, func() (string, error) {
		// The program already printed its prompt; liner redraws it in place.
		prompt := s.out.tail
		in, err := line.Prompt(prompt)
		s.out.tail = ""
		return in, err
	}, opts)

	fmt.Fprintln(out, banner)
	ctx := context.Background()
	for {
		input, err := line.Prompt(PROMPT)
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out)
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if s.Exec(ctx, input) {
			return
		}
	}
}
