package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"gobasic/pkg/compiler"
	"gobasic/pkg/config"
	"gobasic/pkg/grid"
	"gobasic/pkg/jsrun"
	"gobasic/pkg/utils"
)

const (
	cols       = 64
	rows       = 24
	charWidth  = 7
	charHeight = 13
)

// Game shows a running program's output and feeds it keyboard lines.
type Game struct {
	screen *grid.Grid
	face   text.Face

	input []rune      // line being typed
	lines chan string // submitted lines waiting for INPUT
	done  chan struct{}
}

func newGame() *Game {
	return &Game{
		screen: grid.New(cols, rows),
		lines:  make(chan string, 16),
		done:   make(chan struct{}),
	}
}

// start runs js in the background. Output goes to the grid; INPUT blocks
// until a line is submitted or ctx ends.
func (g *Game) start(ctx context.Context, js string) {
	readLine := func() (string, error) {
		select {
		case l := <-g.lines:
			return l, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	go func() {
		defer close(g.done)
		err := jsrun.Run(ctx, js, jsrun.Host{Out: g.screen, ReadLine: readLine})
		switch {
		case errors.Is(err, jsrun.ErrInterrupted):
		case err != nil:
			g.screen.WriteString("\n" + err.Error() + "\n")
		default:
			g.screen.WriteString("\n[program finished]\n")
		}
	}()
}

func (g *Game) finished() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

func (g *Game) typeRune(r rune) {
	g.input = append(g.input, r)
	g.screen.WriteString(string(r))
}

func (g *Game) backspace() {
	if len(g.input) == 0 {
		return
	}
	g.input = g.input[:len(g.input)-1]
	g.screen.WriteString("\b")
}

func (g *Game) submit() {
	g.screen.WriteString("\n")
	select {
	case g.lines <- string(g.input):
	default:
	}
	g.input = g.input[:0]
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.finished() {
		return nil
	}
	for _, r := range ebiten.AppendInputChars(nil) {
		g.typeRune(r)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.submit()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.backspace()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.face == nil {
		g.face = text.NewGoXFace(basicfont.Face7x13)
	}
	for i, line := range g.screen.Lines() {
		if line == "" {
			continue
		}
		op := &text.DrawOptions{}
		op.GeoM.Translate(0, float64(i*charHeight))
		text.Draw(screen, line, g.face, op)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cols * charWidth, rows * charHeight
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: desktop file.bas [--show-js]")
		os.Exit(2)
	}
	filename := os.Args[1]
	showJS := false
	for _, arg := range os.Args[2:] {
		showJS = showJS || arg == "--show-js"
	}

	cfg, err := config.Load(os.Getenv("GOBASIC_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	src, _, err := utils.ReadSource(filename)
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}
	res, err := compiler.Compile(src, cfg.CompilerOptions())
	if err != nil {
		log.Fatalf("Compilation failed: %v", err)
	}
	if res.Diagnostics.HasErrors() {
		for _, d := range res.Diagnostics {
			fmt.Fprintln(os.Stderr, d)
		}
		if !cfg.Run.Force || res.JS == "" {
			os.Exit(1)
		}
	}
	if showJS {
		fmt.Print("Generated JavaScript:\n", res.JS, "\n")
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cols*charWidth*2, rows*charHeight*2)
	ebiten.SetWindowTitle("gobasic - " + filename)

	ctx, cancel := context.WithCancel(context.Background())
	game := newGame()
	game.start(ctx, res.JS)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}

	// Window closed: stop the program if it is still running.
	cancel()
	<-game.done
}
