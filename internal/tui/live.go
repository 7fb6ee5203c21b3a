package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/homeosim/internal/dynamo"
	"github.com/san-kum/homeosim/internal/neuron"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is an observer that redraws a voltage plot on w at most
// frameRate times per second while a batch run is in progress.
type LiveRenderer struct {
	out       io.Writer
	title     string
	frameRate int
	lastFrame time.Time
	history   []float64
}

func NewLiveRenderer(out io.Writer, title string, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 15
	}
	return &LiveRenderer{
		out:       out,
		title:     title,
		frameRate: frameRate,
		history:   make([]float64, 0, historyLen),
	}
}

func (r *LiveRenderer) OnStep(x dynamo.State, u dynamo.Input, t float64) {
	r.history = appendRing(r.history, x[neuron.IdxV])

	if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()
	r.render(x, t)
}

func (r *LiveRenderer) render(x dynamo.State, t float64) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.1fms\n\n", r.title, t))
	if len(r.history) > 1 {
		b.WriteString(asciigraph.Plot(r.history,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("V (mV)")))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\n  V=%.2f mV  Ca=%.3f uM\n", x[neuron.IdxV], x[neuron.IdxCa]))
	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
