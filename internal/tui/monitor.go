package tui

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/homeosim/internal/config"
	"github.com/san-kum/homeosim/internal/dynamo"
	"github.com/san-kum/homeosim/internal/experiment"
	"github.com/san-kum/homeosim/internal/logging"
	"github.com/san-kum/homeosim/internal/neuron"
	"github.com/san-kum/homeosim/internal/stimulus"
)

const historyLen = 240

type screen int

const (
	screenMenu screen = iota
	screenSim
)

// Loader returns the model description for a menu entry.
type Loader func(name string) (*config.Config, error)

type model struct {
	screen screen
	cursor int
	names  []string
	load   Loader
	logger *slog.Logger

	selected string
	cfg      *config.Config
	exp      *experiment.Experiment
	session  *dynamo.Session
	manual   *stimulus.Manual

	paused    bool
	speed     int
	vHist     []float64
	caHist    []float64
	lastFrame time.Time
	fps       float64
	err       error

	width  int
	height int
}

// NewMonitor returns a bubbletea model that lists names and runs the chosen
// model live. Injected current is adjusted with the arrow keys.
func NewMonitor(names []string, load Loader, logger *slog.Logger) *model {
	if logger == nil {
		logger = logging.Discard()
	}
	return &model{
		screen: screenMenu,
		names:  names,
		load:   load,
		logger: logger,
		speed:  20,
		width:  80,
		height: 24,
	}
}

func (m model) Init() tea.Cmd { return nil }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.screen != screenSim {
			return m, nil
		}
		if !m.paused && m.session != nil {
			now := time.Now()
			if !m.lastFrame.IsZero() {
				if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
					m.fps = 1.0 / dt
				}
			}
			m.lastFrame = now
			for i := 0; i < m.speed && !m.session.Done(); i++ {
				if err := m.step(); err != nil {
					m.err = err
					m.paused = true
					break
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.screen {
	case screenMenu:
		return m.menuKey(msg)
	case screenSim:
		return m.simKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.names) == 0 {
			return m, nil
		}
		m.selected = m.names[m.cursor]
		if err := m.start(); err != nil {
			m.err = err
			return m, nil
		}
		m.screen = screenSim
		return m, tea.Batch(tea.ClearScreen, tick())
	}
	return m, nil
}

func (m model) simKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.screen = screenMenu
		m.session = nil
		m.err = nil
		return m, tea.ClearScreen
	case " ", "p":
		m.paused = !m.paused
	case "r":
		if err := m.start(); err != nil {
			m.err = err
		}
		return m, tea.ClearScreen
	case "+", "=":
		m.speed = min(m.speed*2, 2000)
	case "-", "_":
		m.speed = max(m.speed/2, 1)
	case "up", "k":
		m.manual.Set(m.manual.Current() + 0.1)
	case "down", "j":
		m.manual.Set(m.manual.Current() - 0.1)
	case "0":
		m.manual.Set(0)
	}
	return m, nil
}

func (m *model) start() error {
	cfg, err := m.load(m.selected)
	if err != nil {
		return err
	}

	manual := stimulus.NewManual()
	if cfg.Stimulus.Kind == "constant" || cfg.Stimulus.Kind == "manual" {
		manual.Set(cfg.Stimulus.Amp)
	}

	exp, err := experiment.Build(cfg,
		experiment.WithStimulus(manual),
		experiment.WithoutTrace(),
		experiment.WithLogger(m.logger))
	if err != nil {
		return err
	}
	session, err := exp.Start()
	if err != nil {
		return err
	}

	m.cfg = cfg
	m.exp = exp
	m.session = session
	m.manual = manual
	m.paused = false
	m.err = nil
	m.vHist = make([]float64, 0, historyLen)
	m.caHist = make([]float64, 0, historyLen)
	m.lastFrame = time.Time{}
	m.record()
	return nil
}

func (m *model) step() error {
	if _, err := m.session.Step(); err != nil {
		return err
	}
	m.record()
	return nil
}

func (m *model) record() {
	x := m.session.State()
	m.vHist = appendRing(m.vHist, x[neuron.IdxV])
	m.caHist = appendRing(m.caHist, x[neuron.IdxCa])
}

func appendRing(buf []float64, v float64) []float64 {
	if len(buf) == historyLen {
		copy(buf, buf[1:])
		buf = buf[:historyLen-1]
	}
	return append(buf, v)
}

func (m model) View() string {
	switch m.screen {
	case screenMenu:
		return m.viewMenu()
	case screenSim:
		return m.viewSim()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("          " + cyan.Render("h o m e o s i m") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.names {
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(name) + "\n")
		} else {
			b.WriteString("        " + dim.Render(name) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n      " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter start   q quit") + "\n")
	return b.String()
}

func (m model) viewSim() string {
	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	switch {
	case m.err != nil:
		statusIcon = red.Render("✕")
		statusText = red.Render("stopped")
	case m.session != nil && m.session.Done():
		statusIcon = dim.Render("■")
		statusText = dim.Render("finished")
	case m.paused:
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s\n", statusIcon, cyan.Render(m.selected), statusText))

	if m.session == nil || m.cfg == nil {
		return b.String()
	}

	t := m.session.Time()
	progress := math.Min(t/m.cfg.Duration, 1)
	barWidth := 36
	filled := int(progress * float64(barWidth))
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	timeStr := fmt.Sprintf("%.0fms/%.0fms", t, m.cfg.Duration)
	b.WriteString(fmt.Sprintf("   %s %s  %s  %s\n\n", bar, dim.Render(timeStr),
		dim.Render(fmt.Sprintf("%.0ffps", m.fps)), dim.Render(fmt.Sprintf("x%d", m.speed))))

	plotWidth := max(m.width-16, 40)
	if len(m.vHist) > 1 {
		b.WriteString(asciigraph.Plot(m.vHist,
			asciigraph.Height(8),
			asciigraph.Width(plotWidth),
			asciigraph.Caption("V (mV)")) + "\n\n")
	}

	x := m.session.State()
	target := m.cfg.Target()
	caLine := fmt.Sprintf("   %s %s", dim.Render("Ca"), white.Render(fmt.Sprintf("%.3f uM", x[neuron.IdxCa])))
	if !math.IsNaN(target) {
		caLine += fmt.Sprintf("  %s %s  %s", dim.Render("target"), magenta.Render(fmt.Sprintf("%.3f", target)),
			calciumBar(x[neuron.IdxCa], target, 24))
	}
	b.WriteString(caLine + "\n")
	b.WriteString(fmt.Sprintf("   %s %s\n\n", dim.Render("I_ext"), yellow.Render(fmt.Sprintf("%+.2f nA", m.manual.Current()))))

	b.WriteString(m.conductanceTable())

	if m.err != nil {
		b.WriteString("\n   " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dim.Render("   space pause  ±speed  ↑↓ current  0 zero  r reset  q menu") + "\n")
	return b.String()
}

// calciumBar draws calcium relative to twice the target.
func calciumBar(ca, target float64, width int) string {
	if target <= 0 {
		return ""
	}
	ratio := math.Max(0, math.Min(ca/(2*target), 1))
	filled := int(ratio * float64(width))
	mid := width / 2
	var sb strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == mid:
			sb.WriteString(magenta.Render("│"))
		case i < filled:
			sb.WriteString(green.Render("█"))
		default:
			sb.WriteString(dimmer.Render("─"))
		}
	}
	return sb.String()
}

func (m model) conductanceTable() string {
	g := m.exp.Conductances()
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)

	mByTarget := make(map[string]float64)
	for _, ic := range m.exp.Controllers() {
		labels := ic.StateLabels()
		mByTarget[strings.TrimPrefix(labels[0], "m_")] = ic.M
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("   %s\n", dim.Render(fmt.Sprintf("%-10s %12s %12s", "channel", "gbar", "m"))))
	for _, name := range names {
		mStr := dimmer.Render(fmt.Sprintf("%12s", "-"))
		if mv, ok := mByTarget[name]; ok {
			mStr = magenta.Render(fmt.Sprintf("%12.4f", mv))
		}
		b.WriteString(fmt.Sprintf("   %s %s %s\n",
			white.Render(fmt.Sprintf("%-10s", name)),
			cyan.Render(fmt.Sprintf("%12.4f", g[name])),
			mStr))
	}
	return b.String()
}

// RunMonitor starts the interactive monitor on the alternate screen.
func RunMonitor(names []string, load Loader, logger *slog.Logger) error {
	p := tea.NewProgram(NewMonitor(names, load, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
