package viz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/planefx/internal/scenario"
)

const (
	historyCapacity  = 300
	maxTicksPerFrame = 64
)

type TickMsg time.Time

// Builder creates a fresh session; the live view calls it again on restart.
type Builder func() (*scenario.Session, error)

// Model flies a scenario session a few ticks per frame and shows its state.
type Model struct {
	build     Builder
	session   *scenario.Session
	last      scenario.Sample
	mach      []float64
	intensity []float64
	perFrame  int
	running   bool
	done      bool
	err       error
	showHelp  bool
}

func NewModel(build Builder) (Model, error) {
	s, err := build()
	if err != nil {
		return Model{}, err
	}
	return Model{
		build:     build,
		session:   s,
		mach:      make([]float64, 0, historyCapacity),
		intensity: make([]float64, 0, historyCapacity),
		perFrame:  4,
		running:   true,
	}, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and advances the session.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.perFrame = min(m.perFrame*2, maxTicksPerFrame)
		case "-", "_":
			m.perFrame = max(m.perFrame/2, 1)
		case "r":
			if err := m.restart(); err != nil {
				m.err = err
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && !m.done && m.err == nil {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) advance() {
	for i := 0; i < m.perFrame; i++ {
		sample, err := m.session.Step(context.Background())
		if errors.Is(err, scenario.ErrFinished) {
			m.done = true
			return
		}
		if err != nil {
			m.err = err
			return
		}
		m.last = sample
		m.mach = push(m.mach, sample.Mach)
		m.intensity = push(m.intensity, sample.LiftIntensity)
	}
}

func push(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) restart() error {
	s, err := m.build()
	if err != nil {
		return err
	}
	m.session.Close()
	m.session = s
	m.last = scenario.Sample{}
	m.mach = m.mach[:0]
	m.intensity = m.intensity[:0]
	m.done = false
	m.err = nil
	return nil
}

// Close stops whatever effects the current session still owns.
func (m Model) Close() int {
	return m.session.Close()
}

func (m Model) Last() scenario.Sample { return m.last }
func (m Model) Running() bool         { return m.running }
func (m Model) Done() bool            { return m.done }
func (m Model) Err() error            { return m.err }
func (m Model) TicksPerFrame() int    { return m.perFrame }

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusError.Render("ERROR: " + m.err.Error())
	case m.done:
		return StatusDone.Render("FINISHED")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render(fmt.Sprintf("RUNNING x%d", m.perFrame))
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	sc := m.session.Scenario()
	smp := m.last

	var left strings.Builder
	left.WriteString(Header.Render(strings.ToUpper(sc.Name)) + "\n")
	left.WriteString(m.status() + "\n\n")
	left.WriteString(ProgressBar(m.session.Progress(), 30) + "\n\n")
	if len(m.mach) > 1 {
		chart := asciigraph.Plot(m.mach, asciigraph.Height(8), asciigraph.Width(40), asciigraph.Caption("mach"))
		left.WriteString(chart + "\n\n")
	}
	left.WriteString(MetricLabel.Render("lift intensity") + Sparkline(m.intensity, 30))

	var right strings.Builder
	right.WriteString(row("Tick", fmt.Sprintf("%d / %d", smp.Tick, sc.Ticks())))
	right.WriteString(row("Segment", smp.Segment))
	right.WriteString(row("Altitude", fmt.Sprintf("%.0f m", smp.Altitude)))
	right.WriteString(row("Speed", fmt.Sprintf("%.1f m/s", smp.Speed)))
	right.WriteString(row("Density", fmt.Sprintf("%.3f", smp.Density)))
	right.WriteString(row("Speed of sound", fmt.Sprintf("%.1f m/s", smp.SpeedOfSound)))
	right.WriteString(row("Mach", fmt.Sprintf("%.3f", smp.Mach)))
	right.WriteString(row("Live effects", fmt.Sprintf("%d", smp.LiveEffects)))
	right.WriteString(row("Fading", fmt.Sprintf("%d", smp.Pending)))
	if smp.Skip != "" && smp.Skip != "none" {
		right.WriteString(row("Skipped", smp.Skip))
	}
	right.WriteString("\n")
	right.WriteString(Indicator("contrails", smp.Contrails) + "\n")
	right.WriteString(Indicator(fmt.Sprintf("vapor x%d", smp.Vapor), smp.Vapor > 0) + "\n")
	right.WriteString(Indicator(fmt.Sprintf("transonic %.2f", smp.TransonicScale), smp.Transonic) + "\n")
	right.WriteString("\n" + Separator(34) + "\n")
	right.WriteString(KeyHint.Render("SP:Pause +/-:Speed R:Restart ?:Help Q:Quit"))

	view := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(left.String()),
		Panel.Render(right.String()),
	)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  + / -    - Double/halve tick rate   ║
║  R        - Restart the scenario     ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + view
	}
	return view
}
