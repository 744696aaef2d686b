package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/wavestep/internal/metrics"
	"github.com/san-kum/wavestep/internal/sim"
	"github.com/san-kum/wavestep/internal/viz"
)

const (
	historyLen = 120
	sliceCols  = 48
)

// StepMsg reports the state after a completed step.
type StepMsg struct {
	Step   int
	Time   float64
	Energy float64
	MaxU   float64
	// Slice is a shaded view of |u| on the middle z-plane.
	Slice string
}

// DoneMsg ends the live view.
type DoneMsg struct {
	Err error
}

type Model struct {
	name    string
	total   int
	step    int
	t       float64
	energy  []float64
	maxU    float64
	slice   string
	started time.Time
	done    bool
	err     error
	width   int
	cancel  context.CancelFunc
}

func NewModel(name string, total int, cancel context.CancelFunc) Model {
	return Model{
		name:    name,
		total:   total,
		energy:  make([]float64, 0, historyLen),
		started: time.Now(),
		width:   80,
		cancel:  cancel,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case StepMsg:
		m.step, m.t, m.maxU = msg.Step, msg.Time, msg.MaxU
		if msg.Slice != "" {
			m.slice = msg.Slice
		}
		m.energy = append(m.energy, msg.Energy)
		if len(m.energy) > historyLen {
			m.energy = m.energy[len(m.energy)-historyLen:]
		}
	case DoneMsg:
		m.done, m.err = true, msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) Err() error { return m.err }

func (m Model) View() string {
	var b strings.Builder

	status := StatusRunning.Render("running")
	switch {
	case m.err != nil:
		status = StatusFailed.Render("failed")
	case m.done:
		status = StatusRunning.Render("done")
	}
	b.WriteString(Title.Render("wavestep") + "  " + Subtle.Render(m.name) + "  " + status + "\n\n")
	b.WriteString(m.bar(min(m.width-20, 60)) + fmt.Sprintf(" %d/%d\n\n", m.step, m.total))

	b.WriteString(Metric("t", fmt.Sprintf("%.4f", m.t)) + "   ")
	b.WriteString(Metric("max|u|", fmt.Sprintf("%.4g", m.maxU)) + "   ")
	b.WriteString(Metric("elapsed", time.Since(m.started).Round(time.Millisecond).String()) + "\n")

	if len(m.energy) > 1 {
		b.WriteString("\n" + asciigraph.Plot(m.energy,
			asciigraph.Height(8),
			asciigraph.Width(min(m.width-12, 70)),
			asciigraph.Caption("kinetic energy"),
		) + "\n")
	}
	if m.slice != "" {
		b.WriteString("\n" + Subtle.Render("|u| mid-plane") + "\n" + m.slice)
	}
	if m.err != nil {
		b.WriteString("\n" + StatusFailed.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + KeyHint.Render("q to stop") + "\n")

	return Panel.Render(b.String())
}

func (m Model) bar(width int) string {
	if width < 10 {
		width = 10
	}
	filled := 0
	if m.total > 0 {
		filled = min(width*m.step/m.total, width)
	}
	return barFull.Render(strings.Repeat("█", filled)) + barEmpty.Render(strings.Repeat("░", width-filled))
}

// Reporter forwards simulator progress to a running program, at most
// fps times per second plus the final step.
type Reporter struct {
	send     func(tea.Msg)
	total    int
	interval time.Duration
	last     time.Time
}

func NewReporter(send func(tea.Msg), total, fps int) *Reporter {
	if fps <= 0 {
		fps = 30
	}
	return &Reporter{send: send, total: total, interval: time.Second / time.Duration(fps)}
}

func (r *Reporter) OnStep(step int, t float64, f *sim.Fields) {
	if step != r.total && time.Since(r.last) < r.interval {
		return
	}
	r.last = time.Now()
	msg := StepMsg{Step: step, Time: t, Energy: metrics.Kinetic(f.V), MaxU: metrics.MaxAbs(f.U)}
	s := f.Shape
	if plane, err := viz.MagnitudePlane(f.U, s.NZ/2); err == nil {
		msg.Slice = viz.Heatmap(plane, s.NX, s.NY, sliceCols)
	}
	r.send(msg)
}

// Run shows the live view while run executes in the background. Quitting the
// view cancels the context handed to run; Run waits for run to return.
func Run(ctx context.Context, name string, total, fps int, run func(context.Context, sim.Observer) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(name, total, cancel))
	rep := NewReporter(p.Send, total, fps)

	finished := make(chan error, 1)
	go func() {
		err := run(ctx, rep)
		p.Send(DoneMsg{Err: err})
		finished <- err
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-finished
		return err
	}
	cancel()
	return <-finished
}
