package reporter

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUI styles
var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type tickMsg time.Time

// TUIModel is the Bubbletea model for the live batch display: a header,
// a trial progress bar, and failure counts, refreshed on a timer.
type TUIModel struct {
	evalName    string
	model       string
	getProgress func() Progress
	cancelRun   func() // called on 'q' to cancel the run context

	progress Progress
	frame    int
	width    int
	started  time.Time
}

// NewTUIModel creates a new TUI model.
func NewTUIModel(evalName, model string, getProgress func() Progress, cancelRun func()) TUIModel {
	return TUIModel{
		evalName:    evalName,
		model:       model,
		getProgress: getProgress,
		cancelRun:   cancelRun,
		started:     time.Now(),
	}
}

// Init implements tea.Model.
func (m TUIModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancelRun != nil {
				m.cancelRun()
			}
			return m, tea.Quit
		}

	case tickMsg:
		m.progress = m.getProgress()
		m.frame++
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
	}

	return m, nil
}

// View implements tea.Model.
func (m TUIModel) View() string {
	var b strings.Builder

	header := fmt.Sprintf("evalforge: %s on %s", m.evalName, m.model)
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")

	p := m.progress
	spinner := spinnerFrames[m.frame%len(spinnerFrames)]
	elapsed := time.Since(m.started).Truncate(time.Second)

	b.WriteString(fmt.Sprintf("  %s %s  %s\n", spinner, m.bar(p), dimStyle.Render(elapsed.String())))

	counts := doneStyle.Render(fmt.Sprintf("%d done", p.Done))
	if p.Failed > 0 {
		counts += "  " + failStyle.Render(fmt.Sprintf("%d failed", p.Failed))
	}
	if remaining := p.Total - p.Done; remaining > 0 {
		counts += "  " + dimStyle.Render(fmt.Sprintf("%d queued", remaining))
	}
	b.WriteString("  " + counts + "\n\n")

	b.WriteString(helpStyle.Render("  q: cancel run (in-flight trials finish)"))
	return b.String()
}

func (m TUIModel) bar(p Progress) string {
	width := 30
	if m.width > 0 && m.width-20 < width {
		width = m.width - 20
	}
	if width < 10 {
		width = 10
	}
	filled := 0
	if p.Total > 0 {
		filled = width * p.Done / p.Total
	}
	return fmt.Sprintf("[%s%s] %d/%d",
		strings.Repeat("█", filled),
		strings.Repeat("░", width-filled),
		p.Done, p.Total)
}
