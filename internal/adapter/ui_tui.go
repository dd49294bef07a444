package adapter

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"crucible.dev/pkg/crucible/internal/model"
)

var doneStyle = lipgloss.NewStyle().Bold(true)

type progressMsg struct{ completed, total int }

type finishMsg struct{ score model.Score }

type tuiModel struct {
	prog      progress.Model
	completed int
	total     int
	done      bool
	score     model.Score
}

func newTUIModel() tuiModel {
	return tuiModel{prog: progress.New(progress.WithDefaultGradient())}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.completed, m.total = msg.completed, msg.total

		percent := 0.0
		if m.total > 0 {
			percent = float64(m.completed) / float64(m.total)
		}

		return m, m.prog.SetPercent(percent)
	case finishMsg:
		m.done = true
		m.score = msg.score

		return m, tea.Quit
	case progress.FrameMsg:
		updated, cmd := m.prog.Update(msg)
		m.prog = updated.(progress.Model)

		return m, cmd
	default:
		return m, nil
	}
}

func (m tuiModel) View() string {
	if m.done {
		return doneStyle.Render(fmt.Sprintf("done: %d mutants, %d killed, %d junk skipped, score %.2f%%\n",
			m.score.TotalMutants, m.score.KilledMutants, m.score.SkippedJunk, m.score.MutationScore*100))
	}

	return fmt.Sprintf("%s %d/%d tests\n", m.prog.View(), m.completed, m.total)
}

// TUIUI renders pipeline progress as a bubbletea progress bar. It is only
// used when stdout is an interactive terminal.
type TUIUI struct {
	program *tea.Program
}

// NewTUIUI constructs a TUIUI and starts its render loop in the
// background.
func NewTUIUI() *TUIUI {
	program := tea.NewProgram(newTUIModel())

	go func() {
		_, _ = program.Run()
	}()

	return &TUIUI{program: program}
}

func (u *TUIUI) Start(total int) {
	u.program.Send(progressMsg{completed: 0, total: total})
}

func (u *TUIUI) Update(completed, total int) {
	u.program.Send(progressMsg{completed: completed, total: total})
}

func (u *TUIUI) Finish(score model.Score) {
	u.program.Send(finishMsg{score: score})
}
