// Package tui renders the poll loop of a running prediction as an inline
// spinner with the last-known remote status and elapsed time.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anshulm/replrun/internal/replicate"
)

var (
	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // bright blue

	statusStyle = lipgloss.NewStyle().
			Bold(true)

	elapsedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// statusMsg carries the latest poll result into the program.
type statusMsg struct {
	status  string
	elapsed time.Duration
}

// doneMsg is sent when the run goroutine finishes.
type doneMsg struct {
	outcome replicate.Outcome
}

type watchModel struct {
	spinner   spinner.Model
	status    string
	elapsed   time.Duration
	cancel    context.CancelFunc
	cancelled bool
	done      bool
	outcome   replicate.Outcome
}

func newWatchModel(cancel context.CancelFunc) watchModel {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(spinnerStyle),
	)
	return watchModel{
		spinner: sp,
		status:  "starting",
		cancel:  cancel,
	}
}

func (m watchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		m.status = msg.status
		m.elapsed = msg.elapsed
		return m, nil

	case doneMsg:
		m.done = true
		m.outcome = msg.outcome
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// Cancel the run and keep spinning until it reports back; the
			// driver turns the cancellation into a classified outcome.
			if !m.cancelled {
				m.cancelled = true
				m.cancel()
			}
			return m, nil
		}
		return m, nil

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m watchModel) View() string {
	if m.done {
		return ""
	}

	line := fmt.Sprintf("%s %s %s",
		m.spinner.View(),
		statusStyle.Render(m.status),
		elapsedStyle.Render(m.elapsed.Round(time.Second).String()),
	)
	if m.cancelled {
		return line + "  " + hintStyle.Render("cancelling...") + "\n"
	}
	return line + "  " + hintStyle.Render("q to cancel") + "\n"
}

// RunFunc executes the prediction, reporting every poll via onStatus.
type RunFunc func(ctx context.Context, onStatus func(status string, elapsed time.Duration)) replicate.Outcome

// Watch runs fn under a live spinner view and returns its outcome once the
// run reaches a terminal state. Pressing q or ctrl+c cancels the run's
// context; the view stays up until the driver reports back.
func Watch(ctx context.Context, fn RunFunc) (replicate.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newWatchModel(cancel))

	go func() {
		outcome := fn(ctx, func(status string, elapsed time.Duration) {
			p.Send(statusMsg{status: status, elapsed: elapsed})
		})
		p.Send(doneMsg{outcome: outcome})
	}()

	result, err := p.Run()
	if err != nil {
		return replicate.Outcome{}, fmt.Errorf("watch view: %w", err)
	}

	final := result.(watchModel)
	if !final.done {
		return replicate.Outcome{}, fmt.Errorf("watch view ended before the run finished")
	}
	return final.outcome, nil
}
