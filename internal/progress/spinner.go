package progress

import (
	"fmt"
	"io"

	"nvmlsg/internal/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type statusMsg string

type spinnerFinishedMsg struct{}

type spinnerModel struct {
	spinner  spinner.Model
	message  string
	quitting bool
}

func newSpinnerModel(message string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.SpinnerStyle

	return spinnerModel{
		spinner: s,
		message: message,
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		m.message = string(msg)
		return m, nil

	case spinnerFinishedMsg:
		m.quitting = true
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf(" %s %s\n", m.spinner.View(), m.message)
}

// Spinner shows an animated status line while installations are scanned.
// A nil *Spinner is valid and does nothing.
type Spinner struct {
	program *tea.Program
	done    chan struct{}
}

// Start renders a spinner with message to out until Stop is called.
// Interrupts are left to the caller so a running npm child is cancelled too.
func Start(message string, out io.Writer) *Spinner {
	p := tea.NewProgram(newSpinnerModel(message),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	s := &Spinner{program: p, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		_, _ = p.Run()
	}()

	return s
}

// Status replaces the text next to the spinner
func (s *Spinner) Status(msg string) {
	if s == nil {
		return
	}
	s.program.Send(statusMsg(msg))
}

// Println prints msg above the spinner line
func (s *Spinner) Println(msg string) {
	if s == nil {
		return
	}
	s.program.Println(msg)
}

// Stop clears the spinner line and waits for the renderer to exit
func (s *Spinner) Stop() {
	if s == nil {
		return
	}
	s.program.Send(spinnerFinishedMsg{})
	<-s.done
}
