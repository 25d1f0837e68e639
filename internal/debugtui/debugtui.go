// Package debugtui implements cc0's interactive bytecode step debugger
// ("-i" / "trace" mode), a bonus DOMAIN STACK component wiring
// github.com/charmbracelet/bubbletea, .../bubbles and .../lipgloss into
// the toolchain (see SPEC_FULL.md "DOMAIN STACK"). It is grounded on
// dr8co-kong/repl/repl.go's Bubble Tea Model shape (textinput-driven REPL
// over an evaluator) adapted from a live input loop to a scrollable
// viewport over a pre-recorded execution trace of a lang/vm.VM run: this
// debugger steps through what already happened rather than what the user
// types, so there is no textinput component, only bubbles/viewport for
// scrolling and bubbles/key for the keymap.
package debugtui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/c0lang/c0/lang/binfmt"
	"github.com/c0lang/c0/lang/bytecode"
	"github.com/c0lang/c0/lang/vm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	frameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	currentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFAF00"))

	stackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))
)

type keymap struct {
	Next  key.Binding
	Prev  key.Binding
	Quit  key.Binding
	First key.Binding
	Last  key.Binding
}

func defaultKeymap() keymap {
	return keymap{
		Next:  key.NewBinding(key.WithKeys("j", "down", "n", " "), key.WithHelp("j/n", "next step")),
		Prev:  key.NewBinding(key.WithKeys("k", "up", "p"), key.WithHelp("k/p", "previous step")),
		Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		First: key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first step")),
		Last:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last step")),
	}
}

// Run traces prog to completion (or until a runtime fault or the step
// limit fires) under limits, then opens a full-screen viewer over the
// recorded trace. Unlike the "-r" run command, program output is not
// forwarded live: the VM's stdout is discarded during the trace pass so
// the debugger's own screen is the only thing rendered.
func Run(prog *bytecode.Program, limits vm.Limits) error {
	steps, runErr := collect(prog, limits)
	p := tea.NewProgram(initialModel(steps, runErr), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func collect(prog *bytecode.Program, limits vm.Limits) ([]vm.TraceStep, error) {
	m := vm.New(prog, limits)
	m.SetStdio(strings.NewReader(""), discard{})

	var steps []vm.TraceStep
	m.SetTrace(func(s vm.TraceStep) { steps = append(steps, s) })

	_, runErr := m.Run()
	return steps, runErr
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

type model struct {
	steps  []vm.TraceStep
	runErr error
	cursor int
	vp     viewport.Model
	keys   keymap
	ready  bool
}

func initialModel(steps []vm.TraceStep, runErr error) model {
	return model{steps: steps, runErr: runErr, keys: defaultKeymap()}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - 4
		}
		m.vp.SetContent(m.renderStack())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			if m.cursor < len(m.steps)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Prev):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.First):
			m.cursor = 0
		case key.Matches(msg, m.keys.Last):
			m.cursor = len(m.steps) - 1
		}
		m.vp.SetContent(m.renderStack())
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m model) renderStack() string {
	if len(m.steps) == 0 {
		return stackStyle.Render("(no instructions executed)")
	}
	s := m.steps[m.cursor]
	var sb strings.Builder
	fmt.Fprintf(&sb, "value stack (%d slots):\n", len(s.Stack))
	for i := len(s.Stack) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "  [%3d] %d\n", i, s.Stack[i])
	}
	return sb.String()
}

func (m model) View() string {
	if !m.ready {
		return "initializing...\n"
	}

	var header strings.Builder
	header.WriteString(titleStyle.Render(" C0 step debugger "))
	header.WriteString("\n\n")

	if len(m.steps) == 0 {
		header.WriteString(stackStyle.Render("no instructions were executed"))
		if m.runErr != nil {
			header.WriteString("\n" + frameStyle.Render(m.runErr.Error()))
		}
		header.WriteString("\n\n")
		header.WriteString(helpStyle.Render("press q to quit"))
		return header.String()
	}

	s := m.steps[m.cursor]
	indent := strings.Repeat("  ", s.Depth)
	fmt.Fprintf(&header, "step %d/%d  %s",
		m.cursor+1, len(m.steps), frameStyle.Render(fmt.Sprintf("%s (depth %d)", s.FuncName, s.Depth)))
	header.WriteString("\n")
	fmt.Fprintf(&header, "%s%s\n\n", indent, currentStyle.Render(fmt.Sprintf("%d: %s", s.PC, binfmt.FormatInstruction(s.Instr))))

	if m.cursor == len(m.steps)-1 && m.runErr != nil {
		header.WriteString(frameStyle.Render("fault: "+m.runErr.Error()) + "\n\n")
	}

	var footer strings.Builder
	footer.WriteString(helpStyle.Render("j/k step · g/G first/last · q quit"))

	return header.String() + m.vp.View() + "\n" + footer.String()
}

