package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/fylia.go/fylia"
	"github.com/sokinpui/fylia.go/internal/ui"
	"github.com/sokinpui/fylia.go/model"
)

// --- Styles ---
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))             // Green
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))            // Orange
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))            // Red
	pathStyle    = lipgloss.NewStyle()
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// Lines taken by the header and the key help around the diff viewport.
const chromeHeight = 4

// --- Messages ---
type proposalMsg struct {
	proposal *fylia.Proposal
}

type summaryMsg struct {
	model.Summary
}

type errorMsg struct{ err error }

func (e errorMsg) Error() string { return e.err.Error() }

// --- Model ---
type Model struct {
	app         *fylia.App
	noAnimation bool
	spinner     spinner.Model
	viewport    viewport.Model
	ready       bool
	width       int
	height      int
	state       state
	proposal    *fylia.Proposal
	summary     summaryMsg
	err         error
}

type state int

const (
	stateLoading state = iota
	statePreview
	stateApplying
	stateSummary
	stateError
)

// New returns the interactive model: it reads the source, shows the planned diff and
// writes it only once confirmed.
func New(app *fylia.App, noAnimation bool) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		app:         app,
		noAnimation: noAnimation,
		spinner:     s,
		state:       stateLoading,
	}
}

func (m Model) Init() tea.Cmd {
	return m.withTick(m.plan)
}

// withTick starts the spinner alongside cmd unless animation is off.
func (m Model) withTick(cmd tea.Cmd) tea.Cmd {
	if m.noAnimation {
		return cmd
	}
	return tea.Batch(m.spinner.Tick, cmd)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case proposalMsg:
		if msg.proposal.IsEmpty() {
			m.state = stateSummary
			m.summary = summaryMsg{model.Summary{
				Operation: model.OperationUpdate,
				Message:   "No valid changes were generated. Nothing to do.",
			}}
			return m, tea.Quit
		}
		m.state = statePreview
		m.proposal = msg.proposal
		m.resize()
		return m, nil

	case summaryMsg:
		m.state = stateSummary
		m.summary = msg
		return m, tea.Quit

	case errorMsg:
		m.state = stateError
		m.err = msg
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateLoading || m.state == stateApplying {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.state != statePreview {
		if key == "q" && m.state != stateApplying {
			return m, tea.Quit
		}
		return m, nil
	}

	switch key {
	case "y", "enter":
		m.state = stateApplying
		return m, m.withTick(m.apply)
	case "n", "q", "esc":
		m.state = stateSummary
		m.summary = summaryMsg{model.Summary{Operation: model.OperationUpdate, Message: "Aborted. No files were changed."}}
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// resize fits the viewport to the window once both the size and the diff are known.
func (m *Model) resize() {
	if m.proposal == nil || m.width == 0 {
		return
	}
	height := max(m.height-chromeHeight, 1)
	if !m.ready {
		m.viewport = viewport.New(m.width, height)
		m.viewport.SetContent(ui.ColorizeDiff(m.proposal.String()))
		m.ready = true
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = height
}

func (m Model) View() string {
	switch m.state {
	case stateLoading:
		return m.busy("Reading source...")
	case statePreview:
		return m.renderPreview()
	case stateApplying:
		return m.busy("Applying changes...")
	case stateError:
		return errorStyle.Render("Error: ", m.err.Error()) + "\n"
	case stateSummary:
		return m.renderSummary()
	default:
		return ""
	}
}

func (m Model) busy(text string) string {
	if m.noAnimation {
		return text
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), text)
}

func (m Model) renderPreview() string {
	var b strings.Builder
	files := len(m.proposal.Documents)
	added, removed := 0, 0
	for _, doc := range m.proposal.Documents {
		a, r := doc.Stats()
		added += a
		removed += r
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("%d file(s) to change", files)))
	b.WriteString(faintStyle.Render(fmt.Sprintf("  +%d -%d", added, removed)))
	b.WriteString("\n\n")

	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(ui.ColorizeDiff(m.proposal.String()))
	}
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("y/enter: apply  n/q/esc: abort  j/k: scroll"))
	return b.String()
}

func (m *Model) renderSummary() string {
	var b strings.Builder

	if m.summary.Message != "" {
		b.WriteString(headerStyle.Render(m.summary.Message))
		b.WriteString("\n\n")
	}

	hasContent := false
	section := func(title string, style lipgloss.Style, paths []string) {
		if len(paths) == 0 {
			return
		}
		hasContent = true
		b.WriteString(style.Render(title))
		b.WriteString("\n")
		for _, f := range paths {
			b.WriteString(fmt.Sprintf("  %s\n", pathStyle.Render(f)))
		}
	}
	section("Created:", successStyle, m.summary.Created)
	section("Modified:", successStyle, m.summary.Modified)
	section("Deleted:", warnStyle, m.summary.Deleted)
	section("Failed:", errorStyle, m.summary.Failed)

	if !hasContent && m.summary.Message == "" {
		b.WriteString(faintStyle.Render("Nothing to do."))
		b.WriteString("\n")
	}

	return b.String()
}

// Summary returns the result once the program has finished, and whether there is one.
func (m Model) Summary() (model.Summary, bool) {
	return m.summary.Summary, m.state == stateSummary
}

// Err returns the error that stopped the program, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) plan() tea.Msg {
	content, err := m.app.ReadSource()
	if err != nil {
		return errorMsg{err}
	}
	if content == "" {
		return summaryMsg{model.Summary{Operation: model.OperationUpdate, Message: "Source is empty. Nothing to process."}}
	}
	proposal, err := m.app.Plan(content)
	if err != nil {
		return errorMsg{err}
	}
	return proposalMsg{proposal}
}

func (m Model) apply() tea.Msg {
	summary, err := m.app.Apply(m.proposal)
	if err != nil {
		// Check for detailed error to print stack
		var detailed *fylia.DetailedError
		if errors.As(err, &detailed) {
			// The TUI will exit, so we can print to stderr here for the stack trace.
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
		}
		return errorMsg{err}
	}
	return summaryMsg{summary}
}
