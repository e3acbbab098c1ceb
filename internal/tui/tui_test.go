package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/fylia.go/fylia"
	"github.com/sokinpui/fylia.go/internal/diff"
	"github.com/sokinpui/fylia.go/model"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func previewModel(t *testing.T) Model {
	t.Helper()
	proposal := &fylia.Proposal{Documents: []diff.Document{
		diff.BuildDiff("a\nb\n", "a\nc\n", "x.txt"),
	}}
	m := New(nil, true)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, cmd := update(t, m, proposalMsg{proposal})
	require.Nil(t, cmd)
	require.Equal(t, statePreview, m.state)
	return m
}

func TestPreviewSizesViewport(t *testing.T) {
	m := previewModel(t)
	require.True(t, m.ready)
	require.Equal(t, 80, m.viewport.Width)
	require.Equal(t, 24-chromeHeight, m.viewport.Height)

	view := m.View()
	require.Contains(t, view, "1 file(s) to change")
	require.Contains(t, view, "+++ b/x.txt")
	require.Contains(t, view, "+c")

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	require.Equal(t, 100, m.viewport.Width)
	require.Equal(t, 30-chromeHeight, m.viewport.Height)
}

func TestAbortWritesNothing(t *testing.T) {
	for _, key := range []tea.KeyMsg{keyRunes("n"), keyRunes("q"), {Type: tea.KeyEsc}} {
		m := previewModel(t)
		m, cmd := update(t, m, key)
		require.NotNil(t, cmd)
		require.IsType(t, tea.QuitMsg{}, cmd())

		summary, done := m.Summary()
		require.True(t, done)
		require.Contains(t, summary.Message, "Aborted")
		require.Empty(t, summary.Changed())
	}
}

func TestConfirmStartsApplying(t *testing.T) {
	for _, key := range []tea.KeyMsg{keyRunes("y"), {Type: tea.KeyEnter}} {
		m := previewModel(t)
		m, cmd := update(t, m, key)
		require.NotNil(t, cmd)
		require.Equal(t, stateApplying, m.state)
		require.Equal(t, "Applying changes...", m.View())

		// Quitting mid-write is only possible with ctrl+c.
		m, cmd = update(t, m, keyRunes("q"))
		require.Nil(t, cmd)
		require.Equal(t, stateApplying, m.state)
	}
}

func TestEmptyProposalQuits(t *testing.T) {
	m := New(nil, true)
	m, cmd := update(t, m, proposalMsg{&fylia.Proposal{Unchanged: []string{"a.go"}}})
	require.NotNil(t, cmd)
	summary, done := m.Summary()
	require.True(t, done)
	require.Contains(t, summary.Message, "Nothing to do")
}

func TestSummaryView(t *testing.T) {
	m := New(nil, true)
	m, cmd := update(t, m, summaryMsg{model.Summary{
		Operation: model.OperationUpdate,
		Created:   []string{"new.go"},
		Modified:  []string{"main.go"},
		Deleted:   []string{"old.go"},
		Failed:    []string{"bad.go: patch does not apply"},
	}})
	require.NotNil(t, cmd)

	view := m.View()
	for _, want := range []string{"Created:", "new.go", "Modified:", "main.go", "Deleted:", "old.go", "Failed:", "bad.go: patch does not apply"} {
		require.Contains(t, view, want)
	}
}

func TestErrorView(t *testing.T) {
	m := New(nil, true)
	m, cmd := update(t, m, errorMsg{errors.New("boom")})
	require.NotNil(t, cmd)
	require.EqualError(t, m.Err(), "boom")
	require.Contains(t, m.View(), "boom")
	_, done := m.Summary()
	require.False(t, done)
}
