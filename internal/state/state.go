package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	stateDirName  = ".fylia"
	stateFileName = "state.json"
)

// Operation is one applied file change. Patch is the forward unified diff that was written;
// undo applies its reverse, redo applies it again.
type Operation struct {
	Path   string `json:"path"`
	Action string `json:"action"`
	Patch  string `json:"patch"`
}

// HistoryEntry represents one complete run of the tool.
type HistoryEntry struct {
	Timestamp  int64       `json:"timestamp"`
	Operations []Operation `json:"operations"`
}

// State represents the entire state file.
type State struct {
	History      []HistoryEntry `json:"history"`
	CurrentIndex int            `json:"current_index"`
}

// Manager handles the lifecycle of the state file.
type Manager struct {
	statePath string
	state     *State
	StateDir  string
	now       func() time.Time
}

// New loads the journal kept under baseDir. The state directory is created on the first save.
func New(baseDir string) (*Manager, error) {
	stateDir := filepath.Join(baseDir, stateDirName)
	m := &Manager{
		statePath: filepath.Join(stateDir, stateFileName),
		StateDir:  stateDir,
		now:       time.Now,
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) load() error {
	m.state = &State{CurrentIndex: -1, History: []HistoryEntry{}}
	data, err := os.ReadFile(m.statePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not read state file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid state file %s: %w", m.statePath, err)
	}
	if s.CurrentIndex < -1 || s.CurrentIndex >= len(s.History) {
		return fmt.Errorf("invalid state file %s: index %d out of range", m.statePath, s.CurrentIndex)
	}
	if s.History == nil {
		s.History = []HistoryEntry{}
	}
	m.state = &s
	return nil
}

func (m *Manager) save() error {
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(m.StateDir, 0o755); err != nil {
		return fmt.Errorf("could not create state directory: %w", err)
	}
	tmp := m.statePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("could not write state file: %w", err)
	}
	if err := os.Rename(tmp, m.statePath); err != nil {
		return fmt.Errorf("could not write state file: %w", err)
	}
	return nil
}

// Write adds a new set of operations to the history, discarding anything that could
// still have been redone.
func (m *Manager) Write(operations []Operation) error {
	if len(operations) == 0 {
		return nil
	}
	if m.state.CurrentIndex < len(m.state.History)-1 {
		m.state.History = m.state.History[:m.state.CurrentIndex+1]
	}

	newEntry := HistoryEntry{
		Timestamp:  m.now().UTC().Unix(),
		Operations: operations,
	}
	m.state.History = append(m.state.History, newEntry)
	m.state.CurrentIndex++
	return m.save()
}

// GetOperationsToUndo gets the last operations and moves the history pointer back.
func (m *Manager) GetOperationsToUndo() ([]Operation, error) {
	if m.state.CurrentIndex < 0 {
		return nil, nil
	}
	ops := m.state.History[m.state.CurrentIndex].Operations
	m.state.CurrentIndex--
	if err := m.save(); err != nil {
		m.state.CurrentIndex++
		return nil, err
	}
	return ops, nil
}

// GetOperationsToRedo gets the next operations and moves the history pointer forward.
func (m *Manager) GetOperationsToRedo() ([]Operation, error) {
	nextIndex := m.state.CurrentIndex + 1
	if nextIndex >= len(m.state.History) {
		return nil, nil
	}
	m.state.CurrentIndex = nextIndex
	if err := m.save(); err != nil {
		m.state.CurrentIndex--
		return nil, err
	}
	return m.state.History[nextIndex].Operations, nil
}
