package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func op(path string) Operation {
	return Operation{Path: path, Action: "modify", Patch: "--- a/" + path + "\n+++ b/" + path + "\n"}
}

func TestManager_UndoRedo(t *testing.T) {
	dir := t.TempDir()
	m, err := New(dir)
	require.NoError(t, err)

	ops, err := m.GetOperationsToUndo()
	require.NoError(t, err)
	require.Nil(t, ops)

	require.NoError(t, m.Write([]Operation{op("a.txt")}))
	require.NoError(t, m.Write([]Operation{op("b.txt"), op("c.txt")}))

	ops, err = m.GetOperationsToUndo()
	require.NoError(t, err)
	require.Equal(t, []Operation{op("b.txt"), op("c.txt")}, ops)

	ops, err = m.GetOperationsToRedo()
	require.NoError(t, err)
	require.Equal(t, []Operation{op("b.txt"), op("c.txt")}, ops)

	ops, err = m.GetOperationsToRedo()
	require.NoError(t, err)
	require.Nil(t, ops)
}

func TestManager_WriteTruncatesRedo(t *testing.T) {
	m, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, m.Write([]Operation{op("a.txt")}))
	require.NoError(t, m.Write([]Operation{op("b.txt")}))
	_, err = m.GetOperationsToUndo()
	require.NoError(t, err)

	require.NoError(t, m.Write([]Operation{op("c.txt")}))
	ops, err := m.GetOperationsToRedo()
	require.NoError(t, err)
	require.Nil(t, ops)

	ops, err = m.GetOperationsToUndo()
	require.NoError(t, err)
	require.Equal(t, []Operation{op("c.txt")}, ops)
	ops, err = m.GetOperationsToUndo()
	require.NoError(t, err)
	require.Equal(t, []Operation{op("a.txt")}, ops)
}

func TestManager_Persists(t *testing.T) {
	dir := t.TempDir()
	m, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, m.Write([]Operation{op("a.txt")}))

	reloaded, err := New(dir)
	require.NoError(t, err)
	ops, err := reloaded.GetOperationsToUndo()
	require.NoError(t, err)
	require.Equal(t, []Operation{op("a.txt")}, ops)

	_, err = os.Stat(filepath.Join(dir, ".fylia", "state.json"))
	require.NoError(t, err)
}

func TestManager_RejectsCorruptState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".fylia"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".fylia", "state.json"), []byte("{not json"), 0o644))

	_, err := New(dir)
	require.ErrorContains(t, err, "invalid state file")
}

func TestManager_EmptyWriteIsIgnored(t *testing.T) {
	m, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, m.Write(nil))
	ops, err := m.GetOperationsToUndo()
	require.NoError(t, err)
	require.Nil(t, ops)
}

func TestManager_CreatesDirOnFirstWrite(t *testing.T) {
	dir := t.TempDir()
	m, err := New(dir)
	require.NoError(t, err)
	require.NoDirExists(t, m.StateDir)

	_, err = m.GetOperationsToUndo()
	require.NoError(t, err)
	require.NoDirExists(t, m.StateDir)

	require.NoError(t, m.Write([]Operation{op("a.txt")}))
	require.FileExists(t, filepath.Join(dir, stateDirName, stateFileName))
}
