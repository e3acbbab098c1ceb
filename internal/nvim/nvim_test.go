package nvim

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sokinpui/fylia.go/internal/fs"
)

func TestBufferLines(t *testing.T) {
	tests := []struct {
		content string
		lines   []string
		eol     bool
	}{
		{content: "", lines: []string{}, eol: true},
		{content: "a\n", lines: []string{"a"}, eol: true},
		{content: "a\nb", lines: []string{"a", "b"}, eol: false},
		{content: "a\n\n", lines: []string{"a", ""}, eol: true},
	}
	for _, tc := range tests {
		lines, eol := bufferLines(tc.content)
		got := make([]string, len(lines))
		for i, l := range lines {
			got[i] = string(l)
		}
		require.Equal(t, tc.lines, got, "content %q", tc.content)
		require.Equal(t, tc.eol, eol, "content %q", tc.content)
	}
}

func TestManager_WriteAndRemove(t *testing.T) {
	if _, err := exec.LookPath("nvim"); err != nil {
		t.Skip("nvim not installed")
	}
	t.Setenv("NVIM", "")
	t.Setenv("NVIM_LISTEN_ADDRESS", "")

	root := t.TempDir()
	disk, err := fs.NewOSStorage(root)
	require.NoError(t, err)
	m, err := New(disk)
	require.NoError(t, err)
	defer m.Close()

	for _, content := range []string{"hello\nworld\n", "no newline"} {
		require.NoError(t, m.WriteFile("a.txt", content))
		data, err := os.ReadFile(filepath.Join(root, "a.txt"))
		require.NoError(t, err)
		require.Equal(t, content, string(data))
	}

	require.NoError(t, m.Remove("a.txt"))
	ok, err := m.Exists("a.txt")
	require.NoError(t, err)
	require.False(t, ok)
}
