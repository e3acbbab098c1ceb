package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOSStorage_ReadWriteRemove(t *testing.T) {
	root := t.TempDir()
	s, err := NewOSStorage(root)
	require.NoError(t, err)

	require.NoError(t, s.MkdirAll("pkg/sub"))
	require.NoError(t, s.WriteFile("pkg/sub/a.txt", "hello\n"))

	got, err := s.ReadFile("pkg/sub/a.txt")
	require.NoError(t, err)
	require.Equal(t, "hello\n", got)

	ok, err := s.Exists("pkg/sub/a.txt")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Remove("pkg/sub/a.txt"))
	ok, err = s.Exists("pkg/sub/a.txt")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOSStorage_WritePreservesMode(t *testing.T) {
	root := t.TempDir()
	script := filepath.Join(root, "run.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755))

	s, err := NewOSStorage(root)
	require.NoError(t, err)
	require.NoError(t, s.WriteFile("run.sh", "#!/bin/sh\necho hi\n"))

	info, err := os.Stat(script)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestOSStorage_ResolveRejectsEscapes(t *testing.T) {
	s, err := NewOSStorage(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"../outside.txt", "a/../../outside.txt", ".", ""} {
		_, err := s.Resolve(p)
		require.Error(t, err, "path %q", p)
	}

	abs, err := s.Resolve("inside/file.go")
	require.NoError(t, err)
	require.Equal(t, "inside/file.go", s.Rel(abs))
}

func TestOSStorage_ExistsOnDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0o755))
	s, err := NewOSStorage(root)
	require.NoError(t, err)

	_, err = s.Exists("dir")
	require.ErrorContains(t, err, "is a directory")
}

func TestNewOSStorage_RequiresDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := NewOSStorage(file)
	require.ErrorContains(t, err, "not a directory")
}

func TestParentDir(t *testing.T) {
	require.Equal(t, "", ParentDir("a.txt"))
	require.Equal(t, "a", ParentDir("a/b.txt"))
	require.Equal(t, "a/b", ParentDir("a/b/c.txt"))
}

func TestBackupPolicy_PathFor(t *testing.T) {
	fixed := func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	tests := []struct {
		name   string
		policy BackupPolicy
		want   string
	}{
		{name: "default suffix", policy: BackupPolicy{Mode: BackupSuffix}, want: "src/a.go.backup"},
		{name: "custom suffix", policy: BackupPolicy{Mode: BackupSuffix, Suffix: ".orig"}, want: "src/a.go.orig"},
		{name: "timestamp", policy: BackupPolicy{Mode: BackupTimestamp, Now: fixed}, want: "src/a.go.20260304-050607.backup"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.policy.PathFor("src/a.go"))
		})
	}
}

func TestBackupPolicy_Write(t *testing.T) {
	s, err := NewOSStorage(t.TempDir())
	require.NoError(t, err)

	path, err := BackupPolicy{}.Write(s, "a.txt", "old\n")
	require.NoError(t, err)
	require.Empty(t, path)

	path, err = BackupPolicy{Mode: BackupSuffix}.Write(s, "a.txt", "old\n")
	require.NoError(t, err)
	require.Equal(t, "a.txt.backup", path)
	got, err := s.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "old\n", got)
}

func TestParseBackupMode(t *testing.T) {
	m, err := ParseBackupMode("timestamp")
	require.NoError(t, err)
	require.Equal(t, BackupTimestamp, m)

	_, err = ParseBackupMode("weekly")
	require.Error(t, err)
}
