// Package nvim provides a storage backend that writes files through Neovim buffers, so an
// editor attached to the same instance sees every change and can undo it natively.
package nvim

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/neovim/go-client/nvim"

	"github.com/sokinpui/fylia.go/internal/fs"
)

// Manager handles the connection and interaction with a Neovim instance. It implements
// fs.Storage: writes and removals go through buffers, reads come straight from disk.
type Manager struct {
	nvim          *nvim.Nvim
	disk          *fs.OSStorage
	isSelfStarted bool
	cmd           *exec.Cmd
	socketPath    string
}

var _ fs.Storage = (*Manager)(nil)

// New creates a new Neovim manager, connecting to an existing instance
// or starting a new headless one.
func New(disk *fs.OSStorage) (*Manager, error) {
	// Try to connect to a running instance first.
	for _, env := range []string{"NVIM", "NVIM_LISTEN_ADDRESS"} {
		if addr := os.Getenv(env); addr != "" {
			v, err := nvim.Dial(addr)
			if err == nil {
				return &Manager{nvim: v, disk: disk}, nil
			}
		}
	}

	// If that fails, start a temporary headless instance.
	tmpDir, err := os.MkdirTemp("", "fylia-nvim-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir for nvim: %w", err)
	}
	socketPath := filepath.Join(tmpDir, "nvim.sock")

	cmd := exec.Command("nvim", "--headless", "--clean", "--listen", socketPath)
	if err := cmd.Start(); err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("failed to start headless nvim: %w. Is 'nvim' in your PATH?", err)
	}

	// Wait for the socket file to appear.
	for i := 0; i < 40; i++ {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	v, err := nvim.Dial(socketPath)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("failed to connect to headless nvim: %w", err)
	}

	m := &Manager{
		nvim:          v,
		disk:          disk,
		isSelfStarted: true,
		cmd:           cmd,
		socketPath:    socketPath,
	}
	if err := m.nvim.Command("set noswapfile"); err != nil {
		m.Close()
		return nil, fmt.Errorf("failed to configure headless nvim: %w", err)
	}
	return m, nil
}

// Close disconnects from Neovim and cleans up if it was self-started.
func (m *Manager) Close() {
	if m.nvim != nil {
		m.nvim.Close()
	}
	if m.isSelfStarted && m.cmd != nil && m.cmd.Process != nil {
		if err := m.cmd.Process.Kill(); err == nil {
			m.cmd.Wait()
			os.RemoveAll(filepath.Dir(m.socketPath))
		}
	}
}

func (m *Manager) ReadFile(path string) (string, error) {
	return m.disk.ReadFile(path)
}

func (m *Manager) Exists(path string) (bool, error) {
	return m.disk.Exists(path)
}

func (m *Manager) MkdirAll(dir string) error {
	return m.disk.MkdirAll(dir)
}

// WriteFile loads path into a buffer, replaces its lines and writes it.
func (m *Manager) WriteFile(path, content string) error {
	abs, err := m.disk.Resolve(path)
	if err != nil {
		return err
	}
	name, err := m.escape(abs)
	if err != nil {
		return err
	}

	lines, eol := bufferLines(content)
	eolOption := "noendofline nofixendofline"
	if eol {
		eolOption = "endofline fixendofline"
	}

	b := m.nvim.NewBatch()
	b.Command("edit! " + name)
	b.SetBufferLines(0, 0, -1, true, lines)
	b.Command("setlocal " + eolOption)
	b.Command("write!")
	if err := b.Execute(); err != nil {
		return fmt.Errorf("nvim failed to write %s: %w", path, err)
	}
	return nil
}

// Remove deletes the file and wipes any buffer still showing it.
func (m *Manager) Remove(path string) error {
	abs, err := m.disk.Resolve(path)
	if err != nil {
		return err
	}
	if err := m.disk.Remove(path); err != nil {
		return err
	}
	name, err := m.escape(abs)
	if err != nil {
		return err
	}
	if err := m.nvim.Command("silent! bwipeout! " + name); err != nil {
		return fmt.Errorf("nvim failed to close buffer for %s: %w", path, err)
	}
	return nil
}

func (m *Manager) escape(abs string) (string, error) {
	var name string
	if err := m.nvim.Call("fnameescape", &name, abs); err != nil {
		return "", fmt.Errorf("nvim fnameescape: %w", err)
	}
	return name, nil
}

// bufferLines converts file content to buffer lines. The flag reports whether the content
// ends with a newline.
func bufferLines(content string) ([][]byte, bool) {
	if content == "" {
		return [][]byte{}, true
	}
	eol := strings.HasSuffix(content, "\n")
	parts := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	lines := make([][]byte, len(parts))
	for i, s := range parts {
		lines[i] = []byte(s)
	}
	return lines, eol
}
