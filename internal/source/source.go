package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/sokinpui/fylia.go/internal/ui"
)

// SourceProvider determines and retrieves the source content.
type SourceProvider struct {
	// Path, when set, is read instead of stdin or the clipboard. "-" means stdin.
	Path string

	stdin     *os.File
	clipboard func() (string, error)
}

// New creates a new SourceProvider reading path, or stdin/clipboard when path is empty.
func New(path string) *SourceProvider {
	return &SourceProvider{
		Path:      path,
		stdin:     os.Stdin,
		clipboard: clipboard.ReadAll,
	}
}

// GetContent retrieves content from the configured file, stdin (if piped) or the clipboard.
func (sp *SourceProvider) GetContent() (string, error) {
	if sp.Path == "-" {
		return sp.readStdin()
	}
	if sp.Path != "" {
		ui.Header("--- Reading from %s ---", sp.Path)
		data, err := os.ReadFile(sp.Path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", sp.Path, err)
		}
		return string(data), nil
	}

	if sp.isPiped() {
		return sp.readStdin()
	}

	ui.Header("--- Reading from clipboard ---")
	content, err := sp.clipboard()
	if err != nil {
		return "", fmt.Errorf("failed to read from clipboard: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		ui.Warning("Clipboard is empty. Nothing to process.")
		return "", nil
	}
	return content, nil
}

func (sp *SourceProvider) isPiped() bool {
	if sp.stdin == nil {
		return false
	}
	stat, err := sp.stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

func (sp *SourceProvider) readStdin() (string, error) {
	ui.Header("--- Reading from stdin ---")
	content, err := io.ReadAll(sp.stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	return string(content), nil
}
