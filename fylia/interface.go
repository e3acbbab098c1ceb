package fylia

import (
	"fmt"

	"github.com/sokinpui/fylia.go/cli"
	"github.com/sokinpui/fylia.go/internal/diff"
	"github.com/sokinpui/fylia.go/model"
)

// Config for using fylia as a library.
type Config struct {
	// Dir is the base directory paths are resolved against. Empty means the working directory.
	Dir string
	// Filter by extension. Use 'diff' to process only diff blocks (e.g., 'py', 'js', 'diff').
	Extensions []string
	// Backup keeps FILE.backup copies before overwrites and deletions.
	Backup bool
	// Relocate applies hunks whose context moved to the nearest place it is found.
	Relocate bool
	// Nvim writes through Neovim buffers.
	Nvim bool
}

func (c Config) cliConfig() *cli.Config {
	cfg := &cli.Config{
		Dir:          c.Dir,
		Backup:       c.Backup,
		BackupStyle:  "suffix",
		BackupSuffix: ".backup",
		Relocate:     c.Relocate,
		Nvim:         c.Nvim,
	}
	for _, ext := range c.Extensions {
		if len(ext) > 0 && ext[0] != '.' {
			ext = "." + ext
		}
		cfg.Extensions = append(cfg.Extensions, ext)
	}
	return cfg
}

// Apply parses the given content string and applies the diffs and file blocks it holds.
// It returns a summary of the operations in a map.
func Apply(content string, config Config) (map[string][]string, error) {
	app, err := New(config.cliConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fylia app: %w", err)
	}

	proposal, err := app.Plan(content)
	if err != nil {
		return nil, err
	}
	summary, err := app.Apply(proposal)
	if err != nil {
		return nil, err
	}
	return summaryMap(summary), nil
}

// Preview returns the unified diff Apply would write for content, without writing.
func Preview(content string, config Config) (string, error) {
	app, err := New(config.cliConfig())
	if err != nil {
		return "", fmt.Errorf("failed to initialize fylia app: %w", err)
	}
	proposal, err := app.Plan(content)
	if err != nil {
		return "", err
	}
	return proposal.String(), nil
}

// Diff renders the unified diff from oldContent to newContent under label.
func Diff(oldContent, newContent, label string) string {
	return diff.BuildDiff(oldContent, newContent, label).String()
}

func summaryMap(summary model.Summary) map[string][]string {
	return map[string][]string{
		"Created":  summary.Created,
		"Modified": summary.Modified,
		"Deleted":  summary.Deleted,
		"Failed":   summary.Failed,
	}
}
