package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/sokinpui/fylia.go/internal/fs"
)

// Config holds all the command-line flag values.
type Config struct {
	Yes          bool
	OutputDiff   bool
	Compare      bool
	Label        string
	Undo         bool
	Redo         bool
	Dir          string
	Extensions   []string
	Backup       bool
	BackupStyle  string
	BackupSuffix string
	Relocate     bool
	Nvim         bool
	NoAnimation  bool

	// Input is the file to read instead of stdin or the clipboard.
	Input string
	// CompareOld and CompareNew are the files diffed by --compare.
	CompareOld string
	CompareNew string
}

// ParseFlags defines and parses command-line flags using pflag.
func ParseFlags() (*Config, error) {
	return Parse(os.Args[1:], os.Stderr)
}

// Parse parses args (without the program name). Usage and errors are written to out.
func Parse(args []string, out io.Writer) (*Config, error) {
	cfg := &Config{}
	flags := pflag.NewFlagSet("fylia", pflag.ContinueOnError)
	flags.SetOutput(out)

	// Define flags
	flags.BoolVarP(&cfg.Yes, "yes", "y", false, "Apply the changes without the interactive preview.")
	flags.BoolVarP(&cfg.OutputDiff, "output-diff", "o", false, "Print the planned unified diff to stdout and exit without writing.")
	flags.BoolVarP(&cfg.Compare, "compare", "c", false, "Print the unified diff between two files: fylia -c OLD NEW.")
	flags.StringVar(&cfg.Label, "label", "", "File name used in the --compare headers (defaults to NEW).")
	flags.StringVarP(&cfg.Dir, "dir", "d", ".", "Base directory that diff paths are resolved against.")
	flags.StringSliceVarP(&cfg.Extensions, "extension", "e", []string{}, "Filter by extension. Use 'diff' to process only diff blocks (e.g., 'py', 'js', 'diff').")
	flags.BoolVarP(&cfg.Backup, "backup", "b", false, "Keep a copy of every file before it is overwritten or deleted.")
	flags.StringVar(&cfg.BackupStyle, "backup-style", "suffix", "Backup naming: 'suffix' (FILE.backup) or 'timestamp' (FILE.<time>.backup).")
	flags.StringVar(&cfg.BackupSuffix, "backup-suffix", ".backup", "Suffix appended to backup files.")
	flags.BoolVar(&cfg.Relocate, "relocate", false, "Apply hunks whose context moved to the nearest place it is found.")
	flags.BoolVar(&cfg.Nvim, "nvim", false, "Write files through Neovim buffers.")
	flags.BoolVar(&cfg.NoAnimation, "no-animation", false, "Disable loading spinner.")

	// Mutually exclusive history group
	flags.BoolVarP(&cfg.Undo, "undo", "u", false, "Undo the last operation.")
	flags.BoolVarP(&cfg.Redo, "redo", "r", false, "Redo the last undone operation.")

	flags.Usage = func() {
		fmt.Fprintln(out, "Usage: fylia [flags] [FILE]")
		fmt.Fprintln(out, "\nApply unified diffs and file blocks from FILE, stdin (pipe) or the clipboard.")
		fmt.Fprintln(out, "\nExample: git diff | fylia -d ../other-checkout -y")
		fmt.Fprintln(out, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	// Validate mutually exclusive flags
	modes := 0
	for _, on := range []bool{cfg.Undo, cfg.Redo, cfg.Compare, cfg.OutputDiff} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return nil, fmt.Errorf("error: --undo, --redo, --compare and --output-diff are mutually exclusive")
	}

	rest := flags.Args()
	switch {
	case cfg.Compare:
		if len(rest) != 2 {
			return nil, fmt.Errorf("error: --compare needs exactly two files, got %d", len(rest))
		}
		cfg.CompareOld, cfg.CompareNew = rest[0], rest[1]
	case cfg.Undo || cfg.Redo:
		if len(rest) > 0 {
			return nil, fmt.Errorf("error: --undo and --redo take no arguments")
		}
	default:
		if len(rest) > 1 {
			return nil, fmt.Errorf("error: expected at most one input file, got %d", len(rest))
		}
		if len(rest) == 1 {
			cfg.Input = rest[0]
		}
	}

	if _, err := fs.ParseBackupMode(cfg.BackupStyle); err != nil {
		return nil, fmt.Errorf("error: --backup-style: %w", err)
	}

	// Normalize extensions
	for i, ext := range cfg.Extensions {
		if len(ext) > 0 && ext[0] != '.' {
			cfg.Extensions[i] = "." + ext
		}
	}

	return cfg, nil
}

// Interactive reports whether the run should go through the preview TUI.
func (c *Config) Interactive() bool {
	return !c.Yes && !c.OutputDiff && !c.Compare && !c.Undo && !c.Redo
}
