package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/sokinpui/fylia.go/cli"
	"github.com/sokinpui/fylia.go/fylia"
	"github.com/sokinpui/fylia.go/internal/tui"
	"github.com/sokinpui/fylia.go/internal/ui"
	"github.com/sokinpui/fylia.go/model"
)

func main() {
	cfg, err := cli.ParseFlags()
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		// pflag already prints the error message.
		os.Exit(1)
	}

	app, err := fylia.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if cfg.Interactive() {
		os.Exit(runInteractive(app, cfg))
	}
	os.Exit(run(app))
}

// runInteractive shows the planned diff and asks before writing.
func runInteractive(app *fylia.App, cfg *cli.Config) int {
	prev := ui.SetOutput(io.Discard)
	var opts []tea.ProgramOption
	// Piped input leaves stdin at EOF; read keys from the terminal instead.
	if info, err := os.Stdin.Stat(); err == nil && info.Mode()&os.ModeCharDevice == 0 {
		opts = append(opts, tea.WithInputTTY())
	}
	final, err := tea.NewProgram(tui.New(app, cfg.NoAnimation), opts...).Run()
	ui.SetOutput(prev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		return 1
	}

	m, ok := final.(tui.Model)
	if !ok || m.Err() != nil {
		return 1
	}
	if summary, done := m.Summary(); done && len(summary.Failed) > 0 {
		return 1
	}
	return 0
}

// run executes the non-interactive modes and prints their summary.
func run(app *fylia.App) int {
	summary, err := app.Execute()
	if err != nil {
		ui.Error("Error: %v", err)
		var detailed *fylia.DetailedError
		if errors.As(err, &detailed) {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
		}
		return 1
	}

	switch {
	case summary.Operation == model.OperationUndo && len(summary.Changed())+len(summary.Failed) > 0:
		ui.PrintRevertSummary(summary.Changed(), summary.Failed)
	case summary.Operation == model.OperationRedo && len(summary.Changed())+len(summary.Failed) > 0:
		ui.PrintRedoSummary(summary.Changed(), summary.Failed)
	case summary.Operation == model.OperationUpdate && summary.Message == "":
		ui.PrintUpdateSummary(summary.Modified, summary.Created, summary.Deleted, summary.Failed)
	}
	if summary.Message != "" {
		ui.Info("%s", summary.Message)
	}

	if len(summary.Failed) > 0 {
		return 1
	}
	return 0
}
