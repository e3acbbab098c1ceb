// Package fylia wires the patch engine to its sources, storage backends and history.
package fylia

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/sokinpui/fylia.go/cli"
	"github.com/sokinpui/fylia.go/internal/diff"
	"github.com/sokinpui/fylia.go/internal/fs"
	"github.com/sokinpui/fylia.go/internal/nvim"
	"github.com/sokinpui/fylia.go/internal/parser"
	"github.com/sokinpui/fylia.go/internal/patcher"
	"github.com/sokinpui/fylia.go/internal/source"
	"github.com/sokinpui/fylia.go/internal/state"
	"github.com/sokinpui/fylia.go/internal/ui"
	"github.com/sokinpui/fylia.go/model"
)

// App orchestrates the entire application logic.
type App struct {
	cfg            *cli.Config
	disk           *fs.OSStorage
	patchCfg       patcher.Config
	stateManager   *state.Manager
	sourceProvider *source.SourceProvider
	stdout         io.Writer
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// Proposal is the set of changes planned from one input, not yet written.
type Proposal struct {
	Documents []diff.Document
	// Unchanged lists file blocks whose content already matches the file.
	Unchanged []string
}

// IsEmpty reports whether applying p would do nothing.
func (p *Proposal) IsEmpty() bool {
	return p == nil || len(p.Documents) == 0
}

// String renders the proposal as one unified diff.
func (p *Proposal) String() string {
	if p == nil {
		return ""
	}
	return diff.Render(p.Documents)
}

// New creates a new App instance.
func New(cfg *cli.Config) (*App, error) {
	disk, err := fs.NewOSStorage(cfg.Dir)
	if err != nil {
		return nil, err
	}
	patchCfg, err := patcherConfig(cfg)
	if err != nil {
		return nil, err
	}
	stateManager, err := state.New(disk.Root())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state manager: %w", err)
	}

	return &App{
		cfg:            cfg,
		disk:           disk,
		patchCfg:       patchCfg,
		stateManager:   stateManager,
		sourceProvider: source.New(cfg.Input),
		stdout:         os.Stdout,
	}, nil
}

func patcherConfig(cfg *cli.Config) (patcher.Config, error) {
	pc := patcher.Config{Relocate: cfg.Relocate}
	if !cfg.Backup {
		return pc, nil
	}
	mode, err := fs.ParseBackupMode(cfg.BackupStyle)
	if err != nil {
		return pc, err
	}
	if mode == fs.BackupNone {
		mode = fs.BackupSuffix
	}
	pc.Backup = fs.BackupPolicy{Mode: mode, Suffix: cfg.BackupSuffix}
	return pc, nil
}

// SetOutput redirects what --compare and --output-diff print.
func (a *App) SetOutput(w io.Writer) {
	a.stdout = w
}

// ReadSource returns the input text: the configured file, piped stdin or the clipboard.
func (a *App) ReadSource() (string, error) {
	return a.sourceProvider.GetContent()
}

// Plan extracts every proposed change from content and turns file blocks into diffs
// against the current files. Nothing is written.
func (a *App) Plan(content string) (*Proposal, error) {
	plan, err := parser.CreatePlan(content, a.cfg.Extensions)
	if err != nil {
		return nil, fmt.Errorf("failed to create execution plan: %w", err)
	}

	proposal := &Proposal{Documents: plan.Documents}
	previewer := patcher.New(a.disk, a.patchCfg)
	for _, inst := range plan.Instructions {
		doc, err := previewer.Preview(inst.Path, inst.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to preview %s: %w", inst.Path, err)
		}
		if doc.IsEmpty() {
			proposal.Unchanged = append(proposal.Unchanged, inst.Path)
			continue
		}
		proposal.Documents = append(proposal.Documents, doc)
	}
	return proposal, nil
}

// Apply writes a proposal and records it in the history.
func (a *App) Apply(p *Proposal) (model.Summary, error) {
	if p.IsEmpty() {
		return model.Summary{Operation: model.OperationUpdate, Message: "No valid changes were generated. Nothing to do."}, nil
	}

	storage, closeStorage, err := a.writeStorage()
	if err != nil {
		return model.Summary{}, err
	}
	defer closeStorage()

	ui.Header("--- Applying changes ---")
	res := patcher.New(storage, a.patchCfg).ApplyDocuments(p.Documents)
	if err := a.stateManager.Write(operationsFromResult(res)); err != nil {
		ui.Warning("Could not record history: %v", err)
	}
	return summarize(res, model.OperationUpdate), nil
}

// Execute executes the main application logic based on parsed flags.
func (a *App) Execute() (summary model.Summary, err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	switch {
	case a.cfg.Undo:
		return a.undoLastOperation()
	case a.cfg.Redo:
		return a.redoLastOperation()
	case a.cfg.Compare:
		return a.compareFiles()
	case a.cfg.OutputDiff:
		return a.printPlannedDiff()
	default:
		return a.processContent()
	}
}

// processContent reads the source, plans and applies without confirmation.
func (a *App) processContent() (model.Summary, error) {
	content, err := a.ReadSource()
	if err != nil {
		return model.Summary{}, err
	}
	if content == "" {
		return model.Summary{Operation: model.OperationUpdate, Message: "Source is empty. Nothing to process."}, nil
	}
	proposal, err := a.Plan(content)
	if err != nil {
		return model.Summary{}, err
	}
	return a.Apply(proposal)
}

// printPlannedDiff prints the planned changes as a unified diff to stdout.
func (a *App) printPlannedDiff() (model.Summary, error) {
	content, err := a.ReadSource()
	if err != nil {
		return model.Summary{}, err
	}
	if content == "" {
		return model.Summary{}, nil
	}
	proposal, err := a.Plan(content)
	if err != nil {
		return model.Summary{}, err
	}
	fmt.Fprint(a.stdout, proposal.String())
	return model.Summary{}, nil
}

// compareFiles prints the unified diff between two files on disk.
func (a *App) compareFiles() (model.Summary, error) {
	oldContent, err := os.ReadFile(a.cfg.CompareOld)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to read %s: %w", a.cfg.CompareOld, err)
	}
	newContent, err := os.ReadFile(a.cfg.CompareNew)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to read %s: %w", a.cfg.CompareNew, err)
	}
	label := a.cfg.Label
	if label == "" {
		label = filepath.ToSlash(a.cfg.CompareNew)
	}
	fmt.Fprint(a.stdout, diff.BuildDiff(string(oldContent), string(newContent), label).String())
	return model.Summary{}, nil
}

// writeStorage returns the backend writes go through and a function releasing it.
func (a *App) writeStorage() (fs.Storage, func(), error) {
	if !a.cfg.Nvim {
		return a.disk, func() {}, nil
	}
	manager, err := nvim.New(a.disk)
	if err != nil {
		return nil, nil, err
	}
	return manager, manager.Close, nil
}

// summarize sorts a patch result into a Summary.
func summarize(res *patcher.Result, op model.Operation) model.Summary {
	summary := model.Summary{Operation: op}
	for _, o := range res.Outcomes {
		if o.Err != nil {
			summary.Failed = append(summary.Failed, patcher.FileError{Path: o.Path, Err: o.Err}.Error())
			continue
		}
		if !o.Changed {
			continue
		}
		switch o.Action {
		case patcher.ActionCreate:
			summary.Created = append(summary.Created, o.Path)
		case patcher.ActionDelete:
			summary.Deleted = append(summary.Deleted, o.Path)
		default:
			summary.Modified = append(summary.Modified, o.Path)
		}
	}
	return summary
}
