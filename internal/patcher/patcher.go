// Package patcher replays unified diffs against files in a storage root.
package patcher

import (
	"errors"
	"fmt"

	"github.com/sokinpui/fylia.go/internal/diff"
	"github.com/sokinpui/fylia.go/internal/fs"
	"github.com/sokinpui/fylia.go/internal/ui"
)

// Action is what happened, or was attempted, on a file.
type Action int

const (
	ActionModify Action = iota
	ActionCreate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionDelete:
		return "delete"
	default:
		return "modify"
	}
}

// ParseAction is the inverse of Action.String.
func ParseAction(s string) (Action, error) {
	switch s {
	case "create":
		return ActionCreate, nil
	case "delete":
		return ActionDelete, nil
	case "modify":
		return ActionModify, nil
	}
	return ActionModify, fmt.Errorf("unknown action %q", s)
}

func actionOf(op FileOp) Action {
	switch op.(type) {
	case CreateFile:
		return ActionCreate
	case DeleteFile:
		return ActionDelete
	default:
		return ActionModify
	}
}

// Config controls how an Applier writes.
type Config struct {
	// Backup decides whether pre-images are kept before overwrites and deletions.
	Backup fs.BackupPolicy
	// Relocate lets a hunk that no longer matches at its recorded line apply at the nearest
	// position where its context and removed lines are found.
	Relocate bool
}

// Outcome is the terminal state of one file: applied when Err is nil, failed otherwise.
type Outcome struct {
	Path   string
	Action Action
	Err    error
	// Changed is false when the operation had nothing to do, such as deleting an absent file.
	Changed bool
	// Backup is the path the pre-image was written to, if any.
	Backup string
	// Applied is the diff of what was actually written.
	Applied diff.Document
}

// Result summarizes one Apply call.
type Result struct {
	Success       bool
	FilesModified []string
	Errors        []FileError
	Outcomes      []Outcome
}

func (r *Result) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Err != nil {
		r.Errors = append(r.Errors, FileError{Path: o.Path, Err: o.Err})
		return
	}
	if o.Changed {
		r.FilesModified = append(r.FilesModified, o.Path)
	}
}

// Applier applies patches to a Storage.
type Applier struct {
	storage fs.Storage
	cfg     Config
}

// New creates an Applier writing to storage.
func New(storage fs.Storage, cfg Config) *Applier {
	return &Applier{storage: storage, cfg: cfg}
}

// Apply parses text and applies every file section in it. A parse error aborts the call
// before anything is written. Per-file failures are collected in the Result.
func (a *Applier) Apply(text string) (*Result, error) {
	docs, err := diff.Parse(text)
	if err != nil {
		return nil, err
	}
	return a.ApplyDocuments(docs), nil
}

// ApplyDocuments applies each document independently, in order. Documents without hunks
// are skipped.
func (a *Applier) ApplyDocuments(docs []diff.Document) *Result {
	res := &Result{}
	for _, doc := range docs {
		if doc.IsEmpty() {
			continue
		}
		res.add(a.applyDocument(doc))
	}
	res.Success = len(res.Errors) == 0
	return res
}

// ApplyOps runs already classified operations, in order.
func (a *Applier) ApplyOps(ops []FileOp) *Result {
	res := &Result{}
	for _, op := range ops {
		path := op.TargetPath()
		current, exists, err := a.read(path)
		if err != nil {
			res.add(a.fail(Outcome{Path: path, Action: actionOf(op)}, err))
			continue
		}
		res.add(a.dispatch(op, current, exists))
	}
	res.Success = len(res.Errors) == 0
	return res
}

// Preview returns the diff that writing proposed to path would produce. A missing file is
// treated as empty. Nothing is written.
func (a *Applier) Preview(path, proposed string) (diff.Document, error) {
	current, exists, err := a.read(path)
	if err != nil {
		return diff.Document{}, err
	}
	doc := diff.BuildDiff(current, proposed, path)
	if !exists {
		doc.SourceLabel = diff.DevNull
	}
	return doc, nil
}

func (a *Applier) applyDocument(doc diff.Document) Outcome {
	path := doc.Path()
	current, exists, err := a.read(path)
	if err != nil {
		return a.fail(Outcome{Path: path}, err)
	}
	op, err := Classify(doc, current, exists)
	if err != nil {
		return a.fail(Outcome{Path: path}, err)
	}
	return a.dispatch(op, current, exists)
}

func (a *Applier) dispatch(op FileOp, current string, exists bool) Outcome {
	switch op := op.(type) {
	case CreateFile:
		return a.create(op, current, exists)
	case DeleteFile:
		return a.remove(op, current, exists)
	case ModifyFile:
		return a.modify(op, current, exists)
	default:
		return a.fail(Outcome{Path: op.TargetPath()}, fmt.Errorf("unsupported file operation %T", op))
	}
}

func (a *Applier) create(op CreateFile, current string, exists bool) Outcome {
	out := Outcome{Path: op.Path, Action: ActionCreate}
	if exists && current != "" {
		return a.fail(out, &StaleHunkError{Path: op.Path, Reason: "file already exists"})
	}
	if dir := fs.ParentDir(op.Path); dir != "" {
		if err := a.storage.MkdirAll(dir); err != nil {
			return a.fail(out, &IOError{Op: "mkdir", Path: dir, Err: err})
		}
	}
	if exists {
		if err := a.backup(&out, current); err != nil {
			return a.fail(out, err)
		}
	}
	if err := a.storage.WriteFile(op.Path, op.Content); err != nil {
		return a.fail(out, &IOError{Op: "write", Path: op.Path, Err: err})
	}

	out.Changed = true
	out.Applied = diff.BuildDiff("", op.Content, op.Path)
	out.Applied.SourceLabel = diff.DevNull
	ui.Success("  -> Created %s", op.Path)
	return out
}

func (a *Applier) remove(op DeleteFile, current string, exists bool) Outcome {
	out := Outcome{Path: op.Path, Action: ActionDelete}
	if !exists {
		ui.Info("  -> %s is already absent", op.Path)
		return out
	}
	if current != op.Expected {
		return a.fail(out, &StaleHunkError{Path: op.Path, Reason: "file content differs from the lines being removed"})
	}
	if err := a.backup(&out, current); err != nil {
		return a.fail(out, err)
	}
	if err := a.storage.Remove(op.Path); err != nil {
		return a.fail(out, &IOError{Op: "remove", Path: op.Path, Err: err})
	}

	out.Changed = true
	out.Applied = diff.BuildDiff(current, "", op.Path)
	out.Applied.TargetLabel = diff.DevNull
	ui.Success("  -> Deleted %s", op.Path)
	return out
}

func (a *Applier) modify(op ModifyFile, current string, exists bool) Outcome {
	out := Outcome{Path: op.Path, Action: ActionModify}
	if !exists {
		return a.fail(out, &MissingTargetError{Path: op.Path})
	}
	lines, err := applyHunks(diff.SplitLines(current), op.Hunks, a.cfg.Relocate)
	if err != nil {
		var stale *StaleHunkError
		if errors.As(err, &stale) {
			stale.Path = op.Path
		}
		return a.fail(out, err)
	}
	after := diff.JoinLines(lines)
	if err := a.backup(&out, current); err != nil {
		return a.fail(out, err)
	}
	if err := a.storage.WriteFile(op.Path, after); err != nil {
		return a.fail(out, &IOError{Op: "write", Path: op.Path, Err: err})
	}

	out.Changed = true
	out.Applied = diff.BuildDiff(current, after, op.Path)
	ui.Success("  -> Modified %s", op.Path)
	return out
}

// backup writes the pre-image before a destructive operation.
func (a *Applier) backup(out *Outcome, current string) error {
	path, err := a.cfg.Backup.Write(a.storage, out.Path, current)
	if err != nil {
		return &IOError{Op: "backup", Path: path, Err: err}
	}
	out.Backup = path
	return nil
}

func (a *Applier) read(path string) (string, bool, error) {
	if path == "" {
		return "", false, ErrNoPath
	}
	exists, err := a.storage.Exists(path)
	if err != nil {
		return "", false, &IOError{Op: "read", Path: path, Err: err}
	}
	if !exists {
		return "", false, nil
	}
	content, err := a.storage.ReadFile(path)
	if err != nil {
		return "", false, &IOError{Op: "read", Path: path, Err: err}
	}
	return content, true, nil
}

func (a *Applier) fail(out Outcome, err error) Outcome {
	out.Err = err
	ui.Error("  -> Failed to apply patch: %v", FileError{Path: out.Path, Err: err})
	return out
}
