package fylia

import (
	"fmt"

	"github.com/sokinpui/fylia.go/internal/diff"
	"github.com/sokinpui/fylia.go/internal/patcher"
	"github.com/sokinpui/fylia.go/internal/state"
	"github.com/sokinpui/fylia.go/model"
)

// operationsFromResult journals every file that was actually written or removed.
func operationsFromResult(res *patcher.Result) []state.Operation {
	var ops []state.Operation
	for _, o := range res.Outcomes {
		if o.Err != nil || !o.Changed {
			continue
		}
		ops = append(ops, state.Operation{
			Path:   o.Path,
			Action: o.Action.String(),
			Patch:  o.Applied.String(),
		})
	}
	return ops
}

// replayOp rebuilds the file operation for a journal entry, reversed when undo is set.
// Content checks happen against the recorded patch, so a file edited since is reported as
// stale rather than overwritten.
func replayOp(op state.Operation, undo bool) (patcher.FileOp, error) {
	action, err := patcher.ParseAction(op.Action)
	if err != nil {
		return nil, err
	}
	var forward diff.Document
	if op.Patch != "" {
		forward, err = diff.ParseDocument(op.Patch)
		if err != nil {
			return nil, fmt.Errorf("corrupt history entry for %s: %w", op.Path, err)
		}
	}

	if action != patcher.ActionModify {
		added, removed := sides(forward)
		content := added
		if action == patcher.ActionDelete {
			content = removed
		}
		// Undoing a creation and redoing a deletion both remove the file.
		if (action == patcher.ActionCreate) == undo {
			return patcher.DeleteFile{Path: op.Path, Expected: content}, nil
		}
		return patcher.CreateFile{Path: op.Path, Content: content}, nil
	}

	if undo {
		forward = forward.Reverse()
	}
	return patcher.ModifyFile{Path: op.Path, Hunks: forward.Hunks}, nil
}

// sides returns the joined added and removed lines of a document.
func sides(doc diff.Document) (added, removed string) {
	var a, r []string
	for _, h := range doc.Hunks {
		for _, l := range h.Lines {
			switch l.Kind {
			case diff.Added:
				a = append(a, l.Text)
			case diff.Removed:
				r = append(r, l.Text)
			}
		}
	}
	return diff.JoinLines(a), diff.JoinLines(r)
}

func (a *App) replay(ops []state.Operation, undo bool) (model.Summary, error) {
	storage, closeStorage, err := a.writeStorage()
	if err != nil {
		return model.Summary{}, err
	}
	defer closeStorage()

	opName := model.OperationRedo
	if undo {
		opName = model.OperationUndo
	}

	var fileOps []patcher.FileOp
	var broken []string
	for i := range ops {
		// Undo walks the entry backwards.
		op := ops[i]
		if undo {
			op = ops[len(ops)-1-i]
		}
		fileOp, err := replayOp(op, undo)
		if err != nil {
			broken = append(broken, fmt.Sprintf("%s: %v", op.Path, err))
			continue
		}
		fileOps = append(fileOps, fileOp)
	}

	res := patcher.New(storage, a.patchCfg).ApplyOps(fileOps)
	summary := summarize(res, opName)
	summary.Failed = append(broken, summary.Failed...)
	return summary, nil
}

// undoLastOperation handles the undo logic.
func (a *App) undoLastOperation() (model.Summary, error) {
	ops, err := a.stateManager.GetOperationsToUndo()
	if err != nil {
		return model.Summary{}, err
	}
	if len(ops) == 0 {
		return model.Summary{Operation: model.OperationUndo, Message: "No operation to undo."}, nil
	}
	summary, err := a.replay(ops, true)
	if err != nil {
		return model.Summary{}, err
	}
	summary.Message = "Undid last operation."
	return summary, nil
}

// redoLastOperation handles the redo logic.
func (a *App) redoLastOperation() (model.Summary, error) {
	ops, err := a.stateManager.GetOperationsToRedo()
	if err != nil {
		return model.Summary{}, err
	}
	if len(ops) == 0 {
		return model.Summary{Operation: model.OperationRedo, Message: "No operation to redo."}, nil
	}
	summary, err := a.replay(ops, false)
	if err != nil {
		return model.Summary{}, err
	}
	summary.Message = "Redid last undone operation."
	return summary, nil
}
