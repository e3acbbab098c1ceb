package patcher

import (
	"errors"

	"github.com/sokinpui/fylia.go/internal/diff"
)

// FileOp is the storage operation a diff section resolves to. It is one of CreateFile,
// DeleteFile or ModifyFile.
type FileOp interface {
	TargetPath() string
	fileOp()
}

// CreateFile writes a new file holding Content.
type CreateFile struct {
	Path    string
	Content string
}

// DeleteFile unlinks Path. The current content must equal Expected.
type DeleteFile struct {
	Path     string
	Expected string
}

// ModifyFile replays Hunks against the existing file at Path.
type ModifyFile struct {
	Path  string
	Hunks []diff.Hunk
}

func (op CreateFile) TargetPath() string { return op.Path }
func (op DeleteFile) TargetPath() string { return op.Path }
func (op ModifyFile) TargetPath() string { return op.Path }

func (CreateFile) fileOp() {}
func (DeleteFile) fileOp() {}
func (ModifyFile) fileOp() {}

// ErrNoPath is returned for a diff section whose labels name no file.
var ErrNoPath = errors.New("diff section does not name a file")

// Classify decides what doc does to its file given the file's current content.
//
// A section is a deletion when its target is /dev/null, or when it is a single hunk that
// removes every line from line 1 with nothing added or kept and the file holds exactly those
// lines. A section that references no existing lines is a creation when the file is absent
// or empty. Everything else is a modification.
func Classify(doc diff.Document, current string, exists bool) (FileOp, error) {
	path := doc.Path()
	if path == "" {
		return nil, ErrNoPath
	}

	var context, removed, added int
	var source, target []string
	for _, h := range doc.Hunks {
		for _, l := range h.Lines {
			switch l.Kind {
			case diff.Context:
				context++
				source = append(source, l.Text)
			case diff.Removed:
				removed++
				source = append(source, l.Text)
			case diff.Added:
				added++
				target = append(target, l.Text)
			}
		}
	}

	if doc.IsDeletion() {
		return DeleteFile{Path: path, Expected: diff.JoinLines(source)}, nil
	}
	if removesEverything(doc, context, added) {
		expected := diff.JoinLines(source)
		if !exists || current == expected {
			return DeleteFile{Path: path, Expected: expected}, nil
		}
	}

	if context == 0 && removed == 0 {
		if !exists || current == "" {
			return CreateFile{Path: path, Content: diff.JoinLines(target)}, nil
		}
		if doc.IsCreation() {
			return nil, &StaleHunkError{Path: path, Reason: "file already exists"}
		}
	}
	return ModifyFile{Path: path, Hunks: doc.Hunks}, nil
}

func removesEverything(doc diff.Document, context, added int) bool {
	if len(doc.Hunks) != 1 || context != 0 || added != 0 {
		return false
	}
	h := doc.Hunks[0]
	return h.SourceStart == 1 && h.SourceLength > 0 && h.TargetLength == 0
}
