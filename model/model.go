package model

// Operation names the kind of run a Summary describes.
type Operation string

const (
	OperationUpdate Operation = "update"
	OperationUndo   Operation = "undo"
	OperationRedo   Operation = "redo"
)

// Summary holds the results of an operation for display.
type Summary struct {
	Operation Operation
	Created   []string
	Modified  []string
	Deleted   []string
	// Failed entries read "path: reason".
	Failed  []string
	Message string
}

// Changed returns every path that was written or removed.
func (s Summary) Changed() []string {
	out := make([]string, 0, len(s.Created)+len(s.Modified)+len(s.Deleted))
	out = append(out, s.Modified...)
	out = append(out, s.Created...)
	out = append(out, s.Deleted...)
	return out
}
