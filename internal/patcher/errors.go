package patcher

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHunkOrder is returned when hunks are not in ascending source order.
var ErrHunkOrder = errors.New("hunks must be applied in ascending source order")

// MissingTargetError reports a modified file that does not exist.
type MissingTargetError struct {
	Path string
}

func (e *MissingTargetError) Error() string {
	return fmt.Sprintf("cannot modify %s: file does not exist", e.Path)
}

// StaleHunkError reports a hunk whose expected lines are not at the splice point. The file
// is left untouched.
type StaleHunkError struct {
	Path   string
	Hunk   string // header of the failing hunk
	Line   int    // 1-based line in the current content
	Want   string
	Got    string
	Reason string
}

func (e *StaleHunkError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		fmt.Fprintf(&b, "%s: ", e.Path)
	}
	if e.Hunk != "" {
		fmt.Fprintf(&b, "hunk %s does not apply", e.Hunk)
	} else {
		b.WriteString("patch does not apply")
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
		return b.String()
	}
	fmt.Fprintf(&b, " at line %d: expected %q, found %q", e.Line, strings.TrimSuffix(e.Want, "\n"), strings.TrimSuffix(e.Got, "\n"))
	return b.String()
}

// IOError wraps a storage failure with the operation that failed.
type IOError struct {
	Op   string // mkdir, read, write, backup or remove
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// FileError pairs a failed path with its error.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	if namesPath(e.Err, e.Path) {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// namesPath reports whether err already renders path in its message.
func namesPath(err error, path string) bool {
	var stale *StaleHunkError
	if errors.As(err, &stale) {
		return stale.Path == path
	}
	var missing *MissingTargetError
	if errors.As(err, &missing) {
		return missing.Path == path
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return ioErr.Path == path
	}
	return false
}
